package api

import (
	"errors"
	"net/http"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/store"
	"github.com/go-chi/chi/v5"
)

var errNotificationNotFound = &lmsAuth.Error{Kind: lmsAuth.KindNotFound, Message: "Notification not found"}

type updateRoleRequest struct {
	ID   string `json:"id" validate:"required"`
	Role string `json:"role" validate:"required,oneof=user admin"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.engine.ListPrincipals(r.Context())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"users": users})
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	p, err := h.engine.UpdateRole(r.Context(), req.ID, lmsAuth.Role(req.Role))
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"message": "User role updated successfully", "user": p})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.DeletePrincipal(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"message": "User deleted successfully"})
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.notifications.ListNotifications(r.Context())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"notifications": items})
}

// markNotificationRead flips one notification to read and returns the full
// list so the dashboard can re-render.
func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if _, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotificationNotFound) {
			err = errNotificationNotFound
		}
		h.respond.Error(w, r, err)
		return
	}
	h.listNotifications(w, r)
}
