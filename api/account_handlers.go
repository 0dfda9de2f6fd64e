package api

import (
	"net/http"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/media"
	"github.com/MrEthical07/lmsAuth/middleware"
)

type updateInfoRequest struct {
	Name  string `json:"name" validate:"max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required"`
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) (lmsAuth.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, lmsAuth.ErrMissingToken)
	}
	return p, ok
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	self, ok := h.current(w, r)
	if !ok {
		return
	}
	p, err := h.engine.Principal(r.Context(), self.ID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"user": p})
}

func (h *Handler) updateInfo(w http.ResponseWriter, r *http.Request) {
	self, ok := h.current(w, r)
	if !ok {
		return
	}
	var req updateInfoRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	p, err := h.engine.UpdateProfile(r.Context(), self.ID, lmsAuth.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"message": "User updated successfully", "user": p})
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	self, ok := h.current(w, r)
	if !ok {
		return
	}
	var req updatePasswordRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	if err := h.engine.ChangePassword(r.Context(), self.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"message": "Password updated successfully"})
}

func (h *Handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	self, ok := h.current(w, r)
	if !ok {
		return
	}
	var req updateAvatarRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	contentType, data, err := media.DecodeDataURL(req.Avatar)
	if err != nil {
		h.respond.Error(w, r, lmsAuth.ErrInvalidAvatar)
		return
	}
	p, err := h.engine.UpdateAvatar(r.Context(), self.ID, data, contentType)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.OK(w, map[string]any{"message": "Avatar updated successfully", "user": p})
}
