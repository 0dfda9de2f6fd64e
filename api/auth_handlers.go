package api

import (
	"net/http"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/middleware"
)

type registrationRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

type activationRequest struct {
	ActivationToken string `json:"activation_token"`
	ActivationCode  string `json:"activation_code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type socialAuthRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,max=100"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	ticket, err := h.engine.Register(r.Context(), lmsAuth.RegistrationRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.respond.Created(w, map[string]any{
		"message":         "An email has been sent to " + req.Email + ". Please check your email to activate your account",
		"activationToken": ticket.Token,
	})
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	var req activationRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	if _, err := h.engine.Activate(r.Context(), req.ActivationToken, req.ActivationCode); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.respond.Created(w, map[string]any{"message": "Account activated successfully"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	p, pair, err := h.engine.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.signedIn(w, p, pair)
}

func (h *Handler) socialAuth(w http.ResponseWriter, r *http.Request) {
	var req socialAuthRequest
	if err := h.decode(r, &req); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	p, pair, err := h.engine.SocialAuth(r.Context(), lmsAuth.SocialIdentity{
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.Avatar,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	h.signedIn(w, p, pair)
}

func (h *Handler) signedIn(w http.ResponseWriter, p lmsAuth.Principal, pair lmsAuth.TokenPair) {
	for _, c := range h.engine.TokenCookies(pair) {
		http.SetCookie(w, c)
	}
	h.respond.OK(w, map[string]any{
		"user":        p,
		"accessToken": pair.AccessToken,
	})
}

// refreshed runs after middleware.Refresh has rotated the pair and set the
// cookies.
func (h *Handler) refreshed(w http.ResponseWriter, r *http.Request) {
	pair, ok := middleware.TokenPairFromContext(r.Context())
	if !ok {
		h.respond.Error(w, r, lmsAuth.ErrEngineNotReady)
		return
	}
	h.respond.OK(w, map[string]any{"accessToken": pair.AccessToken})
}

// logout is not behind the authentication gate: a signed access token is
// enough, and cookies are cleared even when the cache delete fails.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.AccessToken(r, h.engine.AccessCookieName())
	if id, err := h.engine.LogoutToken(r.Context(), token); id == "" && err != nil {
		h.respond.Error(w, r, err)
		return
	}
	for _, c := range h.engine.ClearCookies() {
		http.SetCookie(w, c)
	}
	h.respond.OK(w, map[string]any{"message": "Logged out successfully"})
}
