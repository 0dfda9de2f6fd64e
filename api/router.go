package api

import (
	"net/http"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"github.com/MrEthical07/lmsAuth/middleware"
	"github.com/MrEthical07/lmsAuth/respond"
	"github.com/MrEthical07/lmsAuth/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	DefaultPrefix       = "/api/v1"
	DefaultMaxBodyBytes = 50 << 20
)

// Options configures [NewRouter]. Engine is required. Notification routes are
// mounted only when Notifications is set; /metrics only when Metrics is set.
type Options struct {
	Engine        *lmsAuth.Engine
	Notifications store.NotificationStore
	Logger        *zap.Logger
	Prefix        string
	Origins       []string
	MaxBodyBytes  int64
	Metrics       http.Handler
}

// Handler holds the dependencies shared by all route handlers.
type Handler struct {
	engine        *lmsAuth.Engine
	notifications store.NotificationStore
	respond       *respond.Responder
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewRouter builds the complete HTTP handler.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	h := &Handler{
		engine:        opts.Engine,
		notifications: opts.Notifications,
		respond:       respond.New(logger),
		validate:      newValidator(),
		logger:        logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(clientIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(corsHandler(opts.Origins))
	r.Use(limitBody(maxBody))

	// Set before Route so that mounted sub-routers inherit them.
	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.notFound)

	r.Get("/test", h.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	authn := middleware.Authenticate(h.engine, h.respond.Error)
	adminOnly := middleware.Authorize(h.engine, h.respond.Error, lmsAuth.RoleAdmin)

	r.Route(prefix, func(r chi.Router) {
		r.Post("/registration", h.register)
		r.Post("/activate-user", h.activate)
		r.Post("/login", h.login)
		r.Post("/social-auth", h.socialAuth)
		r.With(middleware.Refresh(h.engine, h.respond.Error)).Get("/refresh", h.refreshed)
		r.Get("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Get("/me", h.me)
			r.Put("/update-user-info", h.updateInfo)
			r.Put("/update-user-password", h.updatePassword)
			r.Put("/update-user-avatar", h.updateAvatar)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/get-users", h.listUsers)
				r.Put("/update-user", h.updateRole)
				r.Delete("/delete-user/{id}", h.deleteUser)
				if h.notifications != nil {
					r.Get("/get-all-notifications", h.listNotifications)
					r.Put("/update-notification/{id}", h.markNotificationRead)
				}
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.respond.OK(w, map[string]any{"message": "API is working"})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.respond.JSON(w, http.StatusNotFound, map[string]any{
		"message": "Can't find " + r.URL.RequestURI() + " on this server",
	})
}
