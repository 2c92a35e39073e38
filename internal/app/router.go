package app

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lexora-app/lexora/internal/authz"
	"github.com/lexora-app/lexora/internal/decks"
	"github.com/lexora-app/lexora/internal/observability"
	"github.com/lexora-app/lexora/internal/rbac"
	"github.com/lexora-app/lexora/internal/shared"
	"github.com/lexora-app/lexora/internal/users"
	"github.com/lexora-app/lexora/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Store          authz.Store
	DecksHandler   *decks.Handler
	UsersHandler   *users.Handler
	RBACHandler    *rbac.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Lexora defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	identity := authz.Middleware{
		Store:  params.Store,
		Logger: params.Logger,
		SessionUser: func(r *http.Request) string {
			if sess := shared.SessionFromContext(r.Context()); sess != nil {
				return sess.User()
			}
			return ""
		},
		Sink: shared.ContextWithIdentity,
	}

	r.Group(func(r chi.Router) {
		r.Use(identity.RequireIdentity)
		if params.DecksHandler != nil {
			r.Route("/decks", params.DecksHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.RBACHandler != nil {
			r.Route("/admin", params.RBACHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
