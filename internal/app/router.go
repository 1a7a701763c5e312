package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialgraph/socialgraph/internal/auth"
	"github.com/socialgraph/socialgraph/internal/follows"
	"github.com/socialgraph/socialgraph/internal/observability"
	"github.com/socialgraph/socialgraph/internal/platform/httpx"
	"github.com/socialgraph/socialgraph/internal/posts"
	"github.com/socialgraph/socialgraph/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthHandler    *auth.Handler
	AuthMiddleware *auth.Middleware
	UsersHandler   *users.Handler
	FollowsHandler *follows.Handler
	PostsHandler   *posts.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with the API routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	params.AuthHandler.MountRoutes(r)
	params.UsersHandler.MountPublicRoutes(r)
	params.PostsHandler.MountPublicRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.RequireUser)
		params.UsersHandler.MountRoutes(r)
		params.FollowsHandler.MountRoutes(r)
		params.PostsHandler.MountRoutes(r)
	})

	return r
}
