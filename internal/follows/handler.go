package follows

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialgraph/socialgraph/internal/platform/httpx"
	"github.com/socialgraph/socialgraph/internal/shared"
)

// Handler wires HTTP endpoints for the follow graph. All routes expect an
// identity placed in the context by the auth middleware.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers follow routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/users/follow/{username}", h.follow)
	r.Post("/api/users/unfollow/{username}", h.unfollow)
	r.Get("/api/users/followers", h.followers)
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	conf, err := h.service.Follow(r.Context(), id.Email, chi.URLParam(r, "username"))
	if err != nil {
		h.logger.Error("follow failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, conf.Message)
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	conf, err := h.service.Unfollow(r.Context(), id.Email, chi.URLParam(r, "username"))
	if err != nil {
		h.logger.Error("unfollow failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, conf.Message)
}

func (h *Handler) followers(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	list, err := h.service.FollowersOf(r.Context(), id.Email)
	if err != nil {
		h.logger.Error("list followers failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
