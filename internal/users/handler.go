package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialgraph/socialgraph/internal/platform/httpx"
	"github.com/socialgraph/socialgraph/internal/shared"
)

// Handler serves read-only user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountPublicRoutes registers routes that need no identity.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/api/users/", h.listUsers)
}

// MountRoutes registers routes that expect an authenticated identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/api/users/myprofile", h.profile)
}

type profileResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	httpx.JSON(w, http.StatusOK, profileResponse{ID: id.ID, Email: id.Email, Name: id.Name})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.List(r.Context(), page)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]profileResponse, 0, len(list))
	for _, u := range list {
		out = append(out, profileResponse{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	httpx.JSON(w, http.StatusOK, out)
}
