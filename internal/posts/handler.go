package posts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/socialgraph/socialgraph/internal/platform/httpx"
	"github.com/socialgraph/socialgraph/internal/shared"
)

// Handler wires HTTP endpoints for posts.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountPublicRoutes registers routes that need no identity.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/api/posts/", h.list)
}

// MountRoutes registers routes that expect an authenticated identity.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/createpost/", h.create)
	r.Put("/api/post/{post_id}", h.update)
	r.Delete("/api/post/{post_id}", h.delete)
}

type createRequest struct {
	Content string `json:"content" validate:"required"`
}

type updateRequest struct {
	NewContent *string `json:"new_content" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	post, err := h.service.Create(r.Context(), id.Email, req.Content)
	if err != nil {
		h.logger.Error("create post failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := shared.ParsePage(r.URL.Query().Get("offset"), r.URL.Query().Get("limit"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	list, err := h.service.List(r.Context(), page)
	if err != nil {
		h.logger.Error("list posts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	postID, err := strconv.ParseInt(chi.URLParam(r, "post_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid post id")
		return
	}
	var req updateRequest
	if q := r.URL.Query(); q.Has("new_content") {
		content := q.Get("new_content")
		req.NewContent = &content
	} else if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
			return
		}
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "new_content is required")
		return
	}
	conf, err := h.service.Update(r.Context(), postID, *req.NewContent, id.Email)
	if err != nil {
		h.respondMutationError(w, "update post failed", err)
		return
	}
	httpx.Message(w, conf.Message)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	postID, err := strconv.ParseInt(chi.URLParam(r, "post_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid post id")
		return
	}
	conf, err := h.service.Delete(r.Context(), postID, id.Email)
	if err != nil {
		h.respondMutationError(w, "delete post failed", err)
		return
	}
	httpx.Message(w, conf.Message)
}

func (h *Handler) respondMutationError(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "Post not found")
		return
	}
	h.logger.Error(msg, slog.Any("error", err))
	httpx.RespondError(w, err)
}
