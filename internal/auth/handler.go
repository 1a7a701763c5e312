package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/socialgraph/socialgraph/internal/platform/httpx"
	"github.com/socialgraph/socialgraph/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on provided router. None of them require
// a bearer token.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/api/users", h.handleRegister)
	r.Post("/api/token", h.handleLogin)
	r.Post("/api/login", h.handleLogin)
	r.Delete("/api/users/delete", h.handleDeleteAccount)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type deleteForm struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	token, err := h.service.Register(r.Context(), RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			httpx.Problem(w, http.StatusBadRequest, "Conflict", "Email already in use")
			return
		}
		if !errors.Is(err, shared.ErrValidation) {
			h.logger.Error("register failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, token)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid form body")
		return
	}
	form := loginForm{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	token, err := h.service.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, token)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	form := deleteForm{Email: q.Get("email"), Password: q.Get("password")}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.DeleteAccount(r.Context(), form.Email, form.Password); err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Invalid Password or User not found")
			return
		}
		h.logger.Error("delete account failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, "User deleted successfully")
}
