package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/socialgraph/socialgraph/internal/observability"
	"github.com/socialgraph/socialgraph/internal/platform/httpx"
	"github.com/socialgraph/socialgraph/internal/shared"
)

const (
	reasonMissing        = "missing"
	reasonUnknownSubject = "unknown_subject"
)

// Middleware guards routes that require a bearer token.
type Middleware struct {
	service *Service
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMiddleware constructs the bearer guard. metrics may be nil.
func NewMiddleware(service *Service, logger *slog.Logger, metrics *observability.Metrics) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{service: service, logger: logger, metrics: metrics}
}

// RequireUser resolves the bearer token and stores the caller identity in the
// request context. Every rejection looks the same to the client.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			m.reject(w, r, reasonMissing)
			return
		}
		user, res, err := m.service.Resolve(r.Context(), raw)
		if err != nil {
			if !errors.Is(err, shared.ErrInvalidToken) {
				m.logger.Error("resolve bearer token", slog.Any("error", err))
				httpx.RespondError(w, err)
				return
			}
			reason := res.Status.String()
			if res.Status == DecodeValid {
				reason = reasonUnknownSubject
			}
			m.reject(w, r, reason)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	m.logger.Info("bearer token rejected", slog.String("reason", reason), slog.String("path", r.URL.Path))
	m.metrics.RecordAuthFailure(reason)
	httpx.Unauthorized(w, "Could not validate credentials")
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
