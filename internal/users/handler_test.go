package users_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgraph/socialgraph/internal/shared"
	"github.com/socialgraph/socialgraph/internal/testing/memrepo"
	"github.com/socialgraph/socialgraph/internal/users"
)

func newUsersRouter(t *testing.T) (chi.Router, *users.Service) {
	t.Helper()
	svc := users.NewService(memrepo.NewUsers())
	h := users.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	h.MountPublicRoutes(r)
	h.MountRoutes(r)
	return r, svc
}

func TestProfileReturnsIdentity(t *testing.T) {
	router, _ := newUsersRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/myprofile", nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), shared.Identity{ID: 3, Email: "a@x.io", Name: "Ann"}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":3,"email":"a@x.io","name":"Ann"}`, rr.Body.String())
}

func TestProfileWithoutIdentity(t *testing.T) {
	router, _ := newUsersRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/myprofile", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListUsersHidesPasswordHash(t *testing.T) {
	router, svc := newUsersRouter(t)
	_, err := svc.Create(context.Background(), "a@x.io", "secret-digest", "Ann")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":1,"email":"a@x.io","name":"Ann"}]`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "secret-digest")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/?limit=-2", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
