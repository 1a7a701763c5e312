package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/socialgraph/socialgraph/internal/shared"
)

// Service is the credential store. It owns user records and enforces email
// uniqueness; it performs no hashing or token work.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new user. The email is looked up first and an existing
// record yields shared.ErrConflict. The lookup and insert are not atomic; a
// concurrent registration that slips between them is rejected by the unique
// index and reported as the same conflict.
func (s *Service) Create(ctx context.Context, email, passwordHash, name string) (*User, error) {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("users: email %w", shared.ErrConflict)
	}
	return s.repo.Create(ctx, User{Email: email, PasswordHash: passwordHash, Name: name})
}

// FindByEmail returns shared.ErrNotFound when no user has the email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

// FindByID returns shared.ErrNotFound when no user has the id.
func (s *Service) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Delete removes the user.
func (s *Service) Delete(ctx context.Context, user *User) error {
	if user == nil {
		return shared.ErrNotFound
	}
	return s.repo.Delete(ctx, user.ID)
}

// List returns a page of users ordered by id.
func (s *Service) List(ctx context.Context, page shared.Page) ([]User, error) {
	return s.repo.List(ctx, page)
}
