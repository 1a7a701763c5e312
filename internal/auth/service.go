package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/socialgraph/socialgraph/internal/shared"
	"github.com/socialgraph/socialgraph/internal/users"
)

// Service wraps authentication business rules on top of the credential
// store, the password hasher and the token issuer.
type Service struct {
	users  *users.Service
	hasher PasswordHasher
	issuer *TokenIssuer
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewService constructs a new Service.
func NewService(us *users.Service, hasher PasswordHasher, issuer *TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: us, hasher: hasher, issuer: issuer, logger: logger}
}

// RegisterInput holds registration fields. Password is plaintext and must
// never be logged.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// Register creates the account and issues its first token. A taken email
// yields shared.ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Token, error) {
	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Token{}, err
	}
	user, err := s.users.Create(ctx, in.Email, digest, in.Name)
	if err != nil {
		return Token{}, err
	}
	s.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return s.issuer.Issue(user)
}

// Authenticate validates email/password credentials. Unknown email and wrong
// password both yield shared.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Spend the same bcrypt work as a real check so response time
			// does not reveal whether the account exists.
			s.hasher.Verify(password, s.dummyDigest())
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Token{}, err
	}
	return s.issuer.Issue(user)
}

// DeleteAccount removes the account after re-checking the password. On bad
// credentials the user is left untouched.
func (s *Service) DeleteAccount(ctx context.Context, email, password string) error {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrInvalidCredentials
		}
		return err
	}
	s.logger.Info("user deleted", slog.Int64("user_id", user.ID))
	return nil
}

// Resolve turns a bearer token into the user it names. The returned status
// explains a rejection for internal diagnostics; the error is always
// shared.ErrInvalidToken for token problems, including a subject whose user
// no longer exists.
func (s *Service) Resolve(ctx context.Context, raw string) (*users.User, DecodeResult, error) {
	res := s.issuer.Decode(raw)
	if res.Status != DecodeValid {
		return nil, res, shared.ErrInvalidToken
	}
	id, err := strconv.ParseInt(res.Subject, 10, 64)
	if err != nil {
		res.Status = DecodeMalformed
		return nil, res, shared.ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, res, shared.ErrInvalidToken
		}
		return nil, res, err
	}
	return user, res, nil
}

func (s *Service) dummyDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("socialgraph-dummy-password")
		if err != nil {
			s.logger.Warn("dummy password hash", slog.Any("error", err))
			return
		}
		s.dummyHash = digest
	})
	return s.dummyHash
}
