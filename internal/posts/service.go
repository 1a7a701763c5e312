package posts

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/socialgraph/socialgraph/internal/platform/cache"
	"github.com/socialgraph/socialgraph/internal/shared"
)

const cacheNamespace = "posts"

// Service mediates write access to posts: only the author may update or
// delete. A post that does not exist and a post owned by someone else are
// indistinguishable to the caller (both shared.ErrNotFound).
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds Service instance. cache may be nil.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: c, logger: logger}
}

// Create stores a post authored by authorEmail.
func (s *Service) Create(ctx context.Context, authorEmail, content string) (*Post, error) {
	post, err := s.repo.Create(ctx, Post{AuthorEmail: authorEmail, Content: content})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return post, nil
}

// List returns a page of posts ordered by id ascending.
func (s *Service) List(ctx context.Context, page shared.Page) ([]Post, error) {
	key, err := s.cache.BuildKey(ctx, cacheNamespace, strconv.Itoa(page.Offset), strconv.Itoa(page.Limit))
	if err != nil {
		s.logger.Warn("posts cache key", slog.Any("error", err))
		return s.repo.List(ctx, page)
	}
	var out []Post
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.repo.List(ctx, page)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Post{}
	}
	return out, nil
}

// Update replaces the content of postID when actingEmail is its author.
func (s *Service) Update(ctx context.Context, postID int64, newContent, actingEmail string) (Confirmation, error) {
	if err := s.repo.UpdateOwned(ctx, postID, actingEmail, newContent); err != nil {
		return Confirmation{}, err
	}
	s.invalidate(ctx)
	return Confirmation{Message: msgUpdated}, nil
}

// Delete removes postID when actingEmail is its author.
func (s *Service) Delete(ctx context.Context, postID int64, actingEmail string) (Confirmation, error) {
	if err := s.repo.DeleteOwned(ctx, postID, actingEmail); err != nil {
		return Confirmation{}, err
	}
	s.invalidate(ctx)
	return Confirmation{Message: msgDeleted}, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, cacheNamespace); err != nil {
		s.logger.Warn("posts cache bump", slog.Any("error", err))
	}
}
