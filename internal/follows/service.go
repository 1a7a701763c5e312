package follows

import (
	"context"
	"log/slog"

	"github.com/socialgraph/socialgraph/internal/platform/cache"
)

const cacheNamespace = "followers"

// Service maintains the follow graph.
//
// Follow is an unconditional insert: repeating it creates duplicate edges and
// following yourself is accepted.
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

// Follow records that followerEmail follows followedEmail.
func (s *Service) Follow(ctx context.Context, followerEmail, followedEmail string) (Confirmation, error) {
	if _, err := s.repo.Insert(ctx, Edge{FollowerEmail: followerEmail, FollowedEmail: followedEmail}); err != nil {
		return Confirmation{}, err
	}
	s.invalidate(ctx)
	return Confirmation{Status: StatusFollowed, Message: msgFollowed}, nil
}

// Unfollow removes the first matching edge. A missing edge is reported through
// the confirmation status.
func (s *Service) Unfollow(ctx context.Context, followerEmail, followedEmail string) (Confirmation, error) {
	removed, err := s.repo.DeleteFirst(ctx, followerEmail, followedEmail)
	if err != nil {
		return Confirmation{}, err
	}
	if !removed {
		return Confirmation{Status: StatusNotFollowing, Message: msgNotFollowing}, nil
	}
	s.invalidate(ctx)
	return Confirmation{Status: StatusUnfollowed, Message: msgUnfollowed}, nil
}

// FollowersOf lists one entry per edge pointing at email, in edge order.
func (s *Service) FollowersOf(ctx context.Context, email string) ([]Follower, error) {
	key, err := s.cache.BuildKey(ctx, cacheNamespace, email)
	if err != nil {
		s.logger.Warn("followers cache key", slog.Any("error", err))
		return s.loadFollowers(ctx, email)
	}
	var out []Follower
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.loadFollowers(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Follower{}
	}
	return out, nil
}

func (s *Service) loadFollowers(ctx context.Context, email string) ([]Follower, error) {
	edges, err := s.repo.ListFollowers(ctx, email)
	if err != nil {
		return nil, err
	}
	out := make([]Follower, 0, len(edges))
	for _, e := range edges {
		out = append(out, Follower{Email: e.FollowerEmail})
	}
	return out, nil
}

// invalidate drops cached follower lists after a committed write. A failure
// leaves stale entries that expire with the cache TTL.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx, cacheNamespace); err != nil {
		s.logger.Warn("followers cache bump", slog.Any("error", err))
	}
}
