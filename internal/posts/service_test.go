package posts_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialgraph/socialgraph/internal/platform/cache"
	"github.com/socialgraph/socialgraph/internal/posts"
	"github.com/socialgraph/socialgraph/internal/shared"
	"github.com/socialgraph/socialgraph/internal/testing/memrepo"
)

func newCachedService(t *testing.T) (*posts.Service, *memrepo.Posts) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := memrepo.NewPosts()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return posts.NewService(repo, cache.NewCache(client, time.Minute, logger), logger), repo
}

var firstPage = shared.Page{Offset: 0, Limit: shared.DefaultLimit}

func TestCreateThenList(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()

	empty, err := svc.List(ctx, firstPage)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	post, err := svc.Create(ctx, "a@x.io", "hello")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)

	list, err := svc.List(ctx, firstPage)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a@x.io", list[0].AuthorEmail)
	assert.Equal(t, "hello", list[0].Content)
}

func TestListPagination(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()
	for _, c := range []string{"one", "two", "three"} {
		_, err := svc.Create(ctx, "a@x.io", c)
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, shared.Page{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "two", list[0].Content)

	list, err = svc.List(ctx, shared.Page{Offset: 5, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOwnerUpdateVisibleInList(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()
	post, err := svc.Create(ctx, "a@x.io", "draft")
	require.NoError(t, err)

	_, err = svc.List(ctx, firstPage)
	require.NoError(t, err)

	conf, err := svc.Update(ctx, post.ID, "final", "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Post updated successfully", conf.Message)

	list, err := svc.List(ctx, firstPage)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "final", list[0].Content)
}

func TestNonOwnerCannotMutate(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()
	post, err := svc.Create(ctx, "a@x.io", "mine")
	require.NoError(t, err)

	_, err = svc.Update(ctx, post.ID, "hijacked", "b@x.io")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Delete(ctx, post.ID, "b@x.io")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Update(ctx, post.ID+100, "ghost", "a@x.io")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	list, err := svc.List(ctx, firstPage)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "mine", list[0].Content)
}

func TestOwnerDelete(t *testing.T) {
	svc, _ := newCachedService(t)
	ctx := context.Background()
	post, err := svc.Create(ctx, "a@x.io", "bye")
	require.NoError(t, err)

	conf, err := svc.Delete(ctx, post.ID, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "Post deleted successfully", conf.Message)

	list, err := svc.List(ctx, firstPage)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListCachedPerPage(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, "a@x.io", "hello")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.List(ctx, firstPage)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.ListCalls)

	_, err = svc.List(ctx, shared.Page{Offset: 0, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.ListCalls)

	_, err = svc.Create(ctx, "b@x.io", "again")
	require.NoError(t, err)
	list, err := svc.List(ctx, firstPage)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 3, repo.ListCalls)
}

// abandoningPosts cancels the request context right after a write commits,
// as a client that disconnects mid-request would.
type abandoningPosts struct {
	*memrepo.Posts
	cancel context.CancelFunc
}

func (r abandoningPosts) UpdateOwned(ctx context.Context, id int64, authorEmail, content string) error {
	err := r.Posts.UpdateOwned(ctx, id, authorEmail, content)
	r.cancel()
	return err
}

func TestUpdateVisibleAfterCallerCancels(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reqCtx, cancel := context.WithCancel(context.Background())
	repo := abandoningPosts{Posts: memrepo.NewPosts(), cancel: cancel}
	svc := posts.NewService(repo, cache.NewCache(client, time.Minute, logger), logger)

	post, err := svc.Create(context.Background(), "a@x.io", "hello")
	require.NoError(t, err)
	_, err = svc.List(context.Background(), firstPage)
	require.NoError(t, err)

	_, err = svc.Update(reqCtx, post.ID, "edited", "a@x.io")
	require.NoError(t, err)
	require.Error(t, reqCtx.Err())

	list, err := svc.List(context.Background(), firstPage)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "edited", list[0].Content)
}
