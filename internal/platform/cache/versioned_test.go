package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, _ := newTestCacheWithServer(t)
	return c
}

func newTestCacheWithServer(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil))), mr
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	fetch := func() []string {
		key, err := c.BuildKey(ctx, "followers", "bob@example.com")
		require.NoError(t, err)
		var out []string
		require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
		return out
	}

	assert.Equal(t, []string{"a", "b"}, fetch())
	assert.Equal(t, []string{"a", "b"}, fetch())
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Bump(ctx, "followers"))
	fetch()
	assert.Equal(t, 2, calls)
}

func TestBuildKeyIncludesVersion(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	key, err := c.BuildKey(ctx, "posts", "0", "10")
	require.NoError(t, err)
	assert.Equal(t, "posts:0:10:1", key)

	require.NoError(t, c.Bump(ctx, "posts"))
	key, err = c.BuildKey(ctx, "posts", "0", "10")
	require.NoError(t, err)
	assert.Equal(t, "posts:0:10:2", key)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "posts", "0")
	require.NoError(t, err)
	assert.Equal(t, "posts:0", key)

	var out map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return map[string]int{"n": 1}, nil
	}))
	assert.Equal(t, 1, out["n"])
	assert.NoError(t, c.Bump(ctx, "posts"))
}

func TestFetchJSONLoaderErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	boom := errors.New("boom")

	var out []int
	err := c.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	require.NoError(t, c.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) { return []int{7}, nil }))
	assert.Equal(t, []int{7}, out)
}

func TestFetchJSONRequiresLoader(t *testing.T) {
	c := newTestCache(t)
	var out []int
	assert.Error(t, c.FetchJSON(context.Background(), "k", &out, nil))
}

func TestFetchJSONServesLoaderWhenRedisGetFails(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCacheWithServer(t)

	key, err := c.BuildKey(ctx, "posts", "0", "10")
	require.NoError(t, err)

	mr.SetError("LOADING Redis is loading the dataset in memory")
	var out []string
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return []string{"fresh"}, nil
	}))
	assert.Equal(t, []string{"fresh"}, out)
}

func TestFetchJSONServesLoaderWhenRedisSetFails(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCacheWithServer(t)

	key, err := c.BuildKey(ctx, "posts", "0", "10")
	require.NoError(t, err)

	var out []string
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		mr.SetError("READONLY You can't write against a read only replica")
		return []string{"fresh"}, nil
	}))
	assert.Equal(t, []string{"fresh"}, out)

	mr.SetError("")
	assert.False(t, mr.Exists(key))
}

func TestFetchJSONFlightSurvivesCallerCancellation(t *testing.T) {
	c := newTestCache(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	loader := func(ctx context.Context) (any, error) {
		calls.Add(1)
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []int{1, 2}, nil
	}

	callerCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		var out []int
		firstErr <- c.FetchJSON(callerCtx, "followers:bob:1", &out, loader)
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	// Wait for the flight to finish writing before reading it back.
	close(release)
	require.Eventually(t, func() bool {
		var out []int
		err := c.FetchJSON(context.Background(), "followers:bob:1", &out, func(context.Context) (any, error) {
			return nil, errors.New("flight result was not cached")
		})
		return err == nil && len(out) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBumpIgnoresCallerCancellation(t *testing.T) {
	c := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Bump(ctx, "posts"))
	ver, err := c.Version(context.Background(), "posts")
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)
}
