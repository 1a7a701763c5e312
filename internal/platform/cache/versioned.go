package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache wraps Redis based JSON caching with per-namespace versioning. Writers
// call Bump after committing; readers always build keys from the current
// version, so entries written before a bump are never read again.
//
// A nil *Cache, or one without a client, calls the loader directly. Redis
// failures on the read path are logged and the loader result is served.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// bumpTimeout bounds a version bump once it is detached from the caller.
const bumpTimeout = 2 * time.Second

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func versionKey(namespace string) string {
	return "cache:" + namespace + ":version"
}

// Version returns the current namespace version, initialising when missing.
func (c *Cache) Version(ctx context.Context, namespace string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey(namespace)).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX so two first readers agree on the initial version.
		if err := c.client.SetNX(ctx, versionKey(namespace), 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey(namespace)).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current namespace version.
func (c *Cache) BuildKey(ctx context.Context, namespace string, parts ...string) (string, error) {
	joined := strings.Join(append([]string{namespace}, parts...), ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx, namespace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value into dest or populates it using the loader.
// Concurrent misses for the same key share one loader call.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		raw, err := load(ctx, loader)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		return json.Unmarshal(payload, dest)
	case ctx.Err() != nil:
		return ctx.Err()
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache get failed, loading directly", slog.String("key", key), slog.Any("error", err))
		raw, err := load(ctx, loader)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}

	// The flight is shared, so it must not die with whichever caller started it.
	flightCtx := context.WithoutCancel(ctx)
	resultChan := c.group.DoChan(key, func() (any, error) {
		raw, err := load(flightCtx, loader)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(flightCtx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("cache set failed", slog.String("key", key), slog.Any("error", err))
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Bump invalidates every key of the namespace by incrementing its version.
// Callers bump after a committed write, so the increment ignores the
// caller's cancellation and is bounded by bumpTimeout instead.
func (c *Cache) Bump(ctx context.Context, namespace string) error {
	if c == nil || c.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bumpTimeout)
	defer cancel()
	return c.client.Incr(ctx, versionKey(namespace)).Err()
}

func load(ctx context.Context, loader func(context.Context) (any, error)) ([]byte, error) {
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}
