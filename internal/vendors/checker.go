package vendors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/store"
)

const cacheKeyPrefix = "proset:vendor:"

// Checker answers whether a vendor exists. Positive answers may be cached in
// Redis for a short TTL; negative answers always go to the store so a newly
// saved vendor is usable at once.
type Checker struct {
	store store.Store
	redis *redis.Client
	ttl   time.Duration
}

// NewChecker returns a Checker over st. rdb may be nil to disable caching.
func NewChecker(st store.Store, rdb *redis.Client, ttl time.Duration) *Checker {
	return &Checker{store: st, redis: rdb, ttl: ttl}
}

func cacheKey(name string) string { return cacheKeyPrefix + name }

// Exists reports whether a vendor named name is stored. An empty name never
// exists. Only store errors are returned; cache failures fall back to the
// store.
func (c *Checker) Exists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}

	if c.cacheEnabled() {
		err := c.redis.Get(ctx, cacheKey(name)).Err()
		switch {
		case err == nil:
			return true, nil
		case !errors.Is(err, redis.Nil):
			slog.Warn("vendor cache read failed", "vendor", name, "error", err)
		}
	}

	var v catalog.Vendor
	found, err := c.store.FindOne(ctx, catalog.VendorsCollection, store.Filter(catalog.VendorFilter(name)), &v)
	if err != nil {
		return false, fmt.Errorf("look up vendor %q: %w", name, err)
	}

	if found && c.cacheEnabled() {
		if err := c.redis.Set(ctx, cacheKey(name), "1", c.ttl).Err(); err != nil {
			slog.Warn("vendor cache write failed", "vendor", name, "error", err)
		}
	}
	return found, nil
}

// Forget drops any cached answer for name.
func (c *Checker) Forget(ctx context.Context, name string) {
	if !c.cacheEnabled() {
		return
	}
	if err := c.redis.Del(ctx, cacheKey(name)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("vendor cache delete failed", "vendor", name, "error", err)
	}
}

func (c *Checker) cacheEnabled() bool {
	return c.redis != nil && c.ttl > 0
}
