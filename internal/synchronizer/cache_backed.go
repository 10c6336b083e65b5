package synchronizer

import (
	"context"
	"fmt"
	"log/slog"

	"takeslice/internal/logging"
	"takeslice/internal/offsetcache"
	"takeslice/internal/timestamp"
)

// CacheBacked serves offsets from an offset cache and delegates misses to a
// fallback strategy, storing what the fallback returns.
type CacheBacked struct {
	cache    *offsetcache.Cache
	fallback Synchronizer
	confirm  *Prompter
	logger   *slog.Logger
}

// CacheOption configures a CacheBacked synchronizer.
type CacheOption func(*CacheBacked)

// WithConfirm asks the operator before re-using a cached offset. Declining
// resolves the track again through the fallback.
func WithConfirm(prompter *Prompter) CacheOption {
	return func(c *CacheBacked) {
		c.confirm = prompter
	}
}

// WithCacheLogger attaches a logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CacheBacked) {
		c.logger = logger
	}
}

// NewCacheBacked wraps fallback with cache.
func NewCacheBacked(cache *offsetcache.Cache, fallback Synchronizer, opts ...CacheOption) *CacheBacked {
	c := &CacheBacked{cache: cache, fallback: fallback}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "synchronizer")
	return c
}

// Resolve returns the cached offset for the file's base name, or resolves it
// through the fallback and caches the result.
func (c *CacheBacked) Resolve(ctx context.Context, path string) (timestamp.Timestamp, error) {
	if err := checkReadable(path); err != nil {
		return timestamp.Zero, syncErr(path, StrategyCacheBacked, err)
	}
	key := offsetcache.Key(path)
	if offset, ok := c.cache.Get(key); ok {
		reuse := true
		if c.confirm != nil {
			var err error
			reuse, err = c.confirm.Confirm(fmt.Sprintf("Use cached offset %s for %s?", offset, key), true)
			if err != nil {
				return timestamp.Zero, syncErr(path, StrategyCacheBacked, err)
			}
		}
		if reuse {
			c.logger.Debug("offset served from cache",
				logging.String(logging.FieldTrack, key),
				logging.Offset("offset", offset))
			return offset, nil
		}
	} else {
		logging.WarnWithContext(c.logger, "offset not cached; resolving", "offset_cache_miss",
			logging.String(logging.FieldTrack, key),
			logging.String(logging.FieldImpact, "operator input required for this track"),
			logging.String(logging.FieldErrorHint, "answer the prompt; the result is cached for later runs"))
	}

	offset, err := c.fallback.Resolve(ctx, path)
	if err != nil {
		return timestamp.Zero, err
	}
	c.cache.Set(key, offset)
	return offset, nil
}
