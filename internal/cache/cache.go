package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"PriceBoard/internal/clock"
	"PriceBoard/internal/model"
)

// Default time-to-live per instrument kind.
const (
	DefaultStockTTL  = 60 * time.Second
	DefaultCryptoTTL = 30 * time.Second
)

// FetchFunc produces a fresh result for a request.
type FetchFunc func(ctx context.Context, req model.FetchRequest) model.FetchResult

// Cache memoizes fetch results per request for a bounded time. Failures and
// empty tables are cached like any other result, so a failing upstream is
// hit at most once per TTL.
type Cache struct {
	store  Store
	clock  clock.Clock
	logger *zap.Logger
	group  singleflight.Group
}

// New creates a Cache over store. A nil clock means wall time.
func New(store Store, clk clock.Clock, logger *zap.Logger) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, clock: clk, logger: logger}
}

// GetOrFetch returns the live entry for req or calls fetch, stores its
// result, and returns it. Concurrent callers for the same key share one
// call to fetch.
func (c *Cache) GetOrFetch(ctx context.Context, req model.FetchRequest, ttl time.Duration, fetch FetchFunc) model.FetchResult {
	key := req.Key()
	if res, ok := c.lookup(ctx, key); ok {
		return res
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		// A caller that just finished may have filled the key.
		if res, ok := c.lookup(ctx, key); ok {
			return res, nil
		}
		// The result is shared, so a caller going away must not cut the
		// fetch short. The fetcher's own timeout still bounds it.
		fctx := context.WithoutCancel(ctx)
		res := fetch(fctx, req)
		entry := Entry{Result: res, FetchedAt: c.clock.Now(), TTL: ttl}
		if err := c.store.Put(fctx, key, entry); err != nil {
			c.logger.Warn("cache put failed", zap.String("key", key), zap.Error(err))
		}
		c.logger.Debug("cache fill",
			zap.String("key", key),
			zap.Bool("failed", res.Failed()),
			zap.Int("bars", res.Table.Len()),
			zap.Duration("ttl", ttl))
		return res, nil
	})
	return v.(model.FetchResult)
}

func (c *Cache) lookup(ctx context.Context, key string) (model.FetchResult, bool) {
	e, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return model.FetchResult{}, false
	}
	if !found || !e.Live(c.clock.Now()) {
		return model.FetchResult{}, false
	}
	return e.Result, true
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("close cache store: %w", err)
	}
	return nil
}
