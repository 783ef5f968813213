package exchangerate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fundledger/internal/ledger"
	"fundledger/internal/logger"
)

// ErrUnavailable is returned when no usable rate can be produced.
var ErrUnavailable = errors.New("exchange rate unavailable")

// fetchTimeout bounds a shared fetch, which runs detached from the context of
// the caller that started it.
const fetchTimeout = 15 * time.Second

// Cache wraps a Source with a freshness window. A cached rate younger than
// ttl is served without a remote call. When a refresh fails, a rate younger
// than maxStale is still served; beyond that the rate is unavailable.
type Cache struct {
	source   Source
	ttl      time.Duration
	maxStale time.Duration
	now      func() time.Time
	log      *zap.SugaredLogger

	mu      sync.RWMutex
	current *ledger.Rate
	group   singleflight.Group
}

// NewCache creates a Cache over source.
func NewCache(source Source, ttl, maxStale time.Duration) *Cache {
	if maxStale < ttl {
		maxStale = ttl
	}
	return &Cache{
		source:   source,
		ttl:      ttl,
		maxStale: maxStale,
		now:      time.Now,
		log:      logger.Named("exchangerate"),
	}
}

// Peek returns the cached rate, if any, without fetching.
func (c *Cache) Peek() *ledger.Rate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	r := *c.current
	return &r
}

// Current returns a fresh rate, refreshing it from the source when the cached
// value is stale. Concurrent refreshes share a single remote call.
func (c *Cache) Current(ctx context.Context) (*ledger.Rate, error) {
	cached := c.Peek()
	if !cached.IsStale(c.now(), c.ttl) {
		return cached, nil
	}

	rate, err := c.refresh(ctx)
	if err == nil {
		return rate, nil
	}

	if cached != nil && !cached.IsStale(c.now(), c.maxStale) {
		c.log.Warnw("exchange rate refresh failed, serving cached value",
			"error", err,
			"fetched_at", cached.FetchedAt,
		)
		return cached, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Refresh fetches a new rate regardless of the cached one. On failure the
// cache is left untouched.
func (c *Cache) Refresh(ctx context.Context) (*ledger.Rate, error) {
	rate, err := c.refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rate, nil
}

// refresh joins the in-flight fetch or starts one. The fetch runs detached
// from ctx so a cancelled caller only abandons its own wait.
func (c *Cache) refresh(ctx context.Context) (*ledger.Rate, error) {
	ch := c.group.DoChan("rate", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		rate, fetchErr := c.source.Fetch(fetchCtx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		c.mu.Lock()
		c.current = &rate
		c.mu.Unlock()
		c.log.Infow("exchange rate refreshed", "rate", rate.Value.String(), "fetched_at", rate.FetchedAt)
		return rate, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		rate := res.Val.(ledger.Rate)
		return &rate, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached rate so the next call refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
