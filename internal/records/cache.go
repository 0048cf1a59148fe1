package records

import (
	"context"
	"time"

	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/metrics"
	"github.com/BrettMS9/multibagger/pkg/redis"
)

// Stats summarizes the cache contents.
type Stats struct {
	Total int64 `json:"total"`
	Fresh int64 `json:"fresh"`
	Stale int64 `json:"stale"`
}

// Cache is the time-boxed store of canonical records fronting the whole
// acquisition pipeline. Reads discard records outside the freshness
// window and report them as misses.
type Cache struct {
	repo    *Repository
	fast    *redis.Cache
	window  time.Duration
	logger  *logger.Logger
	metrics *metrics.Registry

	now func() time.Time // injectable for tests
}

// NewCache creates a record cache with the given freshness window. The
// redis fast path may be a disabled client; metrics may be nil.
func NewCache(repo *Repository, fast *redis.Cache, window time.Duration, log *logger.Logger, m *metrics.Registry) *Cache {
	return &Cache{
		repo:    repo,
		fast:    fast,
		window:  window,
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}

// Get returns the cached record for a ticker, or found=false when the
// record is absent or stale.
func (c *Cache) Get(ctx context.Context, ticker string) (*Record, bool, error) {
	if rec := c.getFast(ctx, ticker); rec != nil {
		c.countHit()
		return rec, true, nil
	}

	rec, err := c.repo.Get(ctx, ticker)
	if err != nil {
		return nil, false, err
	}
	if rec == nil || !rec.Fresh(c.now(), c.window) {
		c.countMiss()
		return nil, false, nil
	}

	c.countHit()
	return rec, true, nil
}

// Put upserts a record, replacing any prior entry for the ticker.
func (c *Cache) Put(ctx context.Context, rec *Record) error {
	if err := c.repo.Put(ctx, rec); err != nil {
		return err
	}

	if err := c.fast.Set(ctx, rec.Ticker, rec, c.window); err != nil {
		// Fast path failures degrade to repository reads only.
		c.logger.WithError(err).WithField("ticker", rec.Ticker).Warn("Record fast-cache write failed")
	}

	return nil
}

// PurgeStale removes all entries older than the freshness window and
// returns the count removed.
func (c *Cache) PurgeStale(ctx context.Context) (int64, error) {
	return c.repo.PurgeOlderThan(ctx, c.now().Add(-c.window))
}

// PurgeAll empties the cache and returns the count removed.
func (c *Cache) PurgeAll(ctx context.Context) (int64, error) {
	if err := c.fast.DeletePrefix(ctx); err != nil {
		c.logger.WithError(err).Warn("Record fast-cache purge failed")
	}
	return c.repo.PurgeAll(ctx)
}

// Stats reports total, fresh, and stale entry counts.
func (c *Cache) Stats(ctx context.Context) (*Stats, error) {
	total, fresh, err := c.repo.Counts(ctx, c.now().Add(-c.window))
	if err != nil {
		return nil, err
	}
	return &Stats{
		Total: total,
		Fresh: fresh,
		Stale: total - fresh,
	}, nil
}

// getFast tries the redis fast path; any failure falls through to the
// repository.
func (c *Cache) getFast(ctx context.Context, ticker string) *Record {
	var rec Record
	found, err := c.fast.Get(ctx, ticker, &rec)
	if err != nil || !found {
		return nil
	}
	if !rec.Fresh(c.now(), c.window) {
		return nil
	}
	return &rec
}

func (c *Cache) countHit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *Cache) countMiss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
