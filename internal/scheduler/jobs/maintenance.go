package jobs

import (
	"context"
	"fmt"

	"github.com/BrettMS9/multibagger/internal/records"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

// CachePurgeJob evicts records that aged out of the freshness window.
// Reads already treat stale records as misses; the purge just keeps the
// table from growing without bound.
type CachePurgeJob struct {
	cache  *records.Cache
	logger *logger.Logger
}

func NewCachePurgeJob(cache *records.Cache, log *logger.Logger) *CachePurgeJob {
	return &CachePurgeJob{cache: cache, logger: log}
}

func (j *CachePurgeJob) Name() string {
	return "cache_purge"
}

// Schedule runs at 1 AM daily, right before the nightly scan.
func (j *CachePurgeJob) Schedule() string {
	return "0 0 1 * * *"
}

func (j *CachePurgeJob) Run(ctx context.Context) error {
	removed, err := j.cache.PurgeStale(ctx)
	if err != nil {
		return fmt.Errorf("purge stale records: %w", err)
	}

	j.logger.WithField("removed", removed).Info("Stale records purged")
	return nil
}
