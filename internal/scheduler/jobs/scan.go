// Package jobs defines the scheduled jobs: the nightly universe scan and
// daily record cache maintenance.
package jobs

import (
	"context"
	"fmt"

	"github.com/BrettMS9/multibagger/internal/screening"
	"github.com/BrettMS9/multibagger/internal/universe"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

// ScanJob screens the whole scraped universe once a night, after the
// record cache from the previous day has gone stale.
type ScanJob struct {
	scraper *universe.Scraper
	service *screening.Service
	workers int
	logger  *logger.Logger
}

func NewScanJob(scraper *universe.Scraper, service *screening.Service, workers int, log *logger.Logger) *ScanJob {
	return &ScanJob{
		scraper: scraper,
		service: service,
		workers: workers,
		logger:  log,
	}
}

func (j *ScanJob) Name() string {
	return "universe_scan"
}

// Schedule runs at 2 AM daily, outside US market hours.
func (j *ScanJob) Schedule() string {
	return "0 0 2 * * *"
}

func (j *ScanJob) Run(ctx context.Context) error {
	tickers, err := j.scraper.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("scrape universe: %w", err)
	}

	outcome, err := j.service.ScreenBatch(ctx, tickers, j.workers)
	if err != nil {
		return fmt.Errorf("batch screen: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"screened": len(outcome.Results),
		"failed":   len(outcome.Failed),
	}).Info("Nightly universe scan complete")

	return nil
}
