// Package screening ties acquisition and scoring together: one call
// resolves a canonical record, scores it, and appends the result to the
// screening history.
package screening

import (
	"context"
	"time"

	"github.com/BrettMS9/multibagger/internal/acquire"
	"github.com/BrettMS9/multibagger/internal/records"
	"github.com/BrettMS9/multibagger/internal/scoring"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/metrics"
)

// Acquirer resolves the canonical record for a ticker.
type Acquirer interface {
	Acquire(ctx context.Context, ticker string) (*records.Record, error)
}

// ResultStore persists and queries the screening history.
type ResultStore interface {
	Save(ctx context.Context, res *scoring.ScoringResult, computedAt time.Time) error
	TopScorers(ctx context.Context, minPercentage float64, limit int) ([]StoredResult, error)
	History(ctx context.Context, ticker string, limit int) ([]StoredResult, error)
}

// Service screens tickers: record acquisition, scoring, persistence.
type Service struct {
	acquirer Acquirer
	repo     ResultStore
	logger   *logger.Logger
	metrics  *metrics.Registry

	now func() time.Time
}

func NewService(acquirer Acquirer, repo ResultStore, log *logger.Logger, m *metrics.Registry) *Service {
	return &Service{
		acquirer: acquirer,
		repo:     repo,
		logger:   log,
		metrics:  m,
		now:      time.Now,
	}
}

// Result is a scored screening with its record's provenance attached.
type Result struct {
	*scoring.ScoringResult
	Sources    []string  `json:"sources"`
	FetchedAt  time.Time `json:"fetched_at"`
	ComputedAt time.Time `json:"computed_at"`
}

// Screen runs the full pipeline for one ticker. Persistence failures are
// logged but do not fail the screening: the caller still gets the score.
func (s *Service) Screen(ctx context.Context, ticker string) (*Result, error) {
	started := s.now()

	rec, err := s.acquirer.Acquire(ctx, ticker)
	if err != nil {
		return nil, err
	}

	scored := scoring.Score(rec)
	computedAt := s.now()

	if err := s.repo.Save(ctx, scored, computedAt); err != nil {
		s.logger.WithError(err).WithField("ticker", ticker).Error("Failed to persist screening result")
	}

	s.observe(scored.Classification, computedAt.Sub(started))

	s.logger.WithFields(map[string]interface{}{
		"ticker":         ticker,
		"total":          scored.Total,
		"percentage":     scored.Percentage,
		"classification": scored.Classification,
		"sources":        rec.Sources,
	}).Info("Screening complete")

	return &Result{
		ScoringResult: scored,
		Sources:       rec.Sources,
		FetchedAt:     rec.FetchedAt,
		ComputedAt:    computedAt,
	}, nil
}

// TopScorers returns the latest result per ticker above the threshold.
func (s *Service) TopScorers(ctx context.Context, minPercentage float64, limit int) ([]StoredResult, error) {
	return s.repo.TopScorers(ctx, minPercentage, limit)
}

// History returns past screenings for a ticker, newest first.
func (s *Service) History(ctx context.Context, ticker string, limit int) ([]StoredResult, error) {
	return s.repo.History(ctx, ticker, limit)
}

func (s *Service) observe(classification string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.Screenings.WithLabelValues(classification).Inc()
	s.metrics.ScreenDuration.Observe(elapsed.Seconds())
}

var _ Acquirer = (*acquire.Orchestrator)(nil)
