// Package acquire sequences the upstream providers in fixed priority
// order and merges their partial results into one canonical record.
// Every fallback step is fill-only: a later provider can populate fields
// that are still null, never overwrite one.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BrettMS9/multibagger/internal/records"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/metrics"
)

// ErrPrimaryProvider marks a total failure of the mandatory primary
// fundamentals provider, the only fatal condition in the pipeline.
var ErrPrimaryProvider = errors.New("primary fundamentals provider failed")

// PrimaryProvider is the mandatory first-priority fundamentals source.
type PrimaryProvider interface {
	Fetch(ctx context.Context, ticker string) (*records.ProviderResult, error)
}

// GrowthProvider supplies growth metrics only.
type GrowthProvider interface {
	FetchGrowth(ctx context.Context, ticker string) (*records.ProviderResult, error)
}

// HistoryProvider supplies the 52-week range and the six-months-ago price.
type HistoryProvider interface {
	FetchHistory(ctx context.Context, ticker string) (*records.ProviderResult, error)
}

// FilingsProvider supplies fundamentals derived from regulatory filings.
type FilingsProvider interface {
	Fetch(ctx context.Context, ticker string) (*records.ProviderResult, error)
}

// BudgetedGrowthProvider is a growth source with a hard daily budget.
type BudgetedGrowthProvider interface {
	GrowthProvider
	HasBudget() bool
}

// RecordCache stores canonical records with a freshness window.
type RecordCache interface {
	Get(ctx context.Context, ticker string) (*records.Record, bool, error)
	Put(ctx context.Context, rec *records.Record) error
}

// Orchestrator runs the acquisition pipeline for one ticker at a time.
// All persistence is delegated to the record cache.
type Orchestrator struct {
	cache      RecordCache
	primary    PrimaryProvider
	aiGrowth   GrowthProvider
	history    HistoryProvider
	filings    FilingsProvider
	lastResort BudgetedGrowthProvider
	logger     *logger.Logger
	metrics    *metrics.Registry

	now func() time.Time
}

// NewOrchestrator wires the provider chain. Any fallback provider may be
// nil, in which case its step is skipped.
func NewOrchestrator(
	cache RecordCache,
	primary PrimaryProvider,
	aiGrowth GrowthProvider,
	history HistoryProvider,
	filings FilingsProvider,
	lastResort BudgetedGrowthProvider,
	log *logger.Logger,
	m *metrics.Registry,
) *Orchestrator {
	return &Orchestrator{
		cache:      cache,
		primary:    primary,
		aiGrowth:   aiGrowth,
		history:    history,
		filings:    filings,
		lastResort: lastResort,
		logger:     log,
		metrics:    m,
		now:        time.Now,
	}
}

// fillStep is one fallback provider in the fixed priority ordering.
type fillStep struct {
	source string
	needed func(*records.Record) bool
	fetch  func(context.Context, string) (*records.ProviderResult, error)
}

// Acquire resolves the canonical record for a ticker: cache hit, or the
// full provider chain followed by a cache write. Only a total primary
// provider failure is fatal; every fallback failure is swallowed and the
// pipeline continues with partial data.
func (o *Orchestrator) Acquire(ctx context.Context, ticker string) (*records.Record, error) {
	if rec, found, err := o.cache.Get(ctx, ticker); err != nil {
		return nil, err
	} else if found {
		return rec, nil
	}

	primary, err := o.primary.Fetch(ctx, ticker)
	if err != nil {
		// Nothing is written to the cache on this path.
		o.countProvider(records.SourceFMP, "error")
		return nil, fmt.Errorf("%w: %s: %v", ErrPrimaryProvider, ticker, err)
	}
	o.countProvider(records.SourceFMP, "ok")

	rec := records.Record{
		Ticker:    ticker,
		FetchedAt: o.now(),
	}.Merge(*primary)

	for _, step := range o.steps() {
		if step.fetch == nil || !step.needed(&rec) {
			continue
		}

		result, err := step.fetch(ctx, ticker)
		if err != nil {
			o.countProvider(step.source, "error")
			o.logger.WithError(err).WithFields(map[string]interface{}{
				"ticker":   ticker,
				"provider": step.source,
			}).Warn("Fallback provider failed, continuing with partial data")
			continue
		}

		before := rec
		rec = rec.Merge(*result)
		if filledAnything(&before, &rec) {
			o.countProvider(step.source, "ok")
		} else {
			o.countProvider(step.source, "empty")
		}
	}

	if err := o.cache.Put(ctx, &rec); err != nil {
		return nil, fmt.Errorf("cache merged record %s: %w", ticker, err)
	}

	return &rec, nil
}

// steps returns the ordered fallback chain. Primary data is cheapest and
// most complete; AI search is reserved for gaps; filings need a resolver
// round-trip; the last-resort provider is throttled hardest.
func (o *Orchestrator) steps() []fillStep {
	steps := []fillStep{
		{
			source: records.SourcePerplexity,
			needed: missingGrowth,
		},
		{
			source: records.SourceYahoo,
			needed: missingHistory,
		},
		{
			source: records.SourceEDGAR,
			needed: missingGrowth,
		},
		{
			source: records.SourceAlphaVantage,
			needed: missingGrowth,
		},
	}

	if o.aiGrowth != nil {
		steps[0].fetch = o.aiGrowth.FetchGrowth
	}
	if o.history != nil {
		steps[1].fetch = o.history.FetchHistory
	}
	if o.filings != nil {
		steps[2].fetch = o.filings.Fetch
	}
	if o.lastResort != nil && o.lastResort.HasBudget() {
		steps[3].fetch = o.lastResort.FetchGrowth
	}

	return steps
}

func missingGrowth(rec *records.Record) bool {
	return rec.EBITDAGrowth == nil || rec.AssetGrowth == nil
}

func missingHistory(rec *records.Record) bool {
	return rec.Price6MonthsAgo == nil || rec.High52W == nil || rec.Low52W == nil
}

// filledAnything reports whether the merge populated at least one field.
func filledAnything(before, after *records.Record) bool {
	checks := []struct{ before, after bool }{
		{before.EBITDAGrowth == nil, after.EBITDAGrowth == nil},
		{before.AssetGrowth == nil, after.AssetGrowth == nil},
		{before.High52W == nil, after.High52W == nil},
		{before.Low52W == nil, after.Low52W == nil},
		{before.Price6MonthsAgo == nil, after.Price6MonthsAgo == nil},
		{before.FreeCashFlow == nil, after.FreeCashFlow == nil},
		{before.BookValue == nil, after.BookValue == nil},
		{before.TotalAssets == nil, after.TotalAssets == nil},
	}
	for _, c := range checks {
		if c.before && !c.after {
			return true
		}
	}
	return false
}

func (o *Orchestrator) countProvider(provider, outcome string) {
	if o.metrics != nil {
		o.metrics.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	}
}
