package screening

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchOutcome aggregates a batch scan. Per-ticker failures are recorded
// and do not abort the batch.
type BatchOutcome struct {
	Results []*Result         `json:"results"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// ScreenBatch screens a list of tickers with bounded concurrency. The
// provider gates still serialize upstream calls; workers only overlap
// cache reads and independent providers. Results come back sorted by
// percentage, best first.
func (s *Service) ScreenBatch(ctx context.Context, tickers []string, workers int) (*BatchOutcome, error) {
	if workers <= 0 {
		workers = 4
	}

	outcome := &BatchOutcome{Failed: make(map[string]string)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			res, err := s.Screen(gctx, ticker)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// A failed ticker never sinks the batch, but a dead
				// context means every remaining ticker would fail too.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.WithError(err).WithField("ticker", ticker).Warn("Batch screening skipped ticker")
				outcome.Failed[ticker] = err.Error()
				return nil
			}
			outcome.Results = append(outcome.Results, res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(outcome.Results, func(i, j int) bool {
		return outcome.Results[i].Percentage > outcome.Results[j].Percentage
	})

	if len(outcome.Failed) == 0 {
		outcome.Failed = nil
	}
	return outcome, nil
}
