package screening

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BrettMS9/multibagger/internal/records"
	"github.com/BrettMS9/multibagger/internal/scoring"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

type stubAcquirer struct {
	mu      sync.Mutex
	records map[string]*records.Record
	errs    map[string]error
	calls   int
}

func (a *stubAcquirer) Acquire(_ context.Context, ticker string) (*records.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if err, ok := a.errs[ticker]; ok {
		return nil, err
	}
	if rec, ok := a.records[ticker]; ok {
		return rec, nil
	}
	return nil, errors.New("unknown ticker")
}

type stubStore struct {
	mu      sync.Mutex
	saved   []*scoring.ScoringResult
	saveErr error
}

func (s *stubStore) Save(_ context.Context, res *scoring.ScoringResult, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, res)
	return nil
}

func (s *stubStore) TopScorers(_ context.Context, _ float64, _ int) ([]StoredResult, error) {
	return nil, nil
}

func (s *stubStore) History(_ context.Context, _ string, _ int) ([]StoredResult, error) {
	return nil, nil
}

func testRecord(ticker string) *records.Record {
	rec := &records.Record{Ticker: ticker, FetchedAt: time.Now(), Sources: []string{records.SourceFMP}}
	rec.CompanyName = records.String(ticker + " Inc")
	rec.MarketCap = records.Float(300e6)
	rec.FreeCashFlow = records.Float(40e6)
	return rec
}

func TestScreenPersistsAndReturnsResult(t *testing.T) {
	acquirer := &stubAcquirer{records: map[string]*records.Record{"AAPL": testRecord("AAPL")}}
	store := &stubStore{}
	svc := NewService(acquirer, store, logger.NewNop(), nil)

	result, err := svc.Screen(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Screen() error = %v", err)
	}

	if result.Ticker != "AAPL" {
		t.Errorf("Ticker = %q", result.Ticker)
	}
	if result.CompanyName != "AAPL Inc" {
		t.Errorf("CompanyName = %q", result.CompanyName)
	}
	if len(result.Sources) != 1 {
		t.Errorf("Sources = %v", result.Sources)
	}
	if result.ComputedAt.IsZero() {
		t.Error("ComputedAt not stamped")
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d results, want 1", len(store.saved))
	}
	if store.saved[0].Ticker != "AAPL" {
		t.Errorf("persisted ticker = %q", store.saved[0].Ticker)
	}
}

func TestScreenSurvivesPersistenceFailure(t *testing.T) {
	acquirer := &stubAcquirer{records: map[string]*records.Record{"AAPL": testRecord("AAPL")}}
	store := &stubStore{saveErr: errors.New("database down")}
	svc := NewService(acquirer, store, logger.NewNop(), nil)

	result, err := svc.Screen(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("a persistence failure must not fail the screening: %v", err)
	}
	if result == nil {
		t.Fatal("result missing")
	}
}

func TestScreenAcquisitionFailurePropagates(t *testing.T) {
	wantErr := errors.New("no fundamentals")
	acquirer := &stubAcquirer{errs: map[string]error{"AAPL": wantErr}}
	svc := NewService(acquirer, &stubStore{}, logger.NewNop(), nil)

	if _, err := svc.Screen(context.Background(), "AAPL"); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestScreenBatchContinuesPastFailures(t *testing.T) {
	acquirer := &stubAcquirer{
		records: map[string]*records.Record{
			"AAPL": testRecord("AAPL"),
			"MSFT": testRecord("MSFT"),
		},
		errs: map[string]error{"FAIL": errors.New("upstream down")},
	}
	store := &stubStore{}
	svc := NewService(acquirer, store, logger.NewNop(), nil)

	outcome, err := svc.ScreenBatch(context.Background(), []string{"AAPL", "FAIL", "MSFT"}, 2)
	if err != nil {
		t.Fatalf("ScreenBatch() error = %v", err)
	}

	if len(outcome.Results) != 2 {
		t.Errorf("got %d results, want 2", len(outcome.Results))
	}
	if len(outcome.Failed) != 1 {
		t.Errorf("got %d failures, want 1", len(outcome.Failed))
	}
	if _, ok := outcome.Failed["FAIL"]; !ok {
		t.Errorf("Failed = %v, missing FAIL", outcome.Failed)
	}
}

func TestScreenBatchSortsByPercentage(t *testing.T) {
	strong := testRecord("AAAA")
	weak := &records.Record{Ticker: "ZZZZ", FetchedAt: time.Now()}

	acquirer := &stubAcquirer{records: map[string]*records.Record{
		"AAAA": strong,
		"ZZZZ": weak,
	}}
	svc := NewService(acquirer, &stubStore{}, logger.NewNop(), nil)

	outcome, err := svc.ScreenBatch(context.Background(), []string{"ZZZZ", "AAAA"}, 1)
	if err != nil {
		t.Fatalf("ScreenBatch() error = %v", err)
	}
	if len(outcome.Results) != 2 {
		t.Fatalf("got %d results", len(outcome.Results))
	}
	if outcome.Results[0].Ticker != "AAAA" {
		t.Errorf("first result = %s, want AAAA (higher percentage)", outcome.Results[0].Ticker)
	}
}
