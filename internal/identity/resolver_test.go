package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

type memStore struct {
	mappings map[string]*Mapping
	saves    int
}

func newMemStore() *memStore {
	return &memStore{mappings: make(map[string]*Mapping)}
}

func (s *memStore) Get(_ context.Context, ticker string) (*Mapping, error) {
	return s.mappings[ticker], nil
}

func (s *memStore) Save(_ context.Context, m *Mapping) error {
	s.mappings[m.Ticker] = m
	s.saves++
	return nil
}

const directoryBody = `{
	"0": {"cik_str": 1683724, "ticker": "OPRA", "title": "Opera Ltd"},
	"1": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}
}`

func newTestResolver(t *testing.T, store MappingStore) (*Resolver, *int) {
	t.Helper()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, directoryBody)
	}))
	t.Cleanup(srv.Close)

	client := httputil.New(logger.NewNop(), 5*time.Second)
	return NewResolver(store, client, srv.URL, logger.NewNop()), &hits
}

func TestResolveFromDirectory(t *testing.T) {
	store := newMemStore()
	r, hits := newTestResolver(t, store)

	m, err := r.Resolve(context.Background(), "opra")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if m.CIK != "1683724" {
		t.Errorf("CIK = %q, want 1683724", m.CIK)
	}
	if m.Ticker != "OPRA" {
		t.Errorf("Ticker = %q, want normalized OPRA", m.Ticker)
	}
	if m.CompanyName != "Opera Ltd" {
		t.Errorf("CompanyName = %q", m.CompanyName)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
	if *hits != 1 {
		t.Errorf("directory downloads = %d, want 1", *hits)
	}
}

func TestResolveMemoized(t *testing.T) {
	r, hits := newTestResolver(t, newMemStore())

	for i := 0; i < 3; i++ {
		if _, err := r.Resolve(context.Background(), "AAPL"); err != nil {
			t.Fatalf("Resolve() #%d error = %v", i+1, err)
		}
	}

	if *hits != 1 {
		t.Errorf("directory downloads = %d, want 1 (later calls memoized)", *hits)
	}
}

func TestResolvePrefersPersistedMapping(t *testing.T) {
	store := newMemStore()
	store.mappings["AAPL"] = &Mapping{Ticker: "AAPL", CIK: "320193", CompanyName: "Apple Inc."}
	r, hits := newTestResolver(t, store)

	m, err := r.Resolve(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if m.CIK != "320193" {
		t.Errorf("CIK = %q", m.CIK)
	}
	if *hits != 0 {
		t.Errorf("directory downloads = %d, want 0", *hits)
	}
}

func TestResolveUnknownTicker(t *testing.T) {
	r, _ := newTestResolver(t, newMemStore())

	if _, err := r.Resolve(context.Background(), "NOSUCH"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestResolveEmptyTicker(t *testing.T) {
	r, _ := newTestResolver(t, newMemStore())

	if _, err := r.Resolve(context.Background(), "  "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
