// Package identity maps ticker symbols to SEC filer identifiers (CIKs).
// A mapping is immutable once resolved and cached without expiry.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

// ErrNotFound means the ticker has no known filer identifier. This is a
// normal, non-fatal outcome: the filings provider simply contributes
// nothing for the ticker.
var ErrNotFound = errors.New("no filer identifier for ticker")

// Mapping is a resolved ticker identity.
type Mapping struct {
	Ticker      string `json:"ticker"`
	CIK         string `json:"cik"`
	CompanyName string `json:"company_name"`
}

// directoryEntry is one issuer in the SEC's full company directory.
type directoryEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// MappingStore persists resolved mappings.
type MappingStore interface {
	Get(ctx context.Context, ticker string) (*Mapping, error)
	Save(ctx context.Context, m *Mapping) error
}

// Resolver resolves tickers via an in-memory map, then the persistent
// mapping table, then a full download of the SEC issuer directory.
type Resolver struct {
	repo         MappingStore
	client       *httputil.Client
	directoryURL string
	logger       *logger.Logger

	mu    sync.RWMutex
	cache map[string]Mapping
}

// NewResolver creates a resolver. The HTTP client must carry the SEC's
// required descriptive User-Agent header.
func NewResolver(repo MappingStore, client *httputil.Client, directoryURL string, log *logger.Logger) *Resolver {
	return &Resolver{
		repo:         repo,
		client:       client,
		directoryURL: directoryURL,
		logger:       log,
		cache:        make(map[string]Mapping),
	}
}

// Resolve maps a ticker to its filer identifier. Returns ErrNotFound
// when the ticker is not in the issuer directory.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (*Mapping, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	if m, ok := r.cache[ticker]; ok {
		r.mu.RUnlock()
		return &m, nil
	}
	r.mu.RUnlock()

	m, err := r.repo.Get(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if m != nil {
		r.remember(*m)
		return m, nil
	}

	m, err = r.lookupDirectory(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if err := r.repo.Save(ctx, m); err != nil {
		// The mapping is still usable this run.
		r.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to persist CIK mapping")
	}
	r.remember(*m)

	r.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"cik":    m.CIK,
	}).Debug("Resolved CIK from issuer directory")

	return m, nil
}

// lookupDirectory downloads the full issuer directory and scans for an
// exact ticker match.
func (r *Resolver) lookupDirectory(ctx context.Context, ticker string) (*Mapping, error) {
	var directory map[string]directoryEntry
	if err := r.client.GetJSON(ctx, r.directoryURL, &directory); err != nil {
		return nil, fmt.Errorf("download issuer directory: %w", err)
	}

	for _, entry := range directory {
		if strings.EqualFold(entry.Ticker, ticker) {
			return &Mapping{
				Ticker:      ticker,
				CIK:         fmt.Sprintf("%d", entry.CIK),
				CompanyName: entry.Title,
			}, nil
		}
	}

	return nil, ErrNotFound
}

func (r *Resolver) remember(m Mapping) {
	r.mu.Lock()
	r.cache[m.Ticker] = m
	r.mu.Unlock()
}
