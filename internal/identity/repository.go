package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists ticker to CIK mappings. Mappings never expire:
// filer identifiers do not change.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new mapping repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get retrieves the stored mapping for a ticker, or nil when absent.
func (r *Repository) Get(ctx context.Context, ticker string) (*Mapping, error) {
	query := `
		SELECT ticker, cik, company_name
		FROM cik_mappings
		WHERE ticker = $1
	`

	var m Mapping
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&m.Ticker, &m.CIK, &m.CompanyName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cik mapping %s: %w", ticker, err)
	}

	return &m, nil
}

// Save upserts a mapping.
func (r *Repository) Save(ctx context.Context, m *Mapping) error {
	query := `
		INSERT INTO cik_mappings (ticker, cik, company_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO UPDATE SET
			cik = EXCLUDED.cik,
			company_name = EXCLUDED.company_name
	`

	if _, err := r.pool.Exec(ctx, query, m.Ticker, m.CIK, m.CompanyName); err != nil {
		return fmt.Errorf("save cik mapping %s: %w", m.Ticker, err)
	}
	return nil
}
