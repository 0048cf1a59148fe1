package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists canonical financial records keyed by ticker.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new record repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get retrieves the stored record for a ticker, or nil when absent.
// Freshness is not evaluated here; the cache decides that.
func (r *Repository) Get(ctx context.Context, ticker string) (*Record, error) {
	query := `
		SELECT record, fetched_at
		FROM financial_records
		WHERE ticker = $1
	`

	var data []byte
	var fetchedAt time.Time
	err := r.pool.QueryRow(ctx, query, ticker).Scan(&data, &fetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", ticker, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", ticker, err)
	}
	rec.Ticker = ticker
	rec.FetchedAt = fetchedAt

	return &rec, nil
}

// Put upserts a record, replacing any prior entry for the ticker.
func (r *Repository) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.Ticker, err)
	}

	query := `
		INSERT INTO financial_records (ticker, record, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO UPDATE SET
			record = EXCLUDED.record,
			fetched_at = EXCLUDED.fetched_at
	`

	if _, err := r.pool.Exec(ctx, query, rec.Ticker, data, rec.FetchedAt); err != nil {
		return fmt.Errorf("put record %s: %w", rec.Ticker, err)
	}
	return nil
}

// PurgeOlderThan removes all records fetched before the cutoff and
// returns the number removed.
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM financial_records WHERE fetched_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge stale records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeAll removes every stored record and returns the number removed.
func (r *Repository) PurgeAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM financial_records`)
	if err != nil {
		return 0, fmt.Errorf("purge all records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Counts returns total and fresh record counts given a freshness cutoff.
func (r *Repository) Counts(ctx context.Context, cutoff time.Time) (total, fresh int64, err error) {
	query := `
		SELECT count(*),
		       count(*) FILTER (WHERE fetched_at > $1)
		FROM financial_records
	`
	if err := r.pool.QueryRow(ctx, query, cutoff).Scan(&total, &fresh); err != nil {
		return 0, 0, fmt.Errorf("count records: %w", err)
	}
	return total, fresh, nil
}
