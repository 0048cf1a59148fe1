package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BrettMS9/multibagger/internal/scoring"
)

// StoredResult is one row of the append-only screening history.
type StoredResult struct {
	ID             int64                 `json:"id"`
	Ticker         string                `json:"ticker"`
	CompanyName    string                `json:"company_name"`
	TotalScore     float64               `json:"total_score"`
	Percentage     float64               `json:"percentage"`
	Classification string                `json:"classification"`
	Factors        []scoring.FactorScore `json:"factors"`
	ComputedAt     time.Time             `json:"computed_at"`
}

// Repository persists screening results. The history is append-only;
// re-screening a ticker adds a row, it never rewrites one.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save appends one screening result to the history.
func (r *Repository) Save(ctx context.Context, res *scoring.ScoringResult, computedAt time.Time) error {
	factors, err := json.Marshal(res.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors %s: %w", res.Ticker, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO screening_results
			(ticker, company_name, total_score, percentage, classification, factors, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.Ticker, res.CompanyName, res.Total, res.Percentage, res.Classification, factors, computedAt,
	)
	if err != nil {
		return fmt.Errorf("save screening result %s: %w", res.Ticker, err)
	}
	return nil
}

// TopScorers returns the most recent result per ticker at or above the
// given percentage, best first.
func (r *Repository) TopScorers(ctx context.Context, minPercentage float64, limit int) ([]StoredResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, ticker, company_name, total_score, percentage, classification, factors, computed_at
		FROM (
			SELECT DISTINCT ON (ticker)
				id, ticker, company_name, total_score, percentage, classification, factors, computed_at
			FROM screening_results
			ORDER BY ticker, computed_at DESC
		) latest
		WHERE percentage >= $1
		ORDER BY percentage DESC
		LIMIT $2`,
		minPercentage, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query top scorers: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// History returns past results for one ticker, newest first.
func (r *Repository) History(ctx context.Context, ticker string, limit int) ([]StoredResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, ticker, company_name, total_score, percentage, classification, factors, computed_at
		FROM screening_results
		WHERE ticker = $1
		ORDER BY computed_at DESC
		LIMIT $2`,
		ticker, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query screening history %s: %w", ticker, err)
	}
	defer rows.Close()

	return scanResults(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows pgxRows) ([]StoredResult, error) {
	var out []StoredResult
	for rows.Next() {
		var sr StoredResult
		var factors []byte
		if err := rows.Scan(
			&sr.ID, &sr.Ticker, &sr.CompanyName, &sr.TotalScore,
			&sr.Percentage, &sr.Classification, &factors, &sr.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("scan screening result: %w", err)
		}
		if err := json.Unmarshal(factors, &sr.Factors); err != nil {
			return nil, fmt.Errorf("unmarshal factors %s: %w", sr.Ticker, err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screening results: %w", err)
	}
	return out, nil
}
