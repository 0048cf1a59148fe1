package edgar

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FiscalFacts is one fiscal year of fundamentals derived from filings.
// Values are nullable: a filer may not report every concept every year.
type FiscalFacts struct {
	CIK          string
	FiscalYear   int
	EBITDA       *float64
	TotalAssets  *float64
	FreeCashFlow *float64
	BookValue    *float64
}

// Repository is the permanent per-fiscal-year facts cache. Historical
// filings never change, so rows are written once and kept forever.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new filings facts repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetSeries returns all cached fiscal years for a filer, oldest first.
func (r *Repository) GetSeries(ctx context.Context, cik string) ([]FiscalFacts, error) {
	query := `
		SELECT cik, fiscal_year, ebitda, total_assets, free_cash_flow, book_value
		FROM edgar_fundamentals
		WHERE cik = $1
		ORDER BY fiscal_year ASC
	`

	rows, err := r.pool.Query(ctx, query, cik)
	if err != nil {
		return nil, fmt.Errorf("get edgar series %s: %w", cik, err)
	}
	defer rows.Close()

	var series []FiscalFacts
	for rows.Next() {
		var f FiscalFacts
		if err := rows.Scan(&f.CIK, &f.FiscalYear, &f.EBITDA, &f.TotalAssets, &f.FreeCashFlow, &f.BookValue); err != nil {
			return nil, fmt.Errorf("scan edgar series %s: %w", cik, err)
		}
		series = append(series, f)
	}

	return series, rows.Err()
}

// SaveSeries inserts fiscal years not yet cached. Existing rows are left
// untouched: the first fetched occurrence of a fiscal year wins.
func (r *Repository) SaveSeries(ctx context.Context, series []FiscalFacts) error {
	query := `
		INSERT INTO edgar_fundamentals (cik, fiscal_year, ebitda, total_assets, free_cash_flow, book_value)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cik, fiscal_year) DO NOTHING
	`

	for _, f := range series {
		if _, err := r.pool.Exec(ctx, query, f.CIK, f.FiscalYear, f.EBITDA, f.TotalAssets, f.FreeCashFlow, f.BookValue); err != nil {
			return fmt.Errorf("save edgar facts %s FY%d: %w", f.CIK, f.FiscalYear, err)
		}
	}
	return nil
}
