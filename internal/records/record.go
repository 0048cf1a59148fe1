// Package records defines the canonical per-ticker financial record, the
// fill-only merge used by the acquisition pipeline, and the time-boxed
// record cache that fronts it.
package records

import "time"

// Provider source tags carried on every ProviderResult.
const (
	SourceFMP          = "fmp"
	SourcePerplexity   = "perplexity"
	SourceYahoo        = "yahoo"
	SourceEDGAR        = "edgar"
	SourceAlphaVantage = "alphavantage"
)

// Fields holds the financial facts of a record. Every field is
// independently nullable: nil means "not yet known", never zero.
type Fields struct {
	CompanyName *string `json:"company_name,omitempty"`
	Sector      *string `json:"sector,omitempty"`
	Industry    *string `json:"industry,omitempty"`

	MarketCap *float64 `json:"market_cap,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	High52W   *float64 `json:"high_52w,omitempty"`
	Low52W    *float64 `json:"low_52w,omitempty"`

	FreeCashFlow *float64 `json:"free_cash_flow,omitempty"`
	BookValue    *float64 `json:"book_value,omitempty"`
	TotalAssets  *float64 `json:"total_assets,omitempty"`

	EBITDAMargin *float64 `json:"ebitda_margin,omitempty"` // percent
	ROA          *float64 `json:"roa,omitempty"`           // percent

	AssetGrowth  *float64 `json:"asset_growth,omitempty"`  // percent, 3y CAGR
	EBITDAGrowth *float64 `json:"ebitda_growth,omitempty"` // percent, 3y CAGR

	DividendYield *float64 `json:"dividend_yield,omitempty"` // percent
	PaysDividend  *bool    `json:"pays_dividend,omitempty"`

	PERatio     *float64 `json:"pe_ratio,omitempty"`
	PriceToBook *float64 `json:"price_to_book,omitempty"`

	Price6MonthsAgo *float64 `json:"price_6mo_ago,omitempty"`
}

// Record is the canonical financial record for one ticker, one per cache
// epoch. The record cache exclusively owns its storage.
type Record struct {
	Ticker string `json:"ticker"`
	Fields

	// Sources lists the providers that contributed fields, in merge order.
	Sources []string `json:"sources,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// ProviderResult is a transient, provider-scoped partial record. It is
// tagged with its source and discarded after being merged.
type ProviderResult struct {
	Source string
	Fields
}

// Fresh reports whether the record is inside the freshness window at the
// given instant. A record exactly at the window boundary is stale.
func (r *Record) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(r.FetchedAt) < window
}

// Merge returns a copy of the record with any still-null fields filled
// from the provider result. Populated fields are never overwritten.
func (r Record) Merge(pr ProviderResult) Record {
	merged := r

	fillString(&merged.CompanyName, pr.CompanyName)
	fillString(&merged.Sector, pr.Sector)
	fillString(&merged.Industry, pr.Industry)

	fillFloat(&merged.MarketCap, pr.MarketCap)
	fillFloat(&merged.Price, pr.Price)
	fillFloat(&merged.High52W, pr.High52W)
	fillFloat(&merged.Low52W, pr.Low52W)

	fillFloat(&merged.FreeCashFlow, pr.FreeCashFlow)
	fillFloat(&merged.BookValue, pr.BookValue)
	fillFloat(&merged.TotalAssets, pr.TotalAssets)

	fillFloat(&merged.EBITDAMargin, pr.EBITDAMargin)
	fillFloat(&merged.ROA, pr.ROA)

	fillFloat(&merged.AssetGrowth, pr.AssetGrowth)
	fillFloat(&merged.EBITDAGrowth, pr.EBITDAGrowth)

	fillFloat(&merged.DividendYield, pr.DividendYield)
	fillBool(&merged.PaysDividend, pr.PaysDividend)

	fillFloat(&merged.PERatio, pr.PERatio)
	fillFloat(&merged.PriceToBook, pr.PriceToBook)

	fillFloat(&merged.Price6MonthsAgo, pr.Price6MonthsAgo)

	if pr.Source != "" {
		merged.Sources = append(append([]string(nil), r.Sources...), pr.Source)
	}

	return merged
}

// HasGrowthMetrics reports whether both growth fields are populated.
func (f *Fields) HasGrowthMetrics() bool {
	return f.EBITDAGrowth != nil && f.AssetGrowth != nil
}

func fillFloat(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillString(dst **string, src *string) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

func fillBool(dst **bool, src *bool) {
	if *dst == nil && src != nil {
		v := *src
		*dst = &v
	}
}

// Float returns a pointer to v. Convenience for building partial results.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
