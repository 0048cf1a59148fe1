// Package scoring implements the fixed multi-factor scoring model: a
// pure function from a canonical financial record to nine factor scores,
// a composite total, and a classification band. No I/O, no side effects;
// a factor whose inputs are unknown scores zero, never errors.
package scoring

import "github.com/BrettMS9/multibagger/internal/records"

// MaxTotal is the sum of all factor maximums.
const MaxTotal = 110

// Classification bands, ordered best to worst.
const (
	StrongBuy   = "STRONG BUY"
	ModerateBuy = "MODERATE BUY"
	WeakBuy     = "WEAK BUY"
	Avoid       = "AVOID"
)

// FactorScore is one factor's contribution to the composite.
type FactorScore struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	MaxScore   int     `json:"max_score"`
	HumanValue string  `json:"human_value"`
	Rationale  string  `json:"rationale"`
}

// ScoringResult is the full output of one scoring pass. It is always
// recomputed from a record, never cached on its own.
type ScoringResult struct {
	Ticker         string        `json:"ticker"`
	CompanyName    string        `json:"company_name"`
	Factors        []FactorScore `json:"factors"`
	Total          float64       `json:"total"`
	Percentage     float64       `json:"percentage"`
	Classification string        `json:"classification"`
}

// Score runs the nine factors over a record and composes the result.
func Score(rec *records.Record) *ScoringResult {
	factors := []FactorScore{
		fcfYield(rec),
		size(rec),
		bookToMarket(rec),
		investmentPattern(rec),
		ebitdaMargin(rec),
		returnOnAssets(rec),
		priceRange(rec),
		momentum(rec),
		dividend(rec),
	}

	var total float64
	for _, f := range factors {
		total += f.Score
	}

	percentage := total / MaxTotal * 100

	result := &ScoringResult{
		Ticker:         rec.Ticker,
		Factors:        factors,
		Total:          total,
		Percentage:     percentage,
		Classification: classify(percentage),
	}
	if rec.CompanyName != nil {
		result.CompanyName = *rec.CompanyName
	}

	return result
}

// classify maps a percentage to its classification band.
func classify(percentage float64) string {
	switch {
	case percentage >= 70:
		return StrongBuy
	case percentage >= 55:
		return ModerateBuy
	case percentage >= 40:
		return WeakBuy
	default:
		return Avoid
	}
}
