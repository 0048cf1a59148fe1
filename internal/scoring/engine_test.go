package scoring

import (
	"testing"

	"github.com/BrettMS9/multibagger/internal/records"
)

// perfectRecord hits the top band of every factor.
func perfectRecord() *records.Record {
	rec := &records.Record{Ticker: "OPRA"}
	rec.CompanyName = records.String("Opera Ltd")
	rec.MarketCap = records.Float(300e6)          // micro cap
	rec.FreeCashFlow = records.Float(45e6)        // 15% yield
	rec.BookValue = records.Float(330e6)          // B/M 1.1
	rec.EBITDAGrowth = records.Float(25)          // outgrowing assets
	rec.AssetGrowth = records.Float(5)
	rec.EBITDAMargin = records.Float(22)
	rec.ROA = records.Float(14)
	rec.Price = records.Float(10.5)
	rec.High52W = records.Float(20)
	rec.Low52W = records.Float(10) // 5% of range
	rec.Price6MonthsAgo = records.Float(13)       // -19% momentum
	rec.PaysDividend = records.Bool(true)
	rec.DividendYield = records.Float(4.2)
	return rec
}

func TestScorePerfectRecord(t *testing.T) {
	result := Score(perfectRecord())

	if result.Total != MaxTotal {
		t.Errorf("Total = %.1f, want %d", result.Total, MaxTotal)
		for _, f := range result.Factors {
			t.Logf("  %s: %.1f/%d (%s)", f.Name, f.Score, f.MaxScore, f.HumanValue)
		}
	}
	if result.Percentage != 100 {
		t.Errorf("Percentage = %.1f, want 100", result.Percentage)
	}
	if result.Classification != StrongBuy {
		t.Errorf("Classification = %q, want %q", result.Classification, StrongBuy)
	}
	if result.CompanyName != "Opera Ltd" {
		t.Errorf("CompanyName = %q", result.CompanyName)
	}
	if len(result.Factors) != 9 {
		t.Fatalf("got %d factors, want 9", len(result.Factors))
	}
}

func TestScoreEmptyRecord(t *testing.T) {
	rec := &records.Record{Ticker: "NULL"}
	result := Score(rec)

	// Every factor but momentum scores zero on unknown inputs; momentum
	// falls back to its neutral estimate.
	want := neutralMomentum
	if result.Total != want {
		t.Errorf("Total = %.1f, want %.1f", result.Total, want)
	}
	if result.Classification != Avoid {
		t.Errorf("Classification = %q, want %q", result.Classification, Avoid)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	rec := perfectRecord()
	first := Score(rec)
	second := Score(rec)

	if first.Total != second.Total || first.Classification != second.Classification {
		t.Errorf("scoring is not deterministic: %v vs %v", first.Total, second.Total)
	}
	for i := range first.Factors {
		if first.Factors[i].Score != second.Factors[i].Score {
			t.Errorf("factor %s differs between runs", first.Factors[i].Name)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, StrongBuy},
		{70, StrongBuy},
		{69.9, ModerateBuy},
		{55, ModerateBuy},
		{54.9, WeakBuy},
		{40, WeakBuy},
		{39.9, Avoid},
		{0, Avoid},
	}

	for _, tt := range tests {
		if got := classify(tt.percentage); got != tt.want {
			t.Errorf("classify(%.1f) = %q, want %q", tt.percentage, got, tt.want)
		}
	}
}
