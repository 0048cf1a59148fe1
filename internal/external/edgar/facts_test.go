package edgar

import (
	"math"
	"testing"
	"time"

	"github.com/BrettMS9/multibagger/internal/records"
)

func TestAnnualSeries(t *testing.T) {
	gaap := map[string]conceptFacts{
		"OperatingIncomeLoss": {
			Units: map[string][]factEntry{
				"USD": {
					{Val: 100, FiscalYear: 2022, Period: "FY", Form: "10-K"},
					{Val: 999, FiscalYear: 2022, Period: "FY", Form: "10-K/A"}, // duplicate year, first wins
					{Val: 50, FiscalYear: 2023, Period: "Q2", Form: "10-Q"},    // quarterly, dropped
					{Val: 120, FiscalYear: 2023, Period: "FY", Form: "10-K"},
					{Val: 80, FiscalYear: 2023, Period: "FY", Form: "8-K"}, // not an annual report
				},
			},
		},
	}

	series := annualSeries(gaap, operatingIncomeTags)
	if len(series) != 2 {
		t.Fatalf("got %d years, want 2: %v", len(series), series)
	}
	if series[2022] != 100 {
		t.Errorf("2022 = %.0f, want 100 (first occurrence wins)", series[2022])
	}
	if series[2023] != 120 {
		t.Errorf("2023 = %.0f, want 120", series[2023])
	}
}

func TestAnnualSeriesTagFallback(t *testing.T) {
	gaap := map[string]conceptFacts{
		// First depreciation tag absent; the second has the facts.
		"DepreciationAndAmortization": {
			Units: map[string][]factEntry{
				"USD": {{Val: 40, FiscalYear: 2023, Period: "FY", Form: "10-K"}},
			},
		},
	}

	series := annualSeries(gaap, depreciationTags)
	if series[2023] != 40 {
		t.Errorf("fallback tag not used: %v", series)
	}

	if got := annualSeries(gaap, totalAssetsTags); got != nil {
		t.Errorf("missing concept should yield nil, got %v", got)
	}
}

func TestNeedsRefresh(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		series []FiscalFacts
		want   bool
	}{
		{"empty cache", nil, true},
		{"prior year present", []FiscalFacts{{FiscalYear: 2025}}, false},
		{"current year present", []FiscalFacts{{FiscalYear: 2026}}, false},
		{"two years behind", []FiscalFacts{{FiscalYear: 2023}, {FiscalYear: 2024}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := needsRefresh(tt.series, now); got != tt.want {
				t.Errorf("needsRefresh() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildResult(t *testing.T) {
	series := []FiscalFacts{
		{FiscalYear: 2021, EBITDA: records.Float(100), TotalAssets: records.Float(1000)},
		{FiscalYear: 2022, EBITDA: records.Float(120), TotalAssets: records.Float(1100)},
		{
			FiscalYear:   2024,
			EBITDA:       records.Float(172.8),
			TotalAssets:  records.Float(1331),
			FreeCashFlow: records.Float(75),
			BookValue:    records.Float(450),
		},
	}

	result := buildResult(series)

	if result.Source != records.SourceEDGAR {
		t.Errorf("Source = %q", result.Source)
	}
	if result.EBITDAGrowth == nil || math.Abs(*result.EBITDAGrowth-20) > 0.01 {
		t.Errorf("EBITDAGrowth = %v, want 20", result.EBITDAGrowth)
	}
	// Assets: 1000 -> 1331 over 3 years is 10%/yr.
	if result.AssetGrowth == nil || math.Abs(*result.AssetGrowth-10) > 0.01 {
		t.Errorf("AssetGrowth = %v, want 10", result.AssetGrowth)
	}
	if result.FreeCashFlow == nil || *result.FreeCashFlow != 75 {
		t.Errorf("FreeCashFlow = %v, want latest year's 75", result.FreeCashFlow)
	}
	if result.BookValue == nil || *result.BookValue != 450 {
		t.Errorf("BookValue = %v, want 450", result.BookValue)
	}
	if result.TotalAssets == nil || *result.TotalAssets != 1331 {
		t.Errorf("TotalAssets = %v, want 1331", result.TotalAssets)
	}
}

func TestMergeSeriesCachedWins(t *testing.T) {
	cached := []FiscalFacts{
		{FiscalYear: 2022, EBITDA: records.Float(100)},
	}
	fetched := []FiscalFacts{
		{FiscalYear: 2022, EBITDA: records.Float(999)},
		{FiscalYear: 2023, EBITDA: records.Float(120)},
	}

	merged := mergeSeries(cached, fetched)
	if len(merged) != 2 {
		t.Fatalf("got %d rows, want 2", len(merged))
	}
	if *merged[0].EBITDA != 100 {
		t.Errorf("2022 EBITDA = %.0f, want cached 100", *merged[0].EBITDA)
	}
	if merged[0].FiscalYear != 2022 || merged[1].FiscalYear != 2023 {
		t.Error("merged series not sorted by fiscal year")
	}
}
