package alphavantage

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

func newTestClient(t *testing.T, budget, margin int, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.AlphaVantageConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		DailyBudget:  budget,
		BudgetMargin: margin,
	}
	gate := ratelimit.New(ratelimit.Config{Name: "av-test", DailyBudget: budget})
	return NewClient(cfg, httputil.New(logger.NewNop(), 5*time.Second), gate, logger.NewNop())
}

func TestYearValue(t *testing.T) {
	tests := []struct {
		name string
		date string
		raw  string
		year int
		val  float64
		ok   bool
	}{
		{"valid", "2024-12-31", "103680000", 2024, 103680000, true},
		{"missing value is None", "2024-12-31", "None", 0, 0, false},
		{"bad date", "fiscal 2024", "100", 0, 0, false},
		{"negative value", "2023-06-30", "-5000000", 2023, -5000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := yearValue(tt.date, tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (got.Year != tt.year || got.Value != tt.val) {
				t.Errorf("yearValue() = %+v, want {%d %v}", got, tt.year, tt.val)
			}
		})
	}
}

func TestFetchGrowth(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("function") {
		case "INCOME_STATEMENT":
			fmt.Fprint(w, `{"annualReports": [
				{"fiscalDateEnding": "2024-12-31", "ebitda": "172800000"},
				{"fiscalDateEnding": "2023-12-31", "ebitda": "None"},
				{"fiscalDateEnding": "2021-12-31", "ebitda": "100000000"}
			]}`)
		case "BALANCE_SHEET":
			fmt.Fprint(w, `{"annualReports": [
				{"fiscalDateEnding": "2024-12-31", "totalAssets": "1331000000"},
				{"fiscalDateEnding": "2021-12-31", "totalAssets": "1000000000"}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}

	c := newTestClient(t, 25, 5, handler)

	result, err := c.FetchGrowth(context.Background(), "OPRA")
	if err != nil {
		t.Fatalf("FetchGrowth() error = %v", err)
	}

	if result.EBITDAGrowth == nil || math.Abs(*result.EBITDAGrowth-20) > 0.01 {
		t.Errorf("EBITDAGrowth = %v, want 20", result.EBITDAGrowth)
	}
	if result.AssetGrowth == nil || math.Abs(*result.AssetGrowth-10) > 0.01 {
		t.Errorf("AssetGrowth = %v, want 10", result.AssetGrowth)
	}
}

func TestHasBudget(t *testing.T) {
	c := newTestClient(t, 2, 1, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"annualReports": []}`)
	})

	if !c.HasBudget() {
		t.Fatal("fresh budget of 2 with margin 1 should be available")
	}

	// One fetch consumes two calls, leaving remaining <= margin.
	if _, err := c.FetchGrowth(context.Background(), "OPRA"); err != nil {
		t.Fatalf("FetchGrowth() error = %v", err)
	}
	if c.HasBudget() {
		t.Error("budget at the margin must report unavailable")
	}
}

func TestHasBudgetUnlimited(t *testing.T) {
	c := newTestClient(t, 0, 5, func(w http.ResponseWriter, r *http.Request) {})
	if !c.HasBudget() {
		t.Error("an unlimited gate always has budget")
	}
}
