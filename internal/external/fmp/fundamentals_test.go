package fmp

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

const (
	profileBody = `[{"companyName": "Opera Ltd", "sector": "Technology", "industry": "Software",
		"mktCap": 1200000000, "price": 13.5, "lastDiv": 0.8}]`

	quoteBody = `[{"price": 14.0, "yearHigh": 21.0, "yearLow": 10.0, "marketCap": 1250000000, "pe": 11.2}]`

	incomeBody = `[
		{"calendarYear": "2024", "revenue": 480000000, "ebitda": 103680000, "netIncome": 60000000},
		{"calendarYear": "2023", "revenue": 430000000, "ebitda": 86400000, "netIncome": 50000000},
		{"calendarYear": "2022", "revenue": 390000000, "ebitda": 72000000, "netIncome": 42000000},
		{"calendarYear": "2021", "revenue": 350000000, "ebitda": 60000000, "netIncome": 35000000}
	]`

	balanceBody = `[
		{"calendarYear": "2024", "totalAssets": 1331000000, "totalStockholdersEquity": 500000000},
		{"calendarYear": "2023", "totalAssets": 1210000000, "totalStockholdersEquity": 460000000},
		{"calendarYear": "2022", "totalAssets": 1100000000, "totalStockholdersEquity": 420000000},
		{"calendarYear": "2021", "totalAssets": 1000000000, "totalStockholdersEquity": 380000000}
	]`

	cashflowBody = `[{"calendarYear": "2024", "freeCashFlow": 0, "operatingCashFlow": 90000000, "capitalExpenditure": 15000000}]`
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.FMPConfig{APIKey: "test-key", BaseURL: srv.URL}
	gate := ratelimit.New(ratelimit.Config{Name: "fmp-test"})
	return NewClient(cfg, httputil.New(logger.NewNop(), 5*time.Second), gate, logger.NewNop())
}

func fullHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "test-key" {
			t.Errorf("missing apikey on %s", r.URL.Path)
		}
		switch {
		case strings.HasPrefix(r.URL.Path, "/profile/"):
			fmt.Fprint(w, profileBody)
		case strings.HasPrefix(r.URL.Path, "/quote/"):
			fmt.Fprint(w, quoteBody)
		case strings.HasPrefix(r.URL.Path, "/income-statement/"):
			fmt.Fprint(w, incomeBody)
		case strings.HasPrefix(r.URL.Path, "/balance-sheet-statement/"):
			fmt.Fprint(w, balanceBody)
		case strings.HasPrefix(r.URL.Path, "/cash-flow-statement/"):
			fmt.Fprint(w, cashflowBody)
		default:
			http.NotFound(w, r)
		}
	}
}

func TestFetchFullRecord(t *testing.T) {
	c := newTestClient(t, fullHandler(t))

	result, err := c.Fetch(context.Background(), "OPRA")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if result.CompanyName == nil || *result.CompanyName != "Opera Ltd" {
		t.Errorf("CompanyName = %v", result.CompanyName)
	}

	// Quote values win over profile values.
	if result.Price == nil || *result.Price != 14.0 {
		t.Errorf("Price = %v, want quote's 14.0", result.Price)
	}
	if result.MarketCap == nil || *result.MarketCap != 1250000000 {
		t.Errorf("MarketCap = %v, want quote's 1.25B", result.MarketCap)
	}
	if result.High52W == nil || *result.High52W != 21.0 {
		t.Errorf("High52W = %v", result.High52W)
	}

	// EBITDA margin from the latest income statement: 103.68/480 = 21.6%.
	if result.EBITDAMargin == nil || math.Abs(*result.EBITDAMargin-21.6) > 0.01 {
		t.Errorf("EBITDAMargin = %v, want 21.6", result.EBITDAMargin)
	}

	// ROA: 60/1331 = 4.508%.
	if result.ROA == nil || math.Abs(*result.ROA-4.508) > 0.01 {
		t.Errorf("ROA = %v, want ~4.51", result.ROA)
	}

	// FCF falls back to OCF - capex when freeCashFlow is zero.
	if result.FreeCashFlow == nil || *result.FreeCashFlow != 75000000 {
		t.Errorf("FreeCashFlow = %v, want 75M", result.FreeCashFlow)
	}

	// Four annual periods: growth computed. EBITDA 60M -> 103.68M over
	// 3 years is 20%/yr; assets 1000M -> 1331M is 10%/yr.
	if result.EBITDAGrowth == nil || math.Abs(*result.EBITDAGrowth-20) > 0.01 {
		t.Errorf("EBITDAGrowth = %v, want 20", result.EBITDAGrowth)
	}
	if result.AssetGrowth == nil || math.Abs(*result.AssetGrowth-10) > 0.01 {
		t.Errorf("AssetGrowth = %v, want 10", result.AssetGrowth)
	}

	if result.PaysDividend == nil || !*result.PaysDividend {
		t.Error("PaysDividend = false, want true for lastDiv > 0")
	}
	// Yield: 0.8 / 14.0 * 100.
	if result.DividendYield == nil || math.Abs(*result.DividendYield-5.714) > 0.01 {
		t.Errorf("DividendYield = %v, want ~5.71", result.DividendYield)
	}
}

func TestFetchFailsWithoutProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	})

	if _, err := c.Fetch(context.Background(), "BOGUS"); err == nil {
		t.Fatal("expected an error for an empty profile")
	}
}

func TestFetchSurvivesMissingStatements(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/profile/"):
			fmt.Fprint(w, profileBody)
		case strings.HasPrefix(r.URL.Path, "/quote/"):
			fmt.Fprint(w, quoteBody)
		default:
			http.Error(w, "payment required", http.StatusPaymentRequired)
		}
	})

	result, err := c.Fetch(context.Background(), "OPRA")
	if err != nil {
		t.Fatalf("statement failures must not be fatal: %v", err)
	}
	if result.EBITDAGrowth != nil {
		t.Error("EBITDAGrowth should be nil without statement history")
	}
	if result.Price == nil {
		t.Error("profile fields missing")
	}
}

func TestFetchNoGrowthUnderFourPeriods(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/profile/"):
			fmt.Fprint(w, profileBody)
		case strings.HasPrefix(r.URL.Path, "/quote/"):
			fmt.Fprint(w, quoteBody)
		case strings.HasPrefix(r.URL.Path, "/income-statement/"):
			fmt.Fprint(w, `[
				{"calendarYear": "2024", "revenue": 480000000, "ebitda": 100000000, "netIncome": 1},
				{"calendarYear": "2023", "revenue": 430000000, "ebitda": 90000000, "netIncome": 1}
			]`)
		default:
			fmt.Fprint(w, "[]")
		}
	})

	result, err := c.Fetch(context.Background(), "OPRA")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.EBITDAGrowth != nil {
		t.Errorf("EBITDAGrowth = %v, want nil with under four periods", *result.EBITDAGrowth)
	}
	if result.EBITDAMargin == nil {
		t.Error("EBITDAMargin should still come from the latest statement")
	}
}

func TestEndpointEscapesTicker(t *testing.T) {
	c := &Client{apiKey: "k", baseURL: "https://example.test/api/v3"}
	got := c.endpoint("profile", "BRK.B", nil)
	if !strings.Contains(got, "/profile/BRK.B?") {
		t.Errorf("endpoint = %s", got)
	}
	if !strings.Contains(got, "apikey=k") {
		t.Errorf("endpoint missing apikey: %s", got)
	}
}
