package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

func TestPriceAt(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
	}
	points := []pricePoint{
		{ts: day(0), close: 10},
		{ts: day(10), close: 11},
		{ts: day(20), close: 12},
		{ts: day(30), close: 13},
	}

	tests := []struct {
		name   string
		target time.Time
		want   float64
	}{
		{"exact match", day(20), 12},
		{"between points picks earlier", day(15), 11},
		{"after all points picks latest", day(90), 13},
		{"before all points falls back to oldest", day(-30), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := priceAt(points, tt.target)
			if got == nil {
				t.Fatal("priceAt() = nil")
			}
			if *got != tt.want {
				t.Errorf("priceAt() = %.0f, want %.0f", *got, tt.want)
			}
		})
	}
}

func TestPriceAtEmptySeries(t *testing.T) {
	if got := priceAt(nil, time.Now()); got != nil {
		t.Errorf("priceAt(nil) = %v, want nil", *got)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.YahooConfig{BaseURL: srv.URL}
	gate := ratelimit.New(ratelimit.Config{Name: "yahoo-test"})
	return NewClient(cfg, httputil.New(logger.NewNop(), 5*time.Second), gate, logger.NewNop())
}

func TestFetchHistoryComputesRange(t *testing.T) {
	now := time.Now().Unix()
	body := fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%d, %d, %d],
				"indicators": {"quote": [{
					"close": [10.0, null, 14.0],
					"high": [11.0, 16.5, 15.0],
					"low": [9.5, 8.25, 13.0]
				}]}
			}],
			"error": null
		}
	}`, now-200*86400, now-100*86400, now-86400)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/OPRA" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(body))
	})

	result, err := c.FetchHistory(context.Background(), "OPRA")
	if err != nil {
		t.Fatalf("FetchHistory() error = %v", err)
	}

	if result.High52W == nil || *result.High52W != 16.5 {
		t.Errorf("High52W = %v, want 16.5", result.High52W)
	}
	if result.Low52W == nil || *result.Low52W != 8.25 {
		t.Errorf("Low52W = %v, want 8.25", result.Low52W)
	}
	// The 200-day-old close is the nearest one not after the 180 day
	// target; the null close 100 days ago must be skipped.
	if result.Price6MonthsAgo == nil || *result.Price6MonthsAgo != 10.0 {
		t.Errorf("Price6MonthsAgo = %v, want 10.0", result.Price6MonthsAgo)
	}
}

func TestFetchHistoryProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`))
	})

	if _, err := c.FetchHistory(context.Background(), "BOGUS"); err == nil {
		t.Fatal("expected an error for a chart error payload")
	}
}
