package universe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

const listingPage = `<html><body>
<table>
<thead><tr><th>Symbol</th><th>Company</th></tr></thead>
<tbody>
<tr><td>OPRA</td><td>Opera Ltd</td></tr>
<tr><td>brk.b</td><td>Berkshire Hathaway</td></tr>
<tr><td>OPRA</td><td>Duplicate row</td></tr>
<tr><td>Not A Ticker</td><td>Garbage row</td></tr>
<tr><td>AAPL</td><td>Apple Inc.</td></tr>
</tbody>
</table>
<table><tbody><tr><td>WRONG</td></tr></tbody></table>
</body></html>`

func newTestScraper(t *testing.T, limit int, body string) *Scraper {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	client := httputil.New(logger.NewNop(), 5*time.Second)
	return NewScraper(client, srv.URL, limit, logger.NewNop())
}

func TestTickersScrapesFirstTable(t *testing.T) {
	s := newTestScraper(t, 0, listingPage)

	tickers, err := s.Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers() error = %v", err)
	}

	want := []string{"OPRA", "BRK.B", "AAPL"}
	if len(tickers) != len(want) {
		t.Fatalf("Tickers() = %v, want %v", tickers, want)
	}
	for i := range want {
		if tickers[i] != want[i] {
			t.Errorf("tickers[%d] = %s, want %s", i, tickers[i], want[i])
		}
	}
}

func TestTickersHonorsLimit(t *testing.T) {
	s := newTestScraper(t, 2, listingPage)

	tickers, err := s.Tickers(context.Background())
	if err != nil {
		t.Fatalf("Tickers() error = %v", err)
	}
	if len(tickers) != 2 {
		t.Errorf("got %d tickers, want 2", len(tickers))
	}
}

func TestTickersEmptyPage(t *testing.T) {
	s := newTestScraper(t, 0, "<html><body><p>no table here</p></body></html>")

	if _, err := s.Tickers(context.Background()); err == nil {
		t.Fatal("expected an error for a page without tickers")
	}
}

func TestTickerPattern(t *testing.T) {
	valid := []string{"A", "OPRA", "BRK.B", "GOOGL"}
	invalid := []string{"", "toolong", "123", "BRK.BB", "A B"}

	for _, s := range valid {
		if !tickerPattern.MatchString(s) {
			t.Errorf("%q should match", s)
		}
	}
	for _, s := range invalid {
		if tickerPattern.MatchString(s) {
			t.Errorf("%q should not match", s)
		}
	}
}
