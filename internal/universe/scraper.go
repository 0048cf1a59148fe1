// Package universe builds the candidate ticker list for batch scans by
// scraping a configured listing page.
package universe

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
)

// tickerPattern matches plausible US equity symbols, including class
// shares like BRK.B.
var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z])?$`)

// Scraper pulls ticker symbols out of an HTML listing page.
type Scraper struct {
	httpClient *httputil.Client
	url        string
	limit      int
	logger     *logger.Logger
}

func NewScraper(client *httputil.Client, url string, limit int, log *logger.Logger) *Scraper {
	return &Scraper{
		httpClient: client,
		url:        url,
		limit:      limit,
		logger:     log,
	}
}

// Tickers scrapes the listing page and returns the symbols found in its
// first table, in page order, deduplicated, capped at the configured
// limit.
func (s *Scraper) Tickers(ctx context.Context) ([]string, error) {
	resp, err := s.httpClient.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch universe page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("universe page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse universe page: %w", err)
	}

	seen := make(map[string]bool)
	var tickers []string

	doc.Find("table").First().Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		if s.limit > 0 && len(tickers) >= s.limit {
			return
		}

		cell := row.Find("td").First()
		symbol := strings.ToUpper(strings.TrimSpace(cell.Text()))
		if !tickerPattern.MatchString(symbol) || seen[symbol] {
			return
		}
		seen[symbol] = true
		tickers = append(tickers, symbol)
	})

	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers found at %s", s.url)
	}

	s.logger.WithFields(map[string]interface{}{
		"url":   s.url,
		"count": len(tickers),
	}).Info("Universe scraped")

	return tickers, nil
}
