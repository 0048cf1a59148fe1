package commands

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Screen the whole scraped universe",
	Long: `Scrapes the configured universe listing page and screens every
ticker on it with bounded concurrency, printing the ranked results.

Example:
  go run ./cmd/multibagger scan
  go run ./cmd/multibagger scan --limit 50 --workers 8 --min 55`,
	RunE: runScan,
}

var (
	scanLimit   int
	scanWorkers int
	scanMin     float64
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "max tickers to scan (overrides UNIVERSE_LIMIT)")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "concurrent workers (overrides BATCH_WORKERS)")
	scanCmd.Flags().Float64Var(&scanMin, "min", 40, "only print results at or above this percentage")
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if scanLimit > 0 {
		a.cfg.Screening.UniverseLimit = scanLimit
	}
	workers := a.cfg.Screening.BatchWorkers
	if scanWorkers > 0 {
		workers = scanWorkers
	}

	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Hour)
	defer cancel()

	tickers, err := a.scraper.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("scrape universe: %w", err)
	}
	if scanLimit > 0 && len(tickers) > scanLimit {
		tickers = tickers[:scanLimit]
	}

	fmt.Printf("Scanning %d tickers with %d workers...\n", len(tickers), workers)

	outcome, err := a.service.ScreenBatch(ctx, tickers, workers)
	if err != nil {
		return fmt.Errorf("batch screen: %w", err)
	}

	fmt.Printf("\n%-8s %-30s %8s %8s  %s\n", "TICKER", "COMPANY", "SCORE", "PCT", "CLASS")
	fmt.Println(strings.Repeat("-", 72))
	for _, res := range outcome.Results {
		if res.Percentage < scanMin {
			continue
		}
		name := truncate(res.CompanyName, 30)
		fmt.Printf("%-8s %-30s %8.1f %7.1f%%  %s\n",
			res.Ticker, name, res.Total, res.Percentage, res.Classification)
	}

	if len(outcome.Failed) > 0 {
		fmt.Printf("\n%d tickers failed:\n", len(outcome.Failed))
		for ticker, msg := range outcome.Failed {
			fmt.Printf("  %-8s %s\n", ticker, msg)
		}
	}

	return nil
}

// truncate shortens s to at most n runes. Slicing bytes could split a
// multibyte character in a company name.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
