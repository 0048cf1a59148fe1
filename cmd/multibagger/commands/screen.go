package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrettMS9/multibagger/internal/scoring"
	"github.com/BrettMS9/multibagger/internal/screening"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen [tickers...]",
	Short: "Screen one or more tickers",
	Long: `Screens the given tickers against the scoring model and prints a
factor-by-factor breakdown. Records fresher than the cache window are
reused; everything else is fetched from the provider chain.

Example:
  go run ./cmd/multibagger screen AAPL
  go run ./cmd/multibagger screen AAPL MSFT OPRA`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, raw := range args {
		ticker := strings.ToUpper(strings.TrimSpace(raw))

		result, err := a.service.Screen(ctx, ticker)
		if err != nil {
			fmt.Printf("\n%s: screening failed: %v\n", ticker, err)
			continue
		}

		printResult(result)
	}

	return nil
}

func printResult(res *screening.Result) {
	name := res.CompanyName
	if name == "" {
		name = res.Ticker
	}

	fmt.Printf("\n=== %s (%s) ===\n", name, res.Ticker)
	for _, f := range res.Factors {
		fmt.Printf("  %-20s %5.1f / %-3d  %-22s %s\n", f.Name, f.Score, f.MaxScore, f.HumanValue, f.Rationale)
	}
	fmt.Printf("  %-20s %5.1f / %d (%.1f%%)\n", "Total", res.Total, scoring.MaxTotal, res.Percentage)
	fmt.Printf("  Classification: %s\n", res.Classification)
	fmt.Printf("  Sources: %s\n", strings.Join(res.Sources, ", "))
}
