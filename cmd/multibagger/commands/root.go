package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "multibagger",
	Short: "Multi-factor equity screener",
	Long: `Multibagger screens equity tickers against a fixed multi-factor
scoring model: fundamentals are acquired from several upstream providers
with ordered fallback, cached, and scored into a classification.

Examples:
  go run ./cmd/multibagger screen AAPL
  go run ./cmd/multibagger scan --limit 100
  go run ./cmd/multibagger api
  go run ./cmd/multibagger cache stats`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
