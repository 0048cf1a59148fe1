package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cacheCmd groups record cache maintenance subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the record cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record cache counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(ctx context.Context, a *app) error {
			stats, err := a.recordCache.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Total records: %d\n", stats.Total)
			fmt.Printf("Fresh:         %d\n", stats.Fresh)
			fmt.Printf("Stale:         %d\n", stats.Stale)
			return nil
		})
	},
}

var cachePurgeStaleCmd = &cobra.Command{
	Use:   "purge-stale",
	Short: "Remove records past the freshness window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(ctx context.Context, a *app) error {
			removed, err := a.recordCache.PurgeStale(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d stale records\n", removed)
			return nil
		})
	},
}

var cachePurgeAllCmd = &cobra.Command{
	Use:   "purge-all",
	Short: "Empty the record cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(ctx context.Context, a *app) error {
			removed, err := a.recordCache.PurgeAll(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d records\n", removed)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeStaleCmd)
	cacheCmd.AddCommand(cachePurgeAllCmd)
}

func withCache(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return fn(ctx, a)
}
