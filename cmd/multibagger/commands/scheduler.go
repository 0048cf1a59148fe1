package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BrettMS9/multibagger/internal/scheduler"
	"github.com/BrettMS9/multibagger/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduled jobs",
	Long: `Runs the recurring jobs in the foreground:
  cache_purge    - evicts stale cached records (daily, 1 AM)
  universe_scan  - screens the whole scraped universe (daily, 2 AM)

Example:
  go run ./cmd/multibagger scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewCachePurgeJob(a.recordCache, a.log)); err != nil {
		return fmt.Errorf("add cache purge job: %w", err)
	}
	if err := sched.AddJob(jobs.NewScanJob(a.scraper, a.service, a.cfg.Screening.BatchWorkers, a.log)); err != nil {
		return fmt.Errorf("add scan job: %w", err)
	}

	sched.Start()

	fmt.Println("Scheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
