package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BrettMS9/multibagger/internal/api"
	"github.com/BrettMS9/multibagger/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the screening API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                   - Health check
  GET  /metrics                  - Prometheus metrics (when enabled)
  POST /api/screen/{ticker}      - Screen one ticker
  POST /api/screen               - Screen a batch of tickers
  GET  /api/results/top          - Latest result per ticker above a threshold
  GET  /api/results/{ticker}     - Screening history for a ticker
  GET  /api/cache/stats          - Record cache counts
  POST /api/cache/purge-stale    - Evict records past the freshness window
  POST /api/cache/purge          - Empty the record cache

Example:
  go run ./cmd/multibagger api
  go run ./cmd/multibagger api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	screenHandler := handlers.NewScreenHandler(a.service, a.cfg.Screening.BatchWorkers, a.log)
	cacheHandler := handlers.NewCacheHandler(a.recordCache, a.log)

	var metricsHandler http.Handler
	if a.metrics != nil {
		metricsHandler = a.metrics.Handler()
	}

	router := api.NewRouter(screenHandler, cacheHandler, metricsHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
