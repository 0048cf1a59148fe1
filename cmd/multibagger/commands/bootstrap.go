package commands

import (
	"fmt"
	"time"

	"github.com/BrettMS9/multibagger/internal/acquire"
	"github.com/BrettMS9/multibagger/internal/external/alphavantage"
	"github.com/BrettMS9/multibagger/internal/external/edgar"
	"github.com/BrettMS9/multibagger/internal/external/fmp"
	"github.com/BrettMS9/multibagger/internal/external/perplexity"
	"github.com/BrettMS9/multibagger/internal/external/yahoo"
	"github.com/BrettMS9/multibagger/internal/identity"
	"github.com/BrettMS9/multibagger/internal/records"
	"github.com/BrettMS9/multibagger/internal/screening"
	"github.com/BrettMS9/multibagger/internal/universe"
	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/database"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/metrics"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
	"github.com/BrettMS9/multibagger/pkg/redis"
)

// app holds the fully wired screening stack shared by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	metrics *metrics.Registry

	recordCache *records.Cache
	service     *screening.Service
	scraper     *universe.Scraper
}

// newApp loads config and wires the whole pipeline: database (with
// migrations), redis, per-provider gates, provider clients, the
// acquisition orchestrator, and the screening service.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := database.Migrate(cfg.Database.URL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	rds, err := redis.New(cfg)
	if err != nil {
		// The fast path is optional; repository reads still work.
		log.WithError(err).Warn("Redis unavailable, record fast-cache disabled")
		rds = redis.Disabled()
	}

	var reg *metrics.Registry
	if cfg.MetricsEnabled {
		reg = metrics.NewRegistry()
	}

	recordRepo := records.NewRepository(db.Pool)
	recordCache := records.NewCache(recordRepo, redis.NewCache(rds, "record"), cfg.Screening.CacheTTL, log, reg)

	httpClient := httputil.New(log, 30*time.Second)

	// The SEC requires a descriptive User-Agent; EDGAR is also the only
	// provider with retry enabled (1s/2s/4s backoff on 429 and 5xx).
	edgarHTTP := httputil.New(log, 30*time.Second).
		WithHeader("User-Agent", cfg.EDGAR.UserAgent).
		WithRetry(3, 1*time.Second, 4*time.Second)

	// Perplexity authenticates with a bearer token, so it gets its own
	// client; headers must not leak onto the shared one.
	perplexityHTTP := httputil.New(log, 60*time.Second).
		WithHeader("Authorization", "Bearer "+cfg.Perplexity.APIKey)

	resolver := identity.NewResolver(
		identity.NewRepository(db.Pool),
		edgarHTTP,
		cfg.EDGAR.DirectoryURL,
		log,
	)

	// Pacing per provider. Published limits where the provider has them,
	// conservative defaults where it does not.
	fmpGate := ratelimit.New(ratelimit.Config{
		Name:          "fmp",
		Interval:      250 * time.Millisecond,
		Burst:         2,
		MaxConcurrent: 4,
	})
	perplexityGate := ratelimit.New(ratelimit.Config{
		Name:          "perplexity",
		Interval:      1 * time.Second,
		MaxConcurrent: 1,
	})
	yahooGate := ratelimit.New(ratelimit.Config{
		Name:          "yahoo",
		Interval:      400 * time.Millisecond,
		MaxConcurrent: 2,
	})
	edgarGate := ratelimit.New(ratelimit.Config{
		Name:          "edgar",
		Interval:      150 * time.Millisecond,
		MaxConcurrent: 2,
	})
	avGate := ratelimit.New(ratelimit.Config{
		Name:          "alphavantage",
		Interval:      12 * time.Second,
		MaxConcurrent: 1,
		DailyBudget:   cfg.AlphaVantage.DailyBudget,
	})

	fmpClient := fmp.NewClient(cfg.FMP, httpClient, fmpGate, log)
	perplexityClient := perplexity.NewClient(cfg.Perplexity, perplexityHTTP, perplexityGate, log)
	yahooClient := yahoo.NewClient(cfg.Yahoo, httpClient, yahooGate, log)
	edgarClient := edgar.NewClient(cfg.EDGAR, edgarHTTP, edgarGate, resolver, edgar.NewRepository(db.Pool), log)
	avClient := alphavantage.NewClient(cfg.AlphaVantage, httpClient, avGate, log)

	orchestrator := acquire.NewOrchestrator(
		recordCache,
		fmpClient,
		perplexityClient,
		yahooClient,
		edgarClient,
		avClient,
		log,
		reg,
	)

	service := screening.NewService(orchestrator, screening.NewRepository(db.Pool), log, reg)

	scraper := universe.NewScraper(httpClient, cfg.Screening.UniverseURL, cfg.Screening.UniverseLimit, log)

	return &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		redis:       rds,
		metrics:     reg,
		recordCache: recordCache,
		service:     service,
		scraper:     scraper,
	}, nil
}

func (a *app) close() {
	a.redis.Close()
	a.db.Close()
}
