package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Upstream providers
	FMP          FMPConfig
	Perplexity   PerplexityConfig
	Yahoo        YahooConfig
	EDGAR        EDGARConfig
	AlphaVantage AlphaVantageConfig

	// Screening
	Screening ScreeningConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the record-cache fast path.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// FMPConfig holds Financial Modeling Prep API configuration.
// FMP authenticates with an API key passed as a query parameter.
type FMPConfig struct {
	APIKey  string
	BaseURL string
}

// PerplexityConfig holds Perplexity (AI search) API configuration.
type PerplexityConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// YahooConfig holds Yahoo Finance chart API configuration.
type YahooConfig struct {
	BaseURL string
}

// EDGARConfig holds SEC EDGAR configuration. The SEC requires a
// descriptive User-Agent identifying the caller on every request.
type EDGARConfig struct {
	BaseURL      string
	DirectoryURL string
	UserAgent    string
}

// AlphaVantageConfig holds Alpha Vantage API configuration. The free
// tier enforces a hard daily call budget.
type AlphaVantageConfig struct {
	APIKey       string
	BaseURL      string
	DailyBudget  int
	BudgetMargin int
}

// ScreeningConfig holds pipeline tuning knobs.
type ScreeningConfig struct {
	CacheTTL      time.Duration // record freshness window
	BatchWorkers  int           // bounded concurrency for batch scans
	UniverseURL   string        // screener table scraped for the scan command
	UniverseLimit int
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		FMP: FMPConfig{
			APIKey:  getEnv("FMP_API_KEY", ""),
			BaseURL: getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
		},

		Perplexity: PerplexityConfig{
			APIKey:  getEnv("PERPLEXITY_API_KEY", ""),
			BaseURL: getEnv("PERPLEXITY_BASE_URL", "https://api.perplexity.ai"),
			Model:   getEnv("PERPLEXITY_MODEL", "sonar-pro"),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		EDGAR: EDGARConfig{
			BaseURL:      getEnv("EDGAR_BASE_URL", "https://data.sec.gov"),
			DirectoryURL: getEnv("EDGAR_DIRECTORY_URL", "https://www.sec.gov/files/company_tickers.json"),
			UserAgent:    getEnv("EDGAR_USER_AGENT", "multibagger-screener admin@multibagger.dev"),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:       getEnv("ALPHAVANTAGE_API_KEY", ""),
			BaseURL:      getEnv("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co"),
			DailyBudget:  getEnvAsInt("ALPHAVANTAGE_DAILY_BUDGET", 25),
			BudgetMargin: getEnvAsInt("ALPHAVANTAGE_BUDGET_MARGIN", 5),
		},

		Screening: ScreeningConfig{
			CacheTTL:      getEnvAsDuration("RECORD_CACHE_TTL", "24h"),
			BatchWorkers:  getEnvAsInt("BATCH_WORKERS", 4),
			UniverseURL:   getEnv("UNIVERSE_URL", "https://stockanalysis.com/list/small-cap-stocks/"),
			UniverseLimit: getEnvAsInt("UNIVERSE_LIMIT", 200),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Screening.CacheTTL <= 0 {
		return fmt.Errorf("RECORD_CACHE_TTL must be positive")
	}

	if c.AlphaVantage.BudgetMargin >= c.AlphaVantage.DailyBudget {
		return fmt.Errorf("ALPHAVANTAGE_BUDGET_MARGIN must be below ALPHAVANTAGE_DAILY_BUDGET")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
