// Package alphavantage wraps the Alpha Vantage API, the lowest-priority
// growth-metrics source. The free tier enforces a hard daily call
// budget, so the client is consulted only when enough budget remains.
package alphavantage

import (
	"fmt"
	"net/url"

	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

// Client handles communication with the Alpha Vantage API.
type Client struct {
	httpClient   *httputil.Client
	gate         *ratelimit.Gate
	logger       *logger.Logger
	apiKey       string
	baseURL      string
	budgetMargin int
}

// NewClient creates a new Alpha Vantage client.
func NewClient(cfg config.AlphaVantageConfig, httpClient *httputil.Client, gate *ratelimit.Gate, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		gate:         gate,
		logger:       log,
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		budgetMargin: cfg.BudgetMargin,
	}
}

// HasBudget reports whether the remaining daily budget exceeds the
// safety margin. When false the provider is skipped for the ticker.
func (c *Client) HasBudget() bool {
	remaining := c.gate.Remaining()
	return remaining < 0 || remaining > c.budgetMargin
}

// endpoint builds a query URL for one API function.
func (c *Client) endpoint(function, symbol string) string {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
}
