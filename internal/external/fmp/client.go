// Package fmp wraps the Financial Modeling Prep API, the first-priority
// fundamentals source. FMP authenticates with an API key passed as a
// query parameter.
package fmp

import (
	"fmt"
	"net/url"

	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

// Client handles communication with the FMP API.
type Client struct {
	httpClient *httputil.Client
	gate       *ratelimit.Gate
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a new FMP API client.
func NewClient(cfg config.FMPConfig, httpClient *httputil.Client, gate *ratelimit.Gate, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		gate:       gate,
		logger:     log,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
	}
}

// endpoint builds a full API URL with the key attached.
func (c *Client) endpoint(path, ticker string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("apikey", c.apiKey)
	return fmt.Sprintf("%s/%s/%s?%s", c.baseURL, path, url.PathEscape(ticker), params.Encode())
}
