// Package yahoo wraps the Yahoo Finance chart API. It supplies only the
// 52-week price range and the price roughly six months prior, scanned
// from a daily price series.
package yahoo

import (
	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

// Client handles communication with the Yahoo Finance chart API.
type Client struct {
	httpClient *httputil.Client
	gate       *ratelimit.Gate
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo chart client.
func NewClient(cfg config.YahooConfig, httpClient *httputil.Client, gate *ratelimit.Gate, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		gate:       gate,
		logger:     log,
		baseURL:    cfg.BaseURL,
	}
}
