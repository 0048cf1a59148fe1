// Package edgar wraps the SEC EDGAR XBRL company-facts API, supplying
// fundamentals derived from annual-report filings. Results are cached
// permanently per fiscal year, since historical filings never change.
package edgar

import (
	"github.com/BrettMS9/multibagger/internal/identity"
	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

// Client handles communication with the EDGAR XBRL API. The HTTP client
// carries the SEC's required descriptive User-Agent and is the only
// provider client with retry enabled (exponential backoff on 429/5xx).
type Client struct {
	httpClient *httputil.Client
	gate       *ratelimit.Gate
	resolver   *identity.Resolver
	repo       *Repository
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new EDGAR client.
func NewClient(cfg config.EDGARConfig, httpClient *httputil.Client, gate *ratelimit.Gate, resolver *identity.Resolver, repo *Repository, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		gate:       gate,
		resolver:   resolver,
		repo:       repo,
		logger:     log,
		baseURL:    cfg.BaseURL,
	}
}
