// Package perplexity wraps the Perplexity search-grounded chat API. It
// is used only as a fallback to fill growth metrics the primary
// fundamentals provider could not compute.
package perplexity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/BrettMS9/multibagger/pkg/config"
	"github.com/BrettMS9/multibagger/pkg/httputil"
	"github.com/BrettMS9/multibagger/pkg/logger"
	"github.com/BrettMS9/multibagger/pkg/ratelimit"
)

// Client handles communication with the Perplexity API.
type Client struct {
	httpClient *httputil.Client
	gate       *ratelimit.Gate
	logger     *logger.Logger
	baseURL    string
	model      string
}

// NewClient creates a new Perplexity API client. The bearer token is
// installed on the HTTP client by the caller.
func NewClient(cfg config.PerplexityConfig, httpClient *httputil.Client, gate *ratelimit.Gate, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		gate:       gate,
		logger:     log,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete runs one chat completion and returns the response text.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
	}

	var text string
	err := c.gate.Do(ctx, func() error {
		resp, err := c.httpClient.PostJSON(ctx, c.baseURL+"/chat/completions", req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("no completion choices")
		}

		text = parsed.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}

	return text, nil
}
