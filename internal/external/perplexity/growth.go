package perplexity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/BrettMS9/multibagger/internal/records"
)

const growthSystemPrompt = `You are a financial data retrieval assistant. ` +
	`Answer with a single JSON object and nothing else. Use null for any ` +
	`value you cannot verify from a reliable source.`

// FetchGrowth asks the search-grounded model for a ticker's 3-year
// compound growth rates. The response is untrusted free-form text: the
// first JSON object is extracted and validated strictly, and a value
// that does not parse as a number becomes null, never zero.
func (c *Client) FetchGrowth(ctx context.Context, ticker string) (*records.ProviderResult, error) {
	user := fmt.Sprintf(
		`For the US-listed stock %s, find the 3-year compound annual growth rate `+
			`of EBITDA and of total assets, both as percentages. Respond with exactly: `+
			`{"ebitda_growth_pct": <number or null>, "asset_growth_pct": <number or null>}`,
		ticker,
	)

	text, err := c.complete(ctx, growthSystemPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("perplexity growth: %w", err)
	}

	obj, ok := firstJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("perplexity growth: no JSON object in response")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("perplexity growth: invalid JSON object: %w", err)
	}

	result := &records.ProviderResult{Source: records.SourcePerplexity}
	result.EBITDAGrowth = asNumber(payload["ebitda_growth_pct"])
	result.AssetGrowth = asNumber(payload["asset_growth_pct"])

	c.logger.WithFields(map[string]interface{}{
		"ticker":        ticker,
		"ebitda_growth": result.EBITDAGrowth != nil,
		"asset_growth":  result.AssetGrowth != nil,
	}).Debug("Fetched AI-grounded growth metrics")

	return result, nil
}

// firstJSONObject extracts the first balanced {...} block from free-form
// text. String literals are respected so braces inside them do not
// terminate the scan.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

// asNumber coerces a decoded JSON value to a float pointer. Anything
// that is not a number (or a numeric string) is null.
func asNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return records.Float(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err != nil {
			return nil
		}
		return records.Float(parsed)
	default:
		return nil
	}
}
