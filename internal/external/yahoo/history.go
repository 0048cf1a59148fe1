package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/BrettMS9/multibagger/internal/records"
)

// sixMonths approximates the momentum lookback window.
const sixMonths = 180 * 24 * time.Hour

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// pricePoint is one day of the series with a usable close.
type pricePoint struct {
	ts    time.Time
	close float64
}

// FetchHistory scans a year of daily prices and derives the 52-week
// high/low and the closing price nearest to 180 days ago.
func (c *Client) FetchHistory(ctx context.Context, ticker string) (*records.ProviderResult, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1y&interval=1d", c.baseURL, url.PathEscape(ticker))

	var resp chartResponse
	err := c.gate.Do(ctx, func() error {
		return c.httpClient.GetJSON(ctx, endpoint, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("yahoo chart: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart: empty result for %s", ticker)
	}

	series := resp.Chart.Result[0]
	q := series.Indicators.Quote[0]

	result := &records.ProviderResult{Source: records.SourceYahoo}

	var high, low *float64
	points := make([]pricePoint, 0, len(series.Timestamp))

	for i, ts := range series.Timestamp {
		if i < len(q.High) && q.High[i] != nil {
			if high == nil || *q.High[i] > *high {
				high = q.High[i]
			}
		}
		if i < len(q.Low) && q.Low[i] != nil {
			if low == nil || *q.Low[i] < *low {
				low = q.Low[i]
			}
		}
		if i < len(q.Close) && q.Close[i] != nil {
			points = append(points, pricePoint{
				ts:    time.Unix(ts, 0).UTC(),
				close: *q.Close[i],
			})
		}
	}

	if high != nil {
		result.High52W = records.Float(*high)
	}
	if low != nil {
		result.Low52W = records.Float(*low)
	}
	if p := priceAt(points, time.Now().Add(-sixMonths)); p != nil {
		result.Price6MonthsAgo = p
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"points": len(points),
	}).Debug("Fetched price history")

	return result, nil
}

// priceAt selects the close whose timestamp is closest to the target
// without exceeding it, falling back to the oldest available point.
func priceAt(points []pricePoint, target time.Time) *float64 {
	if len(points) == 0 {
		return nil
	}

	var best *pricePoint
	oldest := &points[0]

	for i := range points {
		p := &points[i]
		if p.ts.Before(oldest.ts) {
			oldest = p
		}
		if p.ts.After(target) {
			continue
		}
		if best == nil || p.ts.After(best.ts) {
			best = p
		}
	}

	if best == nil {
		best = oldest
	}
	return records.Float(best.close)
}
