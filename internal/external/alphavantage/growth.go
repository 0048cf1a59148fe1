package alphavantage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/BrettMS9/multibagger/internal/records"
)

type incomeResponse struct {
	AnnualReports []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		EBITDA           string `json:"ebitda"`
	} `json:"annualReports"`
}

type balanceResponse struct {
	AnnualReports []struct {
		FiscalDateEnding string `json:"fiscalDateEnding"`
		TotalAssets      string `json:"totalAssets"`
	} `json:"annualReports"`
}

// FetchGrowth computes 3-year compound growth rates from Alpha Vantage
// annual statements. Growth metrics only; nothing else is supplied.
func (c *Client) FetchGrowth(ctx context.Context, ticker string) (*records.ProviderResult, error) {
	var income incomeResponse
	err := c.gate.Do(ctx, func() error {
		return c.httpClient.GetJSON(ctx, c.endpoint("INCOME_STATEMENT", ticker), &income)
	})
	if err != nil {
		return nil, fmt.Errorf("alphavantage income statement: %w", err)
	}

	var balance balanceResponse
	err = c.gate.Do(ctx, func() error {
		return c.httpClient.GetJSON(ctx, c.endpoint("BALANCE_SHEET", ticker), &balance)
	})
	if err != nil {
		return nil, fmt.Errorf("alphavantage balance sheet: %w", err)
	}

	result := &records.ProviderResult{Source: records.SourceAlphaVantage}

	var ebitda []records.YearValue
	for _, report := range income.AnnualReports {
		if point, ok := yearValue(report.FiscalDateEnding, report.EBITDA); ok {
			ebitda = append(ebitda, point)
		}
	}
	result.EBITDAGrowth = records.SeriesCAGR(ebitda)

	var assets []records.YearValue
	for _, report := range balance.AnnualReports {
		if point, ok := yearValue(report.FiscalDateEnding, report.TotalAssets); ok {
			assets = append(assets, point)
		}
	}
	result.AssetGrowth = records.SeriesCAGR(assets)

	c.logger.WithFields(map[string]interface{}{
		"ticker":        ticker,
		"ebitda_growth": result.EBITDAGrowth != nil,
		"asset_growth":  result.AssetGrowth != nil,
	}).Debug("Fetched last-resort growth metrics")

	return result, nil
}

// yearValue parses one annual report entry. Alpha Vantage reports
// numbers as strings and uses "None" for missing values.
func yearValue(fiscalDateEnding, raw string) (records.YearValue, bool) {
	date, err := time.Parse("2006-01-02", fiscalDateEnding)
	if err != nil {
		return records.YearValue{}, false
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return records.YearValue{}, false
	}

	return records.YearValue{Year: date.Year(), Value: value}, true
}
