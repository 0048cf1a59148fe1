package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/BrettMS9/multibagger/internal/records"
)

// minAnnualPeriods is the statement history needed before a 3-year
// compound growth rate is computed from FMP data.
const minAnnualPeriods = 4

type profile struct {
	CompanyName string  `json:"companyName"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MktCap      float64 `json:"mktCap"`
	Price       float64 `json:"price"`
	LastDiv     float64 `json:"lastDiv"`
}

type quote struct {
	Price     float64 `json:"price"`
	YearHigh  float64 `json:"yearHigh"`
	YearLow   float64 `json:"yearLow"`
	MarketCap float64 `json:"marketCap"`
	PE        float64 `json:"pe"`
}

type incomeStatement struct {
	CalendarYear string  `json:"calendarYear"`
	Revenue      float64 `json:"revenue"`
	EBITDA       float64 `json:"ebitda"`
	NetIncome    float64 `json:"netIncome"`
}

type balanceSheet struct {
	CalendarYear            string  `json:"calendarYear"`
	TotalAssets             float64 `json:"totalAssets"`
	TotalStockholdersEquity float64 `json:"totalStockholdersEquity"`
}

type cashFlowStatement struct {
	CalendarYear        string  `json:"calendarYear"`
	FreeCashFlow        float64 `json:"freeCashFlow"`
	OperatingCashFlow   float64 `json:"operatingCashFlow"`
	CapitalExpenditure  float64 `json:"capitalExpenditure"`
}

// Fetch resolves a ticker's fundamentals from FMP: profile, quote, and
// up to five annual statement periods. Growth rates are computed from
// statement history when enough periods exist.
//
// FMP is the mandatory primary provider: an error here is fatal for the
// whole screening of this ticker.
func (c *Client) Fetch(ctx context.Context, ticker string) (*records.ProviderResult, error) {
	var prof *profile
	err := c.gate.Do(ctx, func() error {
		var resp []profile
		if err := c.httpClient.GetJSON(ctx, c.endpoint("profile", ticker, nil), &resp); err != nil {
			return err
		}
		if len(resp) == 0 {
			return fmt.Errorf("empty profile for %s", ticker)
		}
		prof = &resp[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fmp profile: %w", err)
	}

	var q *quote
	err = c.gate.Do(ctx, func() error {
		var resp []quote
		if err := c.httpClient.GetJSON(ctx, c.endpoint("quote", ticker, nil), &resp); err != nil {
			return err
		}
		if len(resp) == 0 {
			return fmt.Errorf("empty quote for %s", ticker)
		}
		q = &resp[0]
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fmp quote: %w", err)
	}

	result := &records.ProviderResult{Source: records.SourceFMP}
	c.applyProfile(result, prof, q)

	// Statement history is best effort: a failure here degrades the
	// record, it does not fail the fetch.
	income := c.fetchIncome(ctx, ticker)
	balance := c.fetchBalance(ctx, ticker)
	cashflow := c.fetchCashFlow(ctx, ticker)

	c.applyStatements(result, income, balance, cashflow)

	return result, nil
}

func (c *Client) applyProfile(result *records.ProviderResult, prof *profile, q *quote) {
	if prof.CompanyName != "" {
		result.CompanyName = records.String(prof.CompanyName)
	}
	if prof.Sector != "" {
		result.Sector = records.String(prof.Sector)
	}
	if prof.Industry != "" {
		result.Industry = records.String(prof.Industry)
	}

	if q.MarketCap > 0 {
		result.MarketCap = records.Float(q.MarketCap)
	} else if prof.MktCap > 0 {
		result.MarketCap = records.Float(prof.MktCap)
	}
	if q.Price > 0 {
		result.Price = records.Float(q.Price)
	} else if prof.Price > 0 {
		result.Price = records.Float(prof.Price)
	}
	if q.YearHigh > 0 {
		result.High52W = records.Float(q.YearHigh)
	}
	if q.YearLow > 0 {
		result.Low52W = records.Float(q.YearLow)
	}
	if q.PE != 0 {
		result.PERatio = records.Float(q.PE)
	}

	result.PaysDividend = records.Bool(prof.LastDiv > 0)
	if prof.LastDiv > 0 && result.Price != nil && *result.Price > 0 {
		result.DividendYield = records.Float(prof.LastDiv / *result.Price * 100)
	}
}

func (c *Client) applyStatements(result *records.ProviderResult, income []incomeStatement, balance []balanceSheet, cashflow []cashFlowStatement) {
	if len(income) > 0 {
		latest := income[0] // FMP returns newest first
		if latest.Revenue > 0 {
			result.EBITDAMargin = records.Float(latest.EBITDA / latest.Revenue * 100)
		}
	}

	if len(balance) > 0 {
		latest := balance[0]
		if latest.TotalAssets != 0 {
			result.TotalAssets = records.Float(latest.TotalAssets)
		}
		if latest.TotalStockholdersEquity != 0 {
			result.BookValue = records.Float(latest.TotalStockholdersEquity)
		}
	}

	if len(income) > 0 && len(balance) > 0 && balance[0].TotalAssets > 0 {
		result.ROA = records.Float(income[0].NetIncome / balance[0].TotalAssets * 100)
	}

	if len(cashflow) > 0 {
		latest := cashflow[0]
		if latest.FreeCashFlow != 0 {
			result.FreeCashFlow = records.Float(latest.FreeCashFlow)
		} else if latest.OperatingCashFlow != 0 {
			result.FreeCashFlow = records.Float(latest.OperatingCashFlow - latest.CapitalExpenditure)
		}
	}

	if result.MarketCap != nil && result.BookValue != nil && *result.BookValue > 0 {
		result.PriceToBook = records.Float(*result.MarketCap / *result.BookValue)
	}

	if len(income) >= minAnnualPeriods {
		result.EBITDAGrowth = records.SeriesCAGR(incomeSeries(income))
	}
	if len(balance) >= minAnnualPeriods {
		result.AssetGrowth = records.SeriesCAGR(assetSeries(balance))
	}
}

func (c *Client) fetchIncome(ctx context.Context, ticker string) []incomeStatement {
	var resp []incomeStatement
	err := c.gate.Do(ctx, func() error {
		return c.httpClient.GetJSON(ctx, c.endpoint("income-statement", ticker, statementParams()), &resp)
	})
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Debug("FMP income statements unavailable")
		return nil
	}
	return resp
}

func (c *Client) fetchBalance(ctx context.Context, ticker string) []balanceSheet {
	var resp []balanceSheet
	err := c.gate.Do(ctx, func() error {
		return c.httpClient.GetJSON(ctx, c.endpoint("balance-sheet-statement", ticker, statementParams()), &resp)
	})
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Debug("FMP balance sheets unavailable")
		return nil
	}
	return resp
}

func (c *Client) fetchCashFlow(ctx context.Context, ticker string) []cashFlowStatement {
	var resp []cashFlowStatement
	err := c.gate.Do(ctx, func() error {
		return c.httpClient.GetJSON(ctx, c.endpoint("cash-flow-statement", ticker, statementParams()), &resp)
	})
	if err != nil {
		c.logger.WithError(err).WithField("ticker", ticker).Debug("FMP cash flow statements unavailable")
		return nil
	}
	return resp
}

func statementParams() url.Values {
	params := url.Values{}
	params.Set("period", "annual")
	params.Set("limit", "5")
	return params
}

func incomeSeries(income []incomeStatement) []records.YearValue {
	series := make([]records.YearValue, 0, len(income))
	for _, stmt := range income {
		year, err := strconv.Atoi(stmt.CalendarYear)
		if err != nil {
			continue
		}
		series = append(series, records.YearValue{Year: year, Value: stmt.EBITDA})
	}
	return series
}

func assetSeries(balance []balanceSheet) []records.YearValue {
	series := make([]records.YearValue, 0, len(balance))
	for _, stmt := range balance {
		year, err := strconv.Atoi(stmt.CalendarYear)
		if err != nil {
			continue
		}
		series = append(series, records.YearValue{Year: year, Value: stmt.TotalAssets})
	}
	return series
}
