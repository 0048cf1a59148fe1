package edgar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BrettMS9/multibagger/internal/records"
)

// US-GAAP concepts extracted from company facts, with fallbacks for
// filers that tag the same concept under a different name.
var (
	operatingIncomeTags = []string{"OperatingIncomeLoss"}
	depreciationTags    = []string{
		"DepreciationDepletionAndAmortization",
		"DepreciationAndAmortization",
		"DepreciationAmortizationAndAccretionNet",
	}
	totalAssetsTags = []string{"Assets"}
	operatingCashTags = []string{
		"NetCashProvidedByUsedInOperatingActivities",
		"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	}
	capexTags  = []string{"PaymentsToAcquirePropertyPlantAndEquipment"}
	equityTags = []string{
		"StockholdersEquity",
		"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
	}
)

type companyFacts struct {
	Facts map[string]map[string]conceptFacts `json:"facts"`
}

type conceptFacts struct {
	Units map[string][]factEntry `json:"units"`
}

type factEntry struct {
	Val        float64 `json:"val"`
	FiscalYear int     `json:"fy"`
	Period     string  `json:"fp"`
	Form       string  `json:"form"`
}

// Fetch derives per-fiscal-year fundamentals for a ticker from its
// filings and returns growth rates plus the latest-year levels. Returns
// a nil result when the ticker has no filer identifier.
func (c *Client) Fetch(ctx context.Context, ticker string) (*records.ProviderResult, error) {
	mapping, err := c.resolver.Resolve(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("edgar resolve: %w", err)
	}

	series, err := c.repo.GetSeries(ctx, mapping.CIK)
	if err != nil {
		return nil, fmt.Errorf("edgar cached series: %w", err)
	}

	if needsRefresh(series, time.Now()) {
		fetched, err := c.fetchFacts(ctx, mapping.CIK)
		if err != nil {
			if len(series) == 0 {
				return nil, err
			}
			// Stale-but-present cache still yields a usable result.
			c.logger.WithError(err).WithField("ticker", ticker).Warn("EDGAR refresh failed, using cached filings")
		} else {
			if err := c.repo.SaveSeries(ctx, fetched); err != nil {
				c.logger.WithError(err).WithField("ticker", ticker).Warn("Failed to persist EDGAR facts")
			}
			series = mergeSeries(series, fetched)
		}
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("edgar: no annual facts for %s", ticker)
	}

	return buildResult(series), nil
}

// needsRefresh reports whether the filings cache may be missing a
// completed fiscal year. Historical filings never change, so a cache
// whose newest year reaches the prior calendar year is authoritative.
func needsRefresh(series []FiscalFacts, now time.Time) bool {
	if len(series) == 0 {
		return true
	}

	newest := series[0].FiscalYear
	for _, f := range series[1:] {
		if f.FiscalYear > newest {
			newest = f.FiscalYear
		}
	}

	return newest < now.Year()-1
}

// fetchFacts downloads company facts and reduces them to one row per
// fiscal year, annual-report filings only.
func (c *Client) fetchFacts(ctx context.Context, cik string) ([]FiscalFacts, error) {
	endpoint := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%010s.json", c.baseURL, cik)

	var facts companyFacts
	err := c.gate.Do(ctx, func() error {
		return c.httpClient.GetJSON(ctx, endpoint, &facts)
	})
	if err != nil {
		return nil, fmt.Errorf("edgar company facts: %w", err)
	}

	gaap, ok := facts.Facts["us-gaap"]
	if !ok {
		return nil, fmt.Errorf("edgar: no us-gaap facts for CIK %s", cik)
	}

	opInc := annualSeries(gaap, operatingIncomeTags)
	depAmort := annualSeries(gaap, depreciationTags)
	assets := annualSeries(gaap, totalAssetsTags)
	opCash := annualSeries(gaap, operatingCashTags)
	capex := annualSeries(gaap, capexTags)
	equity := annualSeries(gaap, equityTags)

	years := make(map[int]bool)
	for _, m := range []map[int]float64{opInc, depAmort, assets, opCash, capex, equity} {
		for year := range m {
			years[year] = true
		}
	}

	var series []FiscalFacts
	for year := range years {
		f := FiscalFacts{CIK: cik, FiscalYear: year}

		// EBITDA = operating income + depreciation & amortization
		if oi, ok := opInc[year]; ok {
			ebitda := oi
			if da, ok := depAmort[year]; ok {
				ebitda += da
			}
			f.EBITDA = records.Float(ebitda)
		}

		if v, ok := assets[year]; ok {
			f.TotalAssets = records.Float(v)
		}

		// FCF = operating cash flow - capital expenditure
		if ocf, ok := opCash[year]; ok {
			fcf := ocf
			if cx, ok := capex[year]; ok {
				fcf -= cx
			}
			f.FreeCashFlow = records.Float(fcf)
		}

		if v, ok := equity[year]; ok {
			f.BookValue = records.Float(v)
		}

		series = append(series, f)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].FiscalYear < series[j].FiscalYear })
	return series, nil
}

// annualSeries extracts one value per fiscal year for the first tag that
// has USD facts, keeping annual-report filings only and deduplicating by
// fiscal year (first occurrence wins).
func annualSeries(gaap map[string]conceptFacts, tags []string) map[int]float64 {
	for _, tag := range tags {
		concept, ok := gaap[tag]
		if !ok {
			continue
		}
		entries, ok := concept.Units["USD"]
		if !ok || len(entries) == 0 {
			continue
		}

		series := make(map[int]float64)
		for _, e := range entries {
			if !isAnnualReport(e) {
				continue
			}
			if _, seen := series[e.FiscalYear]; seen {
				continue
			}
			series[e.FiscalYear] = e.Val
		}

		if len(series) > 0 {
			return series
		}
	}
	return nil
}

// isAnnualReport keeps full-year facts from annual-report filings.
func isAnnualReport(e factEntry) bool {
	return strings.HasPrefix(e.Form, "10-K") && e.Period == "FY" && e.FiscalYear > 0
}

// buildResult turns the fiscal-year series into a provider result:
// 3-year CAGRs plus the most recent year's levels.
func buildResult(series []FiscalFacts) *records.ProviderResult {
	result := &records.ProviderResult{Source: records.SourceEDGAR}

	var ebitda, assets []records.YearValue
	latest := series[0]

	for _, f := range series {
		if f.FiscalYear > latest.FiscalYear {
			latest = f
		}
		if f.EBITDA != nil {
			ebitda = append(ebitda, records.YearValue{Year: f.FiscalYear, Value: *f.EBITDA})
		}
		if f.TotalAssets != nil {
			assets = append(assets, records.YearValue{Year: f.FiscalYear, Value: *f.TotalAssets})
		}
	}

	result.EBITDAGrowth = records.SeriesCAGR(ebitda)
	result.AssetGrowth = records.SeriesCAGR(assets)

	if latest.TotalAssets != nil {
		result.TotalAssets = records.Float(*latest.TotalAssets)
	}
	if latest.FreeCashFlow != nil {
		result.FreeCashFlow = records.Float(*latest.FreeCashFlow)
	}
	if latest.BookValue != nil {
		result.BookValue = records.Float(*latest.BookValue)
	}

	return result
}

// mergeSeries combines cached and freshly fetched rows, preferring the
// cached (first-written) row for any fiscal year present in both.
func mergeSeries(cached, fetched []FiscalFacts) []FiscalFacts {
	byYear := make(map[int]FiscalFacts, len(cached)+len(fetched))
	for _, f := range fetched {
		byYear[f.FiscalYear] = f
	}
	for _, f := range cached {
		byYear[f.FiscalYear] = f
	}

	merged := make([]FiscalFacts, 0, len(byYear))
	for _, f := range byYear {
		merged = append(merged, f)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].FiscalYear < merged[j].FiscalYear })
	return merged
}
