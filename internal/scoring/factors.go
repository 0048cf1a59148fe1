package scoring

import (
	"fmt"

	"github.com/BrettMS9/multibagger/internal/records"
)

// Factor maximums, fixed constants of the published model.
const (
	maxFCFYield          = 25
	maxSize              = 15
	maxBookToMarket      = 15
	maxInvestmentPattern = 15
	maxEBITDAMargin      = 10
	maxROA               = 10
	maxPriceRange        = 10
	maxMomentum          = 5
	maxDividend          = 5
)

// neutralMomentum is the estimate used when the six-months-ago price is
// unknown: neither rewarded as a dip nor punished as a run-up.
const neutralMomentum = 2.5

// fcfYield scores free cash flow relative to market capitalization.
func fcfYield(rec *records.Record) FactorScore {
	f := FactorScore{Name: "FCF Yield", MaxScore: maxFCFYield}

	if rec.FreeCashFlow == nil || rec.MarketCap == nil || *rec.MarketCap <= 0 {
		f.HumanValue = "n/a"
		f.Rationale = "free cash flow or market cap unknown"
		return f
	}

	yield := *rec.FreeCashFlow / *rec.MarketCap * 100
	f.HumanValue = fmt.Sprintf("%.1f%%", yield)

	switch {
	case yield > 12:
		f.Score = 25
		f.Rationale = "exceptional free cash flow yield"
	case yield > 8:
		f.Score = 20
		f.Rationale = "strong free cash flow yield"
	case yield > 5:
		f.Score = 15
		f.Rationale = "solid free cash flow yield"
	case yield > 0:
		f.Score = 8
		f.Rationale = "positive free cash flow"
	default:
		f.Rationale = "negative free cash flow"
	}

	return f
}

// size rewards smaller market capitalizations.
func size(rec *records.Record) FactorScore {
	f := FactorScore{Name: "Size", MaxScore: maxSize}

	if rec.MarketCap == nil {
		f.HumanValue = "n/a"
		f.Rationale = "market cap unknown"
		return f
	}

	millions := *rec.MarketCap / 1e6
	f.HumanValue = fmt.Sprintf("$%.0fM", millions)

	switch {
	case millions < 350:
		f.Score = 15
		f.Rationale = "micro cap with maximum upside room"
	case millions < 500:
		f.Score = 12
		f.Rationale = "small cap"
	case millions < 1000:
		f.Score = 8
		f.Rationale = "lower mid cap"
	case millions < 2000:
		f.Score = 4
		f.Rationale = "mid cap"
	default:
		f.Rationale = "too large for outsized returns"
	}

	return f
}

// bookToMarket scores stockholders' equity against market cap.
func bookToMarket(rec *records.Record) FactorScore {
	f := FactorScore{Name: "Book-to-Market", MaxScore: maxBookToMarket}

	if rec.BookValue == nil || rec.MarketCap == nil || *rec.MarketCap <= 0 {
		f.HumanValue = "n/a"
		f.Rationale = "book value or market cap unknown"
		return f
	}

	ratio := *rec.BookValue / *rec.MarketCap
	f.HumanValue = fmt.Sprintf("%.2f", ratio)

	switch {
	case ratio > 1.0:
		f.Score = 15
		f.Rationale = "trading below book value"
	case ratio > 0.6:
		f.Score = 12
		f.Rationale = "deep value territory"
	case ratio > 0.4:
		f.Score = 8
		f.Rationale = "reasonable book backing"
	case ratio > 0:
		f.Score = 4
		f.Rationale = "some book backing"
	default:
		f.Rationale = "negative book value"
	}

	return f
}

// investmentPattern compares EBITDA growth against asset growth:
// earnings growing faster than the asset base is the ideal pattern.
func investmentPattern(rec *records.Record) FactorScore {
	f := FactorScore{Name: "Investment Pattern", MaxScore: maxInvestmentPattern}

	if rec.EBITDAGrowth == nil {
		f.HumanValue = "n/a"
		f.Rationale = "EBITDA growth unknown"
		return f
	}

	eg := *rec.EBITDAGrowth

	if rec.AssetGrowth == nil {
		f.HumanValue = fmt.Sprintf("EBITDA %+.1f%%", eg)
		if eg > 0 {
			f.Score = 10
			f.Rationale = "EBITDA growing, asset growth unknown"
		} else {
			f.Rationale = "EBITDA shrinking"
		}
		return f
	}

	ag := *rec.AssetGrowth
	f.HumanValue = fmt.Sprintf("EBITDA %+.1f%% vs assets %+.1f%%", eg, ag)

	switch {
	case eg > ag && eg > 0:
		f.Score = 15
		f.Rationale = "earnings outgrowing the asset base"
	case eg > 0 && ag > 0:
		f.Score = 7
		f.Rationale = "growing, but assets faster than earnings"
	case eg > 0:
		f.Score = 10
		f.Rationale = "EBITDA growing while assets shrink"
	default:
		f.Rationale = "EBITDA not growing"
	}

	return f
}

// ebitdaMargin scores operating profitability.
func ebitdaMargin(rec *records.Record) FactorScore {
	f := FactorScore{Name: "EBITDA Margin", MaxScore: maxEBITDAMargin}

	if rec.EBITDAMargin == nil {
		f.HumanValue = "n/a"
		f.Rationale = "EBITDA margin unknown"
		return f
	}

	margin := *rec.EBITDAMargin
	f.HumanValue = fmt.Sprintf("%.1f%%", margin)

	switch {
	case margin > 20:
		f.Score = 10
		f.Rationale = "excellent operating margins"
	case margin > 15:
		f.Score = 8
		f.Rationale = "strong operating margins"
	case margin > 10:
		f.Score = 6
		f.Rationale = "healthy operating margins"
	case margin > 0:
		f.Score = 3
		f.Rationale = "positive operating margins"
	default:
		f.Rationale = "negative operating margins"
	}

	return f
}

// returnOnAssets scores how productively assets generate earnings.
func returnOnAssets(rec *records.Record) FactorScore {
	f := FactorScore{Name: "Return on Assets", MaxScore: maxROA}

	if rec.ROA == nil {
		f.HumanValue = "n/a"
		f.Rationale = "ROA unknown"
		return f
	}

	roa := *rec.ROA
	f.HumanValue = fmt.Sprintf("%.1f%%", roa)

	switch {
	case roa > 12:
		f.Score = 10
		f.Rationale = "outstanding asset productivity"
	case roa > 8:
		f.Score = 8
		f.Rationale = "strong asset productivity"
	case roa > 5:
		f.Score = 6
		f.Rationale = "decent asset productivity"
	case roa > 0:
		f.Score = 3
		f.Rationale = "positive returns on assets"
	default:
		f.Rationale = "losing money on its assets"
	}

	return f
}

// priceRange is contrarian: the closer to the 52-week low, the better.
func priceRange(rec *records.Record) FactorScore {
	f := FactorScore{Name: "52-Week Range", MaxScore: maxPriceRange}

	if rec.Price == nil || rec.High52W == nil || rec.Low52W == nil || *rec.High52W <= *rec.Low52W {
		f.HumanValue = "n/a"
		f.Rationale = "52-week range unknown"
		return f
	}

	position := (*rec.Price - *rec.Low52W) / (*rec.High52W - *rec.Low52W) * 100
	f.HumanValue = fmt.Sprintf("%.0f%% of range", position)

	switch {
	case position <= 20:
		f.Score = 10
		f.Rationale = "near the 52-week low"
	case position <= 35:
		f.Score = 8
		f.Rationale = "lower third of the range"
	case position <= 50:
		f.Score = 5
		f.Rationale = "below the midpoint"
	case position <= 75:
		f.Score = 2
		f.Rationale = "upper half of the range"
	default:
		f.Rationale = "near the 52-week high"
	}

	return f
}

// momentum is contrarian: recent declines score higher. An unknown
// six-months-ago price yields the neutral estimate rather than zero.
func momentum(rec *records.Record) FactorScore {
	f := FactorScore{Name: "6-Month Momentum", MaxScore: maxMomentum}

	if rec.Price6MonthsAgo == nil || *rec.Price6MonthsAgo <= 0 {
		f.Score = neutralMomentum
		f.HumanValue = "n/a"
		f.Rationale = "six-month price unknown, neutral estimate"
		return f
	}

	if rec.Price == nil {
		f.HumanValue = "n/a"
		f.Rationale = "current price unknown"
		return f
	}

	change := (*rec.Price - *rec.Price6MonthsAgo) / *rec.Price6MonthsAgo * 100
	f.HumanValue = fmt.Sprintf("%+.1f%%", change)

	switch {
	case change < -15:
		f.Score = 5
		f.Rationale = "sharp decline, contrarian opportunity"
	case change < -5:
		f.Score = 4
		f.Rationale = "moderate decline"
	case change < 0:
		f.Score = 3
		f.Rationale = "slight decline"
	case change < 15:
		f.Score = 1
		f.Rationale = "modest run-up"
	default:
		f.Rationale = "already run up sharply"
	}

	return f
}

// dividend is a simple boolean factor.
func dividend(rec *records.Record) FactorScore {
	f := FactorScore{Name: "Dividend", MaxScore: maxDividend}

	pays := (rec.PaysDividend != nil && *rec.PaysDividend) ||
		(rec.DividendYield != nil && *rec.DividendYield > 0)

	if pays {
		f.Score = 5
		if rec.DividendYield != nil {
			f.HumanValue = fmt.Sprintf("%.2f%% yield", *rec.DividendYield)
		} else {
			f.HumanValue = "yes"
		}
		f.Rationale = "pays a dividend"
		return f
	}

	f.HumanValue = "no"
	f.Rationale = "no dividend"
	return f
}
