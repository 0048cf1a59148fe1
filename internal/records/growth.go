package records

import "math"

// YearValue is one point of a per-fiscal-year series.
type YearValue struct {
	Year  int
	Value float64
}

// CAGR returns the compound annual growth rate in percent between an
// oldest value v0 at year y0 and a most-recent value v1 at year y1.
//
// The result is nil (undefined, never zero) when the span is under two
// years, when either endpoint is zero, when the signs differ, or when
// both endpoints are negative and the loss did not narrow. For two
// negative endpoints with a narrowing loss an improvement rate is
// computed from the reciprocal ratio.
func CAGR(v0 float64, y0 int, v1 float64, y1 int) *float64 {
	span := y1 - y0
	if span < 2 {
		return nil
	}

	switch {
	case v0 > 0 && v1 > 0:
		rate := (math.Pow(v1/v0, 1/float64(span)) - 1) * 100
		return &rate

	case v0 < 0 && v1 < 0:
		// Loss must have narrowed for an improvement rate to make sense.
		if v1 <= v0 {
			return nil
		}
		rate := (math.Pow(v0/v1, 1/float64(span)) - 1) * 100
		return &rate

	default:
		// Signs differ or an endpoint is zero: growth is undefined.
		return nil
	}
}

// SeriesCAGR computes the CAGR between the oldest and most recent points
// of a fiscal-year series. Nil when fewer than two points exist.
func SeriesCAGR(series []YearValue) *float64 {
	if len(series) < 2 {
		return nil
	}

	oldest, newest := series[0], series[0]
	for _, p := range series[1:] {
		if p.Year < oldest.Year {
			oldest = p
		}
		if p.Year > newest.Year {
			newest = p
		}
	}

	return CAGR(oldest.Value, oldest.Year, newest.Value, newest.Year)
}
