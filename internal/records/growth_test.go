package records

import (
	"math"
	"testing"
)

func TestCAGR(t *testing.T) {
	tests := []struct {
		name string
		v0   float64
		y0   int
		v1   float64
		y1   int
		want *float64 // nil means undefined
	}{
		{"20 percent over three years", 100, 2021, 172.8, 2024, Float(20)},
		{"flat", 100, 2021, 100, 2024, Float(0)},
		{"decline", 100, 2021, 51.2, 2024, Float(-20)},
		{"span under two years", 100, 2023, 200, 2024, nil},
		{"same year", 100, 2024, 200, 2024, nil},
		{"signs differ", -100, 2021, 50, 2024, nil},
		{"zero endpoint", 0, 2021, 50, 2024, nil},
		{"both negative, loss narrowed", -100, 2021, -51.2, 2024, Float(25.0)},
		{"both negative, loss widened", -50, 2021, -100, 2024, nil},
		{"both negative, unchanged", -50, 2021, -50, 2024, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CAGR(tt.v0, tt.y0, tt.v1, tt.y1)

			if tt.want == nil {
				if got != nil {
					t.Errorf("CAGR() = %.2f, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("CAGR() = nil, want %.2f", *tt.want)
			}
			if math.Abs(*got-*tt.want) > 0.01 {
				t.Errorf("CAGR() = %.4f, want %.2f", *got, *tt.want)
			}
		})
	}
}

func TestSeriesCAGRPicksEndpointsByYear(t *testing.T) {
	// Out of order on purpose; the endpoints are picked by year.
	series := []YearValue{
		{Year: 2023, Value: 144},
		{Year: 2021, Value: 100},
		{Year: 2024, Value: 172.8},
	}

	got := SeriesCAGR(series)
	if got == nil {
		t.Fatal("SeriesCAGR() = nil, want a value")
	}
	if math.Abs(*got-20) > 0.01 {
		t.Errorf("SeriesCAGR() = %.4f, want 20", *got)
	}
}

func TestSeriesCAGRTooFewPoints(t *testing.T) {
	if got := SeriesCAGR([]YearValue{{Year: 2024, Value: 100}}); got != nil {
		t.Errorf("SeriesCAGR() = %.2f, want nil", *got)
	}
	if got := SeriesCAGR(nil); got != nil {
		t.Errorf("SeriesCAGR(nil) = %.2f, want nil", *got)
	}
}
