package calc

import (
	"errors"
	"math"
	"testing"

	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/types"
)

func daySeries(date string, price func(idx int) float64) []types.HourlyPrice {
	n := hours.IntervalsInDay(date)
	series := make([]types.HourlyPrice, 0, n)
	for i := 0; i < n; i++ {
		series = append(series, types.HourlyPrice{
			Hour:  hours.DateHour{Date: date, Hour: uint8(i)},
			Price: price(i),
		})
	}
	return series
}

func TestStatisticsEmptySeries(t *testing.T) {
	_, err := Statistics(nil)
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Statistics() expected ErrEmptySeries, got %v", err)
	}
}

func TestStatisticsUniformSeries(t *testing.T) {
	series := daySeries("2025-01-30", func(int) float64 { return 100 })
	stats, err := Statistics(series)
	if err != nil {
		t.Fatalf("Statistics() unexpected error: %v", err)
	}

	for name, got := range map[string]float64{
		"Average":  stats.Average,
		"Peak":     stats.Peak,
		"OffPeak1": stats.OffPeak1,
		"OffPeak2": stats.OffPeak2,
		"Min":      stats.Min,
		"Max":      stats.Max,
		"Mean":     stats.Mean,
	} {
		if !almostEqual(got, 100) {
			t.Errorf("Statistics() %s expected 100, got %f", name, got)
		}
	}
}

func TestStatisticsWindows(t *testing.T) {
	// Price equals the interval index, so window means are means of
	// index ranges and divisor mistakes show up immediately.
	indexPrice := func(idx int) float64 { return float64(idx) }

	tests := []struct {
		name     string
		date     string
		expected types.PriceStatistics
	}{
		{
			name: "plain 24-hour day",
			date: "2025-01-30",
			expected: types.PriceStatistics{
				Average: 11.5, Peak: 13.5, OffPeak1: 3.5, OffPeak2: 21.5,
				Min: 0, Max: 23, Mean: 11.5,
			},
		},
		{
			name: "23-hour spring-forward day",
			date: "2025-03-30",
			expected: types.PriceStatistics{
				Average: 11, Peak: 12.5, OffPeak1: 3, OffPeak2: 20.5,
				Min: 0, Max: 22, Mean: 11,
			},
		},
		{
			name: "25-hour fall-back day",
			date: "2025-10-26",
			expected: types.PriceStatistics{
				Average: 12, Peak: 14.5, OffPeak1: 4, OffPeak2: 22.5,
				Min: 0, Max: 24, Mean: 12,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, err := Statistics(daySeries(tt.date, indexPrice))
			if err != nil {
				t.Fatalf("Statistics() unexpected error: %v", err)
			}

			checks := []struct {
				name     string
				got      float64
				expected float64
			}{
				{"Average", stats.Average, tt.expected.Average},
				{"Peak", stats.Peak, tt.expected.Peak},
				{"OffPeak1", stats.OffPeak1, tt.expected.OffPeak1},
				{"OffPeak2", stats.OffPeak2, tt.expected.OffPeak2},
				{"Min", stats.Min, tt.expected.Min},
				{"Max", stats.Max, tt.expected.Max},
				{"Mean", stats.Mean, tt.expected.Mean},
			}
			for _, c := range checks {
				if !almostEqual(c.got, c.expected) {
					t.Errorf("Statistics() %s expected %f, got %f", c.name, c.expected, c.got)
				}
			}
		})
	}
}

func TestStatisticsIsPure(t *testing.T) {
	series := daySeries("2025-01-30", func(idx int) float64 { return float64(idx * 10) })

	first, err := Statistics(series)
	if err != nil {
		t.Fatalf("Statistics() unexpected error: %v", err)
	}
	second, err := Statistics(series)
	if err != nil {
		t.Fatalf("Statistics() unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("Statistics() not idempotent: %+v vs %+v", first, second)
	}
}

func TestIsLowPrice(t *testing.T) {
	stats := types.PriceStatistics{Average: 500}
	if !IsLowPrice(400, stats) {
		t.Errorf("IsLowPrice(400) expected true with average 500")
	}
	if IsLowPrice(600, stats) {
		t.Errorf("IsLowPrice(600) expected false with average 500")
	}
	if IsLowPrice(500, stats) {
		t.Errorf("IsLowPrice(500) expected false when equal to average")
	}
}

func TestPercentToAverage(t *testing.T) {
	stats := types.PriceStatistics{Average: 500}
	if got := PercentToAverage(400, stats); !almostEqual(got, 0.8) {
		t.Errorf("PercentToAverage(400) expected 0.8, got %f", got)
	}
	if got := PercentToAverage(100, types.PriceStatistics{}); !almostEqual(got, 1.0) {
		t.Errorf("PercentToAverage() with zero average expected 1.0, got %f", got)
	}
}

func almostEqual(f1 float64, f2 float64) bool {
	return math.Abs(f1-f2) < 1e-9
}
