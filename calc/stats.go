package calc

import (
	"errors"

	"github.com/angas/rotariff-go/types"
)

var ErrEmptySeries = errors.New("empty price series")

// Tariff windows by local wall-clock hour.
const (
	peakStart    = 8
	peakEnd      = 20
	offPeak2From = 20
)

// Statistics derives the tariff aggregates of one day's series. Window
// means divide by the number of entries actually present in the
// window, so DST days with a missing or doubled hour stay correct.
func Statistics(series []types.HourlyPrice) (types.PriceStatistics, error) {
	if len(series) == 0 {
		return types.PriceStatistics{}, ErrEmptySeries
	}

	var sum float64
	var peakSum, offPeak1Sum, offPeak2Sum float64
	var peakN, offPeak1N, offPeak2N int

	min := series[0].Price
	max := series[0].Price

	for _, hp := range series {
		sum += hp.Price
		if hp.Price < min {
			min = hp.Price
		}
		if hp.Price > max {
			max = hp.Price
		}

		switch h := hp.Hour.LocalHour(); {
		case h < peakStart:
			offPeak1Sum += hp.Price
			offPeak1N++
		case h < peakEnd:
			peakSum += hp.Price
			peakN++
		case h >= offPeak2From:
			offPeak2Sum += hp.Price
			offPeak2N++
		}
	}

	average := sum / float64(len(series))

	return types.PriceStatistics{
		Average:  average,
		Peak:     mean(peakSum, peakN),
		OffPeak1: mean(offPeak1Sum, offPeak1N),
		OffPeak2: mean(offPeak2Sum, offPeak2N),
		Min:      min,
		Max:      max,
		Mean:     average,
	}, nil
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// IsLowPrice reports whether a price sits below the day average.
func IsLowPrice(price float64, stats types.PriceStatistics) bool {
	return price < stats.Average
}

// PercentToAverage is the ratio of a price to the day average, 1.0
// when the average is zero.
func PercentToAverage(price float64, stats types.PriceStatistics) float64 {
	if stats.Average == 0 {
		return 1.0
	}
	return price / stats.Average
}
