package opcom

import (
	"fmt"
	"math"
	"time"

	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/types"
)

// Normalize turns raw interval records into the hourly series of one
// local market day. Records must already be sorted by interval; the
// series must cover the day exactly, one record per delivery hour,
// which is 24 on plain days and 23/25 across the DST transitions.
func Normalize(records []RawRecord, date string) ([]types.HourlyPrice, error) {
	if _, err := time.ParseInLocation("2006-01-02", date, hours.MarketLocation()); err != nil {
		return nil, &NormalizeError{Reason: fmt.Sprintf("invalid date %q", date)}
	}

	n := len(records)
	if n < 23 || n > 25 {
		return nil, &NormalizeError{Reason: fmt.Sprintf("%d entries, expected 23-25", n)}
	}
	if want := hours.IntervalsInDay(date); n != want {
		return nil, &NormalizeError{Reason: fmt.Sprintf("%d entries for a %d-hour day", n, want)}
	}

	prices := make([]types.HourlyPrice, 0, n)
	for i, rec := range records {
		if rec.Interval != i+1 {
			return nil, &NormalizeError{Reason: fmt.Sprintf("interval %d out of sequence at position %d", rec.Interval, i)}
		}
		if math.IsNaN(rec.Price) || math.IsInf(rec.Price, 0) {
			return nil, &NormalizeError{Reason: fmt.Sprintf("non-numeric price at interval %d", rec.Interval)}
		}
		prices = append(prices, types.HourlyPrice{
			Hour:   hours.DateHour{Date: date, Hour: uint8(i)},
			Price:  rec.Price,
			Volume: rec.Volume,
		})
	}

	return prices, nil
}
