package pzu

import (
	"fmt"
	"time"

	"github.com/angas/rotariff-go/calc"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/types"
)

// Status display strings shown by the status sensor.
const (
	StatusDataAvailable   = "CSV Data Available"
	StatusForecastPending = "Forecast Pending"
)

// RawEntry is one interval of the raw_today/raw_tomorrow attribute
// lists.
type RawEntry struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Value float64 `json:"value"`
}

// TodaySet returns today's series when the snapshot still belongs to
// the current local date.
func (s Snapshot) TodaySet(now time.Time) (types.DayPrices, bool) {
	date := hours.FromTime(now).Date
	if s.Today.Date != date || len(s.Today.Hours) == 0 {
		return types.DayPrices{}, false
	}
	return s.Today, true
}

// TomorrowSet returns tomorrow's series when one has been published
// for the next local date.
func (s Snapshot) TomorrowSet(now time.Time) (types.DayPrices, bool) {
	date := hours.AddDays(hours.FromTime(now).Date, 1)
	if s.Tomorrow.Date != date || len(s.Tomorrow.Hours) == 0 {
		return types.DayPrices{}, false
	}
	return s.Tomorrow, true
}

// CurrentHourPrice is the closing price of the delivery interval that
// contains now.
func (s Snapshot) CurrentHourPrice(now time.Time) (float64, bool) {
	today, ok := s.TodaySet(now)
	if !ok {
		return 0, false
	}
	entry, ok := today.At(int(hours.FromTime(now).Hour))
	if !ok {
		return 0, false
	}
	return entry.Price, true
}

// NextHourForecast is the price of the next delivery interval, taken
// from today's series or from the first interval of tomorrow's.
func (s Snapshot) NextHourForecast(now time.Time) (float64, bool) {
	idx := int(hours.FromTime(now).Hour)
	if today, ok := s.TodaySet(now); ok {
		if entry, ok := today.At(idx + 1); ok {
			return entry.Price, true
		}
	}
	if tomorrow, ok := s.TomorrowSet(now); ok {
		return tomorrow.Hours[0].Price, true
	}
	return 0, false
}

// Statistics recomputes today's tariff aggregates.
func (s Snapshot) Statistics(now time.Time) (types.PriceStatistics, bool) {
	today, ok := s.TodaySet(now)
	if !ok {
		return types.PriceStatistics{}, false
	}
	stats, err := calc.Statistics(today.Hours)
	if err != nil {
		return types.PriceStatistics{}, false
	}
	return stats, true
}

func (s Snapshot) DailyAverage(now time.Time) (float64, bool) {
	stats, ok := s.Statistics(now)
	if !ok {
		return 0, false
	}
	return stats.Average, true
}

func (s Snapshot) TomorrowValid(now time.Time) bool {
	_, ok := s.TomorrowSet(now)
	return ok
}

// StatusText renders the download state the way the status sensor
// shows it.
func (s Snapshot) StatusText(now time.Time) string {
	if s.State.Status == types.DownloadError && s.State.LastError != "" {
		return fmt.Sprintf("Error: %s", s.State.LastError)
	}
	if s.TomorrowValid(now) {
		return StatusDataAvailable
	}
	return StatusForecastPending
}

func (s Snapshot) TodayPrices(now time.Time) []float64 {
	today, ok := s.TodaySet(now)
	if !ok {
		return []float64{}
	}
	return today.Prices()
}

func (s Snapshot) TomorrowPrices(now time.Time) []float64 {
	tomorrow, ok := s.TomorrowSet(now)
	if !ok {
		return []float64{}
	}
	return tomorrow.Prices()
}

func (s Snapshot) RawToday(now time.Time) []RawEntry {
	today, ok := s.TodaySet(now)
	if !ok {
		return []RawEntry{}
	}
	return rawEntries(today)
}

func (s Snapshot) RawTomorrow(now time.Time) []RawEntry {
	tomorrow, ok := s.TomorrowSet(now)
	if !ok {
		return []RawEntry{}
	}
	return rawEntries(tomorrow)
}

func rawEntries(day types.DayPrices) []RawEntry {
	entries := make([]RawEntry, 0, len(day.Hours))
	for _, hp := range day.Hours {
		entries = append(entries, RawEntry{
			Start: hp.Hour.IsoString(),
			End:   hp.End().In(hours.MarketLocation()).Format(time.RFC3339),
			Value: hp.Price,
		})
	}
	return entries
}
