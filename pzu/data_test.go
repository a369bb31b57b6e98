package pzu

import (
	"errors"
	"testing"
	"time"

	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/types"
)

func dayPrices(date string, base float64) types.DayPrices {
	n := hours.IntervalsInDay(date)
	day := types.DayPrices{Date: date, FetchedAt: time.Now()}
	for i := 0; i < n; i++ {
		day.Hours = append(day.Hours, types.HourlyPrice{
			Hour:  hours.DateHour{Date: date, Hour: uint8(i)},
			Price: base + float64(i),
		})
	}
	return day
}

func localTime(date string, hour int) time.Time {
	t, err := time.ParseInLocation("2006-01-02", date, hours.MarketLocation())
	if err != nil {
		panic(err)
	}
	return t.Add(time.Duration(hour)*time.Hour + 30*time.Minute)
}

func TestBeginFetchSingleFlight(t *testing.T) {
	data := NewData()
	at := localTime("2025-01-30", 10)

	if !data.BeginFetch(at) {
		t.Fatalf("BeginFetch() expected true on idle data")
	}
	if data.BeginFetch(at.Add(time.Minute)) {
		t.Errorf("BeginFetch() expected false while a cycle is in flight")
	}
	if !data.IsFetching() {
		t.Errorf("IsFetching() expected true during a cycle")
	}
	if got := data.State().Status; got != types.DownloadFetching {
		t.Errorf("State().Status expected fetching, got %s", got)
	}

	data.EndFetch(at.Add(2*time.Minute), nil)
	if data.IsFetching() {
		t.Errorf("IsFetching() expected false after EndFetch")
	}
	if !data.BeginFetch(at.Add(3 * time.Minute)) {
		t.Errorf("BeginFetch() expected true after the previous cycle ended")
	}
}

func TestEndFetchOutcomes(t *testing.T) {
	data := NewData()
	at := localTime("2025-01-30", 10)

	data.BeginFetch(at)
	data.EndFetch(at, nil)
	state := data.State()
	if state.Status != types.DownloadSuccess {
		t.Errorf("State().Status expected success, got %s", state.Status)
	}
	if !state.LastSuccess.Equal(at) {
		t.Errorf("State().LastSuccess expected %v, got %v", at, state.LastSuccess)
	}
	if state.LastError != "" {
		t.Errorf("State().LastError expected empty, got %q", state.LastError)
	}

	data.BeginFetch(at.Add(time.Hour))
	data.EndFetch(at.Add(time.Hour), errors.New("upstream on fire"))
	state = data.State()
	if state.Status != types.DownloadError {
		t.Errorf("State().Status expected error, got %s", state.Status)
	}
	if state.LastError == "" {
		t.Errorf("State().LastError expected a message")
	}
	if !state.LastSuccess.Equal(at) {
		t.Errorf("State().LastSuccess should keep the previous success time")
	}
}

func TestFailedFetchKeepsSnapshots(t *testing.T) {
	data := NewData()
	at := localTime("2025-01-30", 10)

	today := dayPrices("2025-01-30", 400)
	tomorrow := dayPrices("2025-01-31", 500)
	data.SetToday(today)
	data.SetTomorrow(tomorrow)

	data.BeginFetch(at)
	data.EndFetch(at, errors.New("boom"))

	snap := data.Snapshot()
	if len(snap.Today.Hours) != 24 || snap.Today.Hours[0].Price != 400 {
		t.Errorf("Snapshot() today changed by a failed fetch: %+v", snap.Today.Hours[0])
	}
	if len(snap.Tomorrow.Hours) != 24 || snap.Tomorrow.Hours[0].Price != 500 {
		t.Errorf("Snapshot() tomorrow changed by a failed fetch")
	}
	if got := snap.StatusText(at); got != "Error: boom" {
		t.Errorf("StatusText() expected %q, got %q", "Error: boom", got)
	}
}

func TestRollover(t *testing.T) {
	data := NewData()
	data.SetToday(dayPrices("2025-01-30", 400))
	data.SetTomorrow(dayPrices("2025-01-31", 500))

	data.Rollover("2025-01-31")

	snap := data.Snapshot()
	if snap.Today.Date != "2025-01-31" {
		t.Errorf("Rollover() expected today to become 2025-01-31, got %q", snap.Today.Date)
	}
	if snap.Today.Hours[0].Price != 500 {
		t.Errorf("Rollover() expected promoted prices, got %v", snap.Today.Hours[0].Price)
	}
	if !snap.Tomorrow.IsZero() {
		t.Errorf("Rollover() expected tomorrow to reset, got %+v", snap.Tomorrow.Date)
	}
}

func TestRolloverWithoutTomorrow(t *testing.T) {
	data := NewData()
	data.SetToday(dayPrices("2025-01-30", 400))

	data.Rollover("2025-01-31")

	snap := data.Snapshot()
	if !snap.Today.IsZero() {
		t.Errorf("Rollover() expected stale today to be dropped, got %q", snap.Today.Date)
	}
}

func TestCurrentHourPrice(t *testing.T) {
	data := NewData()
	data.SetToday(dayPrices("2025-01-30", 400))
	snap := data.Snapshot()

	price, ok := snap.CurrentHourPrice(localTime("2025-01-30", 10))
	if !ok {
		t.Fatalf("CurrentHourPrice() expected a price")
	}
	if price != 410 {
		t.Errorf("CurrentHourPrice() expected 410 for hour 10, got %v", price)
	}

	// A snapshot from another date serves nothing.
	if _, ok := snap.CurrentHourPrice(localTime("2025-01-31", 10)); ok {
		t.Errorf("CurrentHourPrice() expected no price for a stale snapshot")
	}
}

func TestNextHourForecast(t *testing.T) {
	data := NewData()
	data.SetToday(dayPrices("2025-01-30", 400))
	snap := data.Snapshot()

	price, ok := snap.NextHourForecast(localTime("2025-01-30", 10))
	if !ok || price != 411 {
		t.Errorf("NextHourForecast() expected 411, got %v (ok=%v)", price, ok)
	}

	// Last hour of the day without tomorrow published.
	if _, ok := snap.NextHourForecast(localTime("2025-01-30", 23)); ok {
		t.Errorf("NextHourForecast() expected nothing at the last hour without tomorrow")
	}

	// With tomorrow published the first interval is the forecast.
	data.SetTomorrow(dayPrices("2025-01-31", 500))
	snap = data.Snapshot()
	price, ok = snap.NextHourForecast(localTime("2025-01-30", 23))
	if !ok || price != 500 {
		t.Errorf("NextHourForecast() expected 500 from tomorrow, got %v (ok=%v)", price, ok)
	}
}

func TestStatusText(t *testing.T) {
	data := NewData()
	now := localTime("2025-01-30", 10)

	if got := data.Snapshot().StatusText(now); got != StatusForecastPending {
		t.Errorf("StatusText() expected %q, got %q", StatusForecastPending, got)
	}

	data.SetTomorrow(dayPrices("2025-01-31", 500))
	if got := data.Snapshot().StatusText(now); got != StatusDataAvailable {
		t.Errorf("StatusText() expected %q, got %q", StatusDataAvailable, got)
	}

	data.BeginFetch(now)
	data.EndFetch(now, errors.New("status 503"))
	if got := data.Snapshot().StatusText(now); got != "Error: status 503" {
		t.Errorf("StatusText() expected error text, got %q", got)
	}
}

func TestRawToday(t *testing.T) {
	data := NewData()
	data.SetToday(dayPrices("2025-01-30", 400))
	now := localTime("2025-01-30", 10)

	raw := data.Snapshot().RawToday(now)
	if len(raw) != 24 {
		t.Fatalf("RawToday() expected 24 entries, got %d", len(raw))
	}
	first := raw[0]
	if first.Start != "2025-01-30T00:00:00+02:00" {
		t.Errorf("RawToday() first start expected +02:00 offset, got %q", first.Start)
	}
	if first.End != "2025-01-30T01:00:00+02:00" {
		t.Errorf("RawToday() first end expected 01:00, got %q", first.End)
	}
	if first.Value != 400 {
		t.Errorf("RawToday() first value expected 400, got %v", first.Value)
	}

	if entries := data.Snapshot().RawTomorrow(now); len(entries) != 0 {
		t.Errorf("RawTomorrow() expected no entries, got %d", len(entries))
	}
}

func TestStatisticsFromSnapshot(t *testing.T) {
	data := NewData()
	data.SetToday(dayPrices("2025-01-30", 100))
	now := localTime("2025-01-30", 10)

	stats, ok := data.Snapshot().Statistics(now)
	if !ok {
		t.Fatalf("Statistics() expected values")
	}
	// Prices 100..123, average is 111.5.
	if stats.Average != 111.5 {
		t.Errorf("Statistics() average expected 111.5, got %v", stats.Average)
	}
	if stats.Min != 100 || stats.Max != 123 {
		t.Errorf("Statistics() extrema expected 100/123, got %v/%v", stats.Min, stats.Max)
	}

	if _, ok := data.Snapshot().DailyAverage(localTime("2025-02-01", 10)); ok {
		t.Errorf("DailyAverage() expected nothing for a stale snapshot")
	}
}
