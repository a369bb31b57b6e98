// Package pzu holds the live state of the day-ahead market data: the
// current day snapshots, the download state machine and the sensor
// projections read by the dashboard and the Home Assistant publisher.
package pzu

import (
	"sync"
	"time"

	"github.com/angas/rotariff-go/types"
)

// Data owns the integration state. Day series are replaced whole by
// the fetch task and never mutated in place; readers always work on a
// Snapshot taken under the read lock.
type Data struct {
	mu       sync.RWMutex
	today    types.DayPrices
	tomorrow types.DayPrices
	state    types.DownloadState
	fetching bool
}

func NewData() *Data {
	return &Data{state: types.DownloadState{Status: types.DownloadIdle}}
}

// Snapshot is a consistent copy of the integration state.
type Snapshot struct {
	Today    types.DayPrices
	Tomorrow types.DayPrices
	State    types.DownloadState
}

func (d *Data) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{
		Today:    d.today,
		Tomorrow: d.tomorrow,
		State:    d.state,
	}
}

// BeginFetch opens a fetch cycle. It returns false when one is
// already in flight, so overlapping ticks collapse to a single fetch.
func (d *Data) BeginFetch(at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fetching {
		return false
	}
	d.fetching = true
	d.state.Status = types.DownloadFetching
	d.state.LastAttempt = at
	return true
}

// EndFetch closes the cycle opened by BeginFetch. On failure the day
// snapshots are left exactly as they were.
func (d *Data) EndFetch(at time.Time, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetching = false
	if err != nil {
		d.state.Status = types.DownloadError
		d.state.LastError = err.Error()
		return
	}
	d.state.Status = types.DownloadSuccess
	d.state.LastSuccess = at
	d.state.LastError = ""
}

func (d *Data) IsFetching() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fetching
}

func (d *Data) SetToday(day types.DayPrices) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.today = day
}

func (d *Data) SetTomorrow(day types.DayPrices) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tomorrow = day
}

// Rollover promotes tomorrow's snapshot when the calendar has moved
// on to its date. Anything older is dropped.
func (d *Data) Rollover(today string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tomorrow.Date == today {
		d.today = d.tomorrow
		d.tomorrow = types.DayPrices{}
		return
	}
	if d.today.Date != today {
		d.today = types.DayPrices{}
	}
	if d.tomorrow.Date != "" && d.tomorrow.Date <= today {
		d.tomorrow = types.DayPrices{}
	}
}

func (d *Data) State() types.DownloadState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}
