package types

import (
	"context"
	"time"

	"github.com/angas/rotariff-go/hours"
)

type HourlyPrice struct {
	Hour   hours.DateHour
	Price  float64 // Closing price in lei per MWh
	Volume float64 // Traded volume in MWh
}

// Start returns the absolute start of the delivery interval.
func (hp HourlyPrice) Start() time.Time {
	return hp.Hour.Time()
}

func (hp HourlyPrice) End() time.Time {
	return hp.Start().Add(time.Hour)
}

// DayPrices is the complete hourly series of one local market day.
// It is produced whole by a fetch cycle and never mutated afterwards.
type DayPrices struct {
	Date      string
	Hours     []HourlyPrice
	FetchedAt time.Time
}

func (dp DayPrices) IsZero() bool {
	return dp.Date == "" && len(dp.Hours) == 0
}

func (dp DayPrices) Prices() []float64 {
	prices := make([]float64, len(dp.Hours))
	for i, h := range dp.Hours {
		prices[i] = h.Price
	}
	return prices
}

// At returns the price entry for an interval index.
func (dp DayPrices) At(idx int) (HourlyPrice, bool) {
	if idx < 0 || idx >= len(dp.Hours) {
		return HourlyPrice{}, false
	}
	return dp.Hours[idx], true
}

type PriceStatistics struct {
	Average  float64
	Peak     float64 // Local hours [08, 20)
	OffPeak1 float64 // Local hours [00, 08)
	OffPeak2 float64 // Local hours [20, 24)
	Min      float64
	Max      float64
	Mean     float64
}

type DownloadStatus int

const (
	DownloadIdle DownloadStatus = iota
	DownloadFetching
	DownloadSuccess
	DownloadError
)

func (s DownloadStatus) String() string {
	switch s {
	case DownloadIdle:
		return "idle"
	case DownloadFetching:
		return "fetching"
	case DownloadSuccess:
		return "success"
	case DownloadError:
		return "error"
	default:
		return "unknown"
	}
}

// DownloadState is the status sensor's view of the last fetch cycles.
type DownloadState struct {
	Status      DownloadStatus
	LastAttempt time.Time
	LastSuccess time.Time
	LastError   string
}

type PriceProvider interface {
	GetDayPrices(ctx context.Context, date string) ([]HourlyPrice, error)
}
