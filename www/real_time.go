package www

import (
	"time"

	"github.com/angas/rotariff-go/pzu"
	"github.com/angas/rotariff-go/types/maybe"
)

// RealTimeData is the live header fragment pushed to every connected
// browser. Prices are absent until the first successful download of
// the current day.
type RealTimeData struct {
	CurrentPrice      maybe.Maybe[float64]
	NextPrice         maybe.Maybe[float64]
	DailyAverage      maybe.Maybe[float64]
	Status            string
	TomorrowPublished bool
}

func newRealTimeData(snap pzu.Snapshot, now time.Time) RealTimeData {
	return RealTimeData{
		CurrentPrice:      maybe.From(snap.CurrentHourPrice(now)),
		NextPrice:         maybe.From(snap.NextHourForecast(now)),
		DailyAverage:      maybe.From(snap.DailyAverage(now)),
		Status:            snap.StatusText(now),
		TomorrowPublished: snap.TomorrowValid(now),
	}
}
