package task

import (
	"log/slog"

	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/pzu"
)

// NewRolloverTask promotes tomorrow's snapshot at local midnight so
// the price sensors keep serving without waiting for the next fetch.
func NewRolloverTask(logger *slog.Logger, data *pzu.Data, publish func()) func() {
	return func() {
		logger.Debug("running rollover task...")

		today := hours.Today()
		data.Rollover(today)
		publish()

		logger.Info("rolled over to new market day", slog.String("date", today))
	}
}
