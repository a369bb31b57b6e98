package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/angas/rotariff-go/config"
	"github.com/angas/rotariff-go/database"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/opcom"
	"github.com/angas/rotariff-go/types"
)

// NewBackfillTask fills holes in the price archive between the
// configured start date and today. Days the upstream no longer serves
// are skipped; repeated transport failures abort the pass.
func NewBackfillTask(
	logger *slog.Logger,
	db *database.Database,
	provider types.PriceProvider,
	cnfg *config.AppConfig) func() {

	return func() {
		runBackfillTask(logger, db, provider, cnfg.Opcom.GetStartDate())
	}
}

func runBackfillTask(logger *slog.Logger, db *database.Database, provider types.PriceProvider, startDate string) {
	logger.Debug("running backfill task...")

	today := hours.Today()
	if hours.IntervalsInDay(startDate) == 0 || startDate > today {
		logger.Error("backfill task error, invalid start date", slog.String("startDate", startDate))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	have, err := db.GetHourlyPriceDates(ctx, startDate, today)
	if err != nil {
		logger.Error("backfill task error, listing archive dates", slog.Any("error", err))
		return
	}

	stored := make(map[string]struct{}, len(have))
	for _, date := range have {
		stored[date] = struct{}{}
	}

	var missing []string
	for date := startDate; date <= today; date = hours.AddDays(date, 1) {
		if _, ok := stored[date]; !ok {
			missing = append(missing, date)
		}
	}

	if len(missing) == 0 {
		logger.Debug("price archive is complete")
		return
	}

	logger.Info("backfilling price archive", slog.Int("missingDays", len(missing)))

	const maxTransportErrors = 5
	transportErrors := 0
	filled := 0

	for _, date := range missing {
		dayCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		_, err := fetchDay(dayCtx, logger, db, provider, date)
		cancel()

		switch {
		case errors.Is(err, opcom.ErrNotPublished):
			logger.Debug("report no longer available", slog.String("date", date))
		case err != nil:
			logger.Error("backfill task error", slog.String("date", date), slog.Any("error", err))
			transportErrors++
			if transportErrors >= maxTransportErrors {
				logger.Warn("too many failures, giving up for now")
				return
			}
		default:
			transportErrors = 0
			filled++
		}

		// Spread requests out, the export endpoint is not meant for bulk pulls.
		time.Sleep(time.Second)
	}

	logger.Info("backfill task done", slog.Int("daysFilled", filled))
}
