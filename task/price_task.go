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
	"github.com/angas/rotariff-go/pzu"
	"github.com/angas/rotariff-go/slice"
	"github.com/angas/rotariff-go/types"
)

func NewPriceTask(
	logger *slog.Logger,
	db *database.Database,
	data *pzu.Data,
	provider types.PriceProvider,
	cnfg config.AppConfigFetch,
	publish func()) func() {

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := reloadFromArchive(ctx, logger, db, data); err != nil {
		logger.Warn("could not reload prices from archive", slog.Any("error", err))
	}

	if _, ok := data.Snapshot().TodaySet(time.Now()); !ok {
		logger.Info("need an immediate update of day-ahead prices")
		runPriceTask(logger, db, data, provider, cnfg, publish)
	} else {
		logger.Debug("no need for immediate update of day-ahead prices")
	}

	return func() { runPriceTask(logger, db, data, provider, cnfg, publish) }
}

func runPriceTask(
	logger *slog.Logger,
	db *database.Database,
	data *pzu.Data,
	provider types.PriceProvider,
	cnfg config.AppConfigFetch,
	publish func()) {

	logger.Debug("running price task...")

	now := time.Now().In(hours.MarketLocation())
	snap := data.Snapshot()

	fetchToday, fetchTomorrow := fetchPlan(snap, now, cnfg)
	if !fetchToday && !fetchTomorrow {
		logger.Debug("day-ahead prices are up to date")
		return
	}

	if !data.BeginFetch(now) {
		logger.Debug("previous fetch still in flight, skipping tick")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	var firstErr error

	if fetchToday {
		day, err := fetchDay(ctx, logger, db, provider, hours.Today())
		if err != nil {
			logger.Error("price task error, fetching today", slog.Any("error", err))
			firstErr = err
		} else {
			data.SetToday(day)
		}
	}

	if fetchTomorrow {
		day, err := fetchDay(ctx, logger, db, provider, hours.AddDays(hours.Today(), 1))
		switch {
		case errors.Is(err, opcom.ErrNotPublished):
			logger.Info("tomorrow's report is not published yet")
		case err != nil:
			logger.Error("price task error, fetching tomorrow", slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		default:
			data.SetTomorrow(day)
		}
	}

	data.EndFetch(time.Now(), firstErr)
	publish()

	if firstErr == nil {
		logger.Info("price task done")
	}
}

// fetchPlan decides what a tick has to request. Today is fetched
// whenever the snapshot no longer covers the current date. Tomorrow is
// fetched only from the cutoff hour on, and again after refresh_after
// in case the published series was corrected upstream.
func fetchPlan(snap pzu.Snapshot, now time.Time, cnfg config.AppConfigFetch) (fetchToday, fetchTomorrow bool) {
	_, todaySet := snap.TodaySet(now)
	fetchToday = !todaySet

	if now.Hour() >= cnfg.GetCutoffHour() {
		if tomorrow, ok := snap.TomorrowSet(now); !ok {
			fetchTomorrow = true
		} else if now.Sub(tomorrow.FetchedAt) > cnfg.GetRefreshAfter() {
			fetchTomorrow = true
		}
	}

	return fetchToday, fetchTomorrow
}

// fetchDay downloads one delivery day, archives it and records the
// attempt in the download journal.
func fetchDay(
	ctx context.Context,
	logger *slog.Logger,
	db *database.Database,
	provider types.PriceProvider,
	date string) (types.DayPrices, error) {

	startedAt := time.Now()
	prices, err := provider.GetDayPrices(ctx, date)
	finishedAt := time.Now()

	entry := database.DownloadLogRow{
		Date:       date,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		NoOfHours:  len(prices),
	}

	if err != nil {
		entry.Outcome = "error"
		entry.Message = err.Error()
		if errors.Is(err, opcom.ErrNotPublished) {
			entry.Outcome = "not_published"
		}
		if logErr := db.SaveDownloadLog(ctx, entry); logErr != nil {
			logger.Error("price task error, saving download log", slog.Any("error", logErr))
		}
		return types.DayPrices{}, err
	}

	entry.Outcome = "success"
	if logErr := db.SaveDownloadLog(ctx, entry); logErr != nil {
		logger.Error("price task error, saving download log", slog.Any("error", logErr))
	}

	rows := slice.Map(prices, func(hp types.HourlyPrice) database.HourlyPriceRow {
		return database.HourlyPriceRow{When: hp.Hour, Price: hp.Price, Volume: hp.Volume}
	})
	if err := db.SaveDayPrices(ctx, date, rows); err != nil {
		logger.Error("price task error, archiving prices", slog.Any("error", err))
	}

	logger.Info("day-ahead prices downloaded",
		slog.String("date", date),
		slog.Int("noOfHours", len(prices)))

	return types.DayPrices{Date: date, Hours: prices, FetchedAt: finishedAt}, nil
}

// reloadFromArchive seeds the in-memory snapshots from the database so
// a restart serves prices without waiting for a fetch.
func reloadFromArchive(ctx context.Context, logger *slog.Logger, db *database.Database, data *pzu.Data) error {
	today := hours.Today()
	tomorrow := hours.AddDays(today, 1)

	for _, date := range []string{today, tomorrow} {
		rows, err := db.GetHourlyPricesForDay(ctx, date)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}

		day := types.DayPrices{
			Date: date,
			Hours: slice.Map(rows, func(r database.HourlyPriceRow) types.HourlyPrice {
				return types.HourlyPrice{Hour: r.When, Price: r.Price, Volume: r.Volume}
			}),
			FetchedAt: time.Now(),
		}

		if date == today {
			data.SetToday(day)
		} else {
			data.SetTomorrow(day)
		}

		logger.Info("prices reloaded from archive",
			slog.String("date", date),
			slog.Int("noOfHours", len(rows)))
	}

	return nil
}
