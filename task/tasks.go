package task

import (
	"context"
	"log/slog"

	"github.com/angas/rotariff-go/config"
	"github.com/angas/rotariff-go/database"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/pzu"
	"github.com/angas/rotariff-go/types"
	"github.com/robfig/cron/v3"
)

type Tasks struct {
	cron            *cron.Cron
	cnfg            *config.AppConfig
	PriceTask       func()
	RolloverTask    func()
	PublishTask     func()
	MaintenanceTask func()
	BackfillTask    func()
}

// NewTasks builds the task closures. The publish callback pushes the
// current sensor state to Home Assistant and may be nil when MQTT is
// disabled.
func NewTasks(
	db *database.Database,
	data *pzu.Data,
	provider types.PriceProvider,
	publish func(),
	cnfg *config.AppConfig,
) *Tasks {
	if publish == nil {
		publish = func() {}
	}

	logger := slog.Default().With("module", "tasks")
	return &Tasks{
		cron:            cron.New(cron.WithLocation(hours.MarketLocation())),
		cnfg:            cnfg,
		PriceTask:       NewPriceTask(logger.With(slog.String("task", "price")), db, data, provider, cnfg.Fetch, publish),
		RolloverTask:    NewRolloverTask(logger.With(slog.String("task", "rollover")), data, publish),
		PublishTask:     NewPublishTask(logger.With(slog.String("task", "publish")), publish),
		MaintenanceTask: NewMaintenanceTask(logger.With(slog.String("task", "maintenance")), db, cnfg),
		BackfillTask:    NewBackfillTask(logger.With(slog.String("task", "backfill")), db, provider, cnfg),
	}
}

func (t *Tasks) Run() {
	_, err := t.cron.AddFunc("@every "+t.cnfg.Fetch.GetInterval().String(), t.PriceTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("0 0 * * *", t.RolloverTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc("@hourly", t.PublishTask)
	if err != nil {
		panic(err)
	}
	_, err = t.cron.AddFunc(t.cnfg.Tasks.RunAt.GetMaintenance(), t.MaintenanceTask)
	if err != nil {
		panic(err)
	}
	if t.cnfg.Fetch.Backfill {
		_, err = t.cron.AddFunc(t.cnfg.Tasks.RunAt.GetBackfill(), t.BackfillTask)
		if err != nil {
			panic(err)
		}
	}
	t.cron.Start()
}

func (t *Tasks) Stop() context.Context {
	return t.cron.Stop()
}
