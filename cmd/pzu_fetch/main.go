// One-shot download of a day-ahead report, useful for checking what
// the export endpoint returns without running the full application.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/angas/rotariff-go/calc"
	"github.com/angas/rotariff-go/config"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/opcom"
	"github.com/lmittmann/tint"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	date := flag.String("date", "", "report date (YYYY-MM-DD), defaults to tomorrow")
	flag.Parse()

	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.RFC3339,
	}))
	slog.SetDefault(logger)

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	if err := hours.SetMarketTimezone(cnfg.Opcom.GetTimezone()); err != nil {
		panic(err)
	}

	reportDate := *date
	if reportDate == "" {
		reportDate = hours.AddDays(hours.Today(), 1)
	}

	client := opcom.New(logger, cnfg.Opcom.GetBaseUrl(), cnfg.Opcom.GetRegion())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	prices, err := client.GetDayPrices(ctx, reportDate)
	if err != nil {
		panic(err)
	}

	for _, p := range prices {
		fmt.Printf("Date: %s, Hour: %02d, Price: %.2f, Volume: %.1f\n",
			p.Hour.Date, p.Hour.Hour, p.Price, p.Volume)
	}

	stats, err := calc.Statistics(prices)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Average: %.2f, Min: %.2f, Max: %.2f, Peak: %.2f, Off-peak: %.2f/%.2f lei/MWh\n",
		stats.Average, stats.Min, stats.Max, stats.Peak, stats.OffPeak1, stats.OffPeak2)
}
