package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/angas/rotariff-go/config"
	"github.com/angas/rotariff-go/database"
	"github.com/angas/rotariff-go/hass"
	"github.com/angas/rotariff-go/hours"
	"github.com/angas/rotariff-go/logging"
	"github.com/angas/rotariff-go/opcom"
	"github.com/angas/rotariff-go/pzu"
	"github.com/angas/rotariff-go/task"
	"github.com/angas/rotariff-go/www"
	"github.com/lmittmann/tint"
)

var Version = "?.?.?"

func main() {
	defer func() {
		if err := recover(); err != nil {
			exitWithError(slog.Default(), fmt.Errorf("application panicked: %v", err))
		} else {
			slog.Default().Info("application is shutting down...")
		}
	}()

	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cnfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := hours.SetMarketTimezone(cnfg.Opcom.GetTimezone()); err != nil {
		panic(fmt.Sprintf("failed to set market timezone: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consoleHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      cnfg.Logging.GetConsoleLevel(),
		TimeFormat: time.RFC3339,
	})
	slog.New(consoleHandler).Debug("rotariff is starting...", slog.String("version", Version))

	db, err := database.New(ctx, cnfg.Database.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to connect to database: %v", err))
	}
	defer db.Close()

	logger := slog.New(logging.NewMultiHandler(
		consoleHandler,
		logging.NewSQLiteHandler(db, cnfg.Logging.GetDbLevel(), cnfg.Logging.GetDbAttrsFormat())))
	slog.SetDefault(logger)

	// Now we can use the logger to log database operations into the database itself
	db.SetLogger(logger.With("module", "database"))

	provider := opcom.New(
		logger.With("module", "opcom"),
		cnfg.Opcom.GetBaseUrl(),
		cnfg.Opcom.GetRegion())

	data := pzu.NewData()

	var publish func()
	if cnfg.Mqtt.Enabled() {
		ha := hass.New(data, cnfg.Mqtt, cnfg.Opcom.GetRegion())
		if err := ha.Connect(); err != nil {
			logger.Error("home assistant connection error", slog.Any("error", err))
		} else {
			defer ha.Disconnect()
		}
		publish = ha.PublishState
	} else {
		logger.Info("mqtt is not configured, home assistant publishing disabled")
	}

	tasks := task.NewTasks(db, data, provider, publish, cnfg)
	if isDevMode() {
		logger.Info("dev mode, skipping task scheduling")
	} else {
		tasks.Run()
		defer tasks.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-ctx.Done():
			logger.Info("main context done")
		case sig := <-sigCh:
			logger.Info("received signal", slog.Any("signal", sig))
			cancel()
		}
	}()

	server := www.StartServer(db, tasks, data, cnfg.Api, Version)
	server.Run(ctx)
}

func isDevMode() bool {
	return strings.EqualFold(os.Getenv("APP_ENV"), "development")
}

func exitWithError(logger *slog.Logger, err error) {
	if err != nil {
		logger.Error("application shutting down with error", slog.Any("error", err))
	}
	if syncer, ok := logger.Handler().(interface{ Sync() error }); ok {
		if syncErr := syncer.Sync(); syncErr != nil {
			logger.Error("failed to flush logger", slog.Any("error", syncErr))
		}
	}

	time.Sleep(2 * time.Second)
	os.Exit(1)
}
