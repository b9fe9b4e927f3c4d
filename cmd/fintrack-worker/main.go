package main

import (
	"context"
	"errors"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/snapshot"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("fintrack-worker needs AMQP_URL")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	clock := cli.Clock(cfg)
	backend := cli.OpenBackend(ctx, logger, cfg)
	defer backend.Close()

	sheets, err := cli.SheetsClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	var exporter worker.CashflowExporter
	if sheets != nil {
		exporter = sheets
	}

	amqpClient, err := cli.AMQPClient(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	loader := snapshot.NewLoader(backend, snapshot.NewHub(), clock)
	w := worker.NewRefreshWorker(loader, cli.AnalyticsEngine(cfg, clock), exporter)

	go w.RunPeriodic(ctx, cfg.RefreshInterval)

	if err := w.Run(ctx, amqpClient); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
