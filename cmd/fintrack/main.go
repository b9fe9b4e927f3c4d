package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/services"
	"fintrack/internal/snapshot"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	clock := cli.Clock(cfg)
	backend := cli.OpenBackend(ctx, logger, cfg)

	hub := snapshot.NewHub()
	loader := snapshot.NewLoader(backend, hub, clock)
	if _, err := loader.Refresh(ctx); err != nil {
		logger.Error("Initial snapshot load failed", log.FieldError, err)
		os.Exit(1)
	}

	engine := cli.AnalyticsEngine(cfg, clock)
	views := snapshot.NewViews(hub, engine, cfg.CacheTTL)
	defer views.Close()
	go cache.NewSweeper(views.Cleaners()...).Run(ctx, cfg.CacheTTL)

	amqpClient, err := cli.AMQPClient(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	var publisher services.Publisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	finance := services.NewFinanceService(backend, loader, budget.NewEngine(backend, clock), publisher, clock)
	defer func() {
		if err := finance.Close(); err != nil {
			logger.Error("Close failed", log.FieldError, err)
		}
	}()

	// other processes write too; pick their changes up periodically
	go worker.NewRefreshWorker(loader, engine, nil).RunPeriodic(ctx, cfg.RefreshInterval)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Finance:        finance,
		Views:          views,
		Logger:         logger,
		Limiter:        ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitRPM}),
		AllowedOrigins: cfg.AllowedOrigins,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting fintrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
