// Package cli holds the start-up steps shared by the cmd binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/store"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(component string) *log.Logger {
	l := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Format:    os.Getenv("LOG_FORMAT"),
		Component: component,
	})
	log.SetDefault(l)
	return l
}

// LoadAndValidateConfig exits the process when the configuration is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend opens the configured store or exits.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) store.Backend {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	b, err := backend.NewFactory(logger.Logger).Open(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	return b
}

// Clock is the wall clock in the configured time zone.
func Clock(cfg *config.Config) core.Clock {
	return core.ZonedClock{Loc: cfg.Location()}
}

// AnalyticsEngine applies EXCHANGE_RATES over the built-in rates.
func AnalyticsEngine(cfg *config.Config, clock core.Clock) *analytics.Engine {
	return analytics.NewEngine(analytics.NewConverter(cfg.ExchangeRates), clock)
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-ch:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}

// AMQPClient connects to the broker when AMQP_URL is set. A nil client
// means notifications are disabled.
func AMQPClient(logger *log.Logger, cfg *config.Config) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, err
	}
	logger.Info("AMQP client connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return c, nil
}

// SheetsClient builds the Google Sheets client when a spreadsheet is
// configured. A nil client means the sheet integration is disabled.
func SheetsClient(ctx context.Context, logger *log.Logger, cfg *config.Config) (*gsheet.Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil, nil
	}
	c, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		LedgerSheet:     cfg.GoogleLedgerSheet,
		CashflowSheet:   cfg.GoogleCashflowSheet,
		CredentialsFile: cfg.GoogleCredentialsFile,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return c, nil
}
