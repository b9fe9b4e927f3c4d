// Command fintrack-import loads legacy transaction documents into the
// configured store, from a JSON file or the ledger sheet.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"fintrack/internal/budget"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/snapshot"
)

func main() {
	file := flag.String("file", "", "JSON file holding an array of transaction documents")
	sheet := flag.Bool("sheet", false, "read the ledger sheet named by GOOGLE_LEDGER_SHEET")
	dryRun := flag.Bool("dry-run", false, "read and count without writing")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	recs, err := read(ctx, logger, cfg, *file, *sheet)
	if err != nil {
		logger.Error("Import read failed", log.FieldError, err)
		os.Exit(1)
	}
	if *dryRun {
		logger.Info("Dry run", log.FieldCount, len(recs))
		return
	}

	clock := cli.Clock(cfg)
	backend := cli.OpenBackend(ctx, logger, cfg)
	loader := snapshot.NewLoader(backend, snapshot.NewHub(), clock)

	amqpClient, err := cli.AMQPClient(logger, cfg)
	if err != nil {
		logger.Warn("AMQP unavailable, importing without notifications", log.FieldError, err)
	}
	var publisher services.Publisher
	if amqpClient != nil {
		publisher = amqpClient
	}

	finance := services.NewFinanceService(backend, loader, budget.NewEngine(backend, clock), publisher, clock)
	defer finance.Close()

	n, err := finance.Import(ctx, recs)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err, log.FieldCount, n)
		os.Exit(1)
	}
	logger.Info("Import completed", log.FieldCount, n)
}

func read(ctx context.Context, logger *log.Logger, cfg *config.Config, file string, sheet bool) ([]core.RawRecord, error) {
	switch {
	case file != "" && sheet:
		return nil, errors.New("use either -file or -sheet")
	case file != "":
		return readFile(file)
	case sheet:
		c, err := cli.SheetsClient(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, errors.New("-sheet needs GOOGLE_SPREADSHEET_ID")
		}
		return c.ReadLedger(ctx)
	default:
		return nil, errors.New("nothing to import: pass -file or -sheet")
	}
}

func readFile(path string) ([]core.RawRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var recs []core.RawRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return recs, nil
}
