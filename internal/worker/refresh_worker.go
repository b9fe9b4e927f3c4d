// Package worker keeps a process's snapshot in step with writes made by
// other processes.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/analytics"
	"fintrack/internal/log"
	"fintrack/internal/snapshot"
)

// Consumer delivers change notifications until ctx ends.
type Consumer interface {
	ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeMessage) error) error
}

// CashflowExporter receives the monthly cashflow history after transactions change.
type CashflowExporter interface {
	ExportCashflow(ctx context.Context, points []analytics.CashflowPoint) error
}

type RefreshWorker struct {
	loader   *snapshot.Loader
	engine   *analytics.Engine
	exporter CashflowExporter
}

// NewRefreshWorker builds a worker. exporter may be nil.
func NewRefreshWorker(loader *snapshot.Loader, engine *analytics.Engine, exporter CashflowExporter) *RefreshWorker {
	return &RefreshWorker{loader: loader, engine: engine, exporter: exporter}
}

// HandleChange reloads the snapshot. A failed reload is returned so the
// message is requeued; a failed export is only logged.
func (w *RefreshWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		log.FieldComponent, log.ComponentWorker,
		log.FieldCollection, msg.Collection,
		log.FieldOperation, msg.Op,
		log.FieldDocID, msg.ID)

	// budgets are read through the budget engine, not the snapshot
	if msg.Collection == amqp.CollectionBudgets {
		return nil
	}
	s, err := w.loader.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh snapshot: %w", err)
	}
	if msg.Collection == amqp.CollectionTransactions {
		w.export(ctx, s)
	}
	return nil
}

// Run consumes until ctx ends, after an initial refresh and export.
func (w *RefreshWorker) Run(ctx context.Context, consumer Consumer) error {
	s, err := w.loader.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("startup refresh: %w", err)
	}
	slog.InfoContext(ctx, "Startup refresh completed",
		log.FieldComponent, log.ComponentWorker,
		log.FieldVersion, s.Version,
		log.FieldCount, len(s.Transactions))
	w.export(ctx, s)
	return consumer.ConsumeChanges(ctx, w.HandleChange)
}

// RunPeriodic refreshes every interval as a backstop for lost messages.
func (w *RefreshWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.loader.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed",
					log.FieldComponent, log.ComponentWorker,
					log.FieldError, err)
			}
		}
	}
}

func (w *RefreshWorker) export(ctx context.Context, s snapshot.Snapshot) {
	if w.exporter == nil {
		return
	}
	points := w.engine.CashflowHistory(s.Transactions)
	if err := w.exporter.ExportCashflow(ctx, points); err != nil {
		slog.ErrorContext(ctx, "Failed to export cashflow",
			log.FieldComponent, log.ComponentSheets,
			log.FieldError, err)
		return
	}
	slog.InfoContext(ctx, "Cashflow exported",
		log.FieldComponent, log.ComponentSheets,
		log.FieldCount, len(points))
}
