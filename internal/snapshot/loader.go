package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// Source is the read side of a backend plus the config write used to seed
// defaults.
type Source interface {
	store.TransactionStore
	store.GoalStore
	store.ConfigStore
}

// Loader reads the store into a Snapshot and publishes it on a Hub.
type Loader struct {
	src   Source
	hub   *Hub
	clock core.Clock
	group singleflight.Group
}

func NewLoader(src Source, hub *Hub, clock core.Clock) *Loader {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Loader{src: src, hub: hub, clock: clock}
}

func (l *Loader) Hub() *Hub { return l.hub }

// Refresh reloads and publishes. Concurrent callers share one load.
func (l *Loader) Refresh(ctx context.Context) (Snapshot, error) {
	v, err, shared := l.group.Do("refresh", func() (any, error) {
		s, err := l.load(ctx)
		if err != nil {
			return Snapshot{}, err
		}
		return l.hub.Publish(s), nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	s := v.(Snapshot)
	slog.DebugContext(ctx, "Snapshot refreshed",
		log.FieldComponent, log.ComponentSnapshot,
		log.FieldVersion, s.Version,
		"shared", shared)
	return s, nil
}

func (l *Loader) load(ctx context.Context) (Snapshot, error) {
	var (
		rawTxs   []core.RawRecord
		rawGoals []core.RawRecord
		cfg      core.AppConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := l.src.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		rawTxs = recs
		return nil
	})
	g.Go(func() error {
		recs, err := l.src.ListGoals(gctx)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		rawGoals = recs
		return nil
	})
	g.Go(func() error {
		c, err := l.loadConfig(gctx)
		cfg = c
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	goals := make([]core.Goal, 0, len(rawGoals))
	for _, raw := range rawGoals {
		goals = append(goals, finance.DecodeGoal(raw))
	}
	return Snapshot{
		LoadedAt:     l.clock.Now(),
		Transactions: finance.NormalizeAll(rawTxs, l.clock),
		Goals:        goals,
		Config:       cfg,
	}, nil
}

// loadConfig writes the default configuration when none is stored.
func (l *Loader) loadConfig(ctx context.Context) (core.AppConfig, error) {
	doc, ok, err := l.src.GetConfig(ctx)
	if err != nil {
		return core.AppConfig{}, fmt.Errorf("get config: %w", err)
	}
	if ok {
		return core.NormalizeAppConfig(doc), nil
	}
	def := core.DefaultAppConfig()
	if err := l.src.PutConfig(ctx, def.Record()); err != nil {
		return core.AppConfig{}, fmt.Errorf("write default config: %w", err)
	}
	slog.InfoContext(ctx, "Wrote default app configuration", log.FieldComponent, log.ComponentSnapshot)
	return def, nil
}
