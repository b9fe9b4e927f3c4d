package backend

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/storage/postgres"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger.With(log.FieldComponent, log.ComponentBackend)}
}

var _ Factory = (*DefaultFactory)(nil)

func (f *DefaultFactory) Open(ctx context.Context, cfg Config) (store.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize SQLite repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case Postgres:
		repo, err := postgres.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize Postgres repository: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Postgres backend")
		return repo, nil
	default:
		dir := cfg.SeedDir
		if dir == "" {
			dir = "data"
		}
		f.logger.InfoContext(ctx, "Initialized memory backend", "seed_dir", dir)
		return memory.NewFromFiles(dir), nil
	}
}
