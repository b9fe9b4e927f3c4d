// Package postgres is the Postgres document backend. Documents are JSONB;
// layout mirrors the SQLite backend.
package postgres

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"fintrack/internal/budget"
	"fintrack/internal/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const configKey = "app_config"

type Repository struct {
	pool *pgxpool.Pool
}

// Connect opens a pool, pings it and applies migrations.
func Connect(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := runMigrations(pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repository{pool: pool}, nil
}

func runMigrations(pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("create pgx migrate driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, _, _ := m.Version()
	slog.Info("Postgres schema ready", "version", version)
	return nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.RawRecord, error) {
	return r.listDocs(ctx, `SELECT id, doc FROM transactions ORDER BY seq`)
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.RawRecord, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM transactions WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return decode(id, doc)
}

func (r *Repository) PutTransaction(ctx context.Context, id string, rec core.RawRecord) error {
	return r.upsert(ctx, `
		INSERT INTO transactions (id, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`, id, rec)
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	return r.delete(ctx, `DELETE FROM transactions WHERE id = $1`, id)
}

func (r *Repository) ListGoals(ctx context.Context) ([]core.RawRecord, error) {
	return r.listDocs(ctx, `SELECT id, doc FROM goals ORDER BY seq`)
}

func (r *Repository) PutGoal(ctx context.Context, id string, rec core.RawRecord) error {
	return r.upsert(ctx, `
		INSERT INTO goals (id, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`, id, rec)
}

func (r *Repository) DeleteGoal(ctx context.Context, id string) error {
	return r.delete(ctx, `DELETE FROM goals WHERE id = $1`, id)
}

func (r *Repository) GetBudget(ctx context.Context, month string, c core.Context) (core.Budget, bool, error) {
	var lines []byte
	b := core.Budget{Month: month, Context: c}
	err := r.pool.QueryRow(ctx, `SELECT lines, updated_at FROM budgets WHERE id = $1`, budget.DocID(month, c)).
		Scan(&lines, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget: %w", err)
	}
	if err := json.Unmarshal(lines, &b.Lines); err != nil {
		return core.Budget{}, false, fmt.Errorf("decode budget lines: %w", err)
	}
	return b, true, nil
}

func (r *Repository) PutBudget(ctx context.Context, b core.Budget) error {
	if b.Lines == nil {
		b.Lines = []core.BudgetLine{}
	}
	lines, err := json.Marshal(b.Lines)
	if err != nil {
		return fmt.Errorf("encode budget lines: %w", err)
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now()
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO budgets (id, month, context, lines, updated_at) VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (id) DO UPDATE SET lines = EXCLUDED.lines, updated_at = EXCLUDED.updated_at`,
		budget.DocID(b.Month, b.Context), b.Month, string(b.Context), string(lines), b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	return nil
}

func (r *Repository) GetConfig(ctx context.Context) (map[string]any, bool, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM settings WHERE key = $1`, configKey).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get config: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil, false, fmt.Errorf("decode config: %w", err)
	}
	return out, true, nil
}

func (r *Repository) PutConfig(ctx context.Context, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO settings (key, doc) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`, configKey, string(raw))
	if err != nil {
		return fmt.Errorf("put config: %w", err)
	}
	return nil
}

func (r *Repository) listDocs(ctx context.Context, query string) ([]core.RawRecord, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []core.RawRecord
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		rec, err := decode(id, doc)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable document", "id", id, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *Repository) upsert(ctx context.Context, query, id string, rec core.RawRecord) error {
	clean := make(core.RawRecord, len(rec))
	for k, v := range rec {
		if k != "id" {
			clean[k] = v
		}
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if _, err := r.pool.Exec(ctx, query, id, string(raw)); err != nil {
		return fmt.Errorf("put document %s: %w", id, err)
	}
	return nil
}

func (r *Repository) delete(ctx context.Context, query, id string) error {
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func decode(id string, doc []byte) (core.RawRecord, error) {
	rec := core.RawRecord{}
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	rec["id"] = id
	return rec, nil
}
