package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

const configKey = "app_config"

// SQLiteRepository stores every document as JSON text. Records keep the
// shape they were written in; readers normalize them.
type SQLiteRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, clock: core.SystemClock}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListTransactions returns documents in insertion order.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.RawRecord, error) {
	return r.listDocs(ctx, `SELECT id, doc FROM transactions ORDER BY rowid`)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.RawRecord, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM transactions WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return decodeDoc(id, doc)
}

func (r *SQLiteRepository) PutTransaction(ctx context.Context, id string, rec core.RawRecord) error {
	if err := r.upsertDoc(ctx, "transactions", id, rec); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Transaction saved to SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.deleteDoc(ctx, "transactions", id)
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.RawRecord, error) {
	return r.listDocs(ctx, `SELECT id, doc FROM goals ORDER BY rowid`)
}

func (r *SQLiteRepository) PutGoal(ctx context.Context, id string, rec core.RawRecord) error {
	return r.upsertDoc(ctx, "goals", id, rec)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id string) error {
	return r.deleteDoc(ctx, "goals", id)
}

// GetBudget implements budget.Store.
func (r *SQLiteRepository) GetBudget(ctx context.Context, month string, c core.Context) (core.Budget, bool, error) {
	var lines, updated string
	err := r.db.QueryRowContext(ctx,
		`SELECT lines, updated_at FROM budgets WHERE id = ?`, budget.DocID(month, c)).Scan(&lines, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, false, nil
	}
	if err != nil {
		return core.Budget{}, false, fmt.Errorf("get budget: %w", err)
	}
	b := core.Budget{Month: month, Context: c}
	if err := json.Unmarshal([]byte(lines), &b.Lines); err != nil {
		return core.Budget{}, false, fmt.Errorf("decode budget lines: %w", err)
	}
	b.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return b, true, nil
}

// PutBudget implements budget.Store.
func (r *SQLiteRepository) PutBudget(ctx context.Context, b core.Budget) error {
	lines, err := json.Marshal(nonNil(b.Lines))
	if err != nil {
		return fmt.Errorf("encode budget lines: %w", err)
	}
	updated := b.UpdatedAt
	if updated.IsZero() {
		updated = r.clock.Now()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, month, context, lines, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET lines = excluded.lines, updated_at = excluded.updated_at`,
		budget.DocID(b.Month, b.Context), b.Month, string(b.Context), string(lines), updated.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget saved to SQLite", "month", b.Month, "context", b.Context, "lines", len(b.Lines))
	return nil
}

func (r *SQLiteRepository) GetConfig(ctx context.Context) (map[string]any, bool, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT doc FROM settings WHERE key = ?`, configKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get config: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return nil, false, fmt.Errorf("decode config: %w", err)
	}
	return out, true, nil
}

func (r *SQLiteRepository) PutConfig(ctx context.Context, doc map[string]any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		configKey, string(raw), r.clock.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put config: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) listDocs(ctx context.Context, query string) ([]core.RawRecord, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []core.RawRecord
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		rec, err := decodeDoc(id, doc)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable document", "id", id, "error", err)
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// table is always one of the package's own constants.
func (r *SQLiteRepository) upsertDoc(ctx context.Context, table, id string, rec core.RawRecord) error {
	raw, err := encodeDoc(rec)
	if err != nil {
		return err
	}
	now := r.clock.Now().UTC().Format(time.RFC3339Nano)
	q := fmt.Sprintf(`INSERT INTO %s (id, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`, table)
	if _, err := r.db.ExecContext(ctx, q, id, raw, now); err != nil {
		return fmt.Errorf("put %s %s: %w", table, id, err)
	}
	return nil
}

func (r *SQLiteRepository) deleteDoc(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func encodeDoc(rec core.RawRecord) (string, error) {
	clean := make(core.RawRecord, len(rec))
	for k, v := range rec {
		if k != "id" {
			clean[k] = v
		}
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(raw), nil
}

func decodeDoc(id, doc string) (core.RawRecord, error) {
	rec := core.RawRecord{}
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	rec["id"] = id
	return rec, nil
}

func nonNil(lines []core.BudgetLine) []core.BudgetLine {
	if lines == nil {
		return []core.BudgetLine{}
	}
	return lines
}
