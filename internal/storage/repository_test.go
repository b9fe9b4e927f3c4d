package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "fintrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionDocumentsKeepShapeAndOrder(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	legacy := core.RawRecord{"title": "Old", "amount": "5000", "category": map[string]any{"name": "Food"}, "isTransfer": false}
	if err := repo.PutTransaction(ctx, "b", legacy); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.PutTransaction(ctx, "a", core.RawRecord{"title": "New", "amount": 10.5}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := repo.PutTransaction(ctx, "b", core.RawRecord{"title": "Old edited", "amount": "5000", "id": "ignored"}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0]["id"] != "b" || list[0]["title"] != "Old edited" || list[1]["amount"] != 10.5 {
		t.Fatalf("unexpected list: %v", list)
	}

	got, err := repo.GetTransaction(ctx, "a")
	if err != nil || got["title"] != "New" {
		t.Fatalf("get: %v %v", got, err)
	}
	if err := repo.DeleteTransaction(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTransaction(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestBudgetRoundTripThroughEngine(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	clock := core.FixedClock{T: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	feb := core.Budget{Month: "2025-02", Context: core.Personal, Lines: []core.BudgetLine{{Name: "Food", Limit: 300, ColorTag: "blue"}}}
	if err := repo.PutBudget(ctx, feb); err != nil {
		t.Fatalf("put: %v", err)
	}

	e := budget.NewEngine(repo, clock)
	res, err := e.Resolve(ctx, "2025-03", core.Personal)
	if err != nil || res.State != budget.ClonedFromPrevious {
		t.Fatalf("resolve: %v %v", res.State, err)
	}
	mar, ok, err := repo.GetBudget(ctx, "2025-03", core.Personal)
	if err != nil || !ok || len(mar.Lines) != 1 || mar.Lines[0] != feb.Lines[0] || !mar.UpdatedAt.Equal(clock.T) {
		t.Fatalf("cloned budget: %+v %v %v", mar, ok, err)
	}
	if _, ok, _ := repo.GetBudget(ctx, "2025-03", core.Business); ok {
		t.Fatalf("business budget should not exist")
	}
}

func TestConfigAndGoals(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	if _, ok, err := repo.GetConfig(ctx); ok || err != nil {
		t.Fatalf("empty config: %v %v", ok, err)
	}
	if err := repo.PutConfig(ctx, core.DefaultAppConfig().Record()); err != nil {
		t.Fatalf("put config: %v", err)
	}
	doc, ok, err := repo.GetConfig(ctx)
	if err != nil || !ok || core.NormalizeAppConfig(doc).PrimaryCurrency() != "COP" {
		t.Fatalf("config: %v %v %v", doc, ok, err)
	}

	if err := repo.PutGoal(ctx, "g1", core.RawRecord{"name": "Trip", "targetAmount": 100.0}); err != nil {
		t.Fatalf("put goal: %v", err)
	}
	goals, err := repo.ListGoals(ctx)
	if err != nil || len(goals) != 1 || goals[0]["id"] != "g1" {
		t.Fatalf("goals: %v %v", goals, err)
	}
	if err := repo.DeleteGoal(ctx, "g1"); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
}
