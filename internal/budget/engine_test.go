package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

type fakeStore struct {
	docs   map[string]core.Budget
	puts   int
	getErr error
	putErr error
}

func newFakeStore() *fakeStore { return &fakeStore{docs: map[string]core.Budget{}} }

func (f *fakeStore) GetBudget(_ context.Context, month string, c core.Context) (core.Budget, bool, error) {
	if f.getErr != nil {
		return core.Budget{}, false, f.getErr
	}
	b, ok := f.docs[DocID(month, c)]
	return b, ok, nil
}

func (f *fakeStore) PutBudget(_ context.Context, b core.Budget) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	f.docs[DocID(b.Month, b.Context)] = b
	return nil
}

var fixed = core.FixedClock{T: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}

func TestResolveClonesPreviousMonth(t *testing.T) {
	store := newFakeStore()
	feb := []core.BudgetLine{{Name: "Food", Limit: 500, ColorTag: "green"}, {Name: "Food", Subcategory: "Restaurants", Limit: 100}}
	store.docs[DocID("2025-02", core.Personal)] = core.Budget{Month: "2025-02", Context: core.Personal, Lines: feb}

	e := NewEngine(store, fixed)
	res, err := e.Resolve(context.Background(), "2025-03", core.Personal)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != ClonedFromPrevious || e.State("2025-03", core.Personal) != ClonedFromPrevious {
		t.Fatalf("state: %v", res.State)
	}
	if len(res.Lines) != 2 || res.Lines[0] != feb[0] || res.Lines[1] != feb[1] {
		t.Fatalf("lines not copied verbatim: %+v", res.Lines)
	}
	saved, ok := store.docs[DocID("2025-03", core.Personal)]
	if !ok || len(saved.Lines) != 2 || !saved.UpdatedAt.Equal(fixed.T) {
		t.Fatalf("clone not persisted: %+v", saved)
	}

	// the clone is independent of February
	res.Lines[0].Limit = 1
	if store.docs[DocID("2025-02", core.Personal)].Lines[0].Limit != 500 {
		t.Fatalf("previous month mutated")
	}

	again, err := e.Resolve(context.Background(), "2025-03", core.Personal)
	if err != nil || again.State != Found {
		t.Fatalf("second resolve: %v %v", again.State, err)
	}
}

func TestResolveEmptyNewIsNotPersisted(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, fixed)
	res, err := e.Resolve(context.Background(), "2025-01", core.Business)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != EmptyNew || len(res.Lines) != 0 || res.Lines == nil {
		t.Fatalf("unexpected: %+v", res)
	}
	if store.puts != 0 {
		t.Fatalf("empty budget should not be written")
	}
}

func TestResolveErrors(t *testing.T) {
	e := NewEngine(newFakeStore(), fixed)
	if _, err := e.Resolve(context.Background(), "March", core.Personal); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected invalid month, got %v", err)
	}
	if _, err := e.Resolve(context.Background(), "2025-03", "family"); !errors.Is(err, core.ErrInvalidContext) {
		t.Fatalf("expected invalid context, got %v", err)
	}

	boom := errors.New("boom")
	store := newFakeStore()
	store.getErr = boom
	e = NewEngine(store, fixed)
	if _, err := e.Resolve(context.Background(), "2025-03", core.Personal); !errors.Is(err, boom) {
		t.Fatalf("store error should propagate, got %v", err)
	}
	if e.State("2025-03", core.Personal) != Unloaded {
		t.Fatalf("failed load should reset state")
	}
}

func TestAddLineRejectsDuplicateBeforeWrite(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, fixed)
	ctx := context.Background()
	if _, err := e.AddLine(ctx, "2025-03", core.Personal, core.BudgetLine{Name: "Food", Limit: 200}); err != nil {
		t.Fatalf("add: %v", err)
	}
	writes := store.puts
	_, err := e.AddLine(ctx, "2025-03", core.Personal, core.BudgetLine{Name: "Food", Limit: 300})
	if !errors.Is(err, core.ErrDuplicateBudgetLine) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if store.puts != writes {
		t.Fatalf("duplicate should not write")
	}
	lines, err := e.AddLine(ctx, "2025-03", core.Personal, core.BudgetLine{Name: "Food", Subcategory: "Bakery", Limit: 50})
	if err != nil || len(lines) != 2 {
		t.Fatalf("subcategory line: %v %+v", err, lines)
	}
}

func TestUpdateAndRemoveLine(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, fixed)
	ctx := context.Background()
	lines := []core.BudgetLine{{Name: "Food", Limit: 100}, {Name: "Rent", Limit: 900}}
	if err := e.Save(ctx, "2025-03", core.Personal, lines); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := e.UpdateLine(ctx, "2025-03", core.Personal, "Food-ALL", core.BudgetLine{Name: "Rent", Limit: 1}); !errors.Is(err, core.ErrDuplicateBudgetLine) {
		t.Fatalf("rename onto existing key should fail, got %v", err)
	}
	got, err := e.UpdateLine(ctx, "2025-03", core.Personal, "Food-ALL", core.BudgetLine{Name: "Food", Limit: 150})
	if err != nil || got[0].Limit != 150 {
		t.Fatalf("update: %v %+v", err, got)
	}
	if _, err := e.UpdateLine(ctx, "2025-03", core.Personal, "Nope-ALL", core.BudgetLine{Name: "Nope"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	got, err = e.RemoveLine(ctx, "2025-03", core.Personal, "Rent-ALL")
	if err != nil || len(got) != 1 || got[0].Name != "Food" {
		t.Fatalf("remove: %v %+v", err, got)
	}
	if len(store.docs[DocID("2025-03", core.Personal)].Lines) != 1 {
		t.Fatalf("remove not persisted")
	}
}

func TestSaveRejectsDuplicates(t *testing.T) {
	store := newFakeStore()
	e := NewEngine(store, fixed)
	err := e.Save(context.Background(), "2025-03", core.Business, []core.BudgetLine{{Name: "Ads", Limit: 1}, {Name: "Ads", Limit: 2}})
	if !errors.Is(err, core.ErrDuplicateBudgetLine) || store.puts != 0 {
		t.Fatalf("expected rejection without write, got %v (puts=%d)", err, store.puts)
	}
}
