// Package budget resolves monthly budgets per context and measures spend
// against their lines.
package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"fintrack/internal/core"
)

// State of a (month, context) budget key.
type State int

const (
	Unloaded State = iota
	Loading
	Found
	ClonedFromPrevious
	EmptyNew
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Found:
		return "found"
	case ClonedFromPrevious:
		return "cloned_from_previous"
	case EmptyNew:
		return "empty_new"
	}
	return "unloaded"
}

// Store persists budgets by (month, context).
type Store interface {
	GetBudget(ctx context.Context, month string, c core.Context) (core.Budget, bool, error)
	PutBudget(ctx context.Context, b core.Budget) error
}

// Resolution is the outcome of resolving one budget key.
type Resolution struct {
	Month   string            `json:"month"`
	Context core.Context      `json:"context"`
	Lines   []core.BudgetLine `json:"lines"`
	State   State             `json:"-"`
}

// DocID is the storage identifier of a budget document.
func DocID(month string, c core.Context) string {
	return month + "_" + string(c)
}

// Engine resolves and saves budgets. Safe for concurrent use.
type Engine struct {
	store Store
	clock core.Clock

	mu     sync.Mutex
	states map[string]State
}

func NewEngine(store Store, clock core.Clock) *Engine {
	if clock == nil {
		clock = core.SystemClock
	}
	return &Engine{store: store, clock: clock, states: make(map[string]State)}
}

// State reports the last known state of a key.
func (e *Engine) State(month string, c core.Context) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[DocID(month, c)]
}

func (e *Engine) setState(month string, c core.Context, s State) {
	e.mu.Lock()
	e.states[DocID(month, c)] = s
	e.mu.Unlock()
}

// Resolve returns the lines for a month, seeding a missing month from the
// previous one. An empty result is not persisted.
func (e *Engine) Resolve(ctx context.Context, month string, c core.Context) (Resolution, error) {
	m, err := core.ParseMonth(month)
	if err != nil {
		return Resolution{}, err
	}
	if !c.Valid() {
		return Resolution{}, core.ErrInvalidContext
	}
	month = m.String()
	res := Resolution{Month: month, Context: c, Lines: []core.BudgetLine{}}

	e.setState(month, c, Loading)
	cur, ok, err := e.store.GetBudget(ctx, month, c)
	if err != nil {
		e.setState(month, c, Unloaded)
		return Resolution{}, fmt.Errorf("get budget %s: %w", DocID(month, c), err)
	}
	if ok {
		res.Lines = cloneLines(cur.Lines)
		res.State = Found
		e.setState(month, c, Found)
		return res, nil
	}

	prevMonth := m.Prev().String()
	prev, ok, err := e.store.GetBudget(ctx, prevMonth, c)
	if err != nil {
		e.setState(month, c, Unloaded)
		return Resolution{}, fmt.Errorf("get budget %s: %w", DocID(prevMonth, c), err)
	}
	if !ok {
		res.State = EmptyNew
		e.setState(month, c, EmptyNew)
		return res, nil
	}

	clone := core.Budget{Month: month, Context: c, Lines: cloneLines(prev.Lines), UpdatedAt: e.clock.Now()}
	if err := e.store.PutBudget(ctx, clone); err != nil {
		e.setState(month, c, Unloaded)
		return Resolution{}, fmt.Errorf("put cloned budget %s: %w", DocID(month, c), err)
	}
	slog.InfoContext(ctx, "Budget cloned from previous month",
		"month", month, "context", c, "from", prevMonth, "lines", len(clone.Lines))
	res.Lines = cloneLines(clone.Lines)
	res.State = ClonedFromPrevious
	e.setState(month, c, ClonedFromPrevious)
	return res, nil
}

// Save replaces the full line list of a month.
func (e *Engine) Save(ctx context.Context, month string, c core.Context, lines []core.BudgetLine) error {
	m, err := core.ParseMonth(month)
	if err != nil {
		return err
	}
	if !c.Valid() {
		return core.ErrInvalidContext
	}
	if err := core.ValidateLines(lines); err != nil {
		return err
	}
	b := core.Budget{Month: m.String(), Context: c, Lines: cloneLines(lines), UpdatedAt: e.clock.Now()}
	if err := e.store.PutBudget(ctx, b); err != nil {
		return fmt.Errorf("put budget %s: %w", DocID(b.Month, c), err)
	}
	e.setState(b.Month, c, Found)
	return nil
}

// AddLine appends a line, rejecting an identity already present.
func (e *Engine) AddLine(ctx context.Context, month string, c core.Context, line core.BudgetLine) ([]core.BudgetLine, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}
	res, err := e.Resolve(ctx, month, c)
	if err != nil {
		return nil, err
	}
	for _, l := range res.Lines {
		if l.Key() == line.Key() {
			return nil, core.ErrDuplicateBudgetLine
		}
	}
	lines := append(res.Lines, line)
	if err := e.Save(ctx, month, c, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// UpdateLine replaces the line identified by key.
func (e *Engine) UpdateLine(ctx context.Context, month string, c core.Context, key string, line core.BudgetLine) ([]core.BudgetLine, error) {
	if err := line.Validate(); err != nil {
		return nil, err
	}
	res, err := e.Resolve(ctx, month, c)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, l := range res.Lines {
		if l.Key() == key {
			idx = i
		} else if l.Key() == line.Key() {
			return nil, core.ErrDuplicateBudgetLine
		}
	}
	if idx < 0 {
		return nil, core.ErrNotFound
	}
	res.Lines[idx] = line
	if err := e.Save(ctx, month, c, res.Lines); err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// RemoveLine deletes the line identified by key.
func (e *Engine) RemoveLine(ctx context.Context, month string, c core.Context, key string) ([]core.BudgetLine, error) {
	res, err := e.Resolve(ctx, month, c)
	if err != nil {
		return nil, err
	}
	out := res.Lines[:0]
	removed := false
	for _, l := range res.Lines {
		if l.Key() == key {
			removed = true
			continue
		}
		out = append(out, l)
	}
	if !removed {
		return nil, core.ErrNotFound
	}
	if err := e.Save(ctx, month, c, out); err != nil {
		return nil, err
	}
	return out, nil
}

func cloneLines(in []core.BudgetLine) []core.BudgetLine {
	out := make([]core.BudgetLine, len(in))
	copy(out, in)
	return out
}
