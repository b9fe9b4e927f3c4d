package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fintrack/internal/budget"
	"fintrack/internal/core"
)

// Store keeps every document in process memory.
type Store struct {
	mu      sync.Mutex
	txs     map[string]core.RawRecord
	order   []string
	goals   map[string]core.RawRecord
	budgets map[string]core.Budget
	config  map[string]any
}

func New() *Store {
	return &Store{
		txs:     map[string]core.RawRecord{},
		goals:   map[string]core.RawRecord{},
		budgets: map[string]core.Budget{},
	}
}

// NewFromFiles seeds the configuration catalogs from seed_*.txt files in base.
// Missing files leave that catalog to the defaults.
func NewFromFiles(base string) *Store {
	s := New()
	def := core.DefaultAppConfig()
	cfg := def
	if cur := readLines(filepath.Join(base, "seed_currencies.txt")); len(cur) > 0 {
		cfg.Currencies = cur
	}
	if acc := readLines(filepath.Join(base, "seed_accounts.txt")); len(acc) > 0 {
		cfg.Accounts = acc
	}
	if cats := readLines(filepath.Join(base, "seed_categories.txt")); len(cats) > 0 {
		cfg.Categories = nil
		for _, c := range cats {
			cfg.Categories = append(cfg.Categories, core.CategoryDef{
				Name: c, Subcategories: []string{}, Icon: "category", Type: "expense", Context: "unified",
			})
		}
	}
	s.config = cfg.Record()
	return s
}

func (s *Store) ListTransactions(_ context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RawRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, withID(s.txs[id], id))
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.txs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return withID(rec, id), nil
}

func (s *Store) PutTransaction(_ context.Context, id string, rec core.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.txs[id] = copyRecord(rec)
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.txs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RawRecord, 0, len(s.goals))
	for id, g := range s.goals {
		out = append(out, withID(g, id))
	}
	return out, nil
}

func (s *Store) PutGoal(_ context.Context, id string, rec core.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[id] = copyRecord(rec)
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) GetBudget(_ context.Context, month string, c core.Context) (core.Budget, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budget.DocID(month, c)]
	if !ok {
		return core.Budget{}, false, nil
	}
	b.Lines = append([]core.BudgetLine(nil), b.Lines...)
	return b, true, nil
}

func (s *Store) PutBudget(_ context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.Lines = append([]core.BudgetLine(nil), b.Lines...)
	s.budgets[budget.DocID(b.Month, b.Context)] = b
	return nil
}

func (s *Store) GetConfig(_ context.Context) (map[string]any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return nil, false, nil
	}
	return s.config, true, nil
}

func (s *Store) PutConfig(_ context.Context, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = doc
	return nil
}

func (s *Store) Close() error { return nil }

func withID(rec core.RawRecord, id string) core.RawRecord {
	out := copyRecord(rec)
	out["id"] = id
	return out
}

func copyRecord(rec core.RawRecord) core.RawRecord {
	out := make(core.RawRecord, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
