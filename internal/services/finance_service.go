package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/amqp"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/log"
	"fintrack/internal/snapshot"
	"fintrack/internal/store"
)

// Publisher announces document changes to other processes.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// ErrNoCurrencies rejects a configuration without currencies.
var ErrNoCurrencies = errors.New("configuration needs at least one currency")

// FinanceService is the write side: it validates, persists, refreshes the
// local snapshot and publishes a change notification. Publication failures
// are logged and never fail a write.
type FinanceService struct {
	backend   store.Backend
	loader    *snapshot.Loader
	budgets   *budget.Engine
	publisher Publisher
	clock     core.Clock
}

func NewFinanceService(backend store.Backend, loader *snapshot.Loader, budgets *budget.Engine, publisher Publisher, clock core.Clock) *FinanceService {
	if clock == nil {
		clock = core.SystemClock
	}
	return &FinanceService{
		backend:   backend,
		loader:    loader,
		budgets:   budgets,
		publisher: publisher,
		clock:     clock,
	}
}

// Snapshot returns the current view of the store.
func (s *FinanceService) Snapshot() snapshot.Snapshot {
	return s.loader.Hub().Current()
}

func (s *FinanceService) Budgets() *budget.Engine { return s.budgets }

// Location is the time zone dates are interpreted in.
func (s *FinanceService) Location() *time.Location { return core.Location(s.clock) }

// CreateTransaction assigns an ID and defaults, validates and stores t.
func (s *FinanceService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t = s.withDefaults(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.backend.PutTransaction(ctx, t.ID, finance.Record(t)); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction created", log.NewFields().
		WithComponent(log.ComponentFinance).
		WithOperation(log.OpCreate).
		WithDocument(amqp.CollectionTransactions, t.ID).
		WithTransaction(string(t.Type), t.Currency, t.Amount, string(t.Context)).Args()...)
	s.changed(ctx, amqp.CollectionTransactions, amqp.OpPut, t.ID)
	return t, nil
}

// UpdateTransaction replaces an existing transaction.
func (s *FinanceService) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if _, err := s.backend.GetTransaction(ctx, id); err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	t.ID = id
	t = s.withDefaults(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.backend.PutTransaction(ctx, id, finance.Record(t)); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.changed(ctx, amqp.CollectionTransactions, amqp.OpPut, id)
	return t, nil
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.backend.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	s.changed(ctx, amqp.CollectionTransactions, amqp.OpDelete, id)
	return nil
}

// Import stores raw documents as they are, keeping their ids when present.
// Shapes are not validated; normalization happens on read.
func (s *FinanceService) Import(ctx context.Context, recs []core.RawRecord) (int, error) {
	n := 0
	for _, rec := range recs {
		id, _ := rec["id"].(string)
		if strings.TrimSpace(id) == "" {
			id = uuid.NewString()
		}
		if err := s.backend.PutTransaction(ctx, id, rec); err != nil {
			return n, fmt.Errorf("import transaction %d: %w", n, err)
		}
		n++
	}
	if n > 0 {
		slog.InfoContext(ctx, "Transactions imported",
			log.FieldComponent, log.ComponentImport,
			log.FieldCount, n)
		s.changed(ctx, amqp.CollectionTransactions, amqp.OpPut, "")
	}
	return n, nil
}

func (s *FinanceService) SaveGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.backend.PutGoal(ctx, g.ID, finance.GoalRecord(g)); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	s.changed(ctx, amqp.CollectionGoals, amqp.OpPut, g.ID)
	return g, nil
}

func (s *FinanceService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.backend.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	s.changed(ctx, amqp.CollectionGoals, amqp.OpDelete, id)
	return nil
}

// SaveConfig replaces the app configuration.
func (s *FinanceService) SaveConfig(ctx context.Context, cfg core.AppConfig) (core.AppConfig, error) {
	if len(cfg.Currencies) == 0 {
		return core.AppConfig{}, ErrNoCurrencies
	}
	// round trip so legacy and partial shapes come out normalized
	cfg = core.NormalizeAppConfig(cfg.Record())
	if err := s.backend.PutConfig(ctx, cfg.Record()); err != nil {
		return core.AppConfig{}, fmt.Errorf("save config: %w", err)
	}
	s.changed(ctx, amqp.CollectionConfig, amqp.OpPut, "app_config")
	return cfg, nil
}

// BudgetReport is a resolved budget with its spend for one month.
type BudgetReport struct {
	budget.Resolution
	Status string              `json:"status"`
	Spend  []budget.LineStatus `json:"spend"`
	Health budget.Health       `json:"health"`
}

// Budget resolves a month (cloning from the previous one when needed) and
// computes spend against the current snapshot.
func (s *FinanceService) Budget(ctx context.Context, month string, c core.Context) (BudgetReport, error) {
	res, err := s.budgets.Resolve(ctx, month, c)
	if err != nil {
		return BudgetReport{}, err
	}
	if res.State == budget.ClonedFromPrevious {
		s.publish(ctx, amqp.CollectionBudgets, amqp.OpPut, budget.DocID(res.Month, c))
	}
	return s.budgetReport(res), nil
}

func (s *FinanceService) budgetReport(res budget.Resolution) BudgetReport {
	m, _ := core.ParseMonth(res.Month)
	txs := budget.TransactionsFor(s.Snapshot().Transactions, m, core.Selector(res.Context), core.Location(s.clock))
	lines := budget.ComputeSpend(res.Lines, txs)
	return BudgetReport{
		Resolution: res,
		Status:     res.State.String(),
		Spend:      lines,
		Health:     budget.Summarize(lines),
	}
}

func (s *FinanceService) SaveBudget(ctx context.Context, month string, c core.Context, lines []core.BudgetLine) (BudgetReport, error) {
	if err := s.budgets.Save(ctx, month, c, lines); err != nil {
		return BudgetReport{}, err
	}
	return s.budgetChanged(ctx, month, c)
}

func (s *FinanceService) AddBudgetLine(ctx context.Context, month string, c core.Context, line core.BudgetLine) (BudgetReport, error) {
	if _, err := s.budgets.AddLine(ctx, month, c, line); err != nil {
		return BudgetReport{}, err
	}
	return s.budgetChanged(ctx, month, c)
}

func (s *FinanceService) UpdateBudgetLine(ctx context.Context, month string, c core.Context, key string, line core.BudgetLine) (BudgetReport, error) {
	if _, err := s.budgets.UpdateLine(ctx, month, c, key, line); err != nil {
		return BudgetReport{}, err
	}
	return s.budgetChanged(ctx, month, c)
}

func (s *FinanceService) RemoveBudgetLine(ctx context.Context, month string, c core.Context, key string) (BudgetReport, error) {
	if _, err := s.budgets.RemoveLine(ctx, month, c, key); err != nil {
		return BudgetReport{}, err
	}
	return s.budgetChanged(ctx, month, c)
}

func (s *FinanceService) budgetChanged(ctx context.Context, month string, c core.Context) (BudgetReport, error) {
	res, err := s.budgets.Resolve(ctx, month, c)
	if err != nil {
		return BudgetReport{}, err
	}
	slog.InfoContext(ctx, "Budget saved", log.NewFields().
		WithComponent(log.ComponentBudget).
		WithOperation(log.OpUpdate).
		WithBudget(res.Month, string(c)).Args()...)
	s.publish(ctx, amqp.CollectionBudgets, amqp.OpPut, budget.DocID(res.Month, c))
	return s.budgetReport(res), nil
}

func (s *FinanceService) withDefaults(t core.Transaction) core.Transaction {
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	if t.Currency == "" {
		t.Currency = core.DefaultCurrency
	}
	if t.Category == "" {
		t.Category = core.DefaultCategory
	}
	if t.Date.IsZero() {
		t.Date = s.clock.Now()
	}
	return t
}

// changed refreshes the local snapshot and notifies other processes.
func (s *FinanceService) changed(ctx context.Context, collection, op, id string) {
	if _, err := s.loader.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Failed to refresh snapshot after write",
			log.FieldComponent, log.ComponentSnapshot,
			log.FieldCollection, collection,
			log.FieldError, err)
	}
	s.publish(ctx, collection, op, id)
}

func (s *FinanceService) publish(ctx context.Context, collection, op, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, amqp.NewChangeMessage(collection, op, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			log.FieldComponent, log.ComponentAMQP,
			log.FieldCollection, collection,
			log.FieldDocID, id,
			log.FieldError, err)
	}
}

// Close releases the backend and the publisher when it holds a connection.
func (s *FinanceService) Close() error {
	var errs []error
	if err := s.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("backend: %w", err))
	}
	if c, ok := s.publisher.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
