package store

import (
	"context"

	"fintrack/internal/budget"
	"fintrack/internal/core"
)

// Ports for persistence backends. Records are stored documents in whatever
// shape they were written; normalization happens on read in the finance layer.
type (
	TransactionStore interface {
		// ListTransactions returns every stored transaction with its "id" set.
		ListTransactions(ctx context.Context) ([]core.RawRecord, error)
		GetTransaction(ctx context.Context, id string) (core.RawRecord, error)
		// PutTransaction creates or replaces a document.
		PutTransaction(ctx context.Context, id string, rec core.RawRecord) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.RawRecord, error)
		PutGoal(ctx context.Context, id string, rec core.RawRecord) error
		DeleteGoal(ctx context.Context, id string) error
	}

	// ConfigStore holds the single app configuration document.
	ConfigStore interface {
		GetConfig(ctx context.Context) (map[string]any, bool, error)
		PutConfig(ctx context.Context, doc map[string]any) error
	}

	BudgetStore = budget.Store

	Backend interface {
		TransactionStore
		GoalStore
		BudgetStore
		ConfigStore
		Close() error
	}
)
