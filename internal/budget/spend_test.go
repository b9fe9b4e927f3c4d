package budget

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestComputeSpendBuckets(t *testing.T) {
	lines := []core.BudgetLine{
		{Name: "Food", Limit: 200},
		{Name: "Food", Subcategory: "Restaurants", Limit: 50},
		{Name: "Travel", Limit: 0},
		{Name: "Gifts", Limit: 0},
	}
	txs := []core.Transaction{
		{Type: core.Debit, Amount: 80, Category: "Food"},
		{Type: core.Debit, Amount: 70, Category: "Food", Subcategory: "Restaurants"},
		{Type: core.Credit, Amount: 999, Category: "Food"},
		{Type: core.Debit, Transfer: true, Amount: 500, Category: "Food"},
		{Type: core.Debit, Amount: 10, Category: "Travel"},
	}
	got := ComputeSpend(lines, txs)

	if got[0].Spent != 150 || got[0].Percentage != 75 || got[0].OverBudget {
		t.Fatalf("category-wide line: %+v", got[0])
	}
	if got[1].Spent != 70 || got[1].Percentage != 100 || !got[1].OverBudget || got[1].Remaining != -20 {
		t.Fatalf("subcategory line: %+v", got[1])
	}
	if got[2].Percentage != 100 || !got[2].OverBudget {
		t.Fatalf("zero limit with spend: %+v", got[2])
	}
	if got[3].Percentage != 0 || got[3].OverBudget {
		t.Fatalf("zero limit without spend: %+v", got[3])
	}
}

func TestSummarizeHealth(t *testing.T) {
	h := Summarize([]LineStatus{
		{BudgetLine: core.BudgetLine{Limit: 100}, Spent: 30},
		{BudgetLine: core.BudgetLine{Limit: 300}, Spent: 70},
	})
	if h.Limit != 400 || h.Spent != 100 || h.Percentage != 25 || h.OverBudget {
		t.Fatalf("health: %+v", h)
	}
}

func TestTransactionsFor(t *testing.T) {
	march := core.Month{Year: 2025, Month: time.March}
	txs := []core.Transaction{
		{ID: "in", Context: core.Personal, Date: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)},
		{ID: "feb", Context: core.Personal, Date: time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)},
		{ID: "biz", Context: core.Business, Date: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)},
	}
	got := TransactionsFor(txs, march, core.PersonalContext, time.UTC)
	if len(got) != 1 || got[0].ID != "in" {
		t.Fatalf("got %+v", got)
	}
}
