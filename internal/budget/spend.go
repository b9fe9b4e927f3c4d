package budget

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

// LineStatus is a budget line with its consumption.
type LineStatus struct {
	core.BudgetLine
	Key        string  `json:"key"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	Percentage float64 `json:"percentage"`
	OverBudget bool    `json:"overBudget"`
}

// Health summarizes all lines of a budget.
type Health struct {
	Limit      float64 `json:"limit"`
	Spent      float64 `json:"spent"`
	Percentage float64 `json:"percentage"`
	OverBudget bool    `json:"overBudget"`
}

// ComputeSpend fills each line's spend from the given transactions.
// A debit adds to its category-ALL bucket and, with a subcategory, also to
// its category-subcategory bucket. Lines read the bucket of their own key.
// Transfers never count as spend.
func ComputeSpend(lines []core.BudgetLine, txs []core.Transaction) []LineStatus {
	buckets := make(map[string]float64)
	for _, t := range txs {
		if t.Type != core.Debit || t.IsTransfer() || t.Category == "" {
			continue
		}
		buckets[core.LineKey(t.Category, "")] += t.Amount
		if t.Subcategory != "" {
			buckets[core.LineKey(t.Category, t.Subcategory)] += t.Amount
		}
	}
	out := make([]LineStatus, 0, len(lines))
	for _, l := range lines {
		spent := buckets[l.Key()]
		pct, over := core.Percentage(spent, l.Limit)
		out = append(out, LineStatus{
			BudgetLine: l,
			Key:        l.Key(),
			Spent:      spent,
			Remaining:  l.Limit - spent,
			Percentage: pct,
			OverBudget: over,
		})
	}
	return out
}

// TransactionsFor selects the transactions of one month as seen from a context.
func TransactionsFor(txs []core.Transaction, month core.Month, sel core.Selector, loc *time.Location) []core.Transaction {
	if loc == nil {
		loc = time.Local
	}
	visible := finance.FilterByContext(txs, sel)
	out := make([]core.Transaction, 0, len(visible))
	for _, t := range visible {
		if month.Contains(t.Date.In(loc)) {
			out = append(out, t)
		}
	}
	return out
}

// Summarize totals limits and spend across lines.
func Summarize(statuses []LineStatus) Health {
	var h Health
	for _, s := range statuses {
		h.Limit += s.Limit
		h.Spent += s.Spent
	}
	h.Percentage, h.OverBudget = core.Percentage(h.Spent, h.Limit)
	return h
}
