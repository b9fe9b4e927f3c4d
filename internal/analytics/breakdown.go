package analytics

import (
	"sort"

	"fintrack/internal/core"
)

type CashflowPoint struct {
	Month    string  `json:"month"` // YYYY-MM
	Label    string  `json:"label"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// Slice is one entry of a top-N breakdown.
type Slice struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Leak is a top expense title with its change against the prior window.
type Leak struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Previous float64 `json:"previous"`
	Trend    float64 `json:"trend"`
}

// CashflowHistory returns six months of income and expenses, oldest first.
func (e *Engine) CashflowHistory(txs []core.Transaction) []CashflowPoint {
	cur := e.currentMonth()
	out := make([]CashflowPoint, historyMonths)
	for i := range out {
		m := cur.AddMonths(i - historyMonths + 1)
		out[i] = CashflowPoint{Month: m.String(), Label: m.Short()}
	}
	curIdx := cur.Index()
	for _, t := range txs {
		slot := e.monthIndex(t.Date) - (curIdx - historyMonths + 1)
		if slot < 0 || slot >= historyMonths {
			continue
		}
		switch {
		case isIncome(t):
			out[slot].Income += e.common(t)
		case isExpense(t):
			out[slot].Expenses += e.common(t)
		}
	}
	return out
}

// CategoryBreakdown groups the last three months of expenses by category.
func (e *Engine) CategoryBreakdown(txs []core.Transaction) []Slice {
	return e.breakdown(txs, func(t core.Transaction) string { return t.Category })
}

// AccountBreakdown groups the last three months of expenses by origin account.
func (e *Engine) AccountBreakdown(txs []core.Transaction) []Slice {
	return e.breakdown(txs, func(t core.Transaction) string {
		if t.Card != "" {
			return t.Card
		}
		return t.Account
	})
}

func (e *Engine) breakdown(txs []core.Transaction, key func(core.Transaction) string) []Slice {
	groups := map[string]float64{}
	for _, t := range txs {
		if !isExpense(t) || !e.inWindow(t.Date, -(windowMonths-1), 0) {
			continue
		}
		k := key(t)
		if k == "" {
			k = UncategorizedLabel
		}
		groups[k] += e.common(t)
	}
	return TopN(groups, breakdownTopN)
}

// TopN keeps the n largest groups and rolls the remainder into Others.
// Others is omitted when nothing remains.
func TopN(groups map[string]float64, n int) []Slice {
	sorted, total := rank(groups)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]Slice, 0, len(sorted)+1)
	var top float64
	for _, g := range sorted {
		top += g.amount
		out = append(out, Slice{Name: g.name, Amount: g.amount, Percentage: pctOf(g.amount, total)})
	}
	if rest := total - top; rest > 0 {
		out = append(out, Slice{Name: OthersLabel, Amount: rest, Percentage: pctOf(rest, total)})
	}
	return out
}

// TopLeaks ranks the four largest expense titles of the last three months
// against the three months before.
func (e *Engine) TopLeaks(txs []core.Transaction) []Leak {
	current := map[string]float64{}
	previous := map[string]float64{}
	for _, t := range txs {
		if !isExpense(t) {
			continue
		}
		title := t.Title
		if title == "" {
			title = UntitledLabel
		}
		switch {
		case e.inWindow(t.Date, -(windowMonths-1), 0):
			current[title] += e.common(t)
		case e.inWindow(t.Date, -(2*windowMonths-1), -windowMonths):
			previous[title] += e.common(t)
		}
	}
	sorted, _ := rank(current)
	if len(sorted) > leaksTopN {
		sorted = sorted[:leaksTopN]
	}
	out := make([]Leak, 0, len(sorted))
	for _, g := range sorted {
		prev := previous[g.name]
		var trend float64
		switch {
		case prev > 0:
			trend = (g.amount - prev) / prev * 100
		case g.amount > 0:
			trend = NewExpenseTrend
		}
		out = append(out, Leak{Name: g.name, Amount: g.amount, Previous: prev, Trend: trend})
	}
	return out
}

type group struct {
	name   string
	amount float64
}

// rank sorts groups by amount descending, then name.
func rank(groups map[string]float64) ([]group, float64) {
	out := make([]group, 0, len(groups))
	var total float64
	for k, v := range groups {
		out = append(out, group{k, v})
		total += v
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].amount != out[j].amount {
			return out[i].amount > out[j].amount
		}
		return out[i].name < out[j].name
	})
	return out, total
}

func pctOf(v, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return v / total * 100
}
