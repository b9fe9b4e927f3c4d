package finance

import "fintrack/internal/core"

// FilterByContext returns the transactions visible from a context.
// Transfers are visible from both the side they leave and the side they reach.
func FilterByContext(txs []core.Transaction, sel core.Selector) []core.Transaction {
	if sel == core.Unified || sel == "" {
		return txs
	}
	c := core.Context(sel)
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if Visible(t, c) {
			out = append(out, t)
		}
	}
	return out
}

// Visible reports whether t shows up in the activity of context c.
func Visible(t core.Transaction, c core.Context) bool {
	if t.Context == c {
		return true
	}
	return t.IsTransfer() && t.DestinationContext == c
}

// FilterGoals keeps goals owned by the selected context.
func FilterGoals(goals []core.Goal, sel core.Selector) []core.Goal {
	if sel == core.Unified || sel == "" {
		return goals
	}
	out := make([]core.Goal, 0, len(goals))
	for _, g := range goals {
		if g.Context == core.Context(sel) {
			out = append(out, g)
		}
	}
	return out
}
