package finance

import (
	"math"

	"fintrack/internal/core"
)

// ComputeProgress fills Saved from all-time inflows into each goal's account.
// Context does not gate the sum.
func ComputeProgress(goals []core.Goal, txs []core.Transaction) []core.GoalProgress {
	inflow := make(map[string]float64)
	for _, t := range txs {
		for _, l := range Legs(t) {
			if l.Amount > 0 && l.Account != "" {
				inflow[l.Account] += l.Amount
			}
		}
	}
	out := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		saved := inflow[g.LinkedAccount]
		pct, _ := core.Percentage(saved, g.TargetAmount)
		if math.IsNaN(pct) {
			pct = 0
		}
		out = append(out, core.GoalProgress{Goal: g, Saved: saved, Percentage: pct})
	}
	return out
}

// DecodeGoal reads a stored goal document. Unknown fields are ignored.
func DecodeGoal(raw core.RawRecord) core.Goal {
	target, ok := toFloat(raw["targetAmount"])
	if !ok {
		target = toAmount(raw["targetAmount"])
		if math.IsNaN(target) {
			target = 0
		}
	}
	return core.Goal{
		ID:            toString(raw["id"]),
		Name:          toString(raw["name"]),
		TargetAmount:  target,
		LinkedAccount: toString(raw["linkedAccount"]),
		Context:       core.Context(toString(raw["context"])),
	}
}

// GoalRecord is the stored form of a goal.
func GoalRecord(g core.Goal) core.RawRecord {
	r := core.RawRecord{
		"name":          g.Name,
		"targetAmount":  g.TargetAmount,
		"linkedAccount": g.LinkedAccount,
		"context":       string(g.Context),
	}
	if g.ID != "" {
		r["id"] = g.ID
	}
	return r
}
