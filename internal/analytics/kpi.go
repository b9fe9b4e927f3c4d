package analytics

import (
	"math"

	"fintrack/internal/core"
)

type SavingsRate struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Trend    float64 `json:"trend"`
}

// SavingsRate compares this month's rate with last month's.
func (e *Engine) SavingsRate(txs []core.Transaction) SavingsRate {
	cur := e.savingsRateAt(txs, 0)
	prev := e.savingsRateAt(txs, -1)
	return SavingsRate{Current: cur, Previous: prev, Trend: cur - prev}
}

func (e *Engine) savingsRateAt(txs []core.Transaction, offset int) float64 {
	var income, expenses float64
	for _, t := range txs {
		if !e.inWindow(t.Date, offset, offset) {
			continue
		}
		switch {
		case isIncome(t):
			income += e.common(t)
		case isExpense(t):
			expenses += e.common(t)
		}
	}
	if income == 0 {
		return 0
	}
	return (income - expenses) / income * 100
}

// BurnRate averages monthly expenses over the last three months, skipping
// months that recorded no expense at all.
func (e *Engine) BurnRate(txs []core.Transaction) float64 {
	var total float64
	counted := 0
	for offset := 0; offset > -burnMonths; offset-- {
		var sum float64
		seen := false
		for _, t := range txs {
			if isExpense(t) && e.inWindow(t.Date, offset, offset) {
				sum += e.common(t)
				seen = true
			}
		}
		if seen {
			total += sum
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// CurrencyExposure is each currency's share of the summed net worth magnitude.
// A non-finite balance counts as 0.
func (e *Engine) CurrencyExposure(netWorth map[string]float64) map[string]float64 {
	converted := make(map[string]float64, len(netWorth))
	var total float64
	for c, v := range netWorth {
		m := math.Abs(e.conv.ToCommon(v, c))
		if math.IsNaN(m) || math.IsInf(m, 0) {
			m = 0
		}
		converted[c] = m
		total += m
	}
	if total == 0 {
		return map[string]float64{"COP": 0, "USD": 0}
	}
	out := make(map[string]float64, len(converted))
	for c, m := range converted {
		out[c] = m / total * 100
	}
	return out
}
