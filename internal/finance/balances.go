package finance

import "fintrack/internal/core"

// Leg is one signed flow of money on one account.
type Leg struct {
	Account  string
	Context  core.Context
	Currency string
	Amount   float64 // positive inflow, negative outflow
	Transfer bool
}

// Legs expands a transaction into its flows. A single-record transfer yields
// an outflow on the origin and an inflow on the destination; every other
// record, including each half of a two-record transfer, yields one leg signed
// by its type.
func Legs(t core.Transaction) []Leg {
	if t.Type == core.Transfer {
		dest := t.DestinationContext
		if dest == "" {
			dest = t.Context
		}
		return []Leg{
			{Account: t.AccountLabel(), Context: t.Context, Currency: t.Currency, Amount: -t.Amount, Transfer: true},
			{Account: t.DestinationCard, Context: dest, Currency: t.Currency, Amount: t.Amount, Transfer: true},
		}
	}
	return []Leg{{
		Account:  t.AccountLabel(),
		Context:  t.Context,
		Currency: t.Currency,
		Amount:   Signed(t),
		Transfer: t.IsTransfer(),
	}}
}

// Signed applies the sign rule: credits add, everything else subtracts.
func Signed(t core.Transaction) float64 {
	if t.Type == core.Credit {
		return t.Amount
	}
	return -t.Amount
}

// Net is the sum of all legs. Zero for a single-record transfer.
func Net(t core.Transaction) float64 {
	var n float64
	for _, l := range Legs(t) {
		n += l.Amount
	}
	return n
}

// Aggregate folds transactions into per-currency balances in a single pass.
// A single-record transfer debits its context and credits its destination
// context, so both transfer encodings give the same totals.
// Legs without a personal or business context only reach NetWorth.
func Aggregate(txs []core.Transaction) core.Balances {
	b := core.NewBalances()
	for _, t := range txs {
		for _, l := range Legs(t) {
			if _, ok := b.NetWorth[l.Currency]; !ok {
				b.NetWorth[l.Currency] = 0
				b.Personal[l.Currency] = 0
				b.Business[l.Currency] = 0
			}
			b.NetWorth[l.Currency] += l.Amount
			switch l.Context {
			case core.Personal:
				b.Personal[l.Currency] += l.Amount
			case core.Business:
				b.Business[l.Currency] += l.Amount
			}
		}
	}
	return b
}

// PrimaryCurrency picks the headline currency for a balance map:
// COP when present, then USD, then the largest magnitude.
func PrimaryCurrency(balances map[string]float64) string {
	if _, ok := balances["COP"]; ok {
		return "COP"
	}
	if _, ok := balances["USD"]; ok {
		return "USD"
	}
	best, bestAbs := core.DefaultCurrency, -1.0
	for c, v := range balances {
		a := v
		if a < 0 {
			a = -a
		}
		if a > bestAbs || (a == bestAbs && c < best) {
			best, bestAbs = c, a
		}
	}
	return best
}
