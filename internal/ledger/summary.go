package ledger

import (
	"sort"

	"fintrack/internal/core"
)

type Entry struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Summary describes a filtered set in a single currency.
type Summary struct {
	Currency      string  `json:"currency"`
	Count         int     `json:"count"`
	Income        float64 `json:"income"`
	Expenses      float64 `json:"expenses"`
	Transfers     float64 `json:"transfers"`
	Net           float64 `json:"net"`
	ByCategory    []Entry `json:"byCategory"`
	BySubcategory []Entry `json:"bySubcategory"`
	ByAccount     []Entry `json:"byAccount"`
}

// Summarize totals the transactions of one currency. Breakdowns cover expenses only.
func Summarize(txs []core.Transaction, currency string) Summary {
	s := Summary{Currency: currency}
	cats := map[string]float64{}
	subs := map[string]float64{}
	accts := map[string]float64{}
	for _, t := range txs {
		if t.Currency != currency {
			continue
		}
		s.Count++
		switch {
		case t.IsTransfer():
			s.Transfers += t.Amount
		case t.Type == core.Credit:
			s.Income += t.Amount
		default:
			s.Expenses += t.Amount
			cats[t.Category] += t.Amount
			if t.Subcategory != "" {
				subs[t.Subcategory] += t.Amount
			}
			accts[t.AccountLabel()] += t.Amount
		}
	}
	s.Net = s.Income - s.Expenses
	s.ByCategory = entries(cats, s.Expenses)
	s.BySubcategory = entries(subs, s.Expenses)
	s.ByAccount = entries(accts, s.Expenses)
	return s
}

func entries(m map[string]float64, total float64) []Entry {
	out := make([]Entry, 0, len(m))
	for k, v := range m {
		e := Entry{Name: k, Amount: v}
		if total > 0 {
			e.Percentage = v / total * 100
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Options lists distinct values for the filter pickers. Subcategories are
// limited to the given category when one is set.
type Options struct {
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
	Accounts      []string `json:"accounts"`
	Currencies    []string `json:"currencies"`
}

func ListOptions(txs []core.Transaction, category string) Options {
	cats, subs, accts, curs := set{}, set{}, set{}, set{}
	for _, t := range txs {
		cats.add(t.Category)
		accts.add(t.AccountLabel())
		if t.IsTransfer() {
			accts.add(t.DestinationCard)
		}
		curs.add(t.Currency)
		if category == "" || t.Category == category {
			subs.add(t.Subcategory)
		}
	}
	return Options{Categories: cats.sorted(), Subcategories: subs.sorted(), Accounts: accts.sorted(), Currencies: curs.sorted()}
}

type set map[string]struct{}

func (s set) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
