// Package ledger filters, sorts and pages the transaction list and derives
// the running balance series and per-currency summaries shown beside it.
package ledger

import (
	"sort"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

const DefaultPageSize = 10

// Criteria holds every optional predicate. Zero values disable a predicate.
type Criteria struct {
	Context            core.Selector
	From, To           time.Time // inclusive, compared at day boundaries
	Category           string
	Subcategory        string
	Account            string
	MinAmount          *float64
	MaxAmount          *float64
	Type               string // credit, debit or transfer
	Search             string
	MissingSubcategory bool
	Page               int // 1-based
	PageSize           int
	Location           *time.Location
}

type SeriesPoint struct {
	Date     time.Time          `json:"date"`
	Balances map[string]float64 `json:"balances"`
}

type Result struct {
	Items      []core.Transaction `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	Currencies []string           `json:"currencies"`
	Series     []SeriesPoint      `json:"series"`
}

// Query runs the filter chain over the context view, sorts newest first,
// builds the series from the whole filtered set and returns one page.
func Query(txs []core.Transaction, c Criteria) Result {
	filtered := Filter(finance.FilterByContext(txs, c.Context), c)
	SortByDateDesc(filtered)

	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := (len(filtered) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page := c.Page
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(filtered) {
		end = len(filtered)
	}

	series, currencies := Series(filtered, c.Context)
	return Result{
		Items:      filtered[start:end],
		Total:      len(filtered),
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Currencies: currencies,
		Series:     series,
	}
}

// Filter applies the predicates in order and returns a new slice.
func Filter(txs []core.Transaction, c Criteria) []core.Transaction {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	var from, to time.Time
	if !c.From.IsZero() {
		y, m, d := c.From.In(loc).Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	if !c.To.IsZero() {
		y, m, d := c.To.In(loc).Date()
		to = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	}
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if !from.IsZero() && t.Date.Before(from) {
			continue
		}
		if !to.IsZero() && !t.Date.Before(to) {
			continue
		}
		if c.Category != "" && t.Category != c.Category {
			continue
		}
		if c.Subcategory != "" && t.Subcategory != c.Subcategory {
			continue
		}
		if c.Account != "" && !matchAccount(t, c.Account) {
			continue
		}
		if c.MinAmount != nil && !(t.Amount >= *c.MinAmount) {
			continue
		}
		if c.MaxAmount != nil && !(t.Amount <= *c.MaxAmount) {
			continue
		}
		if c.Type != "" && !matchType(t, c.Type) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Comments), search) {
			continue
		}
		if c.MissingSubcategory && t.Subcategory != "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchAccount(t core.Transaction, account string) bool {
	if t.AccountLabel() == account {
		return true
	}
	return t.IsTransfer() && t.DestinationCard == account
}

func matchType(t core.Transaction, typ string) bool {
	switch core.TxType(strings.ToLower(typ)) {
	case core.Transfer:
		return t.IsTransfer()
	case core.Credit:
		return t.Type == core.Credit && !t.IsTransfer()
	case core.Debit:
		return t.Type == core.Debit && !t.IsTransfer()
	}
	return false
}

// SortByDateDesc orders newest first, keeping input order for equal dates.
func SortByDateDesc(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
}

// Series builds ascending running balances per currency. In a context view
// only the legs touching that context move the balance. Every point carries
// all currencies active in the set.
func Series(txs []core.Transaction, sel core.Selector) ([]SeriesPoint, []string) {
	asc := make([]core.Transaction, len(txs))
	copy(asc, txs)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i].Date.Before(asc[j].Date) })

	running := map[string]float64{}
	var currencies []string
	for _, t := range asc {
		if _, ok := running[t.Currency]; !ok {
			running[t.Currency] = 0
			currencies = append(currencies, t.Currency)
		}
	}
	sort.Strings(currencies)

	points := make([]SeriesPoint, 0, len(asc))
	for _, t := range asc {
		for _, l := range finance.Legs(t) {
			if sel == core.Unified || sel == "" || l.Context == core.Context(sel) {
				running[l.Currency] += l.Amount
			}
		}
		snap := make(map[string]float64, len(running))
		for k, v := range running {
			snap[k] = v
		}
		points = append(points, SeriesPoint{Date: t.Date, Balances: snap})
	}
	return points, currencies
}
