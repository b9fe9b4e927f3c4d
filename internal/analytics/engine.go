// Package analytics derives KPIs and breakdowns over rolling calendar windows.
// Cross-currency sums go through a Converter into the common unit; stored
// and displayed amounts are never touched.
package analytics

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/finance"
)

const (
	breakdownTopN = 3
	leaksTopN     = 4
	historyMonths = 6
	burnMonths    = 3
	windowMonths  = 3

	OthersLabel        = "Others"
	UncategorizedLabel = "uncategorized"
	UntitledLabel      = "untitled"

	// NewExpenseTrend marks a title with no spend in the prior window.
	NewExpenseTrend = 100.0
)

// Engine computes analytics relative to its clock's current month.
type Engine struct {
	conv  Converter
	clock core.Clock
}

func NewEngine(conv Converter, clock core.Clock) *Engine {
	if clock == nil {
		clock = core.SystemClock
	}
	if conv.rates == nil {
		conv = NewConverter(nil)
	}
	return &Engine{conv: conv, clock: clock}
}

func (e *Engine) Converter() Converter { return e.conv }

func (e *Engine) now() time.Time { return e.clock.Now() }

func (e *Engine) currentMonth() core.Month { return core.MonthOf(e.now()) }

// Month is the current month the report windows are anchored on.
func (e *Engine) Month() core.Month { return e.currentMonth() }

// monthIndex places t on the month ordinal in the clock's location.
func (e *Engine) monthIndex(t time.Time) int {
	return core.MonthOf(t.In(e.now().Location())).Index()
}

// inWindow reports whether t falls between offsets from..to (inclusive, 0 is the current month).
func (e *Engine) inWindow(t time.Time, from, to int) bool {
	cur := e.currentMonth().Index()
	idx := e.monthIndex(t)
	return idx >= cur+from && idx <= cur+to
}

func (e *Engine) common(t core.Transaction) float64 {
	return e.conv.ToCommon(t.Amount, t.Currency)
}

func isExpense(t core.Transaction) bool {
	return t.Type == core.Debit && !t.IsTransfer()
}

func isIncome(t core.Transaction) bool {
	return t.Type == core.Credit && !t.IsTransfer()
}

// Report bundles every KPI for one context view.
type Report struct {
	Context           core.Selector      `json:"context"`
	Month             string             `json:"month"`
	SavingsRate       SavingsRate        `json:"savingsRate"`
	BurnRate          float64            `json:"burnRate"`
	CurrencyExposure  map[string]float64 `json:"currencyExposure"`
	CashflowHistory   []CashflowPoint    `json:"cashflowHistory"`
	CategoryBreakdown []Slice            `json:"categoryBreakdown"`
	AccountBreakdown  []Slice            `json:"accountBreakdown"`
	TopLeaks          []Leak             `json:"topLeaks"`
	Balances          core.Balances      `json:"balances"`
	PrimaryCurrency   string             `json:"primaryCurrency"`
}

// Insights filters txs by context and computes the full report.
func (e *Engine) Insights(txs []core.Transaction, sel core.Selector) Report {
	view := finance.FilterByContext(txs, sel)
	balances := finance.Aggregate(view)
	return Report{
		Context:           sel,
		Month:             e.currentMonth().String(),
		SavingsRate:       e.SavingsRate(view),
		BurnRate:          e.BurnRate(view),
		CurrencyExposure:  e.CurrencyExposure(balances.NetWorth),
		CashflowHistory:   e.CashflowHistory(view),
		CategoryBreakdown: e.CategoryBreakdown(view),
		AccountBreakdown:  e.AccountBreakdown(view),
		TopLeaks:          e.TopLeaks(view),
		Balances:          balances,
		PrimaryCurrency:   finance.PrimaryCurrency(balances.NetWorth),
	}
}
