package analytics

import (
	"math"
	"testing"
	"time"

	"fintrack/internal/core"
)

var now = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func engine() *Engine {
	return NewEngine(NewConverter(nil), core.FixedClock{T: now})
}

// monthsAgo returns a mid-month date n months before now.
func monthsAgo(n int) time.Time {
	return time.Date(2025, time.March-time.Month(n), 10, 12, 0, 0, 0, time.UTC)
}

func debit(title, cat string, amount float64, currency string, when time.Time) core.Transaction {
	return core.Transaction{Title: title, Category: cat, Type: core.Debit, Amount: amount, Currency: currency, Context: core.Personal, Date: when}
}

func credit(amount float64, currency string, when time.Time) core.Transaction {
	return core.Transaction{Title: "Salary", Category: "Income", Type: core.Credit, Amount: amount, Currency: currency, Context: core.Personal, Date: when}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSavingsRate(t *testing.T) {
	txs := []core.Transaction{
		credit(1000, "COP", monthsAgo(0)),
		debit("Rent", "Home", 400, "COP", monthsAgo(0)),
		credit(1000, "COP", monthsAgo(1)),
		debit("Rent", "Home", 800, "COP", monthsAgo(1)),
		{Type: core.Debit, Transfer: true, Amount: 999, Currency: "COP", Date: monthsAgo(0)},
	}
	got := engine().SavingsRate(txs)
	if !near(got.Current, 60) || !near(got.Previous, 20) || !near(got.Trend, 40) {
		t.Fatalf("savings rate: %+v", got)
	}
	if r := engine().SavingsRate([]core.Transaction{debit("x", "y", 5, "COP", monthsAgo(0))}); r.Current != 0 {
		t.Fatalf("no income should be 0, got %v", r.Current)
	}
}

func TestSavingsRateConvertsUSD(t *testing.T) {
	txs := []core.Transaction{
		credit(1, "USD", monthsAgo(0)),
		debit("Lunch", "Food", 2050, "COP", monthsAgo(0)),
	}
	if got := engine().SavingsRate(txs).Current; !near(got, 50) {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestBurnRateSkipsEmptyMonths(t *testing.T) {
	txs := []core.Transaction{
		debit("a", "x", 300, "COP", monthsAgo(0)),
		debit("b", "x", 100, "COP", monthsAgo(2)),
		debit("c", "x", 5000, "COP", monthsAgo(3)),
		credit(9000, "COP", monthsAgo(1)),
	}
	if got := engine().BurnRate(txs); !near(got, 200) {
		t.Fatalf("expected 200, got %v", got)
	}
	if got := engine().BurnRate(nil); got != 0 {
		t.Fatalf("empty burn rate: %v", got)
	}
}

func TestCurrencyExposure(t *testing.T) {
	e := engine()
	got := e.CurrencyExposure(map[string]float64{"COP": 4100, "USD": -1})
	if !near(got["COP"], 50) || !near(got["USD"], 50) {
		t.Fatalf("exposure: %v", got)
	}
	withNaN := e.CurrencyExposure(map[string]float64{"COP": 4100, "USD": 1, "EUR": math.NaN()})
	if !near(withNaN["COP"], 50) || !near(withNaN["USD"], 50) || withNaN["EUR"] != 0 {
		t.Fatalf("exposure with unreadable balance: %v", withNaN)
	}
	onlyNaN := e.CurrencyExposure(map[string]float64{"EUR": math.NaN()})
	if onlyNaN["COP"] != 0 || onlyNaN["USD"] != 0 {
		t.Fatalf("all-NaN exposure: %v", onlyNaN)
	}
	zero := e.CurrencyExposure(map[string]float64{})
	if len(zero) != 2 || zero["COP"] != 0 || zero["USD"] != 0 {
		t.Fatalf("zero exposure: %v", zero)
	}
}

func TestCashflowHistory(t *testing.T) {
	txs := []core.Transaction{
		credit(100, "COP", monthsAgo(0)),
		debit("a", "x", 40, "COP", monthsAgo(5)),
		debit("old", "x", 1, "COP", monthsAgo(6)),
		credit(1, "USD", monthsAgo(2)),
	}
	got := engine().CashflowHistory(txs)
	if len(got) != 6 || got[0].Month != "2024-10" || got[5].Month != "2025-03" {
		t.Fatalf("window: %+v", got)
	}
	if got[5].Income != 100 || got[0].Expenses != 40 || got[3].Income != 4100 {
		t.Fatalf("values: %+v", got)
	}
	if got[0].Label != "Oct" {
		t.Fatalf("label: %q", got[0].Label)
	}
}

func TestCategoryBreakdownTopThreeWithOthers(t *testing.T) {
	var txs []core.Transaction
	for i, amount := range []float64{100, 80, 60, 40, 20} {
		cat := string(rune('A' + i))
		txs = append(txs, debit("t", cat, amount, "COP", monthsAgo(i%3)))
	}
	txs = append(txs, debit("old", "Z", 1000, "COP", monthsAgo(3)))

	got := engine().CategoryBreakdown(txs)
	if len(got) != 4 {
		t.Fatalf("expected 4 slices, got %+v", got)
	}
	want := []Slice{{"A", 100, 100.0 / 3}, {"B", 80, 80.0 / 3}, {"C", 60, 20}, {OthersLabel, 60, 20}}
	for i, w := range want {
		if got[i].Name != w.Name || got[i].Amount != w.Amount || !near(got[i].Percentage, w.Percentage) {
			t.Fatalf("slice %d: got %+v want %+v", i, got[i], w)
		}
	}
}

func TestBreakdownFallbackAndNoOthers(t *testing.T) {
	txs := []core.Transaction{
		debit("a", "", 10, "COP", monthsAgo(0)),
		debit("b", "Food", 30, "COP", monthsAgo(1)),
	}
	got := engine().CategoryBreakdown(txs)
	if len(got) != 2 || got[0].Name != "Food" || got[1].Name != UncategorizedLabel {
		t.Fatalf("got %+v", got)
	}
	acct := engine().AccountBreakdown([]core.Transaction{{Type: core.Debit, Amount: 5, Card: "Visa", Date: monthsAgo(0)}})
	if len(acct) != 1 || acct[0].Name != "Visa" || acct[0].Percentage != 100 {
		t.Fatalf("accounts: %+v", acct)
	}
}

func TestTopLeaksTrend(t *testing.T) {
	txs := []core.Transaction{
		debit("Coffee", "Food", 300, "COP", monthsAgo(0)),
		debit("Coffee", "Food", 200, "COP", monthsAgo(4)),
		debit("Gym", "Health", 150, "COP", monthsAgo(1)),
		debit("Taxi", "Transport", 100, "COP", monthsAgo(2)),
		debit("Books", "Fun", 50, "COP", monthsAgo(2)),
		debit("Snacks", "Food", 10, "COP", monthsAgo(0)),
	}
	got := engine().TopLeaks(txs)
	if len(got) != 4 {
		t.Fatalf("expected 4 leaks, got %+v", got)
	}
	if got[0].Name != "Coffee" || !near(got[0].Trend, 50) || got[0].Previous != 200 {
		t.Fatalf("coffee: %+v", got[0])
	}
	if got[1].Name != "Gym" || got[1].Trend != NewExpenseTrend {
		t.Fatalf("gym: %+v", got[1])
	}
	for _, l := range got {
		if l.Name == "Snacks" {
			t.Fatalf("fifth title should be dropped")
		}
	}
}

func TestInsightsUsesContextView(t *testing.T) {
	txs := []core.Transaction{
		credit(1000, "COP", monthsAgo(0)),
		{Type: core.Credit, Amount: 5000, Currency: "COP", Context: core.Business, Date: monthsAgo(0)},
	}
	r := engine().Insights(txs, core.PersonalContext)
	if r.Balances.NetWorth["COP"] != 1000 || r.Month != "2025-03" || r.PrimaryCurrency != "COP" {
		t.Fatalf("report: %+v", r)
	}
	if len(r.CashflowHistory) != 6 {
		t.Fatalf("history missing")
	}
}

func TestParseRatesAndOverride(t *testing.T) {
	rates, err := ParseRates("usd=4000, EUR=4400")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := NewConverter(rates)
	if c.Rate("USD") != 4000 || c.Rate("eur") != 4400 || c.Rate("COP") != 1 || c.Rate("GBP") != 1 {
		t.Fatalf("rates: %v", c.Rates())
	}
	if FormatRates(rates) != "EUR=4400,USD=4000" {
		t.Fatalf("format: %s", FormatRates(rates))
	}
	for _, bad := range []string{"USD", "USD=abc", "USD=-1"} {
		if _, err := ParseRates(bad); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
}
