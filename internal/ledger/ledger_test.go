package ledger

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

func day(d int, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Title: "Salary", Type: core.Credit, Amount: 1000, Currency: "COP", Context: core.Personal, Category: "Income", Card: "Bank", Date: day(1, 9)},
		{ID: "2", Title: "Groceries", Type: core.Debit, Amount: 200, Currency: "COP", Context: core.Personal, Category: "Food", Subcategory: "Market", Card: "Visa", Date: day(3, 12)},
		{ID: "3", Title: "Dinner", Comments: "birthday PARTY", Type: core.Debit, Amount: 150, Currency: "COP", Context: core.Personal, Category: "Food", Date: day(5, 20)},
		{ID: "4", Title: "Savings move", Type: core.Transfer, Transfer: true, Amount: 300, Currency: "COP", Context: core.Personal, DestinationContext: core.Business, Card: "Bank", DestinationCard: "Vault", Date: day(6, 8)},
		{ID: "5", Title: "Old leg", Type: core.Debit, Transfer: true, Amount: 50, Currency: "COP", Context: core.Personal, Card: "Bank", Date: day(7, 8)},
		{ID: "6", Title: "Hosting", Type: core.Debit, Amount: 20, Currency: "USD", Context: core.Business, Category: "Services", Date: day(31, 23)},
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		out = append(out, t.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func f(v float64) *float64 { return &v }

func TestFilterPredicates(t *testing.T) {
	cases := []struct {
		name string
		c    Criteria
		want []string
	}{
		{"date range inclusive", Criteria{From: day(3, 23), To: day(5, 0)}, []string{"2", "3"}},
		{"end of month day", Criteria{From: day(31, 0), To: day(31, 0)}, []string{"6"}},
		{"category", Criteria{Category: "Food"}, []string{"2", "3"}},
		{"subcategory", Criteria{Subcategory: "Market"}, []string{"2"}},
		{"account matches destination", Criteria{Account: "Vault"}, []string{"4"}},
		{"account source", Criteria{Account: "Bank"}, []string{"1", "4", "5"}},
		{"default account", Criteria{Account: core.DefaultAccount}, []string{"6"}},
		{"amount bounds", Criteria{MinAmount: f(150), MaxAmount: f(300)}, []string{"2", "3", "4"}},
		{"type transfer both encodings", Criteria{Type: "transfer"}, []string{"4", "5"}},
		{"type debit excludes legs", Criteria{Type: "debit"}, []string{"2", "3", "6"}},
		{"search comments", Criteria{Search: "party"}, []string{"3"}},
		{"search title", Criteria{Search: "SAL"}, []string{"1"}},
		{"missing subcategory", Criteria{MissingSubcategory: true, Category: "Food"}, []string{"3"}},
	}
	for _, tc := range cases {
		tc.c.Location = time.UTC
		got := ids(Filter(sample(), tc.c))
		if !equal(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestQueryPaginationAndSort(t *testing.T) {
	r := Query(sample(), Criteria{PageSize: 4, Page: 2, Location: time.UTC})
	if r.Total != 6 || r.TotalPages != 2 || r.Page != 2 {
		t.Fatalf("paging: %+v", r)
	}
	if !equal(ids(r.Items), []string{"2", "1"}) {
		t.Fatalf("second page: %v", ids(r.Items))
	}

	r = Query(sample(), Criteria{Page: 99, Location: time.UTC})
	if r.Page != 1 || r.PageSize != DefaultPageSize || len(r.Items) != 6 || r.Items[0].ID != "6" {
		t.Fatalf("clamped page: %+v", r)
	}

	r = Query(nil, Criteria{})
	if r.TotalPages != 1 || len(r.Items) != 0 || len(r.Series) != 0 {
		t.Fatalf("empty: %+v", r)
	}
}

func TestQueryContextAndSeries(t *testing.T) {
	r := Query(sample(), Criteria{Context: core.BusinessContext, Location: time.UTC})
	if !equal(ids(r.Items), []string{"6", "4"}) {
		t.Fatalf("business view: %v", ids(r.Items))
	}
	if len(r.Series) != 2 || !equal(r.Currencies, []string{"COP", "USD"}) {
		t.Fatalf("series: %+v", r.Series)
	}
	first, last := r.Series[0].Balances, r.Series[1].Balances
	if first["COP"] != 300 || first["USD"] != 0 {
		t.Fatalf("transfer inflow should raise business COP: %v", first)
	}
	if last["COP"] != 300 || last["USD"] != -20 {
		t.Fatalf("last point: %v", last)
	}

	r = Query(sample(), Criteria{Context: core.PersonalContext, Location: time.UTC})
	end := r.Series[len(r.Series)-1].Balances
	if end["COP"] != 1000-200-150-300-50 {
		t.Fatalf("personal running balance: %v", end)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), "COP")
	if s.Count != 5 || s.Income != 1000 || s.Expenses != 350 || s.Transfers != 350 || s.Net != 650 {
		t.Fatalf("summary: %+v", s)
	}
	if len(s.ByCategory) != 1 || s.ByCategory[0].Name != "Food" || s.ByCategory[0].Percentage != 100 {
		t.Fatalf("categories: %+v", s.ByCategory)
	}
	if len(s.BySubcategory) != 1 || s.BySubcategory[0].Amount != 200 {
		t.Fatalf("subcategories: %+v", s.BySubcategory)
	}
	if len(s.ByAccount) != 2 || s.ByAccount[0].Name != "Visa" || s.ByAccount[1].Name != core.DefaultAccount {
		t.Fatalf("accounts: %+v", s.ByAccount)
	}
}

func TestListOptions(t *testing.T) {
	o := ListOptions(sample(), "Food")
	if !equal(o.Subcategories, []string{"Market"}) || !equal(o.Currencies, []string{"COP", "USD"}) {
		t.Fatalf("options: %+v", o)
	}
	if !equal(o.Accounts, []string{"Bank", core.DefaultAccount, "Vault", "Visa"}) {
		t.Fatalf("accounts: %v", o.Accounts)
	}
}

func TestListOptionsOffersTransferDestinations(t *testing.T) {
	txs := []core.Transaction{{
		ID: "t", Title: "Card payoff", Type: core.Transfer, Amount: 100, Currency: "COP",
		Context: core.Personal, Card: "Visa", DestinationCard: "Savings", Date: day(3, 12),
	}}
	o := ListOptions(txs, "")
	if !equal(o.Accounts, []string{"Savings", "Visa"}) {
		t.Fatalf("accounts: %v", o.Accounts)
	}
	for _, acct := range o.Accounts {
		if r := Query(txs, Criteria{Account: acct}); r.Total != 1 {
			t.Errorf("account %q offered but matches %d transactions", acct, r.Total)
		}
	}
}
