package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Title:    "Groceries",
		Amount:   120.5,
		Type:     Debit,
		Currency: "COP",
		Context:  Personal,
		Date:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	transfer := good
	transfer.Type = Transfer
	transfer.DestinationContext = Business
	transfer.DestinationCard = "Bank Account"
	if err := transfer.Validate(); err != nil {
		t.Fatalf("expected ok transfer, got %v", err)
	}

	cases := []struct {
		mutate func(*Transaction)
		want   error
	}{
		{func(tx *Transaction) { tx.Title = " " }, ErrEmptyTitle},
		{func(tx *Transaction) { tx.Amount = 0 }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Amount = math.NaN() }, ErrInvalidAmount},
		{func(tx *Transaction) { tx.Type = "refund" }, ErrInvalidType},
		{func(tx *Transaction) { tx.Context = "" }, ErrInvalidContext},
		{func(tx *Transaction) { tx.Type = Transfer }, ErrMissingDestination},
	}
	for i, tc := range cases {
		tx := good
		tc.mutate(&tx)
		if err := tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestIsTransferBothEncodings(t *testing.T) {
	if !(Transaction{Type: Transfer}).IsTransfer() {
		t.Fatalf("type transfer not detected")
	}
	if !(Transaction{Type: Debit, Transfer: true}).IsTransfer() {
		t.Fatalf("legacy flag not detected")
	}
	if (Transaction{Type: Credit}).IsTransfer() {
		t.Fatalf("credit reported as transfer")
	}
}

func TestAccountLabel(t *testing.T) {
	if got := (Transaction{Card: "Visa", Account: "Bank"}).AccountLabel(); got != "Visa" {
		t.Fatalf("card should win, got %q", got)
	}
	if got := (Transaction{Account: "Bank"}).AccountLabel(); got != "Bank" {
		t.Fatalf("account fallback, got %q", got)
	}
	if got := (Transaction{}).AccountLabel(); got != DefaultAccount {
		t.Fatalf("default fallback, got %q", got)
	}
}

func TestValidateLinesRejectsDuplicates(t *testing.T) {
	lines := []BudgetLine{
		{Name: "Food", Limit: 100},
		{Name: "Food", Subcategory: "Restaurants", Limit: 40},
	}
	if err := ValidateLines(lines); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	lines = append(lines, BudgetLine{Name: "Food", Limit: 10})
	if err := ValidateLines(lines); !errors.Is(err, ErrDuplicateBudgetLine) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLineKey(t *testing.T) {
	if got := LineKey("Food", ""); got != "Food-ALL" {
		t.Fatalf("got %q", got)
	}
	if got := (BudgetLine{Name: "Food", Subcategory: "Bakery"}).Key(); got != "Food-Bakery" {
		t.Fatalf("got %q", got)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		value, target float64
		pct           float64
		over          bool
	}{
		{50, 200, 25, false},
		{300, 200, 100, true},
		{200, 200, 100, false},
		{0, 0, 0, false},
		{10, 0, 100, true},
	}
	for _, tc := range cases {
		pct, over := Percentage(tc.value, tc.target)
		if pct != tc.pct || over != tc.over {
			t.Fatalf("Percentage(%v,%v) = %v,%v want %v,%v", tc.value, tc.target, pct, over, tc.pct, tc.over)
		}
	}
}

func TestParseSelector(t *testing.T) {
	for in, want := range map[string]Selector{"": Unified, "Personal": PersonalContext, "business": BusinessContext, "unified": Unified} {
		got, err := ParseSelector(in)
		if err != nil || got != want {
			t.Fatalf("ParseSelector(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSelector("family"); !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected invalid context, got %v", err)
	}
}
