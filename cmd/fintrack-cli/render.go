package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/format"
	"fintrack/internal/ledger"
)

type addFlags struct {
	title, amount, typ, currency string
	context, account             string
	category, subcategory        string
	date                         string
	destAccount, destContext     string
	comments                     string
}

// parseAdd turns command flags into a transaction ready for validation.
func parseAdd(f addFlags, loc *time.Location) (core.Transaction, error) {
	amount, err := core.ParseAmount(f.amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", f.amount, core.ErrInvalidAmount)
	}
	typ, err := core.ParseTxType(f.typ)
	if err != nil {
		return core.Transaction{}, err
	}
	c, err := core.ParseContext(f.context)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		Title:           strings.TrimSpace(f.title),
		Amount:          amount,
		Type:            typ,
		Currency:        f.currency,
		Context:         c,
		Account:         f.account,
		Category:        f.category,
		Subcategory:     f.subcategory,
		DestinationCard: f.destAccount,
		Comments:        f.comments,
	}
	if f.destContext != "" {
		if t.DestinationContext, err = core.ParseContext(f.destContext); err != nil {
			return core.Transaction{}, err
		}
	}
	if f.date != "" {
		d, err := time.ParseInLocation(time.DateOnly, f.date, loc)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("date %q: want YYYY-MM-DD", f.date)
		}
		t.Date = d.Add(12 * time.Hour)
	}
	return t, nil
}

func printOptions(w io.Writer, o ledger.Options) {
	section := func(name string, vals []string) {
		fmt.Fprintf(w, "%s:\n", name)
		if len(vals) == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		for _, v := range vals {
			fmt.Fprintf(w, "  %s\n", v)
		}
	}
	section("Categories", o.Categories)
	section("Subcategories", o.Subcategories)
	section("Accounts", o.Accounts)
	section("Currencies", o.Currencies)
}

func printBalances(w io.Writer, f format.Formatter, b core.Balances) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CURRENCY\tNET WORTH\tPERSONAL\tBUSINESS")
	currencies := b.Currencies()
	sort.Strings(currencies)
	for _, c := range currencies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c,
			f.Currency(b.NetWorth[c], c),
			f.Currency(b.Personal[c], c),
			f.Currency(b.Business[c], c))
	}
	tw.Flush()
}

func printReport(w io.Writer, f format.Formatter, r analytics.Report) {
	fmt.Fprintf(w, "Report %s (%s)\n\n", r.Month, r.Context)
	fmt.Fprintf(w, "Savings rate  %.1f%% (previous %.1f%%, trend %+.1f)\n", r.SavingsRate.Current, r.SavingsRate.Previous, r.SavingsRate.Trend)
	fmt.Fprintf(w, "Burn rate     %s / month\n\n", f.Currency(r.BurnRate, "COP"))

	fmt.Fprintln(w, "Balances")
	printBalances(w, f, r.Balances)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nMONTH\tINCOME\tEXPENSES")
	for _, p := range r.CashflowHistory {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Label, f.Compact(p.Income), f.Compact(p.Expenses))
	}
	fmt.Fprintln(tw, "\nCATEGORY\tAMOUNT\tSHARE")
	for _, s := range r.CategoryBreakdown {
		fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", s.Name, f.Compact(s.Amount), s.Percentage)
	}
	fmt.Fprintln(tw, "\nTOP LEAK\tAMOUNT\tTREND")
	for _, l := range r.TopLeaks {
		fmt.Fprintf(tw, "%s\t%s\t%+.1f%%\n", l.Name, f.Compact(l.Amount), l.Trend)
	}
	tw.Flush()
}
