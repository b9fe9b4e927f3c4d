// Command fintrack-cli reads and writes the ledger from a terminal.
//
//	fintrack-cli options  [-context personal] [-category Food]
//	fintrack-cli balances [-locale es-CO]
//	fintrack-cli report   [-context unified] [-locale es-CO]
//	fintrack-cli add      -title Lunch -amount 25000 [-type debit] ...
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"fintrack/internal/analytics"
	"fintrack/internal/budget"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/finance"
	"fintrack/internal/format"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/snapshot"
)

var errUsage = errors.New("usage: fintrack-cli <options|balances|report|add> [flags]")

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("cli")
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, errUsage)
		os.Exit(2)
	}
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := run(ctx, logger, cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logger.Error("Command failed", "command", os.Args[1], log.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, cmd string, args []string, out io.Writer) error {
	clock := cli.Clock(cfg)
	backend := cli.OpenBackend(ctx, logger, cfg)
	loader := snapshot.NewLoader(backend, snapshot.NewHub(), clock)
	svc := services.NewFinanceService(backend, loader, budget.NewEngine(backend, clock), nil, clock)
	defer svc.Close()

	if _, err := loader.Refresh(ctx); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	switch cmd {
	case "options":
		return runOptions(svc, args, out)
	case "balances":
		return runBalances(svc, args, out)
	case "report":
		return runReport(svc, cli.AnalyticsEngine(cfg, clock), args, out)
	case "add":
		return runAdd(ctx, svc, args, out)
	}
	return errUsage
}

func runOptions(svc *services.FinanceService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("options", flag.ContinueOnError)
	ctxFlag := fs.String("context", "", "personal, business or unified")
	category := fs.String("category", "", "limit subcategories to one category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sel, err := core.ParseSelector(*ctxFlag)
	if err != nil {
		return err
	}
	txs := finance.FilterByContext(svc.Snapshot().Transactions, sel)
	printOptions(out, ledger.ListOptions(txs, *category))
	return nil
}

func runBalances(svc *services.FinanceService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("balances", flag.ContinueOnError)
	locale := fs.String("locale", "es-CO", "BCP 47 locale for amounts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	printBalances(out, format.Parse(*locale), finance.Aggregate(svc.Snapshot().Transactions))
	return nil
}

func runReport(svc *services.FinanceService, engine *analytics.Engine, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	ctxFlag := fs.String("context", "", "personal, business or unified")
	locale := fs.String("locale", "es-CO", "BCP 47 locale for amounts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sel, err := core.ParseSelector(*ctxFlag)
	if err != nil {
		return err
	}
	printReport(out, format.Parse(*locale), engine.Insights(svc.Snapshot().Transactions, sel))
	return nil
}

func runAdd(ctx context.Context, svc *services.FinanceService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	title := fs.String("title", "", "description")
	amount := fs.String("amount", "", "positive amount, e.g. 25000 or 12,50")
	typ := fs.String("type", "debit", "credit, debit or transfer")
	currency := fs.String("currency", core.DefaultCurrency, "ISO 4217 code")
	ctxFlag := fs.String("context", "personal", "personal or business")
	account := fs.String("account", "", "origin account")
	category := fs.String("category", "", "category")
	subcategory := fs.String("subcategory", "", "subcategory")
	date := fs.String("date", "", "YYYY-MM-DD, defaults to today")
	destAccount := fs.String("to", "", "destination account for transfers")
	destContext := fs.String("to-context", "", "destination context for transfers")
	comments := fs.String("comments", "", "free text")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := parseAdd(addFlags{
		title: *title, amount: *amount, typ: *typ, currency: *currency,
		context: *ctxFlag, account: *account, category: *category, subcategory: *subcategory,
		date: *date, destAccount: *destAccount, destContext: *destContext, comments: *comments,
	}, svc.Location())
	if err != nil {
		return err
	}
	created, err := svc.CreateTransaction(ctx, t)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %s %s %s\n", created.ID, created.Title, format.Currency(created.Amount, created.Currency))
	return nil
}
