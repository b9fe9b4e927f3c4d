package http

import (
	"fmt"
	"math"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// transactionJSON is the wire form of a transaction. Amount is null when the
// stored amount could not be read.
type transactionJSON struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Amount             *float64 `json:"amount"`
	Type               string   `json:"type"`
	IsTransfer         bool     `json:"isTransfer,omitempty"`
	Currency           string   `json:"currency"`
	Context            string   `json:"context"`
	DestinationContext string   `json:"destinationContext,omitempty"`
	Card               string   `json:"card,omitempty"`
	Account            string   `json:"account,omitempty"`
	DestinationCard    string   `json:"destinationCard,omitempty"`
	Category           string   `json:"category"`
	Subcategory        string   `json:"subcategory,omitempty"`
	Date               string   `json:"date"`
	Comments           string   `json:"comments,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:                 t.ID,
		Title:              t.Title,
		Type:               string(t.Type),
		IsTransfer:         t.Transfer,
		Currency:           t.Currency,
		Context:            string(t.Context),
		DestinationContext: string(t.DestinationContext),
		Card:               t.Card,
		Account:            t.Account,
		DestinationCard:    t.DestinationCard,
		Category:           t.Category,
		Subcategory:        t.Subcategory,
		Date:               t.Date.Format(time.RFC3339),
		Comments:           t.Comments,
	}
	if !math.IsNaN(t.Amount) && !math.IsInf(t.Amount, 0) {
		a := t.Amount
		out.Amount = &a
	}
	return out
}

func toTransactionsJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = toTransactionJSON(t)
	}
	return out
}

// transactionInput is a create or update body. Amount may be a number or a
// string in either decimal style.
type transactionInput struct {
	Title              string `json:"title"`
	Amount             any    `json:"amount"`
	Type               string `json:"type"`
	IsTransfer         bool   `json:"isTransfer"`
	Currency           string `json:"currency"`
	Context            string `json:"context"`
	DestinationContext string `json:"destinationContext"`
	Card               string `json:"card"`
	Account            string `json:"account"`
	DestinationCard    string `json:"destinationCard"`
	Category           string `json:"category"`
	Subcategory        string `json:"subcategory"`
	Date               string `json:"date"`
	Comments           string `json:"comments"`
}

func (in transactionInput) toTransaction(loc *time.Location) (core.Transaction, error) {
	amount, err := inputAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	typ, err := core.ParseTxType(in.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	c, err := core.ParseContext(in.Context)
	if err != nil {
		return core.Transaction{}, err
	}
	var dest core.Context
	if strings.TrimSpace(in.DestinationContext) != "" {
		if dest, err = core.ParseContext(in.DestinationContext); err != nil {
			return core.Transaction{}, err
		}
	}
	var date time.Time
	if strings.TrimSpace(in.Date) != "" {
		if date, err = parseDay(in.Date, loc); err != nil {
			return core.Transaction{}, err
		}
	}
	return core.Transaction{
		Title:              strings.TrimSpace(in.Title),
		Amount:             amount,
		Type:               typ,
		Transfer:           in.IsTransfer,
		Currency:           in.Currency,
		Context:            c,
		DestinationContext: dest,
		Card:               strings.TrimSpace(in.Card),
		Account:            strings.TrimSpace(in.Account),
		DestinationCard:    strings.TrimSpace(in.DestinationCard),
		Category:           strings.TrimSpace(in.Category),
		Subcategory:        strings.TrimSpace(in.Subcategory),
		Date:               date,
		Comments:           strings.TrimSpace(in.Comments),
	}, nil
}

func inputAmount(v any) (float64, error) {
	switch a := v.(type) {
	case float64:
		if a <= 0 {
			return 0, core.ErrInvalidAmount
		}
		return a, nil
	case string:
		return core.ParseAmount(a)
	}
	return 0, core.ErrInvalidAmount
}

// parseDay accepts YYYY-MM-DD, placed at noon like stored dates, or RFC 3339.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return d.Add(12 * time.Hour), nil
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", errBadRequest, s)
}

// ledgerPage is ledger.Result with transactions in wire form.
type ledgerPage struct {
	Items      []transactionJSON    `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
	Currencies []string             `json:"currencies"`
	Series     []ledger.SeriesPoint `json:"series"`
}

func toLedgerPage(r ledger.Result) ledgerPage {
	return ledgerPage{
		Items:      toTransactionsJSON(r.Items),
		Total:      r.Total,
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages,
		Currencies: r.Currencies,
		Series:     r.Series,
	}
}
