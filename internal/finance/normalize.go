// Package finance turns stored transaction documents into canonical
// transactions and folds them into balances, context views and goal progress.
// Every function here is pure over its inputs.
package finance

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// dater is implemented by database timestamp values.
type dater interface {
	ToDate() time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Normalize converts a stored record of any known shape into a Transaction.
// It never fails: unusable fields degrade to defaults. A missing amount
// becomes NaN so that bad rows stay visible in totals.
func Normalize(raw core.RawRecord, clock core.Clock) core.Transaction {
	if clock == nil {
		clock = core.SystemClock
	}
	t := core.Transaction{
		ID:                 toString(raw["id"]),
		Title:              toString(raw["title"]),
		Currency:           strings.ToUpper(strings.TrimSpace(toString(raw["currency"]))),
		Context:            core.Context(strings.ToLower(strings.TrimSpace(toString(raw["context"])))),
		DestinationContext: core.Context(strings.ToLower(strings.TrimSpace(toString(raw["destinationContext"])))),
		Card:               toString(raw["card"]),
		Account:            toString(raw["account"]),
		DestinationCard:    toString(raw["destinationCard"]),
		Category:           NormalizeCategory(raw["category"]),
		Subcategory:        toString(raw["subcategory"]),
		Comments:           toString(raw["comments"]),
		Date:               ParseDate(raw["date"], clock),
	}
	if t.Currency == "" {
		t.Currency = core.DefaultCurrency
	}

	if v, ok := raw["amount"]; ok {
		t.Amount = toAmount(v)
	} else {
		t.Amount = math.NaN()
	}

	flag, _ := raw["isTransfer"].(bool)
	switch typ := core.TxType(strings.ToLower(strings.TrimSpace(toString(raw["type"])))); typ {
	case core.Credit, core.Debit, core.Transfer:
		t.Type = typ
	default:
		// unknown types take the negative sign, same as the legacy readers
		t.Type = core.Debit
		if flag {
			t.Type = core.Transfer
		}
	}
	t.Transfer = flag || t.Type == core.Transfer
	return t
}

// NormalizeAll normalizes a batch in order.
func NormalizeAll(raws []core.RawRecord, clock core.Clock) []core.Transaction {
	out := make([]core.Transaction, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r, clock))
	}
	return out
}

// NormalizeCategory flattens the legacy {name, subcategories} shape.
func NormalizeCategory(v any) string {
	switch c := v.(type) {
	case nil:
		return core.DefaultCategory
	case map[string]any:
		if name, ok := c["name"].(string); ok && name != "" {
			return name
		}
		return core.DefaultCategory
	case string:
		if c == "" {
			return core.DefaultCategory
		}
		return c
	}
	if s := toString(v); s != "" {
		return s
	}
	return core.DefaultCategory
}

// ParseDate reads every stored date shape. Date-only strings land at noon
// in the clock's location so they never slip a day across zones.
func ParseDate(v any, clock core.Clock) time.Time {
	if clock == nil {
		clock = core.SystemClock
	}
	switch d := v.(type) {
	case nil:
		return clock.Now()
	case time.Time:
		if d.IsZero() {
			return clock.Now()
		}
		return d
	case *time.Time:
		if d == nil || d.IsZero() {
			return clock.Now()
		}
		return *d
	case dater:
		return d.ToDate()
	case map[string]any:
		if ts, ok := timestampFromMap(d); ok {
			return ts
		}
	case string:
		if ts, ok := parseDateString(d, core.Location(clock)); ok {
			return ts
		}
	case float64, float32, int, int64, int32, json.Number:
		if ms, ok := toFloat(d); ok && !math.IsNaN(ms) {
			return time.UnixMilli(int64(ms)).In(core.Location(clock))
		}
	}
	return clock.Now()
}

func parseDateString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) == len("2006-01-02") {
		if d, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
			return d.Add(12 * time.Hour), true
		}
	}
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, s, loc); err == nil {
			if layout == "02/01/2006" {
				d = d.Add(12 * time.Hour)
			}
			return d, true
		}
	}
	return time.Time{}, false
}

// timestampFromMap handles serialized timestamps: {seconds, nanoseconds}
// and the underscore-prefixed admin SDK variant.
func timestampFromMap(m map[string]any) (time.Time, bool) {
	for _, keys := range [][2]string{{"seconds", "nanoseconds"}, {"_seconds", "_nanoseconds"}} {
		sec, ok := toFloat(m[keys[0]])
		if !ok {
			continue
		}
		nsec, _ := toFloat(m[keys[1]])
		return time.Unix(int64(sec), int64(nsec)), true
	}
	return time.Time{}, false
}

// toAmount coerces a stored amount. Explicit null and empty strings read as
// zero; anything unparseable is NaN.
func toAmount(v any) float64 {
	switch a := v.(type) {
	case nil:
		return 0
	case bool:
		if a {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(a)
		if s == "" {
			return 0
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return math.NaN()
		}
		f, _ := d.Float64()
		return f
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	return math.NaN()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	}
	return 0, false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int, int64, int32:
		return fmt.Sprint(s)
	}
	return ""
}

// Record converts a transaction back to its stored document form.
// Normalizing the result yields the same transaction.
func Record(t core.Transaction) core.RawRecord {
	r := core.RawRecord{
		"title":    t.Title,
		"type":     string(t.Type),
		"currency": t.Currency,
		"category": t.Category,
		"date":     t.Date.Format(time.RFC3339Nano),
	}
	if !math.IsNaN(t.Amount) {
		r["amount"] = t.Amount
	}
	if t.Transfer {
		r["isTransfer"] = true
	}
	optional := map[string]string{
		"id":                 t.ID,
		"context":            string(t.Context),
		"destinationContext": string(t.DestinationContext),
		"card":               t.Card,
		"account":            t.Account,
		"destinationCard":    t.DestinationCard,
		"subcategory":        t.Subcategory,
		"comments":           t.Comments,
	}
	for k, v := range optional {
		if v != "" {
			r[k] = v
		}
	}
	return r
}
