// Package core provides the finance domain types and amount parsing.
//
// Amounts are decimal magnitudes. User input is parsed through
// shopspring/decimal so that both dot and comma separators are accepted
// and the value never picks up binary rounding noise before it is stored.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a positive amount.
//
// It accepts dot (12.34) and comma (12,34) decimal separators, and thousands
// grouped with dots when a comma decimal is present (1.234,50). Signs,
// zero and garbage are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34, nil
//	ParseAmount("12,34")    -> 12.34, nil
//	ParseAmount("1.234,50") -> 1234.5, nil
//	ParseAmount("-1")       -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseDecimal parses a decimal string with either separator style.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		// comma decimal: dots are grouping
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// RoundAmount rounds to the fraction digits used for the currency.
func RoundAmount(v float64, currency string) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(FractionDigits(currency)).Float64()
	return f
}

// FractionDigits is 0 for COP and 2 for everything else.
func FractionDigits(currency string) int32 {
	if strings.EqualFold(currency, "COP") {
		return 0
	}
	return 2
}
