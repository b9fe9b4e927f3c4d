package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CommonCurrency is the unit every KPI is expressed in.
const CommonCurrency = "COP"

// DefaultUSDRate is the fixed COP per USD estimate used when no override is set.
const DefaultUSDRate = 4100.0

// Converter maps amounts into the common unit with a fixed rate table.
// Rates are units of CommonCurrency per one unit of the keyed currency.
// Currencies without a rate pass through unchanged.
type Converter struct {
	rates map[string]float64
}

// DefaultRates returns the built-in table.
func DefaultRates() map[string]float64 {
	return map[string]float64{"USD": DefaultUSDRate}
}

// NewConverter builds a converter from overrides layered on DefaultRates.
func NewConverter(overrides map[string]float64) Converter {
	rates := DefaultRates()
	for c, r := range overrides {
		rates[strings.ToUpper(c)] = r
	}
	rates[CommonCurrency] = 1
	return Converter{rates: rates}
}

// Rate returns the rate for a currency, 1 when unknown.
func (c Converter) Rate(currency string) float64 {
	if r, ok := c.rates[strings.ToUpper(currency)]; ok {
		return r
	}
	return 1
}

// ToCommon converts an amount.
func (c Converter) ToCommon(amount float64, currency string) float64 {
	if c.rates == nil {
		c = NewConverter(nil)
	}
	return amount * c.Rate(currency)
}

// Rates returns a copy of the table.
func (c Converter) Rates() map[string]float64 {
	out := make(map[string]float64, len(c.rates))
	for k, v := range c.rates {
		out[k] = v
	}
	return out
}

// ParseRates reads "USD=4100,EUR=4400".
func ParseRates(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid rate %q: expected CODE=VALUE", pair)
		}
		r, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || r <= 0 {
			return nil, fmt.Errorf("invalid rate %q: value must be a positive number", pair)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = r
	}
	return out, nil
}

// FormatRates is the inverse of ParseRates with sorted codes.
func FormatRates(rates map[string]float64) string {
	codes := make([]string, 0, len(rates))
	for c := range rates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		parts = append(parts, c+"="+strconv.FormatFloat(rates[c], 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}
