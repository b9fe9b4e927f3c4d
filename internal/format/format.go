// Package format renders amounts for people: currency strings, grouped
// numbers and compact figures. Colombian Spanish is the default locale.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"fintrack/internal/core"
)

// DefaultLocale matches the app's home market.
var DefaultLocale = language.MustParse("es-CO")

var supported = []language.Tag{DefaultLocale, language.AmericanEnglish}

var matcher = language.NewMatcher(supported)

type symbols struct {
	group, decimal string
	thousand       string
	million        string
	billion        string
	currency       map[string]string
}

// locales is indexed like supported.
var locales = []symbols{
	{
		group: ".", decimal: ",",
		thousand: " mil", million: " M", billion: " mil M",
		currency: map[string]string{"COP": "$", "USD": "US$", "EUR": "€"},
	},
	{
		group: ",", decimal: ".",
		thousand: "K", million: "M", billion: "B",
		currency: map[string]string{"USD": "$", "EUR": "€"},
	},
}

// Formatter formats for one locale. The zero value is not usable; use New.
type Formatter struct {
	sym symbols
}

// New picks the closest supported locale for tag.
func New(tag language.Tag) Formatter {
	_, idx, _ := matcher.Match(tag)
	return Formatter{sym: locales[idx]}
}

// Parse is New over a BCP 47 string. Unparseable tags get the default locale.
func Parse(s string) Formatter {
	tag, err := language.Parse(s)
	if err != nil {
		return New(DefaultLocale)
	}
	return New(tag)
}

var std = New(DefaultLocale)

// Currency formats in the default locale.
func Currency(v float64, code string) string { return std.Currency(v, code) }

// Number formats in the default locale.
func Number(v float64, code string) string { return std.Number(v, code) }

// Compact formats in the default locale.
func Compact(v float64) string { return std.Compact(v) }

// Currency prefixes the symbol and uses the currency's fraction digits.
// Unknown codes fall back to USD.
func (f Formatter) Currency(v float64, code string) string {
	code = normalizeCode(code)
	if !finite(v) {
		return "-"
	}
	sym, ok := f.sym.currency[code]
	if !ok {
		sym = code
	}
	num := f.group(math.Abs(v), core.FractionDigits(code))
	if v < 0 && num != f.zero(core.FractionDigits(code)) {
		return "-" + sym + " " + num
	}
	return sym + " " + num
}

// Number groups thousands with the fraction digits of code.
func (f Formatter) Number(v float64, code string) string {
	if !finite(v) {
		return "-"
	}
	digits := core.FractionDigits(normalizeCode(code))
	num := f.group(math.Abs(v), digits)
	if v < 0 && num != f.zero(digits) {
		return "-" + num
	}
	return num
}

// Compact shortens large magnitudes to at most one fraction digit, e.g.
// 1500 -> "1,5 mil" and 2300000 -> "2,3 M" in es-CO.
func (f Formatter) Compact(v float64) string {
	if !finite(v) {
		return "-"
	}
	abs := math.Abs(v)
	var suffix string
	var scaled float64
	switch {
	case abs >= 1e9:
		scaled, suffix = abs/1e9, f.sym.billion
	case abs >= 1e6:
		scaled, suffix = abs/1e6, f.sym.million
	case abs >= 1e3:
		scaled, suffix = abs/1e3, f.sym.thousand
	default:
		scaled = abs
	}
	d := decimal.NewFromFloat(scaled).Round(1)
	s := f.localize(strings.TrimSuffix(d.StringFixed(1), ".0"))
	if v < 0 && !d.IsZero() {
		s = "-" + s
	}
	return s + suffix
}

// group renders a non-negative value with separators.
func (f Formatter) group(v float64, digits int32) string {
	fixed := decimal.NewFromFloat(v).StringFixed(digits)
	return f.localize(fixed)
}

// localize swaps the plain "1234.5" form for grouped locale separators.
func (f Formatter) localize(plain string) string {
	intPart, frac, _ := strings.Cut(plain, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.sym.group)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(f.sym.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

func (f Formatter) zero(digits int32) string {
	return f.group(0, digits)
}

// normalizeCode validates an ISO 4217 code. Empty means COP; unknown
// codes become USD.
func normalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "COP"
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return core.DefaultCurrency
	}
	return unit.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
