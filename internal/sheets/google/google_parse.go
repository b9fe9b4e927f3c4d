package google

import (
	"fmt"
	"strings"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// headerAliases maps sheet headers, lowercased, to record fields. Older
// sheets used Spanish or category-hierarchy names.
var headerAliases = map[string]string{
	"id":                  "id",
	"title":               "title",
	"description":         "title",
	"descripción":         "title",
	"descripcion":         "title",
	"amount":              "amount",
	"monto":               "amount",
	"valor":               "amount",
	"type":                "type",
	"tipo":                "type",
	"currency":            "currency",
	"moneda":              "currency",
	"context":             "context",
	"contexto":            "context",
	"destinationcontext":  "destinationContext",
	"destination context": "destinationContext",
	"card":                "card",
	"tarjeta":             "card",
	"account":             "account",
	"cuenta":              "account",
	"destinationcard":     "destinationCard",
	"destination card":    "destinationCard",
	"category":            "category",
	"categoría":           "category",
	"categoria":           "category",
	"primary":             "category",
	"subcategory":         "subcategory",
	"subcategoría":        "subcategory",
	"subcategoria":        "subcategory",
	"secondary":           "subcategory",
	"date":                "date",
	"fecha":               "date",
	"comments":            "comments",
	"notes":               "comments",
	"notas":               "comments",
	"istransfer":          "isTransfer",
	"transfer":            "isTransfer",
}

// rowsToRecords converts a values matrix into raw records keyed by the
// header row. Cells stay strings, except amounts which keep numeric cells
// and read comma decimals; the normalizer coerces the rest on read.
// Empty cells are omitted so a blank amount reads as missing. Rows without
// a title and amount are skipped and counted.
func rowsToRecords(values [][]interface{}) ([]core.RawRecord, int) {
	if len(values) == 0 {
		return nil, 0
	}
	headers := toStrings(values[0])
	fields := make([]string, len(headers))
	for i, h := range headers {
		fields[i] = headerAliases[strings.ToLower(h)]
	}

	out := make([]core.RawRecord, 0, len(values)-1)
	skipped := 0
	for _, row := range values[1:] {
		cols := toStrings(row)
		rec := core.RawRecord{}
		for i, field := range fields {
			v := safeGet(cols, i)
			if field == "" || v == "" {
				continue
			}
			switch field {
			case "isTransfer":
				rec[field] = truthy(v)
				continue
			case "amount":
				rec[field] = amountCell(row[i], v)
				continue
			}
			rec[field] = v
		}
		if rec["title"] == nil && rec["amount"] == nil {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	return out, skipped
}

// cashflowRows lays out the history with a header and a net column.
func cashflowRows(points []analytics.CashflowPoint) [][]interface{} {
	rows := make([][]interface{}, 0, len(points)+1)
	rows = append(rows, []interface{}{"Month", "Label", "Income", "Expenses", "Net"})
	for _, p := range points {
		rows = append(rows, []interface{}{p.Month, p.Label, p.Income, p.Expenses, p.Income - p.Expenses})
	}
	return rows
}

func amountCell(raw interface{}, s string) interface{} {
	if f, ok := raw.(float64); ok {
		return f
	}
	if d, err := core.ParseDecimal(s); err == nil {
		f, _ := d.Float64()
		return f
	}
	return s
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "x", "sí", "si", "verdadero":
		return true
	}
	return false
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
