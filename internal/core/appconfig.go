package core

import "strings"

// DefaultAppConfig is written when no configuration document exists.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Currencies: []string{"COP", "USD", "EUR"},
		Accounts:   []string{"Cash", "Main Credit Card", "Bank Account"},
		Categories: []CategoryDef{
			{Name: "Food", Subcategories: []string{"Groceries", "Restaurants"}, Icon: "restaurant", Type: "expense", Context: "unified"},
			{Name: "Transport", Subcategories: []string{"Fuel", "Public Transport"}, Icon: "directions_car", Type: "expense", Context: "unified"},
			{Name: "Services", Subcategories: []string{"Electricity", "Internet", "Water"}, Icon: "bolt", Type: "expense", Context: "unified"},
			{Name: "Shopping", Subcategories: []string{}, Icon: "shopping_bag", Type: "expense", Context: "personal"},
			{Name: "Income", Subcategories: []string{"Salary", "Sales"}, Icon: "payments", Type: "income", Context: "unified"},
		},
	}
}

// PrimaryCurrency is the first configured currency, USD when none.
func (c AppConfig) PrimaryCurrency() string {
	if len(c.Currencies) == 0 {
		return DefaultCurrency
	}
	return c.Currencies[0]
}

// CategoryNames lists the configured category names in order.
func (c AppConfig) CategoryNames() []string {
	out := make([]string, 0, len(c.Categories))
	for _, cat := range c.Categories {
		out = append(out, cat.Name)
	}
	return out
}

// Category finds a category definition by case-insensitive name.
func (c AppConfig) Category(name string) (CategoryDef, bool) {
	for _, cat := range c.Categories {
		if strings.EqualFold(cat.Name, name) {
			return cat, true
		}
	}
	return CategoryDef{}, false
}

// NormalizeAppConfig converts a stored configuration document.
// Legacy categories stored as bare strings become full definitions.
// Missing catalogs are left empty; callers decide whether to seed defaults.
func NormalizeAppConfig(raw map[string]any) AppConfig {
	var cfg AppConfig
	cfg.Currencies = stringList(raw["currencies"])
	cfg.Accounts = stringList(raw["accounts"])
	if cats, ok := raw["categories"].([]any); ok {
		for _, c := range cats {
			if def, ok := categoryDef(c); ok {
				cfg.Categories = append(cfg.Categories, def)
			}
		}
	}
	return cfg
}

func categoryDef(v any) (CategoryDef, bool) {
	switch c := v.(type) {
	case string:
		if c == "" {
			return CategoryDef{}, false
		}
		return CategoryDef{Name: c, Subcategories: []string{}, Icon: "category", Type: "expense", Context: "unified"}, true
	case map[string]any:
		name, _ := c["name"].(string)
		if name == "" {
			return CategoryDef{}, false
		}
		def := CategoryDef{
			Name:          name,
			Subcategories: stringList(c["subcategories"]),
			Icon:          stringOr(c["icon"], "category"),
			Type:          stringOr(c["type"], "expense"),
			Context:       stringOr(c["context"], "unified"),
		}
		return def, true
	}
	return CategoryDef{}, false
}

// Record returns the stored document form.
func (c AppConfig) Record() map[string]any {
	cats := make([]any, 0, len(c.Categories))
	for _, def := range c.Categories {
		subs := make([]any, 0, len(def.Subcategories))
		for _, s := range def.Subcategories {
			subs = append(subs, s)
		}
		cats = append(cats, map[string]any{
			"name":          def.Name,
			"subcategories": subs,
			"icon":          def.Icon,
			"type":          def.Type,
			"context":       def.Context,
		})
	}
	return map[string]any{
		"currencies": anyList(c.Currencies),
		"accounts":   anyList(c.Accounts),
		"categories": cats,
	}
}

func stringList(v any) []string {
	out := []string{}
	switch l := v.(type) {
	case []string:
		out = append(out, l...)
	case []any:
		for _, e := range l {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func anyList(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}
