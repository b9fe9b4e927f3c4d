package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

const (
	Credit   TxType = "credit"
	Debit    TxType = "debit"
	Transfer TxType = "transfer"
)

const (
	Personal Context = "personal"
	Business Context = "business"
)

const (
	Unified         Selector = "unified"
	PersonalContext Selector = Selector(Personal)
	BusinessContext Selector = Selector(Business)
)

// Fallback values applied while normalizing records.
const (
	DefaultCurrency = "USD"
	DefaultCategory = "general"
	DefaultAccount  = "Cash"
)

type (
	TxType string

	// Context is the ownership scope of a transaction or of one transfer leg.
	Context string

	// Selector picks a context view. Unified is view-time only and never stored.
	Selector string

	// RawRecord is a stored document as read from a backend, in any legacy shape.
	RawRecord map[string]any

	Transaction struct {
		ID                 string
		Title              string
		Amount             float64 // magnitude; NaN when the stored amount was unusable
		Type               TxType
		Transfer           bool
		Currency           string
		Context            Context
		DestinationContext Context
		Card               string
		Account            string
		DestinationCard    string
		Category           string
		Subcategory        string
		Date               time.Time
		Comments           string
	}

	BudgetLine struct {
		Name        string  `json:"name"`
		Subcategory string  `json:"subcategory,omitempty"`
		Limit       float64 `json:"limit"`
		ColorTag    string  `json:"colorTag,omitempty"`
	}

	Budget struct {
		Month     string       `json:"month"` // YYYY-MM
		Context   Context      `json:"context"`
		Lines     []BudgetLine `json:"lines"`
		UpdatedAt time.Time    `json:"updatedAt"`
	}

	Goal struct {
		ID            string  `json:"id"`
		Name          string  `json:"name"`
		TargetAmount  float64 `json:"targetAmount"`
		LinkedAccount string  `json:"linkedAccount"`
		Context       Context `json:"context"`
	}

	// GoalProgress is a goal with its derived savings.
	GoalProgress struct {
		Goal
		Saved      float64 `json:"saved"`
		Percentage float64 `json:"percentage"`
	}

	CategoryDef struct {
		Name          string   `json:"name"`
		Subcategories []string `json:"subcategories"`
		Icon          string   `json:"icon"`
		Type          string   `json:"type"`
		Context       string   `json:"context"`
	}

	AppConfig struct {
		Currencies []string      `json:"currencies"`
		Accounts   []string      `json:"accounts"`
		Categories []CategoryDef `json:"categories"`
	}

	// Balances holds per-currency totals. Every currency seen is present in all three maps.
	Balances struct {
		NetWorth map[string]float64 `json:"netWorth"`
		Personal map[string]float64 `json:"personalBalance"`
		Business map[string]float64 `json:"businessCashFlow"`
	}
)

var (
	ErrInvalidContext      = errors.New("invalid context")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrEmptyTitle          = errors.New("empty title")
	ErrEmptyName           = errors.New("empty name")
	ErrDuplicateBudgetLine = errors.New("duplicate budget line")
	ErrNotFound            = errors.New("not found")
	ErrMissingDestination  = errors.New("transfer without destination")
)

func (c Context) Valid() bool {
	return c == Personal || c == Business
}

// ParseContext accepts only stored contexts.
func ParseContext(s string) (Context, error) {
	c := Context(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ErrInvalidContext
	}
	return c, nil
}

// ParseSelector accepts personal, business or unified. Empty means unified.
func ParseSelector(s string) (Selector, error) {
	sel := Selector(strings.ToLower(strings.TrimSpace(s)))
	switch sel {
	case "":
		return Unified, nil
	case Unified, PersonalContext, BusinessContext:
		return sel, nil
	}
	return "", ErrInvalidContext
}

func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Credit, Debit, Transfer:
		return t, nil
	}
	return "", ErrInvalidType
}

// IsTransfer reports whether either transfer encoding applies.
func (t Transaction) IsTransfer() bool {
	return t.Transfer || t.Type == Transfer
}

// AccountLabel returns the origin account, falling back to DefaultAccount.
func (t Transaction) AccountLabel() string {
	if t.Card != "" {
		return t.Card
	}
	if t.Account != "" {
		return t.Account
	}
	return DefaultAccount
}

// Validate checks a transaction about to be written. Stored data is never validated.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) || t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, err := ParseTxType(string(t.Type)); err != nil {
		return err
	}
	if !t.Context.Valid() {
		return ErrInvalidContext
	}
	if t.Type == Transfer {
		if t.DestinationContext != "" && !t.DestinationContext.Valid() {
			return ErrInvalidContext
		}
		if t.DestinationCard == "" {
			return ErrMissingDestination
		}
	}
	return nil
}

// Key is the identity of a budget line within one budget.
func (l BudgetLine) Key() string {
	return LineKey(l.Name, l.Subcategory)
}

// LineKey builds the category-subcategory bucket name, ALL when no subcategory.
func LineKey(category, subcategory string) string {
	if subcategory == "" {
		subcategory = "ALL"
	}
	return category + "-" + subcategory
}

func (l BudgetLine) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if math.IsNaN(l.Limit) || l.Limit < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateLines rejects invalid lines and duplicate identities.
func ValidateLines(lines []BudgetLine) error {
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
		if _, dup := seen[l.Key()]; dup {
			return ErrDuplicateBudgetLine
		}
		seen[l.Key()] = struct{}{}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if math.IsNaN(g.TargetAmount) || g.TargetAmount < 0 {
		return ErrInvalidAmount
	}
	if g.Context != "" && !g.Context.Valid() {
		return ErrInvalidContext
	}
	return nil
}

// Percentage applies the clamp rule shared by budgets and goals.
// A zero target reads 0% when nothing was spent and 100% otherwise.
func Percentage(value, target float64) (pct float64, over bool) {
	if target <= 0 {
		if value > 0 {
			return 100, true
		}
		return 0, false
	}
	pct = value / target * 100
	if pct > 100 {
		return 100, true
	}
	return pct, value > target
}

// NewBalances returns empty balance maps.
func NewBalances() Balances {
	return Balances{
		NetWorth: map[string]float64{},
		Personal: map[string]float64{},
		Business: map[string]float64{},
	}
}

// Currencies returns every currency present in the balances.
func (b Balances) Currencies() []string {
	out := make([]string, 0, len(b.NetWorth))
	for c := range b.NetWorth {
		out = append(out, c)
	}
	return out
}
