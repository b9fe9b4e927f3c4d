package core

import (
	"fmt"
	"time"
)

const MonthLayout = "2006-01"

// Month is a calendar month in a specific location.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a YYYY-MM key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

// AddMonths shifts the month by n, negative values go back.
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(t)
}

func (m Month) Prev() Month { return m.AddMonths(-1) }

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Contains reports whether t falls in m, using t's own location.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Index is a month ordinal usable for window arithmetic.
func (m Month) Index() int {
	return m.Year*12 + int(m.Month) - 1
}

// Short returns the abbreviated month name used in chart labels.
func (m Month) Short() string {
	return m.Month.String()[:3]
}
