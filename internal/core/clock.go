package core

import "time"

// Clock supplies "now" to normalization and window calculations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// FixedClock always returns the same instant. Used by tests and report runs.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// Location returns the clock's time zone, Local when the clock is nil.
func Location(c Clock) *time.Location {
	if c == nil {
		return time.Local
	}
	return c.Now().Location()
}

// ZonedClock is the wall clock seen from a fixed time zone.
type ZonedClock struct {
	Loc *time.Location
}

func (c ZonedClock) Now() time.Time { return time.Now().In(c.Loc) }
