package fridge

import (
	"time"
)

// =============================================================================
// CLOCK
// =============================================================================

// Clock returns the current time. Engines take one so tests can pin it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

func (c Clock) now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c().UTC()
}

// =============================================================================
// CALENDAR DATES
// =============================================================================

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, invalid("date", "expected YYYY-MM-DD, got "+s)
	}
	return t, nil
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange returns the half-open interval [start 00:00, end+1 00:00) covering
// every instant of both calendar dates. end before start is invalid.
func DayRange(start, end time.Time) (from, to time.Time, err error) {
	from = StartOfDay(start)
	last := StartOfDay(end)
	if last.Before(from) {
		return time.Time{}, time.Time{}, invalid("end", "end date is before start date")
	}
	return from, last.AddDate(0, 0, 1), nil
}
