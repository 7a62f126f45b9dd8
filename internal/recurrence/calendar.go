package recurrence

import (
	"fmt"
	"time"
)

// ClockTime is a wall-clock time of day parsed from "HH:mm".
type ClockTime struct {
	Hour   int
	Minute int
	Set    bool
}

// ParseClock parses a strict 24-hour "HH:mm" string. Anything else is a
// config error, never substituted with a default.
func ParseClock(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' ||
		!isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return ClockTime{}, fmt.Errorf("%w: time %q does not match HH:mm", ErrConfig, s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return ClockTime{}, fmt.Errorf("%w: time %q out of range", ErrConfig, s)
	}
	return ClockTime{Hour: h, Minute: m, Set: true}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths advances t by n calendar months, clamping the day to the length
// of the target month (Jan 31 + 1 month is the last day of February, not an
// overflow into March).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()).AddDate(0, n, 0)
	if dim := DaysInMonth(first.Year(), first.Month()); d > dim {
		d = dim
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYears is AddMonths at year granularity, with the same clamping
// (Feb 29 + 1 year is Feb 28).
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// ResolveDayOfMonth picks the concrete day a monthly occurrence falls on:
// the month's final day when lastDay is set, otherwise day clamped to the
// month's length (31 in a 30-day month resolves to 30).
func ResolveDayOfMonth(year int, month time.Month, day int, lastDay bool) int {
	dim := DaysInMonth(year, month)
	if lastDay || day > dim {
		return dim
	}
	return day
}

// AdjustToWorkday shifts a Saturday/Sunday instant to the adjacent business
// day per the configured direction. Weekdays pass through unchanged.
func AdjustToWorkday(t time.Time, dir WorkdayDirection) time.Time {
	if dir == WorkdayNone {
		return t
	}
	switch t.Weekday() {
	case time.Saturday:
		if dir == WorkdayForward {
			return t.AddDate(0, 0, 2)
		}
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		if dir == WorkdayForward {
			return t.AddDate(0, 0, 1)
		}
		return t.AddDate(0, 0, -2)
	default:
		return t
	}
}

// at builds an instant on the given calendar day carrying the rule's clock,
// falling back to the anchor's wall clock when the rule has none.
func at(year int, month time.Month, day int, clock ClockTime, anchor time.Time, loc *time.Location) time.Time {
	if clock.Set {
		return time.Date(year, month, day, clock.Hour, clock.Minute, 0, 0, loc)
	}
	return time.Date(year, month, day,
		anchor.Hour(), anchor.Minute(), anchor.Second(), anchor.Nanosecond(), loc)
}
