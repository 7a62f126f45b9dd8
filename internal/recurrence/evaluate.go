package recurrence

import (
	"fmt"
	"time"
)

// Next computes the earliest occurrence of the rule strictly after `after`.
// The rule's phase is anchored at `anchor` (typically the reminder's first
// remind time): calendar fields missing from the config, such as the wall
// clock of a monthly rule, come from the anchor, so repeated recomputation
// keeps the same cadence. All calendar math happens in the anchor's location.
//
// `history` is the ascending list of completion instants; only the smart
// variant reads it. Comparisons are strict: an occurrence exactly equal to
// `after` counts as already passed.
func (r Rule) Next(anchor, after time.Time, history []time.Time) (time.Time, error) {
	loc := anchor.Location()
	a := after.In(loc)

	switch r.Type {
	case TypeDaily:
		return r.nextDaily(a, after, loc), nil

	case TypeWeekly:
		if len(r.Weekdays) == 0 {
			return time.Time{}, fmt.Errorf("%w: weekly rule without weekdays", ErrConfig)
		}
		return r.nextWeekly(a, after, loc), nil

	case TypeMonthly:
		return r.nextMonthly(a, after, anchor, loc), nil

	case TypeYearly:
		return r.nextYearly(a, after, anchor, loc), nil

	case TypeSmart:
		return r.nextSmart(anchor, after, history)

	case TypeNone:
		return time.Time{}, fmt.Errorf("%w: none recurrence has no next occurrence", ErrConfig)

	default:
		return time.Time{}, fmt.Errorf("%w: unknown recurrence type %q", ErrConfig, r.Type)
	}
}

// Preview returns the next count occurrences after `after`, feeding each
// result back as the new reference. It mutates nothing; calling it twice
// with the same inputs yields the same output.
func (r Rule) Preview(anchor, after time.Time, history []time.Time, count int) ([]time.Time, error) {
	out := make([]time.Time, 0, count)
	cursor := after
	for i := 0; i < count; i++ {
		next, err := r.Next(anchor, cursor, history)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}

func (r Rule) nextDaily(a, after time.Time, loc *time.Location) time.Time {
	cand := time.Date(a.Year(), a.Month(), a.Day(), r.TimeOfDay.Hour, r.TimeOfDay.Minute, 0, 0, loc)
	if cand.After(after) {
		return cand
	}
	return cand.AddDate(0, 0, 1)
}

func (r Rule) nextWeekly(a, after time.Time, loc *time.Location) time.Time {
	allowed := make(map[time.Weekday]bool, len(r.Weekdays))
	for _, d := range r.Weekdays {
		allowed[d] = true
	}
	// Today may still hold an occurrence later than `after`, so the scan
	// starts on `after`'s own date; at most 7 further days are needed.
	cand := time.Date(a.Year(), a.Month(), a.Day(), r.TimeOfDay.Hour, r.TimeOfDay.Minute, 0, 0, loc)
	for i := 0; i <= 7; i++ {
		if allowed[cand.Weekday()] && cand.After(after) {
			return cand
		}
		cand = cand.AddDate(0, 0, 1)
	}
	return cand // unreachable with a non-empty weekday set
}

func (r Rule) nextMonthly(a, after, anchor time.Time, loc *time.Location) time.Time {
	y, m := a.Year(), a.Month()
	for {
		day := ResolveDayOfMonth(y, m, r.DayOfMonth, r.LastDayOfMonth)
		cand := at(y, m, day, r.TimeOfDay, anchor, loc)
		cand = AdjustToWorkday(cand, r.Workday)
		if cand.After(after) {
			return cand
		}
		next := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
		y, m = next.Year(), next.Month()
	}
}

func (r Rule) nextYearly(a, after, anchor time.Time, loc *time.Location) time.Time {
	for y := a.Year(); ; y++ {
		day := ResolveDayOfMonth(y, r.Month, r.Day, false)
		cand := at(y, r.Month, day, r.TimeOfDay, anchor, loc)
		if cand.After(after) {
			return cand
		}
	}
}
