package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// The calendar-shaped variants have an RFC 5545 rendering so reminders can
// be carried into external calendars. Smart and none do not: smart intervals
// come from behaviour, not the calendar, and none never recurs.

var toRRuleWeekday = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

var fromRRuleWeekday = map[rrule.Weekday]time.Weekday{
	rrule.MO: time.Monday,
	rrule.TU: time.Tuesday,
	rrule.WE: time.Wednesday,
	rrule.TH: time.Thursday,
	rrule.FR: time.Friday,
	rrule.SA: time.Saturday,
	rrule.SU: time.Sunday,
}

// RRule renders the rule as an rrule-go rule anchored at dtstart.
func (r Rule) RRule(dtstart time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{Dtstart: dtstart}

	clock := r.TimeOfDay
	if !clock.Set {
		clock = ClockTime{Hour: dtstart.Hour(), Minute: dtstart.Minute(), Set: true}
	}
	opt.Byhour = []int{clock.Hour}
	opt.Byminute = []int{clock.Minute}

	switch r.Type {
	case TypeDaily:
		opt.Freq = rrule.DAILY

	case TypeWeekly:
		opt.Freq = rrule.WEEKLY
		for _, d := range r.Weekdays {
			opt.Byweekday = append(opt.Byweekday, toRRuleWeekday[d])
		}

	case TypeMonthly:
		opt.Freq = rrule.MONTHLY
		if r.LastDayOfMonth {
			opt.Bymonthday = []int{-1}
		} else {
			opt.Bymonthday = []int{r.DayOfMonth}
		}

	case TypeYearly:
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{int(r.Month)}
		opt.Bymonthday = []int{r.Day}

	default:
		return nil, fmt.Errorf("%w: %s recurrence has no RRULE form", ErrConfig, r.Type)
	}

	return rrule.NewRRule(opt)
}

// RRuleString renders the RFC 5545 RRULE line, without the DTSTART part.
// Note RRULE BYMONTHDAY skips months shorter than the target day where this
// engine clamps, so the export is a close approximation, not an exact mirror.
func (r Rule) RRuleString(dtstart time.Time) (string, error) {
	rule, err := r.RRule(dtstart)
	if err != nil {
		return "", err
	}
	return rule.OrigOptions.RRuleString(), nil
}

// FromRRule parses an RFC 5545 RRULE string into the nearest rule variant.
// Only shapes this engine can express survive the round trip.
func FromRRule(s string) (Rule, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	clock := ClockTime{}
	if len(opt.Byhour) > 0 && len(opt.Byminute) > 0 {
		clock = ClockTime{Hour: opt.Byhour[0], Minute: opt.Byminute[0], Set: true}
		if clock.Hour < 0 || clock.Hour > 23 || clock.Minute < 0 || clock.Minute > 59 {
			return Rule{}, fmt.Errorf("%w: BYHOUR/BYMINUTE out of range", ErrConfig)
		}
	}

	cfg := Config{}
	if clock.Set {
		cfg.Time = clock.String()
	}

	switch opt.Freq {
	case rrule.DAILY:
		if !clock.Set {
			return Rule{}, fmt.Errorf("%w: daily RRULE needs BYHOUR and BYMINUTE", ErrConfig)
		}
		return CompileConfig(TypeDaily, cfg)

	case rrule.WEEKLY:
		if !clock.Set {
			return Rule{}, fmt.Errorf("%w: weekly RRULE needs BYHOUR and BYMINUTE", ErrConfig)
		}
		for _, wd := range opt.Byweekday {
			d, ok := fromRRuleWeekday[wd]
			if !ok {
				return Rule{}, fmt.Errorf("%w: unsupported BYDAY entry", ErrConfig)
			}
			cfg.Weekdays = append(cfg.Weekdays, int(d))
		}
		return CompileConfig(TypeWeekly, cfg)

	case rrule.MONTHLY:
		if len(opt.Bymonthday) != 1 {
			return Rule{}, fmt.Errorf("%w: monthly RRULE needs exactly one BYMONTHDAY", ErrConfig)
		}
		if opt.Bymonthday[0] == -1 {
			cfg.LastDayOfMonth = true
		} else {
			cfg.DayOfMonth = opt.Bymonthday[0]
		}
		return CompileConfig(TypeMonthly, cfg)

	case rrule.YEARLY:
		if len(opt.Bymonth) != 1 || len(opt.Bymonthday) != 1 {
			return Rule{}, fmt.Errorf("%w: yearly RRULE needs one BYMONTH and one BYMONTHDAY", ErrConfig)
		}
		cfg.Month = opt.Bymonth[0]
		cfg.Day = opt.Bymonthday[0]
		return CompileConfig(TypeYearly, cfg)

	default:
		return Rule{}, fmt.Errorf("%w: unsupported RRULE frequency", ErrConfig)
	}
}
