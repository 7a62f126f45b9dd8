package recurrence

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Type names one recurrence variant. Exactly one variant is active per
// reminder; the loose wire config is compiled into a Rule carrying only the
// fields that variant needs.
type Type string

const (
	TypeNone    Type = "none"
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
	TypeYearly  Type = "yearly"
	TypeSmart   Type = "smart"
)

// ErrConfig marks a malformed or incomplete recurrence configuration.
// Config problems are always surfaced, never silently defaulted.
var ErrConfig = errors.New("recurrence: invalid configuration")

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeNone, TypeDaily, TypeWeekly, TypeMonthly, TypeYearly, TypeSmart:
		return t, nil
	case "":
		return TypeNone, nil
	default:
		return "", fmt.Errorf("%w: unknown recurrence type %q", ErrConfig, s)
	}
}

// Config is the loose wire shape: every field optional, fields belonging to
// other variants are carried but ignored at compile time.
type Config struct {
	Time            string           `json:"time,omitempty"`
	Weekdays        []int            `json:"weekdays,omitempty"`
	DayOfMonth      int              `json:"dayOfMonth,omitempty"`
	LastDayOfMonth  bool             `json:"lastDayOfMonth,omitempty"`
	WorkdayAdjust   WorkdayDirection `json:"workdayAdjust,omitempty"`
	Month           int              `json:"month,omitempty"`
	Day             int              `json:"day,omitempty"`
	BaseMonths      int              `json:"baseMonths,omitempty"`
	FlexibilityDays int              `json:"flexibilityDays,omitempty"`
	LearningEnabled bool             `json:"learningEnabled,omitempty"`
}

// Rule is a compiled, validated recurrence policy.
type Rule struct {
	Type Type

	// daily / weekly / monthly / yearly
	TimeOfDay ClockTime

	// weekly
	Weekdays []time.Weekday

	// monthly
	DayOfMonth     int
	LastDayOfMonth bool
	Workday        WorkdayDirection

	// yearly
	Month time.Month
	Day   int

	// smart
	BaseMonths      int
	FlexibilityDays int
	LearningEnabled bool
}

// Compile decodes a loose config for the given type and validates it.
func Compile(typ string, raw json.RawMessage) (Rule, error) {
	t, err := ParseType(typ)
	if err != nil {
		return Rule{}, err
	}

	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Rule{}, fmt.Errorf("%w: %v", ErrConfig, err)
		}
	}
	return CompileConfig(t, cfg)
}

// CompileConfig builds a Rule from an already-decoded config.
func CompileConfig(t Type, cfg Config) (Rule, error) {
	r := Rule{Type: t}

	switch t {
	case TypeNone:
		return r, nil

	case TypeDaily:
		clock, err := ParseClock(cfg.Time)
		if err != nil {
			return Rule{}, err
		}
		r.TimeOfDay = clock

	case TypeWeekly:
		clock, err := ParseClock(cfg.Time)
		if err != nil {
			return Rule{}, err
		}
		r.TimeOfDay = clock
		days, err := parseWeekdays(cfg.Weekdays)
		if err != nil {
			return Rule{}, err
		}
		r.Weekdays = days

	case TypeMonthly:
		if cfg.Time != "" {
			clock, err := ParseClock(cfg.Time)
			if err != nil {
				return Rule{}, err
			}
			r.TimeOfDay = clock
		}
		r.LastDayOfMonth = cfg.LastDayOfMonth
		r.DayOfMonth = cfg.DayOfMonth
		if !r.LastDayOfMonth && (r.DayOfMonth < 1 || r.DayOfMonth > 31) {
			return Rule{}, fmt.Errorf("%w: dayOfMonth %d out of range [1,31]", ErrConfig, r.DayOfMonth)
		}
		r.Workday = cfg.WorkdayAdjust

	case TypeYearly:
		if cfg.Time != "" {
			clock, err := ParseClock(cfg.Time)
			if err != nil {
				return Rule{}, err
			}
			r.TimeOfDay = clock
		}
		if cfg.Month < 1 || cfg.Month > 12 {
			return Rule{}, fmt.Errorf("%w: month %d out of range [1,12]", ErrConfig, cfg.Month)
		}
		if cfg.Day < 1 || cfg.Day > 31 {
			return Rule{}, fmt.Errorf("%w: day %d out of range [1,31]", ErrConfig, cfg.Day)
		}
		r.Month = time.Month(cfg.Month)
		r.Day = cfg.Day

	case TypeSmart:
		if cfg.BaseMonths < 0 {
			return Rule{}, fmt.Errorf("%w: baseMonths must not be negative", ErrConfig)
		}
		if cfg.FlexibilityDays < 0 {
			return Rule{}, fmt.Errorf("%w: flexibilityDays must not be negative", ErrConfig)
		}
		r.BaseMonths = cfg.BaseMonths
		r.FlexibilityDays = cfg.FlexibilityDays
		r.LearningEnabled = cfg.LearningEnabled
	}

	return r, nil
}

func parseWeekdays(in []int) ([]time.Weekday, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: weekdays must not be empty", ErrConfig)
	}
	sorted := append([]int(nil), in...)
	sort.Ints(sorted)
	out := make([]time.Weekday, 0, len(sorted))
	for i, d := range sorted {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: weekday %d out of range [0,6]", ErrConfig, d)
		}
		if i > 0 && d == sorted[i-1] {
			return nil, fmt.Errorf("%w: duplicate weekday %d", ErrConfig, d)
		}
		out = append(out, time.Weekday(d))
	}
	return out, nil
}

// WorkdayDirection is the fixed policy for occurrences landing on a weekend.
type WorkdayDirection int

const (
	WorkdayNone     WorkdayDirection = iota // no adjustment
	WorkdayBackward                         // shift to the preceding Friday
	WorkdayForward                          // shift to the following Monday
)

// UnmarshalJSON accepts both the string form ("forward"/"backward") and the
// bare boolean the mobile client sends; true means shift ahead of the
// weekend, i.e. backward to Friday.
func (d *WorkdayDirection) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "null", "false", `""`:
		*d = WorkdayNone
		return nil
	case "true", `"backward"`:
		*d = WorkdayBackward
		return nil
	case `"forward"`:
		*d = WorkdayForward
		return nil
	default:
		return fmt.Errorf("%w: workdayAdjust %s not recognised", ErrConfig, b)
	}
}

func (d WorkdayDirection) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d WorkdayDirection) String() string {
	switch d {
	case WorkdayBackward:
		return "backward"
	case WorkdayForward:
		return "forward"
	default:
		return ""
	}
}
