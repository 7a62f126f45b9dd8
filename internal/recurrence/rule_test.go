package recurrence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		raw     string
		wantErr bool
		check   func(t *testing.T, r Rule)
	}{
		{
			name: "none with empty config",
			typ:  "none",
			raw:  `{}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, TypeNone, r.Type)
			},
		},
		{
			name: "empty type means none",
			typ:  "",
			raw:  ``,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, TypeNone, r.Type)
			},
		},
		{
			name: "daily",
			typ:  "daily",
			raw:  `{"time":"08:30"}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, TypeDaily, r.Type)
				assert.Equal(t, ClockTime{Hour: 8, Minute: 30, Set: true}, r.TimeOfDay)
			},
		},
		{
			name:    "daily without time",
			typ:     "daily",
			raw:     `{}`,
			wantErr: true,
		},
		{
			name: "weekly sorts weekdays",
			typ:  "weekly",
			raw:  `{"weekdays":[5,1,3],"time":"09:00"}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, r.Weekdays)
			},
		},
		{
			name:    "weekly empty weekdays",
			typ:     "weekly",
			raw:     `{"weekdays":[],"time":"09:00"}`,
			wantErr: true,
		},
		{
			name:    "weekly duplicate weekday",
			typ:     "weekly",
			raw:     `{"weekdays":[1,1],"time":"09:00"}`,
			wantErr: true,
		},
		{
			name:    "weekly weekday out of range",
			typ:     "weekly",
			raw:     `{"weekdays":[7],"time":"09:00"}`,
			wantErr: true,
		},
		{
			name: "monthly day of month",
			typ:  "monthly",
			raw:  `{"dayOfMonth":31,"time":"10:00"}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, 31, r.DayOfMonth)
				assert.False(t, r.LastDayOfMonth)
				assert.Equal(t, WorkdayNone, r.Workday)
			},
		},
		{
			name: "monthly last day without dayOfMonth",
			typ:  "monthly",
			raw:  `{"lastDayOfMonth":true}`,
			check: func(t *testing.T, r Rule) {
				assert.True(t, r.LastDayOfMonth)
				assert.False(t, r.TimeOfDay.Set)
			},
		},
		{
			name:    "monthly day out of range",
			typ:     "monthly",
			raw:     `{"dayOfMonth":32}`,
			wantErr: true,
		},
		{
			name:    "monthly day zero",
			typ:     "monthly",
			raw:     `{"dayOfMonth":0}`,
			wantErr: true,
		},
		{
			name: "monthly workday string",
			typ:  "monthly",
			raw:  `{"dayOfMonth":1,"workdayAdjust":"forward"}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, WorkdayForward, r.Workday)
			},
		},
		{
			name: "monthly workday legacy boolean",
			typ:  "monthly",
			raw:  `{"dayOfMonth":1,"workdayAdjust":true}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, WorkdayBackward, r.Workday)
			},
		},
		{
			name:    "monthly workday junk",
			typ:     "monthly",
			raw:     `{"dayOfMonth":1,"workdayAdjust":"sideways"}`,
			wantErr: true,
		},
		{
			name: "yearly",
			typ:  "yearly",
			raw:  `{"month":2,"day":29}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, time.February, r.Month)
				assert.Equal(t, 29, r.Day)
			},
		},
		{
			name:    "yearly month out of range",
			typ:     "yearly",
			raw:     `{"month":13,"day":1}`,
			wantErr: true,
		},
		{
			name: "smart",
			typ:  "smart",
			raw:  `{"baseMonths":3,"flexibilityDays":7,"learningEnabled":true}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, 3, r.BaseMonths)
				assert.Equal(t, 7, r.FlexibilityDays)
				assert.True(t, r.LearningEnabled)
			},
		},
		{
			name:    "smart negative flexibility",
			typ:     "smart",
			raw:     `{"baseMonths":3,"flexibilityDays":-1}`,
			wantErr: true,
		},
		{
			name:    "unknown type",
			typ:     "fortnightly",
			raw:     `{}`,
			wantErr: true,
		},
		{
			// fields from other variants ride along without complaint
			name: "foreign fields ignored",
			typ:  "daily",
			raw:  `{"time":"07:00","weekdays":[1,2],"dayOfMonth":31,"baseMonths":6}`,
			check: func(t *testing.T, r Rule) {
				assert.Equal(t, TypeDaily, r.Type)
				assert.Empty(t, r.Weekdays)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Compile(tt.typ, json.RawMessage(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfig)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}

func TestWorkdayDirectionJSON(t *testing.T) {
	var d WorkdayDirection
	require.NoError(t, json.Unmarshal([]byte(`"forward"`), &d))
	assert.Equal(t, WorkdayForward, d)

	out, err := json.Marshal(WorkdayBackward)
	require.NoError(t, err)
	assert.Equal(t, `"backward"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, WorkdayNone, d)
}
