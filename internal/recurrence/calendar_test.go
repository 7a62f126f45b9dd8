package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "09:00", hour: 9},
		{in: "00:00"},
		{in: "23:59", hour: 23, minute: 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "09-00", wantErr: true},
		{in: "", wantErr: true},
		{in: "morning", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			clock, err := ParseClock(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, clock.Hour)
			assert.Equal(t, tt.minute, clock.Minute)
			assert.True(t, clock.Set)
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2024, time.January))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
	assert.Equal(t, 31, DaysInMonth(2024, time.December))
}

func TestAddMonthsClamps(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		n    int
		want time.Time
	}{
		{
			name: "jan 31 plus one month is end of february",
			in:   time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 plus one month non-leap",
			in:   time.Date(2023, 1, 31, 9, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2023, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "mar 31 plus one month is apr 30",
			in:   time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC),
			n:    1,
			want: time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "mid-month unaffected",
			in:   time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
			n:    2,
			want: time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "year rollover",
			in:   time.Date(2024, 11, 30, 9, 0, 0, 0, time.UTC),
			n:    3,
			want: time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "negative months",
			in:   time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC),
			n:    -1,
			want: time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonths(tt.in, tt.n))
		})
	}
}

func TestAddYearsClampsLeapDay(t *testing.T) {
	in := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC), AddYears(in, 1))
	assert.Equal(t, time.Date(2028, 2, 29, 9, 0, 0, 0, time.UTC), AddYears(in, 4))
}

func TestResolveDayOfMonth(t *testing.T) {
	// 31 in a 30-day month clamps to 30
	assert.Equal(t, 30, ResolveDayOfMonth(2024, time.April, 31, false))
	// 31 in february clamps to the leap-aware month end
	assert.Equal(t, 29, ResolveDayOfMonth(2024, time.February, 31, false))
	assert.Equal(t, 28, ResolveDayOfMonth(2023, time.February, 31, false))
	// in-range day passes through
	assert.Equal(t, 15, ResolveDayOfMonth(2024, time.February, 15, false))
	// lastDay wins regardless of the day value
	assert.Equal(t, 29, ResolveDayOfMonth(2024, time.February, 1, true))
	assert.Equal(t, 31, ResolveDayOfMonth(2024, time.January, 10, true))
}

func TestAdjustToWorkday(t *testing.T) {
	saturday := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC), AdjustToWorkday(saturday, WorkdayBackward))
	assert.Equal(t, time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC), AdjustToWorkday(sunday, WorkdayBackward))
	assert.Equal(t, monday, AdjustToWorkday(saturday, WorkdayForward))
	assert.Equal(t, monday, AdjustToWorkday(sunday, WorkdayForward))

	// weekdays and the none direction pass through
	assert.Equal(t, monday, AdjustToWorkday(monday, WorkdayBackward))
	assert.Equal(t, saturday, AdjustToWorkday(saturday, WorkdayNone))
}
