package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRecurring(t *testing.T) {
	assert.False(t, (&Reminder{RecurrenceType: "none"}).IsRecurring())
	assert.False(t, (&Reminder{}).IsRecurring())
	assert.True(t, (&Reminder{RecurrenceType: "weekly"}).IsRecurring())
	assert.True(t, (&Reminder{RecurrenceType: "smart"}).IsRecurring())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestNotifyTime(t *testing.T) {
	next := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := &Reminder{NextRemindTime: next, AdvanceMinutes: 30}
	assert.Equal(t, next.Add(-30*time.Minute), r.NotifyTime())

	r.AdvanceMinutes = 0
	assert.Equal(t, next, r.NotifyTime())
}

func TestCloneIsDeep(t *testing.T) {
	last := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	r := &Reminder{LastRemindTime: &last, RecurrenceConfig: []byte(`{"time":"09:00"}`)}

	cp := r.Clone()
	*cp.LastRemindTime = last.Add(time.Hour)
	cp.RecurrenceConfig[2] = 'x'

	assert.Equal(t, last, *r.LastRemindTime)
	assert.Equal(t, byte('t'), r.RecurrenceConfig[2])
}
