package models

import (
	"encoding/json"
	"time"
)

// ReminderStatus is the lifecycle state of a reminder.
type ReminderStatus string

const (
	StatusPending   ReminderStatus = "pending"
	StatusCompleted ReminderStatus = "completed"
	StatusCancelled ReminderStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed from s
// (re-cancelling a cancelled reminder is the one idempotent exception).
func (s ReminderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Reminder struct {
	ReminderID       int             `json:"reminder_id"`
	UserID           int64           `json:"user_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Category         Category        `json:"category"`
	RecurrenceType   string          `json:"recurrence_type"`
	RecurrenceConfig json.RawMessage `json:"recurrence_config"` // loose config, compiled by internal/recurrence
	FirstRemindTime  time.Time       `json:"first_remind_time"` // anchor for recurrence math
	NextRemindTime   time.Time       `json:"next_remind_time"`
	LastRemindTime   *time.Time      `json:"last_remind_time"` // most recent acknowledged occurrence
	AdvanceMinutes   int             `json:"advance_minutes"`
	Status           ReminderStatus  `json:"status"`
	IsActive         bool            `json:"is_active"`
	IsCompleted      bool            `json:"is_completed"`
	CompletedAt      *time.Time      `json:"completed_at"`
	Version          int             `json:"version"` // optimistic concurrency token
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// IsRecurring returns true if this reminder has a recurrence rule
func (r *Reminder) IsRecurring() bool {
	return r.RecurrenceType != "" && r.RecurrenceType != "none"
}

// NotifyTime is the instant a notification for the next occurrence should be
// raised, i.e. NextRemindTime minus the advance notice.
func (r *Reminder) NotifyTime() time.Time {
	return r.NextRemindTime.Add(-time.Duration(r.AdvanceMinutes) * time.Minute)
}

// Clone returns a deep copy. Lifecycle transitions operate on copies so a
// failed transition never leaves a half-mutated reminder behind.
func (r *Reminder) Clone() *Reminder {
	out := *r
	if r.LastRemindTime != nil {
		t := *r.LastRemindTime
		out.LastRemindTime = &t
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	if r.RecurrenceConfig != nil {
		out.RecurrenceConfig = append(json.RawMessage(nil), r.RecurrenceConfig...)
	}
	return &out
}
