package models

import (
	"time"

	"github.com/google/uuid"
)

// Completion is one append-only record of a reminder being acknowledged.
// Records are created by the complete transition and never mutated.
type Completion struct {
	ID          uuid.UUID `json:"id"`
	ReminderID  int       `json:"reminder_id"`
	UserID      int64     `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
	Notes       *string   `json:"notes"`
	Amount      *float64  `json:"amount"`
	IsDelayed   bool      `json:"is_delayed"` // completed after the scheduled occurrence
	CreatedAt   time.Time `json:"created_at"`
}

// Statistics summarises a user's reminders and completion history.
type Statistics struct {
	TotalCount           int              `json:"total_count"`
	CompletedCount       int              `json:"completed_count"`
	CompletionRate       float64          `json:"completion_rate"`
	CategoryDistribution map[Category]int `json:"category_distribution"`
	UpcomingCount        int              `json:"upcoming_count"` // due within the next 7 days
}
