package storage

import (
	"context"
	"errors"
	"time"

	"github.com/lcheng-dev/homekeep/internal/models"
)

var (
	// ErrNotFound is returned when a reminder does not exist or belongs to a
	// different user.
	ErrNotFound = errors.New("storage: reminder not found")
	// ErrConcurrencyConflict is returned when a save carries a stale version.
	// Callers must reload and retry the full read-compute-write cycle.
	ErrConcurrencyConflict = errors.New("storage: version conflict")
)

// ListFilter narrows a reminder listing. Zero values mean "no filter";
// PageSize 0 means unpaginated.
type ListFilter struct {
	Category string
	IsActive *bool
	Page     int
	PageSize int
}

// Store is the persistence boundary the lifecycle service computes against.
// SaveReminder implements optimistic locking: the write only lands when the
// stored version matches the snapshot's, and the version is bumped with it.
type Store interface {
	CreateReminder(ctx context.Context, r *models.Reminder) error
	GetReminder(ctx context.Context, id int, userID int64) (*models.Reminder, error)
	ListReminders(ctx context.Context, userID int64, filter ListFilter) ([]*models.Reminder, error)
	SaveReminder(ctx context.Context, r *models.Reminder) error
	DeleteReminder(ctx context.Context, id int, userID int64) error
	// CompleteReminder writes an advanced reminder snapshot and its
	// completion record atomically, with the same optimistic-lock semantics
	// as SaveReminder. Either both land or neither does.
	CompleteReminder(ctx context.Context, r *models.Reminder, c *models.Completion) error

	AppendCompletion(ctx context.Context, c *models.Completion) error
	ListCompletions(ctx context.Context, reminderID int) ([]*models.Completion, error)
	// CompletionTimes returns the most recent completion instants in
	// ascending order, capped at limit.
	CompletionTimes(ctx context.Context, reminderID int, limit int) ([]time.Time, error)

	Statistics(ctx context.Context, userID int64, now time.Time) (*models.Statistics, error)
	// DueReminders lists active pending reminders whose notify time (next
	// occurrence minus advance notice) is at or before now.
	DueReminders(ctx context.Context, now time.Time) ([]*models.Reminder, error)
}
