package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lcheng-dev/homekeep/internal/models"
	"github.com/lcheng-dev/homekeep/internal/recurrence"
	"github.com/lcheng-dev/homekeep/internal/storage"
)

// ReminderService owns the reminder lifecycle: pending reminders advance
// through completions, terminal states reject further transitions, and every
// recomputation of the next occurrence goes through the recurrence engine.
// The service itself is pure computation over snapshots; persistence and the
// clock are injected.
type ReminderService struct {
	store storage.Store
	clock Clock
	loc   *time.Location
}

func NewReminderService(store storage.Store, clock Clock, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{store: store, clock: clock, loc: loc}
}

// anchor returns the reminder's recurrence anchor in the service's
// computation zone. Instants are stored UTC; wall-clock math happens here.
func (s *ReminderService) anchor(r *models.Reminder) time.Time {
	return r.FirstRemindTime.In(s.loc)
}

type CreateInput struct {
	UserID           int64
	Title            string
	Description      string
	Category         models.Category
	RecurrenceType   string
	RecurrenceConfig json.RawMessage
	FirstRemindTime  time.Time
	AdvanceMinutes   int
}

func (s *ReminderService) Create(ctx context.Context, in CreateInput) (*models.Reminder, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.FirstRemindTime.IsZero() {
		return nil, fmt.Errorf("%w: first remind time is required", ErrInvalidInput)
	}
	if in.AdvanceMinutes < 0 {
		return nil, fmt.Errorf("%w: advance minutes must not be negative", ErrInvalidInput)
	}
	if in.Category == "" {
		in.Category = models.CategoryOther
	}
	if !in.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, in.Category)
	}

	// Reject malformed recurrence configs at authoring time, not when the
	// first completion tries to advance the schedule.
	rule, err := recurrence.Compile(in.RecurrenceType, in.RecurrenceConfig)
	if err != nil {
		return nil, err
	}

	r := &models.Reminder{
		UserID:           in.UserID,
		Title:            in.Title,
		Description:      in.Description,
		Category:         in.Category,
		RecurrenceType:   string(rule.Type),
		RecurrenceConfig: in.RecurrenceConfig,
		FirstRemindTime:  in.FirstRemindTime.UTC(),
		NextRemindTime:   in.FirstRemindTime.UTC(),
		AdvanceMinutes:   in.AdvanceMinutes,
		Status:           models.StatusPending,
		IsActive:         true,
	}
	if len(r.RecurrenceConfig) == 0 {
		r.RecurrenceConfig = json.RawMessage(`{}`)
	}
	if err := s.store.CreateReminder(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReminderService) Get(ctx context.Context, id int, userID int64) (*models.Reminder, error) {
	return s.store.GetReminder(ctx, id, userID)
}

func (s *ReminderService) List(ctx context.Context, userID int64, filter storage.ListFilter) ([]*models.Reminder, error) {
	return s.store.ListReminders(ctx, userID, filter)
}

func (s *ReminderService) Delete(ctx context.Context, id int, userID int64) error {
	return s.store.DeleteReminder(ctx, id, userID)
}

// Complete acknowledges the current occurrence. A completion record is
// always appended; a none-recurrence reminder goes terminal while a
// recurring one stays pending with its next occurrence advanced past
// max(completion time, scheduled time).
func (s *ReminderService) Complete(ctx context.Context, id int, userID int64, completionTime time.Time, notes *string, amount *float64) (*models.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if r.Status.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	if completionTime.IsZero() {
		completionTime = s.clock.Now()
	}
	completionTime = completionTime.UTC()

	rule, err := recurrence.Compile(r.RecurrenceType, r.RecurrenceConfig)
	if err != nil {
		return nil, err
	}

	scheduled := r.NextRemindTime
	out := r.Clone()

	if !r.IsRecurring() {
		out.Status = models.StatusCompleted
		out.IsCompleted = true
		out.CompletedAt = &completionTime
	} else {
		history, err := s.store.CompletionTimes(ctx, id, recurrence.SmartHistoryWindow)
		if err != nil {
			return nil, err
		}
		history = append(history, completionTime)

		after := completionTime
		if scheduled.After(after) {
			after = scheduled
		}
		next, err := rule.Next(s.anchor(r), after, history)
		if err != nil {
			return nil, err
		}
		out.LastRemindTime = &scheduled
		out.NextRemindTime = next.UTC()
	}

	completion := &models.Completion{
		ID:          uuid.New(),
		ReminderID:  id,
		UserID:      userID,
		CompletedAt: completionTime,
		Notes:       notes,
		Amount:      amount,
		IsDelayed:   completionTime.After(scheduled),
	}
	// One atomic write: a failure here leaves the reminder on its current
	// occurrence, so retrying cannot consume two cycles for one ack.
	if err := s.store.CompleteReminder(ctx, out, completion); err != nil {
		return nil, err
	}
	return out, nil
}

// Uncomplete reverts a completed single-shot reminder to pending. The
// completion log keeps its records; only the reminder status rolls back.
func (s *ReminderService) Uncomplete(ctx context.Context, id int, userID int64) (*models.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if r.Status != models.StatusCompleted {
		return nil, fmt.Errorf("%w: only completed reminders can be uncompleted", ErrInvalidInput)
	}
	out := r.Clone()
	out.Status = models.StatusPending
	out.IsCompleted = false
	out.CompletedAt = nil
	if err := s.store.SaveReminder(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Cancel moves a reminder to the cancelled terminal state. Re-cancelling is
// idempotent; cancelling a completed reminder is an error.
func (s *ReminderService) Cancel(ctx context.Context, id int, userID int64) (*models.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	switch r.Status {
	case models.StatusCancelled:
		return r, nil
	case models.StatusCompleted:
		return nil, ErrAlreadyTerminal
	}
	out := r.Clone()
	out.Status = models.StatusCancelled
	out.IsActive = false
	if err := s.store.SaveReminder(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

type EditRecurrenceInput struct {
	RecurrenceType   string
	RecurrenceConfig json.RawMessage
	// FirstRemindTime optionally moves the anchor along with the policy.
	FirstRemindTime *time.Time
}

// EditRecurrence swaps the recurrence policy of a pending reminder and
// recomputes the next occurrence from now. Completion history is untouched.
func (s *ReminderService) EditRecurrence(ctx context.Context, id int, userID int64, in EditRecurrenceInput) (*models.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if r.Status != models.StatusPending {
		if r.Status.IsTerminal() {
			return nil, ErrAlreadyTerminal
		}
		return nil, ErrNotPending
	}

	rule, err := recurrence.Compile(in.RecurrenceType, in.RecurrenceConfig)
	if err != nil {
		return nil, err
	}

	out := r.Clone()
	out.RecurrenceType = string(rule.Type)
	out.RecurrenceConfig = in.RecurrenceConfig
	if len(out.RecurrenceConfig) == 0 {
		out.RecurrenceConfig = json.RawMessage(`{}`)
	}
	if in.FirstRemindTime != nil {
		out.FirstRemindTime = in.FirstRemindTime.UTC()
	}

	if rule.Type == recurrence.TypeNone {
		// A single occurrence simply fires at its anchor.
		out.NextRemindTime = out.FirstRemindTime
	} else {
		history, err := s.store.CompletionTimes(ctx, id, recurrence.SmartHistoryWindow)
		if err != nil {
			return nil, err
		}
		next, err := rule.Next(out.FirstRemindTime.In(s.loc), s.clock.Now().UTC(), history)
		if err != nil {
			return nil, err
		}
		out.NextRemindTime = next.UTC()
	}

	if err := s.store.SaveReminder(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

type UpdateInput struct {
	Title          *string
	Description    *string
	Category       *models.Category
	AdvanceMinutes *int
	IsActive       *bool
}

// Update edits presentation fields. Recurrence changes go through
// EditRecurrence so the schedule is recomputed consistently.
func (s *ReminderService) Update(ctx context.Context, id int, userID int64, in UpdateInput) (*models.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	out := r.Clone()
	if in.Title != nil {
		if *in.Title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		out.Title = *in.Title
	}
	if in.Description != nil {
		out.Description = *in.Description
	}
	if in.Category != nil {
		if !in.Category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *in.Category)
		}
		out.Category = *in.Category
	}
	if in.AdvanceMinutes != nil {
		if *in.AdvanceMinutes < 0 {
			return nil, fmt.Errorf("%w: advance minutes must not be negative", ErrInvalidInput)
		}
		out.AdvanceMinutes = *in.AdvanceMinutes
	}
	if in.IsActive != nil {
		out.IsActive = *in.IsActive
	}
	if err := s.store.SaveReminder(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Occurrence is one previewed firing, with the smart variant's tolerance
// window attached (Earliest == Latest == At for fixed rules).
type Occurrence struct {
	At       time.Time `json:"at"`
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// Preview lists the next count occurrences of a stored reminder without
// mutating anything.
func (s *ReminderService) Preview(ctx context.Context, id int, userID int64, count int) ([]Occurrence, error) {
	r, err := s.store.GetReminder(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	rule, err := recurrence.Compile(r.RecurrenceType, r.RecurrenceConfig)
	if err != nil {
		return nil, err
	}
	history, err := s.store.CompletionTimes(ctx, id, recurrence.SmartHistoryWindow)
	if err != nil {
		return nil, err
	}
	return previewRule(rule, s.anchor(r), s.clock.Now().UTC(), history, count)
}

// PreviewRule previews an unsaved rule, for form-side "what would this do"
// rendering.
func (s *ReminderService) PreviewRule(recurrenceType string, config json.RawMessage, anchorTime time.Time, count int) ([]Occurrence, error) {
	rule, err := recurrence.Compile(recurrenceType, config)
	if err != nil {
		return nil, err
	}
	return previewRule(rule, anchorTime.In(s.loc), s.clock.Now().UTC(), nil, count)
}

func previewRule(rule recurrence.Rule, anchorTime, after time.Time, history []time.Time, count int) ([]Occurrence, error) {
	if count < 1 {
		count = 1
	}
	times, err := rule.Preview(anchorTime, after, history, count)
	if err != nil {
		return nil, err
	}
	out := make([]Occurrence, len(times))
	for i, t := range times {
		occ := Occurrence{At: t.UTC(), Earliest: t.UTC(), Latest: t.UTC()}
		if rule.Type == recurrence.TypeSmart {
			early, late := rule.Window(t)
			occ.Earliest = early.UTC()
			occ.Latest = late.UTC()
		}
		out[i] = occ
	}
	return out, nil
}

func (s *ReminderService) Completions(ctx context.Context, id int, userID int64) ([]*models.Completion, error) {
	if _, err := s.store.GetReminder(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.store.ListCompletions(ctx, id)
}

func (s *ReminderService) Statistics(ctx context.Context, userID int64) (*models.Statistics, error) {
	return s.store.Statistics(ctx, userID, s.clock.Now().UTC())
}

// RRuleString renders the reminder's recurrence as an RFC 5545 RRULE line.
func (s *ReminderService) RRuleString(ctx context.Context, id int, userID int64) (string, error) {
	r, err := s.store.GetReminder(ctx, id, userID)
	if err != nil {
		return "", err
	}
	rule, err := recurrence.Compile(r.RecurrenceType, r.RecurrenceConfig)
	if err != nil {
		return "", err
	}
	return rule.RRuleString(s.anchor(r))
}
