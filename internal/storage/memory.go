package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lcheng-dev/homekeep/internal/models"
)

// MemoryStore is an in-memory Store with the same optimistic-lock semantics
// as the Postgres one. Used in tests and for running without a database.
type MemoryStore struct {
	mu          sync.Mutex
	nextID      int
	reminders   map[int]*models.Reminder
	completions map[int][]*models.Completion
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		reminders:   make(map[int]*models.Reminder),
		completions: make(map[int][]*models.Completion),
		now:         time.Now,
	}
}

func (s *MemoryStore) CreateReminder(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ReminderID = s.nextID
	s.nextID++
	r.Version = 1
	r.CreatedAt = s.now()
	r.UpdatedAt = r.CreatedAt
	s.reminders[r.ReminderID] = r.Clone()
	return nil
}

func (s *MemoryStore) GetReminder(_ context.Context, id int, userID int64) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok || r.UserID != userID {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryStore) ListReminders(_ context.Context, userID int64, filter ListFilter) ([]*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Reminder
	for _, r := range s.reminders {
		if r.UserID != userID {
			continue
		}
		if filter.Category != "" && string(r.Category) != filter.Category {
			continue
		}
		if filter.IsActive != nil && r.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextRemindTime.Before(out[j].NextRemindTime)
	})
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start >= len(out) {
			return nil, nil
		}
		end := start + filter.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (s *MemoryStore) SaveReminder(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(r)
}

func (s *MemoryStore) saveLocked(r *models.Reminder) error {
	cur, ok := s.reminders[r.ReminderID]
	if !ok || cur.UserID != r.UserID {
		return ErrNotFound
	}
	if cur.Version != r.Version {
		return ErrConcurrencyConflict
	}
	r.Version++
	r.UpdatedAt = s.now()
	s.reminders[r.ReminderID] = r.Clone()
	return nil
}

// CompleteReminder does both writes under one lock hold; the completion is
// only recorded when the snapshot save succeeds.
func (s *MemoryStore) CompleteReminder(_ context.Context, r *models.Reminder, c *models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(r); err != nil {
		return err
	}
	c.CreatedAt = s.now()
	cp := *c
	s.completions[c.ReminderID] = append(s.completions[c.ReminderID], &cp)
	return nil
}

func (s *MemoryStore) DeleteReminder(_ context.Context, id int, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(s.reminders, id)
	delete(s.completions, id)
	return nil
}

func (s *MemoryStore) AppendCompletion(_ context.Context, c *models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.CreatedAt = s.now()
	cp := *c
	s.completions[c.ReminderID] = append(s.completions[c.ReminderID], &cp)
	return nil
}

func (s *MemoryStore) ListCompletions(_ context.Context, reminderID int) ([]*models.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.completions[reminderID]
	out := make([]*models.Completion, len(list))
	for i, c := range list {
		cp := *c
		out[i] = &cp
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (s *MemoryStore) CompletionTimes(_ context.Context, reminderID int, limit int) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	times := make([]time.Time, 0, len(s.completions[reminderID]))
	for _, c := range s.completions[reminderID] {
		times = append(times, c.CompletedAt)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	if limit > 0 && len(times) > limit {
		times = times[len(times)-limit:]
	}
	return times, nil
}

func (s *MemoryStore) Statistics(_ context.Context, userID int64, now time.Time) (*models.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.Statistics{CategoryDistribution: make(map[models.Category]int)}
	for _, cat := range models.Categories() {
		stats.CategoryDistribution[cat] = 0
	}
	for _, r := range s.reminders {
		if r.UserID != userID {
			continue
		}
		stats.TotalCount++
		stats.CategoryDistribution[r.Category]++
		if r.IsCompleted {
			stats.CompletedCount++
		}
		if r.Status == models.StatusPending && r.IsActive &&
			r.NextRemindTime.After(now) && !r.NextRemindTime.After(now.AddDate(0, 0, 7)) {
			stats.UpcomingCount++
		}
	}
	if stats.TotalCount > 0 {
		stats.CompletionRate = float64(stats.CompletedCount) / float64(stats.TotalCount)
	}
	return stats, nil
}

func (s *MemoryStore) DueReminders(_ context.Context, now time.Time) ([]*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Reminder
	for _, r := range s.reminders {
		if r.Status != models.StatusPending || !r.IsActive {
			continue
		}
		if r.NotifyTime().After(now) {
			continue
		}
		if r.LastRemindTime != nil && !r.LastRemindTime.Before(r.NextRemindTime) {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NextRemindTime.Before(out[j].NextRemindTime)
	})
	return out, nil
}
