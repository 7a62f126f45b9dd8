package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lcheng-dev/homekeep/internal/storage"
)

// Scheduler is the external driver around the engine: it periodically scans
// for reminders whose notify time has arrived and stamps them as fired.
// Delivery itself (push, mail, whatever) is downstream of this service; the
// stamp is what keeps a reminder from being surfaced twice.
type Scheduler struct {
	store         storage.Store
	checkInterval time.Duration
	notifyCh      chan struct{}
}

func New(store storage.Store) *Scheduler {
	return &Scheduler{
		store:         store,
		checkInterval: 1 * time.Minute,
		notifyCh:      make(chan struct{}, 1),
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// Wait a bit for migrations to complete before first check
	select {
	case <-ctx.Done():
		return
	case <-time.After(2 * time.Second):
	}

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	now := time.Now().UTC()
	due, err := s.store.DueReminders(ctx, now)
	if err != nil {
		log.Printf("Failed to get due reminders: %v", err)
		return
	}

	for _, reminder := range due {
		fired := reminder.NextRemindTime
		out := reminder.Clone()
		out.LastRemindTime = &fired

		if err := s.store.SaveReminder(ctx, out); err != nil {
			if errors.Is(err, storage.ErrConcurrencyConflict) {
				// Someone completed or edited it mid-scan; next tick re-evaluates.
				continue
			}
			log.Printf("Failed to stamp reminder %d: %v", reminder.ReminderID, err)
			continue
		}
		log.Printf("Reminder %d due for user %d (scheduled %s, advance %dm)",
			reminder.ReminderID, reminder.UserID,
			fired.Format("2006-01-02 15:04"), reminder.AdvanceMinutes)
	}
}
