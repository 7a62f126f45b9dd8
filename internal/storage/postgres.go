package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lcheng-dev/homekeep/internal/database"
	"github.com/lcheng-dev/homekeep/internal/models"
)

// querier is the slice of the pgx API shared by the pool and a transaction,
// so the same statements serve both paths.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists reminders and completions in PostgreSQL.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const reminderColumns = `reminder_id, user_id, title, description, category, recurrence_type, recurrence_config,
	 first_remind_time, next_remind_time, last_remind_time, advance_minutes, status,
	 is_active, is_completed, completed_at, version, created_at, updated_at`

func scanReminder(row pgx.Row) (*models.Reminder, error) {
	r := &models.Reminder{}
	err := row.Scan(&r.ReminderID, &r.UserID, &r.Title, &r.Description, &r.Category,
		&r.RecurrenceType, &r.RecurrenceConfig, &r.FirstRemindTime, &r.NextRemindTime,
		&r.LastRemindTime, &r.AdvanceMinutes, &r.Status, &r.IsActive, &r.IsCompleted,
		&r.CompletedAt, &r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *PostgresStore) CreateReminder(ctx context.Context, r *models.Reminder) error {
	return s.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (user_id, title, description, category, recurrence_type, recurrence_config,
		  first_remind_time, next_remind_time, last_remind_time, advance_minutes, status, is_active, is_completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING reminder_id, version, created_at, updated_at`,
		r.UserID, r.Title, r.Description, r.Category, r.RecurrenceType, r.RecurrenceConfig,
		r.FirstRemindTime, r.NextRemindTime, r.LastRemindTime, r.AdvanceMinutes, r.Status,
		r.IsActive, r.IsCompleted,
	).Scan(&r.ReminderID, &r.Version, &r.CreatedAt, &r.UpdatedAt)
}

func (s *PostgresStore) GetReminder(ctx context.Context, id int, userID int64) (*models.Reminder, error) {
	r, err := scanReminder(s.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE reminder_id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) ListReminders(ctx context.Context, userID int64, filter ListFilter) ([]*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1`
	args := []any{userID}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}
	query += " ORDER BY next_remind_time ASC"
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// SaveReminder writes a reminder snapshot back. The UPDATE is guarded by the
// snapshot's version; zero rows affected means another writer got there
// first and the caller must redo the read-compute-write cycle.
func (s *PostgresStore) SaveReminder(ctx context.Context, r *models.Reminder) error {
	if err := saveReminder(ctx, s.db.Pool, r); err != nil {
		return err
	}
	r.Version++
	return nil
}

func saveReminder(ctx context.Context, q querier, r *models.Reminder) error {
	tag, err := q.Exec(ctx,
		`UPDATE reminders
		 SET title = $1, description = $2, category = $3, recurrence_type = $4, recurrence_config = $5,
		     first_remind_time = $6, next_remind_time = $7, last_remind_time = $8, advance_minutes = $9,
		     status = $10, is_active = $11, is_completed = $12, completed_at = $13,
		     version = version + 1, updated_at = NOW()
		 WHERE reminder_id = $14 AND user_id = $15 AND version = $16`,
		r.Title, r.Description, r.Category, r.RecurrenceType, r.RecurrenceConfig,
		r.FirstRemindTime, r.NextRemindTime, r.LastRemindTime, r.AdvanceMinutes,
		r.Status, r.IsActive, r.IsCompleted, r.CompletedAt,
		r.ReminderID, r.UserID, r.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing row from a stale version.
		var exists bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM reminders WHERE reminder_id = $1 AND user_id = $2)`,
			r.ReminderID, r.UserID,
		).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConcurrencyConflict
	}
	return nil
}

// CompleteReminder runs the snapshot update and the completion insert in one
// transaction: a failure in either statement rolls back both, so a retried
// completion never finds a half-applied one.
func (s *PostgresStore) CompleteReminder(ctx context.Context, r *models.Reminder, c *models.Completion) error {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := saveReminder(ctx, tx, r); err != nil {
		return err
	}
	if err := appendCompletion(ctx, tx, c); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.Version++
	return nil
}

func (s *PostgresStore) DeleteReminder(ctx context.Context, id int, userID int64) error {
	tag, err := s.db.Pool.Exec(ctx,
		`DELETE FROM reminders WHERE reminder_id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AppendCompletion(ctx context.Context, c *models.Completion) error {
	return appendCompletion(ctx, s.db.Pool, c)
}

func appendCompletion(ctx context.Context, q querier, c *models.Completion) error {
	return q.QueryRow(ctx,
		`INSERT INTO reminder_completions (id, reminder_id, user_id, completed_at, notes, amount, is_delayed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		c.ID, c.ReminderID, c.UserID, c.CompletedAt, c.Notes, c.Amount, c.IsDelayed,
	).Scan(&c.CreatedAt)
}

func (s *PostgresStore) ListCompletions(ctx context.Context, reminderID int) ([]*models.Completion, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT id, reminder_id, user_id, completed_at, notes, amount, is_delayed, created_at
		 FROM reminder_completions WHERE reminder_id = $1 ORDER BY completed_at DESC`,
		reminderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []*models.Completion
	for rows.Next() {
		c := &models.Completion{}
		if err := rows.Scan(&c.ID, &c.ReminderID, &c.UserID, &c.CompletedAt,
			&c.Notes, &c.Amount, &c.IsDelayed, &c.CreatedAt); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (s *PostgresStore) CompletionTimes(ctx context.Context, reminderID int, limit int) ([]time.Time, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT completed_at FROM (
		   SELECT completed_at FROM reminder_completions
		   WHERE reminder_id = $1 ORDER BY completed_at DESC LIMIT $2
		 ) recent ORDER BY completed_at ASC`,
		reminderID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (s *PostgresStore) Statistics(ctx context.Context, userID int64, now time.Time) (*models.Statistics, error) {
	stats := &models.Statistics{CategoryDistribution: make(map[models.Category]int)}
	for _, cat := range models.Categories() {
		stats.CategoryDistribution[cat] = 0
	}

	err := s.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_completed),
		        COUNT(*) FILTER (WHERE status = 'pending' AND is_active
		                         AND next_remind_time > $2
		                         AND next_remind_time <= $2 + INTERVAL '7 days')
		 FROM reminders WHERE user_id = $1`,
		userID, now,
	).Scan(&stats.TotalCount, &stats.CompletedCount, &stats.UpcomingCount)
	if err != nil {
		return nil, err
	}
	if stats.TotalCount > 0 {
		stats.CompletionRate = float64(stats.CompletedCount) / float64(stats.TotalCount)
	}

	rows, err := s.db.Pool.Query(ctx,
		`SELECT category, COUNT(*) FROM reminders WHERE user_id = $1 GROUP BY category`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat models.Category
		var count int
		if err := rows.Scan(&cat, &count); err != nil {
			return nil, err
		}
		stats.CategoryDistribution[cat] = count
	}
	return stats, rows.Err()
}

func (s *PostgresStore) DueReminders(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+`
		 FROM reminders
		 WHERE status = 'pending' AND is_active
		   AND next_remind_time - advance_minutes * INTERVAL '1 minute' <= $1
		   AND (last_remind_time IS NULL OR last_remind_time < next_remind_time)
		 ORDER BY next_remind_time ASC`,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
