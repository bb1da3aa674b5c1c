// Package storage persists per-user course progress in Postgres.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// User is one row of lifetime state per Telegram identity. Rows are created
// on first contact and never deleted; unreachable users are only flagged
// inactive.
type User struct {
	ID            int64          `db:"id"`
	DisplayName   string         `db:"display_name"`
	Handle        sql.NullString `db:"handle"`
	Locale        sql.NullString `db:"locale"`
	IsActive      bool           `db:"is_active"`
	LastStepIndex int            `db:"last_step_index"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

// Profile carries the best-effort identity fields refreshed on every
// interaction.
type Profile struct {
	ID          int64
	DisplayName string
	Handle      string
	Locale      string
}

// Stats is the aggregate view served to operators.
type Stats struct {
	Total     int `db:"total"`
	Active    int `db:"active"`
	Completed int `db:"completed"`
}

// Store wraps the users table. All writes are last-write-wins on id.
type Store struct {
	db *sqlx.DB
}

// New builds a Store over an open connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Upsert inserts the user on first contact and refreshes profile fields on
// every subsequent one. A returning user is re-activated: reaching out again
// proves the identity is deliverable.
func (s *Store) Upsert(ctx context.Context, p Profile) error {
	const q = `
		INSERT INTO users (id, display_name, handle, locale, is_active, last_step_index)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), TRUE, 0)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			handle       = EXCLUDED.handle,
			locale       = EXCLUDED.locale,
			is_active    = TRUE,
			updated_at   = now()`
	if _, err := s.db.ExecContext(ctx, q, p.ID, p.DisplayName, p.Handle, p.Locale); err != nil {
		return fmt.Errorf("upsert user %d: %w", p.ID, err)
	}
	return nil
}

// SetProgress records the cursor for a user. completed_at is write-once: the
// COALESCE keeps the first completion timestamp across later restarts.
func (s *Store) SetProgress(ctx context.Context, id int64, index int, completed bool) error {
	const q = `
		UPDATE users SET
			last_step_index = $2,
			completed_at    = COALESCE(completed_at, CASE WHEN $3 THEN now() END),
			updated_at      = now()
		WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id, index, completed); err != nil {
		return fmt.Errorf("set progress for %d: %w", id, err)
	}
	return nil
}

// SetInactive flags an identity as permanently unreachable.
func (s *Store) SetInactive(ctx context.Context, id int64) error {
	const q = `UPDATE users SET is_active = FALSE, updated_at = now() WHERE id = $1`
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deactivate user %d: %w", id, err)
	}
	return nil
}

// Progress returns the stored cursor for a user. An unknown identity reads
// as position zero.
func (s *Store) Progress(ctx context.Context, id int64) (int, error) {
	var idx int
	err := s.db.GetContext(ctx, &idx, `SELECT last_step_index FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load progress for %d: %w", id, err)
	}
	return idx, nil
}

// Get loads the full row for one identity, or nil when it was never seen.
func (s *Store) Get(ctx context.Context, id int64) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &u, nil
}

// ActiveIDs lists every identity broadcast messages should reach.
func (s *Store) ActiveIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.SelectContext(ctx, &ids, `SELECT id FROM users WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return ids, nil
}

// Aggregate computes the operator stats in one round trip.
func (s *Store) Aggregate(ctx context.Context) (Stats, error) {
	const q = `
		SELECT
			count(*)                                        AS total,
			count(*) FILTER (WHERE is_active)               AS active,
			count(*) FILTER (WHERE completed_at IS NOT NULL) AS completed
		FROM users`
	var st Stats
	if err := s.db.GetContext(ctx, &st, q); err != nil {
		return Stats{}, fmt.Errorf("aggregate users: %w", err)
	}
	return st, nil
}
