package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/eduschool/backend/internal/models"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{
		db: db,
	}
}

// Create stores a new session
func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO user_sessions (session_key, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, session.Key, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		if mysqlErrorNumber(err) == errNoReferencedRow {
			return models.ErrMissingReference
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByKey retrieves a session by its key
func (r *sessionRepository) GetByKey(ctx context.Context, key string) (*models.Session, error) {
	query := `
		SELECT session_key, user_id, created_at, expires_at
		FROM user_sessions
		WHERE session_key = ?
		LIMIT 1
	`

	var session models.Session
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&session.Key,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (r *sessionRepository) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM user_sessions WHERE session_key = ?`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteExpiredByUser removes sessions of a user that expired before now
func (r *sessionRepository) DeleteExpiredByUser(ctx context.Context, userID int, now time.Time) error {
	query := `DELETE FROM user_sessions WHERE user_id = ? AND expires_at <= ?`

	if _, err := r.db.ExecContext(ctx, query, userID, now); err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	return nil
}
