package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eduschool/backend/internal/models"
)

// ensureProgressQuery creates the default record if it is missing. The unique
// (user_id, lesson_id) index turns a concurrent second insert into a no-op.
const ensureProgressQuery = `
	INSERT INTO user_progress (user_id, lesson_id, status, video_progress)
	VALUES (?, ?, 'not_started', 0)
	ON DUPLICATE KEY UPDATE id = id
`

const selectProgressQuery = `
	SELECT id, user_id, lesson_id, status, video_progress, completed_at, updated_at
	FROM user_progress
	WHERE user_id = ? AND lesson_id = ?
`

// deadlockAttempts bounds how often a statement or transaction aborted by an
// InnoDB deadlock is run again
const deadlockAttempts = 3

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// GetOrCreate returns the progress record of a user for a lesson, creating a
// not_started record when none exists
func (r *progressRepository) GetOrCreate(ctx context.Context, userID, lessonID int) (*models.Progress, error) {
	var err error
	for attempt := 0; attempt < deadlockAttempts; attempt++ {
		_, err = r.db.ExecContext(ctx, ensureProgressQuery, userID, lessonID)
		if mysqlErrorNumber(err) != errDeadlock {
			break
		}
	}
	if err != nil {
		if mysqlErrorNumber(err) == errNoReferencedRow {
			return nil, models.ErrMissingReference
		}
		return nil, fmt.Errorf("failed to create progress record: %w", err)
	}

	progress, err := scanProgress(r.db.QueryRowContext(ctx, selectProgressQuery, userID, lessonID))
	if err != nil {
		return nil, fmt.Errorf("failed to get progress record: %w", err)
	}

	return progress, nil
}

// Update applies mutate to the progress record of a user for a lesson inside a
// transaction. The row is locked with SELECT ... FOR UPDATE, so concurrent
// updates of the same record run one after another.
// A transaction aborted by a deadlock is run again from the start, calling mutate on the fresh row.
// If mutate returns an error the transaction is rolled back and the error is returned as is.
func (r *progressRepository) Update(ctx context.Context, userID, lessonID int, mutate func(*models.Progress) error) (*models.Progress, error) {
	var (
		progress *models.Progress
		err      error
	)
	for attempt := 0; attempt < deadlockAttempts; attempt++ {
		progress, err = r.updateOnce(ctx, userID, lessonID, mutate)
		if mysqlErrorNumber(err) != errDeadlock {
			break
		}
	}
	return progress, err
}

func (r *progressRepository) updateOnce(ctx context.Context, userID, lessonID int, mutate func(*models.Progress) error) (*models.Progress, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, ensureProgressQuery, userID, lessonID); err != nil {
		if mysqlErrorNumber(err) == errNoReferencedRow {
			return nil, models.ErrMissingReference
		}
		return nil, fmt.Errorf("failed to create progress record: %w", err)
	}

	progress, err := scanProgress(tx.QueryRowContext(ctx, selectProgressQuery+" FOR UPDATE", userID, lessonID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock progress record: %w", err)
	}

	if err := mutate(progress); err != nil {
		return nil, err
	}

	query := `
		UPDATE user_progress
		SET status = ?, video_progress = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`

	var completedAt sql.NullTime
	if progress.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *progress.CompletedAt, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, query,
		progress.Status,
		progress.VideoProgress,
		completedAt,
		progress.UpdatedAt,
		progress.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update progress record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return progress, nil
}

func scanProgress(row *sql.Row) (*models.Progress, error) {
	var progress models.Progress
	var completedAt sql.NullTime
	err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.LessonID,
		&progress.Status,
		&progress.VideoProgress,
		&completedAt,
		&progress.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		t := completedAt.Time
		progress.CompletedAt = &t
	}
	return &progress, nil
}
