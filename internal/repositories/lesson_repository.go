package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eduschool/backend/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

// GetAll retrieves all lessons ordered by ID, without content
func (r *lessonRepository) GetAll(ctx context.Context) ([]models.LessonListItem, error) {
	query := `
		SELECT id, title, course_id, created_at
		FROM lessons
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.LessonListItem{}
	for rows.Next() {
		var lesson models.LessonListItem
		var courseID sql.NullInt64
		if err := rows.Scan(&lesson.ID, &lesson.Title, &courseID, &lesson.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lesson.CourseID = nullableID(courseID)
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}

	return lessons, nil
}

// GetByID retrieves a lesson with its content
func (r *lessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	query := `
		SELECT id, title, course_id, content, created_at
		FROM lessons
		WHERE id = ?
		LIMIT 1
	`

	var lesson models.Lesson
	var courseID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&lesson.ID,
		&lesson.Title,
		&courseID,
		&lesson.Content,
		&lesson.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	lesson.CourseID = nullableID(courseID)
	return &lesson, nil
}

func nullableID(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	id := int(v.Int64)
	return &id
}
