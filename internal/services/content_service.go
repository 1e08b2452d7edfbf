package services

import (
	"context"
	"errors"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/libs/apperrors"
	"go.uber.org/zap"
)

// CourseRepository is the interface that wraps methods for courses table data access
type CourseRepository interface {
	// Method GetAll retrieves all courses ordered by ID.
	//
	// An empty table yields an empty non-nil slice.
	GetAll(ctx context.Context) ([]models.Course, error)
	// Method GetByID retrieves a course by its ID.
	//
	// If course with such ID does not exist, models.ErrNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Course, error)
}

// LessonRepository is the interface that wraps methods for lessons table data access
type LessonRepository interface {
	// Method GetAll retrieves all lessons ordered by ID, without content.
	GetAll(ctx context.Context) ([]models.LessonListItem, error)
	// Method GetByID retrieves a lesson with its content.
	//
	// If lesson with such ID does not exist, models.ErrNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
}

type contentService struct {
	courseRepo CourseRepository
	lessonRepo LessonRepository
	logger     *zap.Logger
}

// NewContentService creates a new content service
func NewContentService(courseRepo CourseRepository, lessonRepo LessonRepository, logger *zap.Logger) *contentService {
	return &contentService{
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		logger:     logger,
	}
}

// ListCourses retrieves all courses
func (s *contentService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courseRepo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return courses, nil
}

// GetCourse retrieves a course by ID
func (s *contentService) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperrors.NotFound(MsgCourseNotFound)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return course, nil
}

// ListLessons retrieves all lessons without content
func (s *contentService) ListLessons(ctx context.Context) ([]models.LessonListItem, error) {
	lessons, err := s.lessonRepo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return lessons, nil
}

// GetLesson retrieves a lesson with its content
func (s *contentService) GetLesson(ctx context.Context, id int) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperrors.NotFound(MsgLessonNotFound)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return lesson, nil
}
