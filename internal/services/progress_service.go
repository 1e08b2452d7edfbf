package services

import (
	"context"
	"errors"
	"time"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/libs/apperrors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProgressRepository is the interface that wraps methods for user_progress table data access
type ProgressRepository interface {
	// Method GetOrCreate returns the record of a user for a lesson, creating a not_started record if needed.
	//
	// If the lesson does not exist, models.ErrMissingReference is returned.
	GetOrCreate(ctx context.Context, userID, lessonID int) (*models.Progress, error)
	// Method Update applies mutate to the locked record of a user for a lesson and stores the result.
	//
	// An error returned by mutate aborts the update and is returned as is.
	// If the lesson does not exist, models.ErrMissingReference is returned.
	Update(ctx context.Context, userID, lessonID int, mutate func(*models.Progress) error) (*models.Progress, error)
}

type progressService struct {
	repo     ProgressRepository
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(repo ProgressRepository, logger *zap.Logger) *progressService {
	return &progressService{
		repo:     repo,
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

// GetOrCreate returns the progress of a user on a lesson
func (s *progressService) GetOrCreate(ctx context.Context, userID, lessonID int) (*models.Progress, error) {
	progress, err := s.repo.GetOrCreate(ctx, userID, lessonID)
	if err != nil {
		return nil, s.mapError(err)
	}
	return progress, nil
}

// Update applies a partial update to the progress of a user on a lesson.
//
// completed_at is set when the status becomes completed, kept while it stays
// completed and cleared when it leaves completed. updated_at strictly increases.
func (s *progressService) Update(ctx context.Context, userID, lessonID int, req *models.UpdateProgressRequest) (*models.Progress, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperrors.Validation(MsgInvalidStatus)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(MsgNegativeVideo)
	}

	progress, err := s.repo.Update(ctx, userID, lessonID, func(p *models.Progress) error {
		s.apply(p, req)
		return nil
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return progress, nil
}

func (s *progressService) apply(p *models.Progress, req *models.UpdateProgressRequest) {
	// DATETIME(6) keeps microseconds
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(p.UpdatedAt) {
		now = p.UpdatedAt.Add(time.Microsecond)
	}

	if req.Status != nil {
		switch {
		case *req.Status != models.ProgressCompleted:
			p.CompletedAt = nil
		case p.Status != models.ProgressCompleted:
			completedAt := now
			p.CompletedAt = &completedAt
		}
		p.Status = *req.Status
	}

	if req.VideoProgress != nil {
		p.VideoProgress = *req.VideoProgress
	}

	p.UpdatedAt = now
}

func (s *progressService) mapError(err error) error {
	if errors.Is(err, models.ErrMissingReference) {
		return apperrors.NotFound(MsgLessonNotFound)
	}
	return apperrors.Internal(err)
}
