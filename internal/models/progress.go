package models

import "time"

// ProgressStatus represents the status of a lesson for a user
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// Valid reports whether s is a known status
func (s ProgressStatus) Valid() bool {
	switch s {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted:
		return true
	}
	return false
}

// Progress represents a user's progress on a lesson.
// VideoProgress is the playback position in seconds.
type Progress struct {
	ID            int            `json:"id"`
	UserID        int            `json:"user_id"`
	LessonID      int            `json:"lesson_id"`
	Status        ProgressStatus `json:"status"`
	VideoProgress int            `json:"video_progress"`
	CompletedAt   *time.Time     `json:"completed_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// UpdateProgressRequest represents a partial progress update
type UpdateProgressRequest struct {
	Status        *ProgressStatus `json:"status,omitempty"`
	VideoProgress *int            `json:"video_progress,omitempty" validate:"omitempty,min=0"`
}
