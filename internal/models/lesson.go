package models

import "time"

// Lesson represents a lesson. CourseID is nil for lessons outside any course.
type Lesson struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CourseID  *int      `json:"course_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// LessonListItem represents a lesson in list responses, without content
type LessonListItem struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CourseID  *int      `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}
