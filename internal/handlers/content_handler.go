package handlers

import (
	"context"
	"net/http"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/internal/services"
	"github.com/eduschool/backend/libs/apperrors"
	"github.com/eduschool/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContentService is the interface that wraps methods for course and lesson reads.
type ContentService interface {
	ListCourses(ctx context.Context) ([]models.Course, error)
	// Method GetCourse returns a not found error with a client message if the course does not exist.
	GetCourse(ctx context.Context, id int) (*models.Course, error)
	ListLessons(ctx context.Context) ([]models.LessonListItem, error)
	// Method GetLesson returns a not found error with a client message if the lesson does not exist.
	GetLesson(ctx context.Context, id int) (*models.Lesson, error)
}

// ContentHandler handles course and lesson requests
type ContentHandler struct {
	handlers.BaseHandler
	service ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(svc ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all content handler routes
func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.Get("/{id}/", h.GetCourse)
	})
	r.Route("/lessons", func(r chi.Router) {
		r.Get("/", h.ListLessons)
		r.Get("/{id}/", h.GetLesson)
	})
}

// ListCourses handles GET /courses/
// @Summary List courses
// @Tags courses
// @Produce json
// @Success 200 {object} map[string]any
// @Router /courses/ [get]
func (h *ContentHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{
		"courses": courses,
		"count":   len(courses),
	})
}

// GetCourse handles GET /courses/{id}/
// @Summary Get course
// @Tags courses
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /courses/{id}/ [get]
func (h *ContentHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.ParseID(chi.URLParam(r, "id"))
	if !ok {
		h.RespondServiceError(w, r, apperrors.NotFound(services.MsgCourseNotFound))
		return
	}

	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{"course": course})
}

// ListLessons handles GET /lessons/
// @Summary List lessons
// @Description Lists lessons without their content
// @Tags lessons
// @Produce json
// @Success 200 {object} map[string]any
// @Router /lessons/ [get]
func (h *ContentHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListLessons(r.Context())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{
		"lessons": lessons,
		"count":   len(lessons),
	})
}

// GetLesson handles GET /lessons/{id}/
// @Summary Get lesson
// @Tags lessons
// @Produce json
// @Param id path int true "Lesson ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /lessons/{id}/ [get]
func (h *ContentHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.ParseID(chi.URLParam(r, "id"))
	if !ok {
		h.RespondServiceError(w, r, apperrors.NotFound(services.MsgLessonNotFound))
		return
	}

	lesson, err := h.service.GetLesson(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{"lesson": lesson})
}
