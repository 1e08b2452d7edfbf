package handlers

import (
	"context"
	"net/http"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/internal/services"
	"github.com/eduschool/backend/libs/apperrors"
	"github.com/eduschool/backend/libs/auth/middleware"
	"github.com/eduschool/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for lesson progress business logic.
type ProgressService interface {
	// Method GetOrCreate returns the progress of a user on a lesson, creating a not_started record if needed.
	GetOrCreate(ctx context.Context, userID, lessonID int) (*models.Progress, error)
	// Method Update applies a partial update to the progress of a user on a lesson.
	Update(ctx context.Context, userID, lessonID int, req *models.UpdateProgressRequest) (*models.Progress, error)
}

// ProgressHandler handles lesson progress requests of the current user
type ProgressHandler struct {
	handlers.BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, sessionMiddleware, csrfMiddleware func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(sessionMiddleware)
		r.Get("/{lessonID}/", h.Get)
		r.With(csrfMiddleware).Put("/{lessonID}/", h.Update)
	})
}

// Get handles GET /progress/{lessonID}/
// @Summary Get lesson progress
// @Tags progress
// @Produce json
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /progress/{lessonID}/ [get]
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, ok := h.target(w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetOrCreate(r.Context(), userID, lessonID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{"progress": progress})
}

// Update handles PUT /progress/{lessonID}/
// @Summary Update lesson progress
// @Description Partial update of status and video position. Requires the X-CSRFToken header.
// @Tags progress
// @Accept json
// @Produce json
// @Param lessonID path int true "Lesson ID"
// @Param X-CSRFToken header string true "CSRF token"
// @Param request body models.UpdateProgressRequest true "Fields to change"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /progress/{lessonID}/ [put]
func (h *ProgressHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, lessonID, ok := h.target(w, r)
	if !ok {
		return
	}

	var req models.UpdateProgressRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	progress, err := h.service.Update(r.Context(), userID, lessonID, &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{"progress": progress})
}

// target extracts the current user and the lesson from the request, writing
// the error response when either is missing
func (h *ProgressHandler) target(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Unauthenticated(middleware.AuthRequiredMessage))
		return 0, 0, false
	}

	lessonID, ok := handlers.ParseID(chi.URLParam(r, "lessonID"))
	if !ok {
		h.RespondServiceError(w, r, apperrors.NotFound(services.MsgLessonNotFound))
		return 0, 0, false
	}

	return userID, lessonID, true
}
