package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/libs/apperrors"
	"github.com/eduschool/backend/libs/auth/middleware"
	"github.com/eduschool/backend/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for account business logic.
type AuthService interface {
	// Method Register validates the request and creates an active account.
	//
	// Validation and uniqueness failures are returned as *apperrors.Error together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	// Method Login checks the credentials and returns the account.
	//
	// Unknown email, wrong password and inactive account all return the same *apperrors.Error.
	Login(ctx context.Context, req *models.LoginRequest) (*models.User, error)
	// Method CurrentUser returns the account bound to a session.
	//
	// A deleted or inactive account is returned as an unauthenticated error.
	CurrentUser(ctx context.Context, userID int) (*models.User, error)
}

// SessionManager is the interface that wraps methods for cookie session handling.
type SessionManager interface {
	// Method Start creates a new session for userID and writes the session cookie.
	Start(w http.ResponseWriter, r *http.Request, userID int) error
	// Method End deletes the session of the request and expires the cookie.
	End(w http.ResponseWriter, r *http.Request) error
	// Method CSRFToken returns the CSRF token of the request, issuing one if needed.
	CSRFToken(w http.ResponseWriter, r *http.Request) (string, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	handlers.BaseHandler
	authService AuthService
	sessions    SessionManager
	now         func() time.Time
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, sessions SessionManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		authService: authService,
		sessions:    sessions,
		now:         time.Now,
	}
}

// RegisterRoutes registers all auth handler routes.
// Register and login do not require a CSRF token.
func (h *AuthHandler) RegisterRoutes(r chi.Router, sessionMiddleware, csrfMiddleware func(http.Handler) http.Handler) {
	r.Get("/csrf/", h.CSRF)
	r.Get("/test/", h.Test)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register/", h.Register)
		r.Post("/login/", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(sessionMiddleware)
			r.Get("/user/", h.CurrentUser)
			r.With(csrfMiddleware).Post("/logout/", h.Logout)
		})
	})
}

// CSRF handles GET /csrf/
// @Summary Get CSRF token
// @Description Issues a CSRF token stored in the session cookie. Send it back in the X-CSRFToken header.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /csrf/ [get]
func (h *AuthHandler) CSRF(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.CSRFToken(w, r)
	if err != nil {
		h.RespondServiceError(w, r, apperrors.Internal(err))
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{"csrfToken": token})
}

// Test handles GET /test/
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router /test/ [get]
func (h *AuthHandler) Test(w http.ResponseWriter, r *http.Request) {
	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{
		"message":   "API работает!",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// Register handles POST /auth/register/
// @Summary Register a new user
// @Description Creates an account and starts a session. Username defaults to the local part of the email.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any "Validation error or user already exists"
// @Router /auth/register/ [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if err := h.sessions.Start(w, r, user.ID); err != nil {
		h.RespondServiceError(w, r, apperrors.Internal(err))
		return
	}

	h.RespondSuccess(w, http.StatusCreated, handlers.Envelope{
		"message": "Регистрация успешна!",
		"user":    user.Public(),
	})
}

// Login handles POST /auth/login/
// @Summary Log in
// @Description Checks credentials and starts a new session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any "Missing or invalid credentials"
// @Router /auth/login/ [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	user, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	if err := h.sessions.Start(w, r, user.ID); err != nil {
		h.RespondServiceError(w, r, apperrors.Internal(err))
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{
		"message": "Вход выполнен успешно!",
		"user":    user.Public(),
	})
}

// Logout handles POST /auth/logout/
// @Summary Log out
// @Description Ends the current session. Requires the X-CSRFToken header.
// @Tags auth
// @Produce json
// @Param X-CSRFToken header string true "CSRF token"
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any "No session"
// @Failure 403 {object} map[string]any "Missing or wrong CSRF token"
// @Router /auth/logout/ [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		h.RespondServiceError(w, r, apperrors.Internal(err))
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{"message": "Выход выполнен успешно"})
}

// CurrentUser handles GET /auth/user/
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any "No session"
// @Router /auth/user/ [get]
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.RespondServiceError(w, r, apperrors.Unauthenticated(middleware.AuthRequiredMessage))
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), userID)
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, handlers.Envelope{"user": user.Public()})
}
