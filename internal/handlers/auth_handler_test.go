package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/libs/apperrors"
	"github.com/eduschool/backend/libs/auth/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	user        *models.User
	err         error
	registerReq *models.RegisterRequest
	loginReq    *models.LoginRequest
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	m.registerReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	m.loginReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

// mockSessionManager is a mock implementation of SessionManager
type mockSessionManager struct {
	startedFor int
	ended      bool
	token      string
	err        error
}

func (m *mockSessionManager) Start(w http.ResponseWriter, r *http.Request, userID int) error {
	if m.err != nil {
		return m.err
	}
	m.startedFor = userID
	http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "signed", HttpOnly: true})
	return nil
}

func (m *mockSessionManager) End(w http.ResponseWriter, r *http.Request) error {
	if m.err != nil {
		return m.err
	}
	m.ended = true
	return nil
}

func (m *mockSessionManager) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

var testUser = &models.User{ID: 3, Username: "alice", Email: "alice@example.com", PasswordHash: "$2a$10$hash", IsActive: true}

func newAuthRouter(svc AuthService, sessions SessionManager, sessionMW func(http.Handler) http.Handler, csrfToken string) *chi.Mux {
	h := NewAuthHandler(svc, sessions, zap.NewNop())
	h.now = func() time.Time { return time.Date(2025, 4, 1, 8, 30, 0, 0, time.UTC) }
	return newRouter(func(r chi.Router) {
		h.RegisterRoutes(r, sessionMW, csrf(csrfToken))
	})
}

func TestNewAuthHandler(t *testing.T) {
	svc := &mockAuthService{}
	sessions := &mockSessionManager{}

	h := NewAuthHandler(svc, sessions, zap.NewNop())

	assert.NotNil(t, h)
	assert.Equal(t, svc, h.authService)
	assert.Equal(t, sessions, h.sessions)
}

func TestAuthHandler_Test(t *testing.T) {
	router := newAuthRouter(&mockAuthService{}, &mockSessionManager{}, anonymous(), "")

	rec := doRequest(t, router, http.MethodGet, "/api/test/", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "API работает!", body["message"])
	assert.Equal(t, "2025-04-01T08:30:00Z", body["timestamp"])
}

func TestAuthHandler_CSRF(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{}, &mockSessionManager{token: "tok"}, anonymous(), "")

		rec := doRequest(t, router, http.MethodGet, "/api/csrf/", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tok", decodeBody(t, rec)["csrfToken"])
	})

	t.Run("session error", func(t *testing.T) {
		router := newAuthRouter(&mockAuthService{}, &mockSessionManager{err: errors.New("boom")}, anonymous(), "")

		rec := doRequest(t, router, http.MethodGet, "/api/csrf/", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperrors.InternalMessage, decodeBody(t, rec)["error"])
	})
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		service         *mockAuthService
		sessions        *mockSessionManager
		expectedStatus  int
		expectedError   string
		expectedSession bool
	}{
		{
			name:            "success",
			body:            `{"email":"alice@example.com","password":"secret1"}`,
			service:         &mockAuthService{user: testUser},
			sessions:        &mockSessionManager{},
			expectedStatus:  http.StatusCreated,
			expectedSession: true,
		},
		{
			name:           "malformed json",
			body:           `{"email":`,
			service:        &mockAuthService{user: testUser},
			sessions:       &mockSessionManager{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Некорректный JSON",
		},
		{
			name:           "validation error",
			body:           `{"email":"","password":""}`,
			service:        &mockAuthService{err: apperrors.Validation("Email и пароль обязательны")},
			sessions:       &mockSessionManager{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Email и пароль обязательны",
		},
		{
			name:           "conflict",
			body:           `{"email":"alice@example.com","password":"secret1"}`,
			service:        &mockAuthService{err: apperrors.Conflict("Пользователь с таким email уже существует")},
			sessions:       &mockSessionManager{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Пользователь с таким email уже существует",
		},
		{
			name:           "session start failure",
			body:           `{"email":"alice@example.com","password":"secret1"}`,
			service:        &mockAuthService{user: testUser},
			sessions:       &mockSessionManager{err: errors.New("database error")},
			expectedStatus: http.StatusBadRequest,
			expectedError:  apperrors.InternalMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(tt.service, tt.sessions, anonymous(), "")

			rec := doRequest(t, router, http.MethodPost, "/api/auth/register/", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := decodeBody(t, rec)
			if tt.expectedError != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.expectedError, body["error"])
				assert.Empty(t, rec.Result().Cookies())
				return
			}

			assert.Equal(t, true, body["success"])
			assert.Equal(t, "Регистрация успешна!", body["message"])
			user := body["user"].(map[string]any)
			assert.Equal(t, float64(3), user["id"])
			assert.Equal(t, "alice", user["username"])
			assert.Equal(t, "alice@example.com", user["email"])
			assert.NotContains(t, user, "password_hash")
			assert.NotContains(t, rec.Body.String(), "$2a$")
			assert.Equal(t, 3, tt.sessions.startedFor)
			assert.NotEmpty(t, rec.Result().Cookies())
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		sessions := &mockSessionManager{}
		svc := &mockAuthService{user: testUser}
		router := newAuthRouter(svc, sessions, anonymous(), "")

		rec := doRequest(t, router, http.MethodPost, "/api/auth/login/", `{"email":"alice@example.com","password":"secret1"}`, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "Вход выполнен успешно!", body["message"])
		assert.Equal(t, 3, sessions.startedFor)
		assert.Equal(t, "alice@example.com", svc.loginReq.Email)
	})

	t.Run("bad credentials bodies are identical", func(t *testing.T) {
		authErr := apperrors.Auth("Неверный email или пароль")
		router := newAuthRouter(&mockAuthService{err: authErr}, &mockSessionManager{}, anonymous(), "")

		unknown := doRequest(t, router, http.MethodPost, "/api/auth/login/", `{"email":"nobody@example.com","password":"secret1"}`, nil)
		wrong := doRequest(t, router, http.MethodPost, "/api/auth/login/", `{"email":"alice@example.com","password":"nope"}`, nil)

		assert.Equal(t, http.StatusBadRequest, unknown.Code)
		assert.Equal(t, unknown.Code, wrong.Code)
		assert.Equal(t, unknown.Body.Bytes(), wrong.Body.Bytes())
	})

	t.Run("empty body", func(t *testing.T) {
		svc := &mockAuthService{err: apperrors.Validation("Email и пароль обязательны")}
		router := newAuthRouter(svc, &mockSessionManager{}, anonymous(), "")

		rec := doRequest(t, router, http.MethodPost, "/api/auth/login/", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email и пароль обязательны", decodeBody(t, rec)["error"])
		require.NotNil(t, svc.loginReq)
		assert.Empty(t, svc.loginReq.Email)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	tests := []struct {
		name           string
		sessionMW      func(http.Handler) http.Handler
		header         string
		expectedStatus int
		expectedError  string
		expectedEnded  bool
	}{
		{
			name:           "success",
			sessionMW:      loggedIn(3),
			header:         "tok",
			expectedStatus: http.StatusOK,
			expectedEnded:  true,
		},
		{
			name:           "no session",
			sessionMW:      anonymous(),
			header:         "tok",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  middleware.AuthRequiredMessage,
		},
		{
			name:           "missing csrf header",
			sessionMW:      loggedIn(3),
			expectedStatus: http.StatusForbidden,
			expectedError:  middleware.CSRFFailedMessage,
		},
		{
			name:           "wrong csrf header",
			sessionMW:      loggedIn(3),
			header:         "other",
			expectedStatus: http.StatusForbidden,
			expectedError:  middleware.CSRFFailedMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &mockSessionManager{}
			router := newAuthRouter(&mockAuthService{}, sessions, tt.sessionMW, "tok")
			headers := map[string]string{}
			if tt.header != "" {
				headers["X-CSRFToken"] = tt.header
			}

			rec := doRequest(t, router, http.MethodPost, "/api/auth/logout/", "", headers)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := decodeBody(t, rec)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				assert.Equal(t, "Выход выполнен успешно", body["message"])
			}
			assert.Equal(t, tt.expectedEnded, sessions.ended)
		})
	}
}

func TestAuthHandler_CurrentUser(t *testing.T) {
	tests := []struct {
		name           string
		sessionMW      func(http.Handler) http.Handler
		service        *mockAuthService
		expectedStatus int
	}{
		{
			name:           "success",
			sessionMW:      loggedIn(3),
			service:        &mockAuthService{user: testUser},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "no session",
			sessionMW:      anonymous(),
			service:        &mockAuthService{user: testUser},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "account deactivated",
			sessionMW:      loggedIn(3),
			service:        &mockAuthService{err: apperrors.Unauthenticated(middleware.AuthRequiredMessage)},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAuthRouter(tt.service, &mockSessionManager{}, tt.sessionMW, "")

			rec := doRequest(t, router, http.MethodGet, "/api/auth/user/", "", nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			body := decodeBody(t, rec)
			if tt.expectedStatus == http.StatusOK {
				user := body["user"].(map[string]any)
				assert.Equal(t, map[string]any{"id": float64(3), "username": "alice", "email": "alice@example.com"}, user)
			} else {
				assert.Equal(t, middleware.AuthRequiredMessage, body["error"])
			}
		})
	}
}

func TestAuthHandler_CurrentUser_WithoutMiddleware(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{user: testUser}, &mockSessionManager{}, zap.NewNop())
	rec := httptest.NewRecorder()

	h.CurrentUser(rec, httptest.NewRequest(http.MethodGet, "/api/auth/user/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
