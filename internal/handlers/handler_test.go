package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/libs/auth/middleware"
	"github.com/eduschool/backend/libs/auth/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubResolver resolves every request to the same session or error
type stubResolver struct {
	session *models.Session
	err     error
}

func (s *stubResolver) Current(r *http.Request) (*models.Session, error) {
	return s.session, s.err
}

// stubCSRF accepts requests whose X-CSRFToken header equals token
type stubCSRF struct {
	token string
}

func (s *stubCSRF) ValidCSRF(r *http.Request) bool {
	return s.token != "" && r.Header.Get(service.CSRFHeader) == s.token
}

func loggedIn(userID int) func(http.Handler) http.Handler {
	return middleware.AuthMiddleware(&stubResolver{session: &models.Session{Key: "key", UserID: userID}}, zap.NewNop())
}

func anonymous() func(http.Handler) http.Handler {
	return middleware.AuthMiddleware(&stubResolver{err: service.ErrNoSession}, zap.NewNop())
}

func csrf(token string) func(http.Handler) http.Handler {
	return middleware.CSRFMiddleware(&stubCSRF{token: token}, zap.NewNop())
}

func newRouter(register func(r chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api", register)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
