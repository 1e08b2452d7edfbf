package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eduschool/backend/libs/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestBaseHandler_RespondSuccess(t *testing.T) {
	h := &BaseHandler{Logger: zap.NewNop()}
	w := httptest.NewRecorder()

	h.RespondSuccess(w, http.StatusCreated, Envelope{"message": "ok", "count": 2})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["message"])
	assert.Equal(t, float64(2), body["count"])
}

func TestBaseHandler_RespondServiceError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{name: "validation", err: apperrors.Validation("Email и пароль обязательны"), expectedStatus: http.StatusBadRequest, expectedMessage: "Email и пароль обязательны"},
		{name: "conflict", err: apperrors.Conflict("Пользователь с таким email уже существует"), expectedStatus: http.StatusBadRequest, expectedMessage: "Пользователь с таким email уже существует"},
		{name: "auth", err: apperrors.Auth("Неверный email или пароль"), expectedStatus: http.StatusBadRequest, expectedMessage: "Неверный email или пароль"},
		{name: "unauthenticated", err: apperrors.Unauthenticated("Требуется авторизация"), expectedStatus: http.StatusUnauthorized, expectedMessage: "Требуется авторизация"},
		{name: "not found", err: apperrors.NotFound("Курс не найден"), expectedStatus: http.StatusNotFound, expectedMessage: "Курс не найден"},
		{name: "unexpected error hides details", err: errors.New("Error 1045: Access denied for user 'root'"), expectedStatus: http.StatusBadRequest, expectedMessage: apperrors.InternalMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{Logger: zap.NewNop()}
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			h.RespondServiceError(w, r, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.expectedMessage, body["error"])
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name          string
		body          string
		expectedEmail string
		expectedError bool
	}{
		{name: "valid body", body: `{"email":"a@b.com"}`, expectedEmail: "a@b.com"},
		{name: "empty body", body: ``, expectedEmail: ""},
		{name: "malformed body", body: `{"email":`, expectedError: true},
		{name: "wrong type", body: `{"email":5}`, expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload

			err := DecodeJSON(r, &p)

			if tt.expectedError {
				assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEmail, p.Email)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw        string
		expectedID int
		expectedOK bool
	}{
		{raw: "1", expectedID: 1, expectedOK: true},
		{raw: "42", expectedID: 42, expectedOK: true},
		{raw: "0", expectedOK: false},
		{raw: "-3", expectedOK: false},
		{raw: "abc", expectedOK: false},
		{raw: "", expectedOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, ok := ParseID(tt.raw)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}
