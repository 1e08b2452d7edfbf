package service

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eduschool/backend/internal/models"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	// CookieName is the name of the session cookie
	CookieName = "sessionid"
	// CSRFHeader carries the CSRF token on state-changing requests
	CSRFHeader = "X-CSRFToken"

	sessionKeyValue = "session_key"
	csrfTokenValue  = "csrf_token"
	tokenBytes      = 32
)

// ErrNoSession is returned when the request carries no valid session
var ErrNoSession = errors.New("no active session")

// SessionRepository is the interface that wraps methods for user_sessions table data access
type SessionRepository interface {
	// Method Create stores a new session.
	//
	// If the user does not exist, models.ErrMissingReference is returned.
	Create(ctx context.Context, session *models.Session) error
	// Method GetByKey retrieves a session by its key.
	//
	// If the session does not exist, models.ErrNotFound is returned.
	GetByKey(ctx context.Context, key string) (*models.Session, error)
	// Method Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, key string) error
	// Method DeleteExpiredByUser removes sessions of a user that expired at or before now.
	DeleteExpiredByUser(ctx context.Context, userID int, now time.Time) error
}

// SessionManager binds requests to server-side sessions.
// The signed cookie holds only the session key and the CSRF token.
type SessionManager struct {
	store  *sessions.CookieStore
	repo   SessionRepository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionManager creates a new session manager.
// secret signs the cookie; ttl is the absolute lifetime of a session.
func NewSessionManager(repo SessionRepository, secret string, ttl time.Duration, secure bool, logger *zap.Logger) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// Sets both the cookie Max-Age and the signature timestamp limit
	store.MaxAge(int(ttl / time.Second))

	return &SessionManager{
		store:  store,
		repo:   repo,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Start creates a new session for userID and writes the cookie.
// A session already held by the client is deleted and the CSRF token is rotated.
func (m *SessionManager) Start(w http.ResponseWriter, r *http.Request, userID int) error {
	ctx := r.Context()
	cookieSession := m.cookieSession(r)

	if oldKey, ok := cookieSession.Values[sessionKeyValue].(string); ok && oldKey != "" {
		if err := m.repo.Delete(ctx, oldKey); err != nil {
			return fmt.Errorf("failed to delete previous session: %w", err)
		}
	}

	now := m.now()
	if err := m.repo.DeleteExpiredByUser(ctx, userID, now); err != nil {
		m.logger.Warn("failed to delete expired sessions", zap.Int("user_id", userID), zap.Error(err))
	}

	key, err := newToken()
	if err != nil {
		return err
	}
	csrfToken, err := newToken()
	if err != nil {
		return err
	}

	session := &models.Session{
		Key:       key,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	cookieSession.Values[sessionKeyValue] = key
	cookieSession.Values[csrfTokenValue] = csrfToken
	if err := cookieSession.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session cookie: %w", err)
	}

	return nil
}

// Current returns the session bound to the request.
// Missing, unknown and expired sessions yield ErrNoSession; expired rows are deleted.
func (m *SessionManager) Current(r *http.Request) (*models.Session, error) {
	key, ok := m.cookieSession(r).Values[sessionKeyValue].(string)
	if !ok || key == "" {
		return nil, ErrNoSession
	}

	ctx := r.Context()
	session, err := m.repo.GetByKey(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Expired(m.now()) {
		if err := m.repo.Delete(ctx, key); err != nil {
			m.logger.Warn("failed to delete expired session", zap.Int("user_id", session.UserID), zap.Error(err))
		}
		return nil, ErrNoSession
	}

	return session, nil
}

// End deletes the session bound to the request and expires the cookie
func (m *SessionManager) End(w http.ResponseWriter, r *http.Request) error {
	cookieSession := m.cookieSession(r)

	if key, ok := cookieSession.Values[sessionKeyValue].(string); ok && key != "" {
		if err := m.repo.Delete(r.Context(), key); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
	}

	cookieSession.Values = make(map[any]any)
	cookieSession.Options.MaxAge = -1
	if err := cookieSession.Save(r, w); err != nil {
		return fmt.Errorf("failed to expire session cookie: %w", err)
	}

	return nil
}

// CSRFToken returns the CSRF token of the request, issuing one if the client has none
func (m *SessionManager) CSRFToken(w http.ResponseWriter, r *http.Request) (string, error) {
	cookieSession := m.cookieSession(r)

	if token, ok := cookieSession.Values[csrfTokenValue].(string); ok && token != "" {
		return token, nil
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	cookieSession.Values[csrfTokenValue] = token
	if err := cookieSession.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session cookie: %w", err)
	}

	return token, nil
}

// ValidCSRF reports whether the CSRF header matches the token stored in the cookie
func (m *SessionManager) ValidCSRF(r *http.Request) bool {
	expected, ok := m.cookieSession(r).Values[csrfTokenValue].(string)
	if !ok || expected == "" {
		return false
	}

	provided := r.Header.Get(CSRFHeader)
	if provided == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(provided)) == 1
}

// cookieSession returns the decoded cookie session.
// A cookie that fails signature checks is replaced with an empty session.
func (m *SessionManager) cookieSession(r *http.Request) *sessions.Session {
	session, err := m.store.Get(r, CookieName)
	if err != nil {
		m.logger.Debug("discarding invalid session cookie", zap.Error(err))
	}
	return session
}

// newToken returns 32 random bytes encoded as 64 hex characters
func newToken() (string, error) {
	b := securecookie.GenerateRandomKey(tokenBytes)
	if b == nil {
		return "", errors.New("failed to generate random token")
	}
	return hex.EncodeToString(b), nil
}
