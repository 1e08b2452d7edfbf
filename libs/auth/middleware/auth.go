package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/eduschool/backend/internal/models"
	"github.com/eduschool/backend/libs/apperrors"
	"github.com/eduschool/backend/libs/auth/service"
	"github.com/eduschool/backend/libs/handlers"
	"go.uber.org/zap"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthRequiredMessage is reported when a request carries no valid session
const AuthRequiredMessage = "Требуется авторизация"

// SessionResolver resolves the session bound to a request
type SessionResolver interface {
	Current(r *http.Request) (*models.Session, error)
}

// AuthMiddleware resolves the session cookie and stores the user ID in the request context.
// Requests without a valid session are rejected with 401.
func AuthMiddleware(sessions SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	base := &handlers.BaseHandler{Logger: logger}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.Current(r)
			if errors.Is(err, service.ErrNoSession) {
				base.RespondServiceError(w, r, apperrors.Unauthenticated(AuthRequiredMessage))
				return
			}
			if err != nil {
				base.RespondServiceError(w, r, apperrors.Internal(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), session.UserID)))
		})
	}
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDKey).(int)
	return userID, ok
}

// WithUserID returns a copy of ctx carrying userID
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
