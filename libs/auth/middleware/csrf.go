package middleware

import (
	"net/http"

	"github.com/eduschool/backend/libs/apperrors"
	"github.com/eduschool/backend/libs/handlers"
	"go.uber.org/zap"
)

// CSRFFailedMessage is reported when the CSRF header is missing or wrong
const CSRFFailedMessage = "CSRF токен отсутствует или неверен"

// CSRFValidator checks the CSRF token of a request
type CSRFValidator interface {
	ValidCSRF(r *http.Request) bool
}

// CSRFMiddleware rejects requests whose X-CSRFToken header does not match the
// token stored in the session cookie
func CSRFMiddleware(validator CSRFValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	base := &handlers.BaseHandler{Logger: logger}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !validator.ValidCSRF(r) {
				base.RespondServiceError(w, r, apperrors.Forbidden(CSRFFailedMessage))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
