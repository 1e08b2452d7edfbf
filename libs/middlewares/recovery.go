package middlewares

import (
	"net/http"

	"github.com/eduschool/backend/libs/apperrors"
	"go.uber.org/zap"
)

// RecoveryMiddleware recovers from panics, logs the error and answers with the
// generic failure envelope so internals never reach the client.
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic recovered",
						zap.String("request_id", GetRequestID(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("error", err),
						zap.Stack("stack"),
					)

					writeJSONError(w, apperrors.HTTPStatus(apperrors.KindInternal), apperrors.InternalMessage)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
