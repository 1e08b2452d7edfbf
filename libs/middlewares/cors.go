package middlewares

import (
	"net/http"
	"slices"

	"github.com/rs/cors"
)

// CORSMiddleware creates a CORS middleware with the specified allowed origins.
// Credentials are allowed so the session cookie travels with cross-origin requests.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-CSRFToken", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           3600,
	}

	// Browsers reject "*" together with credentials, so reflect the request origin instead
	if slices.Contains(allowedOrigins, "*") {
		opts.AllowedOrigins = nil
		opts.AllowOriginFunc = func(origin string) bool { return true }
	}

	return cors.New(opts).Handler
}
