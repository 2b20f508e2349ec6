package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware lets browser consumers on the allowed origins call the
// API. "*" allows any origin. With no allowed origins the handler is
// returned unchanged.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(allowedOrigins) == 0 {
			return next
		}
		c := cors.New(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", RequestIDHeader, "X-User-ID", "traceparent"},
			ExposedHeaders: []string{RequestIDHeader},
			MaxAge:         3600,
		})
		return c.Handler(next)
	}
}
