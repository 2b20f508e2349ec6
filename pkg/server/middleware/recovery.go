package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// panicBody matches the server's JSON error envelope.
const panicBody = `{"error":{"type":"internal_error","message":"internal server error"}}` + "\n"

// RecoveryMiddleware turns a handler panic into a 500 with the standard
// error body and logs the stack. http.ErrAbortHandler is re-panicked so
// the server can abort the connection.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			slog.ErrorContext(r.Context(), "handler panicked",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(panicBody))
		}()
		next.ServeHTTP(w, r)
	})
}
