// Package middleware provides the HTTP middleware chain used by the server:
// panic recovery, request IDs, access logging, CORS (github.com/rs/cors) and
// per-client rate limiting (github.com/ulule/limiter/v3).
//
// Middleware is applied innermost to outermost:
//
//	handler = middleware.CORSMiddleware(cfg.AllowedOrigins)(handler)
//	handler = middleware.RequestIDMiddleware(handler)
//	handler = middleware.LoggingMiddleware(handler)
//	handler = middleware.RecoveryMiddleware(handler)
package middleware
