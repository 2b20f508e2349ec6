// Package server exposes the engine's consumer operations over HTTP, along
// with health and Prometheus metrics endpoints.
//
// # Routes
//
//   - GET /v1/insights - insights to present now (at most three)
//   - POST /v1/insights/viewed - mark insights presented
//   - POST /v1/insights/dismiss - remove insights
//   - GET /v1/context - current session context
//   - POST /v1/context - replace the session context and seed tasks
//   - PATCH /v1/context - shallow-merge into the session context
//   - POST /v1/analysis/{type} - queue a background analysis task
//   - POST /v1/ask - route a query directly
//   - GET /v1/usage - spend, per-provider breakdown and savings
//   - GET /health - liveness plus provider health
//   - GET /ready - readiness of ledger, providers and scheduler (WithReadiness)
//   - GET /metrics - Prometheus metrics
//
// # Middleware Chain
//
// Requests pass through tracing, CORS, request ID, logging and recovery
// middleware, innermost to outermost. The two routes that spend provider
// budget, /v1/ask and /v1/analysis, can additionally be rate limited per
// client IP (WithRateLimit).
package server
