// Package telemetry groups the observability packages of the engine.
//
//   - logging: slog setup with level reloading, context attributes and
//     secret redaction
//   - metrics: Prometheus collectors for routing, budget, provider and
//     task activity
//   - tracing: OpenTelemetry spans for tasks, routing decisions, provider
//     calls and HTTP requests
//   - health: readiness checks served at /ready
//
// Each package is usable on its own. A nil *metrics.Collector and a nil
// *tracing.Tracer are valid and record nothing.
package telemetry
