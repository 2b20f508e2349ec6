// Package tracing provides OpenTelemetry tracing for the engine.
//
// # Spans
//
// The engine records one span per unit of work:
//   - engine.task: a background task from dequeue to completion
//   - routing.route: selection, budget admission and the provider call
//   - provider.query: the HTTP call to a provider route
//
// Span attributes use the "sentinel.*" namespace (see attributes.go).
//
// # Trace Context Propagation
//
// W3C Trace Context headers are injected into provider requests and
// extracted from incoming HTTP requests:
//
//	traceparent: 00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01
//
// # Sampling
//
// Three strategies are supported, each wrapped in ParentBased:
//   - always: sample all traces
//   - never: sample no traces
//   - ratio: sample a fraction of traces by trace ID
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "routing.route")
//	defer span.End()
//
// A nil *Tracer is valid and produces no-op spans, so components take an
// optional tracer without branching.
package tracing
