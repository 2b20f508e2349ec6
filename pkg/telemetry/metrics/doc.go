// Package metrics provides Prometheus metrics for the Sentinel engine.
//
// # Metrics Categories
//
//   - Budget Metrics: spend per window, daily utilization, recorded usage
//     and alerts
//   - Routing Metrics: provider selections, reroutes, rejections and soft
//     failures
//   - Provider Metrics: provider health, latency and error counts
//   - Task Metrics: background task outcomes, durations, queue depth and
//     live insights
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordUsage("perplexity", 0.0065, 1500)
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// Every Collector method is safe to call on a nil *Collector and on a
// collector whose configuration has Enabled set to false; both are no-ops.
// Components therefore accept an optional collector without guarding
// each call.
package metrics
