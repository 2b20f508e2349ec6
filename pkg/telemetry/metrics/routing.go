package metrics

import (
	"sentinel-hq/sentinel/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RoutingMetrics tracks provider selection outcomes.
type RoutingMetrics struct {
	decisions    *prometheus.CounterVec
	reroutes     *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	softFailures *prometheus.CounterVec
}

// NewRoutingMetrics creates and registers routing metrics with the provided registry.
func NewRoutingMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RoutingMetrics {
	rm := &RoutingMetrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "routing_decisions_total",
				Help:      "Total provider selections by api and intent",
			},
			[]string{"api", "intent"},
		),
		reroutes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "routing_reroutes_total",
				Help:      "Total budget-driven reroutes by source and target api",
			},
			[]string{"from", "to"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "routing_rejections_total",
				Help:      "Total requests refused by the budget enforcer by reason",
			},
			[]string{"reason"},
		),
		softFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "routing_soft_failures_total",
				Help:      "Total calls answered with a fallback response by api and cause",
			},
			[]string{"api", "cause"},
		),
	}

	registry.MustRegister(rm.decisions, rm.reroutes, rm.rejections, rm.softFailures)

	return rm
}

// RecordDecision increments the decision counter.
func (rm *RoutingMetrics) RecordDecision(apiType, intent string) {
	rm.decisions.WithLabelValues(apiType, intent).Inc()
}

// RecordReroute increments the reroute counter.
func (rm *RoutingMetrics) RecordReroute(from, to string) {
	rm.reroutes.WithLabelValues(from, to).Inc()
}

// RecordRejection increments the rejection counter.
func (rm *RoutingMetrics) RecordRejection(reason string) {
	rm.rejections.WithLabelValues(reason).Inc()
}

// RecordSoftFailure increments the soft-failure counter.
func (rm *RoutingMetrics) RecordSoftFailure(apiType, cause string) {
	rm.softFailures.WithLabelValues(apiType, cause).Inc()
}
