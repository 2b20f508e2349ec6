package metrics

import (
	"time"

	"sentinel-hq/sentinel/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// providerLatencyBuckets span quick search lookups up to long premium
// completions.
var providerLatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// ProviderMetrics covers calls to the three provider routes, labelled by
// provider name:
//
//	<ns>_<sub>_provider_health                gauge, 1 healthy / 0 unhealthy
//	<ns>_<sub>_provider_latency_seconds       histogram
//	<ns>_<sub>_provider_errors_total          counter, by error_type
type ProviderMetrics struct {
	health  *prometheus.GaugeVec
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
}

// NewProviderMetrics registers the provider families on registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: cfg.Namespace, Subsystem: cfg.Subsystem, Name: name, Help: help}
	}

	pm := &ProviderMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts(opts("provider_health", "Whether the provider route is currently healthy")),
			[]string{"provider"},
		),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "provider_latency_seconds",
			Help:      "Latency of provider route calls",
			Buckets:   providerLatencyBuckets,
		}, []string{"provider"}),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts(opts("provider_errors_total", "Failed provider route calls by error type")),
			[]string{"provider", "error_type"},
		),
	}
	registry.MustRegister(pm.health, pm.latency, pm.errors)
	return pm
}

// UpdateHealth sets the health gauge of provider.
func (pm *ProviderMetrics) UpdateHealth(provider string, healthy bool) {
	var v float64
	if healthy {
		v = 1
	}
	pm.health.WithLabelValues(provider).Set(v)
}

// RecordLatency observes one call to provider.
func (pm *ProviderMetrics) RecordLatency(provider string, latency time.Duration) {
	pm.latency.WithLabelValues(provider).Observe(latency.Seconds())
}

// RecordError counts one failed call to provider.
func (pm *ProviderMetrics) RecordError(provider, errorType string) {
	pm.errors.WithLabelValues(provider, errorType).Inc()
}
