package config

import "time"

// Config is the root configuration structure for the Sentinel engine.
type Config struct {
	// Server contains the HTTP surface configuration.
	Server ServerConfig `yaml:"server"`

	// Budget contains global and per-user spending ceilings and alert
	// thresholds.
	Budget BudgetConfig `yaml:"budget"`

	// Providers contains the three provider adapters keyed by name
	// (openai, perplexity, openrouter).
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Routing contains selection policy tuning.
	Routing RoutingConfig `yaml:"routing"`

	// Scheduler contains background task scheduling intervals.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Ledger contains usage ledger storage configuration.
	Ledger LedgerConfig `yaml:"ledger"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 15s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	// Default: 15s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// AllowedOrigins lists browser origins allowed to call the API. "*"
	// allows any origin. Empty disables CORS headers.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// RateLimit caps /v1/ask and /v1/analysis calls per client IP, in the
	// form "<limit>-<S|M|H|D>" (e.g. "30-M"). Empty disables limiting.
	RateLimit string `yaml:"rate_limit"`
}

// BudgetConfig contains spending ceilings in USD.
type BudgetConfig struct {
	// DailyBudget is the global spend ceiling per calendar day.
	// Default: 50
	DailyBudget float64 `yaml:"daily_budget"`

	// MonthlyBudget is the global spend ceiling per calendar month.
	// Default: 1000
	MonthlyBudget float64 `yaml:"monthly_budget"`

	// AlertThreshold is the daily utilization (0-1) that raises a warning
	// alert and enables premium-provider rerouting.
	// Default: 0.8
	AlertThreshold float64 `yaml:"alert_threshold"`

	// EmergencyThreshold is the daily utilization (0-1) that raises an
	// emergency alert.
	// Default: 0.95
	EmergencyThreshold float64 `yaml:"emergency_threshold"`

	// UserDailyLimit is the per-user ceiling per calendar day.
	// Default: 5
	UserDailyLimit float64 `yaml:"user_daily_limit"`

	// UserMonthlyLimit is the per-user ceiling per calendar month.
	// Default: 50
	UserMonthlyLimit float64 `yaml:"user_monthly_limit"`
}

// ProviderConfig contains configuration for a single provider route.
type ProviderConfig struct {
	// BaseURL is the scheme and host serving the provider route.
	BaseURL string `yaml:"base_url"`

	// Route is the path of the normalized endpoint.
	// Default: "/api/ai/<name>"
	Route string `yaml:"route"`

	// APIKey is sent as a bearer token when set.
	APIKey string `yaml:"api_key"`

	// Timeout is the HTTP client timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries on 5xx and network errors.
	// Default: 0
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the first wait between retries; it grows
	// exponentially.
	// Default: 1s
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// CostPer1KTokens is the price used to derive the cost of a call that
	// does not report one, and to rank providers by expense.
	// Default: openai 0.03, perplexity 0.001, openrouter 0.002
	CostPer1KTokens float64 `yaml:"cost_per_1k_tokens"`

	// CostPerRequest is a flat per-call price added to token cost.
	// Default: perplexity 0.005, others 0
	CostPerRequest float64 `yaml:"cost_per_request"`

	// Models lists model tiers offered on this route (openrouter only),
	// keyed by tier name ("cheap", "mid").
	Models map[string]string `yaml:"models"`
}

// RoutingConfig contains selection policy tuning.
type RoutingConfig struct {
	// ComplexKeywords mark compliance queries that need the premium tier.
	// Default: built-in list
	ComplexKeywords []string `yaml:"complex_keywords"`

	// HighValueKeywords mark planning queries that need the premium tier.
	// Default: built-in list
	HighValueKeywords []string `yaml:"high_value_keywords"`

	// SimpleQueryLength is the query length in characters below which the
	// cheapest openrouter tier is used.
	// Default: 100
	SimpleQueryLength int `yaml:"simple_query_length"`

	// DefaultMaxTokens is used to estimate cost when a request sets none.
	// Default: 1000
	DefaultMaxTokens int `yaml:"default_max_tokens"`
}

// SchedulerConfig contains background scheduling configuration.
type SchedulerConfig struct {
	// ProcessInterval is the task queue tick.
	// Default: 10s
	ProcessInterval time.Duration `yaml:"process_interval"`

	// CleanupInterval is the insight expiry sweep tick.
	// Default: 60s
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// PriceTrackingSchedule is a cron expression for periodic price
	// tracking while trips are upcoming.
	// Default: "@every 1h"
	PriceTrackingSchedule string `yaml:"price_tracking_schedule"`

	// TaskTimeout bounds a single provider call made by a task.
	// Default: 30s
	TaskTimeout time.Duration `yaml:"task_timeout"`
}

// LedgerConfig contains usage ledger storage configuration.
type LedgerConfig struct {
	// Backend selects the store: "memory", "sqlite" or "redis".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Capacity is the number of most recent records kept.
	// Default: 1000
	Capacity int `yaml:"capacity"`

	// SQLite contains SQLite store settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Redis contains Redis store settings.
	Redis RedisConfig `yaml:"redis"`
}

// SQLiteConfig contains SQLite store settings.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/usage.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RedisConfig contains Redis store settings.
type RedisConfig struct {
	// Addr is the Redis host:port.
	// Default: "localhost:6379"
	Addr string `yaml:"addr"`

	// Password is the Redis password.
	Password string `yaml:"password"`

	// DB is the Redis database number.
	// Default: 0
	DB int `yaml:"db"`

	// Key is the list key holding usage records.
	// Default: "sentinel:usage"
	Key string `yaml:"key"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactKeys lists attribute keys whose values are masked.
	// Default: ["api_key", "authorization", "password"]
	RedactKeys []string `yaml:"redact_keys"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "sentinel"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "engine"
	Subsystem string `yaml:"subsystem"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "sentinel"
	ServiceName string `yaml:"service_name"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Sampler is the sampling strategy ("always", "never", "ratio").
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces kept by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`
}
