package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "budget.daily_budget").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateBudget(&cfg.Budget)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateRouting(&cfg.Routing)...)
	errs = append(errs, validateScheduler(&cfg.Scheduler)...)
	errs = append(errs, validateLedger(&cfg.Ledger)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"})
	}

	return errs
}

func validateBudget(cfg *BudgetConfig) []FieldError {
	var errs []FieldError

	amounts := []struct {
		field string
		value float64
	}{
		{"budget.daily_budget", cfg.DailyBudget},
		{"budget.monthly_budget", cfg.MonthlyBudget},
		{"budget.user_daily_limit", cfg.UserDailyLimit},
		{"budget.user_monthly_limit", cfg.UserMonthlyLimit},
	}
	for _, a := range amounts {
		if a.value < 0 {
			errs = append(errs, FieldError{Field: a.field, Message: "amount must be non-negative"})
		}
	}

	if cfg.AlertThreshold <= 0 || cfg.AlertThreshold > 1 {
		errs = append(errs, FieldError{Field: "budget.alert_threshold", Message: "threshold must be in (0, 1]"})
	}
	if cfg.EmergencyThreshold <= 0 || cfg.EmergencyThreshold > 1 {
		errs = append(errs, FieldError{Field: "budget.emergency_threshold", Message: "threshold must be in (0, 1]"})
	}
	if cfg.EmergencyThreshold > 0 && cfg.EmergencyThreshold < cfg.AlertThreshold {
		errs = append(errs, FieldError{
			Field:   "budget.emergency_threshold",
			Message: "emergency threshold must not be below alert threshold",
		})
	}
	if cfg.MonthlyBudget > 0 && cfg.DailyBudget > cfg.MonthlyBudget {
		errs = append(errs, FieldError{Field: "budget.daily_budget", Message: "daily budget exceeds monthly budget"})
	}
	if cfg.UserDailyLimit > 0 && cfg.DailyBudget > 0 && cfg.UserDailyLimit > cfg.DailyBudget {
		errs = append(errs, FieldError{Field: "budget.user_daily_limit", Message: "user daily limit exceeds daily budget"})
	}

	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	for _, name := range []string{ProviderOpenAI, ProviderPerplexity, ProviderOpenRouter} {
		if _, ok := providers[name]; !ok {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("providers.%s", name),
				Message: "provider is required",
			})
		}
	}

	for name, p := range providers {
		prefix := fmt.Sprintf("providers.%s", name)

		if p.BaseURL == "" {
			errs = append(errs, FieldError{Field: prefix + ".base_url", Message: "base URL is required"})
		} else if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{Field: prefix + ".base_url", Message: "base URL must be an absolute URL"})
		}
		if !strings.HasPrefix(p.Route, "/") {
			errs = append(errs, FieldError{Field: prefix + ".route", Message: "route must start with /"})
		}
		if p.Timeout < 0 {
			errs = append(errs, FieldError{Field: prefix + ".timeout", Message: "timeout must be positive"})
		}
		if p.MaxRetries < 0 {
			errs = append(errs, FieldError{Field: prefix + ".max_retries", Message: "max retries must be non-negative"})
		}
		if p.CostPer1KTokens < 0 || p.CostPerRequest < 0 {
			errs = append(errs, FieldError{Field: prefix + ".cost_per_1k_tokens", Message: "prices must be non-negative"})
		}
	}

	return errs
}

func validateRouting(cfg *RoutingConfig) []FieldError {
	var errs []FieldError

	if cfg.SimpleQueryLength < 0 {
		errs = append(errs, FieldError{Field: "routing.simple_query_length", Message: "length must be non-negative"})
	}
	if cfg.DefaultMaxTokens < 0 {
		errs = append(errs, FieldError{Field: "routing.default_max_tokens", Message: "max tokens must be non-negative"})
	}

	return errs
}

func validateScheduler(cfg *SchedulerConfig) []FieldError {
	var errs []FieldError

	if cfg.ProcessInterval <= 0 {
		errs = append(errs, FieldError{Field: "scheduler.process_interval", Message: "interval must be positive"})
	}
	if cfg.CleanupInterval <= 0 {
		errs = append(errs, FieldError{Field: "scheduler.cleanup_interval", Message: "interval must be positive"})
	}
	if cfg.TaskTimeout <= 0 {
		errs = append(errs, FieldError{Field: "scheduler.task_timeout", Message: "timeout must be positive"})
	}
	if _, err := cron.ParseStandard(cfg.PriceTrackingSchedule); err != nil {
		errs = append(errs, FieldError{
			Field:   "scheduler.price_tracking_schedule",
			Message: fmt.Sprintf("invalid cron expression: %v", err),
		})
	}

	return errs
}

func validateLedger(cfg *LedgerConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "ledger.sqlite.path", Message: "path is required for sqlite backend"})
		}
	case "redis":
		if cfg.Redis.Addr == "" {
			errs = append(errs, FieldError{Field: "ledger.redis.addr", Message: "address is required for redis backend"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "ledger.backend",
			Message: fmt.Sprintf("unknown backend %q (expected memory, sqlite or redis)", cfg.Backend),
		})
	}

	if cfg.Capacity <= 0 {
		errs = append(errs, FieldError{Field: "ledger.capacity", Message: "capacity must be positive"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown log level %q", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown log format %q", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "path must start with /"})
	}

	switch cfg.Tracing.Sampler {
	case "always", "never":
	case "ratio":
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "ratio must be between 0 and 1"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("unknown sampler %q (expected always, never or ratio)", cfg.Tracing.Sampler),
		})
	}

	return errs
}
