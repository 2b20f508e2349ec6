package config

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDefaultConfig_IsValid(t *testing.T) {
	if err := Validate(NewDefaultConfig()); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{
			name:      "negative daily budget",
			modify:    func(c *Config) { c.Budget.DailyBudget = -1 },
			wantField: "budget.daily_budget",
		},
		{
			name:      "alert threshold above one",
			modify:    func(c *Config) { c.Budget.AlertThreshold = 1.5 },
			wantField: "budget.alert_threshold",
		},
		{
			name: "emergency below alert",
			modify: func(c *Config) {
				c.Budget.AlertThreshold = 0.9
				c.Budget.EmergencyThreshold = 0.8
			},
			wantField: "budget.emergency_threshold",
		},
		{
			name:      "user limit above daily budget",
			modify:    func(c *Config) { c.Budget.UserDailyLimit = 100 },
			wantField: "budget.user_daily_limit",
		},
		{
			name:      "missing provider",
			modify:    func(c *Config) { delete(c.Providers, ProviderPerplexity) },
			wantField: "providers.perplexity",
		},
		{
			name: "relative base url",
			modify: func(c *Config) {
				p := c.Providers[ProviderOpenAI]
				p.BaseURL = "app.example.com"
				c.Providers[ProviderOpenAI] = p
			},
			wantField: "providers.openai.base_url",
		},
		{
			name:      "bad cron schedule",
			modify:    func(c *Config) { c.Scheduler.PriceTrackingSchedule = "every hour" },
			wantField: "scheduler.price_tracking_schedule",
		},
		{
			name:      "zero process interval",
			modify:    func(c *Config) { c.Scheduler.ProcessInterval = -1 },
			wantField: "scheduler.process_interval",
		},
		{
			name:      "unknown ledger backend",
			modify:    func(c *Config) { c.Ledger.Backend = "dynamo" },
			wantField: "ledger.backend",
		},
		{
			name:      "unknown log level",
			modify:    func(c *Config) { c.Telemetry.Logging.Level = "trace" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "unknown tracing sampler",
			modify:    func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" },
			wantField: "telemetry.tracing.sampler",
		},
		{
			name: "sample ratio out of range",
			modify: func(c *Config) {
				c.Telemetry.Tracing.Sampler = "ratio"
				c.Telemetry.Tracing.SampleRatio = 1.5
			},
			wantField: "telemetry.tracing.sample_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verr.Errors)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if single.Error() != "configuration validation failed: a: bad" {
		t.Errorf("unexpected single message %q", single.Error())
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	if !strings.Contains(multi.Error(), "2 errors") {
		t.Errorf("expected error count in message, got %q", multi.Error())
	}
}

func TestApplyDefaults_PreservesSetValues(t *testing.T) {
	cfg := &Config{
		Budget:    BudgetConfig{DailyBudget: 10, AlertThreshold: 0.5},
		Scheduler: SchedulerConfig{PriceTrackingSchedule: "0 * * * *"},
	}
	ApplyDefaults(cfg)

	if cfg.Budget.DailyBudget != 10 || cfg.Budget.AlertThreshold != 0.5 {
		t.Errorf("expected set values preserved, got %+v", cfg.Budget)
	}
	if cfg.Budget.MonthlyBudget != DefaultMonthlyBudget {
		t.Errorf("expected default monthly budget, got %v", cfg.Budget.MonthlyBudget)
	}
	if cfg.Scheduler.PriceTrackingSchedule != "0 * * * *" {
		t.Errorf("expected schedule preserved, got %q", cfg.Scheduler.PriceTrackingSchedule)
	}
}
