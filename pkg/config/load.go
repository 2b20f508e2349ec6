package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SENTINEL_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults without validating.
func Parse(data []byte) (*Config, error) {
	// Booleans that default to true are preset; yaml only overwrites keys
	// present in the document.
	cfg := Config{
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SENTINEL_SECTION_FIELD (e.g., SENTINEL_BUDGET_DAILY_BUDGET).
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDefaultWithEnvOverrides returns the default configuration with
// environment overrides applied. It is used when no file is given.
func LoadDefaultWithEnvOverrides() (*Config, error) {
	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	envList("SERVER_ALLOWED_ORIGINS", &cfg.Server.AllowedOrigins)
	envString("SERVER_RATE_LIMIT", &cfg.Server.RateLimit)

	// Budget overrides
	envFloat("BUDGET_DAILY_BUDGET", &cfg.Budget.DailyBudget)
	envFloat("BUDGET_MONTHLY_BUDGET", &cfg.Budget.MonthlyBudget)
	envFloat("BUDGET_ALERT_THRESHOLD", &cfg.Budget.AlertThreshold)
	envFloat("BUDGET_EMERGENCY_THRESHOLD", &cfg.Budget.EmergencyThreshold)
	envFloat("BUDGET_USER_DAILY_LIMIT", &cfg.Budget.UserDailyLimit)
	envFloat("BUDGET_USER_MONTHLY_LIMIT", &cfg.Budget.UserMonthlyLimit)

	// Provider overrides for the known providers
	for _, name := range []string{ProviderOpenAI, ProviderPerplexity, ProviderOpenRouter} {
		applyProviderEnvOverrides(cfg, name)
	}

	// Scheduler overrides
	envDuration("SCHEDULER_PROCESS_INTERVAL", &cfg.Scheduler.ProcessInterval)
	envDuration("SCHEDULER_CLEANUP_INTERVAL", &cfg.Scheduler.CleanupInterval)
	envString("SCHEDULER_PRICE_TRACKING_SCHEDULE", &cfg.Scheduler.PriceTrackingSchedule)
	envDuration("SCHEDULER_TASK_TIMEOUT", &cfg.Scheduler.TaskTimeout)

	// Ledger overrides
	envString("LEDGER_BACKEND", &cfg.Ledger.Backend)
	envInt("LEDGER_CAPACITY", &cfg.Ledger.Capacity)
	envString("LEDGER_SQLITE_PATH", &cfg.Ledger.SQLite.Path)
	envString("LEDGER_REDIS_ADDR", &cfg.Ledger.Redis.Addr)
	envString("LEDGER_REDIS_PASSWORD", &cfg.Ledger.Redis.Password)
	envInt("LEDGER_REDIS_DB", &cfg.Ledger.Redis.DB)
	envString("LEDGER_REDIS_KEY", &cfg.Ledger.Redis.Key)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	envFloat("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)
}

// applyProviderEnvOverrides applies SENTINEL_PROVIDERS_<NAME>_* overrides.
// A provider absent from the file is created when its base URL is set.
func applyProviderEnvOverrides(cfg *Config, name string) {
	prefix := "PROVIDERS_" + strings.ToUpper(name) + "_"

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	p, exists := cfg.Providers[name]
	if !exists && os.Getenv(EnvPrefix+prefix+"BASE_URL") == "" {
		return
	}

	envString(prefix+"BASE_URL", &p.BaseURL)
	envString(prefix+"ROUTE", &p.Route)
	envString(prefix+"API_KEY", &p.APIKey)
	envDuration(prefix+"TIMEOUT", &p.Timeout)
	envDuration(prefix+"RETRY_BACKOFF", &p.RetryBackoff)
	envInt(prefix+"MAX_RETRIES", &p.MaxRetries)
	envFloat(prefix+"COST_PER_1K_TOKENS", &p.CostPer1KTokens)

	cfg.Providers[name] = p
}

func envString(key string, dst *string) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		*dst = val
	}
}

func envInt(key string, dst *int) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envFloat(key string, dst *float64) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

// envList splits a comma-separated value, dropping empty entries.
func envList(key string, dst *[]string) {
	val := os.Getenv(EnvPrefix + key)
	if val == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
