// Package config provides configuration management for the Sentinel engine.
//
// Configuration is loaded from a YAML file, completed with defaults,
// validated, and finally overridden from the environment:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("sentinel.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SENTINEL_SECTION_FIELD.
// For example:
//
//   - SENTINEL_BUDGET_DAILY_BUDGET overrides budget.daily_budget
//   - SENTINEL_PROVIDERS_OPENAI_API_KEY overrides providers.openai.api_key
//   - SENTINEL_LEDGER_BACKEND overrides ledger.backend
//   - SENTINEL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Reloading
//
// Watcher observes the configuration file with fsnotify and invokes a
// callback with the freshly loaded configuration after a debounce interval.
// Budget limits are immutable for a running engine; consumers decide which
// reloaded fields they apply.
package config
