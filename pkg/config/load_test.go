package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `
server:
  listen_address: "0.0.0.0:9000"

budget:
  daily_budget: 40
  monthly_budget: 800
  user_daily_limit: 4

providers:
  openai:
    base_url: "https://app.example.com"
    api_key: "sk-openai"
    timeout: "20s"
  perplexity:
    base_url: "https://app.example.com"
  openrouter:
    base_url: "https://app.example.com"
    route: "/api/ai/router"

scheduler:
  process_interval: "5s"

ledger:
  backend: "sqlite"
  sqlite:
    path: "./usage.db"

telemetry:
  logging:
    level: "debug"
    format: "text"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sentinel.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9000", cfg.Server.ListenAddress)
	}
	if cfg.Budget.DailyBudget != 40 || cfg.Budget.UserDailyLimit != 4 {
		t.Errorf("expected daily budget 40 / user limit 4, got %v / %v", cfg.Budget.DailyBudget, cfg.Budget.UserDailyLimit)
	}
	if cfg.Budget.AlertThreshold != DefaultAlertThreshold {
		t.Errorf("expected default alert threshold, got %v", cfg.Budget.AlertThreshold)
	}

	openai := cfg.Providers[ProviderOpenAI]
	if openai.Timeout != 20*time.Second {
		t.Errorf("expected openai timeout 20s, got %v", openai.Timeout)
	}
	if openai.Route != "/api/ai/openai" {
		t.Errorf("expected default route, got %q", openai.Route)
	}
	if openai.CostPer1KTokens != 0.03 {
		t.Errorf("expected default openai price, got %v", openai.CostPer1KTokens)
	}
	if cfg.Providers[ProviderOpenRouter].Route != "/api/ai/router" {
		t.Errorf("expected custom openrouter route, got %q", cfg.Providers[ProviderOpenRouter].Route)
	}
	if cfg.Providers[ProviderOpenRouter].Models["cheap"] == "" {
		t.Error("expected default openrouter cheap model")
	}
	if cfg.Providers[ProviderPerplexity].CostPerRequest != 0.005 {
		t.Errorf("expected perplexity per-request price 0.005, got %v", cfg.Providers[ProviderPerplexity].CostPerRequest)
	}

	if cfg.Scheduler.ProcessInterval != 5*time.Second {
		t.Errorf("expected process interval 5s, got %v", cfg.Scheduler.ProcessInterval)
	}
	if cfg.Scheduler.CleanupInterval != DefaultCleanupInterval {
		t.Errorf("expected default cleanup interval, got %v", cfg.Scheduler.CleanupInterval)
	}
	if cfg.Ledger.Backend != "sqlite" || cfg.Ledger.Capacity != DefaultLedgerCapacity {
		t.Errorf("unexpected ledger config: %+v", cfg.Ledger)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics enabled by default")
	}
}

func TestLoadConfig_MetricsDisabled(t *testing.T) {
	content := validConfig + `
  metrics:
    enabled: false
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "budget: [unclosed"))
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	content := strings.Replace(validConfig, `backend: "sqlite"`, `backend: "postgres"`, 1)
	_, err := LoadConfig(writeConfig(t, content))

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Errors[0].Field != "ledger.backend" {
		t.Errorf("expected ledger.backend error, got %v", verr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, validConfig)

	t.Setenv("SENTINEL_BUDGET_DAILY_BUDGET", "25.5")
	t.Setenv("SENTINEL_PROVIDERS_OPENAI_API_KEY", "sk-from-env")
	t.Setenv("SENTINEL_SCHEDULER_TASK_TIMEOUT", "12s")
	t.Setenv("SENTINEL_LEDGER_BACKEND", "memory")
	t.Setenv("SENTINEL_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("SENTINEL_LEDGER_CAPACITY", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Budget.DailyBudget != 25.5 {
		t.Errorf("expected daily budget 25.5, got %v", cfg.Budget.DailyBudget)
	}
	if cfg.Providers[ProviderOpenAI].APIKey != "sk-from-env" {
		t.Errorf("expected api key from env, got %q", cfg.Providers[ProviderOpenAI].APIKey)
	}
	if cfg.Scheduler.TaskTimeout != 12*time.Second {
		t.Errorf("expected task timeout 12s, got %v", cfg.Scheduler.TaskTimeout)
	}
	if cfg.Ledger.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Ledger.Backend)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("expected metrics disabled from env")
	}
	if cfg.Ledger.Capacity != DefaultLedgerCapacity {
		t.Errorf("expected malformed override to be ignored, got %d", cfg.Ledger.Capacity)
	}
}

func TestLoadDefaultWithEnvOverrides(t *testing.T) {
	t.Setenv("SENTINEL_PROVIDERS_PERPLEXITY_BASE_URL", "https://pplx.example.com")

	cfg, err := LoadDefaultWithEnvOverrides()
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Providers[ProviderPerplexity].BaseURL != "https://pplx.example.com" {
		t.Errorf("expected perplexity base URL from env, got %q", cfg.Providers[ProviderPerplexity].BaseURL)
	}
	if len(cfg.Providers) != 3 {
		t.Errorf("expected 3 providers, got %d", len(cfg.Providers))
	}
}

func TestLoadDefaultWithEnvOverrides_AllowedOrigins(t *testing.T) {
	t.Setenv("SENTINEL_SERVER_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := LoadDefaultWithEnvOverrides()
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	want := []string{"https://app.example.com", "https://admin.example.com"}
	if len(cfg.Server.AllowedOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Server.AllowedOrigins)
	}
	for i, origin := range want {
		if cfg.Server.AllowedOrigins[i] != origin {
			t.Errorf("expected origin %d to be %q, got %q", i, origin, cfg.Server.AllowedOrigins[i])
		}
	}
}
