package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"

	"sentinel-hq/sentinel/pkg/cli"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/engine"
	"sentinel-hq/sentinel/pkg/ledger"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/routing"
)

// ==================== Configuration ====================

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Server.ListenAddress != config.DefaultListenAddress {
		t.Errorf("Expected listen address %s, got %s", config.DefaultListenAddress, cfg.Server.ListenAddress)
	}
	if len(cfg.Providers) != 3 {
		t.Errorf("Expected 3 providers, got %d", len(cfg.Providers))
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SENTINEL_BUDGET_DAILY_BUDGET", "12.5")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Budget.DailyBudget != 12.5 {
		t.Errorf("Expected daily budget 12.5, got %v", cfg.Budget.DailyBudget)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := loadConfig(path)
	var cfgErr *cli.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *cli.ConfigError, got %v", err)
	}
	if cfgErr.Path != path {
		t.Errorf("Expected path %s, got %s", path, cfgErr.Path)
	}
}

func TestProviderConfigs(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Providers[config.ProviderOpenAI] = config.ProviderConfig{
		BaseURL:    "http://gateway:3000",
		Route:      "/api/ai/openai",
		APIKey:     "sk-test",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}

	pcs := providerConfigs(cfg)
	if len(pcs) != 3 {
		t.Fatalf("Expected 3 provider configs, got %d", len(pcs))
	}

	names := []string{pcs[0].Name, pcs[1].Name, pcs[2].Name}
	want := []string{config.ProviderOpenAI, config.ProviderOpenRouter, config.ProviderPerplexity}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected provider %d to be %s, got %s", i, want[i], names[i])
		}
	}

	openai := pcs[0]
	if openai.Endpoint() != "http://gateway:3000/api/ai/openai" {
		t.Errorf("Expected endpoint http://gateway:3000/api/ai/openai, got %s", openai.Endpoint())
	}
	if openai.APIKey != "sk-test" || openai.Timeout != 5*time.Second || openai.MaxRetries != 2 {
		t.Errorf("Provider settings not carried over: %+v", openai)
	}
}

// ==================== Ledger backends ====================

func TestOpenLedger_Memory(t *testing.T) {
	l, err := openLedger(context.Background(), config.LedgerConfig{Backend: "memory", Capacity: 5})
	if err != nil {
		t.Fatalf("openLedger failed: %v", err)
	}
	defer l.Close()

	if l.Capacity() != 5 {
		t.Errorf("Expected capacity 5, got %d", l.Capacity())
	}
}

func TestOpenLedger_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "usage.db")
	cfg := config.LedgerConfig{
		Backend:  "sqlite",
		Capacity: 10,
		SQLite:   config.SQLiteConfig{Path: path, BusyTimeout: time.Second},
	}

	l, err := openLedger(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openLedger failed: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected database file at %s: %v", path, err)
	}
}

func TestOpenLedger_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	cfg := config.LedgerConfig{
		Backend:  "redis",
		Capacity: 10,
		Redis:    config.RedisConfig{Addr: mr.Addr(), Key: "test:usage"},
	}

	ctx := context.Background()
	l, err := openLedger(ctx, cfg)
	if err != nil {
		t.Fatalf("openLedger failed: %v", err)
	}
	defer l.Close()

	rec := ledger.NewRecord("user-1", config.ProviderOpenRouter, 0.002, 1000, "deals", time.Now())
	if err := l.Record(ctx, rec); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !mr.Exists("test:usage") {
		t.Error("Expected records under test:usage")
	}
}

func TestOpenLedger_RedisUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	cfg := config.LedgerConfig{Backend: "redis", Redis: config.RedisConfig{Addr: addr}}
	if _, err := openLedger(context.Background(), cfg); err == nil {
		t.Error("Expected error for unreachable redis")
	}
}

func TestOpenLedger_UnknownBackend(t *testing.T) {
	if _, err := openLedger(context.Background(), config.LedgerConfig{Backend: "postgres"}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

// ==================== Env file ====================

func newEnvFileCommand(t *testing.T, value string, changed bool) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&envFile, "env-file", defaultEnvFile, "")
	if changed {
		if err := cmd.Flags().Set("env-file", value); err != nil {
			t.Fatalf("failed to set flag: %v", err)
		}
	} else {
		envFile = value
	}
	t.Cleanup(func() { envFile = defaultEnvFile })
	return cmd
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SENTINEL_TEST_ENV_FILE_KEY=from-file\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("SENTINEL_TEST_ENV_FILE_KEY") })

	cmd := newEnvFileCommand(t, path, true)
	if err := loadEnvFile(cmd, nil); err != nil {
		t.Fatalf("loadEnvFile failed: %v", err)
	}
	if got := os.Getenv("SENTINEL_TEST_ENV_FILE_KEY"); got != "from-file" {
		t.Errorf("Expected from-file, got %q", got)
	}
}

func TestLoadEnvFile_MissingDefaultIgnored(t *testing.T) {
	cmd := newEnvFileCommand(t, filepath.Join(t.TempDir(), ".env"), false)
	if err := loadEnvFile(cmd, nil); err != nil {
		t.Errorf("Expected missing default env file to be ignored, got %v", err)
	}
}

func TestLoadEnvFile_MissingExplicitFails(t *testing.T) {
	cmd := newEnvFileCommand(t, filepath.Join(t.TempDir(), "prod.env"), true)
	if err := loadEnvFile(cmd, nil); err == nil {
		t.Error("Expected error for missing explicit env file")
	}
}

// ==================== Readiness ====================

func TestNewReadiness(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultConfig()

	l := ledger.New(ledger.NewMemoryStore(), 10)
	defer l.Close()
	enforcer, err := newEnforcer(ctx, cfg, l, nil)
	if err != nil {
		t.Fatalf("newEnforcer failed: %v", err)
	}
	registry, err := providers.NewRegistryFromConfigs(providerConfigs(cfg))
	if err != nil {
		t.Fatalf("NewRegistryFromConfigs failed: %v", err)
	}
	defer registry.Close()
	eng, err := engine.New(routing.NewRouter(newPolicy(cfg), enforcer, registry), enforcer, cfg.Scheduler)
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}

	checker := newReadiness(l, registry, eng)

	report := checker.Check(ctx)
	if report.Ready() {
		t.Error("Expected degraded report before the engine starts")
	}
	if report.Checks["scheduler"].Message != "scheduler not running" {
		t.Errorf("Expected scheduler failure, got %+v", report.Checks["scheduler"])
	}
	if report.Checks["ledger"].Message != "" || report.Checks["providers"].Message != "" {
		t.Errorf("Expected ledger and providers healthy, got %+v", report.Checks)
	}

	if err := eng.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer eng.Stop()

	if report := checker.Check(ctx); !report.Ready() {
		t.Errorf("Expected ready report, got %+v", report)
	}
}
