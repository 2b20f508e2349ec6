package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/redis/go-redis/v9"

	"sentinel-hq/sentinel/pkg/budget"
	"sentinel-hq/sentinel/pkg/cli"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/engine"
	"sentinel-hq/sentinel/pkg/ledger"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/routing"
	"sentinel-hq/sentinel/pkg/telemetry/health"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// loadConfig reads the configuration file with environment overrides. An
// empty path uses the defaults with environment overrides.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.LoadDefaultWithEnvOverrides()
	} else {
		cfg, err = config.LoadConfigWithEnvOverrides(path)
	}
	if err != nil {
		return nil, cli.NewConfigError(path, err)
	}
	return cfg, nil
}

// openLedger opens the configured ledger backend.
func openLedger(ctx context.Context, cfg config.LedgerConfig) (*ledger.Ledger, error) {
	var store ledger.Store

	switch cfg.Backend {
	case "", "memory":
		store = ledger.NewMemoryStore()
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create ledger directory: %w", err)
			}
		}
		s, err := ledger.NewSQLiteStoreWithConfig(ledger.SQLiteStoreConfig{
			DBPath:      cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite ledger: %w", err)
		}
		store = s
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		store = ledger.NewRedisStore(client, ledger.RedisStoreConfig{Key: cfg.Redis.Key})
	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Backend)
	}

	return ledger.New(store, cfg.Capacity), nil
}

// newEnforcer builds the budget enforcer over l from the configuration.
func newEnforcer(ctx context.Context, cfg *config.Config, l *ledger.Ledger, collector *metrics.Collector) (*budget.Enforcer, error) {
	return budget.NewEnforcer(ctx, budget.FromConfig(cfg.Budget), l,
		budget.WithPricing(budget.PricingFromConfig(cfg.Providers)),
		budget.WithMetrics(collector),
	)
}

// newPolicy builds the routing policy from the configuration.
func newPolicy(cfg *config.Config) *routing.Policy {
	return routing.NewPolicy(
		cfg.Routing,
		cfg.Providers[config.ProviderOpenRouter].Models,
		budget.PricingFromConfig(cfg.Providers),
	)
}

// providerConfigs converts the providers section, sorted by name.
func providerConfigs(cfg *config.Config) []providers.ProviderConfig {
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]providers.ProviderConfig, 0, len(names))
	for _, name := range names {
		pc := cfg.Providers[name]
		out = append(out, providers.ProviderConfig{
			Name:         name,
			BaseURL:      pc.BaseURL,
			Route:        pc.Route,
			APIKey:       pc.APIKey,
			Timeout:      pc.Timeout,
			MaxRetries:   pc.MaxRetries,
			RetryBackoff: pc.RetryBackoff,
		})
	}
	return out
}

// newReadiness registers the checks behind /ready: the ledger answers a
// read, at least one provider is healthy and the scheduler loop runs.
func newReadiness(l *ledger.Ledger, registry *providers.Registry, eng *engine.Engine) *health.Checker {
	checker := health.New(0)
	checker.Register("ledger", func(ctx context.Context) error {
		_, err := l.Records(ctx)
		return err
	})
	checker.Register("providers", func(ctx context.Context) error {
		for _, h := range registry.Health() {
			if h.IsHealthy {
				return nil
			}
		}
		return errors.New("no healthy providers")
	})
	checker.Register("scheduler", func(ctx context.Context) error {
		if !eng.Running() {
			return errors.New("scheduler not running")
		}
		return nil
	})
	return checker
}
