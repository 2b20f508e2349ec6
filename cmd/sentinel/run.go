package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sentinel-hq/sentinel/pkg/budget"
	"sentinel-hq/sentinel/pkg/cli"
	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/engine"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/routing"
	"sentinel-hq/sentinel/pkg/server"
	"sentinel-hq/sentinel/pkg/server/middleware"
	"sentinel-hq/sentinel/pkg/telemetry/logging"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
	"sentinel-hq/sentinel/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the engine and its HTTP surface",
	Long: `Start the background intelligence engine with the specified configuration.

The engine ticks its task queue, routes analysis questions through the budget
gate to the configured providers and keeps the resulting insights. Consumers
drive it through the HTTP surface.

Examples:
  # Start with defaults and SENTINEL_* environment overrides
  sentinel run

  # Start with a config file
  sentinel run --config /etc/sentinel/config.yaml

  # Override listen address
  sentinel run --listen 0.0.0.0:8090

  # Validate config without starting
  sentinel run --dry-run`,
	RunE: runEngine,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", true, "reload the log level when the config file changes")
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}
	slog.SetDefault(logger.Logger)

	rateLimit, err := middleware.RateLimitMiddleware(cfg.Server.RateLimit)
	if err != nil {
		return cli.NewConfigError(cfgFile, err)
	}

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	usage, err := openLedger(ctx, cfg.Ledger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer usage.Close()

	enforcer, err := newEnforcer(ctx, cfg, usage, collector)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	pcs := providerConfigs(cfg)
	for i := range pcs {
		pcs[i].Tracer = tracer
	}
	registry, err := providers.NewRegistryFromConfigs(pcs)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer registry.Close()
	fmt.Fprintf(out, "✓ Providers initialized (%d providers)\n", len(registry.Names()))

	router := routing.NewRouter(newPolicy(cfg), enforcer, registry, routing.WithMetrics(collector), routing.WithTracer(tracer))

	eng, err := engine.New(router, enforcer, cfg.Scheduler, engine.WithMetrics(collector), engine.WithTracer(tracer))
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	unsubscribe := eng.OnBudgetAlert(func(a budget.Alert) {
		slog.Warn("budget alert",
			"level", a.Level,
			"utilization", a.Utilization,
			"daily_spend", a.DailySpend,
			"recommendation", a.Recommendation,
		)
	})
	defer unsubscribe()

	if err := eng.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer eng.Stop()

	if cfgFile != "" && runFlags.watch {
		w, err := watchConfig(ctx, cfgFile, cfg, logger)
		if err != nil {
			slog.Warn("config hot reload disabled", "error", err)
		} else {
			defer w.Stop()
		}
	}

	srv := server.NewServer(cfg.Server, eng,
		server.WithMetrics(collector),
		server.WithHealthSource(registry),
		server.WithReadiness(newReadiness(usage, registry, eng)),
		server.WithTracer(tracer),
		server.WithRateLimit(rateLimit),
	)

	fmt.Fprintf(out, "✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// watchConfig reloads the log level whenever the file changes. Budget
// ceilings belong to the running enforcer and only take effect on restart.
func watchConfig(ctx context.Context, path string, current *config.Config, logger *logging.Logger) (*config.Watcher, error) {
	w, err := config.NewWatcher(path, 0)
	if err != nil {
		return nil, err
	}

	budgetCfg := current.Budget
	go func() {
		err := w.Watch(ctx, func(next *config.Config) {
			if err := logger.SetLevel(next.Telemetry.Logging.Level); err != nil {
				slog.Warn("ignoring reloaded log level", "error", err)
			} else {
				slog.Info("log level reloaded", "level", next.Telemetry.Logging.Level)
			}
			if next.Budget != budgetCfg {
				slog.Warn("budget configuration changed; restart to apply")
			}
		})
		if err != nil {
			slog.Error("config watcher stopped", "error", err)
		}
	}()
	return w, nil
}
