// Package health provides the readiness probe of the engine.
//
// A Checker holds named CheckFunc values and runs them concurrently, each
// under its own timeout. The aggregated Report is "ready" when every check
// returns nil and "degraded" otherwise; Handler maps that to 200 or 503.
//
//	checker := health.New(2 * time.Second)
//	checker.Register("ledger", func(ctx context.Context) error {
//	    _, err := usage.Records(ctx)
//	    return err
//	})
//	mux.Handle("GET /ready", checker.Handler())
//
// Liveness stays with the server's /health route, which never blocks on
// dependencies.
package health
