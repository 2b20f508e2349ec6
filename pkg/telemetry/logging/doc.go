// Package logging configures structured logging for the engine.
//
// # Overview
//
// The package wraps log/slog and adds the pieces every component relies on:
//   - JSON or text output selected from configuration
//   - A dynamic level that can change on config reload
//   - Redaction of secret-bearing attributes (API keys, bearer tokens)
//   - Context fields (user, task, provider, request ID) attached to every
//     record logged with a context
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Logger)
//
//	ctx = logging.WithUser(ctx, "user-1")
//	slog.InfoContext(ctx, "insight produced", "type", "warning")
//	// {"level":"INFO","msg":"insight produced","type":"warning","user_id":"user-1"}
//
// Components obtain their logger with slog.Default().With("component", name)
// so that the handler installed here serves the whole process.
package logging
