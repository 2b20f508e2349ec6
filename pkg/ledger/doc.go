// Package ledger provides the append-only usage ledger for provider calls.
//
// # Overview
//
// Every successful provider call is recorded as a Record carrying the
// user, the provider API, the cost in USD and the token count. The ledger
// keeps only the most recent records (1000 by default); older records are
// trimmed after each append.
//
// Records are persisted through the Store port. Three implementations ship
// with the package:
//
//   - MemoryStore: process-local slice (default)
//   - SQLiteStore: file-backed table using modernc.org/sqlite
//   - RedisStore: a Redis list trimmed with LTRIM
//
// # Usage
//
//	store := ledger.NewMemoryStore()
//	l := ledger.New(store, ledger.DefaultCapacity)
//
//	err := l.Record(ctx, ledger.NewRecord("user-1", "openai", 0.03, 1500, "compliance", time.Now()))
//
//	records, err := l.Records(ctx)
//	today := ledger.Summarize(records, ledger.OnDate(time.Now()))
//
// # Aggregation
//
// Aggregates are computed by a linear scan over the stored records. There is
// no index; with the capacity bounded this is cheap enough to run on every
// budget check.
package ledger
