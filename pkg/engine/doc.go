// Package engine implements the background intelligence engine: the session
// context store, a single-flight priority task scheduler, the analysis
// routines it dispatches to, and the insight pool that collects and fans out
// their results.
//
// # Flow
//
// Session events update the ContextStore. The Engine seeds tasks on context
// initialization and on an hourly schedule, the Scheduler executes the
// highest-priority task on every processing tick, and completed tasks append
// insights to the InsightPool:
//
//	InitializeContext → QueueTask → tick → Analyzer → Router → InsightPool → subscribers
//
// # Concurrency
//
// At most one task is processing at any time. ProcessQueue returns
// immediately when another call holds the processing flag, so ticks that
// arrive while a provider call is in flight are dropped rather than queued.
// QueueTask and every consumer operation are safe to call from any
// goroutine, including while a task is processing.
//
// # Time
//
// All timers and timestamps go through a clock.Clock so tests can drive the
// engine with clock.Fake instead of sleeping.
package engine
