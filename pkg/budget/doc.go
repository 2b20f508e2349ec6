// Package budget enforces spending ceilings on provider calls.
//
// The Enforcer sits between the router and the usage ledger. Before a call
// it answers whether the estimated cost fits under the global and per-user
// daily and monthly ceilings; after a call it records the actual cost in
// the ledger and raises threshold alerts.
//
// # Windows
//
// Spend is accumulated per calendar day and calendar month of the
// enforcer's clock. Rollover is lazy: every access compares the current
// date with the date of the last reset and zeroes the counters that
// belong to a past window. Counters are seeded from the ledger at
// construction, so a restart inside a day keeps the day's spend.
//
// # Alerts
//
// A warning alert fires when daily utilization reaches AlertThreshold and
// an emergency alert when it reaches EmergencyThreshold. Each level fires
// at most once per day. Alerts are delivered synchronously to subscribers
// registered with Subscribe.
//
// # Anonymous users
//
// Calls without a user identifier are checked against the global ceilings
// only and recorded under ledger.AnonymousUser.
package budget
