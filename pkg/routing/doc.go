// Package routing chooses a provider for each request and calls it under
// the budget enforcer's gate.
//
// # Selection
//
// SelectOptimalAPI evaluates a fixed policy top to bottom; the first
// matching rule wins:
//
//  1. realtime intent goes to perplexity with a low temperature
//  2. compliance intent that looks complex (keyword, several family
//     members, more than two trips) goes to openai
//  3. complex intent, or planning intent with a high-value keyword, goes
//     to openai
//  4. everything else goes to openrouter, on the cheap model for short
//     plain queries and the mid model otherwise
//
// # Fail-soft
//
// Route never returns an error. A call refused by the budget enforcer
// gets a zero-cost apologetic answer; a failed provider call gets a
// "temporarily unavailable" answer with confidence 0. The cause is kept
// in Result.Err for logging and tests.
package routing
