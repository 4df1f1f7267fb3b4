// Package engine implements the conversation state machine that drives a
// multi-turn dialogue between a model backend and a set of callable tools
// until the model produces a final answer, the iteration cap is reached, or
// a caller-supplied hook forces early termination.
//
// A run is a single logical sequential thread of control: one LLM turn,
// a routing decision, one batch of sequential tool executions, and back,
// bounded by MaxIterations. Every model call is wrapped in bounded
// exponential backoff, and exhausting the primary model's retry budget
// escalates once to the configured backup model by re-executing the entire
// run under the backup configuration.
//
// Run never returns an error for expected failure categories; callers
// inspect RunResult.Success and RunResult.Error. Partial progress (tool-call
// ledger, iterations, token usage) is preserved on every failure path.
package engine
