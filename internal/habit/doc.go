// Package habit defines the core domain model for the completion tracker:
// habit configurations, ledger entries, completion records, derived stats,
// and the single completion evaluator.
//
// Everything in this package is pure data and pure functions. Persistence
// lives in internal/store, orchestration in internal/engine.
package habit
