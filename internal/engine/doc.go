// Package engine orchestrates the habit core: it serializes progress
// writes per habit-date key, routes every completion decision through
// the single evaluator, and derives aggregate statistics purely from the
// persisted completion records.
//
// The engine holds no mutable aggregate state of its own. Stats are
// recomputed from the record store on every call, so a cached value can
// never drift from the log.
package engine
