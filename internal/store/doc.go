// Package store provides durable SQLite storage for the habit core: the
// progress ledger (cumulative amounts plus an append-only audit trail)
// and the completion record store (one verdict row per user/habit/date).
//
// All multi-table writes run inside a single transaction so a failed
// write never leaves a ledger entry without its paired completion
// record. The store never decides completion itself; the verdict is
// supplied by the caller from the single evaluator.
package store
