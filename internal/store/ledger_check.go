package store

import (
	"context"
	"fmt"
)

// LedgerState summarizes the consistency of a user's ledger against the
// completion record store. Used by the engine's verification pass and by
// recovery tooling after a crash or partial sync.
type LedgerState struct {
	UserID string

	// Entries is the number of ledger rows (habit-days with progress).
	Entries int

	// Events is the number of audit events.
	Events int

	// Records is the number of completion records.
	Records int

	// OrphanedEntries counts ledger entries with no completion record.
	// A healthy store has zero: the write path creates both atomically.
	OrphanedEntries int

	// StaleRecords counts completion records whose stored amount differs
	// from the current ledger amount, meaning the verdict was computed
	// against a value that is no longer current.
	StaleRecords int

	// LastSeq is the highest logical clock stamp seen for the user.
	LastSeq int64
}

// Consistent reports whether the ledger and record store agree.
func (s LedgerState) Consistent() bool {
	return s.OrphanedEntries == 0 && s.StaleRecords == 0
}

// CheckLedger computes the LedgerState for one user. Read-only; safe to
// run concurrently with writes (it observes a snapshot).
func (s *Store) CheckLedger(ctx context.Context, userID string) (LedgerState, error) {
	state := LedgerState{UserID: userID}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM progress_entries e
		JOIN habits h ON h.id = e.habit_id
		WHERE h.user_id = ?
	`, userID).Scan(&state.Entries)
	if err != nil {
		return state, fmt.Errorf("check ledger: count entries: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM progress_events ev
		JOIN habits h ON h.id = ev.habit_id
		WHERE h.user_id = ?
	`, userID).Scan(&state.Events)
	if err != nil {
		return state, fmt.Errorf("check ledger: count events: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM completion_records WHERE user_id = ?
	`, userID).Scan(&state.Records)
	if err != nil {
		return state, fmt.Errorf("check ledger: count records: %w", err)
	}

	// Ledger entries whose completion record is missing.
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM progress_entries e
		JOIN habits h ON h.id = e.habit_id
		WHERE h.user_id = ?
		AND NOT EXISTS (
			SELECT 1 FROM completion_records r
			WHERE r.user_id = h.user_id AND r.habit_id = e.habit_id AND r.date_key = e.date_key
		)
	`, userID).Scan(&state.OrphanedEntries)
	if err != nil {
		return state, fmt.Errorf("check ledger: count orphans: %w", err)
	}

	// Records whose amount no longer matches the ledger.
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM completion_records r
		JOIN progress_entries e ON e.habit_id = r.habit_id AND e.date_key = r.date_key
		WHERE r.user_id = ? AND r.amount != e.amount
	`, userID).Scan(&state.StaleRecords)
	if err != nil {
		return state, fmt.Errorf("check ledger: count stale: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM completion_records WHERE user_id = ?
	`, userID).Scan(&state.LastSeq)
	if err != nil {
		return state, fmt.Errorf("check ledger: last seq: %w", err)
	}

	return state, nil
}
