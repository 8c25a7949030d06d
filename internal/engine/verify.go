package engine

import (
	"context"

	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/store"
)

// VerdictMismatch describes a completion record whose stored verdict or
// amount disagrees with re-evaluating the current ledger amount against the
// current configuration.
type VerdictMismatch struct {
	HabitID      string        `json:"habit_id"`
	Date         habit.DateKey `json:"date"`
	LedgerAmount int64         `json:"ledger_amount"`
	RecordAmount int64         `json:"record_amount"`
	Stored       bool          `json:"stored"`
	Expected     bool          `json:"expected"`
}

// VerifyReport is the result of a full derivation audit.
type VerifyReport struct {
	Ledger     store.LedgerState
	Mismatches []VerdictMismatch
}

// Clean reports whether the audit found nothing wrong.
func (r VerifyReport) Clean() bool {
	return r.Ledger.Consistent() && len(r.Mismatches) == 0
}

// VerifyRecords audits the store for userID: it checks the ledger's
// structural consistency and re-evaluates every progress entry against the
// habit's current configuration, comparing the outcome with the persisted
// completion record. A clean report means derived stats are reproducible
// from the records alone.
func (t *Tracker) VerifyRecords(ctx context.Context, userID string) (VerifyReport, error) {
	var report VerifyReport

	state, err := t.store.CheckLedger(ctx, userID)
	if err != nil {
		return report, newStoreFailureError("check ledger", err)
	}
	report.Ledger = state

	configs, err := t.store.ListHabits(ctx, userID)
	if err != nil {
		return report, newStoreFailureError("list habits", err)
	}
	for _, cfg := range configs {
		entries, err := t.store.ListEntriesForHabit(ctx, cfg.ID)
		if err != nil {
			return report, newStoreFailureError("list entries", err)
		}
		for _, entry := range entries {
			expected := habit.Evaluate(cfg.Kind, cfg, entry.Amount)
			rec, ok, err := t.store.GetCompletion(ctx, userID, cfg.ID, entry.Date)
			if err != nil {
				return report, newStoreFailureError("get completion", err)
			}
			if ok && rec.IsCompleted == expected && rec.Amount == entry.Amount {
				continue
			}
			mismatch := VerdictMismatch{
				HabitID:      cfg.ID,
				Date:         entry.Date,
				LedgerAmount: entry.Amount,
				Expected:     expected,
			}
			if ok {
				mismatch.RecordAmount = rec.Amount
				mismatch.Stored = rec.IsCompleted
			}
			report.Mismatches = append(report.Mismatches, mismatch)
		}
	}
	return report, nil
}
