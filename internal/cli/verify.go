package cli

import (
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/engine"
)

// VerifyResult is the verify command's payload.
type VerifyResult struct {
	Clean           bool                     `json:"clean"`
	Entries         int                      `json:"entries"`
	Events          int                      `json:"events"`
	Records         int                      `json:"records"`
	OrphanedEntries int                      `json:"orphaned_entries"`
	StaleRecords    int                      `json:"stale_records"`
	Mismatches      []engine.VerdictMismatch `json:"mismatches,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Audit the ledger and completion records",
		Long: `Audit the database: check that every ledger entry has a completion
record, that no record's amount drifted from its ledger entry, and that
every persisted verdict matches re-evaluating the current amount against
the current configuration.

A clean audit means streaks and XP are fully reproducible from the
completion records alone.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd)
		},
	}
}

func runVerify(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	tracker, st, err := openTracker(ctx, opts)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return err
	}
	defer st.Close()

	report, err := tracker.VerifyRecords(ctx, opts.User)
	if err != nil {
		return reportTrackerError(formatter, err)
	}

	result := VerifyResult{
		Clean:           report.Clean(),
		Entries:         report.Ledger.Entries,
		Events:          report.Ledger.Events,
		Records:         report.Ledger.Records,
		OrphanedEntries: report.Ledger.OrphanedEntries,
		StaleRecords:    report.Ledger.StaleRecords,
		Mismatches:      report.Mismatches,
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		formatter.Text("entries=%d events=%d records=%d", result.Entries, result.Events, result.Records)
		if result.Clean {
			formatter.Text("audit clean")
		} else {
			formatter.Text("audit FAILED: %d orphaned, %d stale, %d verdict mismatches",
				result.OrphanedEntries, result.StaleRecords, len(result.Mismatches))
			for _, m := range result.Mismatches {
				formatter.Text("  %s@%s: stored=%v expected=%v (ledger=%d record=%d)",
					m.HabitID, m.Date, m.Stored, m.Expected, m.LedgerAmount, m.RecordAmount)
			}
		}
	}

	if !result.Clean {
		return NewExitError(ExitFailure, "audit failed")
	}
	return nil
}
