package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/engine"
	"github.com/tallyhq/tally/internal/habit"
)

// LogResult is the log command's payload.
type LogResult struct {
	Habit     string `json:"habit"`
	Date      string `json:"date"`
	Amount    int64  `json:"amount"`
	Completed bool   `json:"completed"`
	Writes    int    `json:"writes"`
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	var date string
	var set bool

	cmd := &cobra.Command{
		Use:   "log <habit> <amount>",
		Short: "Record progress for a habit",
		Long: `Record a progress amount for a habit on a date (today by default).

The amount is added to the day's running total; negative amounts correct
earlier over-counting. With --set, the amount overwrites the total
instead. Either way the day's completion verdict is re-evaluated in the
same transaction.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(rootOpts, args[0], args[1], date, set, cmd)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date key (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&set, "set", false, "overwrite the day's total instead of adding")
	return cmd
}

func runLog(opts *RootOptions, habitID, amountArg, dateArg string, set bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	amount, err := strconv.ParseInt(amountArg, 10, 64)
	if err != nil {
		formatter.Error("E003", fmt.Sprintf("amount %q is not an integer", amountArg), nil)
		return NewExitError(ExitCommandError, "invalid amount")
	}

	date := habit.DateKey(dateArg)
	if dateArg == "" {
		date = habit.NewDateKey(time.Now())
	}

	tracker, st, err := openTracker(ctx, opts)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return err
	}
	defer st.Close()

	var entry habit.ProgressEntry
	var record habit.CompletionRecord
	if set {
		entry, record, err = tracker.SetProgress(ctx, opts.User, habitID, date, amount)
	} else {
		entry, record, err = tracker.RecordProgress(ctx, opts.User, habitID, date, amount)
	}
	if err != nil {
		return reportTrackerError(formatter, err)
	}

	result := LogResult{
		Habit:     habitID,
		Date:      string(date),
		Amount:    entry.Amount,
		Completed: record.IsCompleted,
		Writes:    len(entry.Timestamps),
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	status := "not yet complete"
	if result.Completed {
		status = "complete"
	}
	formatter.Text("%s @ %s: %d (%s)", result.Habit, result.Date, result.Amount, status)
	return nil
}

// reportTrackerError maps engine error codes onto CLI output and exit
// codes.
func reportTrackerError(formatter *OutputFormatter, err error) error {
	var te *engine.TrackerError
	if !errors.As(err, &te) {
		formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "command failed", err)
	}

	switch te.Code {
	case engine.ErrCodeUnknownHabit:
		formatter.Error("E004", fmt.Sprintf("unknown habit %q", te.HabitID), nil)
		return NewExitError(ExitCommandError, "unknown habit")
	case engine.ErrCodeInvalidDate:
		formatter.Error("E005", fmt.Sprintf("invalid date %q", te.Date), nil)
		return NewExitError(ExitCommandError, "invalid date")
	case engine.ErrCodeConfigRejected:
		formatter.Error("E100", te.Message, te.Violations)
		return NewExitError(ExitFailure, "validation failed")
	default:
		formatter.Error("E002", te.Error(), nil)
		return WrapExitError(ExitCommandError, "command failed", err)
	}
}
