package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/schedule"
)

// StatsResult is the stats command's payload.
type StatsResult struct {
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	AsOf          string `json:"as_of"`
	CompletedDays int64  `json:"completed_days"`
	CurrentStreak int64  `json:"current_streak"`
	LongestStreak int64  `json:"longest_streak"`
	TotalXP       int64  `json:"total_xp"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var from, to, asOf string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Derive streaks and XP from completion records",
		Long: `Derive completed-day count, streaks, and XP from the persisted
completion records. Without --from/--to the window runs from the first
recorded completion through --as-of (today by default).

Stats are recomputed from the records on every call; nothing is cached.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, from, to, asOf, cmd)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "derivation cutoff (YYYY-MM-DD), defaults to today")
	return cmd
}

func runStats(opts *RootOptions, fromArg, toArg, asOfArg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	asOf := habit.DateKey(asOfArg)
	if asOfArg == "" {
		asOf = habit.NewDateKey(time.Now())
	}
	if (fromArg == "") != (toArg == "") {
		formatter.Error("E003", "--from and --to must be used together", nil)
		return NewExitError(ExitCommandError, "invalid window")
	}

	tracker, st, err := openTracker(ctx, opts)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return err
	}
	defer st.Close()

	var stats habit.DerivedStats
	if fromArg != "" {
		configs, err := tracker.Habits(ctx, opts.User)
		if err != nil {
			return reportTrackerError(formatter, err)
		}
		provider, err := schedule.NewWeekly(opts.User, configs)
		if err != nil {
			formatter.Error("E002", err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot build schedule", err)
		}
		r := habit.DateRange{From: habit.DateKey(fromArg), To: habit.DateKey(toArg)}
		stats, err = tracker.Stats(ctx, opts.User, r, asOf, provider)
		if err != nil {
			return reportTrackerError(formatter, err)
		}
	} else {
		stats, err = tracker.CurrentStats(ctx, opts.User, asOf)
		if err != nil {
			return reportTrackerError(formatter, err)
		}
	}

	result := StatsResult{
		From:          fromArg,
		To:            toArg,
		AsOf:          string(asOf),
		CompletedDays: stats.CompletedDayCount,
		CurrentStreak: stats.CurrentStreak,
		LongestStreak: stats.LongestStreak,
		TotalXP:       stats.TotalXP,
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	formatter.Text("as of %s", result.AsOf)
	formatter.Text("  completed days: %d", result.CompletedDays)
	formatter.Text("  current streak: %d", result.CurrentStreak)
	formatter.Text("  longest streak: %d", result.LongestStreak)
	formatter.Text("  total xp:       %d", result.TotalXP)
	return nil
}
