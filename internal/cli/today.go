package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/habit"
	"github.com/tallyhq/tally/internal/schedule"
)

// TodayResult is the today command's payload.
type TodayResult struct {
	Date    string       `json:"date"`
	Due     []HabitState `json:"due"`
	AllDone bool         `json:"all_done"`
}

// HabitState is one due habit with its current standing.
type HabitState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Amount    int64  `json:"amount"`
	Goal      int64  `json:"goal,omitempty"`
	Target    int64  `json:"target,omitempty"`
	Completed bool   `json:"completed"`
}

// NewTodayCommand creates the today command.
func NewTodayCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:           "today",
		Short:         "Show due habits and their standing for a date",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToday(rootOpts, date, cmd)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date key (YYYY-MM-DD), defaults to today")
	return cmd
}

func runToday(opts *RootOptions, dateArg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	date := habit.DateKey(dateArg)
	if dateArg == "" {
		date = habit.NewDateKey(time.Now())
	}
	if !date.Valid() {
		formatter.Error("E005", fmt.Sprintf("invalid date %q", dateArg), nil)
		return NewExitError(ExitCommandError, "invalid date")
	}

	tracker, st, err := openTracker(ctx, opts)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return err
	}
	defer st.Close()

	configs, err := tracker.Habits(ctx, opts.User)
	if err != nil {
		return reportTrackerError(formatter, err)
	}
	byID := make(map[string]habit.Config, len(configs))
	for _, cfg := range configs {
		byID[cfg.ID] = cfg
	}

	provider, err := schedule.NewWeekly(opts.User, configs)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot build schedule", err)
	}
	due, err := provider.Due(ctx, opts.User, date)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot resolve due habits", err)
	}

	result := TodayResult{Date: string(date), Due: []HabitState{}, AllDone: true}
	for _, id := range due {
		cfg := byID[id]
		var amount int64
		if entry, ok, err := tracker.Progress(ctx, id, date); err != nil {
			return reportTrackerError(formatter, err)
		} else if ok {
			amount = entry.Amount
		}
		done := habit.Evaluate(cfg.Kind, cfg, amount)
		if !done {
			result.AllDone = false
		}
		result.Due = append(result.Due, HabitState{
			ID:        id,
			Name:      cfg.Name,
			Kind:      string(cfg.Kind),
			Amount:    amount,
			Goal:      cfg.Goal,
			Target:    cfg.Target,
			Completed: done,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	if len(result.Due) == 0 {
		formatter.Text("nothing due on %s", result.Date)
		return nil
	}
	for _, h := range result.Due {
		mark := " "
		if h.Completed {
			mark = "x"
		}
		switch habit.Kind(h.Kind) {
		case habit.KindFormation:
			formatter.Text("[%s] %s: %d/%d", mark, h.Name, h.Amount, h.Goal)
		default:
			formatter.Text("[%s] %s: %d (target <= %d)", mark, h.Name, h.Amount, h.Target)
		}
	}
	return nil
}
