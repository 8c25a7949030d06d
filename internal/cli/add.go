package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/engine"
)

// AddResult is the add command's payload.
type AddResult struct {
	Added    []AddedHabit `json:"added"`
	Replaced []AddedHabit `json:"replaced,omitempty"`
}

// AddedHabit identifies one persisted configuration version.
type AddedHabit struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Version string `json:"version"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "add <habits.cue>",
		Short: "Add habits from a CUE definition file",
		Long: `Compile a CUE habit definition file, validate it, and persist every
habit it declares. With --replace, habits that already exist are updated
to the new configuration and their completion records re-evaluated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, args[0], replace, cmd)
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "update habits that already exist")
	return cmd
}

func runAdd(opts *RootOptions, path string, replace bool, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	configs, err := LoadConfigFile(path)
	if err != nil {
		formatter.Error("E001", err.Error(), nil)
		return err
	}

	tracker, st, err := openTracker(ctx, opts)
	if err != nil {
		formatter.Error("E002", err.Error(), nil)
		return err
	}
	defer st.Close()

	result := AddResult{}
	for _, cfg := range configs {
		if replace {
			accepted, err := tracker.EditHabit(ctx, opts.User, cfg)
			if err == nil {
				result.Replaced = append(result.Replaced, AddedHabit{
					ID:      accepted.ID,
					Kind:    string(accepted.Kind),
					Version: accepted.VersionHash,
				})
				continue
			}
			if engine.IsConfigRejected(err) {
				formatter.Error("E100", fmt.Sprintf("habit %s rejected", cfg.ID), violationsOf(err))
				return NewExitError(ExitFailure, "validation failed")
			}
			if !engine.IsUnknownHabit(err) {
				formatter.Error("E002", err.Error(), nil)
				return WrapExitError(ExitCommandError, "replace failed", err)
			}
			// Not there yet: fall through to a plain add.
		}

		accepted, err := tracker.AddHabit(ctx, opts.User, cfg)
		if err != nil {
			if engine.IsConfigRejected(err) {
				formatter.Error("E100", fmt.Sprintf("habit %s rejected", cfg.ID), violationsOf(err))
				return NewExitError(ExitFailure, "validation failed")
			}
			formatter.Error("E002", err.Error(), nil)
			return WrapExitError(ExitCommandError, "add failed", err)
		}
		result.Added = append(result.Added, AddedHabit{
			ID:      accepted.ID,
			Kind:    string(accepted.Kind),
			Version: accepted.VersionHash,
		})
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	for _, h := range result.Added {
		formatter.Text("added %s (%s) version %s", h.ID, h.Kind, shortHash(h.Version))
	}
	for _, h := range result.Replaced {
		formatter.Text("replaced %s (%s) version %s", h.ID, h.Kind, shortHash(h.Version))
	}
	return nil
}

// violationsOf extracts structured violations from a config rejection.
func violationsOf(err error) any {
	var te *engine.TrackerError
	if errors.As(err, &te) {
		return te.Violations
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
