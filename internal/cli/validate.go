package cli

import (
	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/compiler"
)

// ValidationResult is the validate command's payload.
type ValidationResult struct {
	Valid      bool                       `json:"valid"`
	Habits     int                        `json:"habits"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
	Advisories []compiler.Advisory        `json:"advisories,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <habits.cue>",
		Short: "Validate habit definitions without persisting them",
		Long: `Validate a CUE habit definition file against the structural invariants.

All violations are reported at once; advisories are listed separately and
never block acceptance.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	configs, err := LoadConfigFile(path)
	if err != nil {
		formatter.Error("E001", err.Error(), nil)
		return err
	}
	formatter.VerboseLog("compiled %d habit definition(s) from %s", len(configs), path)

	violations := compiler.ValidateBatch(configs)
	var advisories []compiler.Advisory
	for _, cfg := range configs {
		advisories = append(advisories, compiler.Advise(cfg)...)
	}

	result := ValidationResult{
		Valid:      len(violations) == 0,
		Habits:     len(configs),
		Errors:     violations,
		Advisories: advisories,
	}

	if !result.Valid {
		if opts.Format == "json" {
			formatter.Success(result)
		} else {
			for _, v := range violations {
				formatter.Text("error: %s", v.Error())
			}
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	for _, a := range advisories {
		formatter.Text("advice [%s] habit %s: %s: %s", a.Code, a.HabitID, a.Field, a.Message)
	}
	formatter.Text("%d habit definition(s) valid", len(configs))
	return nil
}
