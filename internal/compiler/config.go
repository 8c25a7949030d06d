// Package compiler turns declarative habit definitions (CUE) into
// validated habit configurations.
//
// Compilation is structural parsing only; acceptance is gated separately
// by Validate, which has no soft-pass path for structural invariants.
package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/tallyhq/tally/internal/habit"
)

// CompileConfigs parses a CUE value of the form
//
//	habits: {
//		read: {
//			name:     "Read"
//			kind:     "formation"
//			goal:     5
//			schedule: "daily"
//		}
//		smoke: {
//			name:     "Fewer cigarettes"
//			kind:     "breaking"
//			baseline: 20
//			target:   5
//		}
//	}
//
// into habit configurations. The struct label becomes the habit ID.
// Definitions are returned in declaration order.
//
// Compiled configs carry no VersionHash and no UserID; both are assigned
// by Accept once validation passes.
func CompileConfigs(v cue.Value) ([]habit.Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	habitsVal := v.LookupPath(cue.ParsePath("habits"))
	if !habitsVal.Exists() {
		return nil, &CompileError{
			Field:   "habits",
			Message: "top-level habits struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := habitsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var configs []habit.Config
	for iter.Next() {
		cfg, err := CompileConfig(iter.Selector().String(), iter.Value())
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}

	if len(configs) == 0 {
		return nil, &CompileError{
			Field:   "habits",
			Message: "at least one habit definition is required",
			Pos:     habitsVal.Pos(),
		}
	}

	return configs, nil
}

// CompileConfig parses a single habit definition struct.
func CompileConfig(id string, v cue.Value) (*habit.Config, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &habit.Config{ID: id, Schedule: "daily"}

	// name (required)
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cfg.Name = name

	// kind (required)
	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return nil, &CompileError{
			Field:   "kind",
			Message: "kind is required (formation or breaking)",
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	cfg.Kind = habit.Kind(kind)

	// Amounts are integers in the habit's smallest unit. CUE's Int64
	// already rejects floats, matching the core's no-floats rule.
	cfg.Goal, err = optionalInt(v, "goal")
	if err != nil {
		return nil, err
	}
	cfg.Baseline, err = optionalInt(v, "baseline")
	if err != nil {
		return nil, err
	}
	cfg.Target, err = optionalInt(v, "target")
	if err != nil {
		return nil, err
	}

	// schedule (optional, defaults to daily)
	schedVal := v.LookupPath(cue.ParsePath("schedule"))
	if schedVal.Exists() {
		sched, err := schedVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		cfg.Schedule = sched
	}

	return cfg, nil
}

// optionalInt reads an optional integer field, returning 0 when absent.
func optionalInt(v cue.Value, field string) (int64, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return 0, nil
	}
	n, err := fieldVal.Int64()
	if err != nil {
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be an integer: %v", err),
			Pos:     fieldVal.Pos(),
		}
	}
	return n, nil
}

// CompileError reports a structural problem in a habit definition file.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
