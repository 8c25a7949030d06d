package compiler

import (
	"fmt"
	"strings"

	"github.com/tallyhq/tally/internal/habit"
)

// Structural validation error codes (E100-E119). Any of these blocks
// acceptance; there is no accept-with-warnings path for structural
// invariants.
const (
	ErrHabitIDEmpty      = "E100" // habit id is required
	ErrNameEmpty         = "E101" // name is required
	ErrInvalidKind       = "E102" // kind must be formation or breaking
	ErrGoalNotPositive   = "E103" // formation goal must be > 0
	ErrBaselineInvalid   = "E104" // breaking baseline must be > 0
	ErrTargetNotUnder    = "E105" // breaking target must be strictly < baseline
	ErrTargetNegative    = "E106" // breaking target must be >= 0
	ErrFieldForWrongKind = "E107" // field set for the other kind
	ErrDuplicateHabitID  = "E108" // duplicate habit id in one batch
	ErrHashFailure       = "E109" // config could not be canonically hashed
)

// Advisory codes (A100-A119). Advisories never block acceptance and by
// design never cover goal/target/baseline ordering — those are always
// structural.
const (
	AdviseLongName      = "A100" // name is unusually long
	AdviseTightTarget   = "A101" // breaking target is a steep cut from baseline
	AdviseEmptySchedule = "A102" // schedule is empty, treated as daily
)

// ValidationError is a gating structural violation.
type ValidationError struct {
	HabitID string `json:"habit_id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.HabitID != "" {
		return fmt.Sprintf("[%s] habit %s: %s: %s", e.Code, e.HabitID, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Advisory is a non-gating suggestion. It is a visibly distinct type from
// ValidationError so callers cannot confuse the two severities.
type Advisory struct {
	HabitID string `json:"habit_id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Validate checks the structural invariants of a configuration.
// Returns all violations found (does not fail-fast). An empty result
// means the configuration may be accepted.
func Validate(cfg habit.Config) []ValidationError {
	var errs []ValidationError

	fail := func(field, code, msg string) {
		errs = append(errs, ValidationError{
			HabitID: cfg.ID,
			Field:   field,
			Message: msg,
			Code:    code,
		})
	}

	if strings.TrimSpace(cfg.ID) == "" {
		fail("id", ErrHabitIDEmpty, "habit id is required and must be non-empty")
	}
	if strings.TrimSpace(cfg.Name) == "" {
		fail("name", ErrNameEmpty, "name is required and must be non-empty")
	}

	switch cfg.Kind {
	case habit.KindFormation:
		if cfg.Goal <= 0 {
			fail("goal", ErrGoalNotPositive,
				fmt.Sprintf("formation goal must be positive, got %d", cfg.Goal))
		}
		if cfg.Baseline != 0 || cfg.Target != 0 {
			fail("baseline", ErrFieldForWrongKind,
				"baseline/target are breaking-habit fields and must be unset for formation")
		}
	case habit.KindBreaking:
		if cfg.Baseline <= 0 {
			fail("baseline", ErrBaselineInvalid,
				fmt.Sprintf("breaking baseline must be positive, got %d", cfg.Baseline))
		}
		if cfg.Target < 0 {
			fail("target", ErrTargetNegative,
				fmt.Sprintf("breaking target must be non-negative, got %d", cfg.Target))
		}
		// Strict ordering: a target equal to the baseline would declare
		// current behavior "success" and defeat the habit.
		if cfg.Baseline > 0 && cfg.Target >= cfg.Baseline {
			fail("target", ErrTargetNotUnder,
				fmt.Sprintf("breaking target (%d) must be strictly below baseline (%d)",
					cfg.Target, cfg.Baseline))
		}
		if cfg.Goal != 0 {
			fail("goal", ErrFieldForWrongKind,
				"goal is a formation-habit field and must be unset for breaking")
		}
	default:
		fail("kind", ErrInvalidKind,
			fmt.Sprintf("kind must be %q or %q, got %q",
				habit.KindFormation, habit.KindBreaking, cfg.Kind))
	}

	return errs
}

// ValidateBatch validates a slice of configurations and additionally
// rejects duplicate habit IDs within the batch.
func ValidateBatch(cfgs []habit.Config) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(cfgs))

	for _, cfg := range cfgs {
		errs = append(errs, Validate(cfg)...)
		if seen[cfg.ID] {
			errs = append(errs, ValidationError{
				HabitID: cfg.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate habit id %q", cfg.ID),
				Code:    ErrDuplicateHabitID,
			})
		}
		seen[cfg.ID] = true
	}

	return errs
}

// Advise returns non-gating suggestions for an otherwise valid
// configuration. Callers may surface these but must not treat them as
// acceptance failures.
func Advise(cfg habit.Config) []Advisory {
	var advisories []Advisory

	if len(cfg.Name) > 80 {
		advisories = append(advisories, Advisory{
			HabitID: cfg.ID,
			Field:   "name",
			Message: fmt.Sprintf("name is %d characters; long names truncate in most views", len(cfg.Name)),
			Code:    AdviseLongName,
		})
	}

	if cfg.Kind == habit.KindBreaking && cfg.Baseline > 0 && cfg.Target*4 < cfg.Baseline {
		advisories = append(advisories, Advisory{
			HabitID: cfg.ID,
			Field:   "target",
			Message: fmt.Sprintf("target %d is under a quarter of baseline %d; gradual targets tend to stick better",
				cfg.Target, cfg.Baseline),
			Code:    AdviseTightTarget,
		})
	}

	if strings.TrimSpace(cfg.Schedule) == "" {
		advisories = append(advisories, Advisory{
			HabitID: cfg.ID,
			Field:   "schedule",
			Message: "schedule is empty; the habit is treated as due every day",
			Code:    AdviseEmptySchedule,
		})
	}

	return advisories
}

// Accept gates a configuration on its structural invariants and, on
// success, returns a copy stamped with its content-addressed version
// hash and owning user. This is the only path that produces a
// persistable configuration.
func Accept(userID string, cfg habit.Config) (habit.Config, []ValidationError) {
	if errs := Validate(cfg); len(errs) > 0 {
		return habit.Config{}, errs
	}

	cfg.UserID = userID
	hash, err := habit.ConfigVersionHash(cfg)
	if err != nil {
		return habit.Config{}, []ValidationError{{
			HabitID: cfg.ID,
			Field:   "config",
			Message: fmt.Sprintf("cannot compute version hash: %v", err),
			Code:    ErrHashFailure,
		}}
	}
	cfg.VersionHash = hash
	return cfg, nil
}
