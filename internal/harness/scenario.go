package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tallyhq/tally/internal/habit"
)

// Scenario defines a conformance test scenario: habits to create, a flow
// of writes and edits, and assertions over the persisted outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// User owns every habit in the scenario. Defaults to "user-1".
	User string `yaml:"user,omitempty"`

	// RewardPerDay overrides the tracker's XP reward. Zero means the
	// engine default.
	RewardPerDay int64 `yaml:"reward_per_day,omitempty"`

	// Habits are created before the flow runs. Creation is assumed to
	// succeed; a rejected config fails the scenario immediately.
	Habits []HabitDef `yaml:"habits"`

	// Steps is the main flow, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final persisted state.
	Assertions []Assertion `yaml:"assertions"`
}

// HabitDef declares a habit configuration in scenario YAML.
type HabitDef struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Goal     int64  `yaml:"goal,omitempty"`
	Baseline int64  `yaml:"baseline,omitempty"`
	Target   int64  `yaml:"target,omitempty"`
	Schedule string `yaml:"schedule,omitempty"`
}

// Config converts the YAML definition into a domain config.
func (h HabitDef) Config() habit.Config {
	return habit.Config{
		ID:       h.ID,
		Name:     h.Name,
		Kind:     habit.Kind(h.Kind),
		Goal:     h.Goal,
		Baseline: h.Baseline,
		Target:   h.Target,
		Schedule: h.Schedule,
	}
}

// Step is one flow action. Exactly one of Record, Set, Edit, or Delete
// must be present.
type Step struct {
	// Record applies a relative progress delta.
	Record *ProgressStep `yaml:"record,omitempty"`

	// Set overwrites the cumulative amount for a habit-date.
	Set *ProgressStep `yaml:"set,omitempty"`

	// Edit replaces a habit's configuration.
	Edit *HabitDef `yaml:"edit,omitempty"`

	// Delete removes a habit and all its data.
	Delete string `yaml:"delete,omitempty"`

	// Expect validates the write outcome. Only meaningful for Record
	// and Set steps.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a progress write.
// Nil fields are not checked.
type ExpectClause struct {
	Completed *bool  `yaml:"completed,omitempty"`
	Amount    *int64 `yaml:"amount,omitempty"`
}

// Assertion validates final state after the flow.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Habit and Date select the key (completed, entry, events).
	Habit string `yaml:"habit,omitempty"`
	Date  string `yaml:"date,omitempty"`

	// Completed is the expected verdict (completed).
	Completed *bool `yaml:"completed,omitempty"`

	// Amount is the expected ledger amount (entry).
	Amount *int64 `yaml:"amount,omitempty"`

	// Timestamps is the expected audit timestamp count (entry). Zero
	// means not checked.
	Timestamps int `yaml:"timestamps,omitempty"`

	// Count is the expected audit event count (events).
	Count int `yaml:"count,omitempty"`

	// From, To, and AsOf bound the derivation window (stats).
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
	AsOf string `yaml:"as_of,omitempty"`

	// Stats are the expected derived values (stats).
	Stats *StatsExpect `yaml:"stats,omitempty"`
}

// StatsExpect is the expected derivation outcome for a stats assertion.
type StatsExpect struct {
	CompletedDays int64 `yaml:"completed_days"`
	CurrentStreak int64 `yaml:"current_streak"`
	LongestStreak int64 `yaml:"longest_streak"`
	TotalXP       int64 `yaml:"total_xp"`
}

// Assertion type constants.
const (
	AssertCompleted = "completed"
	AssertEntry     = "entry"
	AssertEvents    = "events"
	AssertStats     = "stats"
)

// DefaultUser owns scenario habits when the YAML names none.
const DefaultUser = "user-1"

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently skipping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.User == "" {
		s.User = DefaultUser
	}
	if len(s.Habits) == 0 {
		return fmt.Errorf("habits list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, h := range s.Habits {
		if h.ID == "" {
			return fmt.Errorf("habits[%d]: id is required", i)
		}
		if h.Kind == "" {
			return fmt.Errorf("habits[%d]: kind is required", i)
		}
	}

	for i, step := range s.Steps {
		actions := 0
		if step.Record != nil {
			actions++
		}
		if step.Set != nil {
			actions++
		}
		if step.Edit != nil {
			actions++
		}
		if step.Delete != "" {
			actions++
		}
		if actions != 1 {
			return fmt.Errorf("steps[%d]: exactly one of record, set, edit, delete is required", i)
		}
		if step.Expect != nil && step.Record == nil && step.Set == nil {
			return fmt.Errorf("steps[%d]: expect is only valid on record and set steps", i)
		}
		for _, p := range []*ProgressStep{step.Record, step.Set} {
			if p == nil {
				continue
			}
			if p.Habit == "" {
				return fmt.Errorf("steps[%d]: habit is required", i)
			}
			if p.Date == "" {
				return fmt.Errorf("steps[%d]: date is required", i)
			}
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertCompleted:
		if a.Habit == "" || a.Date == "" {
			return fmt.Errorf("assertions[%d]: habit and date are required for completed", index)
		}
		if a.Completed == nil {
			return fmt.Errorf("assertions[%d]: completed is required for completed", index)
		}
	case AssertEntry:
		if a.Habit == "" || a.Date == "" {
			return fmt.Errorf("assertions[%d]: habit and date are required for entry", index)
		}
		if a.Amount == nil && a.Timestamps == 0 {
			return fmt.Errorf("assertions[%d]: amount or timestamps is required for entry", index)
		}
	case AssertEvents:
		if a.Habit == "" || a.Date == "" {
			return fmt.Errorf("assertions[%d]: habit and date are required for events", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for events", index)
		}
	case AssertStats:
		if a.From == "" || a.To == "" {
			return fmt.Errorf("assertions[%d]: from and to are required for stats", index)
		}
		if a.Stats == nil {
			return fmt.Errorf("assertions[%d]: stats is required for stats", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// ProgressStep identifies a progress write in scenario YAML.
type ProgressStep struct {
	Habit  string `yaml:"habit"`
	Date   string `yaml:"date"`
	Amount int64  `yaml:"amount"`
}
