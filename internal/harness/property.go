package harness

import (
	"bytes"
	"fmt"

	"github.com/tallyhq/tally/internal/habit"
)

// CheckDeterminism runs the scenario twice and verifies the two traces
// are byte-identical under canonical serialization. Any divergence means
// nondeterminism leaked into the write path (wall clock, map iteration,
// random IDs) and every golden file is suspect.
func CheckDeterminism(scenario *Scenario) error {
	first, err := runTraceBytes(scenario)
	if err != nil {
		return fmt.Errorf("first run: %w", err)
	}
	second, err := runTraceBytes(scenario)
	if err != nil {
		return fmt.Errorf("second run: %w", err)
	}
	if !bytes.Equal(first, second) {
		return fmt.Errorf("traces differ between runs:\n  first:  %s\n  second: %s", first, second)
	}
	return nil
}

func runTraceBytes(scenario *Scenario) ([]byte, error) {
	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	snapshot := TraceSnapshot{ScenarioName: scenario.Name, Trace: result.Trace}
	return habit.MarshalCanonical(snapshot.toCanonicalMap())
}
