package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/tallyhq/tally/internal/habit"
)

// TraceSnapshot captures the full trace of a scenario execution for
// golden comparison. Serialized with canonical JSON so the byte layout
// never depends on map iteration order.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
}

// toCanonicalMap converts the snapshot into the map form that
// habit.MarshalCanonical accepts. Zero-valued optional fields are
// omitted so traces stay minimal and stable.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type":  event.Type,
			"habit": event.Habit,
			"seq":   event.Seq,
		}
		if event.Date != "" {
			eventMap["date"] = event.Date
			eventMap["amount"] = event.Amount
			eventMap["completed"] = event.Completed
		}
		if event.Type == "record" {
			eventMap["delta"] = event.Delta
		}
		traceList[i] = eventMap
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Trace:        result.Trace,
	}
	traceJSON, err := habit.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return result, nil
}
