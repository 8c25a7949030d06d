package harness

import "fmt"

// TraceEvent is one executed flow action with its persisted outcome.
type TraceEvent struct {
	Type      string `json:"type"` // "add", "record", "set", "edit", "delete"
	Habit     string `json:"habit"`
	Date      string `json:"date,omitempty"`
	Delta     int64  `json:"delta,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Completed bool   `json:"completed,omitempty"`
	Seq       int64  `json:"seq"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains all executed actions in order. Used for golden
	// comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation messages. Empty when Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result to accumulate into.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a validation failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// AddTrace appends an executed action to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
