package engine

import (
	"errors"
	"fmt"

	"github.com/tallyhq/tally/internal/compiler"
)

// TrackerError represents an error detected by the engine.
//
// All tracker errors are local failures returned to the immediate
// caller; none is fatal to the process.
type TrackerError struct {
	// Code identifies the error category.
	Code TrackerErrorCode

	// Message is a human-readable description.
	Message string

	// HabitID identifies the affected habit, when applicable.
	HabitID string

	// Date identifies the affected date key, when applicable.
	Date string

	// Violations carries the structural validation errors for
	// ErrCodeConfigRejected.
	Violations []compiler.ValidationError

	// Err is the wrapped underlying error, when applicable.
	Err error
}

// TrackerErrorCode categorizes tracker errors.
type TrackerErrorCode string

const (
	// ErrCodeUnknownHabit indicates the habit does not exist for the user.
	ErrCodeUnknownHabit TrackerErrorCode = "UNKNOWN_HABIT"

	// ErrCodeInvalidDate indicates a malformed date key.
	ErrCodeInvalidDate TrackerErrorCode = "INVALID_DATE"

	// ErrCodeConfigRejected indicates a configuration failed structural
	// validation. The save did not happen.
	ErrCodeConfigRejected TrackerErrorCode = "CONFIG_REJECTED"

	// ErrCodeStoreFailure indicates the durable store refused a read or
	// write. The operation did not take effect.
	ErrCodeStoreFailure TrackerErrorCode = "STORE_FAILURE"
)

// Error implements the error interface.
func (e *TrackerError) Error() string {
	switch {
	case e.HabitID != "" && e.Date != "":
		return fmt.Sprintf("%s: %s (habit=%s, date=%s)", e.Code, e.Message, e.HabitID, e.Date)
	case e.HabitID != "":
		return fmt.Sprintf("%s: %s (habit=%s)", e.Code, e.Message, e.HabitID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *TrackerError) Unwrap() error {
	return e.Err
}

// IsUnknownHabit reports whether err is an unknown-habit error.
// Uses errors.As to handle wrapped errors.
func IsUnknownHabit(err error) bool {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Code == ErrCodeUnknownHabit
	}
	return false
}

// IsConfigRejected reports whether err is a validation rejection.
func IsConfigRejected(err error) bool {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Code == ErrCodeConfigRejected
	}
	return false
}

// IsStoreFailure reports whether err is a store failure.
func IsStoreFailure(err error) bool {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Code == ErrCodeStoreFailure
	}
	return false
}

// newUnknownHabitError creates a TrackerError for a missing habit.
func newUnknownHabitError(habitID string) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeUnknownHabit,
		Message: "habit not found for user",
		HabitID: habitID,
	}
}

// newConfigRejectedError creates a TrackerError carrying violations.
func newConfigRejectedError(habitID string, violations []compiler.ValidationError) *TrackerError {
	return &TrackerError{
		Code:       ErrCodeConfigRejected,
		Message:    fmt.Sprintf("configuration rejected with %d violation(s)", len(violations)),
		HabitID:    habitID,
		Violations: violations,
	}
}

// newInvalidDateError creates a TrackerError for a malformed date key.
func newInvalidDateError(date string) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeInvalidDate,
		Message: "date key must be YYYY-MM-DD",
		Date:    date,
	}
}

// newStoreFailureError wraps an underlying store error.
func newStoreFailureError(op string, err error) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeStoreFailure,
		Message: op,
		Err:     err,
	}
}
