package collapse

import (
	"errors"
	"fmt"
)

var (
	// ErrParameterBounds indicates a parameter value is outside the valid range.
	ErrParameterBounds = errors.New("collapse: parameter out of valid bounds")

	// ErrInvalidState indicates NaN or Inf in the shell mesh.
	ErrInvalidState = errors.New("collapse: invalid state (NaN or Inf detected)")

	// ErrFinished is returned when stepping a simulator that already reached its step count.
	ErrFinished = errors.New("collapse: simulation already finished")
)

// ValidationError reports a single rejected parameter.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("collapse: invalid %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrParameterBounds
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
