package md

import "errors"

var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("md: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a non-positive timestep or step count.
	ErrInvalidConfig = errors.New("md: invalid run configuration")

	// ErrDimensionMismatch indicates a state that does not fit the system.
	ErrDimensionMismatch = errors.New("md: dimension mismatch between state and system")

	// ErrForceField indicates the force evaluation failed during a run.
	ErrForceField = errors.New("md: force evaluation failed")
)

// SimulationError wraps an error with the step it happened at.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return e.Wrapped.Error()
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
