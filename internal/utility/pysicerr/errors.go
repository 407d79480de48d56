// Package pysicerr holds the error surface shared by every pysic package.
//
// Failures are reported as sentinel errors, optionally wrapped in [Error] to
// carry the failing operation and the offending name. Callers match them with
// errors.Is:
//
//	if errors.Is(err, pysicerr.ErrInvalidPotential) { ... }
package pysicerr

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	// ErrInvalidPotential indicates an unknown potential type or bad targets.
	ErrInvalidPotential = errors.New("pysic: invalid potential")

	// ErrInvalidParameters indicates a wrong number or value of parameters.
	ErrInvalidParameters = errors.New("pysic: invalid parameters")

	// ErrInvalidCoordinator indicates a bond order setup that cannot be evaluated.
	ErrInvalidCoordinator = errors.New("pysic: invalid coordinator")

	// ErrInvalidSummation indicates a Coulomb summation that does not fit the system.
	ErrInvalidSummation = errors.New("pysic: invalid coulomb summation")

	// ErrInvalidRelaxation indicates a bad charge relaxation setup.
	ErrInvalidRelaxation = errors.New("pysic: invalid charge relaxation")

	// ErrInvalidSubSystem indicates an ambiguous or conflicting atom selection.
	ErrInvalidSubSystem = errors.New("pysic: invalid subsystem")

	// ErrInvalidBinding indicates a binding between unknown subsystems.
	ErrInvalidBinding = errors.New("pysic: invalid binding")

	// ErrMissingAtoms indicates an evaluation without a usable atomic structure.
	ErrMissingAtoms = errors.New("pysic: missing or inconsistent atoms")

	// ErrNotConverged indicates an iterative solver ran out of steps.
	ErrNotConverged = errors.New("pysic: iteration did not converge")
)

// Error wraps a sentinel with the operation and the name that caused it.
type Error struct {
	Op   string
	Name string
	Msg  string
	Err  error
}

// New builds an *Error around sentinel with a formatted message.
func New(op, name string, sentinel error, format string, args ...any) *Error {
	return &Error{Op: op, Name: name, Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

func (e *Error) Error() string {
	s := e.Err.Error()
	if e.Op != "" {
		s += ": " + e.Op
	}
	if e.Name != "" {
		s += " " + fmt.Sprintf("%q", e.Name)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Warn records a non-fatal problem. A nil logger drops the warning.
func Warn(logger *zap.Logger, msg string, fields ...zap.Field) {
	if logger == nil {
		return
	}
	logger.Warn(msg, fields...)
}
