// Package relaxation equilibrates atomic charges.
//
// The "dynamic" method treats charges as fictitious particles with inertia
// M and friction γ moving under the electronegativity difference
//
//	q̈_i = -(χ_i - χ̄)/M - γ q̇_i
//
// until every χ_i agrees with the mean χ̄ within the tolerance. The total
// charge is conserved.
package relaxation

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/pysic/internal/core"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// ElectronegativitySource returns χ_i = ∂E/∂q_i for the current charges.
type ElectronegativitySource interface {
	GetElectronegativities(atoms *geometry.Atoms) ([]float64, error)
}

// SourceFunc adapts a function to ElectronegativitySource.
type SourceFunc func(atoms *geometry.Atoms) ([]float64, error)

func (f SourceFunc) GetElectronegativities(atoms *geometry.Atoms) ([]float64, error) {
	return f(atoms)
}

// Report summarises a relaxation.
type Report struct {
	Steps        int
	Converged    bool
	MaxDeviation float64
}

type ChargeRelaxation struct {
	method string
	params []float64
	strict bool
	logger *zap.Logger
}

type Option func(*ChargeRelaxation)

// WithStrictConvergence makes Relax fail with ErrNotConverged when the step
// limit is reached. By default a warning is logged instead.
func WithStrictConvergence() Option {
	return func(r *ChargeRelaxation) { r.strict = true }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *ChargeRelaxation) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewChargeRelaxation expects the parameters listed by
// core.NamesOfChargeRelaxationParameters in that order.
func NewChargeRelaxation(method string, params []float64, opts ...Option) (*ChargeRelaxation, error) {
	desc, err := core.ChargeRelaxationMethod(method)
	if err != nil {
		return nil, err
	}
	if len(params) != len(desc.Parameters) {
		return nil, pysicerr.New("NewChargeRelaxation", method, pysicerr.ErrInvalidParameters,
			"expected %d parameters %v, got %d", len(desc.Parameters), desc.Parameters, len(params))
	}
	r := &ChargeRelaxation{method: method, params: append([]float64(nil), params...), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ChargeRelaxation) validate() error {
	steps, dt, inertia, friction, tol := r.params[0], r.params[1], r.params[2], r.params[3], r.params[4]
	switch {
	case steps < 1 || steps != math.Trunc(steps):
		return pysicerr.New("NewChargeRelaxation", r.method, pysicerr.ErrInvalidParameters, "n_steps must be a positive integer, got %g", steps)
	case !(dt > 0):
		return pysicerr.New("NewChargeRelaxation", r.method, pysicerr.ErrInvalidParameters, "timestep must be positive, got %g", dt)
	case !(inertia > 0):
		return pysicerr.New("NewChargeRelaxation", r.method, pysicerr.ErrInvalidParameters, "inertia must be positive, got %g", inertia)
	case !(friction >= 0):
		return pysicerr.New("NewChargeRelaxation", r.method, pysicerr.ErrInvalidParameters, "friction must be non-negative, got %g", friction)
	case !(tol > 0):
		return pysicerr.New("NewChargeRelaxation", r.method, pysicerr.ErrInvalidParameters, "tolerance must be positive, got %g", tol)
	}
	return nil
}

func (r *ChargeRelaxation) Method() string        { return r.method }
func (r *ChargeRelaxation) Parameters() []float64 { return append([]float64(nil), r.params...) }
func (r *ChargeRelaxation) Strict() bool          { return r.strict }

func (r *ChargeRelaxation) Parameter(name string) (float64, error) {
	names, _ := core.NamesOfChargeRelaxationParameters(r.method)
	for i, n := range names {
		if n == name {
			return r.params[i], nil
		}
	}
	return 0, pysicerr.New("ChargeRelaxation.Parameter", name, pysicerr.ErrInvalidParameters,
		"%s has no such parameter", r.method)
}

// SetParameter changes one parameter, keeping the old value if the new one
// is invalid.
func (r *ChargeRelaxation) SetParameter(name string, value float64) error {
	names, _ := core.NamesOfChargeRelaxationParameters(r.method)
	for i, n := range names {
		if n != name {
			continue
		}
		old := r.params[i]
		r.params[i] = value
		if err := r.validate(); err != nil {
			r.params[i] = old
			return err
		}
		return nil
	}
	return pysicerr.New("ChargeRelaxation.SetParameter", name, pysicerr.ErrInvalidParameters,
		"%s has no such parameter", r.method)
}

// Relax updates atoms.Charges in place.
func (r *ChargeRelaxation) Relax(ctx context.Context, atoms *geometry.Atoms, src ElectronegativitySource) (Report, error) {
	var rep Report
	if atoms == nil || atoms.Len() == 0 {
		return rep, pysicerr.ErrMissingAtoms
	}
	nSteps := int(r.params[0])
	dt, inertia, friction, tol := r.params[1], r.params[2], r.params[3], r.params[4]

	n := atoms.Len()
	total := atoms.TotalCharge()
	vel := make([]float64, n)
	acc := make([]float64, n)

	force := func() (float64, error) {
		chi, err := src.GetElectronegativities(atoms)
		if err != nil {
			return 0, err
		}
		if len(chi) != n {
			return 0, fmt.Errorf("%w: %d electronegativities for %d atoms", pysicerr.ErrMissingAtoms, len(chi), n)
		}
		mean := 0.0
		for _, c := range chi {
			mean += c
		}
		mean /= float64(n)
		dev := 0.0
		for i, c := range chi {
			dev = math.Max(dev, math.Abs(c-mean))
			acc[i] = -(c-mean)/inertia - friction*vel[i]
		}
		return dev, nil
	}

	dev, err := force()
	if err != nil {
		return rep, err
	}
	for rep.Steps = 0; rep.Steps < nSteps; rep.Steps++ {
		rep.MaxDeviation = dev
		if dev < tol {
			rep.Converged = true
			break
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		for i := range vel {
			vel[i] += 0.5 * dt * acc[i]
			atoms.Charges[i] += dt * vel[i]
		}
		neutralize(atoms.Charges, total)
		if dev, err = force(); err != nil {
			return rep, err
		}
		for i := range vel {
			vel[i] += 0.5 * dt * acc[i]
		}
	}
	if !rep.Converged {
		rep.MaxDeviation = dev
		rep.Converged = dev < tol
	}

	if !rep.Converged {
		if r.strict {
			return rep, pysicerr.New("ChargeRelaxation.Relax", r.method, pysicerr.ErrNotConverged,
				"max electronegativity deviation %g after %d steps", dev, rep.Steps)
		}
		pysicerr.Warn(r.logger, "charge relaxation did not converge",
			zap.Int("steps", rep.Steps), zap.Float64("max_deviation", dev), zap.Float64("tolerance", tol))
	} else {
		r.logger.Debug("charges relaxed", zap.Int("steps", rep.Steps), zap.Float64("max_deviation", rep.MaxDeviation))
	}
	return rep, nil
}

// neutralize removes round-off drift of the total charge.
func neutralize(q []float64, total float64) {
	sum := 0.0
	for _, v := range q {
		sum += v
	}
	shift := (total - sum) / float64(len(q))
	for i := range q {
		q[i] += shift
	}
}
