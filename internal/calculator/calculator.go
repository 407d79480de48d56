// Package calculator implements Pysic, the calculator that combines local
// potentials, bond order factors, Coulomb summation and charge relaxation
// into energies, forces, stresses and electronegativities.
package calculator

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/pysic/internal/charges/relaxation"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/coulomb"
	"github.com/san-kum/pysic/internal/interactions/local"
	"github.com/san-kum/pysic/internal/neighbors"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

const defaultSkin = 0.3

// Result is one evaluation of a structure. Stress is in Voigt order
// (xx, yy, zz, yz, xz, xy) in eV/Å³ and is only set for cells with a volume.
type Result struct {
	Energy              float64
	Forces              []geometry.Vec3
	Electronegativities []float64
	Virial              [3][3]float64
	Stress              [6]float64
	HasStress           bool
}

func (r *Result) clone() *Result {
	c := *r
	c.Forces = append([]geometry.Vec3(nil), r.Forces...)
	c.Electronegativities = append([]float64(nil), r.Electronegativities...)
	return &c
}

type Pysic struct {
	mu sync.Mutex

	logger     *zap.Logger
	skin       float64
	terms      []local.Term
	coulomb    *coulomb.CoulombSummation
	relaxation *relaxation.ChargeRelaxation

	nl       *neighbors.FastNeighborList
	nlRadius float64

	cached      *Result
	fingerprint uint64
}

type Option func(*Pysic)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pysic) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSkin sets the neighbour list skin in Å.
func WithSkin(skin float64) Option {
	return func(p *Pysic) {
		if skin >= 0 {
			p.skin = skin
		}
	}
}

func New(opts ...Option) *Pysic {
	p := &Pysic{logger: zap.NewNop(), skin: defaultSkin}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddPotential appends a local term.
func (p *Pysic) AddPotential(t local.Term) error {
	if t == nil {
		return pysicerr.New("Pysic.AddPotential", "", pysicerr.ErrInvalidPotential, "nil potential")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terms = append(p.terms, t)
	p.invalidate()
	return nil
}

// SetPotentials replaces all local terms.
func (p *Pysic) SetPotentials(terms ...local.Term) error {
	for _, t := range terms {
		if t == nil {
			return pysicerr.New("Pysic.SetPotentials", "", pysicerr.ErrInvalidPotential, "nil potential")
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terms = append([]local.Term(nil), terms...)
	p.invalidate()
	return nil
}

func (p *Pysic) Potentials() []local.Term {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]local.Term(nil), p.terms...)
}

// SetCoulombSummation attaches or, with nil, removes the electrostatics.
func (p *Pysic) SetCoulombSummation(c *coulomb.CoulombSummation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.coulomb = c
	p.invalidate()
}

func (p *Pysic) CoulombSummation() *coulomb.CoulombSummation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.coulomb
}

// SetChargeRelaxation attaches or, with nil, removes charge relaxation.
func (p *Pysic) SetChargeRelaxation(r *relaxation.ChargeRelaxation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.relaxation = r
	p.invalidate()
}

func (p *Pysic) ChargeRelaxation() *relaxation.ChargeRelaxation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.relaxation
}

// NeighborList returns the list used by the last evaluation, nil before the
// first one or when no term needs neighbours.
func (p *Pysic) NeighborList() *neighbors.FastNeighborList {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nl
}

func (p *Pysic) invalidate() {
	p.cached = nil
}

// Calculate relaxes the charges of atoms in place when a charge relaxation
// is attached, then evaluates the structure.
func (p *Pysic) Calculate(ctx context.Context, atoms *geometry.Atoms) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := atoms.Validate(); err != nil {
		return nil, err
	}
	if p.relaxation != nil {
		src := relaxation.SourceFunc(func(a *geometry.Atoms) ([]float64, error) {
			res, err := p.evaluate(a)
			if err != nil {
				return nil, err
			}
			return res.Electronegativities, nil
		})
		rep, err := p.relaxation.Relax(ctx, atoms, src)
		if err != nil {
			return nil, err
		}
		p.logger.Debug("charge relaxation finished",
			zap.Int("steps", rep.Steps), zap.Bool("converged", rep.Converged))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := p.evaluate(atoms)
	if err != nil {
		return nil, err
	}
	return res.clone(), nil
}

func (p *Pysic) GetPotentialEnergy(atoms *geometry.Atoms) (float64, error) {
	res, err := p.Calculate(context.Background(), atoms)
	if err != nil {
		return 0, err
	}
	return res.Energy, nil
}

func (p *Pysic) GetForces(atoms *geometry.Atoms) ([]geometry.Vec3, error) {
	res, err := p.Calculate(context.Background(), atoms)
	if err != nil {
		return nil, err
	}
	return res.Forces, nil
}

// GetStress returns the Voigt stress. The cell must have a non-zero volume.
func (p *Pysic) GetStress(atoms *geometry.Atoms) ([6]float64, error) {
	res, err := p.Calculate(context.Background(), atoms)
	if err != nil {
		return [6]float64{}, err
	}
	if !res.HasStress {
		return [6]float64{}, pysicerr.New("Pysic.GetStress", "", pysicerr.ErrInvalidParameters,
			"stress needs a periodic cell with non-zero volume")
	}
	return res.Stress, nil
}

// GetElectronegativities returns ∂E/∂q_i at the current charges. Charges are
// not relaxed first.
func (p *Pysic) GetElectronegativities(atoms *geometry.Atoms) ([]float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := atoms.Validate(); err != nil {
		return nil, err
	}
	res, err := p.evaluate(atoms)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), res.Electronegativities...), nil
}

// evaluate returns the cached result when the structure is unchanged.
// Callers hold p.mu.
func (p *Pysic) evaluate(atoms *geometry.Atoms) (*Result, error) {
	fp := fingerprint(atoms, p.terms)
	if p.cached != nil && p.fingerprint == fp && len(p.cached.Forces) == atoms.Len() {
		return p.cached, nil
	}
	res, err := p.compute(atoms)
	if err != nil {
		return nil, err
	}
	p.cached, p.fingerprint = res, fp
	return res, nil
}

func (p *Pysic) maxCutoff() float64 {
	rc := 0.0
	for _, t := range p.terms {
		if t.NumberOfTargets() != 2 {
			continue
		}
		rc = math.Max(rc, t.Cutoff())
		if c := t.Coordinator(); c != nil {
			rc = math.Max(rc, c.MaxCutoff())
		}
	}
	return rc
}

func (p *Pysic) neighborList(atoms *geometry.Atoms) (*neighbors.FastNeighborList, error) {
	rc := p.maxCutoff()
	if rc == 0 {
		p.nl = nil
		return nil, nil
	}
	if p.nl == nil || p.nl.Len() != atoms.Len() || p.nlRadius != 0.5*rc {
		nl, err := neighbors.Uniform(atoms.Len(), 0.5*rc, p.skin)
		if err != nil {
			return nil, err
		}
		p.nl, p.nlRadius = nl, 0.5*rc
	}
	rebuilt, err := p.nl.Update(atoms)
	if err != nil {
		return nil, err
	}
	if rebuilt {
		p.logger.Debug("neighbour list rebuilt",
			zap.Int("atoms", atoms.Len()), zap.Int("revision", p.nl.Revision()), zap.Float64("cutoff", rc))
	}
	return p.nl, nil
}
