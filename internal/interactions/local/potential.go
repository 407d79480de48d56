// Package local implements short-ranged potentials: pair potentials such as
// Lennard-Jones or Buckingham, single-body terms such as external forces and
// charge self energies, and products of them.
package local

import (
	"math"

	"github.com/san-kum/pysic/internal/core"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// Term is anything the calculator can evaluate as a local interaction.
type Term interface {
	Kind() string
	NumberOfTargets() int
	Cutoff() float64
	MatchesAtom(atoms *geometry.Atoms, i int) bool
	MatchesPair(atoms *geometry.Atoms, i, j int) bool
	// Pair returns V(r) and dV/dr, cutoff smoothing included.
	Pair(r float64) (float64, float64)
	// Single returns V, ∇_r V and ∂V/∂q for a one-body term.
	Single(pos geometry.Vec3, q float64) (float64, geometry.Vec3, float64)
	Coordinator() *bondorder.Coordinator
}

type Potential struct {
	kind        string
	desc        core.Descriptor
	symbols     [][]string
	tags        [][]int
	indices     [][]int
	params      []float64
	cutoff      float64
	margin      float64
	coordinator *bondorder.Coordinator
}

type Option func(*Potential)

// WithSymbols adds element targets, one slice per target tuple.
func WithSymbols(targets ...[]string) Option {
	return func(p *Potential) { p.symbols = append(p.symbols, targets...) }
}

func WithTags(targets ...[]int) Option {
	return func(p *Potential) { p.tags = append(p.tags, targets...) }
}

func WithIndices(targets ...[]int) Option {
	return func(p *Potential) { p.indices = append(p.indices, targets...) }
}

func WithParameters(values ...float64) Option {
	return func(p *Potential) { p.params = append([]float64(nil), values...) }
}

func WithCutoff(rc float64) Option {
	return func(p *Potential) { p.cutoff = rc }
}

func WithCutoffMargin(m float64) Option {
	return func(p *Potential) { p.margin = m }
}

func WithCoordinator(c *bondorder.Coordinator) Option {
	return func(p *Potential) { p.coordinator = c }
}

// NewPotential validates kind, targets and parameters against the catalog.
// A potential without any targets applies to every atom.
func NewPotential(kind string, opts ...Option) (*Potential, error) {
	desc, err := core.Potential(kind)
	if err != nil {
		return nil, err
	}
	p := &Potential{kind: kind, desc: desc}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Potential) validate() error {
	if len(p.params) != len(p.desc.Parameters) {
		return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidParameters,
			"expected %d parameters %v, got %d", len(p.desc.Parameters), p.desc.Parameters, len(p.params))
	}
	for _, t := range p.symbols {
		if len(t) != p.desc.Targets {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidPotential, "symbol target %v needs %d entries", t, p.desc.Targets)
		}
	}
	for _, t := range p.tags {
		if len(t) != p.desc.Targets {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidPotential, "tag target %v needs %d entries", t, p.desc.Targets)
		}
	}
	for _, t := range p.indices {
		if len(t) != p.desc.Targets {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidPotential, "index target %v needs %d entries", t, p.desc.Targets)
		}
	}
	if p.desc.Targets == 2 {
		if p.cutoff <= 0 {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidParameters, "pair potential needs a positive cutoff")
		}
		if p.margin < 0 || p.margin > p.cutoff {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidParameters,
				"cutoff margin %g outside [0, %g]", p.margin, p.cutoff)
		}
	} else if p.coordinator != nil {
		return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidCoordinator, "bond order factors need a pair potential")
	}

	switch p.kind {
	case "LJ":
		if p.params[1] <= 0 {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidParameters, "sigma must be positive")
		}
	case "power":
		if p.params[1] <= 0 {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidParameters, "a must be positive")
		}
	case "Buckingham":
		if p.params[1] <= 0 {
			return pysicerr.New("NewPotential", p.kind, pysicerr.ErrInvalidParameters, "rho must be positive")
		}
	}
	return nil
}

func (p *Potential) Kind() string                        { return p.kind }
func (p *Potential) NumberOfTargets() int                { return p.desc.Targets }
func (p *Potential) Cutoff() float64                     { return p.cutoff }
func (p *Potential) CutoffMargin() float64               { return p.margin }
func (p *Potential) Coordinator() *bondorder.Coordinator { return p.coordinator }
func (p *Potential) Parameters() []float64               { return append([]float64(nil), p.params...) }
func (p *Potential) Symbols() [][]string                 { return p.symbols }

// Parameter returns the value of a named parameter.
func (p *Potential) Parameter(name string) (float64, error) {
	idx, err := core.IndexOfParameter(p.kind, name)
	if err != nil {
		return 0, err
	}
	return p.params[idx], nil
}

// SetParameter changes one parameter and re-validates the potential.
func (p *Potential) SetParameter(name string, value float64) error {
	idx, err := core.IndexOfParameter(p.kind, name)
	if err != nil {
		return err
	}
	old := p.params[idx]
	p.params[idx] = value
	if err := p.validate(); err != nil {
		p.params[idx] = old
		return err
	}
	return nil
}

func (p *Potential) SetCoordinator(c *bondorder.Coordinator) error {
	old := p.coordinator
	p.coordinator = c
	if err := p.validate(); err != nil {
		p.coordinator = old
		return err
	}
	return nil
}

func (p *Potential) untargeted() bool {
	return len(p.symbols) == 0 && len(p.tags) == 0 && len(p.indices) == 0
}

func (p *Potential) MatchesAtom(atoms *geometry.Atoms, i int) bool {
	if p.desc.Targets != 1 {
		return false
	}
	if p.untargeted() {
		return true
	}
	for _, t := range p.symbols {
		if t[0] == atoms.Symbols[i] {
			return true
		}
	}
	for _, t := range p.tags {
		if t[0] == atoms.Tags[i] {
			return true
		}
	}
	for _, t := range p.indices {
		if t[0] == i {
			return true
		}
	}
	return false
}

func (p *Potential) MatchesPair(atoms *geometry.Atoms, i, j int) bool {
	if p.desc.Targets != 2 {
		return false
	}
	if p.untargeted() {
		return true
	}
	si, sj := atoms.Symbols[i], atoms.Symbols[j]
	for _, t := range p.symbols {
		if (t[0] == si && t[1] == sj) || (t[0] == sj && t[1] == si) {
			return true
		}
	}
	ti, tj := atoms.Tags[i], atoms.Tags[j]
	for _, t := range p.tags {
		if (t[0] == ti && t[1] == tj) || (t[0] == tj && t[1] == ti) {
			return true
		}
	}
	for _, t := range p.indices {
		if (t[0] == i && t[1] == j) || (t[0] == j && t[1] == i) {
			return true
		}
	}
	return false
}

func (p *Potential) Pair(r float64) (float64, float64) {
	if p.desc.Targets != 2 || r >= p.cutoff || r <= 0 {
		return 0, 0
	}
	v, dv := p.rawPair(r)
	f, df := bondorder.SmoothCutoff(r, p.cutoff, p.margin)
	return v * f, dv*f + v*df
}

func (p *Potential) rawPair(r float64) (float64, float64) {
	switch p.kind {
	case "LJ":
		eps, sigma := p.params[0], p.params[1]
		s6 := math.Pow(sigma/r, 6)
		return 4 * eps * (s6*s6 - s6), 4 * eps * (-12*s6*s6 + 6*s6) / r
	case "spring":
		k, r0 := p.params[0], p.params[1]
		return 0.5 * k * (r - r0) * (r - r0), k * (r - r0)
	case "power":
		eps, a, n := p.params[0], p.params[1], p.params[2]
		v := eps * math.Pow(a/r, n)
		return v, -n * v / r
	case "Buckingham":
		a, rho, c := p.params[0], p.params[1], p.params[2]
		ex := a * math.Exp(-r/rho)
		r6 := math.Pow(r, 6)
		return ex - c/r6, -ex/rho + 6*c/(r6*r)
	case "morse":
		d, alpha, r0 := p.params[0], p.params[1], p.params[2]
		e := math.Exp(-alpha * (r - r0))
		return d * ((1-e)*(1-e) - 1), 2 * d * alpha * (1 - e) * e
	}
	return 0, 0
}

func (p *Potential) Single(pos geometry.Vec3, q float64) (float64, geometry.Vec3, float64) {
	switch p.kind {
	case "constant_force":
		f := geometry.Vec3{p.params[0], p.params[1], p.params[2]}
		return -f.Dot(pos), f.Scale(-1), 0
	case "charge_self":
		chi, j := p.params[0], p.params[1]
		return chi*q + 0.5*j*q*q, geometry.Vec3{}, chi + j*q
	}
	return 0, geometry.Vec3{}, 0
}
