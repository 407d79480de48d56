// Package bondorder evaluates coordination-dependent bond order factors.
//
// A [Coordinator] combines "neighbors" counters, which build a smooth
// coordination number N_i for every atom, with scalers such as "c_scale"
// that turn N_i into a multiplier b_i. A pair potential attached to a
// coordinator contributes ½(b_i + b_j)V(r_ij) for every pair.
package bondorder

import (
	"math"

	"github.com/san-kum/pysic/internal/core"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/neighbors"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// SmoothCutoff returns f_c(r) and df_c/dr. f_c is 1 below rc-margin, decays
// as a cosine inside the margin and vanishes beyond rc.
func SmoothCutoff(r, rc, margin float64) (float64, float64) {
	if r >= rc {
		return 0, 0
	}
	start := rc - margin
	if margin <= 0 || r <= start {
		return 1, 0
	}
	x := math.Pi * (r - start) / margin
	return 0.5 * (1 + math.Cos(x)), -0.5 * math.Pi / margin * math.Sin(x)
}

type BondOrderParameters struct {
	kind    string
	desc    core.Descriptor
	symbols [][]string
	params  []float64
	cutoff  float64
	margin  float64
}

type Option func(*BondOrderParameters)

// WithSymbols sets the element targets: pairs for counters, singletons for
// scalers.
func WithSymbols(targets ...[]string) Option {
	return func(b *BondOrderParameters) { b.symbols = append(b.symbols, targets...) }
}

func WithParameters(values ...float64) Option {
	return func(b *BondOrderParameters) { b.params = append([]float64(nil), values...) }
}

func WithCutoff(rc float64) Option {
	return func(b *BondOrderParameters) { b.cutoff = rc }
}

func WithCutoffMargin(m float64) Option {
	return func(b *BondOrderParameters) { b.margin = m }
}

func NewBondOrderParameters(kind string, opts ...Option) (*BondOrderParameters, error) {
	desc, err := core.BondOrderFactor(kind)
	if err != nil {
		return nil, err
	}
	b := &BondOrderParameters{kind: kind, desc: desc}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.params) != len(desc.Parameters) {
		return nil, pysicerr.New("NewBondOrderParameters", kind, pysicerr.ErrInvalidParameters,
			"expected %d parameters %v, got %d", len(desc.Parameters), desc.Parameters, len(b.params))
	}
	for _, t := range b.symbols {
		if len(t) != desc.Targets {
			return nil, pysicerr.New("NewBondOrderParameters", kind, pysicerr.ErrInvalidCoordinator,
				"target %v does not have %d symbols", t, desc.Targets)
		}
	}
	if !core.IsBondOrderScaler(kind) {
		if b.cutoff <= 0 {
			return nil, pysicerr.New("NewBondOrderParameters", kind, pysicerr.ErrInvalidParameters,
				"cutoff must be positive, got %g", b.cutoff)
		}
		if b.margin < 0 || b.margin > b.cutoff {
			return nil, pysicerr.New("NewBondOrderParameters", kind, pysicerr.ErrInvalidParameters,
				"cutoff margin %g outside [0, %g]", b.margin, b.cutoff)
		}
	}
	return b, nil
}

func (b *BondOrderParameters) Kind() string          { return b.kind }
func (b *BondOrderParameters) Cutoff() float64       { return b.cutoff }
func (b *BondOrderParameters) CutoffMargin() float64 { return b.margin }
func (b *BondOrderParameters) Symbols() [][]string   { return b.symbols }
func (b *BondOrderParameters) Parameters() []float64 { return append([]float64(nil), b.params...) }

func (b *BondOrderParameters) IsScaler() bool { return b.desc.Targets == 1 }

func (b *BondOrderParameters) matchesAtom(sym string) bool {
	if len(b.symbols) == 0 {
		return true
	}
	for _, t := range b.symbols {
		if t[0] == sym {
			return true
		}
	}
	return false
}

func (b *BondOrderParameters) matchesPair(a, c string) bool {
	if len(b.symbols) == 0 {
		return true
	}
	for _, t := range b.symbols {
		if (t[0] == a && t[1] == c) || (t[0] == c && t[1] == a) {
			return true
		}
	}
	return false
}

// Scale maps a coordination number to b(N) and db/dN.
func (b *BondOrderParameters) Scale(n float64) (float64, float64) {
	switch b.kind {
	case "c_scale":
		eps, n0, c, gamma := b.params[0], b.params[1], b.params[2], b.params[3]
		x := n - n0
		ex := math.Exp(gamma * x)
		num := eps * (1 + c*x)
		den := 1 + ex
		return num / den, (eps*c*den - num*gamma*ex) / (den * den)
	case "sqrt_scale":
		eps, n0 := b.params[0], b.params[1]
		v := eps * math.Sqrt((1+n0)/(1+n))
		return v, -0.5 * v / (1 + n)
	}
	return 1, 0
}

type Coordinator struct {
	counters []*BondOrderParameters
	scalers  []*BondOrderParameters
}

// NewCoordinator needs at least one counter and one scaler.
func NewCoordinator(params ...*BondOrderParameters) (*Coordinator, error) {
	c := &Coordinator{}
	for _, p := range params {
		if p == nil {
			continue
		}
		if p.IsScaler() {
			c.scalers = append(c.scalers, p)
		} else {
			c.counters = append(c.counters, p)
		}
	}
	if len(c.counters) == 0 || len(c.scalers) == 0 {
		return nil, pysicerr.New("NewCoordinator", "", pysicerr.ErrInvalidCoordinator,
			"need a neighbour counter and a scaler, got %d and %d", len(c.counters), len(c.scalers))
	}
	return c, nil
}

// BondOrderParameters lists counters first, then scalers.
func (c *Coordinator) BondOrderParameters() []*BondOrderParameters {
	out := append([]*BondOrderParameters(nil), c.counters...)
	return append(out, c.scalers...)
}

func (c *Coordinator) MaxCutoff() float64 {
	m := 0.0
	for _, p := range c.counters {
		m = math.Max(m, p.cutoff)
	}
	return m
}

// ForEachBond visits every directed neighbour pair inside a counter cutoff
// with its displacement d = r_j + shift - r_i.
func (c *Coordinator) ForEachBond(atoms *geometry.Atoms, nl *neighbors.FastNeighborList,
	fn func(i, j int, d geometry.Vec3, r, f, df float64)) {
	for i := 0; i < atoms.Len(); i++ {
		nbrs, shifts := nl.Neighbors(i)
		for k, j := range nbrs {
			d := atoms.Positions[j].Add(shifts[k]).Sub(atoms.Positions[i])
			r := d.Norm()
			for _, p := range c.counters {
				if r >= p.cutoff || !p.matchesPair(atoms.Symbols[i], atoms.Symbols[j]) {
					continue
				}
				f, df := SmoothCutoff(r, p.cutoff, p.margin)
				fn(i, j, d, r, f, df)
			}
		}
	}
}

func (c *Coordinator) Coordination(atoms *geometry.Atoms, nl *neighbors.FastNeighborList) []float64 {
	n := make([]float64, atoms.Len())
	c.ForEachBond(atoms, nl, func(i, _ int, _ geometry.Vec3, _, f, _ float64) {
		n[i] += f
	})
	return n
}

// Factors returns the coordination numbers, b_i and db_i/dN_i. Atoms no
// scaler targets get b = 1.
func (c *Coordinator) Factors(atoms *geometry.Atoms, nl *neighbors.FastNeighborList) (n, b, db []float64) {
	n = c.Coordination(atoms, nl)
	b = make([]float64, len(n))
	db = make([]float64, len(n))
	for i := range n {
		b[i] = 1
		for _, s := range c.scalers {
			if s.matchesAtom(atoms.Symbols[i]) {
				b[i], db[i] = s.Scale(n[i])
				break
			}
		}
	}
	return n, b, db
}

// AccumulateGradient expands Σ_i w_i ∇N_i into pair contributions. visit
// receives dE/dr along d for the pair (i, j).
func (c *Coordinator) AccumulateGradient(atoms *geometry.Atoms, nl *neighbors.FastNeighborList,
	weights []float64, visit func(i, j int, d geometry.Vec3, r, dEdr float64)) {
	c.ForEachBond(atoms, nl, func(i, j int, d geometry.Vec3, r, _, df float64) {
		if df == 0 || weights[i] == 0 {
			return
		}
		visit(i, j, d, r, weights[i]*df)
	})
}
