package local

import (
	"math"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// ProductPotential multiplies several potentials of the same arity. Targets
// come from the first factor and the cutoff is the shortest one.
type ProductPotential struct {
	factors []*Potential
	cutoff  float64
}

func NewProductPotential(factors ...*Potential) (*ProductPotential, error) {
	if len(factors) < 2 {
		return nil, pysicerr.New("NewProductPotential", "", pysicerr.ErrInvalidPotential,
			"need at least two factors, got %d", len(factors))
	}
	n := factors[0].NumberOfTargets()
	cutoff := math.Inf(1)
	for _, f := range factors {
		if f.NumberOfTargets() != n {
			return nil, pysicerr.New("NewProductPotential", f.Kind(), pysicerr.ErrInvalidPotential,
				"factor acts on %d atoms, first factor on %d", f.NumberOfTargets(), n)
		}
		if f.Coordinator() != nil {
			return nil, pysicerr.New("NewProductPotential", f.Kind(), pysicerr.ErrInvalidCoordinator,
				"factors cannot carry bond order factors")
		}
		if n == 2 {
			cutoff = math.Min(cutoff, f.Cutoff())
		}
	}
	if n != 2 {
		cutoff = 0
	}
	return &ProductPotential{factors: append([]*Potential(nil), factors...), cutoff: cutoff}, nil
}

func (pp *ProductPotential) Kind() string                        { return "product" }
func (pp *ProductPotential) NumberOfTargets() int                { return pp.factors[0].NumberOfTargets() }
func (pp *ProductPotential) Cutoff() float64                     { return pp.cutoff }
func (pp *ProductPotential) Coordinator() *bondorder.Coordinator { return nil }
func (pp *ProductPotential) Factors() []*Potential               { return pp.factors }

func (pp *ProductPotential) MatchesAtom(atoms *geometry.Atoms, i int) bool {
	return pp.factors[0].MatchesAtom(atoms, i)
}

func (pp *ProductPotential) MatchesPair(atoms *geometry.Atoms, i, j int) bool {
	return pp.factors[0].MatchesPair(atoms, i, j)
}

func (pp *ProductPotential) Pair(r float64) (float64, float64) {
	if r >= pp.cutoff {
		return 0, 0
	}
	v, dv := 1.0, 0.0
	for _, f := range pp.factors {
		fv, fdv := f.Pair(r)
		dv = dv*fv + v*fdv
		v *= fv
	}
	return v, dv
}

func (pp *ProductPotential) Single(pos geometry.Vec3, q float64) (float64, geometry.Vec3, float64) {
	v, dq := 1.0, 0.0
	var grad geometry.Vec3
	for _, f := range pp.factors {
		fv, fg, fdq := f.Single(pos, q)
		grad = grad.Scale(fv).Add(fg.Scale(v))
		dq = dq*fv + v*fdq
		v *= fv
	}
	return v, grad, dq
}
