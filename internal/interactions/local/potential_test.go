package local

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

func mustPotential(t *testing.T, kind string, opts ...Option) *Potential {
	t.Helper()
	p, err := NewPotential(kind, opts...)
	if err != nil {
		t.Fatalf("NewPotential(%s): %v", kind, err)
	}
	return p
}

func TestPairDerivatives(t *testing.T) {
	tests := []struct {
		name string
		pot  *Potential
		rs   []float64
	}{
		{"LJ", mustPotential(t, "LJ", WithParameters(0.01, 3.4), WithCutoff(8.5), WithCutoffMargin(1)), []float64{3.2, 3.8, 7.9}},
		{"spring", mustPotential(t, "spring", WithParameters(5, 1.2), WithCutoff(3)), []float64{0.9, 1.5, 2.5}},
		{"power", mustPotential(t, "power", WithParameters(2, 1.5, 4), WithCutoff(5), WithCutoffMargin(0.5)), []float64{1, 2, 4.7}},
		{"Buckingham", mustPotential(t, "Buckingham", WithParameters(1388.77, 0.3623, 175), WithCutoff(8)), []float64{2.3, 3, 5}},
		{"morse", mustPotential(t, "morse", WithParameters(0.35, 1.36, 2.87), WithCutoff(6), WithCutoffMargin(1)), []float64{2.5, 3, 5.5}},
	}
	h := 1e-6
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range tt.rs {
				_, dv := tt.pot.Pair(r)
				vp, _ := tt.pot.Pair(r + h)
				vm, _ := tt.pot.Pair(r - h)
				num := (vp - vm) / (2 * h)
				if math.Abs(num-dv) > 1e-5*math.Max(1, math.Abs(num)) {
					t.Errorf("r=%v: dV/dr = %v, numerical %v", r, dv, num)
				}
			}
		})
	}
}

func TestLJMinimum(t *testing.T) {
	p := mustPotential(t, "LJ", WithParameters(0.0104, 3.4), WithCutoff(10))
	rmin := math.Pow(2, 1.0/6) * 3.4
	v, dv := p.Pair(rmin)
	if math.Abs(v+0.0104) > 1e-12 {
		t.Errorf("V(rmin) = %v, want -epsilon", v)
	}
	if math.Abs(dv) > 1e-12 {
		t.Errorf("dV/dr at minimum = %v", dv)
	}
	if v, dv := p.Pair(10.5); v != 0 || dv != 0 {
		t.Errorf("beyond cutoff: %v %v", v, dv)
	}
}

func TestSingleBody(t *testing.T) {
	cf := mustPotential(t, "constant_force", WithParameters(0, 0, 1.5))
	v, g, _ := cf.Single(geometry.Vec3{1, 2, 3}, 0)
	if v != -4.5 || g != (geometry.Vec3{0, 0, -1.5}) {
		t.Errorf("constant_force: %v %v", v, g)
	}

	cs := mustPotential(t, "charge_self", WithParameters(3, 10))
	v, _, dq := cs.Single(geometry.Vec3{}, 0.2)
	if math.Abs(v-0.8) > 1e-12 || math.Abs(dq-5) > 1e-12 {
		t.Errorf("charge_self: %v %v", v, dq)
	}
}

func TestMatching(t *testing.T) {
	atoms, _ := geometry.NewAtoms(
		[]string{"Na", "Cl", "Cl"},
		[]geometry.Vec3{{0, 0, 0}, {2, 0, 0}, {4, 0, 0}},
		geometry.Cell{},
	)
	atoms.Tags[2] = 7

	bySymbol := mustPotential(t, "LJ", WithParameters(1, 1), WithCutoff(3), WithSymbols([]string{"Cl", "Na"}))
	if !bySymbol.MatchesPair(atoms, 0, 1) || !bySymbol.MatchesPair(atoms, 1, 0) {
		t.Error("symbol pair should match in both orders")
	}
	if bySymbol.MatchesPair(atoms, 1, 2) {
		t.Error("Cl-Cl matched a Na-Cl potential")
	}

	byTag := mustPotential(t, "spring", WithParameters(1, 1), WithCutoff(3), WithTags([]int{7, 0}))
	if !byTag.MatchesPair(atoms, 2, 1) || byTag.MatchesPair(atoms, 0, 1) {
		t.Error("tag matching wrong")
	}

	byIndex := mustPotential(t, "charge_self", WithParameters(1, 1), WithIndices([]int{1}))
	if !byIndex.MatchesAtom(atoms, 1) || byIndex.MatchesAtom(atoms, 2) {
		t.Error("index matching wrong")
	}
	if byIndex.MatchesPair(atoms, 0, 1) {
		t.Error("single-body term matched a pair")
	}

	all := mustPotential(t, "LJ", WithParameters(1, 1), WithCutoff(3))
	if !all.MatchesPair(atoms, 1, 2) {
		t.Error("untargeted potential should match every pair")
	}
}

func TestNewPotential_Validation(t *testing.T) {
	counter, _ := bondorder.NewBondOrderParameters("neighbors", bondorder.WithCutoff(3))
	scaler, _ := bondorder.NewBondOrderParameters("sqrt_scale", bondorder.WithParameters(1, 4))
	coord, _ := bondorder.NewCoordinator(counter, scaler)

	tests := []struct {
		name string
		kind string
		opts []Option
		want error
	}{
		{"unknown kind", "LJX", nil, pysicerr.ErrInvalidPotential},
		{"param count", "LJ", []Option{WithParameters(1), WithCutoff(3)}, pysicerr.ErrInvalidParameters},
		{"no cutoff", "LJ", []Option{WithParameters(1, 1)}, pysicerr.ErrInvalidParameters},
		{"margin", "LJ", []Option{WithParameters(1, 1), WithCutoff(3), WithCutoffMargin(4)}, pysicerr.ErrInvalidParameters},
		{"sigma", "LJ", []Option{WithParameters(1, 0), WithCutoff(3)}, pysicerr.ErrInvalidParameters},
		{"arity", "LJ", []Option{WithParameters(1, 1), WithCutoff(3), WithSymbols([]string{"Ar"})}, pysicerr.ErrInvalidPotential},
		{"single with coordinator", "charge_self", []Option{WithParameters(1, 1), WithCoordinator(coord)}, pysicerr.ErrInvalidCoordinator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPotential(tt.kind, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSetParameter(t *testing.T) {
	p := mustPotential(t, "LJ", WithParameters(1, 2), WithCutoff(5))
	if err := p.SetParameter("epsilon", 3); err != nil {
		t.Fatal(err)
	}
	if v, _ := p.Parameter("epsilon"); v != 3 {
		t.Errorf("epsilon = %v", v)
	}
	if err := p.SetParameter("sigma", -1); err == nil {
		t.Error("expected validation error")
	}
	if v, _ := p.Parameter("sigma"); v != 2 {
		t.Errorf("invalid update not rolled back, sigma = %v", v)
	}
	if err := p.SetParameter("gamma", 1); !errors.Is(err, pysicerr.ErrInvalidParameters) {
		t.Errorf("unknown parameter: %v", err)
	}
}

func TestProductPotential(t *testing.T) {
	a := mustPotential(t, "spring", WithParameters(2, 1), WithCutoff(4), WithSymbols([]string{"H", "H"}))
	b := mustPotential(t, "power", WithParameters(1, 1, 2), WithCutoff(3), WithCutoffMargin(0.5))
	pp, err := NewProductPotential(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if pp.Cutoff() != 3 {
		t.Errorf("cutoff = %v, want shortest factor", pp.Cutoff())
	}

	r := 2.7
	va, _ := a.Pair(r)
	vb, _ := b.Pair(r)
	v, dv := pp.Pair(r)
	if math.Abs(v-va*vb) > 1e-12 {
		t.Errorf("product %v, want %v", v, va*vb)
	}
	h := 1e-6
	vp, _ := pp.Pair(r + h)
	vm, _ := pp.Pair(r - h)
	if num := (vp - vm) / (2 * h); math.Abs(num-dv) > 1e-6 {
		t.Errorf("dV/dr = %v, numerical %v", dv, num)
	}

	single := mustPotential(t, "charge_self", WithParameters(1, 1))
	if _, err := NewProductPotential(a, single); !errors.Is(err, pysicerr.ErrInvalidPotential) {
		t.Errorf("mixed arity: %v", err)
	}
	if _, err := NewProductPotential(a); err == nil {
		t.Error("expected error for a single factor")
	}
}

func TestProductPotential_Single(t *testing.T) {
	cf := mustPotential(t, "constant_force", WithParameters(1, 0, 0))
	cs := mustPotential(t, "charge_self", WithParameters(2, 0))
	pp, err := NewProductPotential(cf, cs)
	if err != nil {
		t.Fatal(err)
	}
	pos := geometry.Vec3{3, 0, 0}
	v, g, dq := pp.Single(pos, 0.5)
	// (-x)(2q)
	if math.Abs(v+3) > 1e-12 || math.Abs(g[0]+1) > 1e-12 || math.Abs(dq+6) > 1e-12 {
		t.Errorf("product single: %v %v %v", v, g, dq)
	}
}
