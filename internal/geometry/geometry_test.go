package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub = %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot = %v", got)
	}
	if got := (Vec3{1, 0, 0}).Cross(Vec3{0, 1, 0}); got != (Vec3{0, 0, 1}) {
		t.Errorf("Cross = %v", got)
	}
	if got := (Vec3{3, 4, 0}).Norm(); got != 5 {
		t.Errorf("Norm = %v", got)
	}
	if (Vec3{1, math.NaN(), 0}).IsValid() {
		t.Error("NaN vector reported valid")
	}
}

func TestCell_Reciprocal(t *testing.T) {
	c := Cell{Vectors: [3]Vec3{{2, 0, 0}, {1, 3, 0}, {0, 0.5, 4}}, PBC: [3]bool{true, true, true}}
	b := c.Reciprocal()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if got := c.Vectors[i].Dot(b[j]); math.Abs(got-want) > 1e-12 {
				t.Errorf("a%d·b%d = %v, want %v", i, j, got, want)
			}
		}
	}
	if math.Abs(c.Volume()-24) > 1e-12 {
		t.Errorf("Volume = %v", c.Volume())
	}
}

func TestCell_MinimumImageAndWrap(t *testing.T) {
	c := OrthorhombicCell(10, 10, 10)

	d := c.MinimumImage(Vec3{9, -6, 4})
	if math.Abs(d[0]+1) > 1e-12 || math.Abs(d[1]-4) > 1e-12 || math.Abs(d[2]-4) > 1e-12 {
		t.Errorf("MinimumImage = %v", d)
	}

	w := c.Wrap(Vec3{-1, 12, 5})
	if math.Abs(w[0]-9) > 1e-12 || math.Abs(w[1]-2) > 1e-12 || w[2] != 5 {
		t.Errorf("Wrap = %v", w)
	}

	open := Cell{}
	if got := open.MinimumImage(Vec3{9, 0, 0}); got != (Vec3{9, 0, 0}) {
		t.Errorf("open cell changed displacement: %v", got)
	}
}

func TestNewAtoms(t *testing.T) {
	a, err := NewAtoms([]string{"Ar", "Ar"}, []Vec3{{0, 0, 0}, {3, 0, 0}}, Cell{})
	if err != nil {
		t.Fatalf("NewAtoms: %v", err)
	}
	if a.Masses[0] != 39.948 {
		t.Errorf("mass = %v", a.Masses[0])
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	_, err = NewAtoms([]string{"Xx"}, []Vec3{{0, 0, 0}}, Cell{})
	if !errors.Is(err, pysicerr.ErrInvalidParameters) {
		t.Errorf("unknown element: got %v", err)
	}

	_, err = NewAtoms([]string{"Ar"}, nil, Cell{})
	if !errors.Is(err, pysicerr.ErrMissingAtoms) {
		t.Errorf("length mismatch: got %v", err)
	}
}

func TestAtoms_ValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		spoil func(a *Atoms)
	}{
		{"nan position", func(a *Atoms) { a.Positions[1][2] = math.NaN() }},
		{"inf momentum", func(a *Atoms) { a.Momenta[0][0] = math.Inf(-1) }},
		{"nan charge", func(a *Atoms) { a.Charges[1] = math.NaN() }},
		{"zero mass", func(a *Atoms) { a.Masses[0] = 0 }},
		{"negative mass", func(a *Atoms) { a.Masses[1] = -1 }},
		{"nan mass", func(a *Atoms) { a.Masses[0] = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := NewAtoms([]string{"Na", "Cl"}, []Vec3{{0, 0, 0}, {2.8, 0, 0}}, Cell{})
			tt.spoil(a)
			if err := a.Validate(); !errors.Is(err, pysicerr.ErrInvalidParameters) {
				t.Errorf("got %v, want ErrInvalidParameters", err)
			}
		})
	}
}

func TestAtoms_CopyIsIndependent(t *testing.T) {
	a, _ := NewAtoms([]string{"Cu"}, []Vec3{{1, 1, 1}}, Cell{})
	b := a.Copy()
	b.Positions[0][0] = 5
	b.Charges[0] = 1
	if a.Positions[0][0] != 1 || a.Charges[0] != 0 {
		t.Error("Copy shares storage with the original")
	}
}

func TestAtoms_Subset(t *testing.T) {
	a, _ := NewAtoms([]string{"H", "O", "H"}, []Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, Cell{})
	s := a.Subset([]int{2, 1})
	if s.Len() != 2 || s.Symbols[0] != "H" || s.Positions[1] != (Vec3{1, 0, 0}) {
		t.Errorf("Subset = %+v", s)
	}
}

func TestLattices(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Atoms, error)
		n     int
	}{
		{"sc", func() (*Atoms, error) { return SimpleCubic("Ar", 3, [3]int{2, 2, 2}) }, 8},
		{"fcc", func() (*Atoms, error) { return FCC("Cu", 3.6, [3]int{2, 2, 2}) }, 32},
		{"rocksalt", func() (*Atoms, error) { return RockSalt("Na", "Cl", 5.64, [3]int{1, 1, 1}) }, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := tt.build()
			if err != nil {
				t.Fatal(err)
			}
			if a.Len() != tt.n {
				t.Errorf("expected %d atoms, got %d", tt.n, a.Len())
			}
			if math.Abs(a.TotalCharge()) > 1e-12 {
				t.Errorf("structure not neutral: %v", a.TotalCharge())
			}
		})
	}

	if _, err := FCC("Cu", -1, [3]int{1, 1, 1}); err == nil {
		t.Error("expected error for negative lattice constant")
	}
}

func TestFCC_NearestNeighbor(t *testing.T) {
	a, _ := FCC("Cu", 3.6, [3]int{2, 2, 2})
	nearest := math.Inf(1)
	for j := 1; j < a.Len(); j++ {
		nearest = math.Min(nearest, a.Distance(0, j))
	}
	if want := 3.6 / math.Sqrt2; math.Abs(nearest-want) > 1e-9 {
		t.Errorf("nearest neighbour %v, want %v", nearest, want)
	}
}

func TestRandomizeMomenta(t *testing.T) {
	a, _ := FCC("Ar", 5.26, [3]int{4, 4, 4})
	RandomizeMomenta(a, 300, rand.New(rand.NewSource(7)))

	vcm := a.CenterOfMassVelocity()
	if vcm.Norm() > 1e-12 {
		t.Errorf("centre of mass drift %v", vcm)
	}
	if T := a.Temperature(); T < 240 || T > 360 {
		t.Errorf("temperature %v far from 300 K", T)
	}
}
