package geometry

import (
	"fmt"
	"math"

	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// Atoms is an atomic structure. All per-atom slices share one length.
// Momenta are in amu·Å/fs, charges in e.
type Atoms struct {
	Symbols   []string
	Positions []Vec3
	Momenta   []Vec3
	Masses    []float64
	Charges   []float64
	Tags      []int
	Cell      Cell
}

// NewAtoms builds a structure with zero momenta, charges and tags. Masses come
// from the element table; unknown symbols are rejected.
func NewAtoms(symbols []string, positions []Vec3, cell Cell) (*Atoms, error) {
	if len(symbols) != len(positions) {
		return nil, pysicerr.New("NewAtoms", "", pysicerr.ErrMissingAtoms,
			"%d symbols for %d positions", len(symbols), len(positions))
	}
	n := len(symbols)
	a := &Atoms{
		Symbols:   append([]string(nil), symbols...),
		Positions: append([]Vec3(nil), positions...),
		Momenta:   make([]Vec3, n),
		Masses:    make([]float64, n),
		Charges:   make([]float64, n),
		Tags:      make([]int, n),
		Cell:      cell,
	}
	for i, s := range symbols {
		m, ok := AtomicMass(s)
		if !ok {
			return nil, pysicerr.New("NewAtoms", s, pysicerr.ErrInvalidParameters, "no mass for element")
		}
		a.Masses[i] = m
	}
	return a, nil
}

func (a *Atoms) Len() int { return len(a.Symbols) }

// Validate checks slice lengths, that positions, momenta and charges are
// finite, and that every mass is positive.
func (a *Atoms) Validate() error {
	if a == nil {
		return pysicerr.ErrMissingAtoms
	}
	n := len(a.Symbols)
	if len(a.Positions) != n || len(a.Momenta) != n || len(a.Masses) != n ||
		len(a.Charges) != n || len(a.Tags) != n {
		return fmt.Errorf("%w: per-atom arrays differ in length", pysicerr.ErrMissingAtoms)
	}
	for i := range a.Symbols {
		switch {
		case !a.Positions[i].IsValid():
			return fmt.Errorf("%w: atom %d has a non-finite position", pysicerr.ErrInvalidParameters, i)
		case !a.Momenta[i].IsValid():
			return fmt.Errorf("%w: atom %d has a non-finite momentum", pysicerr.ErrInvalidParameters, i)
		case math.IsNaN(a.Charges[i]) || math.IsInf(a.Charges[i], 0):
			return fmt.Errorf("%w: atom %d has charge %g", pysicerr.ErrInvalidParameters, i, a.Charges[i])
		case !(a.Masses[i] > 0) || math.IsInf(a.Masses[i], 1):
			return fmt.Errorf("%w: atom %d has mass %g", pysicerr.ErrInvalidParameters, i, a.Masses[i])
		}
	}
	return nil
}

func (a *Atoms) Copy() *Atoms {
	return &Atoms{
		Symbols:   append([]string(nil), a.Symbols...),
		Positions: append([]Vec3(nil), a.Positions...),
		Momenta:   append([]Vec3(nil), a.Momenta...),
		Masses:    append([]float64(nil), a.Masses...),
		Charges:   append([]float64(nil), a.Charges...),
		Tags:      append([]int(nil), a.Tags...),
		Cell:      a.Cell,
	}
}

// Subset copies the listed atoms, in the listed order, keeping the cell.
func (a *Atoms) Subset(indices []int) *Atoms {
	s := &Atoms{
		Symbols:   make([]string, len(indices)),
		Positions: make([]Vec3, len(indices)),
		Momenta:   make([]Vec3, len(indices)),
		Masses:    make([]float64, len(indices)),
		Charges:   make([]float64, len(indices)),
		Tags:      make([]int, len(indices)),
		Cell:      a.Cell,
	}
	for k, i := range indices {
		s.Symbols[k] = a.Symbols[i]
		s.Positions[k] = a.Positions[i]
		s.Momenta[k] = a.Momenta[i]
		s.Masses[k] = a.Masses[i]
		s.Charges[k] = a.Charges[i]
		s.Tags[k] = a.Tags[i]
	}
	return s
}

func (a *Atoms) Velocities() []Vec3 {
	v := make([]Vec3, a.Len())
	for i, p := range a.Momenta {
		v[i] = p.Scale(1 / a.Masses[i])
	}
	return v
}

func (a *Atoms) SetVelocities(v []Vec3) {
	for i := range v {
		a.Momenta[i] = v[i].Scale(a.Masses[i])
	}
}

// KineticEnergy in eV.
func (a *Atoms) KineticEnergy() float64 {
	ke := 0.0
	for i, p := range a.Momenta {
		ke += 0.5 * p.Norm2() / a.Masses[i]
	}
	return ke * KineticUnit
}

// Temperature in K from the kinetic energy with 3N degrees of freedom.
func (a *Atoms) Temperature() float64 {
	if a.Len() == 0 {
		return 0
	}
	return 2 * a.KineticEnergy() / (3 * float64(a.Len()) * Boltzmann)
}

func (a *Atoms) TotalCharge() float64 {
	q := 0.0
	for _, c := range a.Charges {
		q += c
	}
	return q
}

// Distance between atoms i and j using the minimum image convention.
func (a *Atoms) Distance(i, j int) float64 {
	return a.Cell.MinimumImage(a.Positions[j].Sub(a.Positions[i])).Norm()
}

// WrapPositions moves every atom back into the cell along periodic axes.
func (a *Atoms) WrapPositions() {
	for i, p := range a.Positions {
		a.Positions[i] = a.Cell.Wrap(p)
	}
}

// CenterOfMassVelocity in Å/fs.
func (a *Atoms) CenterOfMassVelocity() Vec3 {
	var p Vec3
	m := 0.0
	for i := range a.Momenta {
		p = p.Add(a.Momenta[i])
		m += a.Masses[i]
	}
	if m == 0 || math.IsNaN(m) {
		return Vec3{}
	}
	return p.Scale(1 / m)
}
