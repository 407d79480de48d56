package md

import (
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// ForceField is anything that evaluates a structure. *calculator.Pysic and
// *hybridcalculator.HybridCalculator both qualify.
type ForceField interface {
	GetForces(atoms *geometry.Atoms) ([]geometry.Vec3, error)
	GetPotentialEnergy(atoms *geometry.Atoms) (float64, error)
}

// AtomsSystem integrates Newton's equations for an atomic structure. The
// state holds 3N positions (Å) followed by 3N velocities (Å/fs).
type AtomsSystem struct {
	atoms  *geometry.Atoms
	ff     ForceField
	forces []geometry.Vec3
	err    error
}

func NewAtomsSystem(atoms *geometry.Atoms, ff ForceField) (*AtomsSystem, error) {
	if err := atoms.Validate(); err != nil {
		return nil, err
	}
	if ff == nil {
		return nil, pysicerr.New("md.NewAtomsSystem", "", pysicerr.ErrInvalidPotential, "no force field")
	}
	return &AtomsSystem{atoms: atoms, ff: ff}, nil
}

func (a *AtomsSystem) StateDim() int           { return 6 * a.atoms.Len() }
func (a *AtomsSystem) Atoms() *geometry.Atoms  { return a.atoms }
func (a *AtomsSystem) Forces() []geometry.Vec3 { return a.forces }
func (a *AtomsSystem) Err() error              { return a.err }

// ClearErr forgets a previous force field failure.
func (a *AtomsSystem) ClearErr() { a.err = nil }

// State packs the current positions and velocities.
func (a *AtomsSystem) State() State {
	n := a.atoms.Len()
	x := make(State, 6*n)
	for i, p := range a.atoms.Positions {
		v := a.atoms.Momenta[i].Scale(1 / a.atoms.Masses[i])
		copy(x[3*i:3*i+3], p[:])
		copy(x[3*n+3*i:3*n+3*i+3], v[:])
	}
	return x
}

// Apply writes a state back into the structure.
func (a *AtomsSystem) Apply(x State) {
	n := a.atoms.Len()
	for i := 0; i < n; i++ {
		a.atoms.Positions[i] = x.Position(i)
		a.atoms.Momenta[i] = x.Velocity(i).Scale(a.atoms.Masses[i])
	}
}

// Derive returns velocities and accelerations. On a force field error the
// derivative is zero and Err reports the failure.
func (a *AtomsSystem) Derive(x State, t float64) State {
	n := a.atoms.Len()
	dx := make(State, 6*n)
	a.Apply(x)
	forces, err := a.ff.GetForces(a.atoms)
	if err != nil {
		a.err = err
		return dx
	}
	a.forces = forces
	copy(dx[:3*n], x[3*n:])
	ParallelFor(n, 256, func(start, end int) {
		for i := start; i < end; i++ {
			inv := 1 / (a.atoms.Masses[i] * geometry.KineticUnit)
			for ax := 0; ax < 3; ax++ {
				dx[3*n+3*i+ax] = forces[i][ax] * inv
			}
		}
	})
	return dx
}

// Energy is the total energy in eV.
func (a *AtomsSystem) Energy(x State) float64 {
	a.Apply(x)
	pe, err := a.ff.GetPotentialEnergy(a.atoms)
	if err != nil {
		a.err = err
		return 0
	}
	return pe + a.atoms.KineticEnergy()
}

// PotentialEnergy evaluates the force field at the current structure.
func (a *AtomsSystem) PotentialEnergy() (float64, error) {
	return a.ff.GetPotentialEnergy(a.atoms)
}
