package calculator

import (
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// NumericalForces differentiates the energy by central differences with
// step h (Å). Charges are kept fixed.
func (p *Pysic) NumericalForces(atoms *geometry.Atoms, h float64) ([]geometry.Vec3, error) {
	if !(h > 0) {
		return nil, pysicerr.New("Pysic.NumericalForces", "", pysicerr.ErrInvalidParameters, "step must be positive, got %g", h)
	}
	if err := atoms.Validate(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	work := atoms.Copy()
	forces := make([]geometry.Vec3, atoms.Len())
	for i := range forces {
		for ax := 0; ax < 3; ax++ {
			orig := work.Positions[i][ax]
			work.Positions[i][ax] = orig + h
			ep, err := p.compute(work)
			if err != nil {
				return nil, err
			}
			work.Positions[i][ax] = orig - h
			em, err := p.compute(work)
			if err != nil {
				return nil, err
			}
			work.Positions[i][ax] = orig
			forces[i][ax] = -(ep.Energy - em.Energy) / (2 * h)
		}
	}
	return forces, nil
}

// NumericalStress differentiates the energy with respect to homogeneous
// strain of cell and positions and returns the Voigt stress in eV/Å³.
func (p *Pysic) NumericalStress(atoms *geometry.Atoms, h float64) ([6]float64, error) {
	var stress [6]float64
	if !(h > 0) {
		return stress, pysicerr.New("Pysic.NumericalStress", "", pysicerr.ErrInvalidParameters, "step must be positive, got %g", h)
	}
	if err := atoms.Validate(); err != nil {
		return stress, err
	}
	vol := atoms.Cell.Volume()
	if vol == 0 || !atoms.Cell.AnyPeriodic() {
		return stress, pysicerr.New("Pysic.NumericalStress", "", pysicerr.ErrInvalidParameters,
			"stress needs a periodic cell with non-zero volume")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	voigt := [6][2]int{{0, 0}, {1, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}}
	for k, ab := range voigt {
		ep, err := p.compute(Strain(atoms, ab[0], ab[1], h))
		if err != nil {
			return stress, err
		}
		em, err := p.compute(Strain(atoms, ab[0], ab[1], -h))
		if err != nil {
			return stress, err
		}
		stress[k] = (ep.Energy - em.Energy) / (2 * h * vol)
	}
	return stress, nil
}

// Strain returns a copy of atoms with cell and positions deformed by
// x_a += eps·x_b.
func Strain(atoms *geometry.Atoms, a, b int, eps float64) *geometry.Atoms {
	s := atoms.Copy()
	apply := func(v geometry.Vec3) geometry.Vec3 {
		v[a] += eps * v[b]
		return v
	}
	for k := range s.Cell.Vectors {
		s.Cell.Vectors[k] = apply(s.Cell.Vectors[k])
	}
	for k := range s.Positions {
		s.Positions[k] = apply(s.Positions[k])
	}
	return s
}
