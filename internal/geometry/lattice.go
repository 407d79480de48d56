package geometry

import (
	"math"
	"math/rand"

	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// SimpleCubic builds an n0×n1×n2 simple cubic crystal of one element.
func SimpleCubic(symbol string, a float64, repeat [3]int) (*Atoms, error) {
	return buildLattice([]string{symbol}, []Vec3{{0, 0, 0}}, a, repeat)
}

// FCC builds a face-centred cubic crystal from its 4-atom conventional cell.
func FCC(symbol string, a float64, repeat [3]int) (*Atoms, error) {
	basis := []Vec3{{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0}}
	return buildLattice([]string{symbol, symbol, symbol, symbol}, basis, a, repeat)
}

// RockSalt builds the NaCl structure with cations symA (+1) and anions symB (-1).
func RockSalt(symA, symB string, a float64, repeat [3]int) (*Atoms, error) {
	basis := []Vec3{
		{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0},
		{0.5, 0, 0}, {0, 0.5, 0}, {0, 0, 0.5}, {0.5, 0.5, 0.5},
	}
	symbols := []string{symA, symA, symA, symA, symB, symB, symB, symB}
	atoms, err := buildLattice(symbols, basis, a, repeat)
	if err != nil {
		return nil, err
	}
	for i, s := range atoms.Symbols {
		if s == symA {
			atoms.Charges[i] = 1
		} else {
			atoms.Charges[i] = -1
		}
	}
	return atoms, nil
}

func buildLattice(symbols []string, basis []Vec3, a float64, repeat [3]int) (*Atoms, error) {
	if a <= 0 || repeat[0] < 1 || repeat[1] < 1 || repeat[2] < 1 {
		return nil, pysicerr.New("lattice", "", pysicerr.ErrInvalidParameters,
			"lattice constant %g and repeat %v must be positive", a, repeat)
	}
	n := len(basis) * repeat[0] * repeat[1] * repeat[2]
	syms := make([]string, 0, n)
	pos := make([]Vec3, 0, n)
	for i := 0; i < repeat[0]; i++ {
		for j := 0; j < repeat[1]; j++ {
			for k := 0; k < repeat[2]; k++ {
				for b, f := range basis {
					pos = append(pos, Vec3{
						(float64(i) + f[0]) * a,
						(float64(j) + f[1]) * a,
						(float64(k) + f[2]) * a,
					})
					syms = append(syms, symbols[b])
				}
			}
		}
	}
	cell := OrthorhombicCell(a*float64(repeat[0]), a*float64(repeat[1]), a*float64(repeat[2]))
	return NewAtoms(syms, pos, cell)
}

// RandomizeMomenta draws Maxwell-Boltzmann momenta at temperature T (K) and
// removes the centre of mass drift.
func RandomizeMomenta(atoms *Atoms, T float64, rng *rand.Rand) {
	for i := range atoms.Momenta {
		m := atoms.Masses[i]
		sigma := math.Sqrt(m * Boltzmann * T / KineticUnit)
		atoms.Momenta[i] = Vec3{rng.NormFloat64() * sigma, rng.NormFloat64() * sigma, rng.NormFloat64() * sigma}
	}
	vcm := atoms.CenterOfMassVelocity()
	for i := range atoms.Momenta {
		atoms.Momenta[i] = atoms.Momenta[i].Sub(vcm.Scale(atoms.Masses[i]))
	}
}
