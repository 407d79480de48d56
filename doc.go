// Package pysic is the public surface of the pysic toolkit: empirical
// interatomic potentials, bond order coordination, Coulomb summation and
// charge relaxation evaluated on periodic or open atomic structures.
//
// Everything here is re-exported from internal packages. A typical
// calculation builds a structure, attaches potentials to a calculator and
// asks for energies and forces:
//
//	atoms, _ := pysic.NewAtoms(symbols, positions, pysic.Cell{})
//	lj, _ := pysic.NewPotential("LJ",
//		pysic.WithSymbols([]string{"Ar", "Ar"}),
//		pysic.WithParameters(0.0104, 3.4),
//		pysic.WithCutoff(6.5))
//	calc := pysic.NewPysic()
//	_ = calc.AddPotential(lj)
//	energy, _ := calc.GetPotentialEnergy(atoms)
//
// Failures match the exported sentinels with errors.Is.
package pysic
