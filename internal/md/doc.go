// Package md provides the molecular dynamics core: state vectors, the
// System and Integrator interfaces and a Simulator that drives a run.
//
// An [AtomsSystem] turns an atomic structure and a force field into a
// first order system whose state is all positions followed by all
// velocities:
//
//	sys, _ := md.NewAtomsSystem(atoms, calc)
//	s := md.New(sys, integrators.NewVerlet())
//	result, _ := s.Run(ctx, sys.State(), cfg)
//
// # Thread Safety
//
// Simulator and AtomsSystem instances are NOT thread-safe.
package md
