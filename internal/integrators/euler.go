// Package integrators advances an md.System by one timestep.
//
// Verlet and Leapfrog are symplectic and assume the state is split into
// positions followed by velocities of the same length, as md.AtomsSystem
// lays it out. Euler and RK4 work on any system.
package integrators

import "github.com/san-kum/pysic/internal/md"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys md.System, x md.State, t, dt float64) md.State {
	dx := sys.Derive(x, t)
	result := make(md.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
