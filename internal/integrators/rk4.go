package integrators

import "github.com/san-kum/pysic/internal/md"

type RK4 struct {
	k1, k2, k3, k4 md.State
	scratch        md.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(md.State, n)
		r.k2 = make(md.State, n)
		r.k3 = make(md.State, n)
		r.k4 = make(md.State, n)
		r.scratch = make(md.State, n)
	}
}

// Step copies each stage out of the derivative because systems may reuse
// their output buffer.
func (r *RK4) Step(sys md.System, x md.State, t, dt float64) md.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k1, sys.Derive(x, t))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	copy(r.k2, sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	copy(r.k3, sys.Derive(r.scratch, t+dt*0.5))

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	copy(r.k4, sys.Derive(r.scratch, t+dt))

	result := make(md.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
