package integrators

import "github.com/san-kum/pysic/internal/md"

// Verlet is velocity Verlet. The acceleration at the end of a step is kept
// and reused when the next step starts from the returned state, so a
// trajectory costs one force evaluation per step.
type Verlet struct {
	prevAcc md.State
	prevX   md.State
	scratch md.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(n int) {
	if len(v.scratch) != n {
		v.scratch = make(md.State, n)
		v.prevAcc = make(md.State, n/2)
		v.prevX = nil
	}
}

// acceleration returns the second half of the derivative at x, from the
// cache when x is the state the previous step returned.
func (v *Verlet) acceleration(sys md.System, x md.State, t float64) md.State {
	half := len(x) / 2
	if v.prevX != nil && len(x) > 0 && &v.prevX[0] == &x[0] {
		return v.prevAcc
	}
	dx := sys.Derive(x, t)
	copy(v.prevAcc, dx[half:])
	return v.prevAcc
}

func (v *Verlet) Step(sys md.System, x md.State, t, dt float64) md.State {
	n := len(x)
	half := n / 2
	v.ensureScratch(n)

	acc := v.acceleration(sys, x, t)
	result := make(md.State, n)
	dt2 := dt * dt

	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*acc[i]*dt2
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := sys.Derive(v.scratch, t+dt)

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (acc[i]+dxNew[half+i])*halfDt
	}
	copy(v.prevAcc, dxNew[half:])
	v.prevX = result

	return result
}

// Leapfrog is the kick-drift-kick scheme.
type Leapfrog struct {
	scratch md.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(sys md.System, x md.State, t, dt float64) md.State {
	n := len(x)
	half := n / 2

	if len(l.scratch) != n {
		l.scratch = make(md.State, n)
	}

	result := make(md.State, n)
	dx := sys.Derive(x, t)
	halfDt := dt * 0.5

	for i := 0; i < half; i++ {
		l.scratch[half+i] = x[half+i] + dx[half+i]*halfDt
	}

	for i := 0; i < half; i++ {
		result[i] = x[i] + l.scratch[half+i]*dt
		l.scratch[i] = result[i]
	}

	dxNew := sys.Derive(l.scratch, t+dt)

	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i] + dxNew[half+i]*halfDt
	}

	return result
}
