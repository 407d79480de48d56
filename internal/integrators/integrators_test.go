package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/pysic/internal/md"
)

// oscillator is a unit harmonic oscillator with x = [q, p].
type oscillator struct {
	calls int
}

func (o *oscillator) Derive(x md.State, t float64) md.State {
	o.calls++
	return md.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int { return 2 }

func energy(x md.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func integrate(integ md.Integrator, sys md.System, x md.State, dt float64, steps int) md.State {
	t := 0.0
	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, t, dt)
		t += dt
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	sys := &oscillator{}
	x := integrate(NewRK4(), sys, md.State{1, 0}, 0.01, 100)

	if math.Abs(x[0]-math.Cos(1)) > 1e-4 {
		t.Errorf("q = %v, want %v", x[0], math.Cos(1))
	}
	if math.Abs(x[1]+math.Sin(1)) > 1e-4 {
		t.Errorf("p = %v, want %v", x[1], -math.Sin(1))
	}
}

func TestSymplecticEnergyConservation(t *testing.T) {
	tests := []struct {
		name  string
		integ md.Integrator
	}{
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := integrate(tt.integ, &oscillator{}, md.State{1, 0}, 0.05, 10000)
			if drift := math.Abs(energy(x) - 0.5); drift > 1e-3 {
				t.Errorf("energy drift %v after 10000 steps", drift)
			}
			if math.Abs(x[0]-math.Cos(500)) > 0.2 {
				t.Errorf("q = %v, want about %v", x[0], math.Cos(500))
			}
		})
	}
}

func TestEulerGainsEnergy(t *testing.T) {
	x := integrate(NewEuler(), &oscillator{}, md.State{1, 0}, 0.01, 1000)
	if energy(x) <= 0.5 {
		t.Errorf("explicit Euler should gain energy on an oscillator, got %v", energy(x))
	}
}

func TestVerletReusesAcceleration(t *testing.T) {
	sys := &oscillator{}
	integrate(NewVerlet(), sys, md.State{1, 0}, 0.01, 100)

	if sys.calls != 101 {
		t.Errorf("Derive called %d times, want 101", sys.calls)
	}
}

func TestVerletFreshStateRecomputes(t *testing.T) {
	sys := &oscillator{}
	v := NewVerlet()
	x := v.Step(sys, md.State{1, 0}, 0, 0.01)
	v.Step(sys, x.Clone(), 0.01, 0.01)

	if sys.calls != 4 {
		t.Errorf("Derive called %d times, want 4", sys.calls)
	}
}

func TestVerletMatchesLeapfrog(t *testing.T) {
	a := integrate(NewVerlet(), &oscillator{}, md.State{1, 0.5}, 0.02, 500)
	b := integrate(NewLeapfrog(), &oscillator{}, md.State{1, 0.5}, 0.02, 500)

	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-10 {
			t.Errorf("component %d: verlet %v, leapfrog %v", i, a[i], b[i])
		}
	}
}

func BenchmarkVerlet(b *testing.B) {
	sys := &oscillator{}
	v := NewVerlet()
	x := md.State{1, 0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = v.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	sys := &oscillator{}
	r := NewRK4()
	x := md.State{1, 0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = r.Step(sys, x, 0, 0.01)
	}
}
