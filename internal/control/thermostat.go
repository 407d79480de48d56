package control

import (
	"math"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/md"
)

type Thermostat interface {
	// Scale returns the velocity factor for temperature T (K) reached at
	// time t after a step of dt fs.
	Scale(T, t, dt float64) float64
	Reset()
}

type None struct{}

func NewNone() *None { return &None{} }

func (*None) Scale(T, t, dt float64) float64 { return 1 }
func (*None) Reset()                         {}

// Berendsen relaxes the temperature towards Target with time constant Tau:
// λ² = 1 + dt/τ (T0/T - 1).
type Berendsen struct {
	Target float64
	Tau    float64
}

func NewBerendsen(target, tau float64) *Berendsen {
	return &Berendsen{Target: target, Tau: tau}
}

func (b *Berendsen) Scale(T, t, dt float64) float64 {
	if T <= 0 || b.Tau <= 0 {
		return 1
	}
	return math.Sqrt(math.Max(0, 1+dt/b.Tau*(b.Target/T-1)))
}

func (b *Berendsen) Reset() {}

// Rescale sets the temperature to Target exactly on every Every-th step.
type Rescale struct {
	Target float64
	Every  int
	count  int
}

func NewRescale(target float64, every int) *Rescale {
	return &Rescale{Target: target, Every: max(every, 1)}
}

func (r *Rescale) Scale(T, t, dt float64) float64 {
	r.count++
	if r.count%r.Every != 0 || T <= 0 {
		return 1
	}
	return math.Sqrt(r.Target / T)
}

func (r *Rescale) Reset() { r.count = 0 }

// Temperature of an md state with 3N positions followed by 3N velocities.
func Temperature(x md.State, masses []float64) float64 {
	n := len(masses)
	if n == 0 || len(x) != 6*n {
		return 0
	}
	ke := 0.0
	for i, m := range masses {
		ke += 0.5 * m * x.Velocity(i).Norm2()
	}
	return 2 * ke * geometry.KineticUnit / (3 * float64(n) * geometry.Boltzmann)
}
