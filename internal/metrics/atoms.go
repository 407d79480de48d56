package metrics

import (
	"math"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/md"
)

// Temperature averages the instantaneous kinetic temperature (K) of an
// md.AtomsSystem state.
type Temperature struct {
	masses  []float64
	sum     float64
	last    float64
	samples int
}

func NewTemperature(sys *md.AtomsSystem) *Temperature {
	return &Temperature{masses: sys.Atoms().Masses}
}

func (m *Temperature) Name() string { return "temperature" }

func (m *Temperature) Observe(x md.State, t float64) {
	n := len(m.masses)
	if n == 0 || len(x) < 6*n {
		return
	}
	ke := 0.0
	for i, mass := range m.masses {
		ke += 0.5 * mass * x.Velocity(i).Norm2()
	}
	m.last = 2 * ke * geometry.KineticUnit / (3 * float64(n) * geometry.Boltzmann)
	m.sum += m.last
	m.samples++
}

func (m *Temperature) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

// Last is the most recent instantaneous temperature.
func (m *Temperature) Last() float64 { return m.last }

func (m *Temperature) Reset() {
	m.sum = 0
	m.last = 0
	m.samples = 0
}

// MaxForce tracks the largest force norm (eV/Å) seen on any atom. It reads
// the forces of the system's most recent evaluation.
type MaxForce struct {
	sys *md.AtomsSystem
	max float64
}

func NewMaxForce(sys *md.AtomsSystem) *MaxForce {
	return &MaxForce{sys: sys}
}

func (m *MaxForce) Name() string { return "max_force" }

func (m *MaxForce) Observe(x md.State, t float64) {
	for _, f := range m.sys.Forces() {
		m.max = math.Max(m.max, f.Norm())
	}
}

func (m *MaxForce) Value() float64 { return m.max }

func (m *MaxForce) Reset() { m.max = 0 }
