package metrics

import (
	"math"

	"github.com/san-kum/pysic/internal/md"
)

// Energy is the mean total energy (eV) over the observed states. It also
// keeps the variance so the size of the fluctuations can be reported.
type Energy struct {
	sys  md.Hamiltonian
	n    int
	mean float64
	m2   float64
}

func NewEnergy(sys md.Hamiltonian) *Energy {
	return &Energy{sys: sys}
}

func (m *Energy) Name() string { return "energy" }

func (m *Energy) Observe(x md.State, t float64) {
	e := m.sys.Energy(x)
	m.n++
	delta := e - m.mean
	m.mean += delta / float64(m.n)
	m.m2 += delta * (e - m.mean)
}

func (m *Energy) Value() float64 { return m.mean }

// Fluctuation is the standard deviation of the observed energies.
func (m *Energy) Fluctuation() float64 {
	if m.n < 2 {
		return 0
	}
	return math.Sqrt(m.m2 / float64(m.n-1))
}

func (m *Energy) Reset() { *m = Energy{sys: m.sys} }

// EnergyDrift is the largest deviation of the total energy from its first
// observed value, relative to |E0|. When E0 is zero the deviation is
// reported in eV. Systems without an energy are never sampled.
type EnergyDrift struct {
	ham     md.Hamiltonian
	started bool
	e0      float64
	last    float64
	worst   float64
}

func NewEnergyDrift(sys md.System) *EnergyDrift {
	ham, _ := sys.(md.Hamiltonian)
	return &EnergyDrift{ham: ham}
}

func (m *EnergyDrift) Name() string { return "energy_drift" }

func (m *EnergyDrift) Observe(x md.State, t float64) {
	if m.ham == nil {
		return
	}
	e := m.ham.Energy(x)
	if !m.started {
		m.e0, m.started = e, true
	}
	m.last = e
	m.worst = math.Max(m.worst, m.deviation(e))
}

func (m *EnergyDrift) deviation(e float64) float64 {
	d := math.Abs(e - m.e0)
	if m.e0 != 0 {
		d /= math.Abs(m.e0)
	}
	return d
}

func (m *EnergyDrift) Value() float64 { return m.worst }

// Final is the deviation of the most recent sample.
func (m *EnergyDrift) Final() float64 {
	if !m.started {
		return 0
	}
	return m.deviation(m.last)
}

func (m *EnergyDrift) Reset() { *m = EnergyDrift{ham: m.ham} }
