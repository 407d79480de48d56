package md

import (
	"fmt"
	"math"

	"github.com/san-kum/pysic/internal/geometry"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Atoms is the number of atoms of a positions-then-velocities state.
func (s State) Atoms() int { return len(s) / 6 }

func (s State) Position(i int) geometry.Vec3 {
	return geometry.Vec3{s[3*i], s[3*i+1], s[3*i+2]}
}

func (s State) Velocity(i int) geometry.Vec3 {
	o := len(s)/2 + 3*i
	return geometry.Vec3{s[o], s[o+1], s[o+2]}
}

// Velocities aliases the velocity half of s.
func (s State) Velocities() State { return s[len(s)/2:] }

// System is a first order ODE dx/dt = f(x, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian systems report their total energy.
type Hamiltonian interface {
	Energy(x State) float64
}

// Faulty systems remember the last evaluation error. Derive cannot return
// one, so the simulator polls Err after every step.
type Faulty interface {
	Err() error
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64
	Steps         int
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0,
		Steps:         1000,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Result holds sampled states. Energies is filled for Hamiltonian systems.
type Result struct {
	States      []State
	Times       []float64
	Energies    []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f fs): %s", e.Step, e.Time, e.Message)
}
