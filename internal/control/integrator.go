package control

import "github.com/san-kum/pysic/internal/md"

// Thermostatted wraps an integrator and scales the velocities of every new
// state by the thermostat factor. Positions are left untouched, so caches
// keyed on positions in the inner integrator stay valid.
type Thermostatted struct {
	inner      md.Integrator
	thermostat Thermostat
	masses     []float64
}

func NewThermostatted(inner md.Integrator, th Thermostat, masses []float64) *Thermostatted {
	return &Thermostatted{inner: inner, thermostat: th, masses: append([]float64(nil), masses...)}
}

func (c *Thermostatted) Thermostat() Thermostat { return c.thermostat }

func (c *Thermostatted) Step(sys md.System, x md.State, t, dt float64) md.State {
	next := c.inner.Step(sys, x, t, dt)
	n := len(c.masses)
	if len(next) != 6*n {
		return next
	}
	lambda := c.thermostat.Scale(Temperature(next, c.masses), t+dt, dt)
	if lambda == 1 {
		return next
	}
	v := next.Velocities()
	for i := range v {
		v[i] *= lambda
	}
	return next
}
