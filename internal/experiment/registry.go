package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/control"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/integrators"
	"github.com/san-kum/pysic/internal/md"
	"github.com/san-kum/pysic/internal/metrics"
)

// LatticeFunc builds a structure from the symbols, lattice constant (Å) and
// repetitions of a StructureConfig.
type LatticeFunc func(symbols []string, a float64, repeat [3]int) (*geometry.Atoms, error)

// ThermostatFunc builds a thermostat from its config block.
type ThermostatFunc func(tc config.ThermostatConfig) (control.Thermostat, error)

type Registry struct {
	lattices    map[string]LatticeFunc
	integrators map[string]func() md.Integrator
	thermostats map[string]ThermostatFunc
}

func NewRegistry() *Registry {
	r := &Registry{
		lattices:    make(map[string]LatticeFunc),
		integrators: make(map[string]func() md.Integrator),
		thermostats: make(map[string]ThermostatFunc),
	}

	r.lattices["sc"] = func(s []string, a float64, n [3]int) (*geometry.Atoms, error) {
		return geometry.SimpleCubic(s[0], a, n)
	}
	r.lattices["fcc"] = func(s []string, a float64, n [3]int) (*geometry.Atoms, error) {
		return geometry.FCC(s[0], a, n)
	}
	r.lattices["rocksalt"] = func(s []string, a float64, n [3]int) (*geometry.Atoms, error) {
		if len(s) < 2 {
			return nil, fmt.Errorf("rocksalt needs two symbols, got %v", s)
		}
		return geometry.RockSalt(s[0], s[1], a, n)
	}
	r.lattices["dimer"] = dimer

	r.integrators["euler"] = func() md.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() md.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() md.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() md.Integrator { return integrators.NewLeapfrog() }

	r.thermostats["none"] = func(config.ThermostatConfig) (control.Thermostat, error) {
		return control.NewNone(), nil
	}
	r.thermostats["berendsen"] = func(tc config.ThermostatConfig) (control.Thermostat, error) {
		if tc.Tau <= 0 {
			return nil, fmt.Errorf("berendsen needs tau > 0, got %g", tc.Tau)
		}
		return control.NewBerendsen(tc.Target, tc.Tau), nil
	}
	r.thermostats["rescale"] = func(tc config.ThermostatConfig) (control.Thermostat, error) {
		return control.NewRescale(tc.Target, tc.Every), nil
	}
	r.thermostats["pid"] = func(tc config.ThermostatConfig) (control.Thermostat, error) {
		if len(tc.Gains) != 3 {
			return nil, fmt.Errorf("pid needs gains [kp, ki, kd], got %v", tc.Gains)
		}
		return control.NewPID(tc.Gains[0], tc.Gains[1], tc.Gains[2], tc.Target), nil
	}

	return r
}

// dimer places two atoms a apart along x in an open cell.
func dimer(s []string, a float64, _ [3]int) (*geometry.Atoms, error) {
	second := s[0]
	if len(s) > 1 {
		second = s[1]
	}
	if !(a > 0) {
		return nil, fmt.Errorf("dimer separation must be positive, got %g", a)
	}
	return geometry.NewAtoms([]string{s[0], second}, []geometry.Vec3{{0, 0, 0}, {a, 0, 0}}, geometry.Cell{})
}

func (r *Registry) RegisterLattice(name string, fn LatticeFunc) {
	r.lattices[name] = fn
}

func (r *Registry) GetLattice(name string) (LatticeFunc, error) {
	fn, ok := r.lattices[name]
	if !ok {
		return nil, fmt.Errorf("unknown lattice: %s", name)
	}
	return fn, nil
}

// GetIntegrator returns a fresh integrator; they keep per-run scratch state.
func (r *Registry) GetIntegrator(name string) (md.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetThermostat(tc config.ThermostatConfig) (control.Thermostat, error) {
	fn, ok := r.thermostats[tc.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown thermostat: %s", tc.Kind)
	}
	return fn(tc)
}

// BuildIntegrator returns a fresh integrator for mc, wrapped in its
// thermostat when one is configured.
func (r *Registry) BuildIntegrator(mc config.MDConfig, masses []float64) (md.Integrator, error) {
	integ, err := r.GetIntegrator(mc.Integrator)
	if err != nil {
		return nil, err
	}
	if mc.Thermostat == nil {
		return integ, nil
	}
	th, err := r.GetThermostat(*mc.Thermostat)
	if err != nil {
		return nil, err
	}
	return control.NewThermostatted(integ, th, masses), nil
}

func (r *Registry) ListLattices() []string {
	names := make([]string, 0, len(r.lattices))
	for name := range r.lattices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListThermostats() []string {
	names := make([]string, 0, len(r.thermostats))
	for name := range r.thermostats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(sys *md.AtomsSystem) []md.Metric {
	return []md.Metric{
		metrics.NewEnergyDrift(sys),
		metrics.NewTemperature(sys),
		metrics.NewMaxForce(sys),
	}
}
