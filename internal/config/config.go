package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0
	DefaultSteps       = 1000
	DefaultSampleEvery = 10
	DefaultLattice     = "fcc"
	DefaultA           = 5.26
	DefaultRepeat      = 2
	DefaultTemperature = 30.0
)

// Config describes one simulation: the structure, its interactions and the
// molecular dynamics run.
type Config struct {
	Name       string            `yaml:"name"`
	Structure  StructureConfig   `yaml:"structure"`
	Potentials []PotentialConfig `yaml:"potentials"`
	BondOrders []BondOrderConfig `yaml:"bond_orders,omitempty"`
	Coulomb    *CoulombConfig    `yaml:"coulomb,omitempty"`
	Relaxation *RelaxationConfig `yaml:"relaxation,omitempty"`
	MD         MDConfig          `yaml:"md"`
}

// StructureConfig builds the initial atoms. Lattice is one of the lattices
// registered in the experiment package; "dimer" places two atoms A apart.
type StructureConfig struct {
	Lattice     string   `yaml:"lattice"`
	Symbols     []string `yaml:"symbols"`
	A           float64  `yaml:"a"`
	Repeat      [3]int   `yaml:"repeat"`
	Open        bool     `yaml:"open,omitempty"`
	Temperature float64  `yaml:"temperature"`
	Seed        int64    `yaml:"seed"`
}

type PotentialConfig struct {
	Kind         string     `yaml:"kind"`
	Symbols      [][]string `yaml:"symbols,omitempty"`
	Tags         [][]int    `yaml:"tags,omitempty"`
	Parameters   []float64  `yaml:"parameters"`
	Cutoff       float64    `yaml:"cutoff,omitempty"`
	CutoffMargin float64    `yaml:"cutoff_margin,omitempty"`
	BondOrder    string     `yaml:"bond_order,omitempty"`
}

// BondOrderConfig is a named coordinator that potentials refer to through
// PotentialConfig.BondOrder.
type BondOrderConfig struct {
	Name    string                  `yaml:"name"`
	Factors []BondOrderFactorConfig `yaml:"factors"`
}

type BondOrderFactorConfig struct {
	Kind         string     `yaml:"kind"`
	Symbols      [][]string `yaml:"symbols,omitempty"`
	Parameters   []float64  `yaml:"parameters,omitempty"`
	Cutoff       float64    `yaml:"cutoff,omitempty"`
	CutoffMargin float64    `yaml:"cutoff_margin,omitempty"`
}

type CoulombConfig struct {
	Method     string             `yaml:"method"`
	Parameters []float64          `yaml:"parameters"`
	Scaling    map[string]float64 `yaml:"scaling,omitempty"`
}

type RelaxationConfig struct {
	Method     string    `yaml:"method"`
	Parameters []float64 `yaml:"parameters"`
	Strict     bool      `yaml:"strict,omitempty"`
}

type MDConfig struct {
	Integrator  string            `yaml:"integrator"`
	Dt          float64           `yaml:"dt"`
	Steps       int               `yaml:"steps"`
	SampleEvery int               `yaml:"sample_every"`
	Thermostat  *ThermostatConfig `yaml:"thermostat,omitempty"`
}

// ThermostatConfig selects a thermostat by kind: none, berendsen (tau),
// rescale (every) or pid (gains kp, ki, kd).
type ThermostatConfig struct {
	Kind   string    `yaml:"kind"`
	Target float64   `yaml:"target"`
	Tau    float64   `yaml:"tau,omitempty"`
	Every  int       `yaml:"every,omitempty"`
	Gains  []float64 `yaml:"gains,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "argon",
		Structure: StructureConfig{
			Lattice:     DefaultLattice,
			Symbols:     []string{"Ar"},
			A:           DefaultA,
			Repeat:      [3]int{DefaultRepeat, DefaultRepeat, DefaultRepeat},
			Temperature: DefaultTemperature,
			Seed:        1,
		},
		Potentials: []PotentialConfig{
			{Kind: "LJ", Symbols: [][]string{{"Ar", "Ar"}}, Parameters: []float64{0.0104, 3.4}, Cutoff: 6.5, CutoffMargin: 0.5},
		},
		MD: MDConfig{
			Integrator:  "verlet",
			Dt:          DefaultDt,
			Steps:       DefaultSteps,
			SampleEvery: DefaultSampleEvery,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks what can be checked without building the interactions.
func (c *Config) Validate() error {
	if c.MD.Dt <= 0 {
		return fmt.Errorf("md.dt must be positive, got %g", c.MD.Dt)
	}
	if c.MD.Steps < 1 {
		return fmt.Errorf("md.steps must be at least 1, got %d", c.MD.Steps)
	}
	if c.MD.SampleEvery < 1 {
		return fmt.Errorf("md.sample_every must be at least 1, got %d", c.MD.SampleEvery)
	}
	if len(c.Structure.Symbols) == 0 {
		return fmt.Errorf("structure.symbols is empty")
	}
	if c.Structure.Temperature < 0 {
		return fmt.Errorf("structure.temperature must not be negative, got %g", c.Structure.Temperature)
	}
	if th := c.MD.Thermostat; th != nil && th.Target < 0 {
		return fmt.Errorf("md.thermostat.target must not be negative, got %g", th.Target)
	}
	names := make(map[string]bool, len(c.BondOrders))
	for _, b := range c.BondOrders {
		if b.Name == "" {
			return fmt.Errorf("bond order without a name")
		}
		if names[b.Name] {
			return fmt.Errorf("duplicate bond order %q", b.Name)
		}
		names[b.Name] = true
	}
	for i, p := range c.Potentials {
		if p.BondOrder != "" && !names[p.BondOrder] {
			return fmt.Errorf("potential %d (%s) refers to unknown bond order %q", i, p.Kind, p.BondOrder)
		}
	}
	return nil
}

// Clone returns a deep copy, so presets can be tweaked by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Structure.Symbols = append([]string(nil), c.Structure.Symbols...)
	out.Potentials = make([]PotentialConfig, len(c.Potentials))
	for i, p := range c.Potentials {
		p.Symbols = cloneTargets(p.Symbols)
		p.Tags = cloneTags(p.Tags)
		p.Parameters = append([]float64(nil), p.Parameters...)
		out.Potentials[i] = p
	}
	out.BondOrders = nil
	for _, b := range c.BondOrders {
		factors := make([]BondOrderFactorConfig, len(b.Factors))
		for i, f := range b.Factors {
			f.Symbols = cloneTargets(f.Symbols)
			f.Parameters = append([]float64(nil), f.Parameters...)
			factors[i] = f
		}
		out.BondOrders = append(out.BondOrders, BondOrderConfig{Name: b.Name, Factors: factors})
	}
	if c.Coulomb != nil {
		cc := *c.Coulomb
		cc.Parameters = append([]float64(nil), cc.Parameters...)
		if c.Coulomb.Scaling != nil {
			cc.Scaling = make(map[string]float64, len(c.Coulomb.Scaling))
			for k, v := range c.Coulomb.Scaling {
				cc.Scaling[k] = v
			}
		}
		out.Coulomb = &cc
	}
	if c.Relaxation != nil {
		rc := *c.Relaxation
		rc.Parameters = append([]float64(nil), rc.Parameters...)
		out.Relaxation = &rc
	}
	if c.MD.Thermostat != nil {
		tc := *c.MD.Thermostat
		tc.Gains = append([]float64(nil), tc.Gains...)
		out.MD.Thermostat = &tc
	}
	return &out
}

func cloneTargets(in [][]string) [][]string {
	if in == nil {
		return nil
	}
	out := make([][]string, len(in))
	for i, t := range in {
		out[i] = append([]string(nil), t...)
	}
	return out
}

func cloneTags(in [][]int) [][]int {
	if in == nil {
		return nil
	}
	out := make([][]int, len(in))
	for i, t := range in {
		out[i] = append([]int(nil), t...)
	}
	return out
}
