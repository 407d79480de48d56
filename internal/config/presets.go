package config

import "sort"

var argonLJ = PotentialConfig{
	Kind:         "LJ",
	Symbols:      [][]string{{"Ar", "Ar"}},
	Parameters:   []float64{0.0104, 3.4},
	Cutoff:       6.5,
	CutoffMargin: 0.5,
}

var rockSaltBuckingham = []PotentialConfig{
	{Kind: "Buckingham", Symbols: [][]string{{"Na", "Cl"}}, Parameters: []float64{1254.2, 0.321, 0}, Cutoff: 6, CutoffMargin: 0.5},
	{Kind: "Buckingham", Symbols: [][]string{{"Cl", "Cl"}}, Parameters: []float64{3485.6, 0.3, 69.6}, Cutoff: 6, CutoffMargin: 0.5},
}

// Presets are keyed by system, then variant.
var Presets = map[string]map[string]*Config{
	"argon": {
		"crystal": {
			Name:       "argon",
			Structure:  StructureConfig{Lattice: "fcc", Symbols: []string{"Ar"}, A: 5.26, Repeat: [3]int{2, 2, 2}, Temperature: 30, Seed: 1},
			Potentials: []PotentialConfig{argonLJ},
			MD:         MDConfig{Integrator: "verlet", Dt: 2, Steps: 2000, SampleEvery: 10},
		},
		"nvt": {
			Name:       "argon_nvt",
			Structure:  StructureConfig{Lattice: "fcc", Symbols: []string{"Ar"}, A: 5.26, Repeat: [3]int{2, 2, 2}, Temperature: 20, Seed: 5},
			Potentials: []PotentialConfig{argonLJ},
			MD: MDConfig{
				Integrator:  "verlet",
				Dt:          2,
				Steps:       2000,
				SampleEvery: 10,
				Thermostat:  &ThermostatConfig{Kind: "berendsen", Target: 60, Tau: 100},
			},
		},
		"melt": {
			Name:       "argon_melt",
			Structure:  StructureConfig{Lattice: "fcc", Symbols: []string{"Ar"}, A: 5.26, Repeat: [3]int{3, 3, 3}, Temperature: 150, Seed: 7},
			Potentials: []PotentialConfig{argonLJ},
			MD:         MDConfig{Integrator: "verlet", Dt: 2, Steps: 5000, SampleEvery: 25},
		},
	},
	"nacl": {
		"crystal": {
			Name:       "nacl",
			Structure:  StructureConfig{Lattice: "rocksalt", Symbols: []string{"Na", "Cl"}, A: 5.64, Repeat: [3]int{2, 2, 2}, Temperature: 300, Seed: 1},
			Potentials: rockSaltBuckingham,
			Coulomb:    &CoulombConfig{Method: "ewald", Parameters: []float64{8, 8, 1.2, 1}},
			MD:         MDConfig{Integrator: "verlet", Dt: 1, Steps: 500, SampleEvery: 5},
		},
		"relaxed": {
			Name:      "nacl_qeq",
			Structure: StructureConfig{Lattice: "rocksalt", Symbols: []string{"Na", "Cl"}, A: 5.64, Repeat: [3]int{1, 1, 1}, Seed: 1},
			Potentials: append([]PotentialConfig{
				{Kind: "charge_self", Symbols: [][]string{{"Na"}}, Parameters: []float64{2.8, 9.0}},
				{Kind: "charge_self", Symbols: [][]string{{"Cl"}}, Parameters: []float64{8.3, 9.4}},
			}, rockSaltBuckingham...),
			Coulomb:    &CoulombConfig{Method: "ewald", Parameters: []float64{8, 8, 1.2, 1}},
			Relaxation: &RelaxationConfig{Method: "dynamic", Parameters: []float64{500, 0.2, 1, 0.5, 0.001}},
			MD:         MDConfig{Integrator: "verlet", Dt: 1, Steps: 50, SampleEvery: 5},
		},
	},
	"dimer": {
		"lj": {
			Name:       "lj_dimer",
			Structure:  StructureConfig{Lattice: "dimer", Symbols: []string{"Ar", "Ar"}, A: 4.0},
			Potentials: []PotentialConfig{argonLJ},
			MD:         MDConfig{Integrator: "verlet", Dt: 5, Steps: 2000, SampleEvery: 5},
		},
		"morse": {
			Name:      "h2",
			Structure: StructureConfig{Lattice: "dimer", Symbols: []string{"H", "H"}, A: 0.8},
			Potentials: []PotentialConfig{
				{Kind: "morse", Symbols: [][]string{{"H", "H"}}, Parameters: []float64{4.7, 1.94, 0.74}, Cutoff: 3, CutoffMargin: 0.5},
			},
			MD: MDConfig{Integrator: "verlet", Dt: 0.1, Steps: 2000, SampleEvery: 2},
		},
	},
	"coordinated": {
		"silicon": {
			Name:      "si_bond_order",
			Structure: StructureConfig{Lattice: "sc", Symbols: []string{"Si"}, A: 2.6, Repeat: [3]int{3, 3, 3}, Temperature: 100, Seed: 3},
			Potentials: []PotentialConfig{
				{
					Kind:         "morse",
					Symbols:      [][]string{{"Si", "Si"}},
					Parameters:   []float64{2.0, 1.5, 2.35},
					Cutoff:       3.2,
					CutoffMargin: 0.4,
					BondOrder:    "si",
				},
			},
			BondOrders: []BondOrderConfig{
				{
					Name: "si",
					Factors: []BondOrderFactorConfig{
						{Kind: "neighbors", Symbols: [][]string{{"Si", "Si"}}, Cutoff: 3.2, CutoffMargin: 0.4},
						{Kind: "c_scale", Symbols: [][]string{{"Si"}}, Parameters: []float64{1, 4, 0.5, 1}},
					},
				},
			},
			MD: MDConfig{Integrator: "verlet", Dt: 1, Steps: 1000, SampleEvery: 10},
		},
	},
}

// GetPreset returns a copy of the preset, or nil.
func GetPreset(system, preset string) *Config {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	cfg, ok := systemPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(system string) []string {
	systemPresets, ok := Presets[system]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(systemPresets))
	for name := range systemPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListSystems() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
