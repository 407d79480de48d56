// Package core is the catalog of interaction types pysic knows how to
// evaluate: pair and single-body potentials, bond order factors, Coulomb
// summation methods and charge relaxation methods.
//
// The catalog only describes interactions. Evaluation lives in the
// interactions and charges packages, which validate their input here.
package core

import (
	"sort"

	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// Descriptor describes one interaction type.
type Descriptor struct {
	Name        string
	Targets     int
	Parameters  []string
	Description string
	Formula     string
}

var potentials = map[string]Descriptor{
	"LJ": {
		Name:        "LJ",
		Targets:     2,
		Parameters:  []string{"epsilon", "sigma"},
		Description: "Lennard-Jones pair potential",
		Formula:     "V(r) = 4 epsilon ((sigma/r)^12 - (sigma/r)^6)",
	},
	"spring": {
		Name:        "spring",
		Targets:     2,
		Parameters:  []string{"k", "R0"},
		Description: "harmonic spring between two atoms",
		Formula:     "V(r) = k/2 (r - R0)^2",
	},
	"power": {
		Name:        "power",
		Targets:     2,
		Parameters:  []string{"epsilon", "a", "n"},
		Description: "inverse power law repulsion",
		Formula:     "V(r) = epsilon (a/r)^n",
	},
	"Buckingham": {
		Name:        "Buckingham",
		Targets:     2,
		Parameters:  []string{"A", "rho", "C"},
		Description: "Buckingham exponential-6 potential",
		Formula:     "V(r) = A exp(-r/rho) - C/r^6",
	},
	"morse": {
		Name:        "morse",
		Targets:     2,
		Parameters:  []string{"D", "alpha", "R0"},
		Description: "Morse bond potential",
		Formula:     "V(r) = D ((1 - exp(-alpha (r - R0)))^2 - 1)",
	},
	"constant_force": {
		Name:        "constant_force",
		Targets:     1,
		Parameters:  []string{"Fx", "Fy", "Fz"},
		Description: "constant external force",
		Formula:     "V(r) = -F . r",
	},
	"charge_self": {
		Name:        "charge_self",
		Targets:     1,
		Parameters:  []string{"chi", "J"},
		Description: "charge self energy (electronegativity and hardness)",
		Formula:     "V(q) = chi q + J/2 q^2",
	},
}

var bondOrderFactors = map[string]Descriptor{
	"neighbors": {
		Name:        "neighbors",
		Targets:     2,
		Parameters:  []string{},
		Description: "counts neighbours inside the smooth cutoff",
		Formula:     "N_i = sum_j f_c(r_ij)",
	},
	"c_scale": {
		Name:        "c_scale",
		Targets:     1,
		Parameters:  []string{"epsilon", "N0", "C", "gamma"},
		Description: "coordination scaling",
		Formula:     "b_i = epsilon (1 + C (N_i - N0)) / (1 + exp(gamma (N_i - N0)))",
	},
	"sqrt_scale": {
		Name:        "sqrt_scale",
		Targets:     1,
		Parameters:  []string{"epsilon", "N0"},
		Description: "square root coordination scaling",
		Formula:     "b_i = epsilon sqrt((1 + N0) / (1 + N_i))",
	},
}

var coulombMethods = map[string]Descriptor{
	"ewald": {
		Name:        "ewald",
		Parameters:  []string{"real_cutoff", "k_cutoff", "sigma", "epsilon"},
		Description: "Ewald summation for fully periodic systems",
	},
	"direct": {
		Name:        "direct",
		Parameters:  []string{"epsilon"},
		Description: "direct pairwise summation for open systems",
	},
}

var relaxationMethods = map[string]Descriptor{
	"dynamic": {
		Name:        "dynamic",
		Parameters:  []string{"n_steps", "timestep", "inertia", "friction", "tolerance"},
		Description: "damped charge dynamics towards equal electronegativity",
	},
}

func sortedNames(m map[string]Descriptor) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(m map[string]Descriptor, op, name string, sentinel error) (Descriptor, error) {
	d, ok := m[name]
	if !ok {
		return Descriptor{}, pysicerr.New(op, name, sentinel, "unknown type")
	}
	return d, nil
}

func ListValidPotentials() []string { return sortedNames(potentials) }

func IsValidPotential(name string) bool {
	_, ok := potentials[name]
	return ok
}

func Potential(name string) (Descriptor, error) {
	return lookup(potentials, "Potential", name, pysicerr.ErrInvalidPotential)
}

// NumberOfTargets returns how many atoms a potential acts on.
func NumberOfTargets(name string) (int, error) {
	d, err := Potential(name)
	if err != nil {
		return 0, err
	}
	return d.Targets, nil
}

func NumberOfParameters(name string) (int, error) {
	d, err := Potential(name)
	if err != nil {
		return 0, err
	}
	return len(d.Parameters), nil
}

func NamesOfParameters(name string) ([]string, error) {
	d, err := Potential(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), d.Parameters...), nil
}

// IndexOfParameter returns the position of param in the parameter list of a
// potential.
func IndexOfParameter(name, param string) (int, error) {
	d, err := Potential(name)
	if err != nil {
		return -1, err
	}
	return indexIn(d, param)
}

func DescriptionOfPotential(name string) (string, error) {
	d, err := Potential(name)
	if err != nil {
		return "", err
	}
	return d.Description + ": " + d.Formula, nil
}

func ListValidBondOrderFactors() []string { return sortedNames(bondOrderFactors) }

func IsValidBondOrderFactor(name string) bool {
	_, ok := bondOrderFactors[name]
	return ok
}

func BondOrderFactor(name string) (Descriptor, error) {
	return lookup(bondOrderFactors, "BondOrderFactor", name, pysicerr.ErrInvalidCoordinator)
}

// IsBondOrderScaler reports whether a factor turns a coordination number
// into a multiplier, as opposed to counting neighbours.
func IsBondOrderScaler(name string) bool {
	d, ok := bondOrderFactors[name]
	return ok && d.Targets == 1
}

func IndexOfBondOrderParameter(name, param string) (int, error) {
	d, err := BondOrderFactor(name)
	if err != nil {
		return -1, err
	}
	return indexIn(d, param)
}

func ListValidCoulombMethods() []string { return sortedNames(coulombMethods) }

func CoulombMethod(name string) (Descriptor, error) {
	return lookup(coulombMethods, "CoulombMethod", name, pysicerr.ErrInvalidSummation)
}

func ListValidChargeRelaxationMethods() []string { return sortedNames(relaxationMethods) }

func ChargeRelaxationMethod(name string) (Descriptor, error) {
	return lookup(relaxationMethods, "ChargeRelaxationMethod", name, pysicerr.ErrInvalidRelaxation)
}

func NamesOfChargeRelaxationParameters(name string) ([]string, error) {
	d, err := ChargeRelaxationMethod(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), d.Parameters...), nil
}

func indexIn(d Descriptor, param string) (int, error) {
	for i, p := range d.Parameters {
		if p == param {
			return i, nil
		}
	}
	return -1, pysicerr.New("IndexOfParameter", param, pysicerr.ErrInvalidParameters,
		"%s has no such parameter", d.Name)
}
