package core

import (
	"errors"
	"testing"

	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

func TestListValidPotentials(t *testing.T) {
	names := ListValidPotentials()
	if len(names) != 7 {
		t.Fatalf("expected 7 potentials, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("potentials not sorted: %v", names)
		}
	}
}

func TestNumberOfTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets int
	}{
		{"LJ", 2},
		{"spring", 2},
		{"Buckingham", 2},
		{"constant_force", 1},
		{"charge_self", 1},
	}
	for _, tt := range tests {
		got, err := NumberOfTargets(tt.name)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.targets {
			t.Errorf("%s: targets = %d, want %d", tt.name, got, tt.targets)
		}
	}

	if _, err := NumberOfTargets("nope"); !errors.Is(err, pysicerr.ErrInvalidPotential) {
		t.Errorf("unknown potential: got %v", err)
	}
}

func TestParameters(t *testing.T) {
	names, err := NamesOfParameters("LJ")
	if err != nil || len(names) != 2 || names[0] != "epsilon" {
		t.Fatalf("NamesOfParameters(LJ) = %v, %v", names, err)
	}

	names[0] = "mutated"
	again, _ := NamesOfParameters("LJ")
	if again[0] != "epsilon" {
		t.Error("NamesOfParameters leaked catalog storage")
	}

	idx, err := IndexOfParameter("morse", "R0")
	if err != nil || idx != 2 {
		t.Errorf("IndexOfParameter(morse, R0) = %d, %v", idx, err)
	}
	if _, err := IndexOfParameter("morse", "x"); !errors.Is(err, pysicerr.ErrInvalidParameters) {
		t.Errorf("bad parameter: got %v", err)
	}
}

func TestBondOrderFactors(t *testing.T) {
	if !IsValidBondOrderFactor("neighbors") || IsValidBondOrderFactor("tersoff") {
		t.Error("unexpected bond order validity")
	}
	if IsBondOrderScaler("neighbors") || !IsBondOrderScaler("c_scale") {
		t.Error("scaler classification wrong")
	}
	if _, err := BondOrderFactor("x"); !errors.Is(err, pysicerr.ErrInvalidCoordinator) {
		t.Errorf("got %v", err)
	}
}

func TestMethods(t *testing.T) {
	if got := ListValidCoulombMethods(); len(got) != 2 || got[0] != "direct" {
		t.Errorf("coulomb methods %v", got)
	}
	params, err := NamesOfChargeRelaxationParameters("dynamic")
	if err != nil || len(params) != 5 {
		t.Errorf("relaxation params %v, %v", params, err)
	}
	if _, err := ChargeRelaxationMethod("static"); !errors.Is(err, pysicerr.ErrInvalidRelaxation) {
		t.Errorf("got %v", err)
	}
}

func TestDescription(t *testing.T) {
	d, err := DescriptionOfPotential("spring")
	if err != nil || d == "" {
		t.Errorf("DescriptionOfPotential(spring) = %q, %v", d, err)
	}
}
