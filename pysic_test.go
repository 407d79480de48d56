package pysic_test

import (
	"context"
	"errors"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/san-kum/pysic"
)

func TestVersion(t *testing.T) {
	if pysic.Version != "0.5" {
		t.Errorf("Version = %q, want 0.5", pysic.Version)
	}
}

func TestCatalog(t *testing.T) {
	names := pysic.ListValidPotentials()
	for _, want := range []string{"LJ", "Buckingham", "morse", "charge_self"} {
		if !slices.Contains(names, want) {
			t.Errorf("potential %q missing from %v", want, names)
		}
		if !pysic.IsValidPotential(want) {
			t.Errorf("IsValidPotential(%q) = false", want)
		}
	}
	if pysic.IsValidPotential("nope") {
		t.Error("IsValidPotential(nope) = true")
	}

	n, err := pysic.NumberOfTargets("LJ")
	if err != nil || n != 2 {
		t.Errorf("NumberOfTargets(LJ) = %d, %v", n, err)
	}
	params, err := pysic.NamesOfParameters("LJ")
	if err != nil || !slices.Equal(params, []string{"epsilon", "sigma"}) {
		t.Errorf("NamesOfParameters(LJ) = %v, %v", params, err)
	}
	if _, err := pysic.DescriptionOfPotential("nope"); !errors.Is(err, pysic.ErrInvalidPotential) {
		t.Errorf("DescriptionOfPotential(nope) err = %v", err)
	}
	if !pysic.IsValidBondOrderFactor("neighbors") {
		t.Error("neighbors bond order factor not valid")
	}
	if !slices.Contains(pysic.ListValidCoulombMethods(), "ewald") {
		t.Error("ewald missing from coulomb methods")
	}
	if !slices.Contains(pysic.ListValidChargeRelaxationMethods(), "dynamic") {
		t.Error("dynamic missing from relaxation methods")
	}
	if _, err := pysic.NamesOfChargeRelaxationParameters("dynamic"); err != nil {
		t.Error(err)
	}
	if len(pysic.ListValidBondOrderFactors()) == 0 {
		t.Error("no bond order factors")
	}
}

func TestDimerThroughFacade(t *testing.T) {
	eps, sigma := 0.0104, 3.4
	rmin := sigma * math.Pow(2, 1.0/6)
	atoms, err := pysic.NewAtoms([]string{"Ar", "Ar"}, []pysic.Vec3{{0, 0, 0}, {rmin, 0, 0}}, pysic.Cell{})
	if err != nil {
		t.Fatal(err)
	}
	lj, err := pysic.NewPotential("LJ",
		pysic.WithSymbols([]string{"Ar", "Ar"}),
		pysic.WithParameters(eps, sigma),
		pysic.WithCutoff(8))
	if err != nil {
		t.Fatal(err)
	}

	calc := pysic.NewPysic()
	if err := calc.AddPotential(lj); err != nil {
		t.Fatal(err)
	}
	energy, err := calc.GetPotentialEnergy(atoms)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(energy+eps) > 1e-9 {
		t.Errorf("energy at minimum = %g, want %g", energy, -eps)
	}
	forces, err := calc.GetForces(atoms)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(forces[0][0]) > 1e-9 {
		t.Errorf("force at minimum = %g, want 0", forces[0][0])
	}

	res, err := calc.Calculate(context.Background(), atoms)
	if err != nil {
		t.Fatal(err)
	}
	if res.Energy != energy {
		t.Errorf("Calculate energy %g differs from GetPotentialEnergy %g", res.Energy, energy)
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	_, err := pysic.NewPotential("nope")
	if !errors.Is(err, pysic.ErrInvalidPotential) {
		t.Errorf("unknown potential err = %v", err)
	}
	var perr *pysic.Error
	if !errors.As(err, &perr) {
		t.Errorf("unknown potential err %T is not *pysic.Error", err)
	}

	_, err = pysic.NewCoulombSummation("nope", nil)
	if !errors.Is(err, pysic.ErrInvalidSummation) {
		t.Errorf("unknown summation err = %v", err)
	}
	_, err = pysic.NewChargeRelaxation("nope", nil)
	if !errors.Is(err, pysic.ErrInvalidRelaxation) {
		t.Errorf("unknown relaxation err = %v", err)
	}
	_, err = pysic.NewBondOrderParameters("nope")
	if !errors.Is(err, pysic.ErrInvalidCoordinator) {
		t.Errorf("unknown bond order factor err = %v", err)
	}
}

func TestVisualization(t *testing.T) {
	lj, err := pysic.NewPotential("LJ", pysic.WithParameters(0.0104, 3.4), pysic.WithCutoff(8))
	if err != nil {
		t.Fatal(err)
	}
	curve, err := pysic.PotentialCurve(lj, 3.2, 7.5, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(curve.R) != 50 {
		t.Errorf("curve has %d samples, want 50", len(curve.R))
	}
	if plot := pysic.PlotPotential(curve, 10, 60, "LJ"); !strings.Contains(plot, "LJ") {
		t.Error("plot is missing its caption")
	}

	atoms, err := pysic.NewAtoms([]string{"Na", "Cl"}, []pysic.Vec3{{0, 0, 0}, {2.8, 0, 0}}, pysic.Cell{})
	if err != nil {
		t.Fatal(err)
	}
	if svg := pysic.AtomsToSVG(atoms, 200, 200); !strings.Contains(svg, "<svg") {
		t.Errorf("AtomsToSVG output has no svg element: %.60q", svg)
	}
}
