package calculator

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/san-kum/pysic/internal/charges/relaxation"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/interactions/coulomb"
	"github.com/san-kum/pysic/internal/interactions/local"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

func mustAtoms(t *testing.T, symbols []string, pos []geometry.Vec3) *geometry.Atoms {
	t.Helper()
	atoms, err := geometry.NewAtoms(symbols, pos, geometry.Cell{})
	if err != nil {
		t.Fatal(err)
	}
	return atoms
}

func mustLJ(t *testing.T, eps, sigma, rc, margin float64, opts ...local.Option) *local.Potential {
	t.Helper()
	opts = append([]local.Option{local.WithParameters(eps, sigma), local.WithCutoff(rc), local.WithCutoffMargin(margin)}, opts...)
	p, err := local.NewPotential("LJ", opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Abs(b))
}

func compareForces(t *testing.T, got, want []geometry.Vec3, tol float64) {
	t.Helper()
	for i := range want {
		for ax := 0; ax < 3; ax++ {
			if !near(got[i][ax], want[i][ax], tol) {
				t.Errorf("atom %d axis %d: analytic %g, numerical %g", i, ax, got[i][ax], want[i][ax])
			}
		}
	}
}

func TestDimerEnergyAndForce(t *testing.T) {
	calc := New()
	if err := calc.AddPotential(mustLJ(t, 1, 1, 5, 0)); err != nil {
		t.Fatal(err)
	}
	r := 1.2
	atoms := mustAtoms(t, []string{"Ar", "Ar"}, []geometry.Vec3{{0, 0, 0}, {r, 0, 0}})

	e, err := calc.GetPotentialEnergy(atoms)
	if err != nil {
		t.Fatal(err)
	}
	s6 := math.Pow(1/r, 6)
	if want := 4 * (s6*s6 - s6); !near(e, want, 1e-12) {
		t.Errorf("energy = %g, want %g", e, want)
	}
	f, _ := calc.GetForces(atoms)
	dv := 4 * (-12*s6*s6 + 6*s6) / r
	if !near(f[0][0], dv, 1e-12) || !near(f[1][0], -dv, 1e-12) {
		t.Errorf("forces = %v, want ±%g", f, dv)
	}
	if _, err := calc.GetStress(atoms); !errors.Is(err, pysicerr.ErrInvalidParameters) {
		t.Errorf("stress of an open system: %v", err)
	}
}

func argon(t *testing.T) *geometry.Atoms {
	t.Helper()
	atoms, err := geometry.FCC("Ar", 5.26, [3]int{2, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(7))
	for i := range atoms.Positions {
		for ax := 0; ax < 3; ax++ {
			atoms.Positions[i][ax] += 0.15 * (rng.Float64() - 0.5)
		}
	}
	return atoms
}

func TestPeriodicForcesAndStress(t *testing.T) {
	calc := New()
	_ = calc.AddPotential(mustLJ(t, 0.0104, 3.4, 8.5, 1))
	atoms := argon(t)

	res, err := calc.Calculate(context.Background(), atoms)
	if err != nil {
		t.Fatal(err)
	}
	num, err := calc.NumericalForces(atoms, 1e-5)
	if err != nil {
		t.Fatal(err)
	}
	compareForces(t, res.Forces, num, 1e-5)

	var total geometry.Vec3
	for _, f := range res.Forces {
		total = total.Add(f)
	}
	if total.Norm() > 1e-10 {
		t.Errorf("net force %v", total)
	}

	stress, err := calc.NumericalStress(atoms, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	for k := range stress {
		if math.Abs(stress[k]-res.Stress[k]) > 1e-7 {
			t.Errorf("stress[%d]: analytic %g, numerical %g", k, res.Stress[k], stress[k])
		}
	}
}

func coordinatedCluster(t *testing.T) (*Pysic, *geometry.Atoms) {
	t.Helper()
	counter, err := bondorder.NewBondOrderParameters("neighbors", bondorder.WithCutoff(2.5), bondorder.WithCutoffMargin(0.8))
	if err != nil {
		t.Fatal(err)
	}
	scaler, err := bondorder.NewBondOrderParameters("c_scale", bondorder.WithParameters(1, 2, 0.5, 1))
	if err != nil {
		t.Fatal(err)
	}
	coord, err := bondorder.NewCoordinator(counter, scaler)
	if err != nil {
		t.Fatal(err)
	}
	calc := New()
	_ = calc.AddPotential(mustLJ(t, 0.5, 1.3, 3.5, 0.5, local.WithCoordinator(coord)))
	atoms := mustAtoms(t, []string{"Si", "Si", "Si", "Si", "Si"}, []geometry.Vec3{
		{0, 0, 0}, {1.5, 0.2, 0}, {0.3, 1.6, 0.1}, {1.2, 1.1, 1.3}, {-1.0, 0.5, 0.8},
	})
	return calc, atoms
}

func TestBondOrderForces(t *testing.T) {
	calc, atoms := coordinatedCluster(t)
	f, err := calc.GetForces(atoms)
	if err != nil {
		t.Fatal(err)
	}
	num, err := calc.NumericalForces(atoms, 1e-5)
	if err != nil {
		t.Fatal(err)
	}
	compareForces(t, f, num, 1e-5)
}

func TestBondOrderEnergy(t *testing.T) {
	calc, atoms := coordinatedCluster(t)
	e, err := calc.GetPotentialEnergy(atoms)
	if err != nil {
		t.Fatal(err)
	}

	plain := New()
	_ = plain.AddPotential(mustLJ(t, 0.5, 1.3, 3.5, 0.5))
	bare, _ := plain.GetPotentialEnergy(atoms)
	if e == bare {
		t.Error("bond order factors had no effect")
	}

	// rebuild Σ ½(b_i+b_j) V by hand
	lj := mustLJ(t, 0.5, 1.3, 3.5, 0.5)
	coord := calc.Potentials()[0].Coordinator()
	_, b, _ := coord.Factors(atoms, calc.NeighborList())
	want := 0.0
	for i := 0; i < atoms.Len(); i++ {
		for j := i + 1; j < atoms.Len(); j++ {
			v, _ := lj.Pair(atoms.Distance(i, j))
			want += 0.5 * (b[i] + b[j]) * v
		}
	}
	if !near(e, want, 1e-12) {
		t.Errorf("energy = %g, want %g", e, want)
	}
}

func TestSingleBodyTerms(t *testing.T) {
	cf, _ := local.NewPotential("constant_force", local.WithParameters(0, 0, 2), local.WithSymbols([]string{"O"}))
	calc := New()
	_ = calc.SetPotentials(cf)
	atoms := mustAtoms(t, []string{"O", "H"}, []geometry.Vec3{{0, 0, 1}, {0, 0, 3}})
	res, err := calc.Calculate(context.Background(), atoms)
	if err != nil {
		t.Fatal(err)
	}
	if res.Energy != -2 || res.Forces[0] != (geometry.Vec3{0, 0, 2}) || res.Forces[1] != (geometry.Vec3{}) {
		t.Errorf("energy %g forces %v", res.Energy, res.Forces)
	}
	if calc.NeighborList() != nil {
		t.Error("single-body terms should not need a neighbour list")
	}
}

func ionicPair(t *testing.T) (*Pysic, *geometry.Atoms) {
	t.Helper()
	na, _ := local.NewPotential("charge_self", local.WithParameters(2, 10), local.WithSymbols([]string{"Na"}))
	cl, _ := local.NewPotential("charge_self", local.WithParameters(8, 12), local.WithSymbols([]string{"Cl"}))
	direct, err := coulomb.NewCoulombSummation("direct", []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	calc := New()
	_ = calc.SetPotentials(na, cl)
	calc.SetCoulombSummation(direct)
	return calc, mustAtoms(t, []string{"Na", "Cl"}, []geometry.Vec3{{0, 0, 0}, {2.5, 0, 0}})
}

func TestChargeRelaxation(t *testing.T) {
	calc, atoms := ionicPair(t)
	rel, err := relaxation.NewChargeRelaxation("dynamic", []float64{3000, 0.1, 1, 4, 1e-8})
	if err != nil {
		t.Fatal(err)
	}
	calc.SetChargeRelaxation(rel)

	if _, err := calc.Calculate(context.Background(), atoms); err != nil {
		t.Fatal(err)
	}
	chi, err := calc.GetElectronegativities(atoms)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(chi[0]-chi[1]) > 1e-7 {
		t.Errorf("electronegativities not equalised: %v", chi)
	}
	if math.Abs(atoms.TotalCharge()) > 1e-12 {
		t.Errorf("total charge %g", atoms.TotalCharge())
	}
	k := geometry.CoulombConstant / 2.5
	if want := 6 / (22 - 2*k); math.Abs(atoms.Charges[0]-want) > 1e-6 {
		t.Errorf("q(Na) = %g, want %g", atoms.Charges[0], want)
	}
}

func TestElectronegativitiesMatchFiniteDifference(t *testing.T) {
	calc, atoms := ionicPair(t)
	atoms.Charges[0], atoms.Charges[1] = 0.3, -0.2
	chi, err := calc.GetElectronegativities(atoms)
	if err != nil {
		t.Fatal(err)
	}
	h := 1e-6
	for i := range chi {
		p := atoms.Copy()
		p.Charges[i] += h
		m := atoms.Copy()
		m.Charges[i] -= h
		ep, _ := calc.GetPotentialEnergy(p)
		em, _ := calc.GetPotentialEnergy(m)
		if num := (ep - em) / (2 * h); !near(chi[i], num, 1e-6) {
			t.Errorf("chi[%d] = %g, numerical %g", i, chi[i], num)
		}
	}
}

func TestCacheFollowsParameters(t *testing.T) {
	lj := mustLJ(t, 1, 1, 5, 0)
	calc := New()
	_ = calc.AddPotential(lj)
	atoms := mustAtoms(t, []string{"Ar", "Ar"}, []geometry.Vec3{{0, 0, 0}, {1.5, 0, 0}})

	e1, _ := calc.GetPotentialEnergy(atoms)
	e2, _ := calc.GetPotentialEnergy(atoms)
	if e1 != e2 {
		t.Errorf("repeated evaluation differs: %g %g", e1, e2)
	}
	if err := lj.SetParameter("epsilon", 2); err != nil {
		t.Fatal(err)
	}
	e3, _ := calc.GetPotentialEnergy(atoms)
	if !near(e3, 2*e1, 1e-12) {
		t.Errorf("stale cache: %g after doubling epsilon, before %g", e3, e1)
	}
	atoms.Positions[1][0] = 1.6
	e4, _ := calc.GetPotentialEnergy(atoms)
	if e4 == e3 {
		t.Error("moved atom did not change the energy")
	}
}

func TestConcurrentCallers(t *testing.T) {
	calc := New()
	_ = calc.AddPotential(mustLJ(t, 0.0104, 3.4, 8.5, 1))
	base := argon(t)
	want, err := calc.GetPotentialEnergy(base)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := calc.GetPotentialEnergy(base.Copy())
			if err != nil {
				errs <- err
				return
			}
			if !near(e, want, 1e-12) {
				errs <- errors.New("energy mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestInvalidAtoms(t *testing.T) {
	calc := New()
	atoms := mustAtoms(t, []string{"Ar"}, []geometry.Vec3{{math.NaN(), 0, 0}})
	if _, err := calc.GetPotentialEnergy(atoms); !errors.Is(err, pysicerr.ErrInvalidParameters) {
		t.Errorf("err = %v", err)
	}
	if err := calc.AddPotential(nil); !errors.Is(err, pysicerr.ErrInvalidPotential) {
		t.Errorf("nil potential: %v", err)
	}
}
