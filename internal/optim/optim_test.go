package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pysic/internal/config"
)

func TestPointsOrder(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "dt"}, [][]float64{{1, 2}, {10, 20, 30}})
	if err != nil {
		t.Fatal(err)
	}
	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("got %d points, want 6", len(pts))
	}
	want := [][2]float64{{1, 10}, {1, 20}, {1, 30}, {2, 10}, {2, 20}, {2, 30}}
	for i, w := range want {
		if pts[i]["a"] != w[0] || pts[i]["dt"] != w[1] {
			t.Errorf("point %d = %v, want a=%g dt=%g", i, pts[i], w[0], w[1])
		}
	}
}

func TestNewGridSearchErrors(t *testing.T) {
	if _, err := NewGridSearch(nil, nil); err == nil {
		t.Error("expected error for empty grid")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{1}, {2}}); err == nil {
		t.Error("expected error for mismatched ranges")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func() *config.Config
		param   string
		value   float64
		check   func(*config.Config) float64
		wantErr bool
	}{
		{"lattice constant", config.DefaultConfig, "a", 5.4, func(c *config.Config) float64 { return c.Structure.A }, false},
		{"temperature", config.DefaultConfig, "temperature", 77, func(c *config.Config) float64 { return c.Structure.Temperature }, false},
		{"timestep", config.DefaultConfig, "dt", 0.5, func(c *config.Config) float64 { return c.MD.Dt }, false},
		{"potential parameter", config.DefaultConfig, "LJ.sigma", 3.3, func(c *config.Config) float64 { return c.Potentials[0].Parameters[1] }, false},
		{"potential cutoff", config.DefaultConfig, "LJ.cutoff", 7, func(c *config.Config) float64 { return c.Potentials[0].Cutoff }, false},
		{"coulomb", func() *config.Config { return config.GetPreset("nacl", "crystal") }, "coulomb.sigma", 1.5,
			func(c *config.Config) float64 { return c.Coulomb.Parameters[2] }, false},
		{"relaxation", func() *config.Config { return config.GetPreset("nacl", "relaxed") }, "relaxation.timestep", 0.1,
			func(c *config.Config) float64 { return c.Relaxation.Parameters[1] }, false},
		{"unknown name", config.DefaultConfig, "volume", 1, nil, true},
		{"unknown potential parameter", config.DefaultConfig, "LJ.rho", 1, nil, true},
		{"missing potential", config.DefaultConfig, "morse.D", 1, nil, true},
		{"unknown potential kind", config.DefaultConfig, "tersoff.beta", 1, nil, true},
		{"no coulomb", config.DefaultConfig, "coulomb.sigma", 1, nil, true},
		{"no relaxation", config.DefaultConfig, "relaxation.timestep", 1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg()
			err := Set(cfg, tt.param, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := tt.check(cfg); got != tt.value {
				t.Errorf("%s = %g, want %g", tt.param, got, tt.value)
			}
		})
	}
}

func TestParseRange(t *testing.T) {
	name, values, err := ParseRange("a=5:6:5")
	if err != nil {
		t.Fatal(err)
	}
	if name != "a" || len(values) != 5 || values[0] != 5 || values[4] != 6 || math.Abs(values[1]-5.25) > 1e-12 {
		t.Errorf("ParseRange = %s %v", name, values)
	}

	name, values, err = ParseRange("LJ.sigma=3.3, 3.4,3.5")
	if err != nil {
		t.Fatal(err)
	}
	if name != "LJ.sigma" || len(values) != 3 || values[1] != 3.4 {
		t.Errorf("ParseRange list = %s %v", name, values)
	}

	for _, bad := range []string{"a", "=1:2:3", "a=1:x:3", "a=1:2:0", "a=1,b"} {
		if _, _, err := ParseRange(bad); err == nil {
			t.Errorf("ParseRange(%q): expected error", bad)
		}
	}
}

func TestSearchFindsMinimum(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "temperature"}, [][]float64{Linspace(4, 6, 21), {10, 20, 30}}, WithWorkers(3))
	if err != nil {
		t.Fatal(err)
	}
	parabola := func(_ context.Context, cfg *config.Config) (float64, error) {
		da, dT := cfg.Structure.A-5.3, cfg.Structure.Temperature-20
		return da*da + dT*dT, nil
	}
	best, all, err := g.Search(context.Background(), config.DefaultConfig(), parabola)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 63 {
		t.Errorf("got %d points, want 63", len(all))
	}
	if math.Abs(best.Params["a"]-5.3) > 1e-9 || best.Params["temperature"] != 20 {
		t.Errorf("best = %v", best.Params)
	}
}

func TestSearchKeepsFailedPoints(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{{1, 2, 3, 4}})
	if err != nil {
		t.Fatal(err)
	}
	base := config.DefaultConfig()
	best, all, err := g.Search(context.Background(), base, func(_ context.Context, cfg *config.Config) (float64, error) {
		if cfg.Structure.A == 1 {
			return 0, fmt.Errorf("bad point")
		}
		return cfg.Structure.A, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if best.Params["a"] != 2 {
		t.Errorf("best a = %g, want 2", best.Params["a"])
	}
	if all[0].Err == nil || !math.IsInf(all[0].Value, 1) {
		t.Errorf("failed point = %+v", all[0])
	}
	if base.Structure.A != config.DefaultA {
		t.Error("search modified the base config")
	}

	_, _, err = g.Search(context.Background(), base, func(context.Context, *config.Config) (float64, error) {
		return 0, fmt.Errorf("always")
	})
	if !errors.Is(err, ErrNoValidPoint) {
		t.Errorf("err = %v, want ErrNoValidPoint", err)
	}
}

func TestSearchNonFiniteValues(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = g.Search(context.Background(), config.DefaultConfig(), func(_ context.Context, cfg *config.Config) (float64, error) {
		if cfg.Structure.A == 2 {
			return math.NaN(), nil
		}
		return math.Inf(1), nil
	})
	if !errors.Is(err, ErrNoValidPoint) {
		t.Fatalf("err = %v, want ErrNoValidPoint", err)
	}
	if !strings.Contains(err.Error(), "no finite value in 3 points") {
		t.Errorf("err = %q", err)
	}
}

func TestSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{Linspace(5, 6, 8)}, WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Search(ctx, config.DefaultConfig(), func(context.Context, *config.Config) (float64, error) {
		return 1, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLatticeScan(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Structure.Temperature = 0
	g, err := NewGridSearch([]string{"a"}, [][]float64{Linspace(4.8, 5.8, 11)})
	if err != nil {
		t.Fatal(err)
	}
	best, all, err := g.Search(context.Background(), cfg, EnergyPerAtom(nil))
	if err != nil {
		t.Fatal(err)
	}
	a := best.Params["a"]
	if a <= 4.8 || a >= 5.8 {
		t.Errorf("equilibrium lattice constant %g is at the edge of the scan", a)
	}
	if best.Value >= 0 {
		t.Errorf("cohesive energy %g should be negative", best.Value)
	}
	if all[0].Value <= best.Value || all[len(all)-1].Value <= best.Value {
		t.Error("scan ends should lie above the minimum")
	}
}

func TestMetricObjective(t *testing.T) {
	cfg := config.GetPreset("dimer", "lj")
	cfg.MD.Steps = 50
	v, err := Metric("energy_drift", nil)(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if v < 0 || v > 1e-3 {
		t.Errorf("energy drift %g", v)
	}
	if _, err := Metric("nope", nil)(context.Background(), cfg); err == nil {
		t.Error("expected error for an unknown metric")
	}
}
