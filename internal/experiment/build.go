package experiment

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/san-kum/pysic/internal/calculator"
	"github.com/san-kum/pysic/internal/charges/relaxation"
	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/interactions/coulomb"
	"github.com/san-kum/pysic/internal/interactions/local"
)

// BuildAtoms creates the initial structure and draws Maxwell-Boltzmann
// velocities when a temperature is set.
func (r *Registry) BuildAtoms(sc config.StructureConfig) (*geometry.Atoms, error) {
	if len(sc.Symbols) == 0 {
		return nil, fmt.Errorf("structure has no symbols")
	}
	build, err := r.GetLattice(sc.Lattice)
	if err != nil {
		return nil, err
	}
	atoms, err := build(sc.Symbols, sc.A, sc.Repeat)
	if err != nil {
		return nil, fmt.Errorf("build %s lattice: %w", sc.Lattice, err)
	}
	if sc.Open {
		atoms.Cell.PBC = [3]bool{}
	}
	if sc.Temperature > 0 {
		geometry.RandomizeMomenta(atoms, sc.Temperature, rand.New(rand.NewSource(sc.Seed)))
	}
	return atoms, nil
}

// BuildCalculator assembles a Pysic calculator from the interaction blocks
// of cfg.
func BuildCalculator(cfg *config.Config, logger *zap.Logger) (*calculator.Pysic, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	coordinators := make(map[string]*bondorder.Coordinator, len(cfg.BondOrders))
	for _, bc := range cfg.BondOrders {
		coord, err := buildCoordinator(bc)
		if err != nil {
			return nil, fmt.Errorf("bond order %q: %w", bc.Name, err)
		}
		coordinators[bc.Name] = coord
	}

	calc := calculator.New(calculator.WithLogger(logger))
	for i, pc := range cfg.Potentials {
		opts := []local.Option{
			local.WithParameters(pc.Parameters...),
			local.WithCutoff(pc.Cutoff),
			local.WithCutoffMargin(pc.CutoffMargin),
		}
		if len(pc.Symbols) > 0 {
			opts = append(opts, local.WithSymbols(pc.Symbols...))
		}
		if len(pc.Tags) > 0 {
			opts = append(opts, local.WithTags(pc.Tags...))
		}
		if pc.BondOrder != "" {
			coord, ok := coordinators[pc.BondOrder]
			if !ok {
				return nil, fmt.Errorf("potential %d (%s): unknown bond order %q", i, pc.Kind, pc.BondOrder)
			}
			opts = append(opts, local.WithCoordinator(coord))
		}
		pot, err := local.NewPotential(pc.Kind, opts...)
		if err != nil {
			return nil, fmt.Errorf("potential %d: %w", i, err)
		}
		if err := calc.AddPotential(pot); err != nil {
			return nil, err
		}
	}

	if cc := cfg.Coulomb; cc != nil {
		var opts []coulomb.Option
		if len(cc.Scaling) > 0 {
			opts = append(opts, coulomb.WithScaling(cc.Scaling))
		}
		sum, err := coulomb.NewCoulombSummation(cc.Method, cc.Parameters, opts...)
		if err != nil {
			return nil, fmt.Errorf("coulomb: %w", err)
		}
		calc.SetCoulombSummation(sum)
	}

	if rc := cfg.Relaxation; rc != nil {
		opts := []relaxation.Option{relaxation.WithLogger(logger)}
		if rc.Strict {
			opts = append(opts, relaxation.WithStrictConvergence())
		}
		rel, err := relaxation.NewChargeRelaxation(rc.Method, rc.Parameters, opts...)
		if err != nil {
			return nil, fmt.Errorf("charge relaxation: %w", err)
		}
		calc.SetChargeRelaxation(rel)
	}

	return calc, nil
}

func buildCoordinator(bc config.BondOrderConfig) (*bondorder.Coordinator, error) {
	params := make([]*bondorder.BondOrderParameters, 0, len(bc.Factors))
	for _, fc := range bc.Factors {
		opts := []bondorder.Option{
			bondorder.WithParameters(fc.Parameters...),
			bondorder.WithCutoff(fc.Cutoff),
			bondorder.WithCutoffMargin(fc.CutoffMargin),
		}
		if len(fc.Symbols) > 0 {
			opts = append(opts, bondorder.WithSymbols(fc.Symbols...))
		}
		p, err := bondorder.NewBondOrderParameters(fc.Kind, opts...)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return bondorder.NewCoordinator(params...)
}
