package optim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/experiment"
)

// EnergyPerAtom returns the potential energy per atom of the structure
// described by cfg.
func EnergyPerAtom(logger *zap.Logger) Objective {
	registry := experiment.NewRegistry()
	return func(ctx context.Context, cfg *config.Config) (float64, error) {
		atoms, err := registry.BuildAtoms(cfg.Structure)
		if err != nil {
			return 0, err
		}
		calc, err := experiment.BuildCalculator(cfg, logger)
		if err != nil {
			return 0, err
		}
		res, err := calc.Calculate(ctx, atoms)
		if err != nil {
			return 0, err
		}
		return res.Energy / float64(atoms.Len()), nil
	}
}

// Metric runs the dynamics of cfg and returns one of its metrics. The name
// energy_drift reads the drift of the run itself.
func Metric(name string, logger *zap.Logger) Objective {
	return func(ctx context.Context, cfg *config.Config) (float64, error) {
		exp := experiment.New(cfg, experiment.WithLogger(logger))
		if err := exp.Setup(); err != nil {
			return 0, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return 0, err
		}
		if name == "energy_drift" {
			return res.EnergyDrift, nil
		}
		v, ok := res.Metrics[name]
		if !ok {
			return 0, fmt.Errorf("run has no metric %q", name)
		}
		return v, nil
	}
}
