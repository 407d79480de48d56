package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/pysic/internal/calculator"
	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/md"
)

// Experiment is a configured molecular dynamics run: structure, calculator,
// integrator and metrics.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *zap.Logger
	atoms     *geometry.Atoms
	calc      *calculator.Pysic
	system    *md.AtomsSystem
	simulator *md.Simulator
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) {
		if r != nil {
			e.registry = r
		}
	}
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup builds the atoms, the calculator and the simulator with the default
// metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	atoms, err := e.registry.BuildAtoms(e.cfg.Structure)
	if err != nil {
		return err
	}
	calc, err := BuildCalculator(e.cfg, e.logger)
	if err != nil {
		return err
	}
	integ, err := e.registry.BuildIntegrator(e.cfg.MD, atoms.Masses)
	if err != nil {
		return err
	}
	sys, err := md.NewAtomsSystem(atoms, calc)
	if err != nil {
		return err
	}

	e.atoms, e.calc, e.system = atoms, calc, sys
	e.simulator = md.New(sys, integ, md.WithLogger(e.logger))
	for _, m := range e.registry.DefaultMetrics(sys) {
		e.simulator.AddMetric(m)
	}
	e.logger.Info("experiment ready",
		zap.String("name", e.cfg.Name),
		zap.Int("atoms", atoms.Len()),
		zap.String("integrator", e.cfg.MD.Integrator))
	return nil
}

// Run integrates cfg.MD.Steps steps. The atoms end in the final state.
func (e *Experiment) Run(ctx context.Context) (*md.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	x0 := e.system.State()
	res, err := e.simulator.Run(ctx, x0, e.MDConfig())
	if res != nil && len(res.States) > 0 {
		e.system.Apply(res.States[len(res.States)-1])
	}
	return res, err
}

func (e *Experiment) MDConfig() md.Config {
	return md.Config{
		Dt:            e.cfg.MD.Dt,
		Steps:         e.cfg.MD.Steps,
		SampleEvery:   e.cfg.MD.SampleEvery,
		ValidateState: true,
	}
}

func (e *Experiment) Config() *config.Config        { return e.cfg }
func (e *Experiment) Atoms() *geometry.Atoms        { return e.atoms }
func (e *Experiment) Calculator() *calculator.Pysic { return e.calc }
func (e *Experiment) System() *md.AtomsSystem       { return e.system }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *md.Simulator {
	return e.simulator
}
