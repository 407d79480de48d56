package md

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
	logger     *zap.Logger
}

type Option func(*Simulator)

func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(sys System, integrator Integrator, opts ...Option) *Simulator {
	s := &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, system %d", ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}
	sample := cfg.SampleEvery
	if sample < 1 {
		sample = 1
	}

	samples := cfg.Steps/sample + 2
	result := &Result{
		States:   make([]State, 0, samples),
		Times:    make([]float64, 0, samples),
		Energies: make([]float64, 0, samples),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	initialEnergy := s.record(result, x, t)
	lastRecorded := 0

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		newX := s.integrator.Step(s.sys, x, t, dt)

		if f, ok := s.sys.(Faulty); ok && f.Err() != nil {
			return result, &SimulationError{
				Step:    i,
				Time:    t,
				State:   x.Clone(),
				Wrapped: fmt.Errorf("%w: %w", ErrForceField, f.Err()),
			}
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			s.logger.Warn("simulation diverged", zap.Int("step", i), zap.Float64("time_fs", t))
			break
		}

		x = newX
		t += dt
		result.StepsTaken++

		if result.StepsTaken%sample == 0 {
			s.record(result, x, t)
			lastRecorded = result.StepsTaken
		}
	}
	finalEnergy := initialEnergy
	if lastRecorded != result.StepsTaken {
		finalEnergy = s.record(result, x, t)
	} else if n := len(result.Energies); n > 0 {
		finalEnergy = result.Energies[n-1]
	}

	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.logger.Debug("simulation finished",
		zap.Int("steps", result.StepsTaken), zap.Float64("energy_drift", result.EnergyDrift))

	return result, nil
}

// record stores a sample and returns its energy, zero for non-Hamiltonian
// systems.
func (s *Simulator) record(result *Result, x State, t float64) float64 {
	e := s.computeEnergy(x)
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	if _, ok := s.sys.(Hamiltonian); ok {
		result.Energies = append(result.Energies, e)
	}
	return e
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if ec, ok := s.sys.(Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}

// RunWithCallback steps until the callback returns false, the context ends
// or cfg.Steps steps have been taken.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	x := x0.Clone()
	t := 0.0

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, t) {
			return nil
		}

		x = s.integrator.Step(s.sys, x, t, cfg.Dt)
		t += cfg.Dt

		if f, ok := s.sys.(Faulty); ok && f.Err() != nil {
			return &SimulationError{Step: i, Time: t, State: x, Wrapped: fmt.Errorf("%w: %w", ErrForceField, f.Err())}
		}
		if cfg.ValidateState && !x.IsValid() {
			return fmt.Errorf("%w at t=%.4f fs", ErrInvalidState, t)
		}
	}

	return nil
}
