// Package automation runs scripted sequences of simulations and ensembles of
// one simulation over many velocity seeds.
package automation

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/experiment"
	"github.com/san-kum/pysic/internal/md"
	"github.com/san-kum/pysic/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep names its starting point either by config file or by system
// and preset. Nonzero overrides replace the corresponding settings.
type ScenarioStep struct {
	Config      string  `yaml:"config"`
	System      string  `yaml:"system"`
	Preset      string  `yaml:"preset"`
	Integrator  string  `yaml:"integrator"`
	Dt          float64 `yaml:"dt"`
	Steps       int     `yaml:"steps"`
	Temperature float64 `yaml:"temperature"`
	Seed        int64   `yaml:"seed"`
	SaveAs      string  `yaml:"save_as"`
}

// StepResult is the outcome of one scenario step. RunID is empty unless the
// step was stored.
type StepResult struct {
	Name   string
	RunID  string
	Result *md.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds the configuration of a step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.System != "":
		variant := s.Preset
		if variant == "" {
			if variants := config.ListPresets(s.System); len(variants) > 0 {
				variant = variants[0]
			}
		}
		cfg = config.GetPreset(s.System, variant)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", s.System, variant)
		}
	default:
		return nil, fmt.Errorf("step needs a config file or a system")
	}

	if s.Integrator != "" {
		cfg.MD.Integrator = s.Integrator
	}
	if s.Dt != 0 {
		cfg.MD.Dt = s.Dt
	}
	if s.Steps != 0 {
		cfg.MD.Steps = s.Steps
	}
	if s.Temperature != 0 {
		cfg.Structure.Temperature = s.Temperature
	}
	if s.Seed != 0 {
		cfg.Structure.Seed = s.Seed
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, cfg.Validate()
}

type Runner struct {
	store   *storage.Store
	workers int
	logger  *zap.Logger
}

type Option func(*Runner)

// WithStore saves the steps that have save_as set.
func WithStore(s *storage.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithWorkers bounds the number of concurrent ensemble trials.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{workers: runtime.NumCPU(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScenario executes all steps in order and stops at the first failure,
// returning the steps that completed.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		r.logger.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("name", cfg.Name))

		exp := experiment.New(cfg, experiment.WithLogger(r.logger))
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: cfg.Name, Result: result}
		if step.SaveAs != "" && r.store != nil {
			id, err := r.store.Save(storage.Run{Config: cfg, Atoms: exp.Atoms(), Result: result})
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}

// EnsembleResult holds one trial of an ensemble.
type EnsembleResult struct {
	Seed   int64
	Value  float64
	Stable bool
}

type EnsembleStats struct {
	Mean     float64
	StdDev   float64
	Stable   int
	Unstable int
}

// RunEnsemble repeats cfg with seeds seed0, seed0+1, ... and records metric
// (or energy_drift) of every trial. Trials run concurrently, at most workers
// at a time, and results keep seed order. A trial is unstable when it
// diverged or the force field failed; such trials do not abort the ensemble.
func (r *Runner) RunEnsemble(ctx context.Context, cfg *config.Config, metric string, trials int) ([]EnsembleResult, error) {
	if trials < 1 {
		return nil, fmt.Errorf("need at least one trial, got %d", trials)
	}
	results := make([]EnsembleResult, trials)
	seed0 := cfg.Structure.Seed

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.workers)
	for trial := range trials {
		c := cfg.Clone()
		c.Structure.Seed = seed0 + int64(trial)
		eg.Go(func() error {
			er, err := r.trial(ctx, c, metric)
			results[trial] = er
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) trial(ctx context.Context, c *config.Config, metric string) (EnsembleResult, error) {
	er := EnsembleResult{Seed: c.Structure.Seed}
	if err := ctx.Err(); err != nil {
		return er, err
	}
	exp := experiment.New(c, experiment.WithLogger(r.logger))
	if err := exp.Setup(); err != nil {
		return er, err
	}
	result, err := exp.Run(ctx)
	if ctx.Err() != nil {
		return er, ctx.Err()
	}
	if err != nil {
		r.logger.Warn("ensemble trial failed", zap.Int64("seed", er.Seed), zap.Error(err))
		return er, nil
	}
	if er.Stable = len(result.Errors) == 0; !er.Stable {
		return er, nil
	}
	if metric == "energy_drift" {
		er.Value = result.EnergyDrift
		return er, nil
	}
	v, ok := result.Metrics[metric]
	if !ok {
		return er, fmt.Errorf("run has no metric %q", metric)
	}
	er.Value = v
	return er, nil
}

// Stats summarizes the stable trials of an ensemble.
func Stats(results []EnsembleResult) EnsembleStats {
	var s EnsembleStats
	sum, sumSq := 0.0, 0.0
	for _, r := range results {
		if !r.Stable {
			s.Unstable++
			continue
		}
		s.Stable++
		sum += r.Value
		sumSq += r.Value * r.Value
	}
	if s.Stable > 0 {
		n := float64(s.Stable)
		s.Mean = sum / n
		s.StdDev = math.Sqrt(math.Max(0, sumSq/n-s.Mean*s.Mean))
	}
	return s
}
