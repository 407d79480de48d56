package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/experiment"
	"github.com/san-kum/pysic/internal/storage"
	"github.com/san-kum/pysic/internal/tui"
)

// resolveConfig picks the config file, then the preset of the named system,
// then the default argon crystal. Flags that were set override the result.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	case len(args) == 1:
		system, variant := args[0], preset
		if variant == "" {
			variants := config.ListPresets(system)
			if len(variants) == 0 {
				return nil, fmt.Errorf("unknown system: %s (available: %v)", system, config.ListSystems())
			}
			variant = variants[0]
		}
		p := config.GetPreset(system, variant)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", variant, config.ListPresets(system))
		}
		cfg = p
	}

	flags := cmd.Flags()
	if flags.Changed("temperature") {
		cfg.Structure.Temperature = temperature
	}
	if flags.Changed("seed") {
		cfg.Structure.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.MD.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.MD.Steps = steps
	}
	if flags.Changed("sample-every") {
		cfg.MD.SampleEvery = sampleEvery
	}
	if flags.Changed("integrator") {
		cfg.MD.Integrator = integrator
	}
	if flags.Changed("thermostat") {
		cfg.MD.Thermostat = &config.ThermostatConfig{Kind: thermostat, Target: target, Tau: tau, Every: 1}
	} else if th := cfg.MD.Thermostat; th != nil {
		if flags.Changed("target") {
			th.Target = target
		}
		if flags.Changed("tau") {
			th.Tau = tau
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d atoms, %d steps of %.3g fs (%s)\n",
		cfg.Name, exp.Atoms().Len(), cfg.MD.Steps, cfg.MD.Dt, cfg.MD.Integrator)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		if result == nil || !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn("run interrupted, saving partial trajectory", zap.Int("steps", result.StepsTaken))
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.Run{Config: cfg, Atoms: exp.Atoms(), Result: result})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d, frames: %d\n", result.StepsTaken, len(result.States))
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func evaluateEnergy(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	atoms, err := experiment.NewRegistry().BuildAtoms(cfg.Structure)
	if err != nil {
		return err
	}
	calc, err := experiment.BuildCalculator(cfg, logger)
	if err != nil {
		return err
	}

	res, err := calc.Calculate(cmd.Context(), atoms)
	if err != nil {
		return err
	}

	fmt.Printf("system: %s (%d atoms)\n", cfg.Name, atoms.Len())
	fmt.Printf("potential energy: %.6f eV (%.6f eV/atom)\n", res.Energy, res.Energy/float64(atoms.Len()))
	fmt.Printf("kinetic energy: %.6f eV (T = %.2f K)\n", atoms.KineticEnergy(), atoms.Temperature())
	if res.HasStress {
		s := res.Stress
		fmt.Printf("stress (eV/Å³): xx %.3e yy %.3e zz %.3e yz %.3e xz %.3e xy %.3e\n",
			s[0], s[1], s[2], s[3], s[4], s[5])
	}
	fmt.Println()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Symbol", "Fx", "Fy", "Fz", "Charge", "Chi"})
	for i, f := range res.Forces {
		chi := 0.0
		if i < len(res.Electronegativities) {
			chi = res.Electronegativities[i]
		}
		t.AppendRow(table.Row{i, atoms.Symbols[i],
			fmt.Sprintf("%.5f", f[0]), fmt.Sprintf("%.5f", f[1]), fmt.Sprintf("%.5f", f[2]),
			fmt.Sprintf("%.4f", atoms.Charges[i]), fmt.Sprintf("%.4f", chi)})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}
	if !plain {
		return tui.RunLive(exp)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := tui.NewLiveRenderer(cfg.Name, exp.System(), os.Stdout, frameRate)
	exp.GetSimulator().AddObserver(r)
	r.Start()
	defer r.Stop()

	_, err = exp.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
