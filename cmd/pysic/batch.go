package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/san-kum/pysic/internal/automation"
	"github.com/san-kum/pysic/internal/optim"
	"github.com/san-kum/pysic/internal/storage"
	"github.com/san-kum/pysic/internal/utility/visualization"
)

func scanParameters(cmd *cobra.Command, args []string) error {
	if len(scanRanges) == 0 {
		return fmt.Errorf("at least one --range is needed")
	}
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, len(scanRanges))
	ranges := make([][]float64, len(scanRanges))
	for i, r := range scanRanges {
		if names[i], ranges[i], err = optim.ParseRange(r); err != nil {
			return err
		}
	}
	gs, err := optim.NewGridSearch(names, ranges, optim.WithWorkers(workers), optim.WithLogger(logger))
	if err != nil {
		return err
	}

	obj := optim.EnergyPerAtom(logger)
	if objective != "energy" {
		obj = optim.Metric(objective, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	best, points, err := gs.Search(ctx, cfg, obj)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	header := table.Row{}
	for _, n := range names {
		header = append(header, n)
	}
	t.AppendHeader(append(header, objective))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		row := table.Row{}
		for _, n := range names {
			row = append(row, fmt.Sprintf("%.4g", p.Params[n]))
		}
		if p.Err != nil {
			row = append(row, "failed")
		} else {
			row = append(row, fmt.Sprintf("%.6f", p.Value))
			values = append(values, p.Value)
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	if len(names) == 1 && len(values) > 1 {
		fmt.Println()
		fmt.Println(visualization.PlotSeries(values, height, width, objective+" vs "+names[0]))
	}

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s = %.4g", n, best.Params[n])
	}
	fmt.Printf("\nminimum %s = %.6f at %s\n", objective, best.Value, strings.Join(parts, ", "))
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	runner := automation.NewRunner(automation.WithStore(st), automation.WithLogger(logger))
	results, err := runner.RunScenario(ctx, sc)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Name", "Steps", "Drift", "Run ID"})
	for i, r := range results {
		t.AppendRow(table.Row{i + 1, r.Name, r.Result.StepsTaken, fmt.Sprintf("%.2e", r.Result.EnergyDrift), r.RunID})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return err
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := automation.NewRunner(automation.WithWorkers(workers), automation.WithLogger(logger))
	results, err := runner.RunEnsemble(ctx, cfg, metricName, trials)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Seed", metricName, "Stable"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Seed, fmt.Sprintf("%.6g", r.Value), r.Stable})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	s := automation.Stats(results)
	fmt.Printf("\n%s: %.6g ± %.2g over %d stable trials (%d unstable)\n",
		metricName, s.Mean, s.StdDev, s.Stable, s.Unstable)
	return nil
}
