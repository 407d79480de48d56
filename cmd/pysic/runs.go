package main

import (
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/pysic/internal/analysis"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/md"
	"github.com/san-kum/pysic/internal/storage"
	"github.com/san-kum/pysic/internal/utility/visualization"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Time", "Atoms", "Dt (fs)", "Steps", "Integ", "Drift"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Atoms,
			run.Dt,
			fmt.Sprintf("%d/%d", run.StepsTaken, run.Steps),
			run.Integrator,
			fmt.Sprintf("%.2e", run.EnergyDrift),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	times, energies, err := st.LoadEnergies(runID)
	if err != nil {
		return err
	}
	if len(energies) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s, %d atoms\n", meta.Name, meta.Atoms)
	fmt.Printf("samples: %d over %.1f fs\n\n", len(energies), times[len(times)-1])

	fmt.Println(visualization.PlotSeries(energies, height, width, "total energy (eV) vs sample"))
	fmt.Println()

	frames, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(frames) > 1 {
		temps := make([]float64, len(frames))
		for k, f := range frames {
			temps[k] = frameTemperature(f)
		}
		fmt.Println(asciigraph.Plot(temps,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption("temperature (K) vs frame"),
		))
		fmt.Println()
	}

	if svgOut != "" && len(frames) > 0 {
		last := frames[len(frames)-1]
		atoms, err := geometry.NewAtoms(last.Symbols, last.Positions, last.Cell)
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgOut, []byte(visualization.AtomsToSVG(atoms, 600, 600)), 0644); err != nil {
			return err
		}
		fmt.Printf("final frame written to %s\n", svgOut)
	}
	return nil
}

// frameTemperature uses tabulated masses and 3N degrees of freedom.
func frameTemperature(f storage.Frame) float64 {
	if len(f.Velocities) == 0 {
		return 0
	}
	ke := 0.0
	for i, v := range f.Velocities {
		m, _ := geometry.AtomicMass(f.Symbols[i])
		ke += 0.5 * m * v.Dot(v) * geometry.KineticUnit
	}
	return 2 * ke / (3 * float64(len(f.Velocities)) * geometry.Boltzmann)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("need at least 4 frames, run has %d", len(frames))
	}

	masses := make([]float64, len(frames[0].Symbols))
	for i, sym := range frames[0].Symbols {
		m, ok := geometry.AtomicMass(sym)
		if !ok {
			return fmt.Errorf("no mass for element %q", sym)
		}
		masses[i] = m
	}
	states := make([]md.State, len(frames))
	for k, f := range frames {
		states[k] = storage.FrameState(f)
	}
	spacing := frames[1].Time - frames[0].Time

	spec, err := analysis.VibrationalDOS(states, masses, spacing, maxLag)
	if err != nil {
		return err
	}
	logger.Debug("vibrational density of states",
		zap.String("run", meta.ID), zap.Int("frames", len(frames)), zap.Float64("spacing_fs", spacing))

	fmt.Printf("vibrational density of states: %s\n", meta.ID)
	fmt.Printf("system: %s, frame spacing %.3g fs\n\n", meta.Name, spacing)

	fmt.Println(asciigraph.Plot(spec.Intensities,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("VDOS, 0 to %.1f THz", spec.Frequencies[len(spec.Frequencies)-1])),
	))
	fmt.Println()

	peak := spec.Peak()
	fmt.Printf("dominant frequency: %.3f THz\n", peak)
	if peak > 0 {
		fmt.Printf("period: %.1f fs\n", 1000/peak)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outFile == "" {
		return storage.ExportJSON(os.Stdout, data)
	}
	if err := storage.ExportJSONFile(outFile, data); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outFile)
	return nil
}
