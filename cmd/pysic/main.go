package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/pysic/internal/version"
)

var (
	dataDir string
	verbose bool
	logger  = zap.NewNop()

	// Structure and dynamics
	configFile  string
	preset      string
	dt          float64
	steps       int
	sampleEvery int
	integrator  string
	temperature float64
	seed        int64
	thermostat  string
	target      float64
	tau         float64

	// Curves and plots
	curveParams []float64
	curveCutoff float64
	rMin        float64
	rMax        float64
	samples     int
	height      int
	width       int
	svgOut      string

	// Analysis
	maxLag int

	// Scans and batches
	scanRanges []string
	objective  string
	workers    int
	trials     int
	metricName string

	outFile   string
	frameRate int
	plain     bool
)

// main registers the commands and runs the root command, exiting with status
// 1 when it fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "pysic",
		Short:         "interatomic potentials and molecular dynamics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pysic", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "run molecular dynamics and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addStructureFlags(runCmd)
	addDynamicsFlags(runCmd)

	energyCmd := &cobra.Command{
		Use:   "energy [system]",
		Short: "evaluate energy, forces and stress of a structure",
		Args:  cobra.MaximumNArgs(1),
		RunE:  evaluateEnergy,
	}
	addStructureFlags(energyCmd)

	liveCmd := &cobra.Command{
		Use:   "live [system]",
		Short: "run molecular dynamics with a live terminal view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addStructureFlags(liveCmd)
	addDynamicsFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 15, "frame rate of the plain renderer")
	liveCmd.Flags().BoolVar(&plain, "plain", false, "redraw in place instead of the interactive view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&height, "height", 12, "plot height")
	plotCmd.Flags().IntVar(&width, "width", 80, "plot width")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "also write the final frame as svg")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "vibrational density of states of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&maxLag, "max-lag", 0, "autocorrelation lags (default half the frames)")
	analyzeCmd.Flags().IntVar(&height, "height", 12, "plot height")
	analyzeCmd.Flags().IntVar(&width, "width", 80, "plot width")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	potentialsCmd := &cobra.Command{
		Use:   "potentials",
		Short: "list potentials, bond order factors and summation methods",
		RunE:  listPotentials,
	}

	curveCmd := &cobra.Command{
		Use:   "curve [kind]",
		Short: "plot the radial curve of a pair potential",
		Args:  cobra.ExactArgs(1),
		RunE:  plotCurve,
	}
	curveCmd.Flags().Float64SliceVarP(&curveParams, "params", "p", nil, "potential parameters")
	curveCmd.Flags().Float64Var(&curveCutoff, "cutoff", 10, "cutoff (Å)")
	curveCmd.Flags().Float64Var(&rMin, "rmin", 0.8, "first distance (Å)")
	curveCmd.Flags().Float64Var(&rMax, "rmax", 8, "last distance (Å)")
	curveCmd.Flags().IntVar(&samples, "samples", 200, "number of samples")
	curveCmd.Flags().IntVar(&height, "height", 12, "plot height")
	curveCmd.Flags().IntVar(&width, "width", 80, "plot width")

	presetsCmd := &cobra.Command{
		Use:   "presets [system]",
		Short: "list systems or the presets of a system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [system]",
		Short: "evaluate a grid of parameters and report the minimum",
		Args:  cobra.MaximumNArgs(1),
		RunE:  scanParameters,
	}
	addStructureFlags(scanCmd)
	scanCmd.Flags().StringArrayVarP(&scanRanges, "range", "r", nil, "name=from:to:n or name=v1,v2 (repeatable)")
	scanCmd.Flags().StringVar(&objective, "objective", "energy", "energy per atom, or an md metric name")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "parallel evaluations (default all cpus)")
	scanCmd.Flags().IntVar(&height, "height", 12, "plot height")
	scanCmd.Flags().IntVar(&width, "width", 80, "plot width")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run the steps of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [system]",
		Short: "repeat a run over velocity seeds",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addStructureFlags(ensembleCmd)
	addDynamicsFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&trials, "trials", 8, "number of seeds")
	ensembleCmd.Flags().StringVar(&metricName, "metric", "temperature", "metric to collect")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "parallel trials (default all cpus)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("pysic", version.Get())
		},
	}

	rootCmd.AddCommand(runCmd, energyCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCmd,
		potentialsCmd, curveCmd, presetsCmd, scanCmd, batchCmd, ensembleCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addStructureFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset of the system")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "initial temperature (K)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for the initial velocities")
}

func addDynamicsFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (fs)")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "steps between stored frames")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator")
	cmd.Flags().StringVar(&thermostat, "thermostat", "", "thermostat: none, berendsen, rescale or pid")
	cmd.Flags().Float64Var(&target, "target", 0, "thermostat target temperature (K)")
	cmd.Flags().Float64Var(&tau, "tau", 100, "berendsen coupling time (fs)")
}

func setupLogger() error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	logger = l
	return nil
}
