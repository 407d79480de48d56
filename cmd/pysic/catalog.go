package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/san-kum/pysic/internal/config"
	"github.com/san-kum/pysic/internal/core"
	"github.com/san-kum/pysic/internal/interactions/local"
	"github.com/san-kum/pysic/internal/utility/visualization"
)

func listPotentials(cmd *cobra.Command, args []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("potentials")
	t.AppendHeader(table.Row{"Name", "Targets", "Parameters", "Description"})
	for _, name := range core.ListValidPotentials() {
		d, err := core.Potential(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{d.Name, d.Targets, strings.Join(d.Parameters, ", "), d.Description})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("bond order factors")
	t.AppendHeader(table.Row{"Name", "Targets", "Parameters", "Description"})
	for _, name := range core.ListValidBondOrderFactors() {
		d, err := core.BondOrderFactor(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{d.Name, d.Targets, strings.Join(d.Parameters, ", "), d.Description})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("coulomb summation and charge relaxation")
	t.AppendHeader(table.Row{"Method", "Kind", "Parameters", "Description"})
	for _, name := range core.ListValidCoulombMethods() {
		d, err := core.CoulombMethod(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{d.Name, "coulomb", strings.Join(d.Parameters, ", "), d.Description})
	}
	for _, name := range core.ListValidChargeRelaxationMethods() {
		d, err := core.ChargeRelaxationMethod(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{d.Name, "relaxation", strings.Join(d.Parameters, ", "), d.Description})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func plotCurve(cmd *cobra.Command, args []string) error {
	kind := args[0]
	desc, err := core.Potential(kind)
	if err != nil {
		return err
	}
	if len(curveParams) != len(desc.Parameters) {
		return fmt.Errorf("%s takes parameters %v, got %d values", kind, desc.Parameters, len(curveParams))
	}

	p, err := local.NewPotential(kind, local.WithParameters(curveParams...), local.WithCutoff(curveCutoff))
	if err != nil {
		return err
	}
	curve, err := visualization.PotentialCurve(p, rMin, rMax, samples)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", desc.Name, desc.Formula)
	for i, name := range desc.Parameters {
		fmt.Printf("  %s = %g\n", name, curveParams[i])
	}
	fmt.Println()
	fmt.Println(visualization.PlotPotential(curve, height, width, ""))

	lowest := 0
	for i, e := range curve.Energy {
		if e < curve.Energy[lowest] {
			lowest = i
		}
	}
	fmt.Printf("\nminimum %.6f eV at r = %.3f Å\n", curve.Energy[lowest], curve.R[lowest])
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("systems:")
		for _, s := range config.ListSystems() {
			fmt.Printf("  %s (%s)\n", s, strings.Join(config.ListPresets(s), ", "))
		}
		return nil
	}

	presets := config.ListPresets(args[0])
	if len(presets) == 0 {
		fmt.Printf("no presets for system: %s\n", args[0])
		return nil
	}
	fmt.Printf("presets for %s:\n", args[0])
	for _, p := range presets {
		cfg := config.GetPreset(args[0], p)
		fmt.Printf("  %-10s %s %v, %d steps of %g fs\n",
			p, cfg.Structure.Lattice, cfg.Structure.Symbols, cfg.MD.Steps, cfg.MD.Dt)
	}
	return nil
}
