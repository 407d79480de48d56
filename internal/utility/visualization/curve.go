// Package visualization renders potentials, structures and energy traces for
// the terminal and as SVG.
package visualization

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pysic/internal/interactions/local"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// Curve is a pair potential sampled on a uniform grid.
type Curve struct {
	R      []float64
	Energy []float64
	Force  []float64
}

// PotentialCurve samples V(r) and -dV/dr of a pair term on [rMin, rMax].
func PotentialCurve(term local.Term, rMin, rMax float64, samples int) (Curve, error) {
	if term.NumberOfTargets() != 2 {
		return Curve{}, pysicerr.New("PotentialCurve", term.Kind(), pysicerr.ErrInvalidPotential,
			"only pair potentials have a radial curve")
	}
	if !(rMin > 0) || !(rMax > rMin) || samples < 2 {
		return Curve{}, pysicerr.New("PotentialCurve", term.Kind(), pysicerr.ErrInvalidParameters,
			"need 0 < rMin < rMax and at least 2 samples, got [%g, %g] with %d", rMin, rMax, samples)
	}

	c := Curve{
		R:      make([]float64, samples),
		Energy: make([]float64, samples),
		Force:  make([]float64, samples),
	}
	step := (rMax - rMin) / float64(samples-1)
	for i := range c.R {
		r := rMin + float64(i)*step
		v, dv := term.Pair(r)
		c.R[i], c.Energy[i], c.Force[i] = r, v, -dv
	}
	return c, nil
}

// PlotPotential draws the energy of a sampled curve with asciigraph.
func PlotPotential(c Curve, height, width int, caption string) string {
	if len(c.Energy) == 0 {
		return ""
	}
	if caption == "" {
		caption = fmt.Sprintf("V(r), r in [%.2f, %.2f] Å", c.R[0], c.R[len(c.R)-1])
	}
	return asciigraph.Plot(c.Energy,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotSeries draws any trace, e.g. total energy against time.
func PlotSeries(values []float64, height, width int, caption string) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
