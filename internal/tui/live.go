package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/pysic/internal/md"
	"github.com/san-kum/pysic/internal/utility/visualization"
)

const (
	width       = 35
	height      = 12
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer is an md.Observer that redraws the structure at most
// frameRate times per second.
type LiveRenderer struct {
	name      string
	sys       *md.AtomsSystem
	out       io.Writer
	frameRate int
	lastFrame time.Time
	canvas    *visualization.Canvas
	energies  []float64
}

func NewLiveRenderer(name string, sys *md.AtomsSystem, out io.Writer, frameRate int) *LiveRenderer {
	if frameRate < 1 {
		frameRate = 1
	}
	return &LiveRenderer{
		name:      name,
		sys:       sys,
		out:       out,
		frameRate: frameRate,
		canvas:    visualization.NewCanvas(width, height),
		energies:  make([]float64, 0, 60),
	}
}

func (r *LiveRenderer) OnStep(x md.State, t float64) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.sys.Apply(x)
	r.energies = append(r.energies, r.sys.Energy(x))
	if len(r.energies) > 60 {
		r.energies = r.energies[1:]
	}

	r.canvas.Clear()
	r.canvas.DrawAtoms(r.sys.Atoms())
	r.render(t)
}

func (r *LiveRenderer) render(t float64) {
	var b strings.Builder
	atoms := r.sys.Atoms()
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  %s  t=%.1f fs  N=%d\n", r.name, t, atoms.Len())
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, line := range strings.Split(strings.TrimRight(r.canvas.String(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	e := 0.0
	if n := len(r.energies); n > 0 {
		e = r.energies[n-1]
	}
	fmt.Fprintf(&b, "  E=%.6f eV  T=%.1f K\n", e, atoms.Temperature())
	b.WriteString("  " + visualization.Sparkline(r.energies, width) + "\n")

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
