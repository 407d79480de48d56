package visualization

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/pysic/internal/geometry"
)

// Point is a vertex of a polyline.
type Point struct{ X, Y float64 }

var speciesColors = map[string]string{
	"H":  "#ffffff",
	"C":  "#909090",
	"N":  "#3050f8",
	"O":  "#ff0d0d",
	"Na": "#ab5cf2",
	"Cl": "#1ff01f",
	"Si": "#f0c8a0",
	"Ar": "#80d1e3",
	"Au": "#ffd123",
}

const defaultSpeciesColor = "#ff1493"

func SpeciesColor(symbol string) string {
	if c, ok := speciesColors[symbol]; ok {
		return c
	}
	return defaultSpeciesColor
}

// AtomsToSVG projects the structure onto the xy plane. Atoms further along z
// are drawn first so nearer atoms cover them.
func AtomsToSVG(atoms *geometry.Atoms, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	if atoms == nil || atoms.Len() == 0 {
		sb.WriteString("</svg>")
		return sb.String()
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range atoms.Positions {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	rangeX, rangeY := maxX-minX, maxY-minY
	span := math.Max(rangeX, rangeY)
	if span == 0 {
		span = 1
	}
	pad := 0.1 * span
	scale := math.Min(float64(width), float64(height)) / (span + 2*pad)
	radius := math.Max(2, 0.08*span*scale)

	order := make([]int, atoms.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return atoms.Positions[order[a]][2] < atoms.Positions[order[b]][2]
	})

	for _, i := range order {
		p := atoms.Positions[i]
		cx := (p[0] - minX + pad + (span-rangeX)/2) * scale
		cy := float64(height) - (p[1]-minY+pad+(span-rangeY)/2)*scale
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="#000000" stroke-width="0.5"><title>%s %d</title></circle>
`, cx, cy, radius, SpeciesColor(atoms.Symbols[i]), atoms.Symbols[i], i)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as a polyline scaled to the canvas.
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// SeriesPoints pairs times with values for TrajectoryToSVG.
func SeriesPoints(times, values []float64) []Point {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{times[i], values[i]}
	}
	return pts
}
