package visualization

import (
	"strings"

	"github.com/san-kum/pysic/internal/geometry"
)

// Braille patterns hold 2x4 dots per cell:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Braille pixel grid of Width x Height characters, i.e.
// (2·Width) x (4·Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y) in dot coordinates. Out of range dots are
// ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawAtoms projects positions onto the xy plane. Periodic structures are
// scaled to their cell; open ones to their bounding box.
func (c *Canvas) DrawAtoms(atoms *geometry.Atoms) {
	if atoms == nil || atoms.Len() == 0 {
		return
	}
	w, h := float64(2*c.Width-1), float64(4*c.Height-1)

	var minX, minY, spanX, spanY float64
	if atoms.Cell.AnyPeriodic() && atoms.Cell.Volume() > 0 {
		spanX, spanY = atoms.Cell.Vectors[0][0], atoms.Cell.Vectors[1][1]
	} else {
		minX, minY = atoms.Positions[0][0], atoms.Positions[0][1]
		maxX, maxY := minX, minY
		for _, p := range atoms.Positions {
			minX, maxX = min(minX, p[0]), max(maxX, p[0])
			minY, maxY = min(minY, p[1]), max(maxY, p[1])
		}
		spanX, spanY = maxX-minX, maxY-minY
	}
	if spanX <= 0 {
		spanX = 1
	}
	if spanY <= 0 {
		spanY = 1
	}

	for i := range atoms.Positions {
		p := atoms.Positions[i]
		if atoms.Cell.AnyPeriodic() {
			p = atoms.Cell.Wrap(p)
		}
		x := int((p[0] - minX) / spanX * w)
		y := int(h - (p[1]-minY)/spanY*h)
		c.Set(x, y)
		c.Set(x+1, y)
		c.Set(x, y+1)
		c.Set(x+1, y+1)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
