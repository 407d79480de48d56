package geometry

import "math"

// Cell is a simulation box spanned by three row vectors. Periodicity is set
// per axis; a zero cell is treated as open space.
type Cell struct {
	Vectors [3]Vec3
	PBC     [3]bool
}

// OrthorhombicCell returns a box with the given edge lengths, periodic in all
// directions.
func OrthorhombicCell(a, b, c float64) Cell {
	return Cell{
		Vectors: [3]Vec3{{a, 0, 0}, {0, b, 0}, {0, 0, c}},
		PBC:     [3]bool{true, true, true},
	}
}

func (c Cell) Volume() float64 {
	return math.Abs(c.Vectors[0].Dot(c.Vectors[1].Cross(c.Vectors[2])))
}

func (c Cell) AnyPeriodic() bool   { return c.PBC[0] || c.PBC[1] || c.PBC[2] }
func (c Cell) FullyPeriodic() bool { return c.PBC[0] && c.PBC[1] && c.PBC[2] }

// Reciprocal returns the reciprocal vectors b_i with a_i·b_j = δ_ij (no 2π).
func (c Cell) Reciprocal() [3]Vec3 {
	a0, a1, a2 := c.Vectors[0], c.Vectors[1], c.Vectors[2]
	det := a0.Dot(a1.Cross(a2))
	if det == 0 {
		return [3]Vec3{}
	}
	inv := 1 / det
	return [3]Vec3{
		a1.Cross(a2).Scale(inv),
		a2.Cross(a0).Scale(inv),
		a0.Cross(a1).Scale(inv),
	}
}

// PlaneSpacing is the distance between lattice planes normal to axis.
func (c Cell) PlaneSpacing(axis int) float64 {
	b := c.Reciprocal()[axis]
	n := b.Norm()
	if n == 0 {
		return 0
	}
	return 1 / n
}

func (c Cell) ToFractional(r Vec3) Vec3 {
	b := c.Reciprocal()
	return Vec3{r.Dot(b[0]), r.Dot(b[1]), r.Dot(b[2])}
}

func (c Cell) ToCartesian(f Vec3) Vec3 {
	return c.Vectors[0].Scale(f[0]).Add(c.Vectors[1].Scale(f[1])).Add(c.Vectors[2].Scale(f[2]))
}

// Shift converts an integer image offset to a Cartesian translation.
func (c Cell) Shift(n [3]int) Vec3 {
	return c.ToCartesian(Vec3{float64(n[0]), float64(n[1]), float64(n[2])})
}

// Wrap maps r back into the cell along periodic axes.
func (c Cell) Wrap(r Vec3) Vec3 {
	if !c.AnyPeriodic() || c.Volume() == 0 {
		return r
	}
	f := c.ToFractional(r)
	for i := range f {
		if c.PBC[i] {
			f[i] -= math.Floor(f[i])
		}
	}
	return c.ToCartesian(f)
}

// MinimumImage reduces a displacement to its nearest periodic image. It is
// exact for orthorhombic cells.
func (c Cell) MinimumImage(d Vec3) Vec3 {
	if !c.AnyPeriodic() || c.Volume() == 0 {
		return d
	}
	f := c.ToFractional(d)
	for i := range f {
		if c.PBC[i] {
			f[i] -= math.Round(f[i])
		}
	}
	return c.ToCartesian(f)
}

func (c Cell) Equal(o Cell) bool {
	return c.Vectors == o.Vectors && c.PBC == o.PBC
}
