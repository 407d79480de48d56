// Package neighbors implements FastNeighborList, a cell-binned Verlet list
// for periodic and open atomic systems.
//
// Atom i and the image of atom j shifted by a lattice translation are
// neighbours when their separation is below radii[i] + radii[j] + skin. The
// list is only rebuilt once an atom has moved more than skin/2, so the same
// list can serve many force evaluations along an MD trajectory.
package neighbors

import (
	"math"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/md"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

type FastNeighborList struct {
	radii []float64
	skin  float64

	neighbors [][]int
	shifts    [][]geometry.Vec3
	images    [][][3]int

	lastPositions []geometry.Vec3
	lastCell      geometry.Cell
	built         bool
	revision      int
}

// New creates a list for len(radii) atoms.
func New(radii []float64, skin float64) (*FastNeighborList, error) {
	if skin < 0 {
		return nil, pysicerr.New("neighbors.New", "", pysicerr.ErrInvalidParameters, "negative skin %g", skin)
	}
	for i, r := range radii {
		if r < 0 || math.IsNaN(r) {
			return nil, pysicerr.New("neighbors.New", "", pysicerr.ErrInvalidParameters, "radius %d is %g", i, r)
		}
	}
	return &FastNeighborList{
		radii: append([]float64(nil), radii...),
		skin:  skin,
	}, nil
}

// Uniform is a shorthand for n atoms sharing the same radius.
func Uniform(n int, radius, skin float64) (*FastNeighborList, error) {
	radii := make([]float64, n)
	for i := range radii {
		radii[i] = radius
	}
	return New(radii, skin)
}

func (nl *FastNeighborList) Skin() float64    { return nl.skin }
func (nl *FastNeighborList) Radii() []float64 { return nl.radii }
func (nl *FastNeighborList) Revision() int    { return nl.revision }
func (nl *FastNeighborList) Len() int         { return len(nl.radii) }

// Update rebuilds the list when needed and reports whether it did.
func (nl *FastNeighborList) Update(atoms *geometry.Atoms) (bool, error) {
	if atoms == nil || atoms.Len() != len(nl.radii) {
		return false, pysicerr.New("FastNeighborList.Update", "", pysicerr.ErrMissingAtoms,
			"list sized for %d atoms", len(nl.radii))
	}
	if !nl.needsRebuild(atoms) {
		return false, nil
	}
	nl.build(atoms)
	return true, nil
}

func (nl *FastNeighborList) needsRebuild(atoms *geometry.Atoms) bool {
	if !nl.built || len(nl.lastPositions) != atoms.Len() || !nl.lastCell.Equal(atoms.Cell) {
		return true
	}
	limit := 0.25 * nl.skin * nl.skin
	for i, p := range atoms.Positions {
		if d := p.Sub(nl.lastPositions[i]); d.Norm2() > limit || (nl.skin == 0 && d.Norm2() > 0) {
			return true
		}
	}
	return false
}

// Neighbors returns the neighbours of atom i with the Cartesian shift to add
// to the position of each neighbour. The slices must not be modified.
func (nl *FastNeighborList) Neighbors(i int) ([]int, []geometry.Vec3) {
	return nl.neighbors[i], nl.shifts[i]
}

// Images returns the integer lattice offsets matching Neighbors(i).
func (nl *FastNeighborList) Images(i int) [][3]int {
	return nl.images[i]
}

// HalfPairs visits every unordered pair exactly once.
func (nl *FastNeighborList) HalfPairs(fn func(i, j int, shift geometry.Vec3)) {
	for i := range nl.neighbors {
		for k, j := range nl.neighbors[i] {
			if j > i || (j == i && positiveImage(nl.images[i][k])) {
				fn(i, j, nl.shifts[i][k])
			}
		}
	}
}

func positiveImage(n [3]int) bool {
	for _, c := range n {
		if c != 0 {
			return c > 0
		}
	}
	return false
}

type image struct {
	atom int
	n    [3]int
	pos  geometry.Vec3
}

func (nl *FastNeighborList) build(atoms *geometry.Atoms) {
	n := atoms.Len()
	nl.neighbors = make([][]int, n)
	nl.shifts = make([][]geometry.Vec3, n)
	nl.images = make([][][3]int, n)
	nl.lastPositions = append(nl.lastPositions[:0], atoms.Positions...)
	nl.lastCell = atoms.Cell
	nl.built = true
	nl.revision++

	maxR := 0.0
	for _, r := range nl.radii {
		maxR = math.Max(maxR, r)
	}
	maxCut := 2*maxR + nl.skin
	if maxCut <= 0 || n == 0 {
		return
	}

	cell := atoms.Cell
	periodic := cell.AnyPeriodic() && cell.Volume() > 0

	// Fold atoms into the home cell; offsets keep track of the folding so the
	// stored shifts refer to the original positions.
	wrapped := make([]geometry.Vec3, n)
	offsets := make([][3]int, n)
	for i, p := range atoms.Positions {
		wrapped[i] = p
		if !periodic {
			continue
		}
		f := cell.ToFractional(p)
		for a := 0; a < 3; a++ {
			if cell.PBC[a] {
				offsets[i][a] = int(math.Floor(f[a]))
			}
		}
		wrapped[i] = p.Sub(cell.Shift(offsets[i]))
	}

	var reach [3]int
	if periodic {
		for a := 0; a < 3; a++ {
			if cell.PBC[a] {
				reach[a] = int(math.Ceil(maxCut / cell.PlaneSpacing(a)))
			}
		}
	}

	ext := make([]image, 0, n*(2*reach[0]+1)*(2*reach[1]+1)*(2*reach[2]+1))
	bins := make(map[[3]int][]int)
	for j := 0; j < n; j++ {
		for x := -reach[0]; x <= reach[0]; x++ {
			for y := -reach[1]; y <= reach[1]; y++ {
				for z := -reach[2]; z <= reach[2]; z++ {
					img := [3]int{x, y, z}
					p := wrapped[j]
					if img != ([3]int{}) {
						p = p.Add(cell.Shift(img))
					}
					bins[binOf(p, maxCut)] = append(bins[binOf(p, maxCut)], len(ext))
					ext = append(ext, image{atom: j, n: img, pos: p})
				}
			}
		}
	}

	md.ParallelFor(n, 64, func(start, end int) {
		for i := start; i < end; i++ {
			home := binOf(wrapped[i], maxCut)
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					for dz := -1; dz <= 1; dz++ {
						key := [3]int{home[0] + dx, home[1] + dy, home[2] + dz}
						for _, e := range bins[key] {
							im := ext[e]
							if im.atom == i && im.n == ([3]int{}) {
								continue
							}
							cut := nl.radii[i] + nl.radii[im.atom] + nl.skin
							if im.pos.Sub(wrapped[i]).Norm2() >= cut*cut {
								continue
							}
							actual := [3]int{
								im.n[0] - offsets[im.atom][0] + offsets[i][0],
								im.n[1] - offsets[im.atom][1] + offsets[i][1],
								im.n[2] - offsets[im.atom][2] + offsets[i][2],
							}
							nl.neighbors[i] = append(nl.neighbors[i], im.atom)
							nl.images[i] = append(nl.images[i], actual)
							nl.shifts[i] = append(nl.shifts[i], cell.Shift(actual))
						}
					}
				}
			}
		}
	})
}

func binOf(p geometry.Vec3, size float64) [3]int {
	return [3]int{
		int(math.Floor(p[0] / size)),
		int(math.Floor(p[1] / size)),
		int(math.Floor(p[2] / size)),
	}
}
