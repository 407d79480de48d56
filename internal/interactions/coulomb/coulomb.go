// Package coulomb sums electrostatic energies, forces and electronegativities
// of point charges.
//
// Two methods are supported. "ewald" splits the sum into a screened real
// space part, a reciprocal space part and a self term and requires a cell
// periodic in all three directions. "direct" is a plain pairwise sum for open
// systems.
package coulomb

import (
	"math"
	"sync"

	"github.com/san-kum/pysic/internal/core"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/neighbors"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// Result holds one evaluation. Virial is the strain derivative dE/dε_ab in
// eV; divide by the cell volume for the stress.
type Result struct {
	Energy              float64
	Forces              []geometry.Vec3
	Electronegativities []float64
	Virial              [3][3]float64
}

type CoulombSummation struct {
	method  string
	params  []float64
	scaling map[string]float64
	skin    float64

	mu sync.Mutex
	nl *neighbors.FastNeighborList
}

type Option func(*CoulombSummation)

// WithScaling multiplies the charge of every atom of an element by a factor.
// Elements not listed keep factor 1.
func WithScaling(factors map[string]float64) Option {
	return func(c *CoulombSummation) {
		for k, v := range factors {
			c.scaling[k] = v
		}
	}
}

// WithSkin sets the skin of the real space neighbour list.
func WithSkin(skin float64) Option {
	return func(c *CoulombSummation) { c.skin = skin }
}

func NewCoulombSummation(method string, params []float64, opts ...Option) (*CoulombSummation, error) {
	desc, err := core.CoulombMethod(method)
	if err != nil {
		return nil, err
	}
	if len(params) != len(desc.Parameters) {
		return nil, pysicerr.New("NewCoulombSummation", method, pysicerr.ErrInvalidParameters,
			"expected %d parameters %v, got %d", len(desc.Parameters), desc.Parameters, len(params))
	}
	for i, v := range params {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, pysicerr.New("NewCoulombSummation", method, pysicerr.ErrInvalidParameters,
				"%s must be positive and finite, got %g", desc.Parameters[i], v)
		}
	}
	c := &CoulombSummation{
		method:  method,
		params:  append([]float64(nil), params...),
		scaling: map[string]float64{},
		skin:    0.5,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.skin < 0 {
		return nil, pysicerr.New("NewCoulombSummation", method, pysicerr.ErrInvalidParameters, "negative skin %g", c.skin)
	}
	return c, nil
}

func (c *CoulombSummation) Method() string        { return c.method }
func (c *CoulombSummation) Parameters() []float64 { return append([]float64(nil), c.params...) }

// Parameter looks up a parameter by its catalog name.
func (c *CoulombSummation) Parameter(name string) (float64, error) {
	desc, _ := core.CoulombMethod(c.method)
	for i, p := range desc.Parameters {
		if p == name {
			return c.params[i], nil
		}
	}
	return 0, pysicerr.New("CoulombSummation.Parameter", name, pysicerr.ErrInvalidParameters,
		"%s has no such parameter", c.method)
}

// Scaling returns the charge scaling factor of an element.
func (c *CoulombSummation) Scaling(symbol string) float64 {
	if s, ok := c.scaling[symbol]; ok {
		return s
	}
	return 1
}

// RealCutoff is the real space cutoff, zero for the direct method.
func (c *CoulombSummation) RealCutoff() float64 {
	if c.method == "ewald" {
		return c.params[0]
	}
	return 0
}

func (c *CoulombSummation) coulombK() float64 {
	return geometry.CoulombConstant / c.params[len(c.params)-1]
}

// Evaluate computes energy, forces, electronegativities and virial for the
// current charges of atoms.
func (c *CoulombSummation) Evaluate(atoms *geometry.Atoms) (*Result, error) {
	if err := atoms.Validate(); err != nil {
		return nil, err
	}
	n := atoms.Len()
	res := &Result{
		Forces:              make([]geometry.Vec3, n),
		Electronegativities: make([]float64, n),
	}
	q := make([]float64, n)
	for i := range q {
		q[i] = atoms.Charges[i] * c.Scaling(atoms.Symbols[i])
	}

	switch c.method {
	case "ewald":
		if !atoms.Cell.FullyPeriodic() || atoms.Cell.Volume() == 0 {
			return nil, pysicerr.New("CoulombSummation.Evaluate", c.method, pysicerr.ErrInvalidSummation,
				"Ewald summation needs a cell periodic in all directions")
		}
		if err := c.realSpace(atoms, q, res); err != nil {
			return nil, err
		}
		c.reciprocalSpace(atoms, q, res)
		c.selfEnergy(q, res)
	case "direct":
		if atoms.Cell.AnyPeriodic() {
			return nil, pysicerr.New("CoulombSummation.Evaluate", c.method, pysicerr.ErrInvalidSummation,
				"direct summation is only defined for open systems")
		}
		c.direct(atoms, q, res)
	}

	for i := range res.Electronegativities {
		res.Electronegativities[i] *= c.Scaling(atoms.Symbols[i])
	}
	return res, nil
}

func addPairVirial(v *[3][3]float64, d geometry.Vec3, r, dEdr float64) {
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			v[a][b] += dEdr * d[a] * d[b] / r
		}
	}
}

func (c *CoulombSummation) realSpace(atoms *geometry.Atoms, q []float64, res *Result) error {
	rc := c.params[0]
	alpha := 1 / (math.Sqrt2 * c.params[2])
	k := c.coulombK()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nl == nil || c.nl.Len() != atoms.Len() {
		nl, err := neighbors.Uniform(atoms.Len(), 0.5*rc, c.skin)
		if err != nil {
			return err
		}
		c.nl = nl
	}
	if _, err := c.nl.Update(atoms); err != nil {
		return err
	}

	c.nl.HalfPairs(func(i, j int, shift geometry.Vec3) {
		d := atoms.Positions[j].Add(shift).Sub(atoms.Positions[i])
		r := d.Norm()
		if r >= rc || r == 0 {
			return
		}
		screened := math.Erfc(alpha*r) / r
		res.Energy += k * q[i] * q[j] * screened
		res.Electronegativities[i] += k * q[j] * screened
		res.Electronegativities[j] += k * q[i] * screened

		dEdr := -k * q[i] * q[j] * (screened + 2*alpha/math.SqrtPi*math.Exp(-alpha*alpha*r*r)) / r
		f := d.Scale(dEdr / r)
		res.Forces[i] = res.Forces[i].Add(f)
		res.Forces[j] = res.Forces[j].Sub(f)
		addPairVirial(&res.Virial, d, r, dEdr)
	})
	return nil
}

func (c *CoulombSummation) reciprocalSpace(atoms *geometry.Atoms, q []float64, res *Result) {
	kc := c.params[1]
	sigma := c.params[2]
	k := c.coulombK()
	cell := atoms.Cell
	pref := 2 * math.Pi * k / cell.Volume()

	b := cell.Reciprocal()
	var maxIdx [3]int
	for ax := 0; ax < 3; ax++ {
		maxIdx[ax] = int(math.Floor(kc * cell.Vectors[ax].Norm() / (2 * math.Pi)))
	}

	n := atoms.Len()
	cosG := make([]float64, n)
	sinG := make([]float64, n)
	var erec float64
	var stress [3][3]float64

	for h := -maxIdx[0]; h <= maxIdx[0]; h++ {
		for l := -maxIdx[1]; l <= maxIdx[1]; l++ {
			for m := -maxIdx[2]; m <= maxIdx[2]; m++ {
				if h == 0 && l == 0 && m == 0 {
					continue
				}
				g := b[0].Scale(float64(h)).Add(b[1].Scale(float64(l))).Add(b[2].Scale(float64(m))).Scale(2 * math.Pi)
				g2 := g.Norm2()
				if g2 >= kc*kc {
					continue
				}
				amp := math.Exp(-0.5*sigma*sigma*g2) / g2

				var sc, ss float64
				for i := 0; i < n; i++ {
					phase := g.Dot(atoms.Positions[i])
					cosG[i], sinG[i] = math.Cos(phase), math.Sin(phase)
					sc += q[i] * cosG[i]
					ss += q[i] * sinG[i]
				}
				s2 := sc*sc + ss*ss
				erec += pref * amp * s2

				for i := 0; i < n; i++ {
					res.Electronegativities[i] += 2 * pref * amp * (sc*cosG[i] + ss*sinG[i])
					w := 2 * pref * amp * q[i] * (sc*sinG[i] - ss*cosG[i])
					res.Forces[i] = res.Forces[i].Add(g.Scale(w))
				}

				t := pref * amp * s2 * (sigma*sigma + 2/g2)
				for a := 0; a < 3; a++ {
					for bb := 0; bb < 3; bb++ {
						stress[a][bb] += t * g[a] * g[bb]
					}
				}
			}
		}
	}

	res.Energy += erec
	for a := 0; a < 3; a++ {
		stress[a][a] -= erec
		for bb := 0; bb < 3; bb++ {
			res.Virial[a][bb] += stress[a][bb]
		}
	}
}

func (c *CoulombSummation) selfEnergy(q []float64, res *Result) {
	pref := c.coulombK() / (math.Sqrt(2*math.Pi) * c.params[2])
	for i, qi := range q {
		res.Energy -= pref * qi * qi
		res.Electronegativities[i] -= 2 * pref * qi
	}
}

func (c *CoulombSummation) direct(atoms *geometry.Atoms, q []float64, res *Result) {
	k := c.coulombK()
	n := atoms.Len()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := atoms.Positions[j].Sub(atoms.Positions[i])
			r := d.Norm()
			if r == 0 {
				continue
			}
			res.Energy += k * q[i] * q[j] / r
			res.Electronegativities[i] += k * q[j] / r
			res.Electronegativities[j] += k * q[i] / r

			dEdr := -k * q[i] * q[j] / (r * r)
			f := d.Scale(dEdr / r)
			res.Forces[i] = res.Forces[i].Add(f)
			res.Forces[j] = res.Forces[j].Sub(f)
			addPairVirial(&res.Virial, d, r, dEdr)
		}
	}
}
