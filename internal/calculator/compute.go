package calculator

import (
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/interactions/local"
	"github.com/san-kum/pysic/internal/neighbors"
)

// bondOrderState collects, per coordinator, the factors b_i and the
// per-atom energy share ∂E/∂b_i needed for the coordination gradient.
type bondOrderState struct {
	b, db  []float64
	shares []float64
}

func (p *Pysic) compute(atoms *geometry.Atoms) (*Result, error) {
	n := atoms.Len()
	res := &Result{
		Forces:              make([]geometry.Vec3, n),
		Electronegativities: make([]float64, n),
	}

	p.singleBody(atoms, res)

	nl, err := p.neighborList(atoms)
	if err != nil {
		return nil, err
	}
	if nl != nil {
		p.pairs(atoms, nl, res)
	}

	if p.coulomb != nil {
		cr, err := p.coulomb.Evaluate(atoms)
		if err != nil {
			return nil, err
		}
		res.Energy += cr.Energy
		for i := range res.Forces {
			res.Forces[i] = res.Forces[i].Add(cr.Forces[i])
			res.Electronegativities[i] += cr.Electronegativities[i]
		}
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				res.Virial[a][b] += cr.Virial[a][b]
			}
		}
	}

	if v := atoms.Cell.Volume(); v > 0 && atoms.Cell.AnyPeriodic() {
		w := res.Virial
		res.Stress = [6]float64{w[0][0] / v, w[1][1] / v, w[2][2] / v, w[1][2] / v, w[0][2] / v, w[0][1] / v}
		res.HasStress = true
	}
	return res, nil
}

func (p *Pysic) singleBody(atoms *geometry.Atoms, res *Result) {
	for _, t := range p.terms {
		if t.NumberOfTargets() != 1 {
			continue
		}
		for i := 0; i < atoms.Len(); i++ {
			if !t.MatchesAtom(atoms, i) {
				continue
			}
			v, grad, dq := t.Single(atoms.Positions[i], atoms.Charges[i])
			res.Energy += v
			res.Forces[i] = res.Forces[i].Sub(grad)
			res.Electronegativities[i] += dq
		}
	}
}

// addPair applies dE/dr of the pair (i, j) separated by d.
func addPair(res *Result, i, j int, d geometry.Vec3, r, dEdr float64) {
	f := d.Scale(dEdr / r)
	res.Forces[i] = res.Forces[i].Add(f)
	res.Forces[j] = res.Forces[j].Sub(f)
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			res.Virial[a][b] += dEdr * d[a] * d[b] / r
		}
	}
}

func (p *Pysic) pairs(atoms *geometry.Atoms, nl *neighbors.FastNeighborList, res *Result) {
	states := map[*bondorder.Coordinator]*bondOrderState{}
	var order []*bondorder.Coordinator
	for _, t := range p.terms {
		c := t.Coordinator()
		if c == nil || states[c] != nil {
			continue
		}
		_, b, db := c.Factors(atoms, nl)
		states[c] = &bondOrderState{b: b, db: db, shares: make([]float64, atoms.Len())}
		order = append(order, c)
	}

	var pairTerms []local.Term
	for _, t := range p.terms {
		if t.NumberOfTargets() == 2 {
			pairTerms = append(pairTerms, t)
		}
	}

	nl.HalfPairs(func(i, j int, shift geometry.Vec3) {
		d := atoms.Positions[j].Add(shift).Sub(atoms.Positions[i])
		r := d.Norm()
		if r == 0 {
			return
		}
		for _, t := range pairTerms {
			if r >= t.Cutoff() || !t.MatchesPair(atoms, i, j) {
				continue
			}
			v, dv := t.Pair(r)
			if v == 0 && dv == 0 {
				continue
			}
			if st := states[t.Coordinator()]; st != nil {
				scale := 0.5 * (st.b[i] + st.b[j])
				res.Energy += scale * v
				addPair(res, i, j, d, r, scale*dv)
				st.shares[i] += 0.5 * v
				st.shares[j] += 0.5 * v
				continue
			}
			res.Energy += v
			addPair(res, i, j, d, r, dv)
		}
	})

	for _, c := range order {
		st := states[c]
		weights := make([]float64, len(st.shares))
		for i := range weights {
			weights[i] = st.db[i] * st.shares[i]
		}
		c.AccumulateGradient(atoms, nl, weights, func(i, j int, d geometry.Vec3, r, dEdr float64) {
			addPair(res, i, j, d, r, dEdr)
		})
	}
}
