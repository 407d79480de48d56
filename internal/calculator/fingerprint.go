package calculator

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/interactions/local"
)

// fingerprint hashes everything an evaluation depends on: the structure and
// the current parameters of every term.
func fingerprint(atoms *geometry.Atoms, terms []local.Term) uint64 {
	h := xxhash.New()
	for _, s := range atoms.Symbols {
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}
	_ = binary.Write(h, binary.LittleEndian, atoms.Positions)
	_ = binary.Write(h, binary.LittleEndian, atoms.Charges)
	for _, tag := range atoms.Tags {
		_ = binary.Write(h, binary.LittleEndian, int64(tag))
	}
	_ = binary.Write(h, binary.LittleEndian, atoms.Cell.Vectors)
	_ = binary.Write(h, binary.LittleEndian, atoms.Cell.PBC)

	for _, t := range terms {
		hashTerm(h, t)
	}
	return h.Sum64()
}

func hashTerm(h *xxhash.Digest, t local.Term) {
	_, _ = h.WriteString(t.Kind())
	switch p := t.(type) {
	case *local.Potential:
		_ = binary.Write(h, binary.LittleEndian, p.Parameters())
		_ = binary.Write(h, binary.LittleEndian, [2]float64{p.Cutoff(), p.CutoffMargin()})
		if c := p.Coordinator(); c != nil {
			hashCoordinator(h, c)
		}
	case *local.ProductPotential:
		for _, f := range p.Factors() {
			hashTerm(h, f)
		}
	}
}

func hashCoordinator(h *xxhash.Digest, c *bondorder.Coordinator) {
	for _, b := range c.BondOrderParameters() {
		_, _ = h.WriteString(b.Kind())
		_ = binary.Write(h, binary.LittleEndian, b.Parameters())
		_ = binary.Write(h, binary.LittleEndian, [2]float64{b.Cutoff(), b.CutoffMargin()})
	}
}
