// Package binding describes the interaction between two subsystems of a
// hybrid calculation.
//
// The binding energy is evaluated by subtraction: the binding calculator is
// applied to the union of both subsystems and to each of them alone, and
//
//	E_AB = E(A ∪ B) - E(A) - E(B)
//
// Forces combine the same way.
package binding

import (
	"context"
	"sort"

	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/subsystem"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

type Binding struct {
	name      string
	primary   string
	secondary string
	calc      subsystem.Calculator
}

// Contribution is the binding energy with forces on the atoms of both
// subsystems. Indices refer to the full structure.
type Contribution struct {
	Energy  float64
	Indices []int
	Forces  []geometry.Vec3
}

func NewBinding(name, primary, secondary string, calc subsystem.Calculator) (*Binding, error) {
	switch {
	case name == "":
		return nil, pysicerr.New("NewBinding", name, pysicerr.ErrInvalidBinding, "empty name")
	case primary == "" || secondary == "":
		return nil, pysicerr.New("NewBinding", name, pysicerr.ErrInvalidBinding, "both subsystems must be named")
	case primary == secondary:
		return nil, pysicerr.New("NewBinding", name, pysicerr.ErrInvalidBinding, "cannot bind %q to itself", primary)
	case calc == nil:
		return nil, pysicerr.New("NewBinding", name, pysicerr.ErrInvalidBinding, "no calculator")
	}
	return &Binding{name: name, primary: primary, secondary: secondary, calc: calc}, nil
}

func (b *Binding) Name() string                         { return b.name }
func (b *Binding) Subsystems() (string, string)         { return b.primary, b.secondary }
func (b *Binding) Calculator() subsystem.Calculator     { return b.calc }
func (b *Binding) Connects(name string) bool            { return name == b.primary || name == b.secondary }
func (b *Binding) SetCalculator(c subsystem.Calculator) { b.calc = c }

// Evaluate computes the binding contribution for the resolved atoms of the
// primary and secondary subsystems.
func (b *Binding) Evaluate(ctx context.Context, atoms *geometry.Atoms, primary, secondary []int) (*Contribution, error) {
	if len(primary) == 0 || len(secondary) == 0 {
		return &Contribution{}, nil
	}
	union := append(append([]int(nil), primary...), secondary...)
	sort.Ints(union)
	for k := 1; k < len(union); k++ {
		if union[k] == union[k-1] {
			return nil, pysicerr.New("Binding.Evaluate", b.name, pysicerr.ErrInvalidBinding,
				"atom %d belongs to both subsystems", union[k])
		}
	}
	pos := make(map[int]int, len(union))
	for k, i := range union {
		pos[i] = k
	}

	out := &Contribution{Indices: union, Forces: make([]geometry.Vec3, len(union))}
	parts := []struct {
		indices []int
		sign    float64
	}{
		{union, 1},
		{primary, -1},
		{secondary, -1},
	}
	for _, part := range parts {
		res, err := b.calc.Calculate(ctx, atoms.Subset(part.indices))
		if err != nil {
			return nil, err
		}
		out.Energy += part.sign * res.Energy
		for k, i := range part.indices {
			slot := pos[i]
			out.Forces[slot] = out.Forces[slot].Add(res.Forces[k].Scale(part.sign))
		}
	}
	return out, nil
}
