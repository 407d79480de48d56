// Package subsystem selects a part of a structure that a hybrid calculation
// evaluates with its own calculator.
package subsystem

import (
	"context"
	"sort"

	"github.com/san-kum/pysic/internal/calculator"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

// Remaining selects every atom no other subsystem has claimed.
const Remaining = "remaining"

// Calculator evaluates a structure. *calculator.Pysic satisfies it.
type Calculator interface {
	Calculate(ctx context.Context, atoms *geometry.Atoms) (*calculator.Result, error)
}

type SubSystem struct {
	name    string
	indices []int
	tags    []int
	special string
	calc    Calculator
	modes   int
}

type Option func(*SubSystem)

func WithIndices(indices ...int) Option {
	return func(s *SubSystem) {
		s.indices = append(s.indices, indices...)
		s.modes++
	}
}

func WithTags(tags ...int) Option {
	return func(s *SubSystem) {
		s.tags = append(s.tags, tags...)
		s.modes++
	}
}

// WithSpecialSet selects a named set. Only Remaining is known.
func WithSpecialSet(name string) Option {
	return func(s *SubSystem) {
		s.special = name
		s.modes++
	}
}

func WithCalculator(c Calculator) Option {
	return func(s *SubSystem) { s.calc = c }
}

// NewSubSystem needs a name and exactly one selection.
func NewSubSystem(name string, opts ...Option) (*SubSystem, error) {
	if name == "" {
		return nil, pysicerr.New("NewSubSystem", name, pysicerr.ErrInvalidSubSystem, "empty name")
	}
	s := &SubSystem{name: name}
	for _, opt := range opts {
		opt(s)
	}
	if s.modes != 1 {
		return nil, pysicerr.New("NewSubSystem", name, pysicerr.ErrInvalidSubSystem,
			"select atoms by exactly one of indices, tags or a special set")
	}
	if s.special != "" && s.special != Remaining {
		return nil, pysicerr.New("NewSubSystem", name, pysicerr.ErrInvalidSubSystem, "unknown special set %q", s.special)
	}
	return s, nil
}

func (s *SubSystem) Name() string           { return s.name }
func (s *SubSystem) Calculator() Calculator { return s.calc }
func (s *SubSystem) IsRemaining() bool      { return s.special == Remaining }

func (s *SubSystem) SetCalculator(c Calculator) { s.calc = c }

// Resolve returns the sorted indices the subsystem selects in atoms.
// claimed marks atoms taken by other subsystems and is only consulted for
// the remaining set.
func (s *SubSystem) Resolve(atoms *geometry.Atoms, claimed []bool) ([]int, error) {
	n := atoms.Len()
	var out []int
	switch {
	case s.special == Remaining:
		for i := 0; i < n; i++ {
			if i >= len(claimed) || !claimed[i] {
				out = append(out, i)
			}
		}
	case len(s.tags) > 0:
		want := make(map[int]bool, len(s.tags))
		for _, t := range s.tags {
			want[t] = true
		}
		for i, t := range atoms.Tags {
			if want[t] {
				out = append(out, i)
			}
		}
	default:
		seen := make(map[int]bool, len(s.indices))
		for _, i := range s.indices {
			if i < 0 || i >= n {
				return nil, pysicerr.New("SubSystem.Resolve", s.name, pysicerr.ErrInvalidSubSystem,
					"index %d outside a structure of %d atoms", i, n)
			}
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
		sort.Ints(out)
	}
	return out, nil
}

// Extract copies the selected atoms into a new structure with the same cell.
func Extract(atoms *geometry.Atoms, indices []int) *geometry.Atoms {
	return atoms.Subset(indices)
}
