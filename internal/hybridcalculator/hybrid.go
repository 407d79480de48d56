// Package hybridcalculator evaluates a structure split into subsystems, each
// with its own calculator, plus bindings between pairs of subsystems.
package hybridcalculator

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pysic/internal/binding"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/subsystem"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

type Result struct {
	Energy            float64
	Forces            []geometry.Vec3
	SubSystemEnergies map[string]float64
	BindingEnergies   map[string]float64
}

type HybridCalculator struct {
	mu         sync.Mutex
	logger     *zap.Logger
	subsystems []*subsystem.SubSystem
	bindings   []*binding.Binding
	last       *Result
}

type Option func(*HybridCalculator)

func WithLogger(l *zap.Logger) Option {
	return func(h *HybridCalculator) {
		if l != nil {
			h.logger = l
		}
	}
}

func New(opts ...Option) *HybridCalculator {
	h := &HybridCalculator{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddSubSystem registers a subsystem. Names are unique and at most one
// subsystem may take the remaining atoms.
func (h *HybridCalculator) AddSubSystem(s *subsystem.SubSystem) error {
	if s == nil {
		return pysicerr.New("HybridCalculator.AddSubSystem", "", pysicerr.ErrInvalidSubSystem, "nil subsystem")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.subsystems {
		if o.Name() == s.Name() {
			return pysicerr.New("HybridCalculator.AddSubSystem", s.Name(), pysicerr.ErrInvalidSubSystem, "duplicate name")
		}
		if o.IsRemaining() && s.IsRemaining() {
			return pysicerr.New("HybridCalculator.AddSubSystem", s.Name(), pysicerr.ErrInvalidSubSystem,
				"%q already takes the remaining atoms", o.Name())
		}
	}
	h.subsystems = append(h.subsystems, s)
	h.last = nil
	return nil
}

func (h *HybridCalculator) AddBinding(b *binding.Binding) error {
	if b == nil {
		return pysicerr.New("HybridCalculator.AddBinding", "", pysicerr.ErrInvalidBinding, "nil binding")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, o := range h.bindings {
		if o.Name() == b.Name() {
			return pysicerr.New("HybridCalculator.AddBinding", b.Name(), pysicerr.ErrInvalidBinding, "duplicate name")
		}
	}
	h.bindings = append(h.bindings, b)
	h.last = nil
	return nil
}

func (h *HybridCalculator) SubSystems() []*subsystem.SubSystem {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*subsystem.SubSystem(nil), h.subsystems...)
}

func (h *HybridCalculator) Bindings() []*binding.Binding {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*binding.Binding(nil), h.bindings...)
}

// resolve assigns atoms to subsystems, explicit selections first.
func (h *HybridCalculator) resolve(atoms *geometry.Atoms) (map[string][]int, error) {
	claimed := make([]bool, atoms.Len())
	owner := make([]string, atoms.Len())
	out := make(map[string][]int, len(h.subsystems))

	ordered := make([]*subsystem.SubSystem, 0, len(h.subsystems))
	var remaining *subsystem.SubSystem
	for _, s := range h.subsystems {
		if s.IsRemaining() {
			remaining = s
			continue
		}
		ordered = append(ordered, s)
	}
	if remaining != nil {
		ordered = append(ordered, remaining)
	}

	for _, s := range ordered {
		if s.Calculator() == nil {
			return nil, pysicerr.New("HybridCalculator.Calculate", s.Name(), pysicerr.ErrInvalidSubSystem, "no calculator")
		}
		idx, err := s.Resolve(atoms, claimed)
		if err != nil {
			return nil, err
		}
		for _, i := range idx {
			if claimed[i] {
				return nil, pysicerr.New("HybridCalculator.Calculate", s.Name(), pysicerr.ErrInvalidSubSystem,
					"atom %d already belongs to %q", i, owner[i])
			}
			claimed[i], owner[i] = true, s.Name()
		}
		out[s.Name()] = idx
	}

	uncovered := 0
	for _, c := range claimed {
		if !c {
			uncovered++
		}
	}
	if uncovered > 0 {
		pysicerr.Warn(h.logger, "atoms not covered by any subsystem are ignored",
			zap.Int("uncovered", uncovered), zap.Int("atoms", atoms.Len()))
	}
	return out, nil
}

// Calculate evaluates all subsystems and bindings concurrently. Charges
// relaxed by a subsystem calculator are written back to atoms.
func (h *HybridCalculator) Calculate(ctx context.Context, atoms *geometry.Atoms) (*Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := atoms.Validate(); err != nil {
		return nil, err
	}
	if len(h.subsystems) == 0 {
		return nil, pysicerr.New("HybridCalculator.Calculate", "", pysicerr.ErrInvalidSubSystem, "no subsystems")
	}
	sel, err := h.resolve(atoms)
	if err != nil {
		return nil, err
	}
	for _, b := range h.bindings {
		p, s := b.Subsystems()
		if _, ok := sel[p]; !ok {
			return nil, pysicerr.New("HybridCalculator.Calculate", b.Name(), pysicerr.ErrInvalidBinding, "unknown subsystem %q", p)
		}
		if _, ok := sel[s]; !ok {
			return nil, pysicerr.New("HybridCalculator.Calculate", b.Name(), pysicerr.ErrInvalidBinding, "unknown subsystem %q", s)
		}
	}

	subParts := make([]*geometry.Atoms, len(h.subsystems))
	subResults := make([]struct {
		energy float64
		forces []geometry.Vec3
	}, len(h.subsystems))
	bindResults := make([]*binding.Contribution, len(h.bindings))

	g, gctx := errgroup.WithContext(ctx)
	for k, s := range h.subsystems {
		idx := sel[s.Name()]
		if len(idx) == 0 {
			h.logger.Debug("empty subsystem skipped", zap.String("subsystem", s.Name()))
			continue
		}
		part := subsystem.Extract(atoms, idx)
		subParts[k] = part
		g.Go(func() error {
			res, err := s.Calculator().Calculate(gctx, part)
			if err != nil {
				return err
			}
			subResults[k].energy, subResults[k].forces = res.Energy, res.Forces
			return nil
		})
	}
	for k, b := range h.bindings {
		p, s := b.Subsystems()
		g.Go(func() error {
			c, err := b.Evaluate(gctx, atoms, sel[p], sel[s])
			if err != nil {
				return err
			}
			bindResults[k] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Forces:            make([]geometry.Vec3, atoms.Len()),
		SubSystemEnergies: make(map[string]float64, len(h.subsystems)),
		BindingEnergies:   make(map[string]float64, len(h.bindings)),
	}
	for k, s := range h.subsystems {
		res.SubSystemEnergies[s.Name()] = subResults[k].energy
		res.Energy += subResults[k].energy
		if subParts[k] == nil {
			continue
		}
		for j, i := range sel[s.Name()] {
			res.Forces[i] = res.Forces[i].Add(subResults[k].forces[j])
			atoms.Charges[i] = subParts[k].Charges[j]
		}
	}
	for k, b := range h.bindings {
		c := bindResults[k]
		res.BindingEnergies[b.Name()] = c.Energy
		res.Energy += c.Energy
		for j, i := range c.Indices {
			res.Forces[i] = res.Forces[i].Add(c.Forces[j])
		}
	}
	h.last = res
	h.logger.Debug("hybrid evaluation",
		zap.Float64("energy", res.Energy), zap.Int("subsystems", len(h.subsystems)), zap.Int("bindings", len(h.bindings)))
	return res, nil
}

func (h *HybridCalculator) GetPotentialEnergy(atoms *geometry.Atoms) (float64, error) {
	res, err := h.Calculate(context.Background(), atoms)
	if err != nil {
		return 0, err
	}
	return res.Energy, nil
}

func (h *HybridCalculator) GetForces(atoms *geometry.Atoms) ([]geometry.Vec3, error) {
	res, err := h.Calculate(context.Background(), atoms)
	if err != nil {
		return nil, err
	}
	return res.Forces, nil
}

// SubSystemEnergy reports the energy of one subsystem from the last
// Calculate.
func (h *HybridCalculator) SubSystemEnergy(name string) (float64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return 0, pysicerr.New("HybridCalculator.SubSystemEnergy", name, pysicerr.ErrMissingAtoms, "nothing calculated yet")
	}
	e, ok := h.last.SubSystemEnergies[name]
	if !ok {
		return 0, pysicerr.New("HybridCalculator.SubSystemEnergy", name, pysicerr.ErrInvalidSubSystem, "unknown subsystem")
	}
	return e, nil
}
