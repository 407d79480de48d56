package hybridcalculator_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/pysic/internal/binding"
	"github.com/san-kum/pysic/internal/calculator"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/hybridcalculator"
	"github.com/san-kum/pysic/internal/interactions/local"
	"github.com/san-kum/pysic/internal/subsystem"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
)

type failingCalculator struct{ err error }

func (f failingCalculator) Calculate(context.Context, *geometry.Atoms) (*calculator.Result, error) {
	return nil, f.err
}

func ljCalculator() *calculator.Pysic {
	lj, err := local.NewPotential("LJ", local.WithParameters(0.0104, 3.4), local.WithCutoff(8), local.WithCutoffMargin(1))
	Expect(err).NotTo(HaveOccurred())
	calc := calculator.New()
	Expect(calc.AddPotential(lj)).To(Succeed())
	return calc
}

func cluster() *geometry.Atoms {
	atoms, err := geometry.NewAtoms([]string{"Ar", "Ar", "Ar", "Ar", "Ar"}, []geometry.Vec3{
		{0, 0, 0}, {3.8, 0, 0}, {0, 3.9, 0.2}, {3.7, 3.6, 0.1}, {1.9, 1.8, 3.5},
	}, geometry.Cell{})
	Expect(err).NotTo(HaveOccurred())
	atoms.Tags[3], atoms.Tags[4] = 2, 2
	return atoms
}

func subsys(name string, opts ...subsystem.Option) *subsystem.SubSystem {
	s, err := subsystem.NewSubSystem(name, opts...)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("HybridCalculator", func() {
	var (
		ctx   context.Context
		atoms *geometry.Atoms
		calc  *calculator.Pysic
		hyb   *hybridcalculator.HybridCalculator
	)

	BeforeEach(func() {
		ctx = context.Background()
		atoms = cluster()
		calc = ljCalculator()
		hyb = hybridcalculator.New()
	})

	Context("with a binding that uses the same potential", func() {
		BeforeEach(func() {
			Expect(hyb.AddSubSystem(subsys("core", subsystem.WithIndices(1, 0), subsystem.WithCalculator(calc)))).To(Succeed())
			Expect(hyb.AddSubSystem(subsys("shell", subsystem.WithSpecialSet(subsystem.Remaining), subsystem.WithCalculator(calc)))).To(Succeed())
			b, err := binding.NewBinding("core-shell", "core", "shell", calc)
			Expect(err).NotTo(HaveOccurred())
			Expect(hyb.AddBinding(b)).To(Succeed())
		})

		It("reproduces the full calculation", func() {
			full, err := ljCalculator().Calculate(ctx, atoms.Copy())
			Expect(err).NotTo(HaveOccurred())

			res, err := hyb.Calculate(ctx, atoms)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Energy).To(BeNumerically("~", full.Energy, 1e-12))
			for i := range full.Forces {
				for ax := 0; ax < 3; ax++ {
					Expect(res.Forces[i][ax]).To(BeNumerically("~", full.Forces[i][ax], 1e-12))
				}
			}
		})

		It("reports energies per subsystem", func() {
			_, err := hyb.GetPotentialEnergy(atoms)
			Expect(err).NotTo(HaveOccurred())

			core := atoms.Subset([]int{0, 1})
			want, err := ljCalculator().GetPotentialEnergy(core)
			Expect(err).NotTo(HaveOccurred())
			Expect(hyb.SubSystemEnergy("core")).To(BeNumerically("~", want, 1e-12))

			_, err = hyb.SubSystemEnergy("nothing")
			Expect(errors.Is(err, pysicerr.ErrInvalidSubSystem)).To(BeTrue())
		})

		It("lists its parts", func() {
			Expect(hyb.SubSystems()).To(HaveLen(2))
			Expect(hyb.Bindings()).To(HaveLen(1))
		})
	})

	It("selects atoms by tag", func() {
		Expect(hyb.AddSubSystem(subsys("tagged", subsystem.WithTags(2), subsystem.WithCalculator(calc)))).To(Succeed())
		Expect(hyb.AddSubSystem(subsys("rest", subsystem.WithSpecialSet(subsystem.Remaining), subsystem.WithCalculator(calc)))).To(Succeed())
		res, err := hyb.Calculate(ctx, atoms)
		Expect(err).NotTo(HaveOccurred())

		want, _ := ljCalculator().GetPotentialEnergy(atoms.Subset([]int{3, 4}))
		Expect(res.SubSystemEnergies["tagged"]).To(BeNumerically("~", want, 1e-12))
	})

	It("rejects overlapping subsystems", func() {
		Expect(hyb.AddSubSystem(subsys("a", subsystem.WithIndices(0, 1), subsystem.WithCalculator(calc)))).To(Succeed())
		Expect(hyb.AddSubSystem(subsys("b", subsystem.WithIndices(1, 2), subsystem.WithCalculator(calc)))).To(Succeed())
		_, err := hyb.Calculate(ctx, atoms)
		Expect(errors.Is(err, pysicerr.ErrInvalidSubSystem)).To(BeTrue())
	})

	It("rejects duplicate names and a second remaining set", func() {
		Expect(hyb.AddSubSystem(subsys("a", subsystem.WithSpecialSet(subsystem.Remaining)))).To(Succeed())
		err := hyb.AddSubSystem(subsys("a", subsystem.WithIndices(0)))
		Expect(errors.Is(err, pysicerr.ErrInvalidSubSystem)).To(BeTrue())
		err = hyb.AddSubSystem(subsys("b", subsystem.WithSpecialSet(subsystem.Remaining)))
		Expect(errors.Is(err, pysicerr.ErrInvalidSubSystem)).To(BeTrue())
	})

	It("rejects bindings to unknown subsystems", func() {
		Expect(hyb.AddSubSystem(subsys("a", subsystem.WithIndices(0, 1), subsystem.WithCalculator(calc)))).To(Succeed())
		b, err := binding.NewBinding("dangling", "a", "ghost", calc)
		Expect(err).NotTo(HaveOccurred())
		Expect(hyb.AddBinding(b)).To(Succeed())
		_, err = hyb.Calculate(ctx, atoms)
		Expect(errors.Is(err, pysicerr.ErrInvalidBinding)).To(BeTrue())
	})

	It("warns about atoms outside every subsystem", func() {
		obs, logs := observer.New(zapcore.WarnLevel)
		hyb = hybridcalculator.New(hybridcalculator.WithLogger(zap.New(obs)))
		Expect(hyb.AddSubSystem(subsys("pair", subsystem.WithIndices(0, 1), subsystem.WithCalculator(calc)))).To(Succeed())
		_, err := hyb.Calculate(ctx, atoms)
		Expect(err).NotTo(HaveOccurred())
		Expect(logs.Len()).To(Equal(1))
		Expect(logs.All()[0].ContextMap()).To(HaveKeyWithValue("uncovered", int64(3)))
	})

	It("propagates calculator failures", func() {
		boom := errors.New("boom")
		Expect(hyb.AddSubSystem(subsys("ok", subsystem.WithIndices(0, 1), subsystem.WithCalculator(calc)))).To(Succeed())
		Expect(hyb.AddSubSystem(subsys("bad", subsystem.WithIndices(2), subsystem.WithCalculator(failingCalculator{boom})))).To(Succeed())
		_, err := hyb.Calculate(ctx, atoms)
		Expect(errors.Is(err, boom)).To(BeTrue())
	})

	It("needs a calculator on every subsystem", func() {
		Expect(hyb.AddSubSystem(subsys("bare", subsystem.WithIndices(0)))).To(Succeed())
		_, err := hyb.Calculate(ctx, atoms)
		Expect(errors.Is(err, pysicerr.ErrInvalidSubSystem)).To(BeTrue())
	})
})
