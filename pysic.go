package pysic

import (
	"github.com/san-kum/pysic/internal/binding"
	"github.com/san-kum/pysic/internal/calculator"
	"github.com/san-kum/pysic/internal/charges/relaxation"
	"github.com/san-kum/pysic/internal/core"
	"github.com/san-kum/pysic/internal/geometry"
	"github.com/san-kum/pysic/internal/hybridcalculator"
	"github.com/san-kum/pysic/internal/interactions/bondorder"
	"github.com/san-kum/pysic/internal/interactions/coulomb"
	"github.com/san-kum/pysic/internal/interactions/local"
	"github.com/san-kum/pysic/internal/neighbors"
	"github.com/san-kum/pysic/internal/subsystem"
	"github.com/san-kum/pysic/internal/utility/pysicerr"
	"github.com/san-kum/pysic/internal/utility/visualization"
	"github.com/san-kum/pysic/internal/version"
)

const Version = version.Version

type (
	Pysic               = calculator.Pysic
	Result              = calculator.Result
	FastNeighborList    = neighbors.FastNeighborList
	Potential           = local.Potential
	ProductPotential    = local.ProductPotential
	Term                = local.Term
	Coordinator         = bondorder.Coordinator
	BondOrderParameters = bondorder.BondOrderParameters
	CoulombSummation    = coulomb.CoulombSummation
	ChargeRelaxation    = relaxation.ChargeRelaxation
	HybridCalculator    = hybridcalculator.HybridCalculator
	SubSystem           = subsystem.SubSystem
	Binding             = binding.Binding
	Calculator          = subsystem.Calculator
	Curve               = visualization.Curve
	Error               = pysicerr.Error

	Atoms = geometry.Atoms
	Vec3  = geometry.Vec3
	Cell  = geometry.Cell
)

// Core catalog.
var (
	ListValidPotentials               = core.ListValidPotentials
	IsValidPotential                  = core.IsValidPotential
	NumberOfTargets                   = core.NumberOfTargets
	NamesOfParameters                 = core.NamesOfParameters
	DescriptionOfPotential            = core.DescriptionOfPotential
	ListValidBondOrderFactors         = core.ListValidBondOrderFactors
	IsValidBondOrderFactor            = core.IsValidBondOrderFactor
	ListValidCoulombMethods           = core.ListValidCoulombMethods
	ListValidChargeRelaxationMethods  = core.ListValidChargeRelaxationMethods
	NamesOfChargeRelaxationParameters = core.NamesOfChargeRelaxationParameters
)

var (
	ErrInvalidPotential   = pysicerr.ErrInvalidPotential
	ErrInvalidParameters  = pysicerr.ErrInvalidParameters
	ErrInvalidCoordinator = pysicerr.ErrInvalidCoordinator
	ErrInvalidSummation   = pysicerr.ErrInvalidSummation
	ErrInvalidRelaxation  = pysicerr.ErrInvalidRelaxation
	ErrInvalidSubSystem   = pysicerr.ErrInvalidSubSystem
	ErrInvalidBinding     = pysicerr.ErrInvalidBinding
	ErrMissingAtoms       = pysicerr.ErrMissingAtoms
	ErrNotConverged       = pysicerr.ErrNotConverged
)

var (
	PotentialCurve = visualization.PotentialCurve
	PlotPotential  = visualization.PlotPotential
	AtomsToSVG     = visualization.AtomsToSVG
)

var (
	NewPysic               = calculator.New
	NewFastNeighborList    = neighbors.New
	NewPotential           = local.NewPotential
	NewProductPotential    = local.NewProductPotential
	NewCoordinator         = bondorder.NewCoordinator
	NewBondOrderParameters = bondorder.NewBondOrderParameters
	NewCoulombSummation    = coulomb.NewCoulombSummation
	NewChargeRelaxation    = relaxation.NewChargeRelaxation
	NewHybridCalculator    = hybridcalculator.New
	NewSubSystem           = subsystem.NewSubSystem
	NewBinding             = binding.NewBinding
	NewAtoms               = geometry.NewAtoms
)

// Potential options.
var (
	WithSymbols      = local.WithSymbols
	WithTags         = local.WithTags
	WithIndices      = local.WithIndices
	WithParameters   = local.WithParameters
	WithCutoff       = local.WithCutoff
	WithCutoffMargin = local.WithCutoffMargin
	WithCoordinator  = local.WithCoordinator
)

// Bond order factor options.
var (
	BondSymbols      = bondorder.WithSymbols
	BondParameters   = bondorder.WithParameters
	BondCutoff       = bondorder.WithCutoff
	BondCutoffMargin = bondorder.WithCutoffMargin
)

var (
	WithLogger            = calculator.WithLogger
	WithSkin              = calculator.WithSkin
	WithScaling           = coulomb.WithScaling
	WithStrictConvergence = relaxation.WithStrictConvergence

	SelectIndices   = subsystem.WithIndices
	SelectTags      = subsystem.WithTags
	SelectRemaining = subsystem.WithSpecialSet(subsystem.Remaining)
	UseCalculator   = subsystem.WithCalculator
)
