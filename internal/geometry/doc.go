// Package geometry provides the atomic structure model: vectors, periodic
// cells, the [Atoms] container and lattice builders.
//
// Units follow the rest of pysic: Å for lengths, amu for masses, e for
// charges and fs for time. [KineticUnit] and [Boltzmann] convert to eV and K.
package geometry
