package geometry

// Standard atomic masses in amu.
var atomicMasses = map[string]float64{
	"H": 1.008, "He": 4.0026, "Li": 6.94, "Be": 9.0122, "B": 10.81,
	"C": 12.011, "N": 14.007, "O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085, "P": 30.974,
	"S": 32.06, "Cl": 35.45, "Ar": 39.948, "K": 39.098, "Ca": 40.078,
	"Ti": 47.867, "Fe": 55.845, "Ni": 58.693, "Cu": 63.546, "Zn": 65.38,
	"Ge": 72.630, "Kr": 83.798, "Ag": 107.87, "Pt": 195.08, "Au": 196.97,
}

// AtomicMass returns the tabulated mass for symbol and whether it is known.
func AtomicMass(symbol string) (float64, bool) {
	m, ok := atomicMasses[symbol]
	return m, ok
}
