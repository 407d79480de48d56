package geometry

const (
	// CoulombConstant is 1/(4πε0) in eV·Å/e².
	CoulombConstant = 14.399645

	// KineticUnit converts amu·Å²/fs² to eV.
	KineticUnit = 103.642697

	// Boltzmann is k_B in eV/K.
	Boltzmann = 8.617333262e-5
)
