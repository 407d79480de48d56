// Package control steers the temperature of a molecular dynamics run.
//
// A [Thermostat] looks at the instantaneous temperature after each step and
// returns the factor by which all velocities are scaled:
//
//   - [None]: leaves the dynamics alone (microcanonical)
//   - [Berendsen]: weak coupling to a bath with relaxation time tau
//   - [Rescale]: hard rescaling to the target every n steps
//   - [PID]: feedback on the relative temperature error
//
// # Usage
//
//	th := control.NewBerendsen(300, 100) // K, fs
//	integ := control.NewThermostatted(integrators.NewVerlet(), th, atoms.Masses)
//	sim := md.New(sys, integ)
package control
