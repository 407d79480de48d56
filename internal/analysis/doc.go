// Package analysis post-processes molecular dynamics trajectories.
//
// The package includes:
//
//   - [FFT]: radix-2 discrete Fourier transform
//   - [PowerSpectrum]: magnitude spectrum of a real signal
//   - [VelocityAutocorrelation]: mass-weighted velocity autocorrelation
//   - [VibrationalDOS]: vibrational density of states from the autocorrelation
//
// # Vibrational Spectrum
//
// Sampled states from [md.Result] carry positions followed by velocities:
//
//	dos, err := analysis.VibrationalDOS(res.States, atoms.Masses, dtSample, 0)
//	peak := dos.Peak() // THz
package analysis
