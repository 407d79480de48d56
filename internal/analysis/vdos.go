package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/pysic/internal/md"
)

// Spectrum is a one-sided vibrational density of states. Frequencies are in
// THz and the intensities are normalized to a unit maximum.
type Spectrum struct {
	Frequencies []float64
	Intensities []float64
}

// Peak returns the frequency of the strongest nonzero mode.
func (s Spectrum) Peak() float64 {
	best, at := -1.0, 0.0
	for i := 1; i < len(s.Intensities); i++ {
		if s.Intensities[i] > best {
			best, at = s.Intensities[i], s.Frequencies[i]
		}
	}
	return at
}

// VelocityAutocorrelation returns C(τ)/C(0) for lags 0..maxLag, where
// C(τ) = <Σ_i m_i v_i(t)·v_i(t+τ)> averaged over time origins t. States hold
// 3N positions followed by 3N velocities. maxLag <= 0 means half the frames.
func VelocityAutocorrelation(states []md.State, masses []float64, maxLag int) ([]float64, error) {
	n := len(masses)
	frames := len(states)
	if n == 0 || frames < 2 {
		return nil, fmt.Errorf("need atoms and at least 2 frames, got %d atoms and %d frames", n, frames)
	}
	for k, s := range states {
		if len(s) != 6*n {
			return nil, fmt.Errorf("frame %d has dimension %d, want %d", k, len(s), 6*n)
		}
	}
	if maxLag <= 0 || maxLag >= frames {
		maxLag = frames / 2
	}

	c := make([]float64, maxLag+1)
	md.ParallelFor(maxLag+1, 16, func(start, end int) {
		for lag := start; lag < end; lag++ {
			sum := 0.0
			origins := frames - lag
			for t0 := 0; t0 < origins; t0++ {
				a := states[t0][3*n:]
				b := states[t0+lag][3*n:]
				for i, m := range masses {
					sum += m * (a[3*i]*b[3*i] + a[3*i+1]*b[3*i+1] + a[3*i+2]*b[3*i+2])
				}
			}
			c[lag] = sum / float64(origins)
		}
	})

	if c[0] == 0 {
		return nil, fmt.Errorf("velocities are all zero")
	}
	c0 := c[0]
	for i := range c {
		c[i] /= c0
	}
	return c, nil
}

// VibrationalDOS Fourier transforms the Hann-windowed velocity
// autocorrelation. dt is the time between frames in fs.
func VibrationalDOS(states []md.State, masses []float64, dt float64, maxLag int) (Spectrum, error) {
	if !(dt > 0) {
		return Spectrum{}, fmt.Errorf("frame spacing must be positive, got %g", dt)
	}
	c, err := VelocityAutocorrelation(states, masses, maxLag)
	if err != nil {
		return Spectrum{}, err
	}

	lags := len(c)
	size := NextPowerOfTwo(2 * lags)
	signal := make([]float64, size)
	for i, v := range c {
		w := 0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(lags)))
		signal[i] = v * w
		if i > 0 {
			signal[size-i] = v * w
		}
	}

	ps, err := PowerSpectrum(signal)
	if err != nil {
		return Spectrum{}, err
	}

	spec := Spectrum{
		Frequencies: make([]float64, len(ps)),
		Intensities: ps,
	}
	top := 0.0
	for i := range ps {
		spec.Frequencies[i] = 1000 * float64(i) / (float64(size) * dt)
		top = math.Max(top, ps[i])
	}
	if top > 0 {
		for i := range ps {
			ps[i] /= top
		}
	}
	return spec, nil
}
