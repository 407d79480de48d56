package analysis

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/san-kum/pysic/internal/md"
)

func TestFFTMatchesDFT(t *testing.T) {
	data := []float64{1, 2, 0, -1, 3, 0.5, -2, 4}
	got, err := FFT(data)
	if err != nil {
		t.Fatal(err)
	}

	n := len(data)
	for k := 0; k < n; k++ {
		var want complex128
		for j, v := range data {
			want += complex(v, 0) * cmplx.Exp(complex(0, -2*math.Pi*float64(j*k)/float64(n)))
		}
		if cmplx.Abs(got[k]-want) > 1e-9 {
			t.Errorf("bin %d: got %v, want %v", k, got[k], want)
		}
	}
}

func TestFFTRejectsOddLength(t *testing.T) {
	if _, err := FFT(make([]float64, 6)); err == nil {
		t.Error("expected error for length 6")
	}
	if _, err := PowerSpectrum(make([]float64, 3)); err == nil {
		t.Error("expected error for length 3")
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {513, 1024},
	}
	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// oscillating builds frames for one atom whose x velocity is cos(2π f t).
func oscillating(f, dt float64, frames int) []md.State {
	states := make([]md.State, frames)
	for k := range states {
		s := make(md.State, 6)
		s[3] = math.Cos(2 * math.Pi * f * float64(k) * dt)
		states[k] = s
	}
	return states
}

func TestVelocityAutocorrelation(t *testing.T) {
	states := oscillating(0.01, 1, 1000)
	c, err := VelocityAutocorrelation(states, []float64{40}, 100)
	if err != nil {
		t.Fatal(err)
	}

	if len(c) != 101 {
		t.Fatalf("expected 101 lags, got %d", len(c))
	}
	if c[0] != 1 {
		t.Errorf("C(0) = %f, want 1", c[0])
	}
	if math.Abs(c[50]+1) > 0.05 {
		t.Errorf("C(50 fs) = %f, want about -1", c[50])
	}
	if math.Abs(c[100]-1) > 0.05 {
		t.Errorf("C(100 fs) = %f, want about 1", c[100])
	}
}

func TestVibrationalDOSPeak(t *testing.T) {
	states := oscillating(0.01, 1, 1024)
	dos, err := VibrationalDOS(states, []float64{40}, 1, 256)
	if err != nil {
		t.Fatal(err)
	}

	if peak := dos.Peak(); math.Abs(peak-10) > 1 {
		t.Errorf("peak at %f THz, want about 10", peak)
	}
	if len(dos.Frequencies) != len(dos.Intensities) {
		t.Error("frequency and intensity lengths differ")
	}
}

func TestVibrationalDOSErrors(t *testing.T) {
	tests := []struct {
		name   string
		states []md.State
		masses []float64
		dt     float64
	}{
		{"no frames", nil, []float64{1}, 1},
		{"no atoms", oscillating(0.01, 1, 10), nil, 1},
		{"wrong dimension", []md.State{{1, 2}, {3, 4}}, []float64{1}, 1},
		{"zero spacing", oscillating(0.01, 1, 10), []float64{1}, 0},
		{"at rest", []md.State{make(md.State, 6), make(md.State, 6)}, []float64{1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VibrationalDOS(tt.states, tt.masses, tt.dt, 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}
