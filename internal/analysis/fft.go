package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FFT transforms data whose length is a power of two.
func FFT(data []float64) ([]complex128, error) {
	n := len(data)
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("fft requires power of 2 length, got %d", n)
	}
	return fft(data), nil
}

func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

func PowerSpectrum(data []float64) ([]float64, error) {
	f, err := FFT(data)
	if err != nil {
		return nil, err
	}
	ps := make([]float64, len(f)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}

	return ps, nil
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
