// Package spectrum estimates fringe spacing from the frequency content
// of a sampled intensity profile.
package spectrum

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Magnitudes returns the one-sided amplitude spectrum of signal with
// its mean removed. Bin k corresponds to a period of len(signal)/k samples.
//
// Parameters:
//   - signal: intensity samples of one channel
//
// Returns:
//   - len(signal)/2+1 magnitudes, or nil for signals shorter than 2
func Magnitudes(signal []int) []float64 {
	n := len(signal)
	if n < 2 {
		return nil
	}

	values := make([]float64, n)
	for i, v := range signal {
		values[i] = float64(v)
	}
	mean := stat.Mean(values, nil)
	for i := range values {
		values[i] -= mean
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, values)

	mags := make([]float64, len(coeffs))
	for k, c := range coeffs {
		mags[k] = cmplx.Abs(c)
	}
	return mags
}

// DominantPeriod returns the period in samples of the strongest non-DC
// component of signal. ok is false when the signal is too short or flat.
func DominantPeriod(signal []int) (period float64, ok bool) {
	mags := Magnitudes(signal)
	if len(mags) < 2 {
		return 0, false
	}

	best := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[best] {
			best = k
		}
	}
	if mags[best] < 1e-9 {
		return 0, false
	}

	return float64(len(signal)) / float64(best), true
}
