package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var (
	ErrTooShort      = errors.New("analysis: signal too short")
	ErrNonFinite     = errors.New("analysis: signal contains non-finite samples")
	ErrNoOscillation = errors.New("analysis: signal has no oscillating component")
)

const minSamples = 4

// PowerSpectrum returns the magnitude of the one-sided spectrum of signal
// after removing its mean. Bin k corresponds to k / (len(signal) * dt) Hz.
func PowerSpectrum(signal []float64) ([]float64, error) {
	if len(signal) < minSamples {
		return nil, ErrTooShort
	}

	mean := 0.0
	for _, v := range signal {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFinite
		}
		mean += v
	}
	mean /= float64(len(signal))

	centered := make([]float64, len(signal))
	for i, v := range signal {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps, nil
}

// DominantPeriod returns the period, in the units of dt, of the strongest
// non-constant component of signal.
func DominantPeriod(signal []float64, dt float64) (float64, error) {
	ps, err := PowerSpectrum(signal)
	if err != nil {
		return 0, err
	}

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] < 1e-12 {
		return 0, ErrNoOscillation
	}
	return float64(len(signal)) * dt / float64(best), nil
}

// PeakToPeak is the spread of xs.
func PeakToPeak(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	lo, hi := xs[0], xs[0]
	for _, v := range xs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}
