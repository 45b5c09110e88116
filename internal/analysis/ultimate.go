package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dragsim/internal/sim"
)

var ErrNoUltimateGain = errors.New("analysis: no gain produced a sustained oscillation")

// Ultimate holds the ultimate gain and the oscillation period at that gain.
type Ultimate struct {
	Ku float64 `json:"ku"`
	Tu float64 `json:"tu"`
}

// Oscillation criteria. The last quarter of the error must keep at least
// half the peak-to-peak amplitude of the third quarter, and that amplitude
// must exceed minAmplitude percent.
const (
	sustainRatio = 0.5
	minAmplitude = 1.0
)

// Sustained reports whether the recorded error percentages end in a
// sustained oscillation.
func Sustained(errs []float64) bool {
	n := len(errs)
	if n < 4*minSamples {
		return false
	}
	for _, v := range errs[n/2:] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	q := n / 4
	a3 := PeakToPeak(errs[2*q : 3*q])
	a4 := PeakToPeak(errs[3*q:])
	return a4 > minAmplitude && a4 >= sustainRatio*a3
}

// EstimateUltimate runs a proportional-only loop for each gain in ascending
// order and returns the first one that oscillates without diverging. Tu is
// the dominant period of the second half of that run's error.
func EstimateUltimate(ctx context.Context, build func(kp float64) (*sim.Simulation, error), gains []float64) (Ultimate, error) {
	for _, kp := range gains {
		if err := ctx.Err(); err != nil {
			return Ultimate{}, err
		}

		s, err := build(kp)
		if err != nil {
			return Ultimate{}, fmt.Errorf("kp=%g: %w", kp, err)
		}
		s.Run()

		errs := s.Errors()
		if !Sustained(errs) {
			continue
		}

		tu, err := DominantPeriod(errs[len(errs)/2:], s.Dt())
		if err != nil {
			return Ultimate{}, fmt.Errorf("kp=%g: %w", kp, err)
		}
		return Ultimate{Ku: kp, Tu: tu}, nil
	}
	return Ultimate{}, ErrNoUltimateGain
}
