package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/sim"
	"github.com/san-kum/dragsim/internal/vehicle"
)

func TestDominantPeriod(t *testing.T) {
	signal := make([]float64, 64)
	for i := range signal {
		signal[i] = 3 + math.Sin(2*math.Pi*float64(i)/8)
	}

	period, err := DominantPeriod(signal, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, period, 1e-9)
}

func TestDominantPeriodErrors(t *testing.T) {
	_, err := DominantPeriod([]float64{1, 2}, 1)
	assert.ErrorIs(t, err, ErrTooShort)

	_, err = DominantPeriod([]float64{1, 2, math.NaN(), 4}, 1)
	assert.ErrorIs(t, err, ErrNonFinite)

	_, err = DominantPeriod([]float64{2, 2, 2, 2, 2, 2}, 1)
	assert.ErrorIs(t, err, ErrNoOscillation)
}

func TestSustained(t *testing.T) {
	alternating := make([]float64, 40)
	decaying := make([]float64, 40)
	for i := range alternating {
		sign := float64(1 - 2*(i%2))
		alternating[i] = 10 * sign
		decaying[i] = 10 * sign * math.Pow(0.8, float64(i))
	}

	assert.True(t, Sustained(alternating))
	assert.False(t, Sustained(decaying))
	assert.False(t, Sustained(alternating[:8]))

	alternating[39] = math.Inf(1)
	assert.False(t, Sustained(alternating))
}

func proportional(kp float64) (*sim.Simulation, error) {
	pid, err := control.NewPID(kp, 0, 0, 1)
	if err != nil {
		return nil, err
	}
	v, err := vehicle.New(1, 10, 0.05)
	if err != nil {
		return nil, err
	}
	return sim.New(v, pid, sim.Config{TargetVelocity: 5, Dt: 1, Duration: 100, ErrorThreshold: 1})
}

func TestEstimateUltimate(t *testing.T) {
	gains := floats.Span(make([]float64, 31), 0.5, 2.0)

	u, err := EstimateUltimate(context.Background(), proportional, gains)
	require.NoError(t, err)
	assert.InDelta(t, 1.55, u.Ku, 1e-9)
	assert.InDelta(t, 2.0, u.Tu, 1e-9)
}

func TestEstimateUltimateNotFound(t *testing.T) {
	_, err := EstimateUltimate(context.Background(), proportional, []float64{0.28, 0.5})
	assert.ErrorIs(t, err, ErrNoUltimateGain)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = EstimateUltimate(ctx, proportional, []float64{1})
	assert.ErrorIs(t, err, context.Canceled)
}
