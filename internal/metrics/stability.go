package metrics

import (
	"math"

	"github.com/san-kum/dragsim/internal/sim"
)

// InBand is the fraction of samples whose error percentage lies within
// ±threshold.
type InBand struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewInBand(threshold float64) *InBand {
	return &InBand{
		name:      "in_band",
		threshold: threshold,
	}
}

func (b *InBand) Name() string {
	return b.name
}

func (b *InBand) Observe(s sim.Step) {
	b.samples++
	if !(math.Abs(s.ErrorPct) <= b.threshold) {
		b.violations++
	}
}

func (b *InBand) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *InBand) Reset() {
	b.violations = 0
	b.samples = 0
}
