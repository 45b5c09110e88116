package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dragsim/internal/sim"
)

// IAE is the integral of the absolute tracking error, in m.
type IAE struct {
	name string
	dt   float64
	abs  []float64
}

func NewIAE(dt float64) *IAE {
	return &IAE{name: "iae", dt: dt}
}

func (m *IAE) Name() string { return m.name }

func (m *IAE) Observe(s sim.Step) {
	m.abs = append(m.abs, math.Abs(s.Error))
}

func (m *IAE) Value() float64 {
	return floats.Sum(m.abs) * m.dt
}

func (m *IAE) Reset() {
	m.abs = m.abs[:0]
}

// PeakOvershoot is the largest excursion past the setpoint, in percent of
// the target, measured against the direction of the initial error.
type PeakOvershoot struct {
	name      string
	direction float64
	peak      float64
	samples   int
}

func NewPeakOvershoot() *PeakOvershoot {
	return &PeakOvershoot{name: "overshoot"}
}

func (m *PeakOvershoot) Name() string { return m.name }

func (m *PeakOvershoot) Observe(s sim.Step) {
	if m.samples == 0 {
		switch {
		case s.ErrorPct > 0:
			m.direction = 1
		case s.ErrorPct < 0:
			m.direction = -1
		}
	}
	m.samples++

	if m.direction == 0 {
		return
	}
	if over := -s.ErrorPct * m.direction; over > m.peak {
		m.peak = over
	}
}

func (m *PeakOvershoot) Value() float64 { return m.peak }

func (m *PeakOvershoot) Reset() {
	m.direction = 0
	m.peak = 0
	m.samples = 0
}
