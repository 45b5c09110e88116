package metrics

import (
	"math"

	"github.com/san-kum/dragsim/internal/sim"
)

// DragLoss is the energy dissipated by drag over the run, in J.
type DragLoss struct {
	name string
	k    float64
	dt   float64
	loss float64
}

func NewDragLoss(k, dt float64) *DragLoss {
	return &DragLoss{name: "drag_loss", k: k, dt: dt}
}

func (d *DragLoss) Name() string { return d.name }

// Observe adds |F_drag * v| * dt = k|v|³dt.
func (d *DragLoss) Observe(s sim.Step) {
	v := math.Abs(s.Velocity)
	d.loss += d.k * v * v * v * d.dt
}

func (d *DragLoss) Value() float64 { return d.loss }

func (d *DragLoss) Reset() { d.loss = 0 }

// Default returns the standard metric set for a run.
func Default(k, dt, threshold float64) []sim.Metric {
	return []sim.Metric{
		NewControlEffort(),
		NewInBand(threshold),
		NewIAE(dt),
		NewPeakOvershoot(),
		NewDragLoss(k, dt),
	}
}
