package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dragsim/internal/sim"
)

// ControlEffort is the mean absolute force commanded per step.
type ControlEffort struct {
	name   string
	forces []float64
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(s sim.Step) {
	c.forces = append(c.forces, s.Force)
}

func (c *ControlEffort) Value() float64 {
	if len(c.forces) == 0 {
		return 0
	}
	return floats.Norm(c.forces, 1) / float64(len(c.forces))
}

func (c *ControlEffort) Reset() {
	c.forces = c.forces[:0]
}
