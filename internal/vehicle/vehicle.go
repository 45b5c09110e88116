package vehicle

import (
	"errors"
	"fmt"
)

const (
	DefaultMass            = 1.0
	DefaultDragCoefficient = 0.05
)

var (
	// ErrInvalidMass indicates a mass that is not strictly positive.
	ErrInvalidMass = errors.New("vehicle: mass must be positive")

	// ErrNegativeDrag indicates a negative drag coefficient.
	ErrNegativeDrag = errors.New("vehicle: drag coefficient cannot be negative")
)

// Vehicle holds the mass [kg], velocity [m/s] and drag coefficient k [kg/m]
// of a point vehicle.
type Vehicle struct {
	mass     float64
	velocity float64
	k        float64
}

func New(mass, initialVelocity, k float64) (*Vehicle, error) {
	if !(mass > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidMass, mass)
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrNegativeDrag, k)
	}
	return &Vehicle{
		mass:     mass,
		velocity: initialVelocity,
		k:        k,
	}, nil
}

func (v *Vehicle) Mass() float64            { return v.mass }
func (v *Vehicle) Velocity() float64        { return v.velocity }
func (v *Vehicle) DragCoefficient() float64 { return v.k }

// SetVelocity commits a new velocity, usually the value returned by Update.
func (v *Vehicle) SetVelocity(vel float64) { v.velocity = vel }

// Drag returns the drag force acting on the vehicle at its current velocity.
// Zero velocity yields zero drag.
func (v *Vehicle) Drag() float64 {
	return -sign(v.velocity) * v.k * (v.velocity * v.velocity)
}

// Update returns the velocity after applying force for dt seconds. The
// stored velocity is left untouched.
func (v *Vehicle) Update(force, dt float64) float64 {
	acc := (force + v.Drag()) / v.mass
	return v.velocity + acc*dt
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	case x == 0:
		return 0
	}
	// NaN
	return x
}
