// Package vehicle models a one-dimensional point vehicle subject to
// quadratic aerodynamic drag.
//
// The drag force always opposes motion:
//
//	F_drag = -sign(v) * k * v²
//
// [Vehicle.Update] is a pure state-transition function: it returns the
// velocity after one explicit Euler step but never stores it. The caller
// commits the returned value with [Vehicle.SetVelocity], which lets a
// simulation record the pre-update sample first.
//
//	v, _ := vehicle.New(1.0, 10.0, 0.05) // mass, initial velocity, k
//	next := v.Update(0, 1.0)           // force, dt
//	v.SetVelocity(next)
package vehicle
