// Package sim drives the closed-loop simulation of a [vehicle.Vehicle]
// under a [control.Controller].
//
// A [Simulation] runs a fixed-step loop from t = 0 while t < Duration,
// advancing t by accumulating Dt. Each step records the time, the
// pre-update velocity and the tracking error as a percentage of the target
// velocity, then commits the vehicle's next velocity.
//
//	v, _ := vehicle.New(1, 10, 0.05)
//	pid, _ := control.NewPID(0.28, 0.12, 0.05, 1)
//	s, _ := sim.New(v, pid, sim.Config{TargetVelocity: 5, Dt: 1, Duration: 50, ErrorThreshold: 1})
//	s.Run()
//	ts := s.SettlingTime()
//
// # Thread Safety
//
// A Simulation is NOT thread-safe. Controllers shared between sequential
// runs must be reset by the caller; parallel runs need independent
// controllers.
package sim
