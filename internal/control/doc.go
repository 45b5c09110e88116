// Package control provides discrete feedback controllers for the vehicle
// simulation.
//
// Every controller turns the current tracking error into a force command
// through the [Controller] interface:
//
//   - [PID]: discrete Proportional-Integral-Derivative controller
//   - [None]: open-loop stand-in that always commands zero force
//
// # Usage
//
//	pid, _ := control.NewPID(0.28, 0.12, 0.05, 1.0) // Kp, Ki, Kd, Ts
//	force := pid.Update(target - velocity)
//
// A controller may be shared by several sequential simulations as long as
// the caller invokes Reset (see [Resettable]) between runs.
//
// Controllers implementing [Configurable] support live tuning.
package control
