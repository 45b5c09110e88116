// Package sweep runs the same closed loop from a range of initial
// velocities to assess how robust a controller is to its starting point.
//
// [Sweep.Run] reuses one controller and resets it before every run, the way
// a single physical controller would be re-armed. [Sweep.RunParallel] gives
// every run its own controller so runs never share integral or derivative
// memory.
package sweep
