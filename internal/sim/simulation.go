package sim

import (
	"math"

	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/vehicle"
)

const maxPrealloc = 1 << 20

type Simulation struct {
	vehicle    *vehicle.Vehicle
	controller control.Controller
	cfg        Config

	times      []float64
	velocities []float64
	errors     []float64
	forces     []float64

	metrics   []Metric
	observers []Observer
	values    map[string]float64
}

// New validates the configuration and returns a simulation that owns v.
// The controller may be shared with other simulations.
func New(v *vehicle.Vehicle, c control.Controller, cfg Config) (*Simulation, error) {
	if c == nil {
		return nil, ErrNilController
	}
	if v == nil {
		return nil, ErrNilVehicle
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Simulation{
		vehicle:    v,
		controller: c,
		cfg:        cfg,
		times:      make([]float64, 0),
		velocities: make([]float64, 0),
		errors:     make([]float64, 0),
		forces:     make([]float64, 0),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		values:     make(map[string]float64),
	}, nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return &ConfigError{Field: "dt", Value: cfg.Dt, Err: ErrInvalidStep}
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 1) {
		return &ConfigError{Field: "sim_time", Value: cfg.Duration, Err: ErrInvalidDuration}
	}
	return nil
}

func (s *Simulation) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances the simulation from t = 0 while t < Duration. Time is
// accumulated as t += Dt, so a non-integer Dt may yield one sample more or
// less than Duration/Dt. Recorded sequences are only ever appended to.
func (s *Simulation) Run() {
	s.grow()

	for _, m := range s.metrics {
		m.Reset()
	}

	target := s.cfg.TargetVelocity
	dt := s.cfg.Dt
	t := 0.0

	for t < s.cfg.Duration {
		vel := s.vehicle.Velocity()
		s.times = append(s.times, t)
		s.velocities = append(s.velocities, vel)

		err := target - vel
		force := s.controller.Update(err)

		// target == 0 yields a non-finite percentage; SettlingTime handles it.
		pct := err / target * 100
		s.errors = append(s.errors, pct)
		s.forces = append(s.forces, force)

		if len(s.metrics) > 0 || len(s.observers) > 0 {
			step := Step{
				Index:    len(s.times) - 1,
				Time:     t,
				Velocity: vel,
				Error:    err,
				ErrorPct: pct,
				Force:    force,
			}
			for _, m := range s.metrics {
				m.Observe(step)
			}
			for _, obs := range s.observers {
				obs.OnStep(step)
			}
		}

		s.vehicle.SetVelocity(s.vehicle.Update(force, dt))
		t += dt
	}

	for _, m := range s.metrics {
		s.values[m.Name()] = m.Value()
	}
}

func (s *Simulation) grow() {
	steps := math.Ceil(s.cfg.Duration / s.cfg.Dt)
	if steps > maxPrealloc {
		steps = maxPrealloc
	}
	n := int(steps) + 1
	if cap(s.times)-len(s.times) >= n {
		return
	}
	s.times = append(make([]float64, 0, len(s.times)+n), s.times...)
	s.velocities = append(make([]float64, 0, len(s.velocities)+n), s.velocities...)
	s.errors = append(make([]float64, 0, len(s.errors)+n), s.errors...)
	s.forces = append(make([]float64, 0, len(s.forces)+n), s.forces...)
}

// SettlingTime returns the time after which the error stays inside
// ±ErrorThreshold percent until the end of the run, or NotSettled.
func (s *Simulation) SettlingTime() float64 {
	return SettlingTime(s.times, s.errors, s.cfg.ErrorThreshold)
}

// SettlingTime finds the last sample whose error magnitude exceeds thr and
// returns its time. It returns NotSettled when no sample exceeds thr, when
// the final sample still exceeds it, or when the final error is not finite.
func SettlingTime(times, errs []float64, thr float64) float64 {
	n := len(errs)
	if n == 0 || len(times) < n {
		return NotSettled
	}

	last := errs[n-1]
	if math.IsNaN(last) || math.IsInf(last, 0) || math.Abs(last) > thr {
		return NotSettled
	}

	for i := n - 1; i >= 0; i-- {
		if math.Abs(errs[i]) > thr {
			return times[i]
		}
	}
	return NotSettled
}

func (s *Simulation) Len() int { return len(s.times) }

func (s *Simulation) Times() []float64      { return clone(s.times) }
func (s *Simulation) Velocities() []float64 { return clone(s.velocities) }
func (s *Simulation) Errors() []float64     { return clone(s.errors) }
func (s *Simulation) Forces() []float64     { return clone(s.forces) }

func (s *Simulation) TargetVelocity() float64 { return s.cfg.TargetVelocity }
func (s *Simulation) ErrorThreshold() float64 { return s.cfg.ErrorThreshold }
func (s *Simulation) Dt() float64             { return s.cfg.Dt }
func (s *Simulation) Duration() float64       { return s.cfg.Duration }
func (s *Simulation) Config() Config          { return s.cfg }

func (s *Simulation) Vehicle() *vehicle.Vehicle      { return s.vehicle }
func (s *Simulation) Controller() control.Controller { return s.controller }

// Metrics returns the metric values collected by the last Run.
func (s *Simulation) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Simulation) Result() Result {
	return Result{
		Times:          s.Times(),
		Velocities:     s.Velocities(),
		Errors:         s.Errors(),
		Forces:         s.Forces(),
		TargetVelocity: s.cfg.TargetVelocity,
		ErrorThreshold: s.cfg.ErrorThreshold,
		Dt:             s.cfg.Dt,
		Duration:       s.cfg.Duration,
		SettlingTime:   s.SettlingTime(),
		Metrics:        s.Metrics(),
		Steps:          len(s.times),
	}
}

func clone(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	return out
}
