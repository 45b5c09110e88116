package sweep

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/sim"
)

// Builder creates a simulation for a vehicle starting at v0, driven by ctrl.
type Builder func(v0 float64, ctrl control.Controller) (*sim.Simulation, error)

// Point is the outcome of one run of a sweep.
type Point struct {
	InitialVelocity float64    `json:"initial_velocity"`
	SettlingTime    float64    `json:"settling_time"`
	Result          sim.Result `json:"-"`
}

type Sweep struct {
	Build  Builder
	Logger zerolog.Logger
}

func New(build Builder, logger zerolog.Logger) *Sweep {
	return &Sweep{Build: build, Logger: logger}
}

// Arange returns start, start+step, ... up to but excluding stop.
func Arange(start, stop, step float64) []float64 {
	if step == 0 || math.IsNaN(step) {
		return nil
	}
	n := math.Ceil((stop - start) / step)
	if !(n > 0) {
		return []float64{}
	}
	out := make([]float64, int(n))
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Run simulates every initial velocity in order with the shared controller,
// resetting it before each run. The context is checked between runs.
func (s *Sweep) Run(ctx context.Context, ctrl control.Controller, v0s []float64) ([]Point, error) {
	points := make([]Point, 0, len(v0s))

	for _, v0 := range v0s {
		if err := ctx.Err(); err != nil {
			return points, err
		}

		if r, ok := ctrl.(control.Resettable); ok {
			r.Reset()
		}

		p, err := s.runOne(v0, ctrl)
		if err != nil {
			return points, err
		}
		points = append(points, p)
	}

	s.logSummary(points)
	return points, nil
}

// RunParallel simulates every initial velocity with its own controller from
// factory, using up to workers goroutines. Points keep the order of v0s.
func (s *Sweep) RunParallel(ctx context.Context, factory func() (control.Controller, error), v0s []float64, workers int) ([]Point, error) {
	if workers < 1 {
		workers = 1
	}
	if workers > len(v0s) {
		workers = len(v0s)
	}

	points := make([]Point, len(v0s))
	errs := make([]error, len(v0s))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				ctrl, err := factory()
				if err != nil {
					errs[idx] = fmt.Errorf("v0=%v: build controller: %w", v0s[idx], err)
					continue
				}
				points[idx], errs[idx] = s.runOne(v0s[idx], ctrl)
			}
		}()
	}

feed:
	for i := range v0s {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	s.logSummary(points)
	return points, nil
}

func (s *Sweep) runOne(v0 float64, ctrl control.Controller) (Point, error) {
	sm, err := s.Build(v0, ctrl)
	if err != nil {
		return Point{}, fmt.Errorf("v0=%v: %w", v0, err)
	}
	sm.Run()
	res := sm.Result()

	s.Logger.Debug().
		Float64("v0", v0).
		Float64("settling_time", res.SettlingTime).
		Int("steps", res.Steps).
		Msg("sweep run finished")

	return Point{
		InitialVelocity: v0,
		SettlingTime:    res.SettlingTime,
		Result:          res,
	}, nil
}

func (s *Sweep) logSummary(points []Point) {
	settled := Settled(points)
	s.Logger.Info().
		Int("runs", len(points)).
		Int("settled", len(settled)).
		Msg("robustness sweep completed")
}

// Settled returns the points that reached a settling time.
func Settled(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.SettlingTime != sim.NotSettled {
			out = append(out, p)
		}
	}
	return out
}

// Curve splits points into parallel initial velocity and settling time slices.
func Curve(points []Point) (v0s, ts []float64) {
	v0s = make([]float64, len(points))
	ts = make([]float64, len(points))
	for i, p := range points {
		v0s[i] = p.InitialVelocity
		ts[i] = p.SettlingTime
	}
	return v0s, ts
}
