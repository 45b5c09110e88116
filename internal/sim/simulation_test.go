package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/sim"
	"github.com/san-kum/dragsim/internal/vehicle"
)

type recorder struct {
	steps []sim.Step
}

func (r *recorder) OnStep(s sim.Step) { r.steps = append(r.steps, s) }

type countMetric struct {
	n      int
	resets int
}

func (c *countMetric) Name() string     { return "count" }
func (c *countMetric) Observe(sim.Step) { c.n++ }
func (c *countMetric) Value() float64   { return float64(c.n) }
func (c *countMetric) Reset()           { c.n = 0; c.resets++ }

func baseline() sim.Config {
	return sim.Config{TargetVelocity: 5, Dt: 1, Duration: 50, ErrorThreshold: 1}
}

func newVehicle(v0 float64) *vehicle.Vehicle {
	v, err := vehicle.New(1, v0, 0.05)
	Expect(err).NotTo(HaveOccurred())
	return v
}

func newPID() *control.PID {
	pid, err := control.NewPID(0.28, 0.12, 0.05, 1)
	Expect(err).NotTo(HaveOccurred())
	return pid
}

var _ = Describe("Simulation", func() {
	Describe("New", func() {
		It("stores the configuration as given", func() {
			v := newVehicle(10)
			ctrl := control.NewNone()
			cfg := sim.Config{TargetVelocity: 10, Dt: 1, Duration: 100, ErrorThreshold: 1}

			s, err := sim.New(v, ctrl, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Vehicle()).To(BeIdenticalTo(v))
			Expect(s.Controller()).To(BeIdenticalTo(ctrl))
			Expect(s.TargetVelocity()).To(Equal(10.0))
			Expect(s.Dt()).To(Equal(1.0))
			Expect(s.Duration()).To(Equal(100.0))
			Expect(s.ErrorThreshold()).To(Equal(1.0))
			Expect(s.Len()).To(BeZero())
		})

		It("accepts any target velocity and threshold", func() {
			_, err := sim.New(newVehicle(1), control.NewNone(), sim.Config{TargetVelocity: -3, Dt: 0.5, Duration: 1, ErrorThreshold: -2})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects missing collaborators", func() {
			_, err := sim.New(nil, control.NewNone(), baseline())
			Expect(err).To(MatchError(sim.ErrNilVehicle))

			_, err = sim.New(newVehicle(1), nil, baseline())
			Expect(err).To(MatchError(sim.ErrNilController))
		})

		DescribeTable("rejects invalid timing",
			func(dt, duration float64, want error, field string) {
				cfg := baseline()
				cfg.Dt = dt
				cfg.Duration = duration

				s, err := sim.New(newVehicle(1), control.NewNone(), cfg)
				Expect(s).To(BeNil())
				Expect(errors.Is(err, want)).To(BeTrue())

				var cerr *sim.ConfigError
				Expect(errors.As(err, &cerr)).To(BeTrue())
				Expect(cerr.Field).To(Equal(field))
			},
			Entry("zero dt", 0.0, 10.0, sim.ErrInvalidStep, "dt"),
			Entry("negative dt", -0.1, 10.0, sim.ErrInvalidStep, "dt"),
			Entry("NaN dt", math.NaN(), 10.0, sim.ErrInvalidStep, "dt"),
			Entry("zero duration", 0.1, 0.0, sim.ErrInvalidDuration, "sim_time"),
			Entry("negative duration", 0.1, -1.0, sim.ErrInvalidDuration, "sim_time"),
			Entry("infinite duration", 0.1, math.Inf(1), sim.ErrInvalidDuration, "sim_time"),
		)
	})

	Describe("Run", func() {
		It("records one sample per step in lockstep", func() {
			s, err := sim.New(newVehicle(10), newPID(), baseline())
			Expect(err).NotTo(HaveOccurred())
			s.Run()

			Expect(s.Times()).To(HaveLen(50))
			Expect(s.Velocities()).To(HaveLen(50))
			Expect(s.Errors()).To(HaveLen(50))
			Expect(s.Forces()).To(HaveLen(50))
			Expect(s.Times()[0]).To(Equal(0.0))
			Expect(s.Times()[49]).To(Equal(49.0))
		})

		It("records the pre-update velocity and the error relative to the target", func() {
			s, _ := sim.New(newVehicle(10), newPID(), baseline())
			s.Run()

			v := s.Velocities()
			e := s.Errors()
			Expect(v[0]).To(Equal(10.0))
			Expect(e[0]).To(Equal(-100.0))
			// F = -5*0.28 + -5*0.12 = -2.0, drag = -5 -> v = 10 - 7
			Expect(v[1]).To(BeNumerically("~", 3.0, 1e-12))
			for i := range v {
				Expect(e[i]).To(BeNumerically("~", (5-v[i])/5*100, 1e-9))
			}
		})

		It("accumulates time with floating-point steps", func() {
			cfg := sim.Config{TargetVelocity: 5, Dt: 0.1, Duration: 1, ErrorThreshold: 1}
			s, _ := sim.New(newVehicle(10), newPID(), cfg)
			s.Run()

			// 0.1 summed ten times stays just below 1.0, so an extra sample is taken.
			Expect(s.Len()).To(Equal(11))
		})

		It("propagates a zero target as a non-finite error", func() {
			cfg := sim.Config{TargetVelocity: 0, Dt: 1, Duration: 3, ErrorThreshold: 1}
			s, _ := sim.New(newVehicle(2), control.NewNone(), cfg)
			s.Run()

			for _, e := range s.Errors() {
				Expect(math.IsInf(e, -1)).To(BeTrue())
			}
			Expect(s.SettlingTime()).To(Equal(sim.NotSettled))
		})

		It("is deterministic across fresh instances", func() {
			a, _ := sim.New(newVehicle(10), newPID(), baseline())
			b, _ := sim.New(newVehicle(10), newPID(), baseline())
			a.Run()
			b.Run()

			Expect(a.Times()).To(Equal(b.Times()))
			Expect(a.Velocities()).To(Equal(b.Velocities()))
			Expect(a.Errors()).To(Equal(b.Errors()))
		})

		It("reproduces a run when a shared controller is reset", func() {
			pid := newPID()
			a, _ := sim.New(newVehicle(10), pid, baseline())
			a.Run()

			pid.Reset()
			b, _ := sim.New(newVehicle(10), pid, baseline())
			b.Run()

			Expect(b.Velocities()).To(Equal(a.Velocities()))
		})

		It("leaks controller memory when a shared controller is not reset", func() {
			pid := newPID()
			a, _ := sim.New(newVehicle(10), pid, baseline())
			a.Run()

			b, _ := sim.New(newVehicle(10), pid, baseline())
			b.Run()

			Expect(b.Velocities()).NotTo(Equal(a.Velocities()))
		})

		It("appends when run again", func() {
			s, _ := sim.New(newVehicle(10), newPID(), baseline())
			s.Run()
			s.Run()

			Expect(s.Len()).To(Equal(100))
			Expect(s.Times()[50]).To(Equal(0.0))
		})

		It("notifies observers and metrics every step", func() {
			s, _ := sim.New(newVehicle(10), newPID(), sim.Config{TargetVelocity: 5, Dt: 1, Duration: 5, ErrorThreshold: 1})
			rec := &recorder{}
			m := &countMetric{}
			s.AddObserver(rec)
			s.AddMetric(m)
			s.Run()

			Expect(rec.steps).To(HaveLen(5))
			Expect(rec.steps[0].Index).To(Equal(0))
			Expect(rec.steps[0].Velocity).To(Equal(10.0))
			Expect(rec.steps[0].Error).To(Equal(-5.0))
			Expect(rec.steps[0].Force).To(Equal(s.Forces()[0]))
			Expect(m.resets).To(Equal(1))
			Expect(s.Metrics()).To(HaveKeyWithValue("count", 5.0))
		})

		It("returns copies of the recorded sequences", func() {
			s, _ := sim.New(newVehicle(10), newPID(), baseline())
			s.Run()

			times := s.Times()
			times[0] = 99
			Expect(s.Times()[0]).To(Equal(0.0))
		})
	})

	Describe("SettlingTime", func() {
		It("finds the settling time of the baseline PID response", func() {
			s, _ := sim.New(newVehicle(10), newPID(), baseline())
			s.Run()

			Expect(s.SettlingTime()).To(Equal(21.0))

			res := s.Result()
			Expect(res.Settled()).To(BeTrue())
			Expect(res.SettlingTime).To(Equal(21.0))
			Expect(res.Steps).To(Equal(50))
		})

		It("never settles without a controller", func() {
			s, _ := sim.New(newVehicle(10), control.NewNone(), baseline())
			s.Run()

			Expect(s.SettlingTime()).To(Equal(sim.NotSettled))
		})

		It("reports a diverged run as not settled", func() {
			s, _ := sim.New(newVehicle(-50), newPID(), baseline())
			s.Run()

			errs := s.Errors()
			Expect(math.IsNaN(errs[len(errs)-1])).To(BeTrue())
			Expect(s.SettlingTime()).To(Equal(sim.NotSettled))
		})

		It("returns the sentinel before Run", func() {
			s, _ := sim.New(newVehicle(10), newPID(), baseline())
			Expect(s.SettlingTime()).To(Equal(sim.NotSettled))
		})
	})
})
