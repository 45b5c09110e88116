package sweep_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/logging"
	"github.com/san-kum/dragsim/internal/sim"
	"github.com/san-kum/dragsim/internal/sweep"
	"github.com/san-kum/dragsim/internal/vehicle"
)

func builder(v0 float64, ctrl control.Controller) (*sim.Simulation, error) {
	v, err := vehicle.New(1, v0, 0.05)
	if err != nil {
		return nil, err
	}
	return sim.New(v, ctrl, sim.Config{TargetVelocity: 5, Dt: 1, Duration: 50, ErrorThreshold: 1})
}

func pidFactory() (control.Controller, error) {
	return control.NewPID(0.28, 0.12, 0.05, 1)
}

var _ = Describe("Arange", func() {
	It("excludes the stop value", func() {
		Expect(sweep.Arange(-50, 50, 5)).To(HaveLen(20))
		Expect(sweep.Arange(-50, 50, 5)[19]).To(Equal(45.0))
		Expect(sweep.Arange(0, 1, 0.3)).To(Equal([]float64{0, 0.3, 0.6, 0.8999999999999999}))
	})

	It("handles descending and empty ranges", func() {
		Expect(sweep.Arange(10, 0, -5)).To(Equal([]float64{10, 5}))
		Expect(sweep.Arange(0, 10, -1)).To(BeEmpty())
		Expect(sweep.Arange(0, 10, 0)).To(BeNil())
	})
})

var _ = Describe("Sweep", func() {
	var s *sweep.Sweep

	BeforeEach(func() {
		s = sweep.New(builder, logging.Nop())
	})

	It("reports settling time per initial velocity", func() {
		pid, _ := pidFactory()
		points, err := s.Run(context.Background(), pid, []float64{-50, 0, 10, 20})
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(4))

		_, ts := sweep.Curve(points)
		Expect(ts).To(Equal([]float64{sim.NotSettled, 5, 21, 12}))
		Expect(sweep.Settled(points)).To(HaveLen(3))
	})

	It("resets the shared controller between runs", func() {
		pid, _ := pidFactory()
		shared, err := s.Run(context.Background(), pid, []float64{10, 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(shared[1].Result.Velocities).To(Equal(shared[0].Result.Velocities))
	})

	It("matches the sequential sweep when run in parallel", func() {
		v0s := sweep.Arange(-50, 50, 5)
		pid, _ := pidFactory()
		seq, err := s.Run(context.Background(), pid, v0s)
		Expect(err).NotTo(HaveOccurred())

		par, err := s.RunParallel(context.Background(), pidFactory, v0s, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(par).To(HaveLen(len(seq)))
		for i := range seq {
			Expect(par[i].InitialVelocity).To(Equal(seq[i].InitialVelocity))
			Expect(par[i].SettlingTime).To(Equal(seq[i].SettlingTime))
		}
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		pid, _ := pidFactory()
		points, err := s.Run(ctx, pid, []float64{1, 2, 3})
		Expect(err).To(MatchError(context.Canceled))
		Expect(points).To(BeEmpty())

		_, err = s.RunParallel(ctx, pidFactory, []float64{1, 2, 3}, 2)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("surfaces build errors with the offending velocity", func() {
		boom := errors.New("boom")
		failing := sweep.New(func(v0 float64, ctrl control.Controller) (*sim.Simulation, error) {
			return nil, boom
		}, logging.Nop())

		_, err := failing.Run(context.Background(), control.NewNone(), []float64{7})
		Expect(errors.Is(err, boom)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("v0=7"))

		_, err = s.RunParallel(context.Background(), func() (control.Controller, error) {
			return nil, boom
		}, []float64{1}, 1)
		Expect(errors.Is(err, boom)).To(BeTrue())
	})
})
