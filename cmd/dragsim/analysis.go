package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/dragsim/internal/analysis"
	"github.com/san-kum/dragsim/internal/config"
	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/experiment"
	"github.com/san-kum/dragsim/internal/optim"
	"github.com/san-kum/dragsim/internal/plot"
	"github.com/san-kum/dragsim/internal/sim"
	"github.com/san-kum/dragsim/internal/sweep"
)

var (
	sweepStart float64
	sweepStop  float64
	sweepStep  float64

	ultimate bool
	kuRange  []float64
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "settling time as a function of the initial velocity",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addModelFlags(cmd)
	cmd.Flags().Float64Var(&sweepStart, "start", -50, "first initial velocity [m/s]")
	cmd.Flags().Float64Var(&sweepStop, "stop", 50, "stop velocity, excluded [m/s]")
	cmd.Flags().Float64Var(&sweepStep, "step", 5, "velocity step [m/s]")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "worker count; 0 reuses one controller sequentially")
	cmd.Flags().BoolVar(&asciiOut, "ascii", false, "print a terminal chart")
	cmd.Flags().BoolVar(&pngOut, "png", false, "write sweep figures")
	cmd.Flags().StringVar(&outDir, "out", "output", "figure output directory")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "sweep")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("start") {
		cfg.Sweep.Start = sweepStart
	}
	if cmd.Flags().Changed("stop") {
		cfg.Sweep.Stop = sweepStop
	}
	if cmd.Flags().Changed("step") {
		cfg.Sweep.Step = sweepStep
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Sweep.Parallel = parallel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	v0s := sweep.Arange(cfg.Sweep.Start, cfg.Sweep.Stop, cfg.Sweep.Step)
	sw := sweep.New(func(v0 float64, ctrl control.Controller) (*sim.Simulation, error) {
		return experiment.NewSimulation(cfg, v0, ctrl)
	}, log)

	log.Info().Int("runs", len(v0s)).Int("parallel", cfg.Sweep.Parallel).Msg("starting robustness analysis")

	var points []sweep.Point
	if cfg.Sweep.Parallel > 0 {
		points, err = sw.RunParallel(cmd.Context(), registry.Factory(cfg), v0s, cfg.Sweep.Parallel)
	} else {
		var ctrl control.Controller
		ctrl, err = registry.NewController(cfg)
		if err != nil {
			return err
		}
		points, err = sw.Run(cmd.Context(), ctrl, v0s)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "V0\tSETTLING\tFINAL V")
	for _, p := range points {
		settling := "-"
		if p.SettlingTime != sim.NotSettled {
			settling = fmt.Sprintf("%gs", p.SettlingTime)
		}
		final := "-"
		if n := len(p.Result.Velocities); n > 0 {
			final = fmt.Sprintf("%.4g", p.Result.Velocities[n-1])
		}
		fmt.Fprintf(w, "%g\t%s\t%s\n", p.InitialVelocity, settling, final)
	}
	w.Flush()
	fmt.Printf("\n%d/%d runs settled\n", len(sweep.Settled(points)), len(points))

	if asciiOut {
		fmt.Println()
		fmt.Println(plot.ASCIISettling(points))
	}

	if pngOut {
		series := make([]plot.Series, 0, len(points))
		for _, p := range sweep.Settled(points) {
			label := fmt.Sprintf("V_0: %gm/s - ts: %gs", p.InitialVelocity, p.SettlingTime)
			series = append(series, plot.VelocitySeries(label, p.Result))
		}
		respPath := filepath.Join(cfg.Output.Dir, "response_sensitivity.png")
		if len(series) > 0 {
			err := plot.VelocityPNG(respPath, series, cfg.TargetVelocity,
				plot.Options{Title: "Robustness analysis with respect to the initial velocity"})
			if err != nil {
				return fmt.Errorf("response figure: %w", err)
			}
		}

		v0s, tss := sweep.Curve(points)
		settlingPath := filepath.Join(cfg.Output.Dir, "settling_time.png")
		if err := plot.SettlingPNG(settlingPath, v0s, tss, plot.Options{}); err != nil {
			return fmt.Errorf("settling figure: %w", err)
		}
		log.Info().Strs("files", []string{respPath, settlingPath}).Msg("figures written")
	}

	log.Info().Msg("robustness analysis completed")
	return nil
}

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search PID gains for the fastest settling",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addModelFlags(cmd)
	cmd.Flags().Float64SliceVar(&kpRange, "kp-range", []float64{0.05, 0.6, 12}, "kp search as lo,hi,count")
	cmd.Flags().Float64SliceVar(&kiRange, "ki-range", []float64{0, 0.3, 7}, "ki search as lo,hi,count")
	cmd.Flags().Float64SliceVar(&kdRange, "kd-range", []float64{0, 0.2, 5}, "kd search as lo,hi,count")
	cmd.Flags().StringVar(&metric, "metric", optim.MetricSettlingTime, "objective to minimize")
	cmd.Flags().BoolVar(&ultimate, "ultimate", false, "estimate Ku and Tu and print Ziegler-Nichols gains instead")
	cmd.Flags().Float64SliceVar(&kuRange, "ku-range", []float64{0.1, 3, 59}, "proportional gains probed as lo,hi,count")
	return cmd
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "tune")
	if err != nil {
		return err
	}
	if ultimate {
		return estimateUltimate(cmd, cfg, log)
	}

	var ranges [3][]float64
	for i, r := range [][]float64{kpRange, kiRange, kdRange} {
		if len(r) != 3 {
			return fmt.Errorf("gain range needs lo,hi,count, got %v", r)
		}
		ranges[i] = optim.Span(r[0], r[1], int(r[2]))
	}

	grid := optim.NewGainGrid(ranges[0], ranges[1], ranges[2])
	log.Info().Int("candidates", grid.Size()).Str("metric", metric).Msg("starting gain search")

	best, err := grid.Search(cmd.Context(), func(params map[string]float64) (*sim.Simulation, error) {
		pid, err := control.NewPID(params["Kp"], params["Ki"], params["Kd"], cfg.Controller.Ts)
		if err != nil {
			return nil, err
		}
		return experiment.NewSimulation(cfg, cfg.Vehicle.InitialVelocity, pid)
	}, metric)
	if err != nil {
		return err
	}

	fmt.Printf("best: %s\n", best)
	fmt.Printf("use: --controller %s --kp %g --ki %g --kd %g\n",
		config.ControllerPID, best.Params["Kp"], best.Params["Ki"], best.Params["Kd"])
	return nil
}

func estimateUltimate(cmd *cobra.Command, cfg *config.Config, log zerolog.Logger) error {
	if len(kuRange) != 3 {
		return fmt.Errorf("ku range needs lo,hi,count, got %v", kuRange)
	}
	gains := optim.Span(kuRange[0], kuRange[1], int(kuRange[2]))
	log.Info().Int("gains", len(gains)).Msg("probing proportional loop for sustained oscillation")

	u, err := analysis.EstimateUltimate(cmd.Context(), func(kp float64) (*sim.Simulation, error) {
		pid, err := control.NewPID(kp, 0, 0, cfg.Controller.Ts)
		if err != nil {
			return nil, err
		}
		return experiment.NewSimulation(cfg, cfg.Vehicle.InitialVelocity, pid)
	}, gains)
	if err != nil {
		return err
	}

	fmt.Printf("ultimate gain Ku=%.4g, period Tu=%.4gs\n", u.Ku, u.Tu)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RULE\tKP\tKI\tKD")
	for _, mode := range []string{control.ModeP, control.ModePI, control.ModePID} {
		g, err := control.ZieglerNichols(mode, u.Ku, u.Tu)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\n", mode, g.Kp, g.Ki, g.Kd)
	}
	return w.Flush()
}
