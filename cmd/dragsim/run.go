package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/dragsim/internal/config"
	"github.com/san-kum/dragsim/internal/experiment"
	"github.com/san-kum/dragsim/internal/plot"
	"github.com/san-kum/dragsim/internal/sim"
	"github.com/san-kum/dragsim/internal/storage"
	"github.com/san-kum/dragsim/internal/tui"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [label]",
		Short: "run one closed-loop simulation and report its settling time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(cmd)
	cmd.Flags().BoolVar(&pngOut, "png", false, "write velocity and error figures")
	cmd.Flags().StringVar(&outDir, "out", "output", "figure output directory")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&live, "live", false, "draw a live velocity gauge while running")
	cmd.Flags().IntVar(&frameRate, "fps", 0, "live frame rate (0 draws every step)")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "run")
	if err != nil {
		return err
	}

	label := runLabel(args, cfg)
	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}

	log.Info().
		Float64("mass", cfg.Vehicle.Mass).
		Float64("v0", cfg.Vehicle.InitialVelocity).
		Float64("target", cfg.TargetVelocity).
		Float64("band", cfg.ErrorBand).
		Float64("k", cfg.Vehicle.DragCoefficient).
		Float64("sim_time", cfg.SimTime).
		Str("controller", exp.Describe()).
		Msg("starting simulation")

	if live {
		span := math.Max(math.Abs(cfg.Vehicle.InitialVelocity), math.Abs(cfg.TargetVelocity)) * 1.2
		r := tui.NewLiveRenderer(os.Stdout, cfg.TargetVelocity, cfg.ErrorBand, span, frameRate)
		exp.Simulation().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	res := exp.Run()
	printSummary(os.Stdout, label, exp.Describe(), res)

	if !noSave {
		id, err := saveRun(cfg, label, exp.Describe(), res)
		if err != nil {
			return err
		}
		log.Info().Str("id", id).Msg("run stored")
		fmt.Printf("saved: %s\n", id)
	}

	if pngOut {
		return writeRunFigures(cfg, res, nil, log)
	}
	return nil
}

func runLabel(args []string, cfg *config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	if preset != "" {
		return preset
	}
	return cfg.Controller.Type
}

func saveRun(cfg *config.Config, label, ctrl string, res sim.Result) (string, error) {
	st := storage.New(cfg.Output.DataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(storage.RunInfo{
		Label:           label,
		Controller:      ctrl,
		Mass:            cfg.Vehicle.Mass,
		InitialVelocity: cfg.Vehicle.InitialVelocity,
		DragCoefficient: cfg.Vehicle.DragCoefficient,
	}, res)
}

func printSummary(w io.Writer, label, ctrl string, res sim.Result) {
	fmt.Fprintf(w, "%s  %s\n", label, ctrl)
	fmt.Fprintf(w, "  steps:         %d\n", res.Steps)
	if len(res.Velocities) > 0 {
		fmt.Fprintf(w, "  final v:       %.4f m/s (target %g)\n", res.Velocities[len(res.Velocities)-1], res.TargetVelocity)
	}
	if res.Settled() {
		fmt.Fprintf(w, "  settling time: %gs (band ±%g%%)\n", res.SettlingTime, res.ErrorThreshold)
	} else {
		fmt.Fprintf(w, "  settling time: not settled (band ±%g%%)\n", res.ErrorThreshold)
	}

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %.4g\n", name+":", res.Metrics[name])
	}
}

// velocityFigureName follows the classic output names: Ziegler-Nichols runs
// are suffixed with their rule.
func velocityFigureName(cfg *config.Config) string {
	switch cfg.Controller.Type {
	case config.ControllerNone:
		return "velocity_profile_no_control.png"
	case config.ControllerZieglerNichols:
		return fmt.Sprintf("velocity_profile_%s_ZN.png", strings.ToUpper(cfg.Controller.Tuning.Mode))
	}
	return "velocity_profile.png"
}

func settlingCaption(res sim.Result) string {
	if !res.Settled() {
		return fmt.Sprintf("not settled, error band %g%%", res.ErrorThreshold)
	}
	return fmt.Sprintf("settling time %gs, error band %g%%", res.SettlingTime, res.ErrorThreshold)
}

// writeRunFigures draws the velocity profile (with an optional reference run
// underneath), the error profile and its ±2% zoom.
func writeRunFigures(cfg *config.Config, res sim.Result, reference *sim.Result, log zerolog.Logger) error {
	dir := cfg.Output.Dir
	series := make([]plot.Series, 0, 2)
	if reference != nil {
		series = append(series, plot.VelocitySeries("Velocity profile without controller", *reference))
	}
	series = append(series, plot.VelocitySeries(fmt.Sprintf("Velocity profile (%s)", cfg.Controller.Type), res))

	velPath := filepath.Join(dir, velocityFigureName(cfg))
	title := fmt.Sprintf("Vehicle velocity (%s)", settlingCaption(res))
	if err := plot.VelocityPNG(velPath, series, res.TargetVelocity, plot.Options{Title: title}); err != nil {
		return fmt.Errorf("velocity figure: %w", err)
	}

	errPath := filepath.Join(dir, "error_profile.png")
	title = fmt.Sprintf("Vehicle velocity error (%s)", settlingCaption(res))
	if err := plot.ErrorPNG(errPath, res, nil, plot.Options{Title: title}); err != nil {
		return fmt.Errorf("error figure: %w", err)
	}
	zoomPath := filepath.Join(dir, "error_profile_zoom.png")
	if err := plot.ErrorPNG(zoomPath, res, &[2]float64{-2, 2}, plot.Options{Title: title}); err != nil {
		return fmt.Errorf("error zoom figure: %w", err)
	}

	log.Info().Strs("files", []string{velPath, errPath, zoomPath}).Msg("figures written")
	return nil
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "compare the uncontrolled vehicle with the configured controller",
		Args:  cobra.NoArgs,
		RunE:  compareControllers,
	}
	addModelFlags(cmd)
	cmd.Flags().BoolVar(&pngOut, "png", false, "write velocity and error figures")
	cmd.Flags().StringVar(&outDir, "out", "output", "figure output directory")
	return cmd
}

func compareControllers(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, "compare")
	if err != nil {
		return err
	}

	open := cfg.Clone()
	open.Controller.Type = config.ControllerNone
	openExp, err := experiment.New(open, registry)
	if err != nil {
		return err
	}
	openRes := openExp.Run()

	if cfg.Controller.Type == config.ControllerNone {
		cfg.Controller.Type = config.ControllerPID
	}
	ctrlExp, err := experiment.New(cfg, registry)
	if err != nil {
		return err
	}
	ctrlRes := ctrlExp.Run()

	printSummary(os.Stdout, "without controller", openExp.Describe(), openRes)
	fmt.Println()
	printSummary(os.Stdout, "with controller", ctrlExp.Describe(), ctrlRes)

	if pngOut {
		if err := writeRunFigures(open, openRes, nil, log); err != nil {
			return err
		}
		return writeRunFigures(cfg, ctrlRes, &openRes, log)
	}
	return nil
}
