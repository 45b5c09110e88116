package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/dragsim/internal/config"
	"github.com/san-kum/dragsim/internal/experiment"
	"github.com/san-kum/dragsim/internal/logging"
	"github.com/san-kum/dragsim/internal/storage"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	logFormat  string

	preset string

	// Run overrides; only flags set on the command line are applied.
	mass       float64
	v0         float64
	drag       float64
	target     float64
	band       float64
	dt         float64
	simTime    float64
	controller string
	kp         float64
	ki         float64
	kd         float64
	ts         float64
	tuneMode   string

	pngOut    bool
	outDir    string
	noSave    bool
	live      bool
	frameRate int

	asciiOut bool
	parallel int

	kpRange []float64
	kiRange []float64
	kdRange []float64
	metric  string
)

var registry = experiment.NewRegistry()

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "dragsim",
		Short:        "velocity control lab for a vehicle under quadratic drag",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, console)")

	rootCmd.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		newSweepCmd(),
		newTuneCmd(),
		newScenarioCmd(),
		newListCmd(),
		newShowCmd(),
		newReplayCmd(),
		newExportJSONCmd(),
		newExportCSVCmd(),
		newPresetsCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// addModelFlags registers the flags that override vehicle, loop and
// controller settings.
func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "apply a named preset before flag overrides")
	f.Float64Var(&mass, "mass", config.DefaultMass, "vehicle mass [kg]")
	f.Float64Var(&v0, "v0", config.DefaultInitialVelocity, "initial velocity [m/s]")
	f.Float64Var(&drag, "drag", config.DefaultDragCoefficient, "drag coefficient [kg/m]")
	f.Float64Var(&target, "target", config.DefaultTargetVelocity, "target velocity [m/s]")
	f.Float64Var(&band, "band", config.DefaultErrorBand, "settling band [%]")
	f.Float64Var(&dt, "dt", config.DefaultDt, "integration step [s]")
	f.Float64Var(&simTime, "time", config.DefaultSimTime, "simulated time [s]")
	f.StringVar(&controller, "controller", config.ControllerPID, "controller (none, pid, zn)")
	f.Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	f.Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	f.Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	f.Float64Var(&ts, "ts", config.DefaultTs, "pid sampling time [s]")
	f.StringVar(&tuneMode, "zn-mode", "PI", "Ziegler-Nichols rule (P, PI, PID)")
}

// loadConfig resolves defaults, config file and environment, then the preset
// and finally any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Lookup("preset") != nil && preset != "" {
		apply, ok := config.Presets[preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		apply(cfg)
	}

	changed := cmd.Flags().Changed
	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Lookup(name) != nil && changed(name) {
			*dst = v
		}
	}
	set("mass", &cfg.Vehicle.Mass, mass)
	set("v0", &cfg.Vehicle.InitialVelocity, v0)
	set("drag", &cfg.Vehicle.DragCoefficient, drag)
	set("target", &cfg.TargetVelocity, target)
	set("band", &cfg.ErrorBand, band)
	set("dt", &cfg.Dt, dt)
	set("time", &cfg.SimTime, simTime)
	set("kp", &cfg.Controller.Kp, kp)
	set("ki", &cfg.Controller.Ki, ki)
	set("kd", &cfg.Controller.Kd, kd)
	set("ts", &cfg.Controller.Ts, ts)
	if cmd.Flags().Lookup("controller") != nil && changed("controller") {
		cfg.Controller.Type = controller
	}
	if cmd.Flags().Lookup("zn-mode") != nil && changed("zn-mode") {
		cfg.Controller.Tuning.Mode = tuneMode
	}
	if cmd.Flags().Lookup("out") != nil && changed("out") {
		cfg.Output.Dir = outDir
	}
	if dataDir != "" {
		cfg.Output.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, component string) (*config.Config, zerolog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log, err := logging.New(component, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log, nil
}

func openStore() (*storage.Store, error) {
	dir := dataDir
	if dir == "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		dir = cfg.Output.DataDir
	}
	return storage.New(dir), nil
}
