package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/sim"
)

// EnvPrefix marks environment overrides. Nested keys use a double
// underscore: DRAGSIM_VEHICLE__MASS=2.
const EnvPrefix = "DRAGSIM_"

const (
	DefaultMass            = 1.0
	DefaultInitialVelocity = 10.0
	DefaultTargetVelocity  = 5.0
	DefaultErrorBand       = 1.0
	DefaultDragCoefficient = 0.05
	DefaultSimTime         = 50.0
	DefaultDt              = 1.0
	DefaultTs              = 1.0
	DefaultKp              = 0.28
	DefaultKi              = 0.12
	DefaultKd              = 0.05
	DefaultKu              = 0.8
	DefaultTu              = 2.1
)

// Controller types.
const (
	ControllerNone           = "none"
	ControllerPID            = "pid"
	ControllerZieglerNichols = "zn"
)

type Config struct {
	Vehicle        VehicleConfig    `yaml:"vehicle"`
	TargetVelocity float64          `yaml:"target_velocity"`
	ErrorBand      float64          `yaml:"error_band"`
	Dt             float64          `yaml:"dt"`
	SimTime        float64          `yaml:"sim_time"`
	Controller     ControllerConfig `yaml:"controller"`
	Sweep          SweepConfig      `yaml:"sweep"`
	Output         OutputConfig     `yaml:"output"`
	Log            LogConfig        `yaml:"log"`
}

type VehicleConfig struct {
	Mass            float64 `yaml:"mass"`
	InitialVelocity float64 `yaml:"initial_velocity"`
	DragCoefficient float64 `yaml:"drag_coefficient"`
}

type ControllerConfig struct {
	Type   string       `yaml:"type"`
	Kp     float64      `yaml:"kp"`
	Ki     float64      `yaml:"ki"`
	Kd     float64      `yaml:"kd"`
	Ts     float64      `yaml:"ts"`
	Tuning TuningConfig `yaml:"tuning"`
}

// TuningConfig holds Ziegler-Nichols inputs used when the controller type
// is "zn".
type TuningConfig struct {
	Mode string  `yaml:"mode"`
	Ku   float64 `yaml:"ku"`
	Tu   float64 `yaml:"tu"`
}

// SweepConfig describes the half-open initial velocity range [Start, Stop).
type SweepConfig struct {
	Start    float64 `yaml:"start"`
	Stop     float64 `yaml:"stop"`
	Step     float64 `yaml:"step"`
	Parallel int     `yaml:"parallel"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	DataDir string `yaml:"data_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Vehicle: VehicleConfig{
			Mass:            DefaultMass,
			InitialVelocity: DefaultInitialVelocity,
			DragCoefficient: DefaultDragCoefficient,
		},
		TargetVelocity: DefaultTargetVelocity,
		ErrorBand:      DefaultErrorBand,
		Dt:             DefaultDt,
		SimTime:        DefaultSimTime,
		Controller: ControllerConfig{
			Type: ControllerPID,
			Kp:   DefaultKp,
			Ki:   DefaultKi,
			Kd:   DefaultKd,
			Ts:   DefaultTs,
			Tuning: TuningConfig{
				Mode: control.ModePI,
				Ku:   DefaultKu,
				Tu:   DefaultTu,
			},
		},
		Sweep: SweepConfig{
			Start: -50,
			Stop:  50,
			Step:  5,
		},
		Output: OutputConfig{
			Dir:     "output",
			DataDir: ".dragsim",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load layers defaults, the optional YAML file at path and DRAGSIM_
// environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func Save(path string, cfg *Config) error {
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the simulation cannot run without.
func (c *Config) Validate() error {
	if !(c.Vehicle.Mass > 0) {
		return fmt.Errorf("vehicle.mass must be positive, got %v", c.Vehicle.Mass)
	}
	if c.Vehicle.DragCoefficient < 0 {
		return fmt.Errorf("vehicle.drag_coefficient cannot be negative, got %v", c.Vehicle.DragCoefficient)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	}
	if !(c.SimTime > 0) {
		return fmt.Errorf("sim_time must be positive, got %v", c.SimTime)
	}

	switch c.Controller.Type {
	case ControllerNone:
	case ControllerPID, ControllerZieglerNichols:
		if !(c.Controller.Ts > 0) {
			return fmt.Errorf("controller.ts must be positive, got %v", c.Controller.Ts)
		}
	default:
		return fmt.Errorf("unknown controller type: %s", c.Controller.Type)
	}

	if c.Sweep.Step == 0 {
		return fmt.Errorf("sweep.step cannot be zero")
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
	return nil
}

// SimConfig returns the loop parameters for a single run.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		TargetVelocity: c.TargetVelocity,
		Dt:             c.Dt,
		Duration:       c.SimTime,
		ErrorThreshold: c.ErrorBand,
	}
}

// Gains returns the PID gains for the configured controller, deriving them
// from the Ziegler-Nichols inputs when requested.
func (c *Config) Gains() (control.Gains, error) {
	switch c.Controller.Type {
	case ControllerZieglerNichols:
		return control.ZieglerNichols(c.Controller.Tuning.Mode, c.Controller.Tuning.Ku, c.Controller.Tuning.Tu)
	case ControllerNone:
		return control.Gains{}, nil
	}
	return control.Gains{Kp: c.Controller.Kp, Ki: c.Controller.Ki, Kd: c.Controller.Kd}, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
