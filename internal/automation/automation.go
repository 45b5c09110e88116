package automation

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dragsim/internal/config"
	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/experiment"
	"github.com/san-kum/dragsim/internal/sim"
)

// Scenario is a scripted sequence of runs sharing a base configuration.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun overrides selected fields of the base configuration. A preset,
// when named, is applied first; explicit fields win over it.
type ScenarioRun struct {
	Name            string             `yaml:"name"`
	Preset          string             `yaml:"preset"`
	Controller      string             `yaml:"controller"`
	Mass            *float64           `yaml:"mass"`
	InitialVelocity *float64           `yaml:"initial_velocity"`
	DragCoefficient *float64           `yaml:"drag_coefficient"`
	TargetVelocity  *float64           `yaml:"target_velocity"`
	ErrorBand       *float64           `yaml:"error_band"`
	Dt              *float64           `yaml:"dt"`
	SimTime         *float64           `yaml:"sim_time"`
	Params          map[string]float64 `yaml:"params"`
}

// RunResult pairs a scenario run with the configuration it resolved to.
type RunResult struct {
	Name   string
	Config *config.Config
	Label  string
	Result sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// Resolve returns a copy of base with the run's preset and overrides applied.
func (r ScenarioRun) Resolve(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()

	if r.Preset != "" {
		apply, ok := config.Presets[r.Preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", r.Preset)
		}
		apply(cfg)
	}

	if r.Controller != "" {
		cfg.Controller.Type = r.Controller
	}
	setIf(&cfg.Vehicle.Mass, r.Mass)
	setIf(&cfg.Vehicle.InitialVelocity, r.InitialVelocity)
	setIf(&cfg.Vehicle.DragCoefficient, r.DragCoefficient)
	setIf(&cfg.TargetVelocity, r.TargetVelocity)
	setIf(&cfg.ErrorBand, r.ErrorBand)
	setIf(&cfg.Dt, r.Dt)
	setIf(&cfg.SimTime, r.SimTime)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// RunScenario executes all runs in order. Errors carry the 1-based run index.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, registry *experiment.Registry, log zerolog.Logger) ([]RunResult, error) {
	results := make([]RunResult, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		name := run.Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i+1)
		}
		log.Info().
			Str("scenario", scenario.Name).
			Str("run", name).
			Msgf("running step %d/%d", i+1, len(scenario.Runs))

		cfg, err := run.Resolve(base)
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		if err := applyParams(exp.Controller(), run.Params); err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}

		res := exp.Run()
		log.Debug().
			Str("run", name).
			Float64("settling_time", res.SettlingTime).
			Msg("scenario run finished")

		results = append(results, RunResult{
			Name:   name,
			Config: cfg,
			Label:  exp.Describe(),
			Result: res,
		})
	}

	return results, nil
}

func applyParams(ctrl control.Controller, params map[string]float64) error {
	if len(params) == 0 {
		return nil
	}
	c, ok := ctrl.(control.Configurable)
	if !ok {
		return fmt.Errorf("controller %T does not accept params", ctrl)
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.SetParam(k, params[k]); err != nil {
			return err
		}
	}
	return nil
}
