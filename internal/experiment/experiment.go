package experiment

import (
	"fmt"

	"github.com/san-kum/dragsim/internal/config"
	"github.com/san-kum/dragsim/internal/control"
	"github.com/san-kum/dragsim/internal/metrics"
	"github.com/san-kum/dragsim/internal/sim"
	"github.com/san-kum/dragsim/internal/vehicle"
)

// Experiment is a single configured run.
type Experiment struct {
	cfg        *config.Config
	controller control.Controller
	simulation *sim.Simulation
}

func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	ctrl, err := reg.NewController(cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewSimulation(cfg, cfg.Vehicle.InitialVelocity, ctrl)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		cfg:        cfg,
		controller: ctrl,
		simulation: s,
	}, nil
}

// NewSimulation builds a vehicle starting at v0 and a simulation driving it
// with ctrl, with the default metric set attached.
func NewSimulation(cfg *config.Config, v0 float64, ctrl control.Controller) (*sim.Simulation, error) {
	v, err := vehicle.New(cfg.Vehicle.Mass, v0, cfg.Vehicle.DragCoefficient)
	if err != nil {
		return nil, fmt.Errorf("build vehicle: %w", err)
	}
	s, err := sim.New(v, ctrl, cfg.SimConfig())
	if err != nil {
		return nil, fmt.Errorf("build simulation: %w", err)
	}
	for _, m := range metrics.Default(cfg.Vehicle.DragCoefficient, cfg.Dt, cfg.ErrorBand) {
		s.AddMetric(m)
	}
	return s, nil
}

func (e *Experiment) Run() sim.Result {
	e.simulation.Run()
	return e.simulation.Result()
}

func (e *Experiment) Config() *config.Config         { return e.cfg }
func (e *Experiment) Controller() control.Controller { return e.controller }
func (e *Experiment) Simulation() *sim.Simulation    { return e.simulation }

// Describe returns a short label for the controller, e.g. for plot legends.
func (e *Experiment) Describe() string {
	if p, ok := e.controller.(*control.PID); ok {
		return p.String()
	}
	return e.cfg.Controller.Type
}
