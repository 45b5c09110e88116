package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dragsim/internal/config"
	"github.com/san-kum/dragsim/internal/control"
)

// ControllerFactory builds a fresh controller from a configuration.
type ControllerFactory func(cfg *config.Config) (control.Controller, error)

type Registry struct {
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]ControllerFactory),
	}

	r.controllers[config.ControllerNone] = func(cfg *config.Config) (control.Controller, error) {
		return control.NewNone(), nil
	}
	r.controllers[config.ControllerPID] = func(cfg *config.Config) (control.Controller, error) {
		g, err := cfg.Gains()
		if err != nil {
			return nil, err
		}
		return control.NewPIDFromGains(g, cfg.Controller.Ts)
	}
	r.controllers[config.ControllerZieglerNichols] = r.controllers[config.ControllerPID]

	return r
}

func (r *Registry) Register(name string, fn ControllerFactory) {
	r.controllers[name] = fn
}

func (r *Registry) NewController(cfg *config.Config) (control.Controller, error) {
	fn, ok := r.controllers[cfg.Controller.Type]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s (available: %v)", cfg.Controller.Type, r.ListControllers())
	}
	return fn(cfg)
}

// Factory binds cfg so callers can build independent controllers on demand.
func (r *Registry) Factory(cfg *config.Config) func() (control.Controller, error) {
	return func() (control.Controller, error) {
		return r.NewController(cfg)
	}
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
