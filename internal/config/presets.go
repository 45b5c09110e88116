package config

import "sort"

var Presets = map[string]func(*Config){
	"baseline": func(c *Config) {},
	"open-loop": func(c *Config) {
		c.Controller.Type = ControllerNone
	},
	"heavy": func(c *Config) {
		c.Vehicle.Mass = 5
		c.SimTime = 100
	},
	"reverse": func(c *Config) {
		c.Vehicle.InitialVelocity = -20
	},
	"fine-step": func(c *Config) {
		c.Dt = 0.1
		c.Controller.Ts = 0.1
	},
	"ziegler-pi": func(c *Config) {
		c.Controller.Type = ControllerZieglerNichols
		c.Controller.Tuning.Mode = "PI"
	},
	"ziegler-pid": func(c *Config) {
		c.Controller.Type = ControllerZieglerNichols
		c.Controller.Tuning.Mode = "PID"
	},
}

// GetPreset returns a fresh default configuration with the named preset
// applied, or nil if the preset does not exist.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
