package sim

import (
	"errors"
	"fmt"
)

// Construction errors.
var (
	ErrNilVehicle      = errors.New("sim: vehicle is required")
	ErrNilController   = errors.New("sim: controller is required")
	ErrInvalidStep     = errors.New("sim: dt must be a positive number")
	ErrInvalidDuration = errors.New("sim: sim_time must be a positive finite number")
)

// ConfigError reports the configuration field that failed validation.
type ConfigError struct {
	Field string
	Value float64
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s (%s=%v)", e.Err, e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
