package control

import "errors"

var (
	// ErrInvalidSampling indicates a sampling period that is not strictly positive.
	ErrInvalidSampling = errors.New("control: sampling period must be positive")

	// ErrUnknownParam indicates a parameter name the controller does not expose.
	ErrUnknownParam = errors.New("control: unknown parameter")

	// ErrUnknownRule indicates an unsupported tuning rule or mode.
	ErrUnknownRule = errors.New("control: unknown tuning rule")
)

// Controller computes a force command from the current tracking error.
type Controller interface {
	Update(err float64) float64
}

// Resettable controllers can drop their internal memory without losing
// their configuration.
type Resettable interface {
	Reset()
}

// Configurable controllers expose named parameters for tuning.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
