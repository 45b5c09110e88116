package control

import (
	"fmt"
	"strings"
)

// Ziegler-Nichols closed-loop tuning modes.
const (
	ModeP   = "P"
	ModePI  = "PI"
	ModePID = "PID"
)

// ZieglerNichols derives gains from the ultimate gain ku and the oscillation
// period tu measured at the stability limit.
func ZieglerNichols(mode string, ku, tu float64) (Gains, error) {
	if !(ku > 0) || !(tu > 0) {
		return Gains{}, fmt.Errorf("control: ziegler-nichols requires positive ku and tu, got ku=%v tu=%v", ku, tu)
	}

	switch strings.ToUpper(mode) {
	case ModeP:
		return Gains{Kp: 0.5 * ku}, nil
	case ModePI:
		return Gains{Kp: 0.45 * ku, Ki: 0.54 * ku / tu}, nil
	case ModePID:
		return Gains{Kp: 0.6 * ku, Ki: 1.2 * ku / tu, Kd: 0.075 * ku * tu}, nil
	}
	return Gains{}, fmt.Errorf("%w: ziegler-nichols mode %q", ErrUnknownRule, mode)
}
