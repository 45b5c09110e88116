package control

import "fmt"

// Gains groups the three PID coefficients.
type Gains struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ki float64 `json:"ki" yaml:"ki"`
	Kd float64 `json:"kd" yaml:"kd"`
}

// PID is a discrete PID controller sampled every Ts seconds.
//
// The integral term is the plain running sum of every error seen since the
// last reset; it is not scaled by Ts. The derivative term is zero on the
// first update after construction or Reset.
type PID struct {
	Kp float64
	Ki float64
	Kd float64
	Ts float64

	integral float64
	prevErr  float64
	warm     bool
}

func NewPID(kp, ki, kd, ts float64) (*PID, error) {
	if !(ts > 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSampling, ts)
	}
	return &PID{
		Kp: kp,
		Ki: ki,
		Kd: kd,
		Ts: ts,
	}, nil
}

func NewPIDFromGains(g Gains, ts float64) (*PID, error) {
	return NewPID(g.Kp, g.Ki, g.Kd, ts)
}

func (p *PID) Update(err float64) float64 {
	p.integral += err

	derivative := 0.0
	if p.warm {
		derivative = (err - p.prevErr) / p.Ts
	}
	p.prevErr = err
	p.warm = true

	return err*p.Kp + p.integral*p.Ki + derivative*p.Kd
}

// Reset clears integral and derivative memory. Gains and Ts are kept.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.warm = false
}

func (p *PID) Gains() Gains {
	return Gains{Kp: p.Kp, Ki: p.Ki, Kd: p.Kd}
}

// Integral returns the accumulated error sum.
func (p *PID) Integral() float64 { return p.integral }

// PrevError returns the error passed to the previous Update, if any.
func (p *PID) PrevError() (float64, bool) { return p.prevErr, p.warm }

// Warm reports whether a previous error sample is available.
func (p *PID) Warm() bool { return p.warm }

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp": p.Kp,
		"Ki": p.Ki,
		"Kd": p.Kd,
		"Ts": p.Ts,
	}
}

// SetParam adjusts a PID parameter without touching controller memory.
func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Ts":
		if !(value > 0) {
			return fmt.Errorf("%w: got %v", ErrInvalidSampling, value)
		}
		p.Ts = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}

func (p *PID) String() string {
	return fmt.Sprintf("PID(Kp=%.4g, Ki=%.4g, Kd=%.4g, Ts=%.4g)", p.Kp, p.Ki, p.Kd, p.Ts)
}
