package sim

// NotSettled is returned by SettlingTime when the response never settles,
// never leaves the band, or ends on a non-finite error.
const NotSettled = -1.0

type Config struct {
	TargetVelocity float64 `json:"target_velocity" yaml:"target_velocity"`
	Dt             float64 `json:"dt" yaml:"dt"`
	Duration       float64 `json:"duration" yaml:"duration"`
	ErrorThreshold float64 `json:"error_threshold" yaml:"error_threshold"`
}

func DefaultConfig() Config {
	return Config{
		Dt:             1,
		Duration:       100,
		ErrorThreshold: 1,
	}
}

// Step is the sample recorded for one loop iteration. Velocity is the value
// before the update; ErrorPct is Error relative to the target, in percent.
type Step struct {
	Index    int
	Time     float64
	Velocity float64
	Error    float64
	ErrorPct float64
	Force    float64
}

type Observer interface {
	OnStep(s Step)
}

type Metric interface {
	Name() string
	Observe(s Step)
	Value() float64
	Reset()
}

// Result is a snapshot of a finished simulation.
type Result struct {
	Times          []float64          `json:"times"`
	Velocities     []float64          `json:"velocities"`
	Errors         []float64          `json:"errors"`
	Forces         []float64          `json:"forces"`
	TargetVelocity float64            `json:"target_velocity"`
	ErrorThreshold float64            `json:"error_threshold"`
	Dt             float64            `json:"dt"`
	Duration       float64            `json:"duration"`
	SettlingTime   float64            `json:"settling_time"`
	Metrics        map[string]float64 `json:"metrics"`
	Steps          int                `json:"steps"`
}

// Settled reports whether the run has a settling time.
func (r *Result) Settled() bool {
	return r.SettlingTime != NotSettled
}
