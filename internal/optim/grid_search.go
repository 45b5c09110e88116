package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/dragsim/internal/sim"
)

// MetricSettlingTime selects the settling time as the objective. Runs that
// never settle score +Inf.
const MetricSettlingTime = "settling_time"

var (
	ErrNoSettledRun = errors.New("optim: no candidate produced a finite score")
	ErrEmptyGrid    = errors.New("optim: grid has no candidates")
)

// GridSearch exhaustively evaluates every combination of parameter values and
// keeps the one with the lowest objective.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// NewGainGrid searches over PID gains named Kp, Ki and Kd.
func NewGainGrid(kp, ki, kd []float64) *GridSearch {
	return NewGridSearch([]string{"Kp", "Ki", "Kd"}, [][]float64{kp, ki, kd})
}

// Span returns n evenly spaced values from lo to hi inclusive.
func Span(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Size is the number of candidates the search evaluates.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Candidate is one evaluated parameter set.
type Candidate struct {
	Params map[string]float64
	Score  float64
}

func (c Candidate) String() string {
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%.4g", k, c.Params[k])
	}
	return fmt.Sprintf("%s score=%.4g", s, c.Score)
}

// Search builds and runs a simulation for every candidate and returns the one
// with the lowest metric. Candidates whose build fails are skipped. Ties keep
// the first candidate in grid order.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*sim.Simulation, error),
	metricName string,
) (Candidate, error) {
	if g.Size() == 0 {
		return Candidate{}, ErrEmptyGrid
	}

	best := Candidate{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &best); err != nil {
		return Candidate{}, err
	}
	if best.Params == nil {
		return Candidate{}, ErrNoSettledRun
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build func(map[string]float64) (*sim.Simulation, error),
	metricName string,
	best *Candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		s, err := build(current)
		if err != nil {
			return nil
		}
		s.Run()

		val := score(s.Result(), metricName)
		if val < best.Score {
			best.Score = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, best); err != nil {
			return err
		}
	}
	return nil
}

func score(res sim.Result, metricName string) float64 {
	var v float64
	if metricName == MetricSettlingTime {
		if !res.Settled() {
			return math.Inf(1)
		}
		v = res.SettlingTime
	} else {
		m, ok := res.Metrics[metricName]
		if !ok {
			return math.Inf(1)
		}
		v = m
	}
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}
