package tui

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dragsim/internal/sim"
)

func TestLiveRendererDrawsEveryStep(t *testing.T) {
	var buf bytes.Buffer
	r := NewLiveRenderer(&buf, 5, 1, 20, 0)

	r.Start()
	r.OnStep(sim.Step{Time: 0, Velocity: 10, ErrorPct: -100, Force: -2})
	r.OnStep(sim.Step{Time: 1, Velocity: 3, ErrorPct: 40, Force: 1})
	r.Stop()

	out := buf.String()
	if got := strings.Count(out, clearScreen); got != 2 {
		t.Errorf("expected 2 frames, got %d", got)
	}
	if !strings.Contains(out, "t=1.00s") || !strings.Contains(out, "v=3.000") {
		t.Errorf("missing step readout in %q", out)
	}
	if !strings.HasPrefix(out, hideCursor) || !strings.HasSuffix(out, showCursor) {
		t.Error("cursor not hidden and restored")
	}
}

func TestLiveRendererColumn(t *testing.T) {
	r := NewLiveRenderer(&bytes.Buffer{}, 5, 1, 10, 0)

	if got := r.column(0); got != width/2 {
		t.Errorf("zero velocity at column %d, want %d", got, width/2)
	}
	if r.column(5) <= width/2 || r.column(-5) >= width/2 {
		t.Error("gauge is not monotonic around zero")
	}
	if got := r.column(1e9); got != width-1 {
		t.Errorf("large velocity not pinned, got %d", got)
	}
	if got := r.column(-1e9); got != 0 {
		t.Errorf("large negative velocity not pinned, got %d", got)
	}
	if got := r.column(math.NaN()); got != -1 {
		t.Errorf("NaN should not be drawn, got %d", got)
	}
}

func TestLiveRendererTrail(t *testing.T) {
	r := NewLiveRenderer(&bytes.Buffer{}, 5, 1, 20, 0)
	for i := 0; i < 2*trailLen; i++ {
		r.OnStep(sim.Step{Velocity: float64(i)})
	}
	if len(r.trail) != trailLen {
		t.Errorf("trail length %d, want %d", len(r.trail), trailLen)
	}
}
