package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/dragsim/internal/sim"
)

const (
	width       = 70
	height      = 7
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	trailLen    = 12
)

// LiveRenderer draws a speed gauge for each simulation step. It implements
// sim.Observer. A frame rate of zero draws every step.
type LiveRenderer struct {
	out       io.Writer
	target    float64
	threshold float64
	scale     float64
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trail     []int
}

// NewLiveRenderer sizes the gauge so that [-span, span] m/s fits the track.
func NewLiveRenderer(out io.Writer, target, threshold, span float64, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	if !(span > 0) {
		span = math.Max(math.Abs(target)*2, 1)
	}
	return &LiveRenderer{
		out:       out,
		target:    target,
		threshold: threshold,
		scale:     float64(width/2-2) / span,
		frameRate: frameRate,
		canvas:    canvas,
		trail:     make([]int, 0, trailLen),
	}
}

func (r *LiveRenderer) OnStep(s sim.Step) {
	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = time.Now()
	}

	r.clear()
	r.drawTrack()
	r.drawVehicle(s.Velocity)
	r.render(s)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

// column maps a velocity to a gauge column; values off the track are pinned
// to its ends.
func (r *LiveRenderer) column(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	x := width/2 + int(math.Round(v*r.scale))
	if x < 0 {
		return 0
	}
	if x >= width {
		return width - 1
	}
	return x
}

func (r *LiveRenderer) drawTrack() {
	cy := height / 2
	for i := 0; i < width; i++ {
		r.set(i, cy+1, '=')
	}
	r.set(width/2, cy+2, '0')

	tx := r.column(r.target)
	for y := 0; y < height-1; y++ {
		r.set(tx, y, ':')
	}

	// Tolerance band around the target; the band is relative, in percent.
	half := math.Abs(r.target) * r.threshold / 100
	lo, hi := r.column(r.target-half), r.column(r.target+half)
	if hi > lo {
		r.set(lo, cy+2, '[')
		r.set(hi, cy+2, ']')
	}
}

func (r *LiveRenderer) drawVehicle(v float64) {
	x := r.column(v)
	if x < 0 {
		return
	}
	cy := height / 2

	r.trail = append(r.trail, x)
	if len(r.trail) > trailLen {
		r.trail = r.trail[1:]
	}
	for i, px := range r.trail {
		if i < len(r.trail)/2 {
			r.set(px, cy, '.')
		} else {
			r.set(px, cy, 'o')
		}
	}
	r.set(x, cy, '#')
	r.set(x, cy-1, 'V')
}

func (r *LiveRenderer) render(s sim.Step) {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "  velocity  t=%.2fs\n", s.Time)
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	fmt.Fprintf(&b, "  v=%.3f  target=%.3f  err=%.2f%%  u=%.3f\n", s.Velocity, r.target, s.ErrorPct, s.Force)

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
