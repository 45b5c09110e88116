package plot

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/dragsim/internal/sim"
)

var ErrNoData = errors.New("plot: no finite samples to draw")

var (
	setpointColor = color.RGBA{R: 255, B: 255, A: 255}
	bandColor     = color.RGBA{R: 220, A: 255}
)

const (
	figWidth  = 8.0
	figHeight = 6.0
	figDPI    = 150
)

// Series is one labelled curve.
type Series struct {
	Label string
	X     []float64
	Y     []float64
}

// VelocitySeries returns the velocity profile of res.
func VelocitySeries(label string, res sim.Result) Series {
	return Series{Label: label, X: res.Times, Y: res.Velocities}
}

// Options tweak a figure. An empty Title keeps the default one.
type Options struct {
	Title string
}

// VelocityPNG draws one velocity line per run plus a dashed setpoint line.
func VelocityPNG(path string, runs []Series, target float64, opts Options) error {
	p := newPlot(orDefault(opts.Title, "Vehicle velocity"), "Time [s]", "Velocity [m/s]")

	var tMin, tMax float64
	drawn := 0
	for i, s := range runs {
		pts := finiteXYs(s.X, s.Y)
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		if s.Label != "" {
			p.Legend.Add(s.Label, line)
		}

		if drawn == 0 || pts[0].X < tMin {
			tMin = pts[0].X
		}
		if drawn == 0 || pts[len(pts)-1].X > tMax {
			tMax = pts[len(pts)-1].X
		}
		drawn++
	}
	if drawn == 0 {
		return ErrNoData
	}

	sp, err := hline(tMin, tMax, target)
	if err != nil {
		return err
	}
	sp.LineStyle.Color = setpointColor
	sp.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(sp)
	p.Legend.Add(fmt.Sprintf("Target velocity: %gm/s", target), sp)

	return savePNG(p, path)
}

// ErrorPNG draws the error percentage of res and the ±threshold band. A
// non-nil ylim fixes the vertical range.
func ErrorPNG(path string, res sim.Result, ylim *[2]float64, opts Options) error {
	p := newPlot(orDefault(opts.Title, "Vehicle velocity error"), "Time [s]", "Velocity Error [%]")

	pts := finiteXYs(res.Times, res.Errors)
	if len(pts) == 0 {
		return ErrNoData
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("Velocity error profile", line)

	t0, t1 := pts[0].X, pts[len(pts)-1].X
	for i, y := range []float64{res.ErrorThreshold, -res.ErrorThreshold} {
		band, err := hline(t0, t1, y)
		if err != nil {
			return err
		}
		band.LineStyle.Color = bandColor
		p.Add(band)
		if i == 0 {
			p.Legend.Add(fmt.Sprintf("±%g%% limit", res.ErrorThreshold), band)
		}
	}

	if ylim != nil {
		p.Y.Min, p.Y.Max = ylim[0], ylim[1]
	}
	return savePNG(p, path)
}

// SettlingPNG draws settling time as a function of initial velocity with the
// vertical axis fixed to [0, 30]; unsettled runs fall below the axis.
func SettlingPNG(path string, v0s, ts []float64, opts Options) error {
	p := newPlot(orDefault(opts.Title, "Settling time as function of the initial velocity"),
		"Initial velocity [m/s]", "Settling time [s]")

	pts := finiteXYs(v0s, ts)
	if len(pts) == 0 {
		return ErrNoData
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)

	p.Y.Min, p.Y.Max = 0, 30
	return savePNG(p, path)
}

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return p
}

func hline(x0, x1, y float64) (*plotter.Line, error) {
	if x1 <= x0 {
		x1 = x0 + 1
	}
	return plotter.NewLine(plotter.XYs{{X: x0, Y: y}, {X: x1, Y: y}})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func finiteXYs(xs, ys []float64) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if !finite(xs[i]) || !finite(ys[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func savePNG(p *plot.Plot, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(figWidth)*vg.Inch, vg.Length(figHeight)*vg.Inch),
		vgimg.UseDPI(figDPI),
	)
	p.Draw(draw.New(c))

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return bw.Flush()
}
