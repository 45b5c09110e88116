package plot

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dragsim/internal/sim"
	"github.com/san-kum/dragsim/internal/sweep"
)

const (
	asciiHeight = 12
	asciiWidth  = 80
)

func ASCIIVelocity(res sim.Result) string {
	return asciiPlot(res.Velocities, fmt.Sprintf("velocity [m/s], target %g", res.TargetVelocity))
}

func ASCIIError(res sim.Result) string {
	return asciiPlot(res.Errors, fmt.Sprintf("velocity error [%%], band ±%g", res.ErrorThreshold))
}

// ASCIISettling charts settling time over the sweep, left to right in sweep
// order. Unsettled runs show as NotSettled.
func ASCIISettling(points []sweep.Point) string {
	_, ts := sweep.Curve(points)
	caption := "settling time [s] vs initial velocity"
	if len(points) > 0 {
		caption = fmt.Sprintf("settling time [s], v0 %g..%g",
			points[0].InitialVelocity, points[len(points)-1].InitialVelocity)
	}
	return asciiPlot(ts, caption)
}

func asciiPlot(data []float64, caption string) string {
	clean := make([]float64, 0, len(data))
	for _, v := range data {
		if finite(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return asciigraph.Plot(clean,
		asciigraph.Height(asciiHeight),
		asciigraph.Width(asciiWidth),
		asciigraph.Caption(caption),
	)
}
