package plot

import (
	"fmt"
	"strings"

	"github.com/san-kum/dragsim/internal/sim"
)

// SVGTrace renders the velocity profile of res as a single SVG path with the
// setpoint drawn as a dashed line.
func SVGTrace(res sim.Result, width, height int) string {
	pts := finiteXYs(res.Times, res.Velocities)
	if len(pts) < 2 {
		return ""
	}

	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := res.TargetVelocity, res.TargetVelocity
	for _, p := range pts {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	sx := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
	sy := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	ty := sy(res.TargetVelocity)
	fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#ff00ff" stroke-dasharray="6,4"/>
`, ty, width, ty)

	sb.WriteString(`<path fill="none" stroke="#00ff88" stroke-width="1.5" d="M`)
	for i, p := range pts {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", sx(p.X), sy(p.Y))
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
