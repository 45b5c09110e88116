// Package plot renders simulation results as PNG figures, terminal charts
// and SVG traces.
//
// PNG figures follow the layout of the classic velocity study: a velocity
// profile against a dashed setpoint, the error profile inside a red
// tolerance band, and settling time against initial velocity. Non-finite
// samples are dropped before drawing.
package plot
