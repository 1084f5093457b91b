package geo

import (
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
)

// SeparatorEnd returns the end of a radial line of length r drawn at deg
// degrees from center.
func SeparatorEnd(center geom.XY, r, deg float64) geom.XY {
	return PolarToCartesian(center, r, Radians(deg))
}

// LinePath builds SVG path data for a straight segment.
func LinePath(from, to geom.XY) string {
	return strings.Join([]string{
		"M", f64s(from.X), f64s(from.Y),
		"L", f64s(to.X), f64s(to.Y),
	}, " ")
}

// WedgePath builds SVG path data for a pie wedge between startDeg and endDeg.
func WedgePath(center geom.XY, r, startDeg, endDeg float64) string {
	p1 := SeparatorEnd(center, r, startDeg)
	p2 := SeparatorEnd(center, r, endDeg)
	return strings.Join([]string{
		"M", f64s(center.X), f64s(center.Y),
		"L", f64s(p1.X), f64s(p1.Y),
		"A", f64s(r), f64s(r), "0", largeArc(startDeg, endDeg), "0", f64s(p2.X), f64s(p2.Y),
		"z",
	}, " ")
}

// RibbonPath builds SVG path data for the arc-topped band that backs the ring
// labels: two verticals dropped to the centre line joined by an arc.
func RibbonPath(center geom.XY, r, startDeg, endDeg float64) string {
	p1 := SeparatorEnd(center, r, startDeg)
	p2 := SeparatorEnd(center, r, endDeg)
	return strings.Join([]string{
		"M", f64s(p1.X), f64s(center.Y),
		"L", f64s(p1.X), f64s(p1.Y),
		"A", f64s(r), f64s(r), "0", largeArc(startDeg, endDeg), "0", f64s(p2.X), f64s(p2.Y),
		"L", f64s(p2.X), f64s(center.Y),
		"z",
	}, " ")
}

func largeArc(startDeg, endDeg float64) string {
	if endDeg-startDeg > 180 {
		return "1"
	}
	return "0"
}

func f64s(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
