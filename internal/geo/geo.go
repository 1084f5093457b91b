// Package geo holds the pure coordinate transforms between chart polar space
// and canvas pixel space.
//
// Canvas Y grows downward, so every conversion inverts the Y axis relative to
// the mathematical convention: angle 0 points right, π/2 points up.
package geo

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
)

// FullTurn is one revolution in radians.
const FullTurn = 2 * math.Pi

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeAngle maps any finite angle in radians into [0, 2π).
func NormalizeAngle(rad float64) float64 {
	a := math.Mod(rad, FullTurn)
	if a < 0 {
		a += FullTurn
	}
	// math.Mod of a tiny negative value can round back up to exactly 2π
	if a >= FullTurn {
		a = 0
	}
	return a
}

// PolarToCartesian returns the pixel position at radius and angle (radians)
// from center.
func PolarToCartesian(center geom.XY, radius, angle float64) geom.XY {
	return geom.XY{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y - radius*math.Sin(angle),
	}
}

// CartesianToPolar returns the radius and angle of p around center. The angle
// is in [0, 2π); it is 0 when p coincides with center.
func CartesianToPolar(center, p geom.XY) (radius, angle float64) {
	dx := p.X - center.X
	dy := center.Y - p.Y
	radius = math.Hypot(dx, dy)
	angle = math.Atan2(dy, dx)
	if angle < 0 {
		angle += FullTurn
	}
	return radius, angle
}
