// Package point holds the semantic and pixel state of points placed on a
// bullseye chart and keeps the two consistent across drag gestures.
package point

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCAP2/bullseye/internal/classify"
	"github.com/OCAP2/bullseye/internal/geo"
	"github.com/OCAP2/bullseye/internal/layout"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrPlacement is returned for placements that cannot be resolved on a layout.
var ErrPlacement = errors.New("invalid point placement")

const (
	// DefaultFill is the marker colour when a placement names none.
	DefaultFill = "#00ff00"
	// DefaultSize is the marker radius in pixels when a placement gives 0.
	DefaultSize = 5.0
)

// Placement describes where a new point goes. Angle is in radians. Without a
// Ring, Distance is the fraction of the chart's maximum radius; with one, it
// is the fraction across that ring (-1 selects the bullseye).
type Placement struct {
	Angle    float64
	Ring     *int
	Distance float64

	Fill  string
	Size  float64
	Label string
}

// State is the resolved polar and pixel position of a point.
type State struct {
	Angle        float64 // radians, [0, 2π)
	Radius       float64 // pixels from the centre
	Distance     float64 // Radius / MaxRadius
	RingDistance float64 // fraction across the ring, -1 outside every ring
	Position     geom.XY
}

// Resolve computes the state for p on l. It is pure: the same inputs always
// produce the same state.
func Resolve(l *layout.Layout, p Placement) (State, error) {
	if err := validate(l, p); err != nil {
		return State{}, err
	}

	var radius float64
	if p.Ring == nil {
		radius = p.Distance * l.MaxRadius
	} else {
		low, high := classify.BoundsOf(l, classify.Ring(*p.Ring))
		radius = low + p.Distance*(high-low)
	}

	angle := geo.NormalizeAngle(p.Angle)
	return State{
		Angle:        angle,
		Radius:       radius,
		Distance:     radius / l.MaxRadius,
		RingDistance: p.Distance,
		Position:     geo.PolarToCartesian(l.Center, radius, angle),
	}, nil
}

func validate(l *layout.Layout, p Placement) error {
	if math.IsNaN(p.Angle) || math.IsInf(p.Angle, 0) {
		return fmt.Errorf("%w: angle %v is not finite", ErrPlacement, p.Angle)
	}
	if math.IsNaN(p.Distance) || p.Distance < 0 || p.Distance > 1 {
		return fmt.Errorf("%w: distance %v outside [0, 1]", ErrPlacement, p.Distance)
	}
	if p.Ring != nil && (*p.Ring < int(classify.Bullseye) || *p.Ring >= l.NumRings) {
		return fmt.Errorf("%w: ring %d outside [-1, %d)", ErrPlacement, *p.Ring, l.NumRings)
	}
	if p.Size < 0 || math.IsNaN(p.Size) {
		return fmt.Errorf("%w: size %v is negative", ErrPlacement, p.Size)
	}
	return nil
}
