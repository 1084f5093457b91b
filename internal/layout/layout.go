// Package layout computes the fixed geometry of a bullseye chart: centre,
// ring boundaries and slice angles. A Layout is immutable once computed and
// is shared read-only by everything drawn on the chart.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/OCAP2/bullseye/internal/geo"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrConfiguration is returned when a chart cannot be laid out from its
// configuration.
var ErrConfiguration = errors.New("invalid chart configuration")

const (
	// BullseyeRadius is the radius of the central zone in pixels.
	BullseyeRadius = 30.0

	maxRadiusFactor = 0.4
	ringSizeFactor  = 0.35

	// sliceLabelGap is the distance between the outer ring and the slice labels.
	sliceLabelGap = 35.0
	// ringLabelInset places ring labels just inside each ring's outer edge.
	ringLabelInset = 25.0
)

// Config holds the inputs needed to lay out a chart.
type Config struct {
	Width  float64
	Height float64
	Rings  int
	Slices int

	// StartDegree rotates slice 0. Nil centres slice 0 on angle 0.
	StartDegree *float64
}

// Layout holds the derived chart geometry.
type Layout struct {
	Center    geom.XY
	NumRings  int
	NumSlices int

	MaxRadius        float64
	BullseyeRadius   float64
	RingSize         float64
	SliceLabelRadius float64

	// RingRadii are ascending boundaries: RingRadii[0] is the bullseye edge and
	// ring i spans [RingRadii[i], RingRadii[i+1]).
	RingRadii []float64

	// SliceAngle is the width of one slice in degrees.
	SliceAngle float64
	// StartAngle is where slice 0 begins, in degrees within (-360, 0].
	StartAngle float64
}

// Compute lays out a chart from cfg.
func Compute(cfg Config) (*Layout, error) {
	if cfg.Rings < 1 {
		return nil, fmt.Errorf("%w: need at least 1 ring, got %d", ErrConfiguration, cfg.Rings)
	}
	if cfg.Slices < 1 {
		return nil, fmt.Errorf("%w: need at least 1 slice, got %d", ErrConfiguration, cfg.Slices)
	}
	if !isPositive(cfg.Width) || !isPositive(cfg.Height) {
		return nil, fmt.Errorf("%w: canvas size must be positive, got %vx%v", ErrConfiguration, cfg.Width, cfg.Height)
	}

	l := &Layout{
		Center:         geom.XY{X: cfg.Width / 2, Y: cfg.Height / 2},
		NumRings:       cfg.Rings,
		NumSlices:      cfg.Slices,
		MaxRadius:      cfg.Width * maxRadiusFactor,
		BullseyeRadius: BullseyeRadius,
		RingSize:       cfg.Width / float64(cfg.Rings) * ringSizeFactor,
		SliceAngle:     360 / float64(cfg.Slices),
	}
	l.SliceLabelRadius = l.MaxRadius + sliceLabelGap

	// outer ring edges, stepping inward from the max radius
	l.RingRadii = make([]float64, cfg.Rings+1)
	l.RingRadii[0] = l.BullseyeRadius
	for i, radius := cfg.Rings, l.MaxRadius; i >= 1; i, radius = i-1, radius-l.RingSize {
		l.RingRadii[i] = radius
	}
	for i := 1; i < len(l.RingRadii); i++ {
		if l.RingRadii[i] <= l.RingRadii[i-1] {
			return nil, fmt.Errorf("%w: ring boundaries not ascending at %d (%v <= %v)",
				ErrConfiguration, i, l.RingRadii[i], l.RingRadii[i-1])
		}
	}

	if cfg.StartDegree == nil {
		l.StartAngle = -l.SliceAngle / 2
	} else {
		if math.IsNaN(*cfg.StartDegree) || math.IsInf(*cfg.StartDegree, 0) {
			return nil, fmt.Errorf("%w: start degree must be finite", ErrConfiguration)
		}
		l.StartAngle = NormalizeStartDegree(*cfg.StartDegree)
	}

	return l, nil
}

// NormalizeStartDegree maps a rotation in degrees into (-360, 0], e.g. 330
// becomes -30. Keeping the offset non-positive keeps label rotation and slice
// lookup consistent.
func NormalizeStartDegree(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a > 0 {
		a -= 360
	}
	return a
}

// SliceStart returns the degree at which slice i begins.
func (l *Layout) SliceStart(i int) float64 {
	return l.StartAngle + float64(i)*l.SliceAngle
}

// SliceLabelAngle returns the degree at the middle of slice i.
func (l *Layout) SliceLabelAngle(i int) float64 {
	return l.SliceStart(i) + l.SliceAngle/2
}

// SliceLabelPosition returns where slice i's label is centred.
func (l *Layout) SliceLabelPosition(i int) geom.XY {
	return geo.PolarToCartesian(l.Center, l.SliceLabelRadius, geo.Radians(l.SliceLabelAngle(i)))
}

// SliceLabelRotation returns the text rotation in degrees for slice i's label
// so that it runs parallel to the chord between the slice's two separators.
// Labels in the lower half are flipped to stay upright.
func (l *Layout) SliceLabelRotation(i int) float64 {
	r := l.SeparatorRadius()
	p1 := geo.SeparatorEnd(l.Center, r, l.SliceStart(i))
	p2 := geo.SeparatorEnd(l.Center, r, l.SliceStart(i+1))

	rotate := geo.Degrees(math.Atan2(p1.Y-p2.Y, p1.X-p2.X))
	labelDeg := l.SliceLabelAngle(i)
	if labelDeg > 180 && labelDeg < 360 {
		rotate += 180
	}
	return rotate
}

// SeparatorRadius is the length of the slice separator lines.
func (l *Layout) SeparatorRadius() float64 {
	return l.MaxRadius + 2
}

// RingLabelPosition returns where ring i's label is drawn: on the ribbon
// below the centre, just inside the ring's outer edge.
func (l *Layout) RingLabelPosition(i int) geom.XY {
	return geom.XY{X: l.Center.X, Y: l.Center.Y + l.RingRadii[i+1] - ringLabelInset}
}

func isPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
