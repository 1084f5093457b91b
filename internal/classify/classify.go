// Package classify resolves which ring and slice of a chart a radius or angle
// falls into. All lookups are total functions over the layout: positions that
// belong to no ring yield a sentinel Ring rather than an error.
package classify

import (
	"math"
	"strconv"

	"github.com/OCAP2/bullseye/internal/geo"
	"github.com/OCAP2/bullseye/internal/layout"
)

// Ring is a ring index. Values >= 0 name a ring; Bullseye and Outside are
// sentinels.
type Ring int

const (
	// Bullseye is the central zone below the first ring.
	Bullseye Ring = -1
	// Outside lies at or beyond the outermost ring boundary.
	Outside Ring = -2
)

// IsRing reports whether r names an actual ring.
func (r Ring) IsRing() bool {
	return r >= 0
}

func (r Ring) String() string {
	switch {
	case r == Bullseye:
		return "bullseye"
	case r < 0:
		return "outside"
	default:
		return strconv.Itoa(int(r))
	}
}

// RingOf returns the ring containing radius. Ring i spans
// [RingRadii[i], RingRadii[i+1]), so a radius exactly on a boundary belongs
// to the outer ring.
func RingOf(l *layout.Layout, radius float64) Ring {
	radii := l.RingRadii
	if radius >= radii[len(radii)-1] {
		return Outside
	}
	for i := len(radii) - 2; i >= 0; i-- {
		if radius >= radii[i] {
			return Ring(i)
		}
	}
	return Bullseye
}

// SliceOf returns the slice containing angle (radians). The result is in
// [0, NumSlices) for every finite angle.
func SliceOf(l *layout.Layout, angle float64) int {
	rel := math.Mod(geo.Degrees(angle)-l.StartAngle, 360)
	if rel < 0 {
		rel += 360
	}
	idx := int(math.Floor(rel / l.SliceAngle))
	if idx >= l.NumSlices {
		idx = l.NumSlices - 1
	}
	return idx
}

// BoundsOf returns the inner and outer radius of ring. For Outside (and any
// index past the last ring) high is -1: there is no enclosing ring and low is
// the outermost boundary.
func BoundsOf(l *layout.Layout, ring Ring) (low, high float64) {
	radii := l.RingRadii
	switch {
	case ring == Bullseye:
		return 0, radii[0]
	case ring < 0 || int(ring) >= l.NumRings:
		return radii[len(radii)-1], -1
	default:
		return radii[ring], radii[ring+1]
	}
}
