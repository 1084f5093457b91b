package point

import (
	"math"
	"testing"

	"github.com/OCAP2/bullseye/internal/classify"
	"github.com/OCAP2/bullseye/internal/geo"
	"github.com/OCAP2/bullseye/internal/layout"
	"github.com/OCAP2/bullseye/internal/surface/svgcanvas"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

// threeRings is a 600px chart with radii [30 100 170 240] and four slices
// starting at -45°.
func threeRings(t *testing.T) *layout.Layout {
	t.Helper()
	l, err := layout.Compute(layout.Config{Width: 600, Height: 600, Rings: 3, Slices: 4})
	require.NoError(t, err)
	return l
}

func ring(i int) *int { return &i }

func TestResolve_RingPlacement(t *testing.T) {
	l := threeRings(t)

	st, err := Resolve(l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5})
	require.NoError(t, err)

	assert.InDelta(t, 135, st.Radius, eps)
	assert.InDelta(t, 435, st.Position.X, eps)
	assert.InDelta(t, 300, st.Position.Y, eps)
	assert.InDelta(t, 135.0/240, st.Distance, eps)
	assert.Equal(t, 0.5, st.RingDistance)
}

func TestResolve_WithoutRing(t *testing.T) {
	l := threeRings(t)

	st, err := Resolve(l, Placement{Angle: math.Pi / 2, Distance: 0.5})
	require.NoError(t, err)

	assert.InDelta(t, 120, st.Radius, eps)
	assert.InDelta(t, 300, st.Position.X, eps)
	assert.InDelta(t, 180, st.Position.Y, eps)
	assert.InDelta(t, 0.5, st.Distance, eps)
}

func TestResolve_BullseyeRing(t *testing.T) {
	l := threeRings(t)

	st, err := Resolve(l, Placement{Ring: ring(-1), Distance: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 15, st.Radius, eps)
}

func TestResolve_NormalizesAngle(t *testing.T) {
	l := threeRings(t)

	st, err := Resolve(l, Placement{Angle: -math.Pi / 2, Distance: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 3*math.Pi/2, st.Angle, eps)
	assert.InDelta(t, 420, st.Position.Y, eps)
}

func TestResolve_Idempotent(t *testing.T) {
	l := threeRings(t)
	pl := Placement{Angle: 1.234, Ring: ring(2), Distance: 0.3}

	a, err := Resolve(l, pl)
	require.NoError(t, err)
	b, err := Resolve(l, pl)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolve_Rejects(t *testing.T) {
	l := threeRings(t)

	tests := []struct {
		name string
		pl   Placement
	}{
		{"nan angle", Placement{Angle: math.NaN()}},
		{"infinite angle", Placement{Angle: math.Inf(1)}},
		{"distance above one", Placement{Distance: 1.5}},
		{"negative distance", Placement{Distance: -0.1}},
		{"nan distance", Placement{Distance: math.NaN()}},
		{"ring past last", Placement{Ring: ring(3)}},
		{"ring below bullseye", Placement{Ring: ring(-2)}},
		{"negative size", Placement{Size: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(l, tt.pl)
			assert.ErrorIs(t, err, ErrPlacement)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	l := threeRings(t)

	p, err := New(7, l, Placement{Distance: 0.5}, nil)
	require.NoError(t, err)

	assert.Equal(t, 7, p.ID())
	assert.Equal(t, DefaultFill, p.Fill())
	assert.Equal(t, DefaultSize, p.Size())
	assert.Equal(t, "Point 7", p.Label())
	assert.Nil(t, p.Marker())
	assert.Nil(t, p.LabelShape())
}

func TestNew_InvalidPlacementDrawsNothing(t *testing.T) {
	l := threeRings(t)
	scene := svgcanvas.New(600, 600)

	_, err := New(1, l, Placement{Distance: 2}, scene)
	assert.ErrorIs(t, err, ErrPlacement)
	assert.Equal(t, 0, scene.Len())
}

func TestNew_DrawsMarkerAndLabel(t *testing.T) {
	l := threeRings(t)
	scene := svgcanvas.New(600, 600)

	p, err := New(1, l, Placement{Ring: ring(1), Distance: 0.5, Fill: "#ff0000", Size: 4}, scene)
	require.NoError(t, err)
	require.Equal(t, 2, scene.Len())

	m := p.Marker()
	assert.Equal(t, "#ff0000", m.Get("fill"))
	assert.InDelta(t, 435, m.Get("cx"), eps)
	assert.InDelta(t, 300, m.Get("cy"), eps)
	assert.Equal(t, 4.0, m.Get("r"))
	assert.Equal(t, "Point 1", p.LabelShape().Get("text"))
}

func TestClassify_Scenario(t *testing.T) {
	l := threeRings(t)

	p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, nil)
	require.NoError(t, err)

	assert.Equal(t, classify.Ring(1), p.ClassifyRing())
	slice, ok := p.ClassifySlice()
	assert.True(t, ok)
	assert.Equal(t, 0, slice)
}

func TestClassify_CentreIsBullseye(t *testing.T) {
	l := threeRings(t)

	p, err := New(1, l, Placement{Angle: 2, Distance: 0}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 300, p.Position().X, eps)
	assert.InDelta(t, 300, p.Position().Y, eps)
	assert.Equal(t, classify.Bullseye, p.ClassifyRing())
	_, ok := p.ClassifySlice()
	assert.False(t, ok)
}

func TestLabel_RightOfCentre(t *testing.T) {
	l := threeRings(t)
	scene := svgcanvas.New(600, 600)

	p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, scene)
	require.NoError(t, err)

	// marker width 10, "Point 1" is 42 wide at the default font size
	label := p.LabelShape()
	assert.InDelta(t, 435+10+21, label.Get("x"), eps)
	assert.InDelta(t, 300, label.Get("y"), eps)
}

func TestLabel_MirroredLeftOfCentre(t *testing.T) {
	l := threeRings(t)
	scene := svgcanvas.New(600, 600)

	p, err := New(1, l, Placement{Angle: math.Pi, Ring: ring(1), Distance: 0.5}, scene)
	require.NoError(t, err)

	assert.InDelta(t, 165-31, p.LabelShape().Get("x"), 1e-6)
}

func TestSetLabel(t *testing.T) {
	l := threeRings(t)
	scene := svgcanvas.New(600, 600)

	p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, scene)
	require.NoError(t, err)

	p.SetLabel("Go")
	assert.Equal(t, "Go", p.Label())
	assert.Equal(t, "Go", p.LabelShape().Get("text"))
	// "Go" is 12 wide
	assert.InDelta(t, 435+10+6, p.LabelShape().Get("x"), eps)
}

func TestDrag_ReclassifiesIntoOuterRing(t *testing.T) {
	l := threeRings(t)
	scene := svgcanvas.New(600, 600)

	p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, scene)
	require.NoError(t, err)

	p.BeginDrag()
	assert.True(t, p.Dragging())
	for range 7 {
		p.ApplyDragDelta(10, 0)
	}
	dx, dy := p.DragOffset()
	assert.InDelta(t, 70, dx, eps)
	assert.InDelta(t, 0, dy, eps)
	p.EndDrag()
	assert.False(t, p.Dragging())

	assert.InDelta(t, 205, p.Radius(), eps)
	assert.InDelta(t, 0, p.Angle(), eps)
	assert.InDelta(t, 205.0/240, p.Distance(), eps)
	assert.Equal(t, classify.Ring(2), p.ClassifyRing())
	assert.InDelta(t, 0.5, p.RingDistance(), eps)
	assert.InDelta(t, 505, p.Marker().Get("cx"), eps)
}

func TestDrag_Outside(t *testing.T) {
	l := threeRings(t)

	p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, nil)
	require.NoError(t, err)

	p.BeginDrag()
	p.ApplyDragDelta(200, 0)
	p.EndDrag()

	assert.Equal(t, classify.Outside, p.ClassifyRing())
	assert.Equal(t, -1.0, p.RingDistance())
	assert.InDelta(t, 335.0/240, p.Distance(), eps)
}

func TestDrag_IntoBullseye(t *testing.T) {
	l := threeRings(t)

	p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, nil)
	require.NoError(t, err)

	p.BeginDrag()
	p.ApplyDragDelta(-125, 0)
	p.EndDrag()

	assert.Equal(t, classify.Bullseye, p.ClassifyRing())
	assert.InDelta(t, 10.0/30, p.RingDistance(), eps)
	_, ok := p.ClassifySlice()
	assert.False(t, ok)
}

func TestDrag_StateAgreesWithPixels(t *testing.T) {
	l := threeRings(t)

	moves := []geom.XY{
		{X: -40, Y: -80},
		{X: 13.5, Y: 201},
		{X: -260, Y: 3},
		{X: 0, Y: -135},
		{X: 71, Y: 71},
		{X: 35, Y: 0},  // ends exactly on the ring 1/2 boundary
		{X: 105, Y: 0}, // ends exactly on the outermost boundary
		{X: -105, Y: 0},
	}

	for _, d := range moves {
		p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, nil)
		require.NoError(t, err)

		p.BeginDrag()
		p.ApplyDragDelta(d.X/2, d.Y/2)
		p.ApplyDragDelta(d.X/2, d.Y/2)
		p.EndDrag()

		pos := p.Position()
		back := geo.PolarToCartesian(l.Center, p.Radius(), p.Angle())
		assert.InDelta(t, pos.X, back.X, 1e-6)
		assert.InDelta(t, pos.Y, back.Y, 1e-6)
		r := math.Hypot(pos.X-300, pos.Y-300)
		ringOf := classify.RingOf(l, r)
		assert.Equal(t, ringOf, p.ClassifyRing())
		low, high := classify.BoundsOf(l, ringOf)
		if ringOf == classify.Outside {
			assert.Equal(t, -1.0, p.RingDistance())
		} else {
			assert.InDelta(t, (r-low)/(high-low), p.RingDistance(), 1e-9)
		}
		assert.InDelta(t, r/l.MaxRadius, p.Distance(), 1e-9)
		assert.GreaterOrEqual(t, p.Angle(), 0.0)
		assert.Less(t, p.Angle(), 2*math.Pi)
	}
}

func TestDrag_AcrossRingBoundary(t *testing.T) {
	l := threeRings(t)

	tests := []struct {
		name         string
		dx           float64
		ring         classify.Ring
		ringDistance float64
	}{
		{"onto inner edge of ring 2", 35, 2, 0},
		{"just short of ring 2", 34.5, 1, 69.5 / 70},
		{"onto outermost boundary", 105, classify.Outside, -1},
		{"onto bullseye edge", -105, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(1, l, Placement{Angle: 0, Ring: ring(1), Distance: 0.5}, nil)
			require.NoError(t, err)

			// one gesture, several moves
			p.BeginDrag()
			for range 4 {
				p.ApplyDragDelta(tt.dx/4, 0)
			}
			p.EndDrag()

			assert.Equal(t, tt.ring, p.ClassifyRing())
			assert.InDelta(t, tt.ringDistance, p.RingDistance(), 1e-9)
		})
	}
}

func TestRemove_Idempotent(t *testing.T) {
	l := threeRings(t)
	scene := svgcanvas.New(600, 600)

	p, err := New(1, l, Placement{Distance: 0.5}, scene)
	require.NoError(t, err)
	require.Equal(t, 2, scene.Len())

	p.Remove()
	p.Remove()
	assert.Equal(t, 0, scene.Len())
}
