package layout

import (
	"errors"
	"math"
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func degrees(v float64) *float64 { return &v }

func TestCompute_Defaults(t *testing.T) {
	l, err := Compute(Config{Width: 600, Height: 500, Rings: 3, Slices: 4})
	require.NoError(t, err)

	assert.Equal(t, geom.XY{X: 300, Y: 250}, l.Center)
	assert.Equal(t, 3, l.NumRings)
	assert.Equal(t, 4, l.NumSlices)
	assert.InDelta(t, 240.0, l.MaxRadius, 1e-9)
	assert.InDelta(t, 70.0, l.RingSize, 1e-9)
	assert.InDelta(t, 275.0, l.SliceLabelRadius, 1e-9)
	assert.Equal(t, BullseyeRadius, l.BullseyeRadius)
	assert.InDelta(t, 90.0, l.SliceAngle, 1e-9)
	assert.InDelta(t, -45.0, l.StartAngle, 1e-9)

	require.Len(t, l.RingRadii, 4)
	want := []float64{30, 100, 170, 240}
	for i := range want {
		assert.InDelta(t, want[i], l.RingRadii[i], 1e-9, "boundary %d", i)
	}
}

func TestCompute_RadiiAscending(t *testing.T) {
	for rings := 1; rings <= 8; rings++ {
		l, err := Compute(Config{Width: 800, Height: 800, Rings: rings, Slices: 6})
		require.NoError(t, err)
		require.Len(t, l.RingRadii, rings+1)
		assert.Equal(t, l.BullseyeRadius, l.RingRadii[0])
		assert.InDelta(t, l.MaxRadius, l.RingRadii[rings], 1e-9)
		for i := 1; i < len(l.RingRadii); i++ {
			assert.Greater(t, l.RingRadii[i], l.RingRadii[i-1])
		}
	}
}

func TestCompute_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no rings", Config{Width: 600, Height: 600, Rings: 0, Slices: 4}},
		{"negative slices", Config{Width: 600, Height: 600, Rings: 3, Slices: -1}},
		{"no slices", Config{Width: 600, Height: 600, Rings: 3, Slices: 0}},
		{"zero width", Config{Width: 0, Height: 600, Rings: 3, Slices: 4}},
		{"infinite height", Config{Width: 600, Height: math.Inf(1), Rings: 3, Slices: 4}},
		{"non-finite start", Config{Width: 600, Height: 600, Rings: 3, Slices: 4, StartDegree: degrees(math.NaN())}},
		// the innermost ring edge lands inside the bullseye
		{"canvas too small", Config{Width: 100, Height: 100, Rings: 3, Slices: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Compute(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, l)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}

func TestNormalizeStartDegree(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{330, -30},
		{-30, -30},
		{0, 0},
		{360, 0},
		{390, -330},
		{-400, -40},
		{45.5, -314.5},
	}

	for _, tt := range tests {
		got := NormalizeStartDegree(tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "input %v", tt.in)
		assert.LessOrEqual(t, got, 0.0)
		assert.Greater(t, got, -360.0)
	}
}

func TestCompute_StartDegreeNormalized(t *testing.T) {
	l, err := Compute(Config{Width: 600, Height: 600, Rings: 3, Slices: 4, StartDegree: degrees(330)})
	require.NoError(t, err)
	assert.InDelta(t, -30.0, l.StartAngle, 1e-9)
}

func TestSliceAngles(t *testing.T) {
	l, err := Compute(Config{Width: 600, Height: 600, Rings: 3, Slices: 4})
	require.NoError(t, err)

	assert.InDelta(t, -45.0, l.SliceStart(0), 1e-9)
	assert.InDelta(t, 45.0, l.SliceStart(1), 1e-9)
	assert.InDelta(t, 0.0, l.SliceLabelAngle(0), 1e-9)
	assert.InDelta(t, 90.0, l.SliceLabelAngle(1), 1e-9)

	pos := l.SliceLabelPosition(1)
	assert.InDelta(t, 300.0, pos.X, 1e-9)
	assert.InDelta(t, 300.0-l.SliceLabelRadius, pos.Y, 1e-9)
}

func TestSliceLabelRotation(t *testing.T) {
	l, err := Compute(Config{Width: 600, Height: 600, Rings: 3, Slices: 4})
	require.NoError(t, err)

	// slice 0 sits on the right, its chord is vertical
	assert.InDelta(t, 90.0, l.SliceLabelRotation(0), 1e-9)
	// slice 1 sits on top, its chord is horizontal
	assert.InDelta(t, 0.0, l.SliceLabelRotation(1), 1e-9)
}

func TestRingLabelPosition(t *testing.T) {
	l, err := Compute(Config{Width: 600, Height: 600, Rings: 3, Slices: 4})
	require.NoError(t, err)

	pos := l.RingLabelPosition(2)
	assert.InDelta(t, 300.0, pos.X, 1e-9)
	assert.InDelta(t, 300.0+240-25, pos.Y, 1e-9)
}
