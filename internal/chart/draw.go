package chart

import (
	"strings"

	"github.com/OCAP2/bullseye/internal/geo"
	"github.com/OCAP2/bullseye/internal/surface"
)

const (
	ribbonStartDeg = 265
	ribbonEndDeg   = 275
	ribbonOffset   = 5

	sliceHighlightFill = "#0000ff"
	sliceLabelHover    = "#437dd3"
)

// draw paints the static chart. Order matters: later shapes sit on top.
func (c *Chart) draw() {
	c.drawRings()
	c.drawSeparators()
	c.drawSliceLabels()
	c.drawSliceAreas()
	c.drawRibbon()
	c.drawRingLabels()
	c.drawBullseye()
}

func (c *Chart) drawRings() {
	l := c.layout
	for i := l.NumRings - 1; i >= 0; i-- {
		r := l.RingRadii[i+1]

		c.surface.Circle(l.Center, r+2).Attr(surface.Attrs{
			"fill":           "none",
			"stroke":         "#000000",
			"stroke-width":   2,
			"stroke-opacity": 0.2,
		})

		fill := "#ffffff"
		if i < len(c.opts.RingFills) && c.opts.RingFills[i] != "" {
			fill = c.opts.RingFills[i]
		}
		c.surface.Circle(l.Center, r).Attr(surface.Attrs{
			"fill":         fill,
			"stroke":       "#ffffff",
			"stroke-width": 4,
		})
	}
}

func (c *Chart) drawSeparators() {
	l := c.layout
	r := l.SeparatorRadius()
	for i := 0; i < l.NumSlices; i++ {
		d := geo.LinePath(l.Center, geo.SeparatorEnd(l.Center, r, l.SliceStart(i)))

		c.surface.Path(d).Attr(surface.Attrs{
			"stroke":         "#000000",
			"stroke-width":   5,
			"stroke-opacity": 0.15,
		})
		c.surface.Path(d).Attr(surface.Attrs{
			"stroke":       "#ffffff",
			"stroke-width": 4,
		})
	}
}

func (c *Chart) drawSliceLabels() {
	l := c.layout
	c.sliceLabels = make([]surface.Shape, l.NumSlices)
	for i := 0; i < l.NumSlices; i++ {
		key := sliceKey(i)
		// semi transparent stroke widens the hover target
		c.sliceLabels[i] = c.surface.Text(l.SliceLabelPosition(i), c.opts.SliceLabels[i]).
			Rotate(l.SliceLabelRotation(i)).
			Attr(surface.Attrs{
				"font-size":      14,
				"stroke-width":   2,
				"stroke":         "#fff",
				"stroke-opacity": 0.05,
			}).
			OnClick(func() { c.dispatch(CmdSliceClick, key, i) }).
			OnHover(
				func() { c.dispatch(CmdSliceHover, key, i) },
				func() { c.dispatch(CmdSliceHoverOut, key, i) },
			)
	}
}

func (c *Chart) drawSliceAreas() {
	l := c.layout
	r := l.SeparatorRadius()
	c.sliceAreas = make([]surface.Shape, l.NumSlices)
	for i := 0; i < l.NumSlices; i++ {
		d := geo.WedgePath(l.Center, r, l.SliceStart(i)+1, l.SliceStart(i+1)-1)
		c.sliceAreas[i] = c.surface.Path(d).Attr(surface.Attrs{
			"fill":    "#fff",
			"opacity": 0,
		})
	}
}

// drawRibbon draws the band below the centre that backs the ring labels.
func (c *Chart) drawRibbon() {
	l := c.layout
	d := geo.RibbonPath(l.Center, l.MaxRadius+ribbonOffset, ribbonStartDeg, ribbonEndDeg)
	c.surface.Path(d).Attr(surface.Attrs{
		"fill":         "45-#808080-#000000",
		"fill-opacity": 0.4,
		"stroke-width": 2,
		"stroke":       "#ffffff",
	})
}

func (c *Chart) drawRingLabels() {
	l := c.layout
	for i := l.NumRings - 1; i >= 0; i-- {
		text := strings.ReplaceAll(c.opts.RingLabels[i], " ", "\n")
		c.surface.Text(l.RingLabelPosition(i), text).Attr(surface.Attrs{
			"fill":        "#ffffff",
			"font-weight": "bold",
			"font-size":   "8pt",
		})
	}
}

func (c *Chart) drawBullseye() {
	l := c.layout
	c.surface.Circle(l.Center, l.BullseyeRadius+1).Attr(surface.Attrs{
		"fill":           "none",
		"stroke":         "#000000",
		"stroke-width":   2,
		"stroke-opacity": 0.5,
	})
	c.surface.Circle(l.Center, l.BullseyeRadius).Attr(surface.Attrs{
		"fill":         c.opts.BullseyeFill,
		"stroke-width": 0,
	})
}

func (c *Chart) highlightSlice(i int, on bool) {
	if i < 0 || i >= len(c.sliceLabels) {
		return
	}
	if on {
		c.sliceLabels[i].Attr(surface.Attrs{"fill": sliceLabelHover})
		c.sliceAreas[i].Attr(surface.Attrs{"fill": sliceHighlightFill, "opacity": 0.1})
		return
	}
	c.sliceLabels[i].Attr(surface.Attrs{"fill": "#000000"})
	c.sliceAreas[i].Attr(surface.Attrs{"fill": "#fff", "opacity": 0})
}
