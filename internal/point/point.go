package point

import (
	"fmt"
	"sync"

	"github.com/OCAP2/bullseye/internal/classify"
	"github.com/OCAP2/bullseye/internal/geo"
	"github.com/OCAP2/bullseye/internal/layout"
	"github.com/OCAP2/bullseye/internal/surface"
	geom "github.com/peterstace/simplefeatures/geom"
)

// labelMirrorMargin is how far left of the centre a point must sit before
// its label flips to the left side.
const labelMirrorMargin = 10

// Point is a point placed on a chart. Accessors may be called from any
// goroutine; mutations are serialized.
type Point struct {
	id     int
	layout *layout.Layout

	mu    sync.RWMutex
	state State

	fill  string
	size  float64
	label string

	marker surface.Shape
	text   surface.Shape

	dragging  bool
	dragStart geom.XY
}

// New resolves pl on l and, when s is non-nil, draws the marker and its label
// on s. A nil surface yields a headless point.
func New(id int, l *layout.Layout, pl Placement, s surface.Surface) (*Point, error) {
	st, err := Resolve(l, pl)
	if err != nil {
		return nil, err
	}

	p := &Point{
		id:     id,
		layout: l,
		state:  st,
		fill:   pl.Fill,
		size:   pl.Size,
		label:  pl.Label,
	}
	if p.fill == "" {
		p.fill = DefaultFill
	}
	if p.size == 0 {
		p.size = DefaultSize
	}
	if p.label == "" {
		p.label = fmt.Sprintf("Point %d", id)
	}

	if s != nil {
		p.marker = s.Circle(st.Position, p.size).Attr(surface.Attrs{
			"fill":         p.fill,
			"stroke":       0,
			"stroke-width": 0,
		})
		p.text = s.Text(geom.XY{X: -9999, Y: st.Position.Y}, p.label)
	}
	p.placeLabel()

	return p, nil
}

// ID returns the chart-assigned id.
func (p *Point) ID() int { return p.id }

// Angle returns the polar angle in radians.
func (p *Point) Angle() float64 { return p.State().Angle }

// Radius returns the distance from the centre in pixels.
func (p *Point) Radius() float64 { return p.State().Radius }

// Distance returns Radius as a fraction of the chart's maximum radius.
func (p *Point) Distance() float64 { return p.State().Distance }

// RingDistance returns the fraction across the point's ring, -1 outside.
func (p *Point) RingDistance() float64 { return p.State().RingDistance }

// Position returns the pixel position.
func (p *Point) Position() geom.XY { return p.State().Position }

// State returns a consistent snapshot of the point's position.
func (p *Point) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Fill returns the marker colour.
func (p *Point) Fill() string { return p.fill }

// Size returns the marker radius in pixels.
func (p *Point) Size() float64 { return p.size }

// Label returns the label text.
func (p *Point) Label() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.label
}

// Marker returns the drawn marker, nil for headless points or once removed.
func (p *Point) Marker() surface.Shape {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.marker
}

// LabelShape returns the drawn label, nil for headless points or once removed.
func (p *Point) LabelShape() surface.Shape {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.text
}

// Dragging reports whether a drag gesture is in progress.
func (p *Point) Dragging() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dragging
}

// ClassifyRing returns the ring the point's radius falls in.
func (p *Point) ClassifyRing() classify.Ring {
	return classify.RingOf(p.layout, p.Radius())
}

// ClassifySlice returns the slice under the point. Points inside the bullseye
// belong to no slice.
func (p *Point) ClassifySlice() (int, bool) {
	st := p.State()
	if st.Radius < p.layout.BullseyeRadius {
		return 0, false
	}
	return classify.SliceOf(p.layout, st.Angle), true
}

// SetLabel replaces the label text and re-positions it beside the marker.
func (p *Point) SetLabel(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = text
	if p.text != nil {
		p.text.Attr(surface.Attrs{surface.AttrText: text})
	}
	p.placeLabel()
}

// placeLabel puts the label one marker width plus half its own width to the
// right of the marker, or to the left when the marker is left of centre.
// Callers hold p.mu.
func (p *Point) placeLabel() {
	if p.text == nil {
		return
	}
	pos := p.state.Position

	pw := 2 * p.size
	if p.marker != nil {
		pw = p.marker.BBox().Width
	}
	offset := pw + p.text.BBox().Width/2
	if pos.X+labelMirrorMargin < p.layout.Center.X {
		offset = -offset
	}

	p.text.Attr(surface.Attrs{
		surface.AttrX: pos.X + offset,
		surface.AttrY: pos.Y,
	})
}

// BeginDrag marks the start of a drag gesture.
func (p *Point) BeginDrag() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dragging = true
	p.dragStart = p.state.Position
}

// ApplyDragDelta moves the point by an increment relative to the previous
// call. Polar state is left untouched until EndDrag.
func (p *Point) ApplyDragDelta(dx, dy float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := geom.XY{X: p.state.Position.X + dx, Y: p.state.Position.Y + dy}
	p.state.Position = pos
	if p.marker != nil {
		p.marker.Attr(surface.Attrs{
			surface.AttrCX: pos.X,
			surface.AttrCY: pos.Y,
		})
	}
	p.placeLabel()
}

// DragOffset returns how far the point moved since BeginDrag.
func (p *Point) DragOffset() (dx, dy float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.dragging {
		return 0, 0
	}
	return p.state.Position.X - p.dragStart.X, p.state.Position.Y - p.dragStart.Y
}

// EndDrag recomputes the polar state from the current pixel position.
func (p *Point) EndDrag() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dragging = false

	l := p.layout
	radius, angle := geo.CartesianToPolar(l.Center, p.state.Position)
	p.state.Radius = radius
	p.state.Angle = angle
	p.state.Distance = radius / l.MaxRadius

	low, high := classify.BoundsOf(l, classify.RingOf(l, radius))
	if high < 0 {
		p.state.RingDistance = -1
	} else {
		p.state.RingDistance = (radius - low) / (high - low)
	}
}

// Remove deletes the marker and label from the surface. Calling it again is a
// no-op.
func (p *Point) Remove() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.marker != nil {
		p.marker.Remove()
		p.marker = nil
	}
	if p.text != nil {
		p.text.Remove()
		p.text = nil
	}
}
