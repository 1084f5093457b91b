package chart

import (
	"context"
	"fmt"

	"github.com/OCAP2/bullseye/internal/dispatcher"
	"github.com/OCAP2/bullseye/internal/point"
	"github.com/OCAP2/bullseye/internal/surface"
	"github.com/OCAP2/bullseye/internal/telemetry"
)

// Dispatcher commands raised by the chart.
const (
	CmdPointClick     = "point.click"
	CmdPointHover     = "point.hover"
	CmdPointHoverOut  = "point.hover.out"
	CmdPointMouseOver = "point.mouseover"
	CmdPointDragStart = "point.drag.start"
	CmdPointDragMove  = "point.drag.move"
	CmdPointDragEnd   = "point.drag.end"
	CmdSliceClick     = "slice.click"
	CmdSliceHover     = "slice.hover"
	CmdSliceHoverOut  = "slice.hover.out"
	CmdTelemetry      = "telemetry.record"
)

// dragMove carries the cumulative offset since the drag started.
type dragMove struct {
	point  *point.Point
	dx, dy float64
}

func (c *Chart) registerHandlers() {
	d := c.events

	d.Register(CmdPointClick, c.onPointClick, dispatcher.Logged())
	d.Register(CmdPointHover, c.onPointHover, dispatcher.Logged())
	d.Register(CmdPointHoverOut, c.onPointHoverOut, dispatcher.Logged())
	d.Register(CmdPointMouseOver, c.onMouseOver, dispatcher.Deferred(c.opts.HoverDelay), dispatcher.Logged())
	d.Register(CmdPointDragStart, c.onDragStart, dispatcher.Logged())
	d.Register(CmdPointDragMove, c.onDragMove)
	d.Register(CmdPointDragEnd, c.onDragEnd, dispatcher.Logged())

	d.Register(CmdSliceClick, c.onSliceClick, dispatcher.Logged())
	d.Register(CmdSliceHover, c.onSliceHover, dispatcher.Logged())
	d.Register(CmdSliceHoverOut, c.onSliceHoverOut, dispatcher.Logged())

	d.Register(CmdTelemetry, c.onTelemetry, dispatcher.Buffered(telemetryQueueSize))
}

// bindPoint subscribes the point's marker to surface events.
func (c *Chart) bindPoint(p *point.Point) {
	m := p.Marker()
	if m == nil {
		return
	}
	key := pointKey(p.ID())

	m.OnClick(func() { c.dispatch(CmdPointClick, key, p) })
	m.OnHover(
		func() { c.dispatch(CmdPointHover, key, p) },
		func() { c.dispatch(CmdPointHoverOut, key, p) },
	)
	if c.opts.AllowDrag {
		m.OnDrag(
			func(dx, dy float64) { c.dispatch(CmdPointDragMove, key, dragMove{point: p, dx: dx, dy: dy}) },
			func() { c.dispatch(CmdPointDragStart, key, p) },
			func() { c.dispatch(CmdPointDragEnd, key, p) },
		)
	}
}

func (c *Chart) dispatch(command, key string, payload any) {
	_, err := c.events.Dispatch(dispatcher.Event{Command: command, Key: key, Payload: payload})
	if err != nil {
		c.logger.Error("event dispatch failed", "command", command, "key", key, "error", err)
	}
}

func pointPayload(e dispatcher.Event) (*point.Point, error) {
	p, ok := e.Payload.(*point.Point)
	if !ok || p == nil {
		return nil, fmt.Errorf("%s: payload %T is not a point", e.Command, e.Payload)
	}
	return p, nil
}

func slicePayload(e dispatcher.Event) (int, error) {
	i, ok := e.Payload.(int)
	if !ok {
		return 0, fmt.Errorf("%s: payload %T is not a slice index", e.Command, e.Payload)
	}
	return i, nil
}

func (c *Chart) onPointClick(e dispatcher.Event) (any, error) {
	p, err := pointPayload(e)
	if err != nil {
		return nil, err
	}
	c.recordPoint(e, p)
	if c.opts.OnPointClick != nil {
		c.opts.OnPointClick(p)
	}
	return nil, nil
}

// onPointHover highlights the marker right away; the user callback waits for
// the hover delay.
func (c *Chart) onPointHover(e dispatcher.Event) (any, error) {
	p, err := pointPayload(e)
	if err != nil {
		return nil, err
	}
	if m := p.Marker(); m != nil {
		m.Attr(surface.Attrs{
			"stroke":         "#FFFF00",
			"stroke-width":   2,
			"stroke-opacity": 0.5,
		})
	}
	return c.events.Dispatch(dispatcher.Event{Command: CmdPointMouseOver, Key: e.Key, Payload: p})
}

func (c *Chart) onPointHoverOut(e dispatcher.Event) (any, error) {
	p, err := pointPayload(e)
	if err != nil {
		return nil, err
	}
	if m := p.Marker(); m != nil {
		m.Attr(surface.Attrs{
			"stroke":       0,
			"stroke-width": 0,
		})
	}
	return c.events.Cancel(CmdPointMouseOver, e.Key), nil
}

func (c *Chart) onMouseOver(e dispatcher.Event) (any, error) {
	p, err := pointPayload(e)
	if err != nil {
		return nil, err
	}
	if c.opts.OnMouseOver != nil {
		c.opts.OnMouseOver(p)
	}
	return nil, nil
}

func (c *Chart) onDragStart(e dispatcher.Event) (any, error) {
	p, err := pointPayload(e)
	if err != nil {
		return nil, err
	}
	p.BeginDrag()
	return nil, nil
}

// onDragMove turns the surface's cumulative offset into the increment since
// the previous move.
func (c *Chart) onDragMove(e dispatcher.Event) (any, error) {
	mv, ok := e.Payload.(dragMove)
	if !ok || mv.point == nil {
		return nil, fmt.Errorf("%s: payload %T is not a drag move", e.Command, e.Payload)
	}
	if !mv.point.Dragging() {
		return nil, fmt.Errorf("%s: point %d is not being dragged", e.Command, mv.point.ID())
	}
	ox, oy := mv.point.DragOffset()
	mv.point.ApplyDragDelta(mv.dx-ox, mv.dy-oy)
	return nil, nil
}

func (c *Chart) onDragEnd(e dispatcher.Event) (any, error) {
	p, err := pointPayload(e)
	if err != nil {
		return nil, err
	}
	if !p.Dragging() {
		return nil, fmt.Errorf("%s: point %d is not being dragged", e.Command, p.ID())
	}
	p.EndDrag()

	c.logger.DebugContext(pointLogContext(p), "point moved",
		"ringDistance", p.RingDistance(),
		"distance", p.Distance(),
		"angle", p.Angle(),
	)
	c.recordPoint(e, p)
	if c.opts.OnPointDragEnd != nil {
		c.opts.OnPointDragEnd(p)
	}
	return nil, nil
}

func (c *Chart) onSliceClick(e dispatcher.Event) (any, error) {
	i, err := slicePayload(e)
	if err != nil {
		return nil, err
	}
	c.record(e.Key, telemetry.Interaction{Kind: e.Command, Slice: i, Time: e.Timestamp})
	if c.opts.OnSliceClick != nil {
		c.opts.OnSliceClick(i)
	}
	return nil, nil
}

func (c *Chart) onSliceHover(e dispatcher.Event) (any, error) {
	i, err := slicePayload(e)
	if err != nil {
		return nil, err
	}
	c.highlightSlice(i, true)
	return nil, nil
}

func (c *Chart) onSliceHoverOut(e dispatcher.Event) (any, error) {
	i, err := slicePayload(e)
	if err != nil {
		return nil, err
	}
	c.highlightSlice(i, false)
	return nil, nil
}

func (c *Chart) recordPoint(e dispatcher.Event, p *point.Point) {
	slice, ok := p.ClassifySlice()
	if !ok {
		slice = -1
	}
	c.record(e.Key, telemetry.Interaction{
		Kind:         e.Command,
		PointID:      p.ID(),
		Ring:         p.ClassifyRing().String(),
		Slice:        slice,
		Angle:        p.Angle(),
		Distance:     p.Distance(),
		RingDistance: p.RingDistance(),
		Time:         e.Timestamp,
	})
}

func (c *Chart) record(key string, in telemetry.Interaction) {
	c.dispatch(CmdTelemetry, key, in)
}

func (c *Chart) onTelemetry(e dispatcher.Event) (any, error) {
	in, ok := e.Payload.(telemetry.Interaction)
	if !ok {
		return nil, fmt.Errorf("%s: payload %T is not an interaction", e.Command, e.Payload)
	}
	return nil, c.recorder.Record(context.Background(), in)
}
