// Package chart assembles a bullseye chart on a drawing surface and routes
// pointer interactions on its points and slice labels to user callbacks.
package chart

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/OCAP2/bullseye/internal/dispatcher"
	"github.com/OCAP2/bullseye/internal/layout"
	"github.com/OCAP2/bullseye/internal/logging"
	"github.com/OCAP2/bullseye/internal/point"
	"github.com/OCAP2/bullseye/internal/surface"
	"github.com/OCAP2/bullseye/internal/telemetry"
)

const (
	// DefaultBullseyeFill colours the bullseye when Options leave it empty.
	DefaultBullseyeFill = "#c0c0c0"
	// DefaultHoverDelay is how long the pointer rests on a point before
	// OnMouseOver fires.
	DefaultHoverDelay = 50 * time.Millisecond

	telemetryQueueSize = 256
)

// Options configures a chart. The number of rings and slices follows the
// number of ring and slice labels.
type Options struct {
	// StartDegree is where the first slice begins. Nil centres the first
	// slice on 0°.
	StartDegree *float64

	SliceLabels  []string
	RingLabels   []string
	RingFills    []string
	BullseyeFill string

	AllowDrag bool
	// HoverDelay postpones OnMouseOver after the pointer enters a point.
	// Zero means DefaultHoverDelay; a negative value disables the delay.
	HoverDelay time.Duration

	OnPointClick   func(p *point.Point)
	OnSliceClick   func(slice int)
	OnMouseOver    func(p *point.Point)
	OnPointDragEnd func(p *point.Point)
}

// Option customizes the collaborators of a Chart.
type Option func(*Chart)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Chart) { c.logger = l }
}

// WithEventLogger sets the logger used by the event dispatcher.
func WithEventLogger(l dispatcher.Logger) Option {
	return func(c *Chart) { c.eventLogger = l }
}

// WithRecorder sets where clicks and finished drags are recorded.
func WithRecorder(r telemetry.Recorder) Option {
	return func(c *Chart) { c.recorder = r }
}

// Chart is a drawn bullseye chart and the points placed on it.
type Chart struct {
	surface surface.Surface
	layout  *layout.Layout
	opts    Options

	logger      *slog.Logger
	eventLogger dispatcher.Logger
	recorder    telemetry.Recorder
	events      *dispatcher.Dispatcher

	sliceLabels []surface.Shape
	sliceAreas  []surface.Shape

	mu     sync.RWMutex
	points []*point.Point
	nextID int
}

// New computes the layout for s and draws the chart.
func New(s surface.Surface, opts Options, options ...Option) (*Chart, error) {
	w, h := s.Size()
	l, err := layout.Compute(layout.Config{
		Width:       w,
		Height:      h,
		Rings:       len(opts.RingLabels),
		Slices:      len(opts.SliceLabels),
		StartDegree: opts.StartDegree,
	})
	if err != nil {
		return nil, err
	}

	if opts.BullseyeFill == "" {
		opts.BullseyeFill = DefaultBullseyeFill
	}
	if opts.HoverDelay == 0 {
		opts.HoverDelay = DefaultHoverDelay
	}

	c := &Chart{
		surface:  s,
		layout:   l,
		opts:     opts,
		logger:   slog.Default(),
		recorder: telemetry.Nop{},
	}
	for _, o := range options {
		o(c)
	}

	c.events, err = dispatcher.New(c.eventLogger)
	if err != nil {
		return nil, fmt.Errorf("creating event dispatcher: %w", err)
	}
	c.registerHandlers()

	c.draw()

	c.logger.Debug("chart drawn",
		"rings", l.NumRings,
		"slices", l.NumSlices,
		"maxRadius", l.MaxRadius,
		"startAngle", l.StartAngle,
	)
	return c, nil
}

// Layout returns the chart geometry.
func (c *Chart) Layout() *layout.Layout {
	return c.layout
}

// AddPoint places a new point. Ids start at 1 and only advance on success.
func (c *Chart) AddPoint(pl point.Placement) (*point.Point, error) {
	c.mu.Lock()
	id := c.nextID + 1
	p, err := point.New(id, c.layout, pl, c.surface)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.nextID = id
	c.points = append(c.points, p)
	c.mu.Unlock()

	c.bindPoint(p)

	c.logger.DebugContext(pointLogContext(p), "point added",
		"distance", p.Distance(),
		"angle", p.Angle(),
	)
	return p, nil
}

// RemovePoint removes p from the chart and the surface. It reports whether p
// belonged to the chart.
func (c *Chart) RemovePoint(p *point.Point) bool {
	c.mu.Lock()
	idx := -1
	for i, other := range c.points {
		if other == p {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	c.points = append(c.points[:idx], c.points[idx+1:]...)
	c.mu.Unlock()

	c.events.Cancel(CmdPointMouseOver, pointKey(p.ID()))
	p.Remove()

	c.logger.DebugContext(pointLogContext(p), "point removed")
	return true
}

// Points returns the chart's points in insertion order.
func (c *Chart) Points() []*point.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*point.Point, len(c.points))
	copy(out, c.points)
	return out
}

// Point looks up a point by id.
func (c *Chart) Point(id int) (*point.Point, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.points {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of points.
func (c *Chart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.points)
}

// Close drops pending hover callbacks, waits for queued telemetry and closes
// the recorder.
func (c *Chart) Close() error {
	c.events.Close()
	return c.recorder.Close()
}

// pointLogContext tags log records with the point's id and where it sits.
func pointLogContext(p *point.Point) context.Context {
	attrs := []slog.Attr{
		slog.Int("point", p.ID()),
		slog.String("ring", p.ClassifyRing().String()),
	}
	if slice, ok := p.ClassifySlice(); ok {
		attrs = append(attrs, slog.Int("slice", slice))
	}
	return logging.ContextWith(context.Background(), attrs...)
}

func pointKey(id int) string {
	return "point:" + strconv.Itoa(id)
}

func sliceKey(i int) string {
	return "slice:" + strconv.Itoa(i)
}
