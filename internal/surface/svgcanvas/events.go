package svgcanvas

import (
	geom "github.com/peterstace/simplefeatures/geom"
)

func (s *Scene) hit(p geom.XY) *element {
	for i := len(s.shapes) - 1; i >= 0; i-- {
		if e := s.shapes[i]; e.contains(p) {
			return e
		}
	}
	return nil
}

// Click delivers a click at p to the topmost shape. It reports whether a
// click handler ran.
func (s *Scene) Click(p geom.XY) bool {
	e := s.hit(p)
	if e == nil || e.onClick == nil {
		return false
	}
	e.onClick()
	return true
}

// MoveTo moves the pointer to p, delivering leave and enter events when the
// shape under the pointer changes.
func (s *Scene) MoveTo(p geom.XY) {
	target := s.hit(p)
	if target == s.hovered {
		return
	}
	if prev := s.hovered; prev != nil && prev.onOut != nil {
		prev.onOut()
	}
	s.hovered = target
	if target != nil && target.onIn != nil {
		target.onIn()
	}
}

// Drag presses on the shape under from, moves to to in steps increments and
// releases. Move handlers receive the cumulative offset from from. It
// reports whether a draggable shape was hit.
func (s *Scene) Drag(from, to geom.XY, steps int) bool {
	e := s.hit(from)
	if e == nil || !e.draggable {
		return false
	}
	if steps < 1 {
		steps = 1
	}
	if e.onStart != nil {
		e.onStart()
	}
	for k := 1; k <= steps; k++ {
		f := float64(k) / float64(steps)
		if e.onMove != nil {
			e.onMove((to.X-from.X)*f, (to.Y-from.Y)*f)
		}
	}
	if e.onEnd != nil {
		e.onEnd()
	}
	return true
}
