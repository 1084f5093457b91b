// Package svgcanvas is a retained-mode drawing surface. Shapes are kept in
// draw order so pointer events can be delivered by hit-testing, and the scene
// can be rendered to SVG at any time.
package svgcanvas

import (
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/bullseye/internal/surface"
	geom "github.com/peterstace/simplefeatures/geom"
)

const (
	defaultFontSize = 10.0
	glyphWidth      = 0.6
	lineHeight      = 1.2
)

type kind int

const (
	kindCircle kind = iota
	kindPath
	kindText
)

// Scene implements surface.Surface.
type Scene struct {
	width, height float64

	nextID  int
	shapes  []*element
	hovered *element
}

// New creates an empty scene of the given pixel size.
func New(width, height float64) *Scene {
	return &Scene{width: width, height: height}
}

// Size returns the scene dimensions.
func (s *Scene) Size() (float64, float64) {
	return s.width, s.height
}

// Circle adds a circle.
func (s *Scene) Circle(center geom.XY, r float64) surface.Shape {
	return s.add(kindCircle, surface.Attrs{
		surface.AttrCX: center.X,
		surface.AttrCY: center.Y,
		surface.AttrR:  r,
	})
}

// Path adds a path from SVG path data.
func (s *Scene) Path(d string) surface.Shape {
	return s.add(kindPath, surface.Attrs{surface.AttrPath: d})
}

// Text adds a text element centred on at. Newlines split lines.
func (s *Scene) Text(at geom.XY, text string) surface.Shape {
	return s.add(kindText, surface.Attrs{
		surface.AttrX:    at.X,
		surface.AttrY:    at.Y,
		surface.AttrText: text,
	})
}

// Len returns the number of live shapes.
func (s *Scene) Len() int {
	return len(s.shapes)
}

func (s *Scene) add(k kind, attrs surface.Attrs) *element {
	s.nextID++
	e := &element{scene: s, id: s.nextID, kind: k, attrs: attrs}
	s.shapes = append(s.shapes, e)
	return e
}

func (s *Scene) remove(e *element) {
	for i, other := range s.shapes {
		if other == e {
			s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
			break
		}
	}
	if s.hovered == e {
		s.hovered = nil
	}
}

// element is a single shape in a Scene.
type element struct {
	scene *Scene
	id    int
	kind  kind
	attrs surface.Attrs

	rotation float64
	removed  bool

	onClick   func()
	onIn      func()
	onOut     func()
	onMove    func(dx, dy float64)
	onStart   func()
	onEnd     func()
	draggable bool
}

func (e *element) ID() int { return e.id }

func (e *element) Attr(a surface.Attrs) surface.Shape {
	for k, v := range a {
		e.attrs[k] = v
	}
	return e
}

func (e *element) Get(key string) any {
	return e.attrs[key]
}

func (e *element) OnClick(fn func()) surface.Shape {
	e.onClick = fn
	return e
}

func (e *element) OnHover(in, out func()) surface.Shape {
	e.onIn, e.onOut = in, out
	return e
}

func (e *element) OnDrag(move func(dx, dy float64), start, end func()) surface.Shape {
	e.onMove, e.onStart, e.onEnd = move, start, end
	e.draggable = true
	return e
}

func (e *element) Rotate(deg float64) surface.Shape {
	e.rotation = deg
	return e
}

func (e *element) Remove() {
	if e.removed {
		return
	}
	e.removed = true
	e.scene.remove(e)
}

// BBox returns the shape's bounds. Text boxes are in the text's own frame,
// before rotation.
func (e *element) BBox() surface.Box {
	switch e.kind {
	case kindCircle:
		cx, cy, r := e.float(surface.AttrCX), e.float(surface.AttrCY), e.float(surface.AttrR)
		return surface.Box{X: cx - r, Y: cy - r, Width: 2 * r, Height: 2 * r}
	case kindText:
		lines := strings.Split(e.str(surface.AttrText), "\n")
		longest := 0
		for _, l := range lines {
			if n := len([]rune(l)); n > longest {
				longest = n
			}
		}
		size := e.fontSize()
		w := float64(longest) * size * glyphWidth
		h := float64(len(lines)) * size * lineHeight
		x, y := e.float(surface.AttrX), e.float(surface.AttrY)
		return surface.Box{X: x - w/2, Y: y - h/2, Width: w, Height: h}
	default:
		return pathBox(e.str(surface.AttrPath))
	}
}

// contains reports whether p hits the shape. Paths are not hit targets.
func (e *element) contains(p geom.XY) bool {
	switch e.kind {
	case kindCircle:
		dx := p.X - e.float(surface.AttrCX)
		dy := p.Y - e.float(surface.AttrCY)
		r := e.float(surface.AttrR)
		return dx*dx+dy*dy <= r*r
	case kindText:
		return e.BBox().Contains(e.unrotate(p))
	default:
		return false
	}
}

// unrotate maps a scene point into the text's unrotated frame. Rotation is
// clockwise on screen around the text anchor, as SVG rotate() draws it.
func (e *element) unrotate(p geom.XY) geom.XY {
	if e.rotation == 0 {
		return p
	}
	cx, cy := e.float(surface.AttrX), e.float(surface.AttrY)
	sin, cos := math.Sincos(e.rotation * math.Pi / 180)
	dx, dy := p.X-cx, p.Y-cy
	return geom.XY{
		X: cx + cos*dx + sin*dy,
		Y: cy - sin*dx + cos*dy,
	}
}

func (e *element) float(key string) float64 {
	return surface.ToFloat(e.attrs[key])
}

func (e *element) str(key string) string {
	v, _ := e.attrs[key].(string)
	return v
}

func (e *element) fontSize() float64 {
	if v, ok := e.attrs["font-size"]; ok {
		if f := surface.ToFloat(v); f > 0 {
			return f
		}
	}
	return defaultFontSize
}

// pathBox returns the bounds of the end points in path data built from
// M, L, A and z commands.
func pathBox(d string) surface.Box {
	fields := strings.Fields(d)
	var xs, ys []float64
	for i := 0; i < len(fields); i++ {
		var skip int
		switch fields[i] {
		case "M", "L":
			skip = 0
		case "A":
			skip = 5
		default:
			continue
		}
		j := i + 1 + skip
		if j+1 >= len(fields) {
			break
		}
		x, errX := strconv.ParseFloat(fields[j], 64)
		y, errY := strconv.ParseFloat(fields[j+1], 64)
		if errX == nil && errY == nil {
			xs = append(xs, x)
			ys = append(ys, y)
		}
		i = j + 1
	}
	if len(xs) == 0 {
		return surface.Box{}
	}
	minX, maxX, minY, maxY := xs[0], xs[0], ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}
	return surface.Box{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
