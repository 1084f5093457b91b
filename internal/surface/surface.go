// Package surface defines the drawing surface a chart renders onto: shape
// primitives with attr-style styling, pointer event subscription, rotation
// and bounding box queries.
package surface

import (
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
)

// Geometry attribute keys understood by every Surface.
const (
	AttrCX   = "cx"
	AttrCY   = "cy"
	AttrR    = "r"
	AttrX    = "x"
	AttrY    = "y"
	AttrText = "text"
	AttrPath = "path"
)

// Attrs is a set of attributes. Geometry keys move or reshape a shape; all
// other keys are styling passed through to the renderer.
type Attrs map[string]any

// Box is an axis-aligned bounding box.
type Box struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p geom.XY) bool {
	return p.X >= b.X && p.X <= b.X+b.Width && p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Surface creates shapes.
type Surface interface {
	Size() (width, height float64)
	Circle(center geom.XY, r float64) Shape
	Path(d string) Shape
	Text(at geom.XY, text string) Shape
}

// Shape is a drawn element. Mutators return the shape so calls chain.
type Shape interface {
	ID() int
	Attr(a Attrs) Shape
	Get(key string) any

	OnClick(fn func()) Shape
	// OnHover registers pointer enter and leave handlers.
	OnHover(in, out func()) Shape
	// OnDrag registers drag handlers. move receives the offset from the point
	// where the gesture started, not from the previous move.
	OnDrag(move func(dx, dy float64), start, end func()) Shape

	// Rotate turns the shape by deg degrees around its own centre.
	Rotate(deg float64) Shape
	BBox() Box
	Remove()
}

// ToFloat converts an attribute value to a float64, accepting numbers or
// numeric strings with an optional unit suffix such as "8pt". Missing or
// unparsable values read as 0.
func ToFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimRightFunc(strings.TrimSpace(n), func(r rune) bool {
			return (r < '0' || r > '9') && r != '.'
		})
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	default:
		return 0
	}
}
