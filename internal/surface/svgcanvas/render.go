package svgcanvas

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/OCAP2/bullseye/internal/surface"
	svg "github.com/ajstarks/svgo"
)

var geometryKeys = map[string]bool{
	surface.AttrCX:   true,
	surface.AttrCY:   true,
	surface.AttrR:    true,
	surface.AttrX:    true,
	surface.AttrY:    true,
	surface.AttrText: true,
	surface.AttrPath: true,
}

// Render writes the scene as an SVG document.
func (s *Scene) Render(w io.Writer) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(round(s.width), round(s.height))

	for _, e := range s.shapes {
		args := []string{e.style()}
		switch e.kind {
		case kindCircle:
			canvas.Circle(round(e.float(surface.AttrCX)), round(e.float(surface.AttrCY)), round(e.float(surface.AttrR)), args...)
		case kindPath:
			canvas.Path(e.str(surface.AttrPath), args...)
		case kindText:
			e.renderText(canvas, args)
		}
	}

	canvas.End()
	return ew.err
}

func (e *element) renderText(canvas *svg.SVG, args []string) {
	x, y := e.float(surface.AttrX), e.float(surface.AttrY)
	if e.rotation != 0 {
		args = append(args, `transform="rotate(`+f64s(e.rotation)+" "+f64s(x)+" "+f64s(y)+`)"`)
	}
	args = append(args, `text-anchor="middle"`, `dominant-baseline="middle"`)

	lines := strings.Split(e.str(surface.AttrText), "\n")
	step := e.fontSize() * lineHeight
	top := y - step*float64(len(lines)-1)/2
	for i, line := range lines {
		canvas.Text(round(x), round(top+step*float64(i)), line, args...)
	}
}

// style renders the non-geometry attributes as a CSS declaration list with
// keys in sorted order.
func (e *element) style() string {
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		if !geometryKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+cssValue(k, e.attrs[k]))
	}
	return strings.Join(parts, ";")
}

func cssValue(key string, v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		if key == "font-size" {
			return f64s(n) + "px"
		}
		return f64s(n)
	case int:
		if key == "font-size" {
			return strconv.Itoa(n) + "px"
		}
		return strconv.Itoa(n)
	case bool:
		return strconv.FormatBool(n)
	default:
		return f64s(surface.ToFloat(v))
	}
}

func round(v float64) int {
	return int(math.Round(v))
}

func f64s(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// errWriter keeps the first write error since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}
