package main

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/bullseye/internal/geo"
	"github.com/OCAP2/bullseye/internal/point"
)

// ErrInvalidPointSpec is returned for malformed -point, -drag or -click values.
var ErrInvalidPointSpec = errors.New("invalid point spec")

// listFlag collects every occurrence of a repeated flag.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, " ")
}

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// parsePoint parses "angle,distance[,ring[,label]]". The angle is in degrees;
// an empty ring means the distance spans the whole chart.
func parsePoint(s string) (point.Placement, error) {
	parts := strings.SplitN(s, ",", 4)
	if len(parts) < 2 {
		return point.Placement{}, fmt.Errorf("%w %q: want angle,distance[,ring[,label]]", ErrInvalidPointSpec, s)
	}

	deg, err := parseFloat(parts[0])
	if err != nil {
		return point.Placement{}, fmt.Errorf("%w %q: angle: %v", ErrInvalidPointSpec, s, err)
	}
	dist, err := parseFloat(parts[1])
	if err != nil {
		return point.Placement{}, fmt.Errorf("%w %q: distance: %v", ErrInvalidPointSpec, s, err)
	}

	pl := point.Placement{Angle: geo.Radians(deg), Distance: dist}

	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		ring, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return point.Placement{}, fmt.Errorf("%w %q: ring: %v", ErrInvalidPointSpec, s, err)
		}
		pl.Ring = &ring
	}
	if len(parts) > 3 {
		pl.Label = strings.TrimSpace(parts[3])
	}
	return pl, nil
}

type dragSpec struct {
	id     int
	dx, dy float64
}

// parseDrag parses "id,dx,dy" with offsets in pixels.
func parseDrag(s string) (dragSpec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return dragSpec{}, fmt.Errorf("%w %q: want id,dx,dy", ErrInvalidPointSpec, s)
	}
	id, err := parseID(parts[0])
	if err != nil {
		return dragSpec{}, fmt.Errorf("%w %q: id: %v", ErrInvalidPointSpec, s, err)
	}
	dx, err := parseFloat(parts[1])
	if err != nil {
		return dragSpec{}, fmt.Errorf("%w %q: dx: %v", ErrInvalidPointSpec, s, err)
	}
	dy, err := parseFloat(parts[2])
	if err != nil {
		return dragSpec{}, fmt.Errorf("%w %q: dy: %v", ErrInvalidPointSpec, s, err)
	}
	return dragSpec{id: id, dx: dx, dy: dy}, nil
}

func parseClick(s string) (int, error) {
	id, err := parseID(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidPointSpec, s, err)
	}
	return id, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if id < 1 {
		return 0, fmt.Errorf("point ids start at 1, got %d", id)
	}
	return id, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s is not finite", s)
	}
	return f, nil
}
