// Package telemetry records chart interactions (clicks and finished drags)
// as InfluxDB points.
package telemetry

import (
	"context"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement interactions are written to.
const Measurement = "interaction"

// Interaction is a single user interaction with a chart.
type Interaction struct {
	Kind    string // dispatcher command, e.g. "point.drag.end"
	PointID int    // 0 for slice interactions
	Ring    string
	Slice   int // -1 when the interaction has no slice

	Angle        float64
	Distance     float64
	RingDistance float64

	Time time.Time
}

// Recorder stores interactions.
type Recorder interface {
	Record(ctx context.Context, in Interaction) error
	Close() error
}

// Nop discards interactions.
type Nop struct{}

func (Nop) Record(context.Context, Interaction) error { return nil }
func (Nop) Close() error { return nil }

// ToPoint converts an interaction into an InfluxDB point.
func ToPoint(in Interaction) *write.Point {
	ts := in.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	p := write.NewPointWithMeasurement(Measurement).
		AddTag("kind", in.Kind).
		SetTime(ts)
	if in.Ring != "" {
		p.AddTag("ring", in.Ring)
	}
	if in.PointID != 0 {
		p.AddField("point", in.PointID)
		p.AddField("angle", in.Angle)
		p.AddField("distance", in.Distance)
		p.AddField("ringDistance", in.RingDistance)
	}
	p.AddField("slice", in.Slice)
	return p
}
