package telemetry

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/bullseye/internal/config"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPoint(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := ToPoint(Interaction{
		Kind:         "point.drag.end",
		PointID:      3,
		Ring:         "2",
		Slice:        1,
		Angle:        0.5,
		Distance:     0.75,
		RingDistance: 0.25,
		Time:         ts,
	})

	line := write.PointToLineProtocol(p, time.Nanosecond)
	assert.Contains(t, line, "interaction,")
	assert.Contains(t, line, "kind=point.drag.end")
	assert.Contains(t, line, "ring=2")
	assert.Contains(t, line, "point=3i")
	assert.Contains(t, line, "slice=1i")
	assert.Contains(t, line, "distance=0.75")
	assert.Equal(t, ts, p.Time())
}

func TestToPoint_SliceOnly(t *testing.T) {
	p := ToPoint(Interaction{Kind: "slice.click", Slice: 2})

	line := write.PointToLineProtocol(p, time.Nanosecond)
	assert.Contains(t, line, "kind=slice.click")
	assert.Contains(t, line, "slice=2i")
	assert.NotContains(t, line, "point=")
	assert.NotContains(t, line, "ring=")
	assert.False(t, p.Time().IsZero())
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	assert.NoError(t, r.Record(context.Background(), Interaction{}))
	assert.NoError(t, r.Close())
}

func TestNewInflux_Disabled(t *testing.T) {
	_, err := NewInflux(context.Background(), config.InfluxConfig{}, "", zerolog.Nop())
	assert.ErrorIs(t, err, ErrDisabled)
}

func unreachableConfig(t *testing.T) config.InfluxConfig {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return config.InfluxConfig{
		Enabled:  true,
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Port:     u.Port(),
		Org:      "bullseye",
		Bucket:   "interactions",
	}
}

func TestInflux_BackupWhenUnreachable(t *testing.T) {
	backupPath := filepath.Join(t.TempDir(), "interactions.gz")

	m, err := NewInflux(context.Background(), unreachableConfig(t), backupPath, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, m.Backup())

	require.NoError(t, m.Record(context.Background(), Interaction{Kind: "point.click", PointID: 1, Ring: "0", Slice: 3}))
	require.NoError(t, m.Record(context.Background(), Interaction{Kind: "slice.click", Slice: 2}))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	f, err := os.Open(backupPath)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "kind=point.click")
	assert.Contains(t, out, "kind=slice.click")

	assert.Error(t, m.Record(context.Background(), Interaction{Kind: "point.click"}))
}
