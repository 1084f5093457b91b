// Command bullseye draws a bullseye chart to SVG, places points on it,
// replays drags and clicks, and prints where each point ended up.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"text/tabwriter"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/OCAP2/bullseye/internal/chart"
	"github.com/OCAP2/bullseye/internal/config"
	"github.com/OCAP2/bullseye/internal/geo"
	"github.com/OCAP2/bullseye/internal/logging"
	intOtel "github.com/OCAP2/bullseye/internal/otel"
	"github.com/OCAP2/bullseye/internal/point"
	"github.com/OCAP2/bullseye/internal/surface/svgcanvas"
	"github.com/OCAP2/bullseye/internal/telemetry"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
)

const (
	appName = "bullseye"

	// pointer moves replayed per -drag
	dragSteps = 10
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	configDir := fs.String("config", "", "directory containing "+config.FileName+" (defaults are used when empty)")
	outPath := fs.String("out", "", "output SVG file, overrides output.path")
	var points, drags, clicks listFlag
	fs.Var(&points, "point", `point to place as "angle,distance[,ring[,label]]", angle in degrees (repeatable)`)
	fs.Var(&drags, "drag", `drag a point by pixels as "id,dx,dy" (repeatable)`)
	fs.Var(&clicks, "click", "click a point by id (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	placements := make([]point.Placement, 0, len(points))
	for _, s := range points {
		pl, err := parsePoint(s)
		if err != nil {
			return err
		}
		placements = append(placements, pl)
	}
	dragSpecs := make([]dragSpec, 0, len(drags))
	for _, s := range drags {
		d, err := parseDrag(s)
		if err != nil {
			return err
		}
		dragSpecs = append(dragSpecs, d)
	}
	clickIDs := make([]int, 0, len(clicks))
	for _, s := range clicks {
		id, err := parseClick(s)
		if err != nil {
			return err
		}
		clickIDs = append(clickIDs, id)
	}

	if *configDir != "" {
		if err := config.Load(*configDir); err != nil {
			return err
		}
	} else {
		config.LoadDefaults()
	}
	chartCfg := config.GetChartConfig()
	if *outPath != "" {
		chartCfg.OutputPath = *outPath
	}

	ctx := context.Background()
	sessionStart := time.Now()

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logPath := logging.LogFilePath(logsDir, appName, sessionStart)
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	otelCfg := config.GetOTelConfig()
	provider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing OpenTelemetry: %w", err)
	}
	defer provider.Shutdown(ctx)

	var current atomic.Pointer[chart.Chart]
	slogManager := logging.NewSlogManager()
	slogManager.SetContextProvider(func() []slog.Attr {
		if c := current.Load(); c != nil {
			return []slog.Attr{slog.Int("points", c.Len())}
		}
		return nil
	})
	if addr := config.GetGraylogAddress(); addr != "" {
		gw, err := gelf.NewWriter(addr)
		if err != nil {
			return fmt.Errorf("connecting to graylog at %s: %w", addr, err)
		}
		defer gw.Close()
		slogManager.AddJSONSink(gw)
	}
	logLevel := config.GetString("logLevel")
	slogManager.Setup(logFile, logLevel, provider.LoggerProvider())
	defer slogManager.Flush(ctx)
	logger := slogManager.Logger()
	if provider.Enabled() {
		logger.Info("OpenTelemetry log export enabled", "service", otelCfg.ServiceName, "endpoint", otelCfg.Endpoint)
	}

	zl := zerolog.New(logFile).With().Timestamp().Logger().Level(zerologLevel(logLevel))

	var recorder telemetry.Recorder = telemetry.Nop{}
	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		backup := logging.InteractionBackupPath(logsDir, appName)
		rec, err := telemetry.NewInflux(ctx, influxCfg, backup, zl)
		if err != nil {
			logger.Warn("Interaction telemetry unavailable", "error", err)
		} else {
			if rec.Backup() {
				logger.Warn("InfluxDB unreachable, interactions go to backup file", "path", backup)
			}
			recorder = rec
		}
	}

	scene := svgcanvas.New(chartCfg.Width, chartCfg.Height)
	c, err := chart.New(scene, chart.Options{
		StartDegree:  chartCfg.StartDegree,
		SliceLabels:  chartCfg.SliceLabels,
		RingLabels:   chartCfg.RingLabels,
		RingFills:    chartCfg.RingFills,
		BullseyeFill: chartCfg.BullseyeFill,
		AllowDrag:    chartCfg.AllowDrag,
		HoverDelay:   chartCfg.HoverDelay,
		OnPointClick: func(p *point.Point) {
			fmt.Fprintf(stdout, "clicked point %d (%s)\n", p.ID(), p.Label())
		},
		OnSliceClick: func(i int) {
			fmt.Fprintf(stdout, "clicked slice %d\n", i)
		},
		OnPointDragEnd: func(p *point.Point) {
			fmt.Fprintf(stdout, "moved point %d to ring %s\n", p.ID(), p.ClassifyRing())
		},
	},
		chart.WithLogger(logger),
		chart.WithEventLogger(logging.NewDispatcherLogger(zl)),
		chart.WithRecorder(recorder),
	)
	if err != nil {
		recorder.Close()
		return err
	}
	current.Store(c)

	if err := replay(c, scene, placements, dragSpecs, clickIDs); err != nil {
		c.Close()
		return err
	}
	if err := c.Close(); err != nil {
		logger.Warn("Closing interaction telemetry failed", "error", err)
	}

	if err := writeSVG(scene, chartCfg.OutputPath); err != nil {
		return err
	}
	logger.Info("Chart written", "path", chartCfg.OutputPath, "shapes", scene.Len())

	return printPoints(stdout, c)
}

func replay(c *chart.Chart, scene *svgcanvas.Scene, placements []point.Placement, drags []dragSpec, clicks []int) error {
	for _, pl := range placements {
		if _, err := c.AddPoint(pl); err != nil {
			return err
		}
	}

	for _, d := range drags {
		p, ok := c.Point(d.id)
		if !ok {
			return fmt.Errorf("%w: no point with id %d", ErrInvalidPointSpec, d.id)
		}
		from := p.Position()
		to := geom.XY{X: from.X + d.dx, Y: from.Y + d.dy}
		if !scene.Drag(from, to, dragSteps) {
			return fmt.Errorf("point %d cannot be dragged; set chart.allowDrag", d.id)
		}
	}

	for _, id := range clicks {
		p, ok := c.Point(id)
		if !ok {
			return fmt.Errorf("%w: no point with id %d", ErrInvalidPointSpec, id)
		}
		scene.Click(p.Position())
	}
	return nil
}

func writeSVG(scene *svgcanvas.Scene, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := scene.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("rendering chart: %w", err)
	}
	return f.Close()
}

func printPoints(w io.Writer, c *chart.Chart) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tRING\tSLICE\tDISTANCE\tRING DISTANCE\tANGLE")
	for _, p := range c.Points() {
		slice := "-"
		if s, ok := p.ClassifySlice(); ok {
			slice = fmt.Sprint(s)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.3f\t%.3f\t%.1f\n",
			p.ID(), p.Label(), p.ClassifyRing(), slice,
			p.Distance(), p.RingDistance(), geo.Degrees(p.Angle()))
	}
	return tw.Flush()
}

func zerologLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
