package telemetry

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/OCAP2/bullseye/internal/config"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

// ErrDisabled is returned by NewInflux when influx.enabled is false.
var ErrDisabled = errors.New("influx telemetry disabled")

// retention for the interactions bucket
const bucketRetentionSeconds = 60 * 60 * 24 * 30

// Influx writes interactions to InfluxDB. When the server cannot be reached
// at startup, points are written as gzipped line protocol to a backup file.
type Influx struct {
	cfg    config.InfluxConfig
	logger zerolog.Logger

	client influxdb2.Client
	writer influxdb2_api.WriteAPI

	mu         sync.Mutex
	backupPath string
	backupFile *os.File
	backup     *gzip.Writer
}

// NewInflux connects to InfluxDB and makes sure the org and bucket exist.
func NewInflux(ctx context.Context, cfg config.InfluxConfig, backupPath string, log zerolog.Logger) (*Influx, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	m := &Influx{
		cfg:        cfg,
		logger:     log.With().Str("component", "telemetry").Logger(),
		backupPath: backupPath,
	}

	m.client = influxdb2.NewClientWithOptions(
		cfg.ServerURL(),
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	running, err := m.client.Ping(ctx)
	if err != nil || !running {
		m.logger.Warn().Err(err).Str("backupPath", backupPath).
			Msg("InfluxDB unreachable, writing interactions to backup file")
		m.client.Close()
		m.client = nil
		if err := m.openBackup(); err != nil {
			return nil, err
		}
		return m, nil
	}

	if err := m.ensureBucket(ctx); err != nil {
		m.client.Close()
		return nil, err
	}

	m.writer = m.client.WriteAPI(cfg.Org, cfg.Bucket)
	go func(errs <-chan error) {
		for writeErr := range errs {
			m.logger.Error().Err(writeErr).Str("bucket", cfg.Bucket).
				Msg("Error sending interaction to InfluxDB")
		}
	}(m.writer.Errors())

	m.logger.Info().Str("url", cfg.ServerURL()).Str("bucket", cfg.Bucket).
		Msg("InfluxDB telemetry initialized")
	return m, nil
}

func (m *Influx) openBackup() error {
	file, err := os.OpenFile(m.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Influx) ensureBucket(ctx context.Context) error {
	orgs := m.client.OrganizationsAPI()

	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("creating organization %s: %w", m.cfg.Org, err)
		}
	}

	buckets := m.client.BucketsAPI()
	if _, err := buckets.FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}

	m.logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = buckets.CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: bucketRetentionSeconds,
	})
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
}

// Backup reports whether interactions go to the backup file.
func (m *Influx) Backup() bool {
	return m.writer == nil
}

// Record queues in for writing.
func (m *Influx) Record(_ context.Context, in Interaction) error {
	p := ToPoint(in)
	if m.writer != nil {
		m.writer.WritePoint(p)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backup == nil {
		return errors.New("influx telemetry closed")
	}
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	if _, err := m.backup.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the client or backup file.
func (m *Influx) Close() error {
	if m.writer != nil {
		m.writer.Flush()
		m.client.Close()
		m.writer = nil
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backup == nil {
		return nil
	}
	err := errors.Join(m.backup.Close(), m.backupFile.Close())
	m.backup = nil
	return err
}
