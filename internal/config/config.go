// Package config loads bullseye settings from bullseye.cfg.json through viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "bullseye.cfg.json"

// ChartConfig holds chart construction and output settings.
type ChartConfig struct {
	Width        float64
	Height       float64
	StartDegree  *float64
	SliceLabels  []string
	RingLabels   []string
	RingFills    []string
	BullseyeFill string
	AllowDrag    bool
	HoverDelay   time.Duration
	OutputPath   string
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds the interaction telemetry sink settings.
type InfluxConfig struct {
	Enabled  bool
	Protocol string
	Host     string
	Port     string
	Token    string
	Org      string
	Bucket   string
}

// ServerURL returns protocol://host:port.
func (c InfluxConfig) ServerURL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./bullseyelogs")

	viper.SetDefault("chart.width", 600)
	viper.SetDefault("chart.height", 600)
	viper.SetDefault("chart.sliceLabels", []string{"Techniques", "Tools", "Platforms", "Languages"})
	viper.SetDefault("chart.ringLabels", []string{"Adopt", "Trial", "Assess", "Hold"})
	viper.SetDefault("chart.ringFills", []string{})
	viper.SetDefault("chart.bullseyeFill", "#c0c0c0")
	viper.SetDefault("chart.allowDrag", false)
	viper.SetDefault("chart.hoverDelay", "50ms")

	viper.SetDefault("output.path", "bullseye.svg")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "bullseye")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("graylog.address", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "bullseye")
	viper.SetDefault("influx.bucket", "interactions")
}

// Load sets default values and reads FileName from configDir.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// LoadDefaults sets default values without reading a file, for runs without
// a config directory.
func LoadDefaults() {
	setDefaults()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetGraylogAddress returns the GELF UDP address, or "" when log shipping to
// Graylog is off.
func GetGraylogAddress() string {
	return viper.GetString("graylog.address")
}

// GetChartConfig returns the chart section. StartDegree stays nil unless
// chart.startDegree is set.
func GetChartConfig() ChartConfig {
	cfg := ChartConfig{
		Width:        viper.GetFloat64("chart.width"),
		Height:       viper.GetFloat64("chart.height"),
		SliceLabels:  viper.GetStringSlice("chart.sliceLabels"),
		RingLabels:   viper.GetStringSlice("chart.ringLabels"),
		RingFills:    viper.GetStringSlice("chart.ringFills"),
		BullseyeFill: viper.GetString("chart.bullseyeFill"),
		AllowDrag:    viper.GetBool("chart.allowDrag"),
		HoverDelay:   viper.GetDuration("chart.hoverDelay"),
		OutputPath:   viper.GetString("output.path"),
	}
	if viper.IsSet("chart.startDegree") {
		deg := viper.GetFloat64("chart.startDegree")
		cfg.StartDegree = &deg
	}
	return cfg
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the influx section.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}
