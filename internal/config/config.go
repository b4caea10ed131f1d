// Package config loads and validates sealevel configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Data     DataConfig     `mapstructure:"data"`
	Crawler  CrawlerConfig  `mapstructure:"crawler"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Animator AnimatorConfig `mapstructure:"animator"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Server   ServerConfig   `mapstructure:"server"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// DataConfig locates the directory that holds crawled datasets and generated artifacts.
type DataConfig struct {
	Dir string `mapstructure:"dir"`
}

// CrawlerConfig describes the tide endpoint and the station to extract.
type CrawlerConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	UserAgent      string `mapstructure:"user_agent"`
	Referer        string `mapstructure:"referer"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
	StationCode    string `mapstructure:"station_code"`
	StationName    string `mapstructure:"station_name"`
	DataSource     string `mapstructure:"data_source"`
	DataURL        string `mapstructure:"data_url"`
	Units          string `mapstructure:"units"`
	Note           string `mapstructure:"note"`
}

// StorageConfig selects where artifacts are written in addition to the data directory.
type StorageConfig struct {
	Backend   string `mapstructure:"backend"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PubSubConfig holds metadata for crawl completion notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// AnimatorConfig controls the polar animation.
type AnimatorConfig struct {
	Input      string        `mapstructure:"input"`
	Policy     string        `mapstructure:"policy"`
	FrameDelay time.Duration `mapstructure:"frame_delay"`
	HoldFrames int           `mapstructure:"hold_frames"`
	Width      int           `mapstructure:"width"`
	Height     int           `mapstructure:"height"`
	Realtime   bool          `mapstructure:"realtime"`
}

// AnalysisConfig controls the statistical analysis.
type AnalysisConfig struct {
	Input          string `mapstructure:"input"`
	RecentFrom     int    `mapstructure:"recent_from"`
	ReportFrom     int    `mapstructure:"report_from"`
	MinDecadeYears int    `mapstructure:"min_decade_years"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// TracingConfig selects the span sampler and where spans are exported.
type TracingConfig struct {
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Exporter     string  `mapstructure:"exporter"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// Trace exporters.
const (
	ExporterNone = "none"
	ExporterOTLP = "otlp"
)

// Storage backends.
const (
	BackendLocal  = "local"
	BackendMemory = "memory"
	BackendGCS    = "gcs"
)

// DefaultNote is the station caveat published by the observatory.
const DefaultNote = "Tidal information from 1954 to 1985 are based on North Point tide gauge data. " +
	"Mean Sea Levels are computed directly from on-site measurement data without any post data " +
	"corrections including land settlement."

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEALEVEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
	v.SetDefault("data.dir", ".")
	v.SetDefault("crawler.endpoint", "https://www.hko.gov.hk/cis/aws/tide/yearly_TIDE.xml")
	v.SetDefault("crawler.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("crawler.referer", "https://www.hko.gov.hk/en/cis/yearlyTide.htm")
	v.SetDefault("crawler.timeout_seconds", 30)
	v.SetDefault("crawler.respect_robots", false)
	v.SetDefault("crawler.station_code", "QUB")
	v.SetDefault("crawler.station_name", "Quarry Bay")
	v.SetDefault("crawler.data_source", "Hong Kong Observatory (HKO)")
	v.SetDefault("crawler.data_url", "https://www.hko.gov.hk/en/cis/yearlyTide.htm?stn=QUB")
	v.SetDefault("crawler.units", "meters above Chart Datum")
	v.SetDefault("crawler.note", DefaultNote)
	v.SetDefault("storage.backend", BackendLocal)
	v.SetDefault("storage.gcs_bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("animator.input", "")
	v.SetDefault("animator.policy", "decade-offset")
	v.SetDefault("animator.frame_delay", "300ms")
	v.SetDefault("animator.hold_frames", 60)
	v.SetDefault("animator.width", 900)
	v.SetDefault("animator.height", 900)
	v.SetDefault("animator.realtime", false)
	v.SetDefault("analysis.input", "")
	v.SetDefault("analysis.recent_from", 1995)
	v.SetDefault("analysis.report_from", 2020)
	v.SetDefault("analysis.min_decade_years", 5)
	v.SetDefault("server.port", 8080)
	v.SetDefault("tracing.service_name", "sealevel")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.exporter", ExporterNone)
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.otlp_insecure", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("data.dir must be set")
	}
	if c.Crawler.Endpoint == "" {
		return fmt.Errorf("crawler.endpoint must be set")
	}
	if c.Crawler.StationCode == "" {
		return fmt.Errorf("crawler.station_code must be set")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	switch c.Storage.Backend {
	case BackendLocal, BackendMemory:
	case BackendGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket must be set when storage.backend is gcs")
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of local, memory, gcs", c.Storage.Backend)
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	if c.Animator.FrameDelay < 0 {
		return fmt.Errorf("animator.frame_delay must be >= 0")
	}
	if c.Animator.HoldFrames < 0 {
		return fmt.Errorf("animator.hold_frames must be >= 0")
	}
	if c.Animator.Width <= 0 || c.Animator.Height <= 0 {
		return fmt.Errorf("animator.width and animator.height must be > 0")
	}
	if c.Analysis.MinDecadeYears <= 0 {
		return fmt.Errorf("analysis.min_decade_years must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1]")
	}
	switch c.Tracing.Exporter {
	case ExporterNone, ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter %q is not one of none, otlp", c.Tracing.Exporter)
	}
	return nil
}

// CrawlTimeout converts the configured crawl timeout into a duration.
func (c Config) CrawlTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}
