package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Crawler.Endpoint != "https://www.hko.gov.hk/cis/aws/tide/yearly_TIDE.xml" {
		t.Fatalf("unexpected endpoint %q", cfg.Crawler.Endpoint)
	}
	if cfg.Crawler.StationCode != "QUB" || cfg.Crawler.StationName != "Quarry Bay" {
		t.Fatalf("unexpected station %q/%q", cfg.Crawler.StationCode, cfg.Crawler.StationName)
	}
	if cfg.Animator.FrameDelay != 300*time.Millisecond || cfg.Animator.HoldFrames != 60 {
		t.Fatalf("unexpected animator defaults: %+v", cfg.Animator)
	}
	if cfg.Analysis.RecentFrom != 1995 || cfg.Analysis.MinDecadeYears != 5 {
		t.Fatalf("unexpected analysis defaults: %+v", cfg.Analysis)
	}
	if cfg.Storage.Backend != BackendLocal {
		t.Fatalf("expected local storage backend, got %q", cfg.Storage.Backend)
	}
	if got := cfg.CrawlTimeout(); got != 30*time.Second {
		t.Fatalf("expected crawl timeout 30s, got %v", got)
	}
	if cfg.Tracing.Exporter != ExporterNone || cfg.Tracing.SampleRatio != 1 || cfg.Tracing.ServiceName != "sealevel" {
		t.Fatalf("unexpected tracing defaults: %+v", cfg.Tracing)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
logging:
  development: false
  level: warn
data:
  dir: /var/lib/sealevel
crawler:
  station_code: TBT
  timeout_seconds: 5
storage:
  backend: gcs
  gcs_bucket: tide-artifacts
  prefix: hko
pubsub:
  project_id: proj
  topic_name: tide-crawled
animator:
  policy: min-max
  frame_delay: 100ms
  hold_frames: 10
analysis:
  recent_from: 2000
server:
  port: 9090
tracing:
  sample_ratio: 0.25
  exporter: otlp
  otlp_endpoint: collector:4318
  otlp_insecure: true
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Development || cfg.Logging.Level != "warn" {
		t.Fatalf("expected logging overrides, got %+v", cfg.Logging)
	}
	if cfg.Data.Dir != "/var/lib/sealevel" {
		t.Fatalf("unexpected data dir %q", cfg.Data.Dir)
	}
	if cfg.Crawler.StationCode != "TBT" || cfg.Crawler.TimeoutSeconds != 5 {
		t.Fatalf("expected crawler overrides, got %+v", cfg.Crawler)
	}
	if cfg.Crawler.StationName != "Quarry Bay" {
		t.Fatalf("expected untouched default station name, got %q", cfg.Crawler.StationName)
	}
	if cfg.Storage.Backend != BackendGCS || cfg.Storage.GCSBucket != "tide-artifacts" {
		t.Fatalf("expected storage overrides, got %+v", cfg.Storage)
	}
	if cfg.Animator.Policy != "min-max" || cfg.Animator.FrameDelay != 100*time.Millisecond {
		t.Fatalf("expected animator overrides, got %+v", cfg.Animator)
	}
	if cfg.Analysis.RecentFrom != 2000 || cfg.Server.Port != 9090 {
		t.Fatalf("expected analysis/server overrides")
	}
	want := TracingConfig{
		ServiceName:  "sealevel",
		SampleRatio:  0.25,
		Exporter:     ExporterOTLP,
		OTLPEndpoint: "collector:4318",
		OTLPInsecure: true,
	}
	if cfg.Tracing != want {
		t.Fatalf("expected tracing overrides, got %+v", cfg.Tracing)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{name: "empty data dir", mut: func(c *Config) { c.Data.Dir = " " }, want: "data.dir"},
		{name: "missing endpoint", mut: func(c *Config) { c.Crawler.Endpoint = "" }, want: "crawler.endpoint"},
		{name: "missing station", mut: func(c *Config) { c.Crawler.StationCode = "" }, want: "crawler.station_code"},
		{name: "invalid timeout", mut: func(c *Config) { c.Crawler.TimeoutSeconds = 0 }, want: "crawler.timeout_seconds"},
		{name: "unknown backend", mut: func(c *Config) { c.Storage.Backend = "s3" }, want: "storage.backend"},
		{name: "gcs without bucket", mut: func(c *Config) { c.Storage.Backend = BackendGCS }, want: "storage.gcs_bucket"},
		{name: "topic without project", mut: func(c *Config) { c.PubSub.TopicName = "t" }, want: "pubsub.project_id"},
		{name: "negative delay", mut: func(c *Config) { c.Animator.FrameDelay = -time.Second }, want: "animator.frame_delay"},
		{name: "negative hold", mut: func(c *Config) { c.Animator.HoldFrames = -1 }, want: "animator.hold_frames"},
		{name: "zero canvas", mut: func(c *Config) { c.Animator.Width = 0 }, want: "animator.width"},
		{name: "zero decade years", mut: func(c *Config) { c.Analysis.MinDecadeYears = 0 }, want: "analysis.min_decade_years"},
		{name: "invalid port", mut: func(c *Config) { c.Server.Port = 0 }, want: "server.port"},
		{name: "sample ratio above one", mut: func(c *Config) { c.Tracing.SampleRatio = 1.5 }, want: "tracing.sample_ratio"},
		{name: "negative sample ratio", mut: func(c *Config) { c.Tracing.SampleRatio = -0.1 }, want: "tracing.sample_ratio"},
		{name: "unknown exporter", mut: func(c *Config) { c.Tracing.Exporter = "jaeger" }, want: "tracing.exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mut(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
