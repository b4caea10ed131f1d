// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	gpubsub "cloud.google.com/go/pubsub"
	gstorage "cloud.google.com/go/storage"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/analysis"
	"github.com/JakeFAU/sealevel/internal/animator"
	"github.com/JakeFAU/sealevel/internal/api"
	"github.com/JakeFAU/sealevel/internal/config"
	"github.com/JakeFAU/sealevel/internal/crawler"
	collyfetcher "github.com/JakeFAU/sealevel/internal/fetcher/colly"
	"github.com/JakeFAU/sealevel/internal/hash/sha256"
	"github.com/JakeFAU/sealevel/internal/id/uuid"
	"github.com/JakeFAU/sealevel/internal/metrics"
	pubsubpublisher "github.com/JakeFAU/sealevel/internal/publisher/pubsub"
	"github.com/JakeFAU/sealevel/internal/sealevel"
	"github.com/JakeFAU/sealevel/internal/storage"
	"github.com/JakeFAU/sealevel/internal/storage/gcs"
	"github.com/JakeFAU/sealevel/internal/storage/local"
	"github.com/JakeFAU/sealevel/internal/storage/memory"
	"github.com/JakeFAU/sealevel/internal/telemetry"
)

// App holds all the shared, long-lived services for the application.
// It is built once per command from the loaded configuration and hands
// fully wired crawlers, animators, analyzers and API servers to the caller.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	clock     clockwork.Clock
	store     sealevel.BlobStore
	publisher sealevel.Publisher
	closers   []func() error
}

// Option customizes an App during construction.
type Option func(*App)

// WithClock replaces the real clock, e.g. with a fake one in tests.
func WithClock(clock clockwork.Clock) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// WithBlobStore bypasses the configured storage backend.
func WithBlobStore(store sealevel.BlobStore) Option {
	return func(a *App) {
		a.store = store
	}
}

// New creates and initializes an App from cfg. It fails fast if any
// configured backend cannot be reached.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(a)
	}
	metrics.Init()

	tp, err := telemetry.InitTracerProvider(ctx, telemetry.Config{
		ServiceName:  cfg.Tracing.ServiceName,
		SampleRatio:  cfg.Tracing.SampleRatio,
		Exporter:     cfg.Tracing.Exporter,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		OTLPInsecure: cfg.Tracing.OTLPInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.closers = append(a.closers, func() error {
		return tp.Shutdown(context.Background())
	})

	if a.store == nil {
		store, err := a.buildStore(ctx)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.store = store
	}

	if cfg.PubSub.TopicName != "" {
		logger.Info("Connecting to GCP Pub/Sub",
			zap.String("project_id", cfg.PubSub.ProjectID),
			zap.String("topic", cfg.PubSub.TopicName),
		)
		client, err := gpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize pubsub: %w", err)
		}
		pub := pubsubpublisher.New(client)
		a.publisher = pub
		a.closers = append(a.closers, func() error {
			pub.Close()
			return client.Close()
		})
	}

	logger.Info("Application services initialized",
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("data_dir", cfg.Data.Dir),
	)
	return a, nil
}

func (a *App) buildStore(ctx context.Context) (sealevel.BlobStore, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		a.logger.Info("Using in-memory storage. Artifacts will be discarded on exit.")
		return memory.NewBlobStore(), nil
	case config.BackendLocal, "":
		return local.New(local.Config{BaseDir: a.cfg.Data.Dir})
	case config.BackendGCS:
		disk, err := local.New(local.Config{BaseDir: a.cfg.Data.Dir})
		if err != nil {
			return nil, err
		}
		a.logger.Info("Mirroring artifacts to GCS", zap.String("bucket", a.cfg.Storage.GCSBucket))
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		bucket, err := gcs.New(client, gcs.Config{
			Bucket:   a.cfg.Storage.GCSBucket,
			Prefix:   a.cfg.Storage.Prefix,
			Metadata: map[string]string{"station_code": a.cfg.Crawler.StationCode},
		})
		if err != nil {
			return nil, err
		}
		return storage.NewMirror(disk, bucket)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", a.cfg.Storage.Backend)
	}
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Clock returns the clock used for artifact timestamps and frame pacing.
func (a *App) Clock() clockwork.Clock {
	return a.clock
}

// BlobStore exposes the configured artifact store.
func (a *App) BlobStore() sealevel.BlobStore {
	return a.store
}

// Source resolves datasets from input when set, otherwise the newest crawl in data.dir.
func (a *App) Source(input string) sealevel.DatasetSource {
	return sealevel.DirSource{Dir: a.cfg.Data.Dir, Path: input}
}

// Crawler builds a crawler for the configured station.
func (a *App) Crawler() *crawler.Crawler {
	c := a.cfg.Crawler
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:     c.UserAgent,
		RespectRobots: c.RespectRobots,
		Timeout:       a.cfg.CrawlTimeout(),
	})
	return crawler.New(
		crawler.Config{
			Endpoint:    c.Endpoint,
			UserAgent:   c.UserAgent,
			Referer:     c.Referer,
			StationCode: c.StationCode,
			StationName: c.StationName,
			DataSource:  c.DataSource,
			DataURL:     c.DataURL,
			Units:       c.Units,
			Note:        c.Note,
			Topic:       a.cfg.PubSub.TopicName,
		},
		fetcher,
		a.store,
		a.publisher,
		sha256.New(),
		uuid.New(),
		a.clock,
		a.logger.Named("crawler"),
	)
}

// Animator builds an animator for policy, falling back to the configured policy when empty.
func (a *App) Animator(policy string) *animator.Animator {
	c := a.cfg.Animator
	if policy == "" {
		policy = c.Policy
	}
	return animator.New(animator.Config{
		Policy:     policy,
		FrameDelay: c.FrameDelay,
		HoldFrames: c.HoldFrames,
		Width:      c.Width,
		Height:     c.Height,
		Realtime:   c.Realtime,
	}, a.store, a.clock, a.logger.Named("animator"))
}

// Analyzer builds an analyzer labelled with the configured station.
func (a *App) Analyzer() *analysis.Analyzer {
	return analysis.New(analysis.Config{
		Options:     a.AnalysisOptions(),
		StationName: a.cfg.Crawler.StationName,
		StationCode: a.cfg.Crawler.StationCode,
	}, a.store, a.clock, a.logger.Named("analysis"))
}

// AnalysisOptions converts the analysis config section.
func (a *App) AnalysisOptions() analysis.Options {
	return analysis.Options{
		RecentFrom:     a.cfg.Analysis.RecentFrom,
		ReportFrom:     a.cfg.Analysis.ReportFrom,
		MinDecadeYears: a.cfg.Analysis.MinDecadeYears,
	}
}

// APIServer builds the HTTP API over the newest dataset in data.dir.
func (a *App) APIServer() *api.Server {
	return api.NewServer(a.Source(""), api.Options{
		HoldFrames: a.cfg.Animator.HoldFrames,
		Analysis:   a.AnalysisOptions(),
	}, a.logger.Named("api"))
}

// Close gracefully shuts down all services in the App container.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Error closing service", zap.Error(err))
		}
	}
	a.closers = nil
}
