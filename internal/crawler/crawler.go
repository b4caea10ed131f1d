package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/metrics"
	"github.com/JakeFAU/sealevel/internal/sealevel"
)

const tracerName = "github.com/JakeFAU/sealevel/internal/crawler"

// previewRows is how many leading and trailing records are logged after a crawl.
const previewRows = 5

// Config holds the endpoint, request headers and the descriptive metadata for one station.
type Config struct {
	Endpoint    string
	UserAgent   string
	Referer     string
	StationCode string
	StationName string
	DataSource  string
	DataURL     string
	Units       string
	Note        string
	// Topic receives a completion notification when non-empty.
	Topic string
}

// Artifact is one file written by a crawl.
type Artifact struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Result summarizes a successful crawl.
type Result struct {
	RunID         string
	Dataset       sealevel.Dataset
	Metadata      Metadata
	Artifacts     []Artifact
	PayloadSHA256 string
}

// Crawler performs one fetch-parse-write cycle per Run.
type Crawler struct {
	cfg       Config
	fetcher   sealevel.Fetcher
	blobStore sealevel.BlobStore
	publisher sealevel.Publisher
	hasher    sealevel.Hasher
	ids       sealevel.IDGenerator
	clock     clockwork.Clock
	logger    *zap.Logger
}

// New constructs a Crawler. publisher may be nil when no topic is configured.
func New(
	cfg Config,
	fetcher sealevel.Fetcher,
	blobStore sealevel.BlobStore,
	publisher sealevel.Publisher,
	hasher sealevel.Hasher,
	ids sealevel.IDGenerator,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Crawler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		cfg:       cfg,
		fetcher:   fetcher,
		blobStore: blobStore,
		publisher: publisher,
		hasher:    hasher,
		ids:       ids,
		clock:     clock,
		logger:    logger,
	}
}

// Run downloads the tide table once and writes the station's artifacts. Any
// failure aborts the run; nothing is retried.
func (c *Crawler) Run(ctx context.Context) (Result, error) {
	runID, err := c.ids.NewID()
	if err != nil {
		return Result{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := c.logger.With(zap.String("run_id", runID), zap.String("station_code", c.cfg.StationCode))

	ctx, span := otel.Tracer(tracerName).Start(ctx, "crawler.Run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("station_code", c.cfg.StationCode),
	))
	defer span.End()

	result, fetchTime, err := c.run(ctx, runID, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "crawl failed")
		metrics.ObserveCrawl(metrics.StatusFailure, 0, fetchTime)
		logger.Error("crawl failed", zap.Error(err))
		return Result{}, err
	}
	metrics.ObserveCrawl(metrics.StatusSuccess, result.Dataset.Len(), fetchTime)
	logger.Info("crawl completed",
		zap.Int("total_records", result.Dataset.Len()),
		zap.Int("artifacts", len(result.Artifacts)),
	)
	return result, nil
}

func (c *Crawler) run(ctx context.Context, runID string, logger *zap.Logger) (Result, time.Duration, error) {
	logger.Info("fetching tide data", zap.String("url", c.cfg.Endpoint))
	resp, err := c.fetcher.Fetch(ctx, sealevel.FetchRequest{
		RunID:   runID,
		URL:     c.cfg.Endpoint,
		Headers: c.requestHeaders(),
	})
	if err != nil {
		return Result{}, 0, fmt.Errorf("fetch %s: %w", c.cfg.Endpoint, err)
	}
	logger.Info("retrieved tide data",
		zap.Int("status_code", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
	)

	payload, err := decodePayload(resp.Body)
	if err != nil {
		return Result{}, resp.Duration, err
	}
	logger.Info("stations in payload", zap.Int("stations", len(payload.Tide.Data)))
	station, ok := payload.station(c.cfg.StationCode)
	if !ok {
		return Result{}, resp.Duration, fmt.Errorf("%w: %s", ErrStationNotFound, c.cfg.StationCode)
	}
	logger.Info("found station data", zap.Int("years", len(station.YearData)))

	records, err := parseStation(station)
	if err != nil {
		return Result{}, resp.Duration, err
	}
	dataset, err := sealevel.NewDataset(c.cfg.Endpoint, records)
	if err != nil {
		return Result{}, resp.Duration, fmt.Errorf("build dataset: %w", err)
	}
	if dataset.Len() == 0 {
		return Result{}, resp.Duration, fmt.Errorf("station %s: %w", c.cfg.StationCode, sealevel.ErrEmptyDataset)
	}
	logSummary(logger, dataset)

	digest := ""
	if c.hasher != nil {
		if digest, err = c.hasher.Hash(resp.Body); err != nil {
			return Result{}, resp.Duration, fmt.Errorf("hash payload: %w", err)
		}
	}

	now := c.clock.Now()
	meta := c.metadata(dataset, now)
	artifacts, err := c.writeArtifacts(ctx, dataset, meta, now, logger)
	if err != nil {
		return Result{}, resp.Duration, err
	}

	result := Result{
		RunID:         runID,
		Dataset:       dataset,
		Metadata:      meta,
		Artifacts:     artifacts,
		PayloadSHA256: digest,
	}
	if err := c.publishResult(ctx, result, logger); err != nil {
		return Result{}, resp.Duration, err
	}
	return result, resp.Duration, nil
}

func (c *Crawler) requestHeaders() http.Header {
	h := http.Header{}
	if c.cfg.UserAgent != "" {
		h.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Referer != "" {
		h.Set("Referer", c.cfg.Referer)
	}
	return h
}

func (c *Crawler) metadata(dataset sealevel.Dataset, now time.Time) Metadata {
	return Metadata{
		DataSource:   c.cfg.DataSource,
		StationCode:  c.cfg.StationCode,
		StationName:  c.cfg.StationName,
		DataURL:      c.cfg.DataURL,
		APIEndpoint:  c.cfg.Endpoint,
		DownloadDate: now.Format(time.RFC3339),
		Units:        c.cfg.Units,
		Note:         c.cfg.Note,
		TotalRecords: dataset.Len(),
		YearRange:    dataset.YearRangeLabel(),
	}
}

func (c *Crawler) writeArtifacts(
	ctx context.Context,
	dataset sealevel.Dataset,
	meta Metadata,
	now time.Time,
	logger *zap.Logger,
) ([]Artifact, error) {
	var full, simple bytes.Buffer
	if err := sealevel.WriteCSV(&full, dataset.Records); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	if err := sealevel.WriteSimpleCSV(&simple, dataset.Records); err != nil {
		return nil, fmt.Errorf("encode simple dataset: %w", err)
	}
	metaJSON, err := encodeMetadata(meta)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		kind, name, contentType string
		body                    []byte
	}{
		{"dataset", sealevel.ArtifactName(sealevel.PrefixDataset, now, "csv"), sealevel.ContentTypeCSV, full.Bytes()},
		{"simple_dataset", sealevel.ArtifactName(sealevel.PrefixSimpleDataset, now, "csv"), sealevel.ContentTypeCSV, simple.Bytes()},
		{"metadata", sealevel.ArtifactName(sealevel.PrefixMetadata, now, "json"), sealevel.ContentTypeJSON, metaJSON},
	}

	artifacts := make([]Artifact, 0, len(outputs))
	for _, out := range outputs {
		uri, err := c.blobStore.PutObject(ctx, out.name, out.contentType, bytes.NewReader(out.body))
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", out.name, err)
		}
		metrics.ObserveArtifact(path.Ext(out.name)[1:])
		logger.Info("artifact saved", zap.String("kind", out.kind), zap.String("uri", uri))
		artifacts = append(artifacts, Artifact{Kind: out.kind, Name: out.name, URI: uri})
	}
	return artifacts, nil
}

func (c *Crawler) publishResult(ctx context.Context, result Result, logger *zap.Logger) error {
	if c.cfg.Topic == "" || c.publisher == nil {
		return nil
	}
	payload := map[string]any{
		"run_id":         result.RunID,
		"station_code":   result.Metadata.StationCode,
		"total_records":  result.Metadata.TotalRecords,
		"year_range":     result.Metadata.YearRange,
		"download_date":  result.Metadata.DownloadDate,
		"payload_sha256": result.PayloadSHA256,
		"artifacts":      result.Artifacts,
	}
	id, err := c.publisher.Publish(ctx, c.cfg.Topic, payload)
	if err != nil {
		return fmt.Errorf("publish payload: %w", err)
	}
	logger.Info("crawl published", zap.String("topic", c.cfg.Topic), zap.String("message_id", id))
	return nil
}

func logSummary(logger *zap.Logger, dataset sealevel.Dataset) {
	first, last, _ := dataset.YearRange()
	logger.Info("processed records",
		zap.Int("total_records", dataset.Len()),
		zap.Int("first_year", first),
		zap.Int("last_year", last),
	)

	fields := make([]zap.Field, 0, len(sealevel.Columns)-1)
	for i, col := range sealevel.Columns[1:] {
		valid := 0
		for _, rec := range dataset.Records {
			if rec.Levels()[i] != nil {
				valid++
			}
		}
		fields = append(fields, zap.Int(col, valid))
	}
	logger.Info("valid measurements", fields...)

	if !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	n := dataset.Len()
	head := dataset.Records[:min(previewRows, n)]
	tail := dataset.Records[max(0, n-previewRows):]
	logger.Debug("first records", zap.Any("records", head))
	logger.Debug("last records", zap.Any("records", tail))
}
