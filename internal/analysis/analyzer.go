package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/metrics"
	"github.com/JakeFAU/sealevel/internal/render"
	"github.com/JakeFAU/sealevel/internal/sealevel"
)

// Config controls one analysis run.
type Config struct {
	Options
	StationName string
	StationCode string
}

// Artifact is one file written by an analysis run.
type Artifact struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Result describes a finished analysis.
type Result struct {
	Summary      Summary
	Artifacts    []Artifact
	TidalSkipped bool
}

// Analyzer turns a dataset into figures and a report.
type Analyzer struct {
	cfg    Config
	store  sealevel.BlobStore
	clock  clockwork.Clock
	logger *zap.Logger
}

// New constructs an Analyzer.
func New(cfg Config, store sealevel.BlobStore, clock clockwork.Clock, logger *zap.Logger) *Analyzer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, store: store, clock: clock, logger: logger}
}

// Run analyzes ds and saves the comprehensive figure, the tidal figure when
// tidal data exists, and the text report.
func (a *Analyzer) Run(ctx context.Context, ds sealevel.Dataset) (Result, error) {
	result, err := a.run(ctx, ds)
	if err != nil {
		metrics.ObserveAnalysis(metrics.StatusFailure)
		return Result{}, err
	}
	metrics.ObserveAnalysis(metrics.StatusSuccess)
	a.logFindings(result.Summary)
	return result, nil
}

func (a *Analyzer) run(ctx context.Context, ds sealevel.Dataset) (Result, error) {
	summary, err := Summarize(ds, a.cfg.Options)
	if err != nil {
		return Result{}, err
	}
	a.logger.Info("data loaded",
		zap.String("source", ds.Source),
		zap.Int("years", summary.Period.Records),
		zap.String("period", summary.Period.Label()),
	)
	now := a.clock.Now()
	result := Result{Summary: summary}

	comprehensive, err := Comprehensive(summary, a.cfg.StationName)
	if err != nil {
		return Result{}, fmt.Errorf("comprehensive figure: %w", err)
	}
	body, err := render.EncodePNG(comprehensive)
	if err != nil {
		return Result{}, err
	}
	art, err := a.save(ctx, "comprehensive", sealevel.ArtifactName(sealevel.PrefixComprehensive, now, "png"), sealevel.ContentTypePNG, body)
	if err != nil {
		return Result{}, err
	}
	result.Artifacts = append(result.Artifacts, art)

	tidal, err := Tidal(summary, a.cfg.StationName)
	switch {
	case errors.Is(err, ErrInsufficientData):
		a.logger.Info("No complete tidal data available")
		result.TidalSkipped = true
	case err != nil:
		return Result{}, fmt.Errorf("tidal figure: %w", err)
	default:
		body, err := render.EncodePNG(tidal)
		if err != nil {
			return Result{}, err
		}
		art, err := a.save(ctx, "tidal", sealevel.ArtifactName(sealevel.PrefixTidal, now, "png"), sealevel.ContentTypePNG, body)
		if err != nil {
			return Result{}, err
		}
		result.Artifacts = append(result.Artifacts, art)
	}

	var report bytes.Buffer
	if err := WriteReport(&report, summary, ReportInfo{
		StationName: a.cfg.StationName,
		StationCode: a.cfg.StationCode,
		GeneratedAt: now,
	}); err != nil {
		return Result{}, err
	}
	art, err = a.save(ctx, "report", sealevel.ArtifactName(sealevel.PrefixReport, now, "txt"), sealevel.ContentTypeText, report.Bytes())
	if err != nil {
		return Result{}, err
	}
	result.Artifacts = append(result.Artifacts, art)
	return result, nil
}

func (a *Analyzer) save(ctx context.Context, kind, name, contentType string, body []byte) (Artifact, error) {
	uri, err := a.store.PutObject(ctx, name, contentType, bytes.NewReader(body))
	if err != nil {
		return Artifact{}, fmt.Errorf("write %s: %w", name, err)
	}
	metrics.ObserveArtifact(path.Ext(name)[1:])
	a.logger.Info("artifact saved", zap.String("kind", kind), zap.String("uri", uri))
	return Artifact{Kind: kind, Name: name, URI: uri}, nil
}

func (a *Analyzer) logFindings(s Summary) {
	fields := []zap.Field{
		zap.String("rate", fmt.Sprintf("%.2f cm/decade", s.LongTerm.PerDecade())),
		zap.String("total_rise", fmt.Sprintf("%.1f cm over %d years", s.LongTerm.Slope*float64(s.Period.Span()), s.Period.Span())),
		zap.String("coverage", fmt.Sprintf("%d years from %s", s.Period.Records, s.Period.Label())),
	}
	if n := len(s.SeaLevel); n > 0 {
		latest := s.SeaLevel[n-1]
		fields = append(fields, zap.String("current_level", fmt.Sprintf("%.3f m (%d)", latest.Value, latest.Year)))
	}
	a.logger.Info("key findings", fields...)
}
