package animator

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/metrics"
	"github.com/JakeFAU/sealevel/internal/sealevel"
)

// Config controls one animation run.
type Config struct {
	Policy     string
	FrameDelay time.Duration
	HoldFrames int
	Width      int
	Height     int
	// Realtime paces frame rendering by FrameDelay instead of rendering as fast as possible.
	Realtime bool
}

// Result describes a finished animation.
type Result struct {
	Policy        string
	Points        []Point
	Frames        int
	EncodedFrames int
	Name          string
	URI           string
}

// Animator renders a dataset into a GIF and stores it.
type Animator struct {
	cfg    Config
	store  sealevel.BlobStore
	clock  clockwork.Clock
	logger *zap.Logger
}

// New constructs an Animator.
func New(cfg Config, store sealevel.BlobStore, clock clockwork.Clock, logger *zap.Logger) *Animator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Animator{cfg: cfg, store: store, clock: clock, logger: logger}
}

// Run animates ds. A dataset with no mean sea level at all yields
// sealevel.ErrEmptyDataset.
func (a *Animator) Run(ctx context.Context, ds sealevel.Dataset) (Result, error) {
	policy, err := NewPolicy(a.cfg.Policy, ds)
	if err != nil {
		return Result{}, err
	}
	points := ComputePoints(ds, policy)
	renderer, err := NewRenderer(DefaultStyle(policy, a.cfg.Width, a.cfg.Height), policy, points)
	if err != nil {
		return Result{}, err
	}

	pacing := time.Duration(0)
	if a.cfg.Realtime {
		pacing = a.cfg.FrameDelay
	}
	player := NewPlayer(renderer, policy, points, a.cfg.HoldFrames, pacing, a.clock, a.logger)
	a.logSummary(policy, points, player.Total())

	sink := NewGIFSink(a.cfg.FrameDelay)
	frames, err := player.Play(ctx, sink)
	if err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	if err := sink.Encode(&buf); err != nil {
		return Result{}, err
	}
	name := sealevel.ArtifactName(sealevel.PrefixAnimation+"_"+policy.Name(), a.clock.Now(), "gif")
	uri, err := a.store.PutObject(ctx, name, sealevel.ContentTypeGIF, &buf)
	if err != nil {
		return Result{}, fmt.Errorf("write %s: %w", name, err)
	}
	metrics.ObserveArtifact("gif")
	a.logger.Info("animation saved",
		zap.String("uri", uri),
		zap.Int("frames", frames),
		zap.Int("encoded_frames", sink.Encoded()),
		zap.Duration("loop_duration", sink.Duration()),
	)

	return Result{
		Policy:        policy.Name(),
		Points:        points,
		Frames:        frames,
		EncodedFrames: sink.Encoded(),
		Name:          name,
		URI:           uri,
	}, nil
}

func (a *Animator) logSummary(policy RadiusPolicy, points []Point, total int) {
	lo, hi := points[0].Level, points[0].Level
	for _, p := range points[1:] {
		lo = min(lo, p.Level)
		hi = max(hi, p.Level)
	}
	first, last := points[0].Year, points[len(points)-1].Year
	fields := []zap.Field{
		zap.String("policy", policy.Name()),
		zap.String("data_range", fmt.Sprintf("%d-%d (%d years)", first, last, len(points))),
		zap.String("sea_level_range", fmt.Sprintf("%.3f-%.3fm", lo, hi)),
		zap.Int("total_frames", total),
		zap.Duration("frame_delay", a.cfg.FrameDelay),
	}
	if policy.ShowRadius() {
		fields = append(fields, zap.String("radius_range", fmt.Sprintf("1.00-5.00 (scaled from %.3f-%.3fm)", lo, hi)))
	}
	a.logger.Info("animation info", fields...)
}
