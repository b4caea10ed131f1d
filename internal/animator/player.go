package animator

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JakeFAU/sealevel/internal/metrics"
)

// DefaultFrameDelay is the on-screen time of one frame.
const DefaultFrameDelay = 300 * time.Millisecond

// FrameSink receives rendered frames in order.
type FrameSink interface {
	WriteFrame(ctx context.Context, index int, img *image.RGBA) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(ctx context.Context, index int, img *image.RGBA) error

// WriteFrame calls f.
func (f FrameSinkFunc) WriteFrame(ctx context.Context, index int, img *image.RGBA) error {
	return f(ctx, index, img)
}

// Player renders frames 0..N+hold-1 one at a time on the caller's goroutine.
type Player struct {
	renderer *Renderer
	policy   RadiusPolicy
	points   []Point
	hold     int
	delay    time.Duration
	clock    clockwork.Clock
	logger   *zap.Logger
}

// NewPlayer builds a Player. A zero delay renders frames back to back.
func NewPlayer(
	renderer *Renderer,
	policy RadiusPolicy,
	points []Point,
	hold int,
	delay time.Duration,
	clock clockwork.Clock,
	logger *zap.Logger,
) *Player {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		renderer: renderer,
		policy:   policy,
		points:   points,
		hold:     hold,
		delay:    delay,
		clock:    clock,
		logger:   logger,
	}
}

// Total is the number of frames Play emits.
func (p *Player) Total() int {
	return FrameCount(len(p.points), p.hold)
}

// Play emits every frame to sink. The first frame is emitted immediately and
// each later frame waits for the next tick. It returns the number of frames
// delivered.
func (p *Player) Play(ctx context.Context, sink FrameSink) (int, error) {
	total := p.Total()
	var ticks <-chan time.Time
	if p.delay > 0 {
		ticker := p.clock.NewTicker(p.delay)
		defer ticker.Stop()
		ticks = ticker.Chan()
	}

	for i := 0; i < total; i++ {
		if i > 0 && ticks != nil {
			select {
			case <-ctx.Done():
				return i, fmt.Errorf("animation interrupted at frame %d: %w", i, ctx.Err())
			case <-ticks:
			}
		} else if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("animation interrupted at frame %d: %w", i, err)
		}

		state := FrameAt(p.points, p.policy, i)
		img, err := p.renderer.Render(state)
		if err != nil {
			return i, fmt.Errorf("render frame %d: %w", i, err)
		}
		metrics.ObserveFrame(p.policy.Name())
		if err := sink.WriteFrame(ctx, i, img); err != nil {
			return i, fmt.Errorf("write frame %d: %w", i, err)
		}
		if state.Phase == PhaseHold && i == len(p.points) {
			p.logger.Debug("holding final frame", zap.Int("frame", i), zap.Int("hold", p.hold))
		}
	}
	return total, nil
}
