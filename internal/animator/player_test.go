package animator

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu     sync.Mutex
	frames []int
	fail   error
}

func (s *recordingSink) WriteFrame(_ context.Context, index int, _ *image.RGBA) error {
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, index)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func newTestPlayer(t *testing.T, hold int, delay time.Duration, clock clockwork.Clock) *Player {
	t.Helper()
	ds := dataset(t, map[int]float64{2020: 1.30, 2021: 1.32, 2022: 1.35})
	p, err := NewPolicy(NameMinMax, ds)
	require.NoError(t, err)
	points := ComputePoints(ds, p)
	r, err := NewRenderer(DefaultStyle(p, 240, 240), p, points)
	require.NoError(t, err)
	return NewPlayer(r, p, points, hold, delay, clock, zap.NewNop())
}

func TestPlayerUnpaced(t *testing.T) {
	player := newTestPlayer(t, 2, 0, nil)
	sink := &recordingSink{}

	n, err := player.Play(context.Background(), sink)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, sink.frames)
}

func TestPlayerPacedByClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	player := newTestPlayer(t, 1, DefaultFrameDelay, clock)
	sink := &recordingSink{}

	done := make(chan error, 1)
	go func() {
		_, err := player.Play(context.Background(), sink)
		done <- err
	}()

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, time.Millisecond)
	for want := 2; want <= player.Total(); want++ {
		clock.Advance(DefaultFrameDelay)
		require.Eventually(t, func() bool { return sink.count() == want }, time.Second, time.Millisecond)
	}
	require.NoError(t, <-done)
	assert.Equal(t, []int{0, 1, 2, 3}, sink.frames)
}

func TestPlayerStopsOnCancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	player := newTestPlayer(t, 60, DefaultFrameDelay, clock)
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := player.Play(ctx, sink)
		done <- err
	}()
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, time.Millisecond)
	cancel()

	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sink.count())
}

func TestPlayerSinkError(t *testing.T) {
	player := newTestPlayer(t, 0, 0, nil)
	n, err := player.Play(context.Background(), &recordingSink{fail: errors.New("disk full")})
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0, n)
}
