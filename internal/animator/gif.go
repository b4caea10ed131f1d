package animator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"sync"
	"time"
)

// defaultGIFDelay is 300ms in GIF centiseconds.
const defaultGIFDelay = 30

// GIFSink collects frames into a looping animated GIF. Consecutive identical
// frames are merged into one frame with a longer delay.
type GIFSink struct {
	mu     sync.Mutex
	delay  int
	anim   gif.GIF
	last   []byte
	frames int
}

// NewGIFSink creates a sink whose frames last frameDelay each. A non-positive
// delay falls back to 300ms.
func NewGIFSink(frameDelay time.Duration) *GIFSink {
	cs := int(frameDelay / (10 * time.Millisecond))
	if cs <= 0 {
		cs = defaultGIFDelay
	}
	return &GIFSink{delay: cs, anim: gif.GIF{LoopCount: 0}}
}

// WriteFrame implements FrameSink.
func (s *GIFSink) WriteFrame(_ context.Context, _ int, img *image.RGBA) error {
	if img == nil {
		return fmt.Errorf("nil frame")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++
	if s.last != nil && bytes.Equal(s.last, img.Pix) {
		s.anim.Delay[len(s.anim.Delay)-1] += s.delay
		return nil
	}
	b := img.Bounds()
	pal := image.NewPaletted(b, palette.Plan9)
	draw.Draw(pal, b, img, b.Min, draw.Src)
	s.anim.Image = append(s.anim.Image, pal)
	s.anim.Delay = append(s.anim.Delay, s.delay)
	s.last = append(s.last[:0], img.Pix...)
	return nil
}

// Frames is the number of frames written, counting merged ones.
func (s *GIFSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Encoded is the number of distinct images in the GIF.
func (s *GIFSink) Encoded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.anim.Image)
}

// Duration is the total playing time of one loop.
func (s *GIFSink) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, d := range s.anim.Delay {
		total += d
	}
	return time.Duration(total) * 10 * time.Millisecond
}

// Encode writes the GIF.
func (s *GIFSink) Encode(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.anim.Image) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	if err := gif.EncodeAll(w, &s.anim); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	return nil
}
