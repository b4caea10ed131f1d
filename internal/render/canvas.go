package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Align positions text relative to its anchor point.
type Align int

// Text alignments.
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Canvas is an RGBA image with a vector graphic context for strokes and fills.
type Canvas struct {
	img  *image.RGBA
	gc   *drawing.RasterGraphicContext
	face font.Face
}

// NewCanvas allocates a w×h canvas filled with bg.
func NewCanvas(w, h int, bg color.Color) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("canvas size %dx%d must be positive", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return CanvasFrom(img)
}

// CanvasFrom draws onto an existing image.
func CanvasFrom(img *image.RGBA) (*Canvas, error) {
	gc, err := drawing.NewRasterGraphicContext(img)
	if err != nil {
		return nil, fmt.Errorf("graphic context: %w", err)
	}
	return &Canvas{img: img, gc: gc, face: basicfont.Face7x13}, nil
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// SetFace replaces the text face; nil restores the default 7x13 bitmap font.
func (c *Canvas) SetFace(face font.Face) {
	if face == nil {
		face = basicfont.Face7x13
	}
	c.face = face
}

// Polyline strokes a connected line through pts.
func (c *Canvas) Polyline(pts []Point, stroke color.Color, width float64) {
	if len(pts) < 2 {
		return
	}
	c.gc.BeginPath()
	c.gc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.gc.LineTo(p.X, p.Y)
	}
	c.gc.SetLineDash(nil, 0)
	c.gc.SetStrokeColor(stroke)
	c.gc.SetLineWidth(width)
	c.gc.Stroke()
}

// Line strokes a single segment; dash may be nil for a solid line.
func (c *Canvas) Line(a, b Point, stroke color.Color, width float64, dash []float64) {
	c.gc.BeginPath()
	c.gc.MoveTo(a.X, a.Y)
	c.gc.LineTo(b.X, b.Y)
	c.gc.SetLineDash(dash, 0)
	c.gc.SetStrokeColor(stroke)
	c.gc.SetLineWidth(width)
	c.gc.Stroke()
	c.gc.SetLineDash(nil, 0)
}

// Circle strokes a circle outline.
func (c *Canvas) Circle(center Point, r float64, stroke color.Color, width float64, dash []float64) {
	if r <= 0 {
		return
	}
	c.gc.BeginPath()
	c.gc.ArcTo(center.X, center.Y, r, r, 0, 2*math.Pi)
	c.gc.Close()
	c.gc.SetLineDash(dash, 0)
	c.gc.SetStrokeColor(stroke)
	c.gc.SetLineWidth(width)
	c.gc.Stroke()
	c.gc.SetLineDash(nil, 0)
}

// Disc fills a circle and optionally outlines it (edgeWidth 0 skips the edge).
func (c *Canvas) Disc(center Point, r float64, fill color.Color, edge color.Color, edgeWidth float64) {
	if r <= 0 {
		return
	}
	c.gc.BeginPath()
	c.gc.ArcTo(center.X, center.Y, r, r, 0, 2*math.Pi)
	c.gc.Close()
	c.gc.SetFillColor(fill)
	c.gc.Fill()
	if edgeWidth > 0 && edge != nil {
		c.Circle(center, r, edge, edgeWidth, nil)
	}
}

// Rect fills an axis-aligned rectangle, blending with what is underneath.
func (c *Canvas) Rect(r image.Rectangle, fill color.Color) {
	draw.Draw(c.img, r, image.NewUniform(fill), image.Point{}, draw.Over)
}

// TextWidth measures s in pixels.
func (c *Canvas) TextWidth(s string) int {
	return font.MeasureString(c.face, s).Ceil()
}

// LineHeight is the vertical advance between text lines.
func (c *Canvas) LineHeight() int {
	return c.face.Metrics().Height.Ceil()
}

// Text draws s with its vertical centre at y and horizontal anchor at x.
func (c *Canvas) Text(s string, x, y float64, col color.Color, align Align) {
	w := c.TextWidth(s)
	m := c.face.Metrics()
	left := int(math.Round(x))
	switch align {
	case AlignCenter:
		left -= w / 2
	case AlignRight:
		left -= w
	}
	baseline := int(math.Round(y)) + (m.Ascent.Ceil()-m.Descent.Ceil())/2
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(left), Y: fixed.I(baseline)},
	}
	d.DrawString(s)
}

// TextBox draws lines on a padded background box whose top-left corner is at (x, y).
// It returns the box bounds.
func (c *Canvas) TextBox(lines []string, x, y int, fg, bg color.Color, pad int) image.Rectangle {
	w := 0
	for _, l := range lines {
		w = max(w, c.TextWidth(l))
	}
	lh := c.LineHeight()
	box := image.Rect(x, y, x+w+2*pad, y+lh*len(lines)+2*pad)
	c.Rect(box, bg)
	for i, l := range lines {
		cy := float64(y + pad + lh*i + lh/2)
		c.Text(l, float64(x+pad), cy, fg, AlignLeft)
	}
	return box
}

// LabelBox draws a single centred label on a padded background.
func (c *Canvas) LabelBox(s string, center Point, fg, bg color.Color, pad int) {
	w := c.TextWidth(s)
	lh := c.LineHeight()
	x := int(math.Round(center.X)) - w/2 - pad
	y := int(math.Round(center.Y)) - lh/2 - pad
	c.Rect(image.Rect(x, y, x+w+2*pad, y+lh+2*pad), bg)
	c.Text(s, center.X, center.Y, fg, AlignCenter)
}

// Point is a pixel position.
type Point struct {
	X, Y float64
}

// Polar converts (theta, r) around center into pixels, with theta measured
// counter-clockwise from the positive x axis.
func Polar(center Point, theta, r float64) Point {
	return Point{
		X: center.X + r*math.Cos(theta),
		Y: center.Y - r*math.Sin(theta),
	}
}

// WithAlpha returns col with its alpha replaced, premultiplying the channels.
func WithAlpha(col color.Color, alpha float64) color.RGBA {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	n.A = uint8(math.Round(clamp01(alpha) * 255))
	return color.RGBAModel.Convert(n).(color.RGBA)
}

// Hex parses "#rrggbb" through go-chart's colour helper.
func Hex(s string) color.RGBA {
	c := drawing.ColorFromHex(trimHash(s))
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func trimHash(s string) string {
	if len(s) > 0 && s[0] == '#' {
		return s[1:]
	}
	return s
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
