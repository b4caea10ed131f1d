package animator

import (
	"fmt"
	"image"
	"math"
	"sync"

	"golang.org/x/image/font/basicfont"

	"github.com/JakeFAU/sealevel/internal/render"
)

const (
	plotMargin   = 70
	titlePadding = 16
	ringDash     = 6.0
	// ringLabelAngle is where radial labels sit, 22.5 degrees above the x axis.
	ringLabelAngle = math.Pi / 8
)

// Renderer draws frame states for a fixed set of points.
type Renderer struct {
	style  Style
	policy RadiusPolicy
	points []Point

	center render.Point
	scale  float64
	titleH int

	baseOnce sync.Once
	base     *image.RGBA
	baseErr  error
}

// NewRenderer prepares a renderer. points must be non-empty.
func NewRenderer(style Style, policy RadiusPolicy, points []Point) (*Renderer, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("no points to render")
	}
	if policy == nil {
		return nil, fmt.Errorf("radius policy is required")
	}
	if style.Width <= 0 || style.Height <= 0 {
		return nil, fmt.Errorf("style size %dx%d must be positive", style.Width, style.Height)
	}
	if style.Face == nil {
		style.Face = basicfont.Face7x13
	}
	r := &Renderer{style: style, policy: policy, points: points}

	lineH := style.Face.Metrics().Height.Ceil()
	r.titleH = len(style.Title)*lineH + 2*titlePadding
	plotH := style.Height - r.titleH
	radiusPx := float64(min(style.Width, plotH))/2 - plotMargin
	if radiusPx <= 0 {
		return nil, fmt.Errorf("style size %dx%d leaves no room for the plot", style.Width, style.Height)
	}
	r.center = render.Point{X: float64(style.Width) / 2, Y: float64(r.titleH) + float64(plotH)/2}
	r.scale = radiusPx / policy.Limit()
	return r, nil
}

// Render draws one frame. Each call starts from the static chart background.
func (r *Renderer) Render(state FrameState) (*image.RGBA, error) {
	base, err := r.background()
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(base.Bounds())
	copy(img.Pix, base.Pix)
	c, err := render.CanvasFrom(img)
	if err != nil {
		return nil, err
	}
	c.SetFace(r.style.Face)

	visible := r.points[:min(state.Visible, len(r.points))]
	if len(visible) > 1 {
		line := make([]render.Point, len(visible))
		for i, p := range visible {
			line[i] = r.at(p.Angle, p.Radius)
		}
		c.Polyline(line, r.style.Line, r.style.LineWidth)
	}
	for _, p := range visible {
		c.Disc(r.at(p.Angle, p.Radius), r.style.PointRadius, r.style.Points(p.Color), r.style.PointEdge, 1)
	}
	for _, j := range state.Labels {
		p := r.points[j]
		c.LabelBox(fmt.Sprintf("%d", p.Year), r.at(p.Angle, p.Radius+LabelOffset), r.style.Text, r.style.LabelBox, 2)
	}

	start := r.points[state.Start]
	c.Disc(r.at(start.Angle, start.Radius), r.style.MarkerRadius, r.style.StartMarker, nil, 0)
	if state.Current >= 0 {
		cur := r.points[state.Current]
		c.Disc(r.at(cur.Angle, cur.Radius), r.style.MarkerRadius, r.style.CurrentMarker, nil, 0)
	}

	c.TextBox(state.Info, 12, r.titleH+8, r.style.Text, r.style.InfoBox, 6)
	return img, nil
}

// at converts polar data coordinates to pixels. Negative radii are drawn at the centre.
func (r *Renderer) at(theta, radius float64) render.Point {
	return render.Polar(r.center, theta, math.Max(radius, 0)*r.scale)
}

func (r *Renderer) background() (*image.RGBA, error) {
	r.baseOnce.Do(func() {
		r.base, r.baseErr = r.drawBackground()
	})
	return r.base, r.baseErr
}

func (r *Renderer) drawBackground() (*image.RGBA, error) {
	s := r.style
	c, err := render.NewCanvas(s.Width, s.Height, s.Background)
	if err != nil {
		return nil, err
	}
	c.SetFace(s.Face)

	limit := r.policy.Limit()
	outer := limit * r.scale
	for i, label := range s.AngleLabels {
		theta := 2 * math.Pi * float64(i) / float64(len(s.AngleLabels))
		c.Line(r.center, render.Polar(r.center, theta, outer), s.Axis, 1, nil)
		pos := render.Polar(r.center, theta, outer+28)
		c.Text(label, pos.X, pos.Y, s.Text, render.AlignCenter)
	}
	c.Circle(r.center, outer, s.Axis, 1.5, nil)

	for _, ring := range r.policy.Rings() {
		var dash []float64
		if ring.Dashed {
			dash = []float64{ringDash, ringDash * 0.66}
		}
		c.Circle(r.center, ring.Radius*r.scale, ring.Color, 1.5, dash)
		pos := render.Polar(r.center, ringLabelAngle, ring.Radius*r.scale)
		c.Text(ring.Label, pos.X+4, pos.Y, render.Gray, render.AlignLeft)
	}

	lineH := c.LineHeight()
	for i, line := range s.Title {
		c.Text(line, float64(s.Width)/2, float64(titlePadding+lineH*i+lineH/2), s.Text, render.AlignCenter)
	}
	r.drawLegend(c)
	return c.Image(), nil
}

func (r *Renderer) drawLegend(c *render.Canvas) {
	s := r.style
	entries := []string{
		"Sea Level Connections",
		fmt.Sprintf("Start (%d)", r.points[0].Year),
		"Current Point",
	}
	width := 0
	for _, e := range entries {
		width = max(width, c.TextWidth(e))
	}
	lineH := c.LineHeight() + 4
	x := float64(s.Width - width - 48)
	y := float64(r.titleH + 8)
	c.Rect(image.Rect(int(x)-8, int(y)-4, s.Width-8, int(y)+lineH*len(entries)+4), render.WithAlpha(render.White, 0.8))
	for i, e := range entries {
		cy := y + float64(lineH*i) + float64(lineH)/2
		switch i {
		case 0:
			c.Line(render.Point{X: x, Y: cy}, render.Point{X: x + 22, Y: cy}, s.Line, s.LineWidth, nil)
		case 1:
			c.Disc(render.Point{X: x + 11, Y: cy}, s.MarkerRadius/1.5, s.StartMarker, nil, 0)
		case 2:
			c.Disc(render.Point{X: x + 11, Y: cy}, s.MarkerRadius/1.5, s.CurrentMarker, nil, 0)
		}
		c.Text(e, x+30, cy, s.Text, render.AlignLeft)
	}
}
