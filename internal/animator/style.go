package animator

import (
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/JakeFAU/sealevel/internal/render"
)

// Style is the explicit look of an animation. Renderers never consult global
// state for fonts or colours.
type Style struct {
	Width, Height int
	Face          font.Face
	Title         []string
	AngleLabels   []string

	Background    color.RGBA
	Axis          color.RGBA
	Line          color.RGBA
	LineWidth     float64
	PointRadius   float64
	PointEdge     color.RGBA
	StartMarker   color.RGBA
	CurrentMarker color.RGBA
	MarkerRadius  float64
	LabelBox      color.RGBA
	InfoBox       color.RGBA
	Text          color.RGBA
	Points        render.Palette
}

// DefaultStyle returns the standard look for policy at w×h pixels.
func DefaultStyle(policy RadiusPolicy, w, h int) Style {
	labels := make([]string, 10)
	for i := range labels {
		labels[i] = "Year " + string(rune('0'+i))
	}
	subtitle := ""
	if policy != nil {
		subtitle = policy.Subtitle()
	}
	return Style{
		Width:         w,
		Height:        h,
		Face:          basicfont.Face7x13,
		Title:         []string{"Hong Kong Sea Level Animation (10-Year Cycles)", subtitle},
		AngleLabels:   labels,
		Background:    render.White,
		Axis:          render.LightGray,
		Line:          render.WithAlpha(render.Blue, 0.7),
		LineWidth:     2,
		PointRadius:   4,
		PointEdge:     render.White,
		StartMarker:   render.Red,
		CurrentMarker: render.Green,
		MarkerRadius:  6,
		LabelBox:      render.WithAlpha(render.White, 0.7),
		InfoBox:       render.WithAlpha(render.Wheat, 0.8),
		Text:          render.Black,
		Points:        render.Viridis,
	}
}
