package render

import (
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2"
)

// Palette maps a value in [0, 1] to a colour.
type Palette func(v float64) color.RGBA

// Colormap maps a value in [0, 1] to a colour by linear interpolation between
// evenly spaced anchors.
type Colormap []color.RGBA

// At returns the colour for v; values outside [0, 1] are clamped.
func (m Colormap) At(v float64) color.RGBA {
	if len(m) == 0 {
		return color.RGBA{A: 255}
	}
	if len(m) == 1 {
		return m[0]
	}
	v = clamp01(v)
	pos := v * float64(len(m)-1)
	i := int(math.Floor(pos))
	if i >= len(m)-1 {
		return m[len(m)-1]
	}
	t := pos - float64(i)
	a, b := m[i], m[i+1]
	return color.RGBA{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
		A: 255,
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// Viridis samples go-chart's 256-step viridis map. Values outside [0, 1] and
// NaN are clamped before indexing.
func Viridis(v float64) color.RGBA {
	c := chart.Viridis(clamp01(v), 0, 1)
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// RdBu is the diverging red-white-blue map used for correlation heatmaps;
// 0 is red, 0.5 is near white and 1 is blue.
var RdBu = Colormap{
	Hex("#67001f"), Hex("#b2182b"), Hex("#d6604d"), Hex("#f4a582"), Hex("#fddbc7"),
	Hex("#f7f7f7"),
	Hex("#d1e5f0"), Hex("#92c5de"), Hex("#4393c3"), Hex("#2166ac"), Hex("#053061"),
}

// set3 is the twelve-colour qualitative palette.
var set3 = []color.RGBA{
	Hex("#8dd3c7"), Hex("#ffffb3"), Hex("#bebada"), Hex("#fb8072"), Hex("#80b1d3"), Hex("#fdb462"),
	Hex("#b3de69"), Hex("#fccde5"), Hex("#d9d9d9"), Hex("#bc80bd"), Hex("#ccebc5"), Hex("#ffed6f"),
}

// Set3 samples the qualitative palette at v in [0, 1] without interpolation.
func Set3(v float64) color.RGBA {
	i := int(clamp01(v) * float64(len(set3)))
	if i >= len(set3) {
		i = len(set3) - 1
	}
	return set3[i]
}

// Common colours.
var (
	White     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black     = color.RGBA{A: 255}
	Gray      = Hex("#808080")
	LightGray = Hex("#d0d0d0")
	Blue      = Hex("#1f77b4")
	Red       = Hex("#d62728")
	Green     = Hex("#2ca02c")
	Wheat     = Hex("#f5deb3")
)
