package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViridis(t *testing.T) {
	first := Hex("#440154")
	last := Hex("#fee724")
	assert.Equal(t, first, Viridis(0))
	assert.Equal(t, last, Viridis(1))
	assert.Equal(t, first, Viridis(-3))
	assert.Equal(t, last, Viridis(math.Inf(1)))
	assert.Equal(t, first, Viridis(math.NaN()))

	mid := Viridis(0.5)
	assert.NotEqual(t, first, mid)
	assert.NotEqual(t, last, mid)
	assert.Equal(t, uint8(255), mid.A)
}

func TestColormapEndpoints(t *testing.T) {
	assert.Equal(t, RdBu[0], RdBu.At(0))
	assert.Equal(t, RdBu[len(RdBu)-1], RdBu.At(1))
	assert.Equal(t, RdBu[0], RdBu.At(math.NaN()))

	mid := Colormap{{R: 0, A: 255}, {R: 200, A: 255}}.At(0.5)
	assert.Equal(t, uint8(100), mid.R)
}

func TestSet3(t *testing.T) {
	assert.Equal(t, set3[0], Set3(0))
	assert.Equal(t, set3[11], Set3(1))
	assert.Equal(t, set3[1], Set3(1.0/7))
}

func TestHex(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0xf5, G: 0xde, B: 0xb3, A: 0xff}, Hex("#f5deb3"))
	assert.Equal(t, Hex("#1f77b4"), Hex("1f77b4"))
}

func TestPolar(t *testing.T) {
	c := Point{X: 100, Y: 100}
	p := Polar(c, 0, 10)
	assert.InDelta(t, 110, p.X, 1e-9)
	assert.InDelta(t, 100, p.Y, 1e-9)

	p = Polar(c, math.Pi/2, 10)
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 90, p.Y, 1e-9, "positive angles turn upwards on screen")
}

func TestCanvasDrawsPixels(t *testing.T) {
	c, err := NewCanvas(60, 60, White)
	require.NoError(t, err)

	c.Disc(Point{X: 30, Y: 30}, 10, Red, White, 1)
	assert.Equal(t, Red, c.Image().RGBAAt(30, 30))
	assert.Equal(t, White, c.Image().RGBAAt(2, 2))

	c.Polyline([]Point{{X: 0, Y: 55}, {X: 59, Y: 55}}, Blue, 3)
	assert.NotEqual(t, White, c.Image().RGBAAt(30, 55))

	before := c.Image().RGBAAt(30, 5)
	c.Text("Year 0", 30, 5, Black, AlignCenter)
	changed := false
	for x := 10; x < 50; x++ {
		for y := 0; y < 12; y++ {
			if c.Image().RGBAAt(x, y) != before {
				changed = true
			}
		}
	}
	assert.True(t, changed, "text left no ink")
}

func TestNewCanvasRejectsEmpty(t *testing.T) {
	_, err := NewCanvas(0, 10, White)
	require.Error(t, err)
}

func TestGridAndBlank(t *testing.T) {
	a, err := Blank(40, 30, "A", "no data")
	require.NoError(t, err)
	b := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for i := range b.Pix {
		b.Pix[i] = 0xff
	}
	b.SetRGBA(0, 0, Red)

	g, err := Grid([]image.Image{a, b, nil}, 2, 2, 40, 30, "title", 20)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 80), g.Bounds())
	assert.Equal(t, Red, g.RGBAAt(40, 20), "second panel lands in the top-right cell")

	_, err = Grid(make([]image.Image, 5), 2, 2, 10, 10, "", 0)
	require.Error(t, err)
}

func TestPNGRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(1, 1, Green)
	data, err := EncodePNG(img)
	require.NoError(t, err)
	back, err := DecodePNG(data)
	require.NoError(t, err)
	r, g, bl, _ := back.At(1, 1).RGBA()
	assert.Equal(t, uint32(Green.R)*0x101, r)
	assert.Equal(t, uint32(Green.G)*0x101, g)
	assert.Equal(t, uint32(Green.B)*0x101, bl)
}
