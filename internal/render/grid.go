package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

// Grid places equally sized panels row-major into a rows×cols image under an
// optional title strip of titleHeight pixels. Missing or nil panels stay blank.
func Grid(panels []image.Image, rows, cols, cellW, cellH int, title string, titleHeight int) (*image.RGBA, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid %dx%d must be positive", rows, cols)
	}
	if len(panels) > rows*cols {
		return nil, fmt.Errorf("%d panels do not fit a %dx%d grid", len(panels), rows, cols)
	}
	c, err := NewCanvas(cols*cellW, rows*cellH+titleHeight, White)
	if err != nil {
		return nil, err
	}
	if title != "" && titleHeight > 0 {
		c.Text(title, float64(cols*cellW)/2, float64(titleHeight)/2, Black, AlignCenter)
	}
	dst := c.Image()
	for i, p := range panels {
		if p == nil {
			continue
		}
		x := (i % cols) * cellW
		y := titleHeight + (i/cols)*cellH
		cell := image.Rect(x, y, x+cellW, y+cellH)
		draw.Draw(dst, cell, p, p.Bounds().Min, draw.Over)
	}
	return dst, nil
}

// Blank returns a white panel with a centred title and an explanatory message,
// used where a chart cannot be drawn.
func Blank(w, h int, title, message string) (*image.RGBA, error) {
	c, err := NewCanvas(w, h, White)
	if err != nil {
		return nil, err
	}
	c.Text(title, float64(w)/2, 20, Black, AlignCenter)
	c.Text(message, float64(w)/2, float64(h)/2, Gray, AlignCenter)
	return c.Image(), nil
}

// DecodePNG decodes a chart rendered to PNG.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
