// Package render holds the raster primitives shared by the animation frames and
// the analysis figures: a stroke/fill canvas on top of go-chart's drawing
// context, bitmap text, colour maps and grid composition of chart panels.
package render
