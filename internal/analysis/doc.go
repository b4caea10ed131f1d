// Package analysis computes long-term statistics over a sea-level dataset and
// renders them as two PNG figures and a plain-text report.
//
// Statistics come from gonum. Charts are drawn with go-chart, rasterised to
// PNG and composed into figure grids by the render package. Panels that cannot
// be drawn, usually because a series has too few points, are replaced with a
// labelled blank panel so a sparse dataset never fails a whole figure.
package analysis
