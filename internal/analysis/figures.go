package analysis

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JakeFAU/sealevel/internal/render"
)

// Figure geometry in pixels.
const (
	panelWidth  = 640
	panelHeight = 480
	titleHeight = 48
)

// componentStyle describes how each water level is drawn, indexed like ComponentLabels.
var componentStyle = []struct {
	name  string
	color color.RGBA
	width float64
}{
	{"Mean Sea Level", render.Hex("#0000ff"), 2},
	{"Mean Higher High Water", render.Hex("#ff0000"), 2},
	{"Mean Lower High Water", render.Hex("#ffa500"), 1.5},
	{"Mean Higher Low Water", render.Hex("#90ee90"), 1.5},
	{"Mean Lower Low Water", render.Hex("#008000"), 2},
}

var (
	purple  = render.Hex("#800080")
	skyBlue = render.Hex("#87ceeb")
)

// Comprehensive draws the 2×3 sea-level overview figure.
func Comprehensive(s Summary, stationName string) (*image.RGBA, error) {
	panels := []image.Image{
		panel("Long-term Sea Level Change", func() (image.Image, error) { return longTermPanel(s) }),
		panel(recentTitle(s), func() (image.Image, error) { return recentPanel(s) }),
		panel("Year-to-Year Changes (Blue=Rise, Red=Drop)", func() (image.Image, error) { return yearOverYearPanel(s) }),
		panel("Tidal Range Changes", func() (image.Image, error) { return tidalRangePanel(s) }),
		panel("Decadal Averages", func() (image.Image, error) { return decadalPanel(s) }),
		panel("Statistical Summary", func() (image.Image, error) { return summaryPanel(s) }),
	}
	title := fmt.Sprintf("Hong Kong %s Station Sea Level Analysis (%s)", stationName, s.Period.Label())
	return render.Grid(panels, 2, 3, panelWidth, panelHeight, title, titleHeight)
}

// Tidal draws the 2×2 tidal components figure. It fails with
// ErrInsufficientData when no record carries both tidal extremes.
func Tidal(s Summary, stationName string) (*image.RGBA, error) {
	if !s.HasTidalData() {
		return nil, fmt.Errorf("%w: no complete tidal data available", ErrInsufficientData)
	}
	panels := []image.Image{
		panel("Tidal Components Long-term Changes", func() (image.Image, error) { return componentsPanel(s) }),
		panel("Tidal Range Components", func() (image.Image, error) { return rangesPanel(s) }),
		panel("Distribution of Tidal Levels", func() (image.Image, error) { return boxPanel(s) }),
		panel("Tidal Components Correlation", func() (image.Image, error) { return correlationPanel(s) }),
	}
	title := fmt.Sprintf("Hong Kong %s Station - Detailed Tidal Analysis", stationName)
	return render.Grid(panels, 2, 2, panelWidth, panelHeight, title, titleHeight)
}

// panel builds one figure cell, falling back to a labelled blank panel when
// the chart cannot be drawn.
func panel(title string, build func() (image.Image, error)) image.Image {
	img, err := tryBuild(build)
	if err == nil {
		return img
	}
	blank, berr := render.Blank(panelWidth, panelHeight, title, err.Error())
	if berr != nil {
		return nil
	}
	return blank
}

// tryBuild converts a go-chart panic (it panics on some degenerate ranges)
// into an error.
func tryBuild(build func() (image.Image, error)) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("render panel: %v", r)
		}
	}()
	return build()
}

func recentTitle(s Summary) string {
	return fmt.Sprintf("Recent %d-year Changes", s.Period.LastYear-s.Options.RecentFrom+1)
}

func longTermPanel(s Summary) (image.Image, error) {
	return renderChart(chart.Chart{
		Title: "Long-term Sea Level Change",
		XAxis: yearAxis(),
		YAxis: valueAxis("Sea Level Height (m)", "%.2f"),
		Series: []chart.Series{
			lineSeries("Annual Mean Sea Level", s.SeaLevel, render.Blue, 2, 0),
			trendSeries(fmt.Sprintf("Trend: %.2f cm/decade", s.LongTerm.PerDecade()), s.LongTerm),
		},
	}, true)
}

func recentPanel(s Summary) (image.Image, error) {
	if s.Recent == nil {
		return nil, fmt.Errorf("%w: fewer than 2 years since %d", ErrInsufficientData, s.Options.RecentFrom)
	}
	years := s.Period.LastYear - s.Options.RecentFrom + 1
	return renderChart(chart.Chart{
		Title: recentTitle(s),
		XAxis: yearAxis(),
		YAxis: valueAxis("Sea Level Height (m)", "%.2f"),
		Series: []chart.Series{
			lineSeries(fmt.Sprintf("Recent %d years", years), since(s.SeaLevel, s.Options.RecentFrom), render.Green, 3, 4),
			trendSeries(fmt.Sprintf("Recent trend: %.2f cm/decade", s.Recent.PerDecade()), *s.Recent),
		},
	}, true)
}

func yearOverYearPanel(s Summary) (image.Image, error) {
	if len(s.YearOverYear) == 0 {
		return nil, fmt.Errorf("%w: year-to-year changes need 2 years", ErrInsufficientData)
	}
	first, last := s.YearOverYear[0].Year, s.YearOverYear[len(s.YearOverYear)-1].Year
	barWidth := math.Max(1, 0.8*float64(panelWidth-120)/float64(last-first+2))
	series := []chart.Series{
		chart.ContinuousSeries{
			XValues: []float64{float64(first - 1), float64(last + 1)},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeColor: chartColor(render.Black).WithAlpha(77), StrokeWidth: 1},
		},
	}
	for _, d := range s.YearOverYear {
		col := render.Blue
		if d.Value < 0 {
			col = render.Red
		}
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{float64(d.Year), float64(d.Year)},
			YValues: []float64{0, d.Value},
			Style:   chart.Style{StrokeColor: chartColor(col).WithAlpha(153), StrokeWidth: barWidth},
		})
	}
	return renderChart(chart.Chart{
		Title:  "Year-to-Year Changes (Blue=Rise, Red=Drop)",
		XAxis:  yearAxis(),
		YAxis:  valueAxis("Annual Change (m)", "%.3f"),
		Series: series,
	}, false)
}

func tidalRangePanel(s Summary) (image.Image, error) {
	if s.TidalTrend == nil {
		return nil, fmt.Errorf("%w: tidal range needs 2 years with both extremes", ErrInsufficientData)
	}
	return renderChart(chart.Chart{
		Title: "Tidal Range Changes",
		XAxis: yearAxis(),
		YAxis: valueAxis("Tidal Range (m)", "%.2f"),
		Series: []chart.Series{
			lineSeries("Tidal Range", s.TidalRange, purple, 2, 3),
			trendSeries(fmt.Sprintf("Trend: %.3f m/decade", s.TidalTrend.PerDecade()), *s.TidalTrend),
		},
	}, true)
}

func decadalPanel(s Summary) (image.Image, error) {
	if len(s.Decades) == 0 {
		return nil, fmt.Errorf("%w: no decade has %d or more years", ErrInsufficientData, s.Options.MinDecadeYears)
	}
	first, last := s.Decades[0].Decade, s.Decades[len(s.Decades)-1].Decade
	barWidth := math.Max(2, 0.5*float64(panelWidth-120)/float64((last-first)/10+2))
	var (
		series []chart.Series
		ticks  []chart.Tick
		top    float64
	)
	bar := chart.Style{StrokeColor: chartColor(skyBlue).WithAlpha(179), StrokeWidth: barWidth}
	whisker := chart.Style{StrokeColor: chartColor(render.Black), StrokeWidth: 1.5}
	for _, d := range s.Decades {
		x := float64(d.Decade)
		series = append(series,
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{0, d.Mean}, Style: bar},
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{d.Mean - d.StdDev, d.Mean + d.StdDev}, Style: whisker},
			chart.ContinuousSeries{XValues: []float64{x - 1.5, x + 1.5}, YValues: []float64{d.Mean + d.StdDev, d.Mean + d.StdDev}, Style: whisker},
			chart.ContinuousSeries{XValues: []float64{x - 1.5, x + 1.5}, YValues: []float64{d.Mean - d.StdDev, d.Mean - d.StdDev}, Style: whisker},
		)
		ticks = append(ticks, chart.Tick{Value: x, Label: d.Label()})
		top = math.Max(top, d.Mean+d.StdDev)
	}
	xRange := &chart.ContinuousRange{Min: float64(first) - 7, Max: float64(last) + 7}
	yAxis := valueAxis("Mean Sea Level (m)", "%.2f")
	yAxis.Range = &chart.ContinuousRange{Min: 0, Max: top * 1.1}
	return renderChart(chart.Chart{
		Title:  "Decadal Averages",
		XAxis:  chart.XAxis{Name: "Decade", Range: xRange, Ticks: ticks},
		YAxis:  yAxis,
		Series: series,
	}, false)
}

func summaryPanel(s Summary) (image.Image, error) {
	c, err := render.NewCanvas(panelWidth, panelHeight, render.White)
	if err != nil {
		return nil, err
	}
	c.Text("Statistical Summary", panelWidth/2, 20, render.Black, render.AlignCenter)
	c.TextBox(panelText(s), 30, 44, render.Black, render.WithAlpha(render.Wheat, 0.5), 10)
	return c.Image(), nil
}

func componentsPanel(s Summary) (image.Image, error) {
	series := make([]chart.Series, 0, len(boxOrder))
	for _, idx := range boxOrder {
		st := componentStyle[idx]
		dots := 0.0
		if idx == 0 {
			dots = 2
		}
		series = append(series, lineSeries(st.name, s.Components[idx].Values, st.color, st.width, dots))
	}
	return renderChart(chart.Chart{
		Title:  "Tidal Components Long-term Changes",
		XAxis:  yearAxis(),
		YAxis:  valueAxis("Water Level (m)", "%.2f"),
		Series: series,
	}, true)
}

func rangesPanel(s Summary) (image.Image, error) {
	return renderChart(chart.Chart{
		Title: "Tidal Range Components",
		XAxis: yearAxis(),
		YAxis: valueAxis("Range (m)", "%.2f"),
		Series: []chart.Series{
			lineSeries("Total Tidal Range", s.TidalRange, purple, 2, 3),
			lineSeries("High Water Range", s.HighWaterRange, componentStyle[1].color, 1.5, 0),
			lineSeries("Low Water Range", s.LowWaterRange, componentStyle[0].color, 1.5, 0),
		},
	}, true)
}

// boxPanel draws one box-and-whisker per water level, highest level first.
func boxPanel(s Summary) (image.Image, error) {
	if len(s.Boxes) == 0 {
		return nil, fmt.Errorf("%w: no tidal levels to summarise", ErrInsufficientData)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range s.Boxes {
		lo, hi = math.Min(lo, b.Min), math.Max(hi, b.Max)
	}
	if hi <= lo {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := (hi - lo) * 0.05
	lo, hi = lo-pad, hi+pad

	c, err := render.NewCanvas(panelWidth, panelHeight, render.White)
	if err != nil {
		return nil, err
	}
	const left, right, top, bottom = 70.0, panelWidth - 20.0, 50.0, panelHeight - 40.0
	y := func(v float64) float64 { return bottom - (v-lo)/(hi-lo)*(bottom-top) }

	c.Text("Distribution of Tidal Levels", panelWidth/2, 20, render.Black, render.AlignCenter)
	c.Text("Water Level (m)", left, top-14, render.Black, render.AlignLeft)
	for i := range 5 {
		v := lo + (hi-lo)*float64(i)/4
		c.Line(render.Point{X: left, Y: y(v)}, render.Point{X: right, Y: y(v)}, render.WithAlpha(render.Gray, 0.3), 1, nil)
		c.Text(fmt.Sprintf("%.2f", v), left-6, y(v), render.Black, render.AlignRight)
	}

	slot := (right - left) / float64(len(s.Boxes))
	half := slot * 0.25
	for i, b := range s.Boxes {
		cx := left + slot*(float64(i)+0.5)
		fill := render.WithAlpha(boxColor(b.Label), 0.6)
		c.Line(render.Point{X: cx, Y: y(b.WhiskerLow)}, render.Point{X: cx, Y: y(b.Q1)}, render.Black, 1, nil)
		c.Line(render.Point{X: cx, Y: y(b.Q3)}, render.Point{X: cx, Y: y(b.WhiskerHigh)}, render.Black, 1, nil)
		for _, w := range []float64{b.WhiskerLow, b.WhiskerHigh} {
			c.Line(render.Point{X: cx - half/2, Y: y(w)}, render.Point{X: cx + half/2, Y: y(w)}, render.Black, 1, nil)
		}
		c.Rect(image.Rect(int(cx-half), int(y(b.Q3)), int(cx+half), int(y(b.Q1))), fill)
		c.Polyline([]render.Point{
			{X: cx - half, Y: y(b.Q1)}, {X: cx - half, Y: y(b.Q3)},
			{X: cx + half, Y: y(b.Q3)}, {X: cx + half, Y: y(b.Q1)},
			{X: cx - half, Y: y(b.Q1)},
		}, render.Black, 1)
		c.Line(render.Point{X: cx - half, Y: y(b.Median)}, render.Point{X: cx + half, Y: y(b.Median)}, render.Hex("#ff7f0e"), 2, nil)
		for _, o := range b.Outliers {
			c.Circle(render.Point{X: cx, Y: y(o)}, 3, render.Black, 1, nil)
		}
		c.Text(b.Label, cx, bottom+16, render.Black, render.AlignCenter)
	}
	return c.Image(), nil
}

// correlationPanel draws the correlation matrix as a heatmap on a blue-white-red
// scale from -1 to 1 with each coefficient printed in its cell.
func correlationPanel(s Summary) (image.Image, error) {
	if s.Correlation == nil {
		return nil, fmt.Errorf("%w: correlation needs 2 years with every level", ErrInsufficientData)
	}
	corr := s.Correlation
	n := len(corr.Labels)
	c, err := render.NewCanvas(panelWidth, panelHeight, render.White)
	if err != nil {
		return nil, err
	}
	c.Text("Tidal Components Correlation", panelWidth/2, 20, render.Black, render.AlignCenter)

	const left, top, barWidth = 70, 50, 20
	size := min(panelWidth-left-120, panelHeight-top-50)
	cell := size / n
	for i := range n {
		for j := range n {
			v := corr.Matrix[i][j]
			x0, y0 := left+j*cell, top+i*cell
			c.Rect(image.Rect(x0, y0, x0+cell, y0+cell), correlationColor(v))
			c.Text(fmt.Sprintf("%.2f", v), float64(x0+cell/2), float64(y0+cell/2), render.Black, render.AlignCenter)
		}
		c.Text(corr.Labels[i], left-6, float64(top+i*cell+cell/2), render.Black, render.AlignRight)
		c.Text(corr.Labels[i], float64(left+i*cell+cell/2), float64(top+n*cell+14), render.Black, render.AlignCenter)
	}

	// Colour bar.
	bx := left + n*cell + 30
	for py := range size {
		v := 1 - 2*float64(py)/float64(size-1)
		c.Rect(image.Rect(bx, top+py, bx+barWidth, top+py+1), correlationColor(v))
	}
	for _, v := range []float64{1, 0.5, 0, -0.5, -1} {
		py := float64(top) + (1-v)/2*float64(size-1)
		c.Text(fmt.Sprintf("%.1f", v), float64(bx+barWidth+6), py, render.Black, render.AlignLeft)
	}
	c.Text("Correlation Coefficient", float64(bx+barWidth/2), float64(top+size+14), render.Black, render.AlignCenter)
	return c.Image(), nil
}

// correlationColor maps -1 to blue and 1 to red.
func correlationColor(v float64) color.RGBA {
	return render.RdBu.At(1 - (v+1)/2)
}

func boxColor(label string) color.RGBA {
	for i, l := range ComponentLabels {
		if l == label {
			return componentStyle[i].color
		}
	}
	return render.Gray
}

func lineSeries(name string, series []YearValue, col color.RGBA, width, dots float64) chart.ContinuousSeries {
	xs, ys := split(series)
	st := chart.Style{StrokeColor: chartColor(col), StrokeWidth: width}
	if dots > 0 {
		st.DotColor = chartColor(col)
		st.DotWidth = dots
	}
	return chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st}
}

func trendSeries(name string, t Trend) chart.ContinuousSeries {
	first, last := float64(t.FirstYear), float64(t.LastYear)
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{first, last},
		YValues: []float64{t.At(first), t.At(last)},
		Style: chart.Style{
			StrokeColor:     chartColor(render.Red).WithAlpha(204),
			StrokeWidth:     2,
			StrokeDashArray: []float64{6, 4},
		},
	}
}

func yearAxis() chart.XAxis {
	return chart.XAxis{Name: "Year", ValueFormatter: formatter("%.0f")}
}

func valueAxis(name, format string) chart.YAxis {
	return chart.YAxis{Name: name, ValueFormatter: formatter(format)}
}

func formatter(format string) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf(format, f)
		}
		return ""
	}
}

func chartColor(c color.RGBA) drawing.Color {
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// renderChart rasterises ch at panel size, optionally with a legend.
func renderChart(ch chart.Chart, legend bool) (image.Image, error) {
	ch.Width = panelWidth
	ch.Height = panelHeight
	ch.Background = chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
	if legend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", ch.Title, err)
	}
	return render.DecodePNG(buf.Bytes())
}
