package analysis

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/JakeFAU/sealevel/internal/sealevel"
)

// ErrInsufficientData is returned when a statistic needs more points than the dataset has.
var ErrInsufficientData = errors.New("insufficient data")

// Component labels in dataset column order.
var ComponentLabels = []string{"MSL", "MHHW", "MLHW", "MHLW", "MLLW"}

// boxOrder lists component indexes from the highest water level to the lowest.
var boxOrder = []int{1, 2, 0, 3, 4}

// Options tunes the analysis windows.
type Options struct {
	// RecentFrom is the first year of the recent trend window.
	RecentFrom int
	// ReportFrom is the first year listed under recent changes.
	ReportFrom int
	// MinDecadeYears is the number of observed years a decade needs to be reported.
	MinDecadeYears int
}

// DefaultOptions returns the windows used by the observatory report.
func DefaultOptions() Options {
	return Options{RecentFrom: 1995, ReportFrom: 2020, MinDecadeYears: 5}
}

// YearValue is one value of a yearly series.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Trend is a first-degree least-squares fit of value against year.
type Trend struct {
	Slope     float64 `json:"slope_m_per_year"`
	Intercept float64 `json:"intercept_m"`
	FirstYear int     `json:"first_year"`
	LastYear  int     `json:"last_year"`
	Points    int     `json:"points"`
}

// PerDecade returns the slope scaled to ten years.
func (t Trend) PerDecade() float64 {
	return t.Slope * 10
}

// At evaluates the fitted line.
func (t Trend) At(year float64) float64 {
	return t.Intercept + t.Slope*year
}

// Fit regresses the series values on their years.
func Fit(series []YearValue) (Trend, error) {
	if len(series) < 2 {
		return Trend{}, fmt.Errorf("%w: trend needs 2 points, have %d", ErrInsufficientData, len(series))
	}
	xs, ys := split(series)
	if slices.Min(xs) == slices.Max(xs) {
		return Trend{}, fmt.Errorf("%w: trend needs distinct years", ErrInsufficientData)
	}
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return Trend{
		Slope:     slope,
		Intercept: intercept,
		FirstYear: series[0].Year,
		LastYear:  series[len(series)-1].Year,
		Points:    len(series),
	}, nil
}

// Basic holds summary statistics of mean sea level.
type Basic struct {
	Mean    float64 `json:"mean_m"`
	StdDev  float64 `json:"std_dev_m"`
	Max     float64 `json:"max_m"`
	MaxYear int     `json:"max_year"`
	Min     float64 `json:"min_m"`
	MinYear int     `json:"min_year"`
	Range   float64 `json:"range_m"`
}

// Describe computes Basic over a non-empty series. The first occurrence wins ties.
func Describe(series []YearValue) Basic {
	_, ys := split(series)
	b := Basic{
		Mean:    stat.Mean(ys, nil),
		StdDev:  sampleStdDev(ys),
		Max:     series[0].Value,
		MaxYear: series[0].Year,
		Min:     series[0].Value,
		MinYear: series[0].Year,
	}
	for _, p := range series[1:] {
		if p.Value > b.Max {
			b.Max, b.MaxYear = p.Value, p.Year
		}
		if p.Value < b.Min {
			b.Min, b.MinYear = p.Value, p.Year
		}
	}
	b.Range = b.Max - b.Min
	return b
}

// YearOverYear returns the difference between each row and the row before it,
// keyed by the later year.
func YearOverYear(series []YearValue) []YearValue {
	if len(series) < 2 {
		return nil
	}
	out := make([]YearValue, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		out = append(out, YearValue{Year: series[i].Year, Value: series[i].Value - series[i-1].Value})
	}
	return out
}

// Decade aggregates mean sea level over one calendar decade.
type Decade struct {
	Decade int     `json:"decade"`
	Mean   float64 `json:"mean_m"`
	StdDev float64 `json:"std_dev_m"`
	Count  int     `json:"count"`
}

// Label renders the decade as "1980s".
func (d Decade) Label() string {
	return fmt.Sprintf("%ds", d.Decade)
}

// Decades groups a year-sorted series by decade and keeps decades with at least minCount values.
func Decades(series []YearValue, minCount int) []Decade {
	var (
		out   []Decade
		group []float64
		cur   int
	)
	flush := func() {
		if len(group) >= minCount && len(group) > 0 {
			out = append(out, Decade{
				Decade: cur,
				Mean:   stat.Mean(group, nil),
				StdDev: sampleStdDev(group),
				Count:  len(group),
			})
		}
		group = group[:0]
	}
	for i, p := range series {
		d := decadeOf(p.Year)
		if i > 0 && d != cur {
			flush()
		}
		cur = d
		group = append(group, p.Value)
	}
	if len(series) > 0 {
		flush()
	}
	return out
}

// Box is a five-number summary with 1.5×IQR whiskers.
type Box struct {
	Label       string    `json:"label"`
	Count       int       `json:"count"`
	Min         float64   `json:"min_m"`
	Q1          float64   `json:"q1_m"`
	Median      float64   `json:"median_m"`
	Q3          float64   `json:"q3_m"`
	Max         float64   `json:"max_m"`
	WhiskerLow  float64   `json:"whisker_low_m"`
	WhiskerHigh float64   `json:"whisker_high_m"`
	Outliers    []float64 `json:"outliers_m,omitempty"`
}

// BoxSummary computes a Box over values. It returns false for an empty input.
func BoxSummary(label string, values []float64) (Box, bool) {
	if len(values) == 0 {
		return Box{}, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	b := Box{
		Label:  label,
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-1.5*iqr, b.Q3+1.5*iqr
	b.WhiskerLow, b.WhiskerHigh = b.Median, b.Median
	for _, v := range sorted {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.WhiskerLow = min(b.WhiskerLow, v)
		b.WhiskerHigh = max(b.WhiskerHigh, v)
	}
	return b, true
}

// Correlation is a Pearson correlation matrix over the five water levels.
type Correlation struct {
	Labels []string    `json:"labels"`
	Matrix [][]float64 `json:"matrix"`
	Rows   int         `json:"rows"`
}

// Correlate builds the correlation matrix over records with all five levels present.
func Correlate(records []sealevel.Record) (Correlation, error) {
	var rows []sealevel.Record
	for _, rec := range records {
		if rec.Complete() {
			rows = append(rows, rec)
		}
	}
	if len(rows) < 2 {
		return Correlation{}, fmt.Errorf("%w: correlation needs 2 complete rows, have %d", ErrInsufficientData, len(rows))
	}
	m := mat.NewDense(len(rows), len(ComponentLabels), nil)
	for i, rec := range rows {
		for j, v := range rec.Levels() {
			m.Set(i, j, *v)
		}
	}
	var sym mat.SymDense
	stat.CorrelationMatrix(&sym, m, nil)
	n := sym.SymmetricDim()
	out := Correlation{Labels: slices.Clone(ComponentLabels), Matrix: make([][]float64, n), Rows: len(rows)}
	for i := range n {
		out.Matrix[i] = make([]float64, n)
		for j := range n {
			// A constant column has no defined correlation.
			if v := sym.At(i, j); !math.IsNaN(v) {
				out.Matrix[i][j] = v
			}
		}
	}
	return out, nil
}

// Component is the series of one water level.
type Component struct {
	Label  string      `json:"label"`
	Values []YearValue `json:"values"`
}

// Period is the calendar coverage of a dataset.
type Period struct {
	FirstYear int `json:"first_year"`
	LastYear  int `json:"last_year"`
	Records   int `json:"records"`
}

// Span returns the number of calendar years from first to last inclusive.
func (p Period) Span() int {
	return p.LastYear - p.FirstYear + 1
}

// Label renders the period as "first-last".
func (p Period) Label() string {
	return fmt.Sprintf("%d-%d", p.FirstYear, p.LastYear)
}

// RecentLevels lists mean sea level from the report window onward.
type RecentLevels struct {
	Rows []YearValue `json:"rows"`
	// ChangeCm is the last minus the first level in centimetres, nil with fewer than two rows.
	ChangeCm *float64 `json:"change_cm,omitempty"`
}

// Quality describes how complete the dataset is.
type Quality struct {
	TotalRecords  int     `json:"total_records"`
	CompleteTidal int     `json:"complete_tidal"`
	Completeness  float64 `json:"completeness_pct"`
	MissingYears  int     `json:"missing_years"`
}

// Summary is everything the figures and the report are drawn from.
type Summary struct {
	Source         string       `json:"source"`
	Period         Period       `json:"period"`
	SeaLevel       []YearValue  `json:"sea_level"`
	Basic          Basic        `json:"basic"`
	LongTerm       Trend        `json:"long_term_trend"`
	Recent         *Trend       `json:"recent_trend,omitempty"`
	YearOverYear   []YearValue  `json:"year_over_year"`
	Components     []Component  `json:"components"`
	TidalRange     []YearValue  `json:"tidal_range"`
	TidalTrend     *Trend       `json:"tidal_range_trend,omitempty"`
	HighWaterRange []YearValue  `json:"high_water_range"`
	LowWaterRange  []YearValue  `json:"low_water_range"`
	Boxes          []Box        `json:"boxes"`
	Decades        []Decade     `json:"decades"`
	Correlation    *Correlation `json:"correlation,omitempty"`
	RecentLevels   RecentLevels `json:"recent_levels"`
	Quality        Quality      `json:"quality"`
	Options        Options      `json:"-"`
}

// HasTidalData reports whether any record carries both tidal extremes.
func (s Summary) HasTidalData() bool {
	return s.Quality.CompleteTidal > 0
}

// Summarize runs every statistic over ds. Records without mean sea level are
// counted in the period and quality figures but skipped by the sea-level
// statistics.
func Summarize(ds sealevel.Dataset, opts Options) (Summary, error) {
	if opts.MinDecadeYears <= 0 {
		opts.MinDecadeYears = DefaultOptions().MinDecadeYears
	}
	sorted := ds.Sorted()
	first, last, ok := sorted.YearRange()
	if !ok {
		return Summary{}, sealevel.ErrEmptyDataset
	}
	msl := levelSeries(sorted.Records, 0)
	if len(msl) == 0 {
		return Summary{}, sealevel.ErrEmptyDataset
	}
	longTerm, err := Fit(msl)
	if err != nil {
		return Summary{}, fmt.Errorf("long-term trend: %w", err)
	}

	s := Summary{
		Source:       ds.Source,
		Period:       Period{FirstYear: first, LastYear: last, Records: sorted.Len()},
		SeaLevel:     msl,
		Basic:        Describe(msl),
		LongTerm:     longTerm,
		YearOverYear: YearOverYear(msl),
		Decades:      Decades(msl, opts.MinDecadeYears),
		Options:      opts,
	}

	if recent, err := Fit(since(msl, opts.RecentFrom)); err == nil {
		s.Recent = &recent
	}

	tidal := sorted.Filter(sealevel.Record.HasTidalRange).Records
	for i, label := range ComponentLabels {
		s.Components = append(s.Components, Component{Label: label, Values: levelSeries(tidal, i)})
	}
	for _, rec := range tidal {
		r, _ := rec.TidalRange()
		s.TidalRange = append(s.TidalRange, YearValue{Year: rec.Year, Value: r})
		if rec.MeanLowerHighWater != nil {
			s.HighWaterRange = append(s.HighWaterRange, YearValue{Year: rec.Year, Value: *rec.MeanHigherHighWater - *rec.MeanLowerHighWater})
		}
		if rec.MeanHigherLowWater != nil {
			s.LowWaterRange = append(s.LowWaterRange, YearValue{Year: rec.Year, Value: *rec.MeanHigherLowWater - *rec.MeanLowerLowWater})
		}
	}
	if trend, err := Fit(s.TidalRange); err == nil {
		s.TidalTrend = &trend
	}
	for _, idx := range boxOrder {
		_, values := split(s.Components[idx].Values)
		if box, ok := BoxSummary(ComponentLabels[idx], values); ok {
			s.Boxes = append(s.Boxes, box)
		}
	}
	if corr, err := Correlate(tidal); err == nil {
		s.Correlation = &corr
	}

	s.RecentLevels.Rows = since(msl, opts.ReportFrom)
	if rows := s.RecentLevels.Rows; len(rows) >= 2 {
		change := (rows[len(rows)-1].Value - rows[0].Value) * 100
		s.RecentLevels.ChangeCm = &change
	}

	span := s.Period.Span()
	s.Quality = Quality{
		TotalRecords:  sorted.Len(),
		CompleteTidal: len(tidal),
		Completeness:  float64(sorted.Len()) / float64(span) * 100,
		MissingYears:  span - sorted.Len(),
	}
	return s, nil
}

// levelSeries extracts component idx from records, skipping missing values.
func levelSeries(records []sealevel.Record, idx int) []YearValue {
	out := make([]YearValue, 0, len(records))
	for _, rec := range records {
		if v := rec.Levels()[idx]; v != nil {
			out = append(out, YearValue{Year: rec.Year, Value: *v})
		}
	}
	return out
}

func since(series []YearValue, year int) []YearValue {
	for i, p := range series {
		if p.Year >= year {
			return series[i:]
		}
	}
	return nil
}

func split(series []YearValue) (xs, ys []float64) {
	xs = make([]float64, len(series))
	ys = make([]float64, len(series))
	for i, p := range series {
		xs[i] = float64(p.Year)
		ys[i] = p.Value
	}
	return xs, ys
}

// sampleStdDev is the n-1 standard deviation, zero for fewer than two values.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sd := stat.StdDev(values, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

func decadeOf(year int) int {
	d := year / 10 * 10
	if year < 0 && year%10 != 0 {
		d -= 10
	}
	return d
}
