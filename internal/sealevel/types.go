package sealevel

import (
	"errors"
	"fmt"
	"sort"
)

// CSV column names, in file order.
const (
	ColumnYear                = "Year"
	ColumnMeanSeaLevel        = "Mean_Sea_Level_m"
	ColumnMeanHigherHighWater = "Mean_Higher_High_Water_m"
	ColumnMeanLowerHighWater  = "Mean_Lower_High_Water_m"
	ColumnMeanHigherLowWater  = "Mean_Higher_Low_Water_m"
	ColumnMeanLowerLowWater   = "Mean_Lower_Low_Water_m"
)

// Columns lists the full header of a detailed dataset file.
var Columns = []string{
	ColumnYear,
	ColumnMeanSeaLevel,
	ColumnMeanHigherHighWater,
	ColumnMeanLowerHighWater,
	ColumnMeanHigherLowWater,
	ColumnMeanLowerLowWater,
}

var (
	// ErrDatasetNotFound is returned when no dataset file exists at the requested location.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrEmptyDataset is returned when a dataset has no usable rows.
	ErrEmptyDataset = errors.New("dataset has no usable rows")
	// ErrDuplicateYear is returned when a year appears twice in one dataset.
	ErrDuplicateYear = errors.New("duplicate year")
)

// Record is one calendar year of station measurements in meters above Chart Datum.
// A nil level means the station published no value for that year.
type Record struct {
	Year                int      `json:"year"`
	MeanSeaLevel        *float64 `json:"mean_sea_level_m"`
	MeanHigherHighWater *float64 `json:"mean_higher_high_water_m"`
	MeanLowerHighWater  *float64 `json:"mean_lower_high_water_m"`
	MeanHigherLowWater  *float64 `json:"mean_higher_low_water_m"`
	MeanLowerLowWater   *float64 `json:"mean_lower_low_water_m"`
}

// HasSeaLevel reports whether the mean sea level is present.
func (r Record) HasSeaLevel() bool {
	return r.MeanSeaLevel != nil
}

// HasTidalRange reports whether both tidal extremes needed for the range are present.
func (r Record) HasTidalRange() bool {
	return r.MeanHigherHighWater != nil && r.MeanLowerLowWater != nil
}

// Complete reports whether all five water levels are present.
func (r Record) Complete() bool {
	return r.MeanSeaLevel != nil &&
		r.MeanHigherHighWater != nil &&
		r.MeanLowerHighWater != nil &&
		r.MeanHigherLowWater != nil &&
		r.MeanLowerLowWater != nil
}

// TidalRange returns MHHW minus MLLW. The second value is false when either is missing.
func (r Record) TidalRange() (float64, bool) {
	if !r.HasTidalRange() {
		return 0, false
	}
	return *r.MeanHigherHighWater - *r.MeanLowerLowWater, true
}

// Levels returns the five water levels in the order MSL, MHHW, MLHW, MHLW, MLLW.
func (r Record) Levels() [5]*float64 {
	return [5]*float64{
		r.MeanSeaLevel,
		r.MeanHigherHighWater,
		r.MeanLowerHighWater,
		r.MeanHigherLowWater,
		r.MeanLowerLowWater,
	}
}

// Level returns a pointer to v, for building records in code.
func Level(v float64) *float64 {
	return &v
}

// Dataset is an immutable set of yearly records loaded from one source.
type Dataset struct {
	Source  string
	Records []Record
}

// NewDataset builds a Dataset, rejecting duplicate years.
func NewDataset(source string, records []Record) (Dataset, error) {
	seen := make(map[int]struct{}, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.Year]; ok {
			return Dataset{}, fmt.Errorf("%w: %d", ErrDuplicateYear, rec.Year)
		}
		seen[rec.Year] = struct{}{}
	}
	out := make([]Record, len(records))
	copy(out, records)
	return Dataset{Source: source, Records: out}, nil
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// Sorted returns a copy ordered by ascending year.
func (d Dataset) Sorted() Dataset {
	out := make([]Record, len(d.Records))
	copy(out, d.Records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return Dataset{Source: d.Source, Records: out}
}

// Filter returns a copy holding only the records keep accepts.
func (d Dataset) Filter(keep func(Record) bool) Dataset {
	out := make([]Record, 0, len(d.Records))
	for _, rec := range d.Records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return Dataset{Source: d.Source, Records: out}
}

// WithSeaLevel drops records whose mean sea level is missing.
func (d Dataset) WithSeaLevel() Dataset {
	return d.Filter(Record.HasSeaLevel)
}

// YearRange returns the smallest and largest year. ok is false for an empty dataset.
func (d Dataset) YearRange() (first, last int, ok bool) {
	if len(d.Records) == 0 {
		return 0, 0, false
	}
	first, last = d.Records[0].Year, d.Records[0].Year
	for _, rec := range d.Records[1:] {
		if rec.Year < first {
			first = rec.Year
		}
		if rec.Year > last {
			last = rec.Year
		}
	}
	return first, last, true
}

// YearRangeLabel formats the year range as "first-last".
func (d Dataset) YearRangeLabel() string {
	first, last, ok := d.YearRange()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d-%d", first, last)
}
