package sealevel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
)

// ReadCSV parses a dataset file. Year and Mean_Sea_Level_m are required; the
// four tidal extreme columns are optional. Empty cells and NaN are missing values.
func ReadCSV(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w", ErrEmptyDataset)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{ColumnYear, ColumnMeanSeaLevel} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		rec, err := decodeRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(row []string, index map[string]int) (Record, error) {
	cell := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	yearText := cell(ColumnYear)
	year, err := strconv.Atoi(yearText)
	if err != nil {
		// Older exports write the year as a float, e.g. "2024.0".
		f, ferr := strconv.ParseFloat(yearText, 64)
		if ferr != nil {
			return Record{}, fmt.Errorf("parse year %q: %w", yearText, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return Record{}, fmt.Errorf("parse year %q: not an integer", yearText)
		}
		year = int(f)
	}

	rec := Record{Year: year}
	targets := []struct {
		column string
		dst    **float64
	}{
		{ColumnMeanSeaLevel, &rec.MeanSeaLevel},
		{ColumnMeanHigherHighWater, &rec.MeanHigherHighWater},
		{ColumnMeanLowerHighWater, &rec.MeanLowerHighWater},
		{ColumnMeanHigherLowWater, &rec.MeanHigherLowWater},
		{ColumnMeanLowerLowWater, &rec.MeanLowerLowWater},
	}
	for _, t := range targets {
		v, err := parseLevel(cell(t.column))
		if err != nil {
			return Record{}, fmt.Errorf("parse %s: %w", t.column, err)
		}
		*t.dst = v
	}
	return rec, nil
}

func parseLevel(text string) (*float64, error) {
	if text == "" || strings.EqualFold(text, "nan") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid level %q: %w", text, err)
	}
	return &v, nil
}

// WriteCSV writes the detailed six-column form.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{strconv.Itoa(rec.Year)}
		for _, level := range rec.Levels() {
			row = append(row, formatLevel(level))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write year %d: %w", rec.Year, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteSimpleCSV writes Year and Mean_Sea_Level_m only, skipping years without a mean sea level.
func WriteSimpleCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{ColumnYear, ColumnMeanSeaLevel}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if !rec.HasSeaLevel() {
			continue
		}
		if err := writer.Write([]string{strconv.Itoa(rec.Year), formatLevel(rec.MeanSeaLevel)}); err != nil {
			return fmt.Errorf("write year %d: %w", rec.Year, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatLevel(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// LoadCSV reads the dataset at path. A missing file yields an error matching
// both ErrDatasetNotFound and fs.ErrNotExist.
func LoadCSV(path string) (Dataset, error) {
	// #nosec G304 -- dataset paths come from operator configuration.
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Dataset{}, fmt.Errorf("%w: %s: %w", ErrDatasetNotFound, path, err)
		}
		return Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	records, err := ReadCSV(f)
	if err != nil {
		return Dataset{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return NewDataset(path, records)
}
