package sealevel

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVFullHeader(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Year,Mean_Sea_Level_m,Mean_Higher_High_Water_m,Mean_Lower_High_Water_m,Mean_Higher_Low_Water_m,Mean_Lower_Low_Water_m",
		"2024,1.41,1.75,1.52,0.88,0.65",
		"1954,,1.6,,0.9,",
	}, "\n")

	records, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 2024, records[0].Year)
	require.NotNil(t, records[0].MeanSeaLevel)
	assert.InDelta(t, 1.41, *records[0].MeanSeaLevel, 1e-9)
	assert.True(t, records[0].Complete())

	assert.Equal(t, 1954, records[1].Year)
	assert.Nil(t, records[1].MeanSeaLevel)
	assert.Nil(t, records[1].MeanLowerLowWater)
	require.NotNil(t, records[1].MeanHigherHighWater)
	assert.False(t, records[1].HasTidalRange())
}

func TestReadCSVSimpleHeader(t *testing.T) {
	t.Parallel()

	records, err := ReadCSV(strings.NewReader("Year,Mean_Sea_Level_m\n2020,1.3\n2021,NaN\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[1].MeanSeaLevel)
	assert.Nil(t, records[0].MeanHigherHighWater)
}

func TestReadCSVFloatYear(t *testing.T) {
	t.Parallel()

	records, err := ReadCSV(strings.NewReader("Year,Mean_Sea_Level_m\n2024.0,1.3\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 2024, records[0].Year)
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "missing sea level column", input: "Year\n2020\n", want: "Mean_Sea_Level_m"},
		{name: "bad year", input: "Year,Mean_Sea_Level_m\nabc,1.3\n", want: "parse year"},
		{name: "fractional year", input: "Year,Mean_Sea_Level_m\n2024.5,1.3\n", want: "parse year"},
		{name: "nan year", input: "Year,Mean_Sea_Level_m\nNaN,1.3\n", want: "parse year"},
		{name: "infinite year", input: "Year,Mean_Sea_Level_m\n+Inf,1.3\n", want: "parse year"},
		{name: "bad level", input: "Year,Mean_Sea_Level_m\n2020,high\n", want: "invalid level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Year: 1954, MeanHigherHighWater: Level(1.6)},
		{
			Year:                2024,
			MeanSeaLevel:        Level(1.41),
			MeanHigherHighWater: Level(1.75),
			MeanLowerHighWater:  Level(1.52),
			MeanHigherLowWater:  Level(0.88),
			MeanLowerLowWater:   Level(0.65),
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	want := "Year,Mean_Sea_Level_m,Mean_Higher_High_Water_m,Mean_Lower_High_Water_m,Mean_Higher_Low_Water_m,Mean_Lower_Low_Water_m\n" +
		"1954,,1.6,,,\n" +
		"2024,1.41,1.75,1.52,0.88,0.65\n"
	assert.Equal(t, want, buf.String())

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, parsed)
}

func TestWriteSimpleCSVDropsMissingSeaLevel(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Year: 1954},
		{Year: 1955, MeanSeaLevel: Level(1.28)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSimpleCSV(&buf, records))
	assert.Equal(t, "Year,Mean_Sea_Level_m\n1955,1.28\n", buf.String())
}

func TestLoadCSVMissingFile(t *testing.T) {
	t.Parallel()

	ds, err := LoadCSV(filepath.Join(t.TempDir(), "HKO_QUB_SeaLevel_Data_20250918_163225.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Zero(t, ds.Len())
}

func TestLoadCSVRejectsDuplicateYears(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dup.csv")
	require.NoError(t, os.WriteFile(path, []byte("Year,Mean_Sea_Level_m\n2020,1.3\n2020,1.4\n"), 0o600))

	_, err := LoadCSV(path)
	assert.ErrorIs(t, err, ErrDuplicateYear)
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Year,Mean_Sea_Level_m\n2021,1.32\n2020,1.30\n"), 0o600))

	ds, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, path, ds.Source)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, 2020, ds.Sorted().Records[0].Year)
}
