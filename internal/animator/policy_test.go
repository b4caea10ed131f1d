package animator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/sealevel/internal/sealevel"
)

func dataset(t *testing.T, levels map[int]float64) sealevel.Dataset {
	t.Helper()
	records := make([]sealevel.Record, 0, len(levels))
	for year, level := range levels {
		records = append(records, sealevel.Record{Year: year, MeanSeaLevel: sealevel.Level(level)})
	}
	ds, err := sealevel.NewDataset("test", records)
	require.NoError(t, err)
	return ds
}

func TestAngleRepeatsEveryDecade(t *testing.T) {
	for year := 1950; year < 2030; year++ {
		assert.InDelta(t, Angle(year), Angle(year+10), 1e-12, "year %d", year)
	}
	assert.InDelta(t, 0, Angle(2020), 1e-12)
	assert.InDelta(t, math.Pi, Angle(2025), 1e-12)
	assert.InDelta(t, 2*math.Pi*0.9, Angle(1959), 1e-12)
}

func TestDecadeOffsetRadius(t *testing.T) {
	p := DecadeOffset{LastYear: 2024}

	assert.InDelta(t, 1.0, p.Radius(1954, 1.35), 1e-12)
	assert.InDelta(t, 2.0, p.Radius(1964, 1.35), 1e-12)

	for _, year := range []int{1954, 1987, 2024} {
		assert.Greater(t, p.Radius(year, 1.40), p.Radius(year, 1.30), "radius grows with level in %d", year)
		assert.InDelta(t, p.Radius(year, 1.33)+1, p.Radius(year+10, 1.33), 1e-12, "one ring per decade from %d", year)
	}
	assert.InDelta(t, 1+5*(1.41-1.35)+7, p.Radius(2024, 1.41), 1e-12)
}

func TestDecadeOffsetAxis(t *testing.T) {
	p := DecadeOffset{LastYear: 2024}
	assert.InDelta(t, 10, p.Limit(), 1e-12)
	assert.InDelta(t, 1, p.ColorValue(2024), 1e-12)
	assert.InDelta(t, 0, p.ColorValue(1954), 1e-12)

	rings := p.Rings()
	require.Len(t, rings, 8)
	assert.Equal(t, "1950s", rings[0].Label)
	assert.Equal(t, "2020s", rings[7].Label)
	assert.True(t, rings[0].Dashed)

	short := DecadeOffset{LastYear: 1966}
	assert.InDelta(t, 4, short.Limit(), 1e-12)
	assert.Len(t, short.Rings(), 4)
	assert.False(t, short.ShowRadius())
}

func TestMinMaxRadius(t *testing.T) {
	p := MinMaxNormalized{Min: 1.28, Max: 1.51, FirstYear: 1954, LastYear: 2024}

	assert.InDelta(t, 1, p.Radius(1990, 1.28), 1e-12)
	assert.InDelta(t, 5, p.Radius(1990, 1.51), 1e-12)
	for level := 1.28; level <= 1.51; level += 0.01 {
		r := p.Radius(2000, level)
		assert.GreaterOrEqual(t, r, 1.0-1e-9)
		assert.LessOrEqual(t, r, 5.0+1e-9)
	}
	assert.InDelta(t, 1.395, p.LevelAt(3), 1e-12)
	assert.InDelta(t, 0, p.ColorValue(1954), 1e-12)
	assert.InDelta(t, 1, p.ColorValue(2024), 1e-12)

	rings := p.Rings()
	require.Len(t, rings, 5)
	assert.Equal(t, "1.28m", rings[0].Label)
	assert.Equal(t, "1.51m", rings[4].Label)
	assert.InDelta(t, 6, p.Limit(), 1e-12)
	assert.True(t, p.ShowRadius())
}

func TestMinMaxDegenerate(t *testing.T) {
	p := MinMaxNormalized{Min: 1.4, Max: 1.4, FirstYear: 2000, LastYear: 2000}
	assert.InDelta(t, 1, p.Radius(2000, 1.4), 1e-12)
	assert.InDelta(t, 0, p.ColorValue(2000), 1e-12)
}

func TestParsePolicy(t *testing.T) {
	for _, name := range []string{NameDecadeOffset, NameMinMax} {
		got, err := ParsePolicy(name)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
	_, err := ParsePolicy("spiral")
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestNewPolicy(t *testing.T) {
	ds := dataset(t, map[int]float64{2024: 1.41, 1954: 1.30, 1990: 1.28})

	p, err := NewPolicy(NameMinMax, ds)
	require.NoError(t, err)
	mm, ok := p.(MinMaxNormalized)
	require.True(t, ok)
	assert.InDelta(t, 1.28, mm.Min, 1e-12)
	assert.InDelta(t, 1.41, mm.Max, 1e-12)
	assert.Equal(t, 1954, mm.FirstYear)
	assert.Equal(t, 2024, mm.LastYear)

	p, err = NewPolicy(NameDecadeOffset, ds)
	require.NoError(t, err)
	assert.Equal(t, DecadeOffset{LastYear: 2024}, p)

	_, err = NewPolicy("spiral", ds)
	require.ErrorIs(t, err, ErrUnknownPolicy)

	empty, err := sealevel.NewDataset("x", []sealevel.Record{{Year: 2000}})
	require.NoError(t, err)
	_, err = NewPolicy(NameMinMax, empty)
	require.ErrorIs(t, err, sealevel.ErrEmptyDataset)
}

func TestComputePoints(t *testing.T) {
	records := []sealevel.Record{
		{Year: 2001, MeanSeaLevel: sealevel.Level(1.40)},
		{Year: 2000, MeanSeaLevel: sealevel.Level(1.30)},
		{Year: 2002},
	}
	ds, err := sealevel.NewDataset("x", records)
	require.NoError(t, err)
	p, err := NewPolicy(NameMinMax, ds)
	require.NoError(t, err)

	points := ComputePoints(ds, p)
	require.Len(t, points, 2)
	assert.Equal(t, 2000, points[0].Year)
	assert.InDelta(t, 1, points[0].Radius, 1e-12)
	assert.InDelta(t, 5, points[1].Radius, 1e-12)
	assert.InDelta(t, Angle(2001), points[1].Angle, 1e-12)
	assert.InDelta(t, 1, points[1].Color, 1e-12)
}
