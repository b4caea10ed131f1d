package animator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// thirteenYears covers 1954..1966.
func thirteenYears(t *testing.T, policyName string) ([]Point, RadiusPolicy) {
	t.Helper()
	levels := map[int]float64{}
	for i := 0; i < 13; i++ {
		levels[1954+i] = 1.28 + 0.01*float64(i)
	}
	ds := dataset(t, levels)
	p, err := NewPolicy(policyName, ds)
	require.NoError(t, err)
	return ComputePoints(ds, p), p
}

func TestFrameCount(t *testing.T) {
	assert.Equal(t, 131, FrameCount(71, DefaultHoldFrames))
	assert.Equal(t, 3, FrameCount(3, 0))
	assert.Equal(t, 0, FrameCount(0, 60))
}

func TestFrameAtInitial(t *testing.T) {
	points, p := thirteenYears(t, NameDecadeOffset)

	f := FrameAt(points, p, 0)
	assert.Equal(t, PhaseInitial, f.Phase)
	assert.Equal(t, 0, f.Visible)
	assert.Equal(t, -1, f.Current)
	assert.Equal(t, 0, f.Start)
	assert.Empty(t, f.Labels)
	assert.Equal(t, []string{
		"Start Year: 1954",
		"Sea Level: 1.280m",
		"Decade: 1950s",
		"Data Points: 1/13",
	}, f.Info)
}

func TestFrameAtRevealing(t *testing.T) {
	points, p := thirteenYears(t, NameDecadeOffset)

	f := FrameAt(points, p, 3)
	assert.Equal(t, PhaseRevealing, f.Phase)
	assert.Equal(t, 4, f.Visible)
	assert.Equal(t, 3, f.Current)
	assert.Equal(t, []int{0, 1, 3}, f.Labels, "first point, 1955 and the current point")
	assert.Equal(t, []string{
		"Current Year: 1957",
		"Decade: 1950s (Year 7)",
		"Sea Level: 1.310m",
		"Data Points: 4/13",
		"Progress: 30.8%",
	}, f.Info)

	last := FrameAt(points, p, 12)
	assert.Equal(t, PhaseRevealing, last.Phase)
	assert.Equal(t, []int{0, 1, 6, 11, 12}, last.Labels)
	assert.Equal(t, "Progress: 100.0%", last.Info[len(last.Info)-1])
}

func TestFrameAtHold(t *testing.T) {
	points, p := thirteenYears(t, NameDecadeOffset)

	final := FrameAt(points, p, 12)
	for _, i := range []int{13, 40, 72} {
		f := FrameAt(points, p, i)
		assert.Equal(t, PhaseHold, f.Phase)
		assert.Equal(t, i, f.Index)
		assert.Equal(t, final.Visible, f.Visible)
		assert.Equal(t, final.Labels, f.Labels)
		assert.Equal(t, final.Info, f.Info)
	}
}

func TestFrameAtShowsRadiusForMinMax(t *testing.T) {
	points, p := thirteenYears(t, NameMinMax)

	f := FrameAt(points, p, 6)
	require.Len(t, f.Info, 6)
	assert.Equal(t, "Decade: 1960s (Year 0)", f.Info[1])
	assert.Equal(t, "Radius: 3.00", f.Info[3])
}

func TestFrameAtSinglePoint(t *testing.T) {
	ds := dataset(t, map[int]float64{2020: 1.4})
	p, err := NewPolicy(NameMinMax, ds)
	require.NoError(t, err)
	points := ComputePoints(ds, p)

	frames := Frames(points, p, 2)
	require.Len(t, frames, 3)
	assert.Equal(t, PhaseInitial, frames[0].Phase)
	assert.Equal(t, PhaseHold, frames[1].Phase)
	assert.Equal(t, []int{0}, frames[1].Labels)
	assert.Equal(t, "Radius: 1.00", frames[2].Info[3])
}

func TestPhaseText(t *testing.T) {
	b, err := PhaseHold.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "hold", string(b))
	assert.Equal(t, "phase(9)", Phase(9).String())
}
