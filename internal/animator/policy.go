package animator

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/JakeFAU/sealevel/internal/render"
	"github.com/JakeFAU/sealevel/internal/sealevel"
)

// Policy names accepted by ParsePolicy.
const (
	NameDecadeOffset = "decade-offset"
	NameMinMax       = "min-max"
)

// ErrUnknownPolicy is returned for a policy name other than decade-offset or min-max.
var ErrUnknownPolicy = errors.New("unknown radius policy")

// Ring is one radial grid circle.
type Ring struct {
	Radius float64
	Label  string
	Color  color.RGBA
	Dashed bool
}

// RadiusPolicy decides where on the radial axis a year's mean sea level lands
// and how the radial axis is decorated.
type RadiusPolicy interface {
	// Name is the configuration name of the policy.
	Name() string
	// Radius maps a year's level to a radial distance.
	Radius(year int, level float64) float64
	// ColorValue maps a year to [0, 1] for the point colour map.
	ColorValue(year int) float64
	// Limit is the outer edge of the radial axis.
	Limit() float64
	// Rings lists the radial grid.
	Rings() []Ring
	// Subtitle describes the encoding in the chart title.
	Subtitle() string
	// ShowRadius reports whether the info panel lists the radius.
	ShowRadius() bool
}

// ParsePolicy validates a policy name.
func ParsePolicy(name string) (string, error) {
	switch name {
	case NameDecadeOffset, NameMinMax:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownPolicy, name, NameDecadeOffset, NameMinMax)
	}
}

// NewPolicy builds the named policy for ds. ds must contain at least one year
// with a mean sea level.
func NewPolicy(name string, ds sealevel.Dataset) (RadiusPolicy, error) {
	if _, err := ParsePolicy(name); err != nil {
		return nil, err
	}
	usable := ds.WithSeaLevel().Sorted()
	if usable.Len() == 0 {
		return nil, sealevel.ErrEmptyDataset
	}
	first := usable.Records[0]
	last := usable.Records[usable.Len()-1]

	if name == NameDecadeOffset {
		return DecadeOffset{LastYear: last.Year}, nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, rec := range usable.Records {
		lo = math.Min(lo, *rec.MeanSeaLevel)
		hi = math.Max(hi, *rec.MeanSeaLevel)
	}
	return MinMaxNormalized{Min: lo, Max: hi, FirstYear: first.Year, LastYear: last.Year}, nil
}

// Angle places a year on the circle by its position in its decade; year and
// year+10 share an angle.
func Angle(year int) float64 {
	return 2 * math.Pi * float64(floorMod(year, 10)) / 10
}

// decadeIndex counts decades from the 1950s (1950s = 0).
func decadeIndex(year int) int {
	return floorDiv(year, 10) - 195
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

// DecadeOffset puts each decade on its own ring and nudges the point outwards
// by five radial units per meter above 1.35 m.
type DecadeOffset struct {
	LastYear int
}

const (
	decadeReferenceLevel = 1.35
	decadeLevelScale     = 5.0
	decadeRings          = 8
	decadeColorSpan      = 7.0
)

// Name implements RadiusPolicy.
func (DecadeOffset) Name() string { return NameDecadeOffset }

// Radius implements RadiusPolicy.
func (DecadeOffset) Radius(year int, level float64) float64 {
	return float64(decadeIndex(year)) + 1 + decadeLevelScale*(level-decadeReferenceLevel)
}

// ColorValue implements RadiusPolicy. The 2020s map to 1.
func (DecadeOffset) ColorValue(year int) float64 {
	return float64(decadeIndex(year)) / decadeColorSpan
}

// Limit implements RadiusPolicy.
func (p DecadeOffset) Limit() float64 {
	return float64(decadeIndex(p.LastYear) + 3)
}

// Rings implements RadiusPolicy: dashed circles at r = 1..8 for the 1950s to
// the 2020s, clipped to the limit.
func (p DecadeOffset) Rings() []Ring {
	limit := p.Limit()
	rings := make([]Ring, 0, decadeRings)
	for i := 0; i < decadeRings; i++ {
		r := float64(i + 1)
		if r > limit {
			break
		}
		rings = append(rings, Ring{
			Radius: r,
			Label:  fmt.Sprintf("%ds", 1950+10*i),
			Color:  render.Set3(float64(i) / float64(decadeRings-1)),
			Dashed: true,
		})
	}
	return rings
}

// Subtitle implements RadiusPolicy.
func (DecadeOffset) Subtitle() string { return "Angle=Year in Decade, Radius=Decade+Sea Level" }

// ShowRadius implements RadiusPolicy.
func (DecadeOffset) ShowRadius() bool { return false }

// MinMaxNormalized spreads the observed level range linearly over radius 1 to 5.
type MinMaxNormalized struct {
	Min, Max            float64
	FirstYear, LastYear int
}

const (
	minMaxInner = 1.0
	minMaxSpan  = 4.0
	minMaxLimit = 6.0
)

// Name implements RadiusPolicy.
func (MinMaxNormalized) Name() string { return NameMinMax }

// Radius implements RadiusPolicy. A flat series maps every year to the inner ring.
func (p MinMaxNormalized) Radius(_ int, level float64) float64 {
	if p.Max == p.Min {
		return minMaxInner
	}
	return minMaxInner + minMaxSpan*(level-p.Min)/(p.Max-p.Min)
}

// ColorValue implements RadiusPolicy.
func (p MinMaxNormalized) ColorValue(year int) float64 {
	if p.LastYear == p.FirstYear {
		return 0
	}
	return float64(year-p.FirstYear) / float64(p.LastYear-p.FirstYear)
}

// Limit implements RadiusPolicy.
func (MinMaxNormalized) Limit() float64 { return minMaxLimit }

// Rings implements RadiusPolicy: r = 1..5 labelled with the level they stand for.
func (p MinMaxNormalized) Rings() []Ring {
	rings := make([]Ring, 0, 5)
	for r := 1; r <= 5; r++ {
		rings = append(rings, Ring{
			Radius: float64(r),
			Label:  fmt.Sprintf("%.2fm", p.LevelAt(float64(r))),
			Color:  render.LightGray,
		})
	}
	return rings
}

// LevelAt converts a radius back to the level it represents.
func (p MinMaxNormalized) LevelAt(radius float64) float64 {
	return p.Min + (radius-minMaxInner)/minMaxSpan*(p.Max-p.Min)
}

// Subtitle implements RadiusPolicy.
func (MinMaxNormalized) Subtitle() string { return "Angle=Year in Decade, Radius=Sea Level Height" }

// ShowRadius implements RadiusPolicy.
func (MinMaxNormalized) ShowRadius() bool { return true }

// Point is one plotted year.
type Point struct {
	Year   int     `json:"year"`
	Level  float64 `json:"level"`
	Angle  float64 `json:"angle"`
	Radius float64 `json:"radius"`
	Color  float64 `json:"color"`
}

// ComputePoints drops years without a mean sea level, sorts by year and places
// every remaining year with policy.
func ComputePoints(ds sealevel.Dataset, policy RadiusPolicy) []Point {
	usable := ds.WithSeaLevel().Sorted()
	points := make([]Point, 0, usable.Len())
	for _, rec := range usable.Records {
		level := *rec.MeanSeaLevel
		points = append(points, Point{
			Year:   rec.Year,
			Level:  level,
			Angle:  Angle(rec.Year),
			Radius: policy.Radius(rec.Year, level),
			Color:  policy.ColorValue(rec.Year),
		})
	}
	return points
}
