package animator

import "fmt"

// DefaultHoldFrames is how long the finished chart stays on screen.
const DefaultHoldFrames = 60

// labelEvery shows a year label on every fifth year.
const labelEvery = 5

// LabelOffset pushes year labels this far outside their point, in radial units.
const LabelOffset = 0.15

// Phase is the state of the animation at a given frame.
type Phase int

// Animation phases.
const (
	// PhaseInitial shows only the start marker.
	PhaseInitial Phase = iota
	// PhaseRevealing adds one year per frame.
	PhaseRevealing
	// PhaseHold repeats the finished chart.
	PhaseHold
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseRevealing:
		return "revealing"
	case PhaseHold:
		return "hold"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase name in JSON.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// FrameState is everything drawn in one frame, independent of earlier frames.
type FrameState struct {
	Index int   `json:"index"`
	Phase Phase `json:"phase"`
	// Start is the index of the start marker; always 0.
	Start int `json:"start"`
	// Visible is how many leading points are drawn with the connecting line.
	Visible int `json:"visible"`
	// Current is the index of the current marker, -1 when none is drawn.
	Current int `json:"current"`
	// Labels are the indices of points that carry a year label.
	Labels []int    `json:"labels"`
	Info   []string `json:"info"`
}

// FrameCount is the total number of frames for n points.
func FrameCount(n, hold int) int {
	if n == 0 {
		return 0
	}
	return n + max(hold, 0)
}

// FrameAt computes frame i for points. points must be non-empty and i >= 0.
func FrameAt(points []Point, policy RadiusPolicy, i int) FrameState {
	n := len(points)
	if i == 0 {
		first := points[0]
		return FrameState{
			Index:   0,
			Phase:   PhaseInitial,
			Current: -1,
			Labels:  []int{},
			Info: []string{
				fmt.Sprintf("Start Year: %d", first.Year),
				fmt.Sprintf("Sea Level: %.3fm", first.Level),
				fmt.Sprintf("Decade: %ds", floorDiv(first.Year, 10)*10),
				fmt.Sprintf("Data Points: 1/%d", n),
			},
		}
	}

	idx := min(i, n-1)
	phase := PhaseRevealing
	if i >= n {
		phase = PhaseHold
	}

	labels := make([]int, 0, idx/labelEvery+2)
	for j := 0; j <= idx; j++ {
		if j == 0 || j == idx || floorMod(points[j].Year, labelEvery) == 0 {
			labels = append(labels, j)
		}
	}

	cur := points[idx]
	info := []string{
		fmt.Sprintf("Current Year: %d", cur.Year),
		fmt.Sprintf("Decade: %ds (Year %d)", floorDiv(cur.Year, 10)*10, floorMod(cur.Year, 10)),
		fmt.Sprintf("Sea Level: %.3fm", cur.Level),
	}
	if policy != nil && policy.ShowRadius() {
		info = append(info, fmt.Sprintf("Radius: %.2f", cur.Radius))
	}
	info = append(info,
		fmt.Sprintf("Data Points: %d/%d", idx+1, n),
		fmt.Sprintf("Progress: %.1f%%", float64(idx+1)/float64(n)*100),
	)

	return FrameState{
		Index:   i,
		Phase:   phase,
		Visible: idx + 1,
		Current: idx,
		Labels:  labels,
		Info:    info,
	}
}

// Frames computes every frame state for points with the given hold.
func Frames(points []Point, policy RadiusPolicy, hold int) []FrameState {
	total := FrameCount(len(points), hold)
	out := make([]FrameState, total)
	for i := range out {
		out[i] = FrameAt(points, policy, i)
	}
	return out
}
