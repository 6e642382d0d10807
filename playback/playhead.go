package playback

import (
	"sort"

	"github.com/jsphweid/rhythmdrill/util"
	"github.com/pkg/errors"
)

// Bounds is the extent of one rendered measure.
type Bounds struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Playhead maps beat positions onto renderer coordinates. Renderers report
// one x per note plus the bounds of each measure; nothing flows back into the
// exercise.
type Playhead struct {
	beats  []float64
	xs     []float64
	starts []float64
	rows   []Bounds
	end    float64
}

// NewPlayhead takes note beats and x positions in note order, the start beat
// and bounds of every measure, and the total length in beats.
func NewPlayhead(beats, xs, measureStarts []float64, rows []Bounds, end float64) (*Playhead, error) {
	if len(beats) != len(xs) {
		return nil, errors.Errorf("playhead: %d beats but %d positions", len(beats), len(xs))
	}
	if len(measureStarts) != len(rows) {
		return nil, errors.Errorf("playhead: %d measures but %d bounds", len(measureStarts), len(rows))
	}
	if len(rows) == 0 {
		return nil, errors.New("playhead: no measures")
	}
	if !sort.Float64sAreSorted(beats) || !sort.Float64sAreSorted(measureStarts) {
		return nil, errors.New("playhead: positions out of order")
	}
	return &Playhead{beats: beats, xs: xs, starts: measureStarts, rows: rows, end: end}, nil
}

func (p *Playhead) measure(beat float64) int {
	i := sort.SearchFloat64s(p.starts, beat+util.Epsilon)
	return util.Max(i-1, 0)
}

func (p *Playhead) measureEnd(m int) float64 {
	if m+1 < len(p.starts) {
		return p.starts[m+1]
	}
	return p.end
}

// X interpolates between the surrounding notes, or the measure edges where a
// measure has no note on that side.
func (p *Playhead) X(beat float64) float64 {
	m := p.measure(beat)
	row := p.rows[m]
	start, end := p.starts[m], p.measureEnd(m)
	if beat < start-util.Epsilon {
		return row.Left
	}

	b0, x0 := start, row.Left
	b1, x1 := end, row.Right
	i := sort.SearchFloat64s(p.beats, beat)
	if i < len(p.beats) && util.Near(p.beats[i], beat) {
		return p.xs[i]
	}
	if i > 0 && p.beats[i-1] >= start-util.Epsilon {
		b0, x0 = p.beats[i-1], p.xs[i-1]
	}
	if i < len(p.beats) && p.beats[i] < end-util.Epsilon {
		b1, x1 = p.beats[i], p.xs[i]
	}
	if b1 <= b0 {
		return x0
	}
	return x0 + (x1-x0)*util.Clamp((beat-b0)/(b1-b0), 0, 1)
}

// Row returns the bounds of the measure holding beat.
func (p *Playhead) Row(beat float64) Bounds {
	return p.rows[p.measure(beat)]
}
