package timeline

import (
	"math"

	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
)

// Trigger is one rhythm note inside a beat bucket.
type Trigger struct {
	Offset    float64    `json:"offset"`
	Frequency float64    `json:"frequency"`
	Hand      model.Hand `json:"hand,omitempty"`
}

// Span is the theoretical position of a measure.
type Span struct {
	Start     float64             `json:"start"`
	Length    float64             `json:"length"`
	Signature model.TimeSignature `json:"timeSignature"`
}

func (s Span) End() float64 {
	return s.Start + s.Length
}

type Timeline struct {
	Buckets    [][]Trigger `json:"buckets"`
	Measures   []Span      `json:"measures"`
	TotalBeats float64     `json:"totalBeats"`
}

// Flatten turns an exercise into beat-bucketed triggers. Every measure is
// anchored at the sum of the theoretical lengths before it.
func Flatten(ex *model.Exercise) *Timeline {
	tl := &Timeline{TotalBeats: ex.TotalBeats()}
	tl.Buckets = make([][]Trigger, int(math.Ceil(tl.TotalBeats))+1)

	var global float64
	for _, m := range ex.Measures {
		length := m.Signature.Beats()
		tl.Measures = append(tl.Measures, Span{Start: global, Length: length, Signature: m.Signature})

		var local float64
		for _, cell := range m.Beats {
			if cell.IsPlaceholder() {
				continue
			}
			var pos float64
			for _, ev := range cell.Events {
				if ev.IsNote() {
					tl.add(global+local+pos, ev.Sticking)
				}
				pos += ev.Length
			}
			local += CellLength(cell)
		}
		global += length
	}
	return tl
}

// CellLength rounds a cell to 0.001 beat and snaps two-beat tuplets to exactly 2.
func CellLength(c model.BeatCell) float64 {
	length := util.Round(c.Length(), 0.001)
	if c.Tuplet != nil && util.NearWithin(length, 2, 0.05) {
		return 2
	}
	return length
}

func (tl *Timeline) add(beat float64, hand model.Hand) {
	bucket := int(math.Floor(beat + util.Epsilon))
	offset := util.Max(0, beat-float64(bucket))
	for bucket >= len(tl.Buckets) {
		tl.Buckets = append(tl.Buckets, nil)
	}
	tl.Buckets[bucket] = append(tl.Buckets[bucket], Trigger{Offset: offset, Frequency: constants.NoteFrequency, Hand: hand})
}

// MeasureAt returns the span containing beat. Positions before zero belong to
// a count-in measure shaped like the first one.
func (tl *Timeline) MeasureAt(beat float64) Span {
	if len(tl.Measures) == 0 {
		return Span{Start: math.Floor(beat), Length: 1, Signature: model.FourFour}
	}
	first := tl.Measures[0]
	if beat < 0 {
		start := -first.Length
		for beat < start-util.Epsilon {
			start -= first.Length
		}
		return Span{Start: start, Length: first.Length, Signature: first.Signature}
	}
	for _, s := range tl.Measures {
		if beat < s.End()-util.Epsilon {
			return s
		}
	}
	last := tl.Measures[len(tl.Measures)-1]
	return Span{Start: last.End(), Length: last.Length, Signature: last.Signature}
}

// Beat is an absolute trigger position.
type Beat struct {
	Trigger
	Position float64
}

// Between returns the triggers with from <= position < to, scanning the
// touched buckets and their neighbours.
func (tl *Timeline) Between(from, to float64) []Beat {
	var res []Beat
	lo := int(math.Floor(from)) - 1
	hi := int(math.Floor(to)) + 1
	for b := util.Max(lo, 0); b <= hi && b < len(tl.Buckets); b++ {
		for _, tr := range tl.Buckets[b] {
			pos := float64(b) + tr.Offset
			if pos >= from-util.Epsilon && pos < to-util.Epsilon {
				res = append(res, Beat{Trigger: tr, Position: pos})
			}
		}
	}
	return res
}

// Positions lists every trigger position in order.
func (tl *Timeline) Positions() []float64 {
	var res []float64
	for b, triggers := range tl.Buckets {
		for _, tr := range triggers {
			res = append(res, float64(b)+tr.Offset)
		}
	}
	return res
}
