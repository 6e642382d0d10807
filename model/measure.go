package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type TimeSignature struct {
	Num int
	Den int
}

var (
	TwoFour    = TimeSignature{2, 4}
	ThreeFour  = TimeSignature{3, 4}
	FourFour   = TimeSignature{4, 4}
	FiveFour   = TimeSignature{5, 4}
	SixFour    = TimeSignature{6, 4}
	SevenEight = TimeSignature{7, 8}
)

// TimeSignatures is the closed set of supported meters.
var TimeSignatures = []TimeSignature{TwoFour, ThreeFour, FourFour, FiveFour, SixFour, SevenEight}

func ParseTimeSignature(s string) (TimeSignature, error) {
	for _, ts := range TimeSignatures {
		if ts.String() == strings.TrimSpace(s) {
			return ts, nil
		}
	}
	return TimeSignature{}, errors.Errorf("unsupported time signature %q", s)
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Num, ts.Den)
}

// Beats is the measure length in quarter-note beats.
func (ts TimeSignature) Beats() float64 {
	if ts.Den == 8 {
		return float64(ts.Num) / 2
	}
	return float64(ts.Num)
}

// Grid is the metronome subdivision of the meter.
func (ts TimeSignature) Grid() float64 {
	if ts.Den == 8 {
		return 0.5
	}
	return 1
}

func (ts TimeSignature) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.String())
}

func (ts *TimeSignature) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeSignature(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

type Measure struct {
	Signature TimeSignature `json:"timeSignature"`
	Beats     []BeatCell    `json:"beats"`
}

func (m Measure) Length() float64 {
	var total float64
	for _, c := range m.Beats {
		total += c.Length()
	}
	return total
}

// Clone deep-copies every cell of the measure.
func (m Measure) Clone() Measure {
	out := Measure{Signature: m.Signature, Beats: make([]BeatCell, len(m.Beats))}
	for i, c := range m.Beats {
		out.Beats[i] = c.Clone()
	}
	return out
}

func (m Measure) HasNotes() bool {
	for _, c := range m.Beats {
		if c.HasNotes() {
			return true
		}
	}
	return false
}

type Exercise struct {
	ID       string    `json:"id"`
	Measures []Measure `json:"measures"`
}

func (ex *Exercise) Clone() *Exercise {
	out := &Exercise{ID: ex.ID, Measures: make([]Measure, len(ex.Measures))}
	for i, m := range ex.Measures {
		out.Measures[i] = m.Clone()
	}
	return out
}

// TotalBeats sums the theoretical measure lengths.
func (ex *Exercise) TotalBeats() float64 {
	var total float64
	for _, m := range ex.Measures {
		total += m.Signature.Beats()
	}
	return total
}

// NoteRef locates a note event inside an exercise.
type NoteRef struct {
	Measure int
	Cell    int
	Event   int
	// Beat is the absolute position, anchored to theoretical measure starts.
	Beat float64
	// Offset is the position inside the cell.
	Offset float64
}

// Walk calls fn for every event (notes and rests) in order. Returning false stops the walk.
func (ex *Exercise) Walk(fn func(ref NoteRef, ev *NoteEvent) bool) {
	var start float64
	for mi := range ex.Measures {
		m := &ex.Measures[mi]
		var local float64
		for ci := range m.Beats {
			cell := &m.Beats[ci]
			var pos float64
			for ei := range cell.Events {
				ev := &cell.Events[ei]
				ref := NoteRef{Measure: mi, Cell: ci, Event: ei, Beat: start + local + pos, Offset: pos}
				if !fn(ref, ev) {
					return
				}
				pos += ev.Length
			}
			local += cell.Length()
		}
		start += m.Signature.Beats()
	}
}

// NoteOffsets returns the absolute beat of every note in note order.
func (ex *Exercise) NoteOffsets() []float64 {
	var res []float64
	ex.Walk(func(ref NoteRef, ev *NoteEvent) bool {
		if ev.IsNote() {
			res = append(res, ref.Beat)
		}
		return true
	})
	return res
}

// Stickings returns the hand label of every note in note order.
func (ex *Exercise) Stickings() []Hand {
	var res []Hand
	ex.Walk(func(ref NoteRef, ev *NoteEvent) bool {
		if ev.IsNote() {
			res = append(res, ev.Sticking)
		}
		return true
	})
	return res
}

func (ex *Exercise) NoteCount() int {
	return len(ex.NoteOffsets())
}
