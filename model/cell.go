package model

import "github.com/jsphweid/rhythmdrill/util"

// BeatCell is one metric beat (or two, for quarter triplets and quintuplets).
// A cell without events is a placeholder for a beat consumed by its predecessor.
type BeatCell struct {
	Tuplet *TupletTag  `json:"tuplet,omitempty"`
	Events []NoteEvent `json:"events"`
}

func NewCell(events ...NoteEvent) BeatCell {
	return BeatCell{Events: events}
}

func NewTupletCell(tag TupletTag, events ...NoteEvent) BeatCell {
	t := tag
	return BeatCell{Tuplet: &t, Events: events}
}

func Placeholder() BeatCell {
	return BeatCell{Events: []NoteEvent{}}
}

func (c BeatCell) Length() float64 {
	var total float64
	for _, e := range c.Events {
		total += e.Length
	}
	return total
}

func (c BeatCell) IsPlaceholder() bool {
	return len(c.Events) == 0
}

func (c BeatCell) IsTwoBeat() bool {
	return util.NearWithin(c.Length(), 2, 0.05)
}

func (c BeatCell) Is(tag TupletTag) bool {
	return c.Tuplet != nil && *c.Tuplet == tag
}

func (c BeatCell) HasNotes() bool {
	for _, e := range c.Events {
		if e.IsNote() {
			return true
		}
	}
	return false
}

func (c BeatCell) AllRests() bool {
	return !c.IsPlaceholder() && !c.HasNotes()
}

func (c BeatCell) HasLocalTuplet() bool {
	for _, e := range c.Events {
		if e.Local != nil {
			return true
		}
	}
	return false
}

// IsQuarterRest reports whether the cell is a plain single quarter rest.
func (c BeatCell) IsQuarterRest() bool {
	if c.Tuplet != nil || len(c.Events) != 1 {
		return false
	}
	e := c.Events[0]
	return e.IsRest() && e.Duration == Quarter && e.Dots == 0
}

func (c BeatCell) Clone() BeatCell {
	out := BeatCell{Events: make([]NoteEvent, len(c.Events))}
	copy(out.Events, c.Events)
	if c.Tuplet != nil {
		t := *c.Tuplet
		out.Tuplet = &t
	}
	for i := range out.Events {
		if out.Events[i].Local != nil {
			l := *out.Events[i].Local
			out.Events[i].Local = &l
		}
	}
	return out
}
