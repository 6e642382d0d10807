package rhythm

import (
	"math"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
)

// Normalize rewrites a raw cell into its canonical notation.
func Normalize(c model.BeatCell) model.BeatCell {
	if c.Tuplet != nil {
		return SimplifyBeat(c)
	}
	c = RemapGrid(c)
	c = MergeEighthRests(c)
	c = AbsorbRests(c)
	c = MergeEighthRests(c)
	c = CollapseRests(c)
	return c
}

// Signature returns the onset signature of a one-beat cell on a sixteenth grid.
// ok is false if the cell does not fit the grid.
func Signature(c model.BeatCell) (string, bool) {
	if c.Tuplet != nil || c.HasLocalTuplet() || !util.Near(c.Length(), 1) {
		return "", false
	}
	sig := []byte("0000")
	var pos float64
	for _, e := range c.Events {
		slot := pos / 0.25
		idx := int(math.Round(slot))
		if !util.Near(slot, float64(idx)) || idx < 0 || idx > 3 {
			return "", false
		}
		if e.IsNote() {
			sig[idx] = '1'
		}
		pos += e.Length
	}
	return string(sig), true
}

var (
	n16 = model.Note(model.Sixteenth, 0)
	n8  = model.Note(model.Eighth, 0)
	n8d = model.Note(model.Eighth, 1)
	n4  = model.Note(model.Quarter, 0)
	r16 = model.Rest(model.Sixteenth, 0)
	r8  = model.Rest(model.Eighth, 0)
	r8d = model.Rest(model.Eighth, 1)
	r4  = model.Rest(model.Quarter, 0)
)

// canonicalCell is the one accepted notation for every sixteenth-grid onset signature.
func canonicalCell(sig string) model.BeatCell {
	switch sig {
	case "0000":
		return model.NewCell(r4)
	case "1000":
		return model.NewCell(n4)
	case "0100":
		return model.NewCell(r16, n8d)
	case "0010":
		return model.NewCell(r8, n8)
	case "0001":
		return model.NewCell(r8d, n16)
	case "1100":
		return model.NewCell(n16, n8d)
	case "1010":
		return model.NewCell(n8, n8)
	case "1001":
		return model.NewCell(n8d, n16)
	case "0110":
		return model.NewCell(r16, n16, n8)
	case "0101":
		return model.NewCell(r16, n8, n16)
	case "0011":
		return model.NewCell(r8, n16, n16)
	case "1110":
		return model.NewCell(n16, n16, n8)
	case "1101":
		return model.NewCell(n16, n8, n16)
	case "1011":
		return model.NewCell(n8, n16, n16)
	case "0111":
		return model.NewCell(r16, n16, n16, n16)
	default:
		return model.NewCell(n16, n16, n16, n16)
	}
}

// RemapGrid replaces a binary cell with the canonical notation of its onset signature.
func RemapGrid(c model.BeatCell) model.BeatCell {
	sig, ok := Signature(c)
	if !ok {
		return c
	}
	return canonicalCell(sig)
}

func isPlainRest(e model.NoteEvent, d model.Duration) bool {
	return e.IsRest() && e.Duration == d && e.Dots == 0 && e.Local == nil
}

// MergeEighthRests turns a leading or trailing pair of sixteenth rests into an eighth rest.
func MergeEighthRests(c model.BeatCell) model.BeatCell {
	if c.Tuplet != nil {
		return c
	}
	events := append([]model.NoteEvent(nil), c.Events...)
	if len(events) >= 2 && isPlainRest(events[0], model.Sixteenth) && isPlainRest(events[1], model.Sixteenth) {
		events = append([]model.NoteEvent{r8}, events[2:]...)
	}
	n := len(events)
	if n >= 2 && isPlainRest(events[n-2], model.Sixteenth) && isPlainRest(events[n-1], model.Sixteenth) {
		events = append(events[:n-2], r8)
	}
	return model.BeatCell{Events: events}
}

// AbsorbRests extends a note over the rests that follow it when the sum is an eighth or a quarter.
func AbsorbRests(c model.BeatCell) model.BeatCell {
	if c.Tuplet != nil {
		return c
	}
	var out []model.NoteEvent
	for i := 0; i < len(c.Events); {
		e := c.Events[i]
		if e.IsNote() && e.Local == nil {
			j := i + 1
			total := e.Length
			for j < len(c.Events) && c.Events[j].IsRest() && c.Events[j].Local == nil {
				total += c.Events[j].Length
				j++
			}
			if j > i+1 {
				if d, ok := absorbedDuration(total); ok {
					merged := model.Note(d, 0)
					merged.Sticking = e.Sticking
					out = append(out, merged)
					i = j
					continue
				}
			}
		}
		out = append(out, e)
		i++
	}
	return model.BeatCell{Events: out}
}

func absorbedDuration(total float64) (model.Duration, bool) {
	switch {
	case util.Near(total, 0.5):
		return model.Eighth, true
	case util.Near(total, 1):
		return model.Quarter, true
	}
	return "", false
}

// CollapseRests replaces a silent one-beat cell with a single quarter rest.
// Tuplet cells are left alone so two-beat spans survive.
func CollapseRests(c model.BeatCell) model.BeatCell {
	if c.Tuplet != nil || !c.AllRests() || !util.Near(c.Length(), 1) {
		return c
	}
	return model.NewCell(r4)
}
