package rhythm

import (
	"math"
	"strings"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
)

// SimplifyBeat maps a tuplet cell to a fixed notation keyed by its onset mask.
func SimplifyBeat(c model.BeatCell) model.BeatCell {
	switch {
	case c.Is(model.Quintuplet):
		return simplifyQuintuplet(c)
	case c.Is(model.Sextuplet):
		return simplifySextuplet(c)
	case c.Is(model.Triplet) && c.IsTwoBeat():
		return simplifyQuarterTriplet(c)
	case c.Is(model.Triplet):
		return simplifyTriplet(c)
	}
	return c
}

// OnsetMask marks with '1' every slot of width slotLen where a note starts.
func OnsetMask(c model.BeatCell, slots int, slotLen float64) (string, bool) {
	mask := []byte(strings.Repeat("0", slots))
	var pos float64
	for _, e := range c.Events {
		slot := pos / slotLen
		idx := int(math.Round(slot))
		if !util.NearWithin(slot, float64(idx), 1e-3) || idx < 0 || idx >= slots {
			return "", false
		}
		if e.IsNote() {
			mask[idx] = '1'
		}
		pos += e.Length
	}
	return string(mask), true
}

func tripletCell(events ...model.NoteEvent) model.BeatCell {
	return model.NewTupletCell(model.Triplet, events...)
}

func simplifyTriplet(c model.BeatCell) model.BeatCell {
	mask, ok := OnsetMask(c, 3, third)
	if !ok {
		return c
	}
	return tripletFromMask(mask)
}

func tripletFromMask(mask string) model.BeatCell {
	n8 := model.TupletNote(model.Eighth, 0, third)
	r8 := model.TupletRest(model.Eighth, 0, third)
	n4 := model.TupletNote(model.Quarter, 0, 2*third)
	r4 := model.TupletRest(model.Quarter, 0, 2*third)

	switch mask {
	case "100":
		return model.NewCell(model.Note(model.Quarter, 0))
	case "000":
		return model.NewCell(model.Rest(model.Quarter, 0))
	case "101":
		return tripletCell(n4, n8)
	case "010":
		return tripletCell(r8, n4)
	case "001":
		return tripletCell(r4, n8)
	case "110":
		return tripletCell(n8, n4)
	case "011":
		return tripletCell(r8, n8, n8)
	default:
		return tripletCell(n8, n8, n8)
	}
}

func simplifyQuarterTriplet(c model.BeatCell) model.BeatCell {
	mask, ok := OnsetMask(c, 3, 2*third)
	if !ok {
		return c
	}
	n4 := model.TupletNote(model.Quarter, 0, 2*third)
	r4 := model.TupletRest(model.Quarter, 0, 2*third)
	n2 := model.TupletNote(model.Half, 0, 4*third)
	r2 := model.TupletRest(model.Half, 0, 4*third)

	switch mask {
	case "100":
		return model.NewCell(model.Note(model.Half, 0))
	case "000":
		return model.NewCell(model.Rest(model.Half, 0))
	case "110":
		return tripletCell(n4, n2)
	case "010":
		return tripletCell(r4, n2)
	case "001":
		return tripletCell(r2, n4)
	case "101":
		return tripletCell(n2, n4)
	case "011":
		return tripletCell(r4, n4, n4)
	default:
		return tripletCell(n4, n4, n4)
	}
}

func quintupletCell(events ...model.NoteEvent) model.BeatCell {
	return model.NewTupletCell(model.Quintuplet, events...)
}

func simplifyQuintuplet(c model.BeatCell) model.BeatCell {
	mask, ok := OnsetMask(c, 5, fifth)
	if !ok {
		return c
	}
	switch mask {
	case "00000":
		return quintupletCell(
			model.TupletRest(model.Quarter, 0, 2*fifth),
			model.TupletRest(model.Quarter, 1, 3*fifth),
		)
	case "10000":
		return model.NewCell(model.Note(model.Half, 0))
	case "00001":
		return quintupletCell(
			model.TupletRest(model.Quarter, 1, 3*fifth),
			model.TupletNote(model.Quarter, 0, 2*fifth),
		)
	}

	var events []model.NoteEvent
	for _, r := range runs(mask) {
		for i, size := range chunk(r.length, 3) {
			d, dots := quintupletDuration(size)
			if r.note && i == 0 {
				events = append(events, model.TupletNote(d, dots, float64(size)*fifth))
			} else {
				events = append(events, model.TupletRest(d, dots, float64(size)*fifth))
			}
		}
	}
	return quintupletCell(events...)
}

func quintupletDuration(slots int) (model.Duration, int) {
	switch slots {
	case 1:
		return model.Eighth, 0
	case 2:
		return model.Quarter, 0
	default:
		return model.Quarter, 1
	}
}

func sextupletCell(events ...model.NoteEvent) model.BeatCell {
	return model.NewTupletCell(model.Sextuplet, events...)
}

func simplifySextuplet(c model.BeatCell) model.BeatCell {
	mask, ok := OnsetMask(c, 6, sixth)
	if !ok {
		return c
	}

	if mask[1] == '0' && mask[3] == '0' && mask[5] == '0' {
		return tripletFromMask(string([]byte{mask[0], mask[2], mask[4]}))
	}

	first, second := mask[:3], mask[3:]
	if cleanHalf(first) && cleanHalf(second) {
		events := append(halfEvents(first), halfEvents(second)...)
		return model.NewCell(events...)
	}

	s16 := model.TupletNote(model.Sixteenth, 0, sixth)
	s8 := model.TupletNote(model.Eighth, 0, 2*sixth)
	q16 := model.TupletRest(model.Sixteenth, 0, sixth)
	q8 := model.TupletRest(model.Eighth, 0, 2*sixth)
	switch mask {
	case "010010":
		return sextupletCell(q16, s8, q16, s8)
	case "000001":
		return sextupletCell(q8, q8, q16, s16)
	}

	var events []model.NoteEvent
	for _, r := range runs(mask) {
		if r.length == 6 {
			if r.note {
				return model.NewCell(model.Note(model.Quarter, 0))
			}
			return model.NewCell(model.Rest(model.Quarter, 0))
		}
		events = append(events, sextupletRun(r)...)
	}
	return sextupletCell(events...)
}

func sextupletRun(r run) []model.NoteEvent {
	event := model.TupletRest
	if r.note {
		event = model.TupletNote
	}
	switch r.length {
	case 1:
		return []model.NoteEvent{event(model.Sixteenth, 0, sixth)}
	case 2:
		return []model.NoteEvent{event(model.Eighth, 0, 2*sixth)}
	case 3:
		return []model.NoteEvent{event(model.Eighth, 1, 3*sixth)}
	case 4:
		return []model.NoteEvent{event(model.Quarter, 0, 4*sixth)}
	default:
		return []model.NoteEvent{
			event(model.Sixteenth, 0, sixth),
			model.TupletRest(model.Quarter, 0, 4*sixth),
		}
	}
}

func cleanHalf(h string) bool {
	return h == "100" || h == "000" || h == "111"
}

// halfEvents renders half a sextuplet as an eighth or a bracket-less sixteenth triplet.
func halfEvents(h string) []model.NoteEvent {
	switch h {
	case "100":
		return []model.NoteEvent{model.Note(model.Eighth, 0)}
	case "000":
		return []model.NoteEvent{model.Rest(model.Eighth, 0)}
	}
	res := make([]model.NoteEvent, 3)
	for i := range res {
		tag := model.Triplet
		res[i] = model.TupletNote(model.Sixteenth, 0, sixth)
		res[i].Local = &tag
	}
	return res
}

type run struct {
	note   bool
	length int
}

// runs splits a mask into a leading silent run followed by one run per onset.
func runs(mask string) []run {
	var res []run
	for i := 0; i < len(mask); {
		j := i + 1
		for j < len(mask) && mask[j] == '0' {
			j++
		}
		if mask[i] == '1' {
			res = append(res, run{note: true, length: j - i})
		} else {
			res = append(res, run{note: false, length: j - i})
		}
		i = j
	}
	return res
}

func chunk(n, limit int) []int {
	var res []int
	for n > 0 {
		size := util.Min(n, limit)
		res = append(res, size)
		n -= size
	}
	return res
}
