package notation

import (
	"math"
	"strconv"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
)

var (
	sixteenthSyllables = []string{"", "e", "&", "a"}
	tripletSyllables   = []string{"", "trip", "let"}
	sextupletSyllables = []string{"", "la", "li", "&", "la", "li"}
)

// AnnotateCounts labels every note with the syllable it is counted on. Rests
// get no label, and visible=false clears all labels.
func AnnotateCounts(ex *model.Exercise, visible bool) {
	for mi := range ex.Measures {
		m := &ex.Measures[mi]
		var cellStart float64
		for ci := range m.Beats {
			c := &m.Beats[ci]
			var pos float64
			for ei := range c.Events {
				ev := &c.Events[ei]
				ev.Count = ""
				if visible && ev.IsNote() {
					ev.Count = countAt(*c, cellStart, pos, ev.Local != nil)
				}
				pos += ev.Length
			}
			cellStart += c.Length()
		}
	}
}

func countAt(c model.BeatCell, cellStart, pos float64, local bool) string {
	at := cellStart + pos
	beat := math.Floor(at + util.Epsilon)
	number := strconv.Itoa(int(beat) + 1)

	var slot int
	var syllables []string
	switch {
	case c.Is(model.Triplet):
		slot = slotOf(pos, c.Length()/3)
		syllables = tripletSyllables
	case c.Is(model.Quintuplet):
		slot = slotOf(pos, c.Length()/5)
		if slot == 0 {
			return number
		}
		return strconv.Itoa(slot + 1)
	case c.Is(model.Sextuplet) || local:
		slot = slotOf(at-beat, 1.0/6)
		syllables = sextupletSyllables
	default:
		slot = slotOf(at-beat, 0.25)
		syllables = sixteenthSyllables
	}
	if slot <= 0 || slot >= len(syllables) {
		return number
	}
	return syllables[slot]
}

func slotOf(offset, size float64) int {
	return int(math.Round(offset / size))
}
