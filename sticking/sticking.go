package sticking

import (
	"math"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
)

var patterns = map[model.Strategy]string{
	model.Alternate:  "RL",
	model.Doubles:    "RRLL",
	model.Paradiddle: "RLRRLRLL",
}

// Assign labels every note of ex with a hand, overwriting earlier labels.
// Hidden sticking strips all labels.
func Assign(ex *model.Exercise, strategy model.Strategy, lead model.Hand, visible bool) {
	if !lead.Valid() {
		lead = model.Right
	}
	if !visible {
		strip(ex)
		return
	}
	if pattern, ok := patterns[strategy]; ok {
		assignPattern(ex, pattern, lead)
		return
	}
	assignNatural(ex, lead)
}

func strip(ex *model.Exercise) {
	ex.Walk(func(_ model.NoteRef, ev *model.NoteEvent) bool {
		ev.Sticking = model.NoHand
		return true
	})
}

func relative(ch byte, lead model.Hand) model.Hand {
	if lead == model.Left {
		return model.Hand(ch).Other()
	}
	return model.Hand(ch)
}

func assignPattern(ex *model.Exercise, pattern string, lead model.Hand) {
	i := 0
	ex.Walk(func(_ model.NoteRef, ev *model.NoteEvent) bool {
		if !ev.IsNote() {
			ev.Sticking = model.NoHand
			return true
		}
		ev.Sticking = relative(pattern[i%len(pattern)], lead)
		i++
		return true
	})
}

// assignNatural alternates by grid slot inside each cell and carries the lead
// hand across cells, flipping it after cells with an odd feel.
func assignNatural(ex *model.Exercise, lead model.Hand) {
	for mi := range ex.Measures {
		m := &ex.Measures[mi]
		for ci := range m.Beats {
			cell := &m.Beats[ci]
			if cell.IsPlaceholder() {
				continue
			}
			grid, flip := Grid(*cell)
			var pos float64
			for ei := range cell.Events {
				ev := &cell.Events[ei]
				if ev.IsNote() {
					slot := int(math.Round(pos / grid))
					if slot%2 == 0 {
						ev.Sticking = lead
					} else {
						ev.Sticking = lead.Other()
					}
				} else {
					ev.Sticking = model.NoHand
				}
				pos += ev.Length
			}
			if flip {
				lead = lead.Other()
			}
		}
	}
}

// Grid returns the sticking grid of a cell and whether the lead hand flips after it.
func Grid(c model.BeatCell) (float64, bool) {
	switch {
	case c.Is(model.Quintuplet):
		return 0.4, true
	case c.Is(model.Triplet):
		return 1.0 / 3, !c.IsTwoBeat()
	case c.Is(model.Sextuplet), c.HasLocalTuplet():
		return 1.0 / 6, false
	case !onGrid(c, 0.5):
		return 0.25, false
	case util.Near(c.Length(), 0.5):
		return 0.5, true
	case onGrid(c, 1):
		return 1, false
	}
	return 0.5, false
}

func onGrid(c model.BeatCell, grid float64) bool {
	var pos float64
	for _, e := range c.Events {
		if e.IsNote() {
			slot := pos / grid
			if !util.NearWithin(slot, math.Round(slot), 1e-6) {
				return false
			}
		}
		pos += e.Length
	}
	return true
}
