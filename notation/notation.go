// Package notation turns exercises into text a reader can play from: ASCII
// rhythm grids for the terminal and LilyPond source for engraving.
package notation

import (
	"strings"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
	"github.com/pkg/errors"
)

var durationNames = map[model.Duration]string{
	model.Half:      "2",
	model.Quarter:   "4",
	model.Eighth:    "8",
	model.Sixteenth: "16",
}

// Check rejects exercises no renderer can draw.
func Check(ex *model.Exercise) error {
	if ex == nil || len(ex.Measures) == 0 {
		return errors.Wrap(model.ErrRenderingUnavailable, "empty exercise")
	}
	for mi, m := range ex.Measures {
		if !util.NearWithin(m.Length(), m.Signature.Beats(), 0.01) {
			return errors.Wrapf(model.ErrRenderingUnavailable, "measure %d holds %.3f beats, %s needs %.1f",
				mi+1, m.Length(), m.Signature, m.Signature.Beats())
		}
		for ci, c := range m.Beats {
			for _, ev := range c.Events {
				if _, ok := durationNames[ev.Duration]; !ok {
					return errors.Wrapf(model.ErrRenderingUnavailable, "measure %d beat %d: unknown duration %q", mi+1, ci+1, ev.Duration)
				}
				if ev.Kind != model.NoteKind && ev.Kind != model.RestKind {
					return errors.Wrapf(model.ErrRenderingUnavailable, "measure %d beat %d: unknown event kind %q", mi+1, ci+1, ev.Kind)
				}
			}
		}
	}
	return nil
}

func durationName(ev model.NoteEvent) string {
	return durationNames[ev.Duration] + strings.Repeat(".", ev.Dots)
}

// group is a run of events drawn under one tuplet bracket. Tag is nil for
// plain binary events.
type group struct {
	tag    *model.TupletTag
	local  bool
	events []model.NoteEvent
}

// groups splits a cell into bracketed runs: the whole cell for tagged cells,
// otherwise one run per stretch of locally tagged events.
func groups(c model.BeatCell) []group {
	if c.Tuplet != nil {
		return []group{{tag: c.Tuplet, events: c.Events}}
	}
	var res []group
	for _, ev := range c.Events {
		n := len(res)
		sameLocal := n > 0 && res[n-1].tag != nil && ev.Local != nil && *res[n-1].tag == *ev.Local
		plainRun := n > 0 && res[n-1].tag == nil && ev.Local == nil
		if sameLocal || plainRun {
			res[n-1].events = append(res[n-1].events, ev)
			continue
		}
		res = append(res, group{tag: ev.Local, local: ev.Local != nil, events: []model.NoteEvent{ev}})
	}
	return res
}
