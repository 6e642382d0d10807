// Package drill ties generation, normalization, sticking and counting into
// one regenerate call.
package drill

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/notation"
	"github.com/jsphweid/rhythmdrill/rhythm"
	"github.com/jsphweid/rhythmdrill/sticking"
	"github.com/jsphweid/rhythmdrill/timeline"
)

// Drill is a generated exercise with the parameters that produced it.
type Drill struct {
	Exercise *model.Exercise `json:"exercise"`
	Params   model.Params    `json:"params"`
}

// Regenerate builds a fresh exercise. A zero seed is replaced by a time-based
// one and recorded in the returned params, so the result can be reproduced.
// The only error is model.ErrRenderingUnavailable.
func Regenerate(ctx context.Context, p model.Params) (*Drill, error) {
	logger := log.FromContext(ctx)
	p = p.Clamp()
	if p.Seed == 0 {
		p.Seed = time.Now().UnixNano()
	}

	a := rhythm.NewAssembler(rhythm.NewRand(p.Seed), p)
	ex := a.Exercise(p.Measures)
	if a.Degenerate > 0 {
		logger.Debug("force-filled silent measures", "count", a.Degenerate, "seed", p.Seed)
	}

	d := &Drill{Exercise: ex, Params: p}
	d.annotate()
	if err := notation.Check(ex); err != nil {
		return nil, err
	}
	logger.Debug("generated exercise", "id", ex.ID, "measures", len(ex.Measures), "notes", ex.NoteCount())
	return d, nil
}

func (d *Drill) annotate() {
	sticking.Assign(d.Exercise, d.Params.Sticking, d.Params.LeadHand, d.Params.ShowSticking)
	notation.AnnotateCounts(d.Exercise, d.Params.ShowCounts)
}

// Clone returns a drill that shares nothing mutable with d.
func (d *Drill) Clone() *Drill {
	p := d.Params
	p.TimeSignatures = append([]string(nil), d.Params.TimeSignatures...)
	return &Drill{Exercise: d.Exercise.Clone(), Params: p}
}

// Restick re-runs sticking with new settings, overwriting earlier labels.
func (d *Drill) Restick(strategy model.Strategy, lead model.Hand, visible bool) {
	p := d.Params
	p.Sticking, p.LeadHand, p.ShowSticking = strategy, lead, visible
	d.Params = p.Clamp()
	sticking.Assign(d.Exercise, d.Params.Sticking, d.Params.LeadHand, d.Params.ShowSticking)
}

// SetCounts shows or hides counting syllables.
func (d *Drill) SetCounts(visible bool) {
	d.Params.ShowCounts = visible
	notation.AnnotateCounts(d.Exercise, visible)
}

func (d *Drill) Timeline() *timeline.Timeline {
	return timeline.Flatten(d.Exercise)
}

// Duration is the real-time length at the drill's tempo, count-in excluded.
func (d *Drill) Duration() time.Duration {
	seconds := d.Exercise.TotalBeats() * 60 / float64(d.Params.Tempo)
	return time.Duration(seconds * float64(time.Second))
}
