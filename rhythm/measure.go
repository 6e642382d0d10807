package rhythm

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
)

// MaxAttempts caps how often a silent measure is regenerated before force-filling.
const MaxAttempts = 10

func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

type Assembler struct {
	rng        *rand.Rand
	gen        *Generator
	signatures []model.TimeSignature

	// Degenerate counts measures that had to be force-filled.
	Degenerate int
}

func NewAssembler(rng *rand.Rand, p model.Params) *Assembler {
	return &Assembler{
		rng:        rng,
		gen:        NewGenerator(rng, p.RestPercent, p.Figures),
		signatures: p.Signatures(),
	}
}

// Generate assembles a fresh exercise.
func Generate(p model.Params, rng *rand.Rand) *model.Exercise {
	p = p.Clamp()
	return NewAssembler(rng, p).Exercise(p.Measures)
}

// Exercise assembles n measures under a new id.
func (a *Assembler) Exercise(n int) *model.Exercise {
	ex := &model.Exercise{ID: uuid.New().String()}
	for i := 0; i < n; i++ {
		ex.Measures = append(ex.Measures, a.Measure())
	}
	return ex
}

// Measure picks a meter and fills one measure, retrying silent results.
func (a *Assembler) Measure() model.Measure {
	ts := a.signatures[a.rng.Intn(len(a.signatures))]
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		m := a.Fill(ts)
		if m.HasNotes() {
			return Condense(m)
		}
	}
	a.Degenerate++
	return ForceFill(ts)
}

// Fill lays out normalized cells beat by beat.
func (a *Assembler) Fill(ts model.TimeSignature) model.Measure {
	m := model.Measure{Signature: ts}
	remaining := ts.Beats()
	for remaining > util.Epsilon {
		if util.Near(remaining, 0.5) {
			m.Beats = append(m.Beats, HalfBeatFiller(a.rng))
			remaining -= 0.5
			continue
		}
		cell := Normalize(a.gen.Draw(remaining >= 2-util.Epsilon))
		m.Beats = append(m.Beats, cell)
		if cell.IsTwoBeat() {
			m.Beats = append(m.Beats, model.Placeholder())
			remaining -= 2
		} else {
			remaining--
		}
	}
	return m
}

// HalfBeatFiller closes an eighth-denominator measure without normalization.
func HalfBeatFiller(rng *rand.Rand) model.BeatCell {
	r := rng.Float64()
	switch {
	case r < 0.1:
		return model.NewCell(model.Rest(model.Eighth, 0))
	case r < 0.7:
		return model.NewCell(model.Note(model.Eighth, 0))
	default:
		return model.NewCell(model.Note(model.Sixteenth, 0), model.Note(model.Sixteenth, 0))
	}
}

// ForceFill builds a measure of plain quarter notes.
func ForceFill(ts model.TimeSignature) model.Measure {
	m := model.Measure{Signature: ts}
	remaining := ts.Beats()
	for remaining > util.Epsilon {
		if util.Near(remaining, 0.5) {
			m.Beats = append(m.Beats, model.NewCell(model.Note(model.Eighth, 0)))
			remaining -= 0.5
			continue
		}
		m.Beats = append(m.Beats, model.NewCell(model.Note(model.Quarter, 0)))
		remaining--
	}
	return m
}

// Condense merges runs of quarter-rest beats into half or dotted-half rests.
// Consumed beats become placeholders.
func Condense(m model.Measure) model.Measure {
	beats := make([]model.BeatCell, len(m.Beats))
	copy(beats, m.Beats)
	for i := 0; i < len(beats); {
		if !beats[i].IsQuarterRest() {
			i++
			continue
		}
		j := i
		for j < len(beats) && beats[j].IsQuarterRest() {
			j++
		}
		at, run := i, j-i
		for run >= 2 {
			take := 3
			if run == 2 || run == 4 {
				take = 2
			}
			if take == 2 {
				beats[at] = model.NewCell(model.Rest(model.Half, 0))
			} else {
				beats[at] = model.NewCell(model.Rest(model.Half, 1))
			}
			for k := 1; k < take; k++ {
				beats[at+k] = model.Placeholder()
			}
			at += take
			run -= take
		}
		i = j
	}
	return model.Measure{Signature: m.Signature, Beats: beats}
}
