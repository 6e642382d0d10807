package rhythm

import (
	"math/rand"

	"github.com/jsphweid/rhythmdrill/model"
)

type Figure int

const (
	QuarterFigure Figure = iota
	EighthsFigure
	FourSixteenthsFigure
	EighthTwoSixteenthsFigure
	TwoSixteenthsEighthFigure
	DottedEighthSixteenthFigure
	TripletFigure
	QuarterTripletFigure
	QuintupletFigure
	SextupletFigure
)

// TwoBeat reports whether the figure spans two metric beats.
func (f Figure) TwoBeat() bool {
	return f == QuarterTripletFigure || f == QuintupletFigure
}

type candidate struct {
	figure Figure
	weight float64
}

// slot is one attack position of a raw figure before rests are decided.
type slot struct {
	duration model.Duration
	dots     int
	length   float64
}

const (
	third = 1.0 / 3
	sixth = 1.0 / 6
	fifth = 0.4
)

var figureSlots = map[Figure][]slot{
	QuarterFigure:               {{model.Quarter, 0, 1}},
	EighthsFigure:               {{model.Eighth, 0, 0.5}, {model.Eighth, 0, 0.5}},
	FourSixteenthsFigure:        {{model.Sixteenth, 0, 0.25}, {model.Sixteenth, 0, 0.25}, {model.Sixteenth, 0, 0.25}, {model.Sixteenth, 0, 0.25}},
	EighthTwoSixteenthsFigure:   {{model.Eighth, 0, 0.5}, {model.Sixteenth, 0, 0.25}, {model.Sixteenth, 0, 0.25}},
	TwoSixteenthsEighthFigure:   {{model.Sixteenth, 0, 0.25}, {model.Sixteenth, 0, 0.25}, {model.Eighth, 0, 0.5}},
	DottedEighthSixteenthFigure: {{model.Eighth, 1, 0.75}, {model.Sixteenth, 0, 0.25}},
	TripletFigure:               {{model.Eighth, 0, third}, {model.Eighth, 0, third}, {model.Eighth, 0, third}},
	QuarterTripletFigure:        {{model.Quarter, 0, 2 * third}, {model.Quarter, 0, 2 * third}, {model.Quarter, 0, 2 * third}},
	QuintupletFigure:            {{model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}},
	SextupletFigure:             {{model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}},
}

var figureTags = map[Figure]model.TupletTag{
	TripletFigure:        model.Triplet,
	QuarterTripletFigure: model.Triplet,
	QuintupletFigure:     model.Quintuplet,
	SextupletFigure:      model.Sextuplet,
}

// Accent variants replace the rest draw for odd groupings when rests are disabled.
var accentVariants = map[Figure][][]slot{
	TripletFigure: {
		{{model.Eighth, 0, third}, {model.Eighth, 0, third}, {model.Eighth, 0, third}},
		{{model.Quarter, 0, 2 * third}, {model.Eighth, 0, third}},
		{{model.Eighth, 0, third}, {model.Quarter, 0, 2 * third}},
	},
	QuintupletFigure: {
		{{model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}},
		{{model.Quarter, 0, 2 * fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}},
		{{model.Eighth, 0, fifth}, {model.Quarter, 0, 2 * fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}},
		{{model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Quarter, 0, 2 * fifth}, {model.Eighth, 0, fifth}},
		{{model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Eighth, 0, fifth}, {model.Quarter, 0, 2 * fifth}},
		{{model.Quarter, 0, 2 * fifth}, {model.Quarter, 0, 2 * fifth}, {model.Eighth, 0, fifth}},
		{{model.Eighth, 0, fifth}, {model.Quarter, 0, 2 * fifth}, {model.Quarter, 0, 2 * fifth}},
	},
	SextupletFigure: {
		{{model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}},
		{{model.Eighth, 0, 2 * sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}},
		{{model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Eighth, 0, 2 * sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}},
		{{model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Eighth, 0, 2 * sixth}},
		{{model.Eighth, 0, 2 * sixth}, {model.Eighth, 0, 2 * sixth}, {model.Eighth, 0, 2 * sixth}},
		{{model.Eighth, 1, 3 * sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}, {model.Sixteenth, 0, sixth}},
	},
}

// Generator draws raw beat cells from a weighted pool of enabled figures.
type Generator struct {
	rng         *rand.Rand
	restPercent int
	figures     model.Figures
}

func NewGenerator(rng *rand.Rand, restPercent int, figures model.Figures) *Generator {
	return &Generator{rng: rng, restPercent: restPercent, figures: figures}
}

func (g *Generator) pool(twoBeats bool) []candidate {
	var res []candidate
	if g.figures.Quarters {
		res = append(res, candidate{QuarterFigure, 0.18})
	}
	if g.figures.Eighths {
		res = append(res, candidate{EighthsFigure, 0.38})
	}
	if g.figures.Sixteenths {
		res = append(res,
			candidate{FourSixteenthsFigure, 0.16},
			candidate{EighthTwoSixteenthsFigure, 0.16},
			candidate{TwoSixteenthsEighthFigure, 0.16},
			candidate{DottedEighthSixteenthFigure, 0.16},
		)
	}
	if g.figures.Triplets {
		res = append(res, candidate{TripletFigure, 0.20})
	}
	if twoBeats && g.figures.QuarterTriplets {
		res = append(res, candidate{QuarterTripletFigure, 0.15})
	}
	if twoBeats && g.figures.Quintuplets {
		res = append(res, candidate{QuintupletFigure, 0.15})
	}
	if g.figures.Sextuplets {
		res = append(res, candidate{SextupletFigure, 0.15})
	}
	return res
}

// Pick selects a figure by weighted draw. An empty pool yields a quarter.
func (g *Generator) Pick(twoBeats bool) Figure {
	pool := g.pool(twoBeats)
	if len(pool) == 0 {
		return QuarterFigure
	}
	var total float64
	for _, c := range pool {
		total += c.weight
	}
	r := g.rng.Float64() * total
	for _, c := range pool {
		if r < c.weight {
			return c.figure
		}
		r -= c.weight
	}
	return pool[len(pool)-1].figure
}

// Draw returns one raw, un-normalized beat cell.
func (g *Generator) Draw(twoBeats bool) model.BeatCell {
	return g.Build(g.Pick(twoBeats))
}

// Build realizes a figure, deciding rest or note for every slot.
func (g *Generator) Build(f Figure) model.BeatCell {
	slots := figureSlots[f]
	useAccents := false
	if variants, ok := accentVariants[f]; ok && g.restPercent == 0 {
		slots = variants[g.rng.Intn(len(variants))]
		useAccents = true
	}

	tag, tuplet := figureTags[f]
	events := make([]model.NoteEvent, 0, len(slots))
	for _, s := range slots {
		rest := !useAccents && g.rng.Intn(100) < g.restPercent
		var e model.NoteEvent
		switch {
		case tuplet && rest:
			e = model.TupletRest(s.duration, s.dots, s.length)
		case tuplet:
			e = model.TupletNote(s.duration, s.dots, s.length)
		case rest:
			e = model.Rest(s.duration, s.dots)
		default:
			e = model.Note(s.duration, s.dots)
		}
		events = append(events, e)
	}
	if tuplet {
		return model.NewTupletCell(tag, events...)
	}
	return model.NewCell(events...)
}
