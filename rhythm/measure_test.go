package rhythm

import (
	"testing"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var everyFigure = model.Figures{
	Quarters: true, Eighths: true, Sixteenths: true, Triplets: true,
	QuarterTriplets: true, Quintuplets: true, Sextuplets: true,
}

var everySignature = []string{"2/4", "3/4", "4/4", "5/4", "6/4", "7/8"}

func TestEmptyPoolFallsBackToQuarter(t *testing.T) {
	g := NewGenerator(NewRand(7), 0, model.Figures{})
	assert.Equal(t, QuarterFigure, g.Pick(true))
	assert.Equal(t, model.NewCell(model.Note(model.Quarter, 0)), g.Draw(true))
}

func TestTwoBeatFiguresNeedTwoBeats(t *testing.T) {
	g := NewGenerator(NewRand(3), 30, model.Figures{QuarterTriplets: true, Quintuplets: true})
	for i := 0; i < 100; i++ {
		assert.Equal(t, QuarterFigure, g.Pick(false))
		assert.True(t, g.Pick(true).TwoBeat())
	}
}

func TestNormalizedCellLengths(t *testing.T) {
	for seed := int64(1); seed <= 300; seed++ {
		rng := NewRand(seed)
		g := NewGenerator(rng, int(seed%61), everyFigure)
		raw := g.Draw(true)
		cell := Normalize(raw)
		length := cell.Length()
		if cell.IsTwoBeat() {
			assert.InDelta(t, 2.0, length, 1e-6, "seed %d", seed)
		} else {
			assert.InDelta(t, 1.0, length, 1e-6, "seed %d", seed)
		}
		assert.InDelta(t, raw.Length(), length, 1e-6, "seed %d", seed)
	}
}

func TestAccentVariantsWithoutRests(t *testing.T) {
	g := NewGenerator(NewRand(11), 0, everyFigure)
	for _, f := range []Figure{TripletFigure, QuintupletFigure, SextupletFigure} {
		for i := 0; i < 20; i++ {
			cell := g.Build(f)
			for _, e := range cell.Events {
				assert.True(t, e.IsNote())
			}
		}
	}
}

func TestMeasuresMatchTheirSignature(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		p := model.Params{
			Measures:       8,
			RestPercent:    int(seed % 61),
			TimeSignatures: everySignature,
			Figures:        everyFigure,
		}
		ex := Generate(p, NewRand(seed))
		require.Len(t, ex.Measures, 8)
		for i, m := range ex.Measures {
			assert.InDelta(t, m.Signature.Beats(), m.Length(), 1e-6, "seed %d measure %d", seed, i)
			for j, c := range m.Beats {
				if c.IsPlaceholder() {
					continue
				}
				l := c.Length()
				ok := l > 0.5-1e-6 && l < 3+1e-6
				assert.True(t, ok, "seed %d measure %d cell %d length %v", seed, i, j, l)
			}
		}
	}
}

func TestZeroRestPercentNeverSilent(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		p := model.Params{Measures: 6, RestPercent: 0, TimeSignatures: everySignature, Figures: everyFigure}
		ex := Generate(p, NewRand(seed))
		for _, m := range ex.Measures {
			assert.True(t, m.HasNotes())
		}
	}
}

func TestAllQuartersMeasure(t *testing.T) {
	p := model.Params{Measures: 1, RestPercent: 0, TimeSignatures: []string{"4/4"}, Figures: model.Figures{Quarters: true}}
	ex := Generate(p, NewRand(1))
	require.Len(t, ex.Measures, 1)
	m := ex.Measures[0]
	assert.Equal(t, model.FourFour, m.Signature)
	require.Len(t, m.Beats, 4)
	for _, c := range m.Beats {
		assert.Equal(t, model.NewCell(model.Note(model.Quarter, 0)), c)
	}
}

func TestSilentMeasuresAreForceFilled(t *testing.T) {
	// Quarter figures with every slot a rest can never produce a note.
	a := NewAssembler(NewRand(5), model.Params{RestPercent: 100, TimeSignatures: []string{"4/4"}, Figures: model.Figures{Quarters: true}})
	m := a.Measure()
	assert.Equal(t, 1, a.Degenerate)
	assert.Equal(t, ForceFill(model.FourFour), m)
	assert.InDelta(t, 4.0, m.Length(), 1e-9)
}

func TestForceFillEighthMeter(t *testing.T) {
	m := ForceFill(model.SevenEight)
	assert.Len(t, m.Beats, 4)
	assert.InDelta(t, 3.5, m.Length(), 1e-9)
	assert.Equal(t, model.Eighth, m.Beats[3].Events[0].Duration)
}

func TestCondense(t *testing.T) {
	q := model.NewCell(model.Rest(model.Quarter, 0))
	n := model.NewCell(model.Note(model.Quarter, 0))
	cases := []struct {
		name string
		in   []model.BeatCell
		want []model.BeatCell
	}{
		{"pair", []model.BeatCell{q, q, n, n}, []model.BeatCell{model.NewCell(model.Rest(model.Half, 0)), model.Placeholder(), n, n}},
		{"three", []model.BeatCell{n, q, q, q}, []model.BeatCell{n, model.NewCell(model.Rest(model.Half, 1)), model.Placeholder(), model.Placeholder()}},
		{"four", []model.BeatCell{q, q, q, q}, []model.BeatCell{model.NewCell(model.Rest(model.Half, 0)), model.Placeholder(), model.NewCell(model.Rest(model.Half, 0)), model.Placeholder()}},
		{"single", []model.BeatCell{q, n, q, n}, []model.BeatCell{q, n, q, n}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Condense(model.Measure{Signature: model.FourFour, Beats: c.in})
			assert.Equal(t, c.want, got.Beats)
			assert.InDelta(t, 4.0, got.Length(), 1e-9)
		})
	}
}

func TestHalfBeatFiller(t *testing.T) {
	rng := NewRand(9)
	for i := 0; i < 100; i++ {
		assert.InDelta(t, 0.5, HalfBeatFiller(rng).Length(), 1e-9)
	}
}
