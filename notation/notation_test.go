package notation

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/rhythm"
	"github.com/jsphweid/rhythmdrill/sticking"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourQuarters() model.Measure {
	m := model.Measure{Signature: model.FourFour}
	for i := 0; i < 4; i++ {
		m.Beats = append(m.Beats, model.NewCell(model.Note(model.Quarter, 0)))
	}
	return m
}

func TestTextQuarters(t *testing.T) {
	ex := &model.Exercise{Measures: []model.Measure{fourQuarters()}}
	sticking.Assign(ex, model.Doubles, model.Right, true)
	AnnotateCounts(ex, true)

	l, err := Text(ex, 4)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]string{
		"| 4/4 4 4 4 4 |",
		"|     R R L L |",
		"|     1 2 3 4 |",
	}, l.Lines)
	assert.Equal([]int{6, 8, 10, 12}, l.NoteColumns)
	assert.Equal([]float64{0, 1, 2, 3}, l.NoteBeats)
	require.Len(t, l.Measures, 1)
	assert.Equal(0.0, l.Measures[0].Left)
	assert.Equal(14.0, l.Measures[0].Right)
	assert.Equal(2.0, l.Measures[0].Bottom)
}

func TestTextOmitsEmptyLines(t *testing.T) {
	ex := &model.Exercise{Measures: []model.Measure{{Signature: model.TwoFour, Beats: []model.BeatCell{
		model.NewTupletCell(model.Triplet,
			model.TupletNote(model.Eighth, 0, 1.0/3), model.TupletRest(model.Eighth, 0, 1.0/3), model.TupletNote(model.Eighth, 0, 1.0/3)),
		model.NewCell(model.Rest(model.Quarter, 0)),
	}}}}

	l, err := Text(ex, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"| 2/4 3[8 r8 8 ] r4 |"}, l.Lines)
	assert.Equal(t, []int{8, 13}, l.NoteColumns)
}

func TestTextSystems(t *testing.T) {
	ex := &model.Exercise{}
	for i := 0; i < 3; i++ {
		ex.Measures = append(ex.Measures, fourQuarters())
	}
	l, err := Text(ex, 2)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal([]string{
		"| 4/4 4 4 4 4 | 4 4 4 4 |",
		"",
		"| 4 4 4 4 |",
	}, l.Lines)
	assert.Equal(0.0, l.Measures[0].Top)
	assert.Equal(0.0, l.Measures[1].Top)
	assert.Equal(2.0, l.Measures[2].Top)
	assert.Equal(14.0, l.Measures[1].Left)
	assert.Equal([]float64{0, 4, 8}, l.MeasureStarts)

	p, err := l.Playhead()
	require.NoError(t, err)
	assert.Equal(16.0, p.X(4))
	assert.Equal(l.Measures[2], p.Row(9))
}

func TestTextLocalTuplet(t *testing.T) {
	tag := model.Triplet
	ev := model.TupletNote(model.Sixteenth, 0, 1.0/6)
	ev.Local = &tag
	ex := &model.Exercise{Measures: []model.Measure{{Signature: model.TwoFour, Beats: []model.BeatCell{
		model.NewCell(model.Note(model.Eighth, 0), ev, ev, ev),
		model.NewCell(model.Rest(model.Quarter, 0)),
	}}}}
	l, err := Text(ex, 4)
	require.NoError(t, err)
	assert.Equal(t, "| 2/4 8 3(16 16 16 ) r4 |", l.Lines[0])
}

func TestCheckRejectsBrokenMeasures(t *testing.T) {
	ex := &model.Exercise{Measures: []model.Measure{{Signature: model.ThreeFour, Beats: fourQuarters().Beats}}}
	_, err := Text(ex, 4)
	assert.True(t, errors.Is(err, model.ErrRenderingUnavailable))

	_, err = Lily(&model.Exercise{}, 100)
	assert.True(t, errors.Is(err, model.ErrRenderingUnavailable))

	bad := &model.Exercise{Measures: []model.Measure{fourQuarters()}}
	bad.Measures[0].Beats[0].Events[0].Duration = "whole"
	assert.True(t, errors.Is(Check(bad), model.ErrRenderingUnavailable))
}

func TestLily(t *testing.T) {
	third := 1.0 / 3
	ex := &model.Exercise{Measures: []model.Measure{
		fourQuarters(),
		{Signature: model.TwoFour, Beats: []model.BeatCell{
			model.NewTupletCell(model.Triplet, model.TupletNote(model.Quarter, 0, 2*third), model.TupletNote(model.Quarter, 0, 2*third), model.TupletRest(model.Quarter, 0, 2*third)),
			model.Placeholder(),
		}},
		{Signature: model.TwoFour, Beats: []model.BeatCell{
			model.NewCell(model.Rest(model.Sixteenth, 0), model.Note(model.Eighth, 1)),
			model.NewCell(model.Rest(model.Quarter, 0)),
		}},
	}}
	sticking.Assign(ex, model.Alternate, model.Right, true)
	AnnotateCounts(ex, true)

	src, err := Lily(ex, 100)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Contains(src, `\tempo 4 = 100`)
	assert.Contains(src, `\time 4/4 sn4^"R"_"1" sn4^"L"_"2" sn4^"R"_"3" sn4^"L"_"4" |`)
	assert.Contains(src, `\time 2/4 \tuplet 3/2 { sn4^"R"_"1" sn4^"L"_"trip" r4 } |`)
	assert.Contains(src, `    r16 sn8.^"R"_"e" r4 |`)
	assert.Equal(2, strings.Count(src, `\time`))
}

func TestRenderGeneratedExercises(t *testing.T) {
	p := model.DefaultParams()
	p.Measures = 12
	p.RestPercent = 30
	p.TimeSignatures = []string{"2/4", "3/4", "4/4", "5/4", "6/4", "7/8"}
	p.Figures = model.Figures{Quarters: true, Eighths: true, Sixteenths: true, Triplets: true, QuarterTriplets: true, Quintuplets: true, Sextuplets: true}

	for seed := int64(1); seed <= 20; seed++ {
		ex := rhythm.Generate(p, rand.New(rand.NewSource(seed)))
		sticking.Assign(ex, model.Natural, model.Right, true)
		AnnotateCounts(ex, true)

		l, err := Text(ex, 4)
		require.NoError(t, err, "seed %d", seed)
		assert.Len(t, l.NoteColumns, ex.NoteCount(), "seed %d", seed)
		_, err = l.Playhead()
		require.NoError(t, err, "seed %d", seed)

		src, err := Lily(ex, 100)
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, len(ex.Measures), strings.Count(src, " |\n"), "seed %d", seed)
	}
}
