package timeline

import (
	"testing"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quarters(sig model.TimeSignature, n int) model.Measure {
	m := model.Measure{Signature: sig}
	for i := 0; i < n; i++ {
		m.Beats = append(m.Beats, model.NewCell(model.Note(model.Quarter, 0)))
	}
	return m
}

func TestFlattenFourQuarters(t *testing.T) {
	ex := &model.Exercise{Measures: []model.Measure{quarters(model.FourFour, 4)}}
	tl := Flatten(ex)

	assert := assert.New(t)
	assert.Equal(4.0, tl.TotalBeats)
	assert.Equal([]float64{0, 1, 2, 3}, tl.Positions())
	for b := 0; b < 4; b++ {
		require.Len(t, tl.Buckets[b], 1)
		assert.Equal(0.0, tl.Buckets[b][0].Offset)
	}
}

func TestFlattenAnchorsMeasures(t *testing.T) {
	third := 2.0 / 3
	trip := model.NewTupletCell(model.Triplet,
		model.TupletNote(model.Quarter, 0, third), model.TupletNote(model.Quarter, 0, third), model.TupletNote(model.Quarter, 0, third))
	m := model.Measure{Signature: model.FourFour, Beats: []model.BeatCell{trip, model.Placeholder(), trip.Clone(), model.Placeholder()}}

	ex := &model.Exercise{}
	for i := 0; i < 50; i++ {
		ex.Measures = append(ex.Measures, m)
	}
	tl := Flatten(ex)
	positions := tl.Positions()
	require.Len(t, positions, 300)
	for i := 0; i < 50; i++ {
		first := positions[i*6]
		assert.Equal(t, float64(i*4), first, "measure %d", i)
	}
	assert.Equal(t, 200.0, tl.TotalBeats)
}

func TestFlattenSkipsRestsAndPlaceholders(t *testing.T) {
	m := model.Measure{Signature: model.ThreeFour, Beats: []model.BeatCell{
		model.NewCell(model.Rest(model.Eighth, 0), model.Note(model.Eighth, 0)),
		model.NewCell(model.Rest(model.Half, 0)),
		model.Placeholder(),
	}}
	tl := Flatten(&model.Exercise{Measures: []model.Measure{m, quarters(model.TwoFour, 2)}})
	assert.Equal(t, []float64{0.5, 3, 4}, tl.Positions())
	assert.Equal(t, 0.5, tl.Buckets[0][0].Offset)
}

func TestCellLengthSnapsTuplets(t *testing.T) {
	drifted := model.NewTupletCell(model.Triplet,
		model.TupletNote(model.Quarter, 0, 0.6666), model.TupletNote(model.Quarter, 0, 0.6666), model.TupletNote(model.Quarter, 0, 0.6666))
	assert.Equal(t, 2.0, CellLength(drifted))

	plain := model.NewCell(model.Note(model.Eighth, 0), model.Note(model.Eighth, 0))
	assert.Equal(t, 1.0, CellLength(plain))
}

func TestMeasureAt(t *testing.T) {
	ex := &model.Exercise{Measures: []model.Measure{quarters(model.SevenEight, 3), quarters(model.FourFour, 4)}}
	ex.Measures[0].Beats = append(ex.Measures[0].Beats, model.NewCell(model.Note(model.Eighth, 0)))
	tl := Flatten(ex)

	assert := assert.New(t)
	assert.Equal(Span{Start: 0, Length: 3.5, Signature: model.SevenEight}, tl.MeasureAt(1))
	assert.Equal(Span{Start: 3.5, Length: 4, Signature: model.FourFour}, tl.MeasureAt(3.5))
	assert.Equal(Span{Start: -3.5, Length: 3.5, Signature: model.SevenEight}, tl.MeasureAt(-1))
	assert.Equal(7.5, tl.MeasureAt(9).Start)
}

func TestBetween(t *testing.T) {
	ex := &model.Exercise{Measures: []model.Measure{quarters(model.FourFour, 4)}}
	tl := Flatten(ex)
	got := tl.Between(1, 3)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Position)
	assert.Equal(t, 2.0, got[1].Position)
	assert.Empty(t, tl.Between(-4, 0))
}
