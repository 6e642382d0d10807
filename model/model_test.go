package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalLength(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(2.0, CanonicalLength(Half, 0))
	assert.Equal(3.0, CanonicalLength(Half, 1))
	assert.Equal(1.5, CanonicalLength(Quarter, 1))
	assert.Equal(0.75, CanonicalLength(Eighth, 1))
	assert.Equal(0.25, CanonicalLength(Sixteenth, 0))
	assert.Equal(0.0, CanonicalLength("whole", 0))
}

func TestHand(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(Left, Right.Other())
	assert.Equal(Right, Left.Other())
	assert.Equal(NoHand, NoHand.Other())
	assert.False(NoHand.Valid())
	assert.False(Hand("X").Valid())
}

func TestTimeSignature(t *testing.T) {
	assert := assert.New(t)
	for _, ts := range TimeSignatures {
		parsed, err := ParseTimeSignature(" " + ts.String() + " ")
		assert.NoError(err)
		assert.Equal(ts, parsed)
	}
	_, err := ParseTimeSignature("9/8")
	assert.Error(err)

	assert.Equal(3.5, SevenEight.Beats())
	assert.Equal(0.5, SevenEight.Grid())
	assert.Equal(5.0, FiveFour.Beats())
	assert.Equal(1.0, FiveFour.Grid())

	data, err := json.Marshal(Measure{Signature: SixFour})
	require.NoError(t, err)
	assert.JSONEq(`{"timeSignature":"6/4","beats":null}`, string(data))

	var m Measure
	require.NoError(t, json.Unmarshal([]byte(`{"timeSignature":"7/8","beats":[]}`), &m))
	assert.Equal(SevenEight, m.Signature)
	assert.Error(json.Unmarshal([]byte(`{"timeSignature":"11/16"}`), &m))
}

func TestCell(t *testing.T) {
	third := 1.0 / 3
	trip := NewTupletCell(Triplet, TupletNote(Quarter, 0, 2*third), TupletNote(Quarter, 0, 2*third), TupletRest(Quarter, 0, 2*third))

	assert := assert.New(t)
	assert.True(trip.IsTwoBeat())
	assert.True(trip.Is(Triplet))
	assert.False(trip.Is(Sextuplet))
	assert.True(trip.HasNotes())
	assert.False(trip.AllRests())

	assert.True(Placeholder().IsPlaceholder())
	assert.False(Placeholder().AllRests())
	assert.True(NewCell(Rest(Quarter, 0)).IsQuarterRest())
	assert.False(NewCell(Rest(Eighth, 0), Rest(Eighth, 0)).IsQuarterRest())
	assert.True(NewCell(Rest(Eighth, 0), Rest(Eighth, 0)).AllRests())

	clone := trip.Clone()
	clone.Tuplet.NoteCount = 9
	clone.Events[0].Kind = RestKind
	assert.Equal(3, trip.Tuplet.NoteCount)
	assert.True(trip.Events[0].IsNote())

	local := Triplet
	ev := TupletNote(Sixteenth, 0, 1.0/6)
	ev.Local = &local
	c := NewCell(Note(Eighth, 0), ev, ev, ev)
	assert.True(c.HasLocalTuplet())
	assert.InDelta(1.0, c.Length(), 1e-9)
	cc := c.Clone()
	cc.Events[1].Local.NoteCount = 7
	assert.Equal(3, c.Events[1].Local.NoteCount)
}

func TestExerciseWalk(t *testing.T) {
	ex := &Exercise{Measures: []Measure{
		{Signature: TwoFour, Beats: []BeatCell{
			NewCell(Rest(Eighth, 0), Note(Eighth, 0)),
			NewCell(Note(Quarter, 0)),
		}},
		{Signature: ThreeFour, Beats: []BeatCell{
			NewCell(Note(Half, 0)),
			Placeholder(),
			NewCell(Note(Sixteenth, 0), Rest(Eighth, 1)),
		}},
	}}
	ex.Measures[1].Beats[0].Events[0].Sticking = Left

	assert := assert.New(t)
	assert.Equal(5.0, ex.TotalBeats())
	assert.Equal([]float64{0.5, 1, 2, 4}, ex.NoteOffsets())
	assert.Equal([]Hand{NoHand, NoHand, Left, NoHand}, ex.Stickings())
	assert.Equal(4, ex.NoteCount())

	var visited int
	ex.Walk(func(ref NoteRef, ev *NoteEvent) bool {
		visited++
		return ref.Measure == 0
	})
	assert.Equal(4, visited)
}

func TestParamsClamp(t *testing.T) {
	p := Params{
		Measures:       0,
		RestPercent:    90,
		TimeSignatures: []string{"13/8", "5/4", "nope"},
		Tempo:          300,
		Sticking:       "random",
		LeadHand:       "both",
	}.Clamp()

	assert := assert.New(t)
	assert.Equal(1, p.Measures)
	assert.Equal(60, p.RestPercent)
	assert.Equal([]string{"5/4"}, p.TimeSignatures)
	assert.Equal(220, p.Tempo)
	assert.Equal(Natural, p.Sticking)
	assert.Equal(Right, p.LeadHand)

	p.TimeSignatures = nil
	p = p.Clamp()
	assert.Equal([]string{"4/4"}, p.TimeSignatures)
	assert.Equal([]TimeSignature{FourFour}, Params{}.Signatures())
	assert.Equal(DefaultParams(), DefaultParams().Clamp())
}

func TestParamsJSON(t *testing.T) {
	var p Params
	require.NoError(t, json.Unmarshal([]byte(`{"measures":3,"allowQuintuplets":true,"tempoBpm":90,"leadHand":"L"}`), &p))
	assert := assert.New(t)
	assert.Equal(3, p.Measures)
	assert.True(p.Quintuplets)
	assert.Equal(90, p.Tempo)
	assert.Equal(Left, p.LeadHand)
}
