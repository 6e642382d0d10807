package model

import "github.com/pkg/errors"

// ErrRenderingUnavailable is returned when an exercise cannot be turned into notation.
var ErrRenderingUnavailable = errors.New("notation rendering unavailable")

type Kind string

const (
	NoteKind Kind = "note"
	RestKind Kind = "rest"
)

type Duration string

const (
	Half      Duration = "half"
	Quarter   Duration = "quarter"
	Eighth    Duration = "eighth"
	Sixteenth Duration = "sixteenth"
)

// Beats is the undotted length of d in quarter-note beats.
func (d Duration) Beats() float64 {
	switch d {
	case Half:
		return 2
	case Quarter:
		return 1
	case Eighth:
		return 0.5
	case Sixteenth:
		return 0.25
	}
	return 0
}

// CanonicalLength is the length implied by a duration and dot count.
func CanonicalLength(d Duration, dots int) float64 {
	length := d.Beats()
	add := length / 2
	for i := 0; i < dots; i++ {
		length += add
		add /= 2
	}
	return length
}

type Hand string

const (
	NoHand Hand = ""
	Right  Hand = "R"
	Left   Hand = "L"
)

func (h Hand) Other() Hand {
	switch h {
	case Right:
		return Left
	case Left:
		return Right
	}
	return NoHand
}

func (h Hand) Valid() bool {
	return h == Right || h == Left
}

// TupletTag marks NoteCount notes played in the time of NotesOccupied.
type TupletTag struct {
	NoteCount     int `json:"noteCount"`
	NotesOccupied int `json:"notesOccupied"`
}

var (
	Triplet    = TupletTag{NoteCount: 3, NotesOccupied: 2}
	Quintuplet = TupletTag{NoteCount: 5, NotesOccupied: 4}
	Sextuplet  = TupletTag{NoteCount: 6, NotesOccupied: 4}
)

type NoteEvent struct {
	Kind     Kind     `json:"kind"`
	Duration Duration `json:"duration"`
	Dots     int      `json:"dots,omitempty"`
	Length   float64  `json:"beatLength"`
	Sticking Hand     `json:"sticking,omitempty"`
	Count    string   `json:"count,omitempty"`

	// Local marks a bracket-less tuplet fragment inside an otherwise untagged cell.
	Local *TupletTag `json:"localTuplet,omitempty"`
}

func (e NoteEvent) IsNote() bool {
	return e.Kind == NoteKind
}

func (e NoteEvent) IsRest() bool {
	return e.Kind == RestKind
}

func Note(d Duration, dots int) NoteEvent {
	return NoteEvent{Kind: NoteKind, Duration: d, Dots: dots, Length: CanonicalLength(d, dots)}
}

func Rest(d Duration, dots int) NoteEvent {
	return NoteEvent{Kind: RestKind, Duration: d, Dots: dots, Length: CanonicalLength(d, dots)}
}

// TupletNote is a note whose length is scaled by its enclosing tuplet.
func TupletNote(d Duration, dots int, length float64) NoteEvent {
	return NoteEvent{Kind: NoteKind, Duration: d, Dots: dots, Length: length}
}

func TupletRest(d Duration, dots int, length float64) NoteEvent {
	return NoteEvent{Kind: RestKind, Duration: d, Dots: dots, Length: length}
}
