package notation

import (
	"fmt"
	"strings"

	"github.com/jsphweid/rhythmdrill/model"
)

const lilyVersion = "2.24.0"

// Lily writes ex as LilyPond source on a one-line drum staff. Sticking goes
// above the staff and counts below.
func Lily(ex *model.Exercise, tempo int) (string, error) {
	if err := Check(ex); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\version %q\n\n", lilyVersion)
	b.WriteString("\\new DrumStaff \\with {\n")
	b.WriteString("  \\override StaffSymbol.line-count = #1\n")
	b.WriteString("  drumStyleTable = #percussion-style\n")
	b.WriteString("} {\n  \\drummode {\n")
	if tempo > 0 {
		fmt.Fprintf(&b, "    \\tempo 4 = %d\n", tempo)
	}

	var prev model.TimeSignature
	for _, m := range ex.Measures {
		b.WriteString("    ")
		if m.Signature != prev {
			fmt.Fprintf(&b, "\\time %s ", m.Signature)
			prev = m.Signature
		}
		var tokens []string
		for _, c := range m.Beats {
			for _, g := range groups(c) {
				tokens = append(tokens, lilyGroup(g))
			}
		}
		b.WriteString(strings.Join(tokens, " "))
		b.WriteString(" |\n")
	}
	b.WriteString("    \\bar \"|.\"\n  }\n}\n")
	return b.String(), nil
}

func lilyGroup(g group) string {
	events := make([]string, len(g.events))
	for i, ev := range g.events {
		events[i] = lilyEvent(ev)
	}
	body := strings.Join(events, " ")
	if g.tag == nil {
		return body
	}
	tuplet := fmt.Sprintf("\\tuplet %d/%d { %s }", g.tag.NoteCount, g.tag.NotesOccupied, body)
	if g.local {
		return "\\once \\omit TupletBracket \\once \\omit TupletNumber " + tuplet
	}
	return tuplet
}

func lilyEvent(ev model.NoteEvent) string {
	if ev.IsRest() {
		return "r" + durationName(ev)
	}
	s := "sn" + durationName(ev)
	if ev.Sticking != model.NoHand {
		s += fmt.Sprintf("^%q", string(ev.Sticking))
	}
	if ev.Count != "" {
		s += fmt.Sprintf("_%q", ev.Count)
	}
	return s
}
