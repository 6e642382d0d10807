package notation

import (
	"fmt"
	"strings"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/playback"
	"github.com/jsphweid/rhythmdrill/util"
)

const (
	noteLine = iota
	stickingLine
	countLine
)

// Layout is a rendered text grid plus the geometry needed to place a playhead
// on it. Columns and bounds are in characters; rows in lines.
type Layout struct {
	Lines         []string
	NoteBeats     []float64
	NoteColumns   []int
	MeasureStarts []float64
	Measures      []playback.Bounds
	TotalBeats    float64
}

func (l *Layout) String() string {
	return strings.Join(l.Lines, "\n")
}

// Playhead maps beats onto this layout.
func (l *Layout) Playhead() (*playback.Playhead, error) {
	xs := make([]float64, len(l.NoteColumns))
	for i, c := range l.NoteColumns {
		xs[i] = float64(c)
	}
	return playback.NewPlayhead(l.NoteBeats, xs, l.MeasureStarts, l.Measures, l.TotalBeats)
}

type system struct {
	lines [3]strings.Builder
	col   int
}

func (s *system) mark(text string, all bool) {
	for i := range s.lines {
		if i == noteLine || all {
			s.lines[i].WriteString(text)
		} else {
			s.lines[i].WriteString(strings.Repeat(" ", len(text)))
		}
	}
	s.col += len(text)
}

func (s *system) event(cells [3]string) int {
	width := 0
	for _, c := range cells {
		width = util.Max(width, len(c))
	}
	start := s.col
	for i, c := range cells {
		s.lines[i].WriteString(c + strings.Repeat(" ", width-len(c)+1))
	}
	s.col += width + 1
	return start
}

// Text draws ex as a grid with perLine measures per system. Each system has a
// rhythm line, then a sticking line and a count line when any note carries
// one.
func Text(ex *model.Exercise, perLine int) (*Layout, error) {
	if err := Check(ex); err != nil {
		return nil, err
	}
	if perLine < 1 {
		perLine = 4
	}

	var sticking, counts bool
	ex.Walk(func(_ model.NoteRef, ev *model.NoteEvent) bool {
		sticking = sticking || ev.Sticking != model.NoHand
		counts = counts || ev.Count != ""
		return true
	})
	show := []int{noteLine}
	if sticking {
		show = append(show, stickingLine)
	}
	if counts {
		show = append(show, countLine)
	}

	l := &Layout{TotalBeats: ex.TotalBeats()}
	var sys *system
	var prev model.TimeSignature
	var start float64
	flush := func() {
		sys.mark("|", true)
		if len(l.Lines) > 0 {
			l.Lines = append(l.Lines, "")
		}
		for _, i := range show {
			l.Lines = append(l.Lines, strings.TrimRight(sys.lines[i].String(), " "))
		}
	}

	for mi, m := range ex.Measures {
		if mi%perLine == 0 {
			if sys != nil {
				flush()
			}
			sys = &system{}
		}
		top := float64(len(l.Lines))
		if mi >= perLine {
			top++
		}
		bounds := playback.Bounds{Top: top, Bottom: top + float64(len(show)-1), Left: float64(sys.col)}

		sys.mark("| ", true)
		if m.Signature != prev {
			sys.mark(m.Signature.String()+" ", false)
			prev = m.Signature
		}

		var local float64
		for _, c := range m.Beats {
			for _, g := range groups(c) {
				if g.tag != nil {
					open := fmt.Sprintf("%d[", g.tag.NoteCount)
					if g.local {
						open = fmt.Sprintf("%d(", g.tag.NoteCount)
					}
					sys.mark(open, false)
				}
				for _, ev := range g.events {
					token := durationName(ev)
					if ev.IsRest() {
						token = "r" + token
					}
					col := sys.event([3]string{token, string(ev.Sticking), ev.Count})
					if ev.IsNote() {
						l.NoteBeats = append(l.NoteBeats, start+local)
						l.NoteColumns = append(l.NoteColumns, col)
					}
					local += ev.Length
				}
				if g.tag != nil {
					if g.local {
						sys.mark(") ", false)
					} else {
						sys.mark("] ", false)
					}
				}
			}
		}

		bounds.Right = float64(sys.col)
		l.Measures = append(l.Measures, bounds)
		l.MeasureStarts = append(l.MeasureStarts, start)
		start += m.Signature.Beats()
	}
	flush()
	return l, nil
}
