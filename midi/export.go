package midi

import (
	"io"
	"math"

	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/model"
	"github.com/jsphweid/rhythmdrill/util"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type ExportOptions struct {
	Tempo     float64
	Metronome bool
}

type hit struct {
	tick uint32
	key  uint8
	vel  uint8
}

func velocity(gain float64) uint8 {
	return uint8(math.Round(util.Clamp(gain, 0, 1) * 127))
}

func toTicks(beat float64) uint32 {
	return uint32(math.Round(beat * constants.TicksPerBeat))
}

// Build turns ex into a type 1 file: a conductor track with tempo and meter
// changes, the rhythm on the General MIDI snare, and optionally the metronome
// on wood blocks.
func Build(ex *model.Exercise, opts ExportOptions) (*smf.SMF, error) {
	if opts.Tempo <= 0 {
		opts.Tempo = constants.DefaultTempo
	}
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(constants.TicksPerBeat)
	end := toTicks(ex.TotalBeats())

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(opts.Tempo))
	var prev model.TimeSignature
	var last uint32
	var start float64
	for _, m := range ex.Measures {
		if m.Signature != prev {
			at := toTicks(start)
			conductor.Add(at-last, smf.MetaMeter(uint8(m.Signature.Num), uint8(m.Signature.Den)))
			last = at
			prev = m.Signature
		}
		start += m.Signature.Beats()
	}
	conductor.Close(end - last)
	if err := sm.Add(conductor); err != nil {
		return nil, errors.Wrap(err, "adding conductor track")
	}

	var notes []hit
	ex.Walk(func(ref model.NoteRef, ev *model.NoteEvent) bool {
		if ev.IsNote() {
			gain := constants.NoteGain
			if ev.Sticking == model.Left {
				gain *= 0.9
			}
			notes = append(notes, hit{tick: toTicks(ref.Beat), key: constants.SnareKey, vel: velocity(gain)})
		}
		return true
	})
	if err := addHits(sm, notes, end); err != nil {
		return nil, errors.Wrap(err, "adding rhythm track")
	}

	if opts.Metronome {
		var clicks []hit
		start = 0
		for _, m := range ex.Measures {
			for b := 0.0; b < m.Signature.Beats()-util.Epsilon; b++ {
				h := hit{tick: toTicks(start + b), key: constants.MetronomeKey, vel: velocity(constants.MetronomeGain)}
				if b == 0 {
					h.key, h.vel = constants.AccentKey, velocity(constants.AccentGain)
				}
				clicks = append(clicks, h)
			}
			start += m.Signature.Beats()
		}
		if err := addHits(sm, clicks, end); err != nil {
			return nil, errors.Wrap(err, "adding metronome track")
		}
	}
	return sm, nil
}

func addHits(sm *smf.SMF, hits []hit, end uint32) error {
	var track smf.Track
	var last uint32
	for _, h := range hits {
		track.Add(h.tick-last, gomidi.NoteOn(constants.DrumChannel, h.key, h.vel))
		track.Add(constants.NoteTicks, gomidi.NoteOff(constants.DrumChannel, h.key))
		last = h.tick + constants.NoteTicks
	}
	var tail uint32
	if end > last {
		tail = end - last
	}
	track.Close(tail)
	return sm.Add(track)
}

// Export writes ex as a Standard MIDI File.
func Export(ex *model.Exercise, opts ExportOptions, w io.Writer) error {
	sm, err := Build(ex, opts)
	if err != nil {
		return err
	}
	_, err = sm.WriteTo(w)
	return errors.Wrap(err, "writing midi")
}
