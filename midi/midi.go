package midi

import (
	"bytes"
	"os"
	"sort"

	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	var blank smf.SMF

	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s, e = &blank, errors.Errorf("Error parsing midi file: %v", r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return &blank, errors.Wrap(err, "Error reading midi file")
	}
	return ReadMidi(dat)
}

func ReadMidi(dat []byte) (*smf.SMF, error) {
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return &smf.SMF{}, errors.Wrap(err, "Error parsing midi file")
	}
	return res, nil
}

// Onset is a note-on with its position in quarter-note beats.
type Onset struct {
	Beat     float64
	Channel  uint8
	Key      uint8
	Velocity uint8
}

// Meter is a time signature change.
type Meter struct {
	Beat float64
	Num  uint8
	Den  uint8
}

func resolution(s *smf.SMF) float64 {
	if tf, ok := s.TimeFormat.(smf.MetricTicks); ok {
		return float64(tf.Ticks4th())
	}
	return constants.TicksPerBeat
}

// Onsets lists every note-on of every track in time order.
func Onsets(s *smf.SMF) []Onset {
	tpq := resolution(s)
	var res []Onset
	for _, track := range s.Tracks {
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var ch, key, vel uint8
			if evt.Message.GetNoteOn(&ch, &key, &vel) && vel > 0 {
				res = append(res, Onset{Beat: float64(absTicks) / tpq, Channel: ch, Key: key, Velocity: vel})
			}
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Beat != res[j].Beat {
			return res[i].Beat < res[j].Beat
		}
		return res[i].Key < res[j].Key
	})
	return res
}

// Meters lists the time signature changes of the first track.
func Meters(s *smf.SMF) []Meter {
	if len(s.Tracks) == 0 {
		return nil
	}
	tpq := resolution(s)
	var res []Meter
	var absTicks uint64
	for _, evt := range s.Tracks[0] {
		absTicks += uint64(evt.Delta)
		var num, den uint8
		if evt.Message.GetMetaMeter(&num, &den) {
			res = append(res, Meter{Beat: float64(absTicks) / tpq, Num: num, Den: den})
		}
	}
	return res
}

// Tempo returns the first tempo of the file, or 0 when there is none.
func Tempo(s *smf.SMF) float64 {
	for _, track := range s.Tracks {
		for _, evt := range track {
			var bpm float64
			if evt.Message.GetMetaTempo(&bpm) {
				return bpm
			}
		}
	}
	return 0
}

// IsClick reports whether o is a metronome click rather than a rhythm note.
func IsClick(o Onset) bool {
	return o.Channel == constants.DrumChannel && (o.Key == constants.AccentKey || o.Key == constants.MetronomeKey)
}
