package constants

import (
	"os"
	"strconv"
	"time"
)

func GetPort() string {
	port := os.Getenv("PORT")
	if port != "" {
		return port
	}
	return "8080"
}

// GetMidiOutPort returns the MIDI output port number, or -1 when unset.
func GetMidiOutPort() int {
	v := os.Getenv("MIDI_OUT_PORT")
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func GetLogLevel() string {
	level := os.Getenv("RHYTHMDRILL_LOG_LEVEL")
	if level != "" {
		return level
	}
	return "info"
}

// scheduler timing
const (
	LookaheadSeconds = 0.1
	TickInterval     = 25 * time.Millisecond
	FrameInterval    = 16 * time.Millisecond
	StartDelay       = 0.05
	EndBufferSeconds = 0.5
	ScrubFade        = 30 * time.Millisecond
	TempoDebounce    = 80 * time.Millisecond
)

// click voices
const (
	AccentFrequency    = 1500.0
	MetronomeFrequency = 1000.0
	NoteFrequency      = 800.0

	AccentGain    = 1.0
	MetronomeGain = 0.6
	NoteGain      = 0.8
)

// General MIDI percussion (channel 10, zero based 9).
const (
	DrumChannel  = 9
	AccentKey    = 76 // hi wood block
	MetronomeKey = 77 // low wood block
	SnareKey     = 38
	TicksPerBeat = 960
	NoteTicks    = 60
	HitLength    = 30 * time.Millisecond
)

// parameter ranges
const (
	MinMeasures    = 1
	MaxMeasures    = 32
	MinRestPercent = 0
	MaxRestPercent = 60
	MinTempo       = 40
	MaxTempo       = 220
	DefaultTempo   = 100
)
