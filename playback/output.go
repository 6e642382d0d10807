package playback

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/rhythmdrill/model"
	"github.com/pkg/errors"
)

// ErrAudioUnavailable is returned when the output device cannot be opened or resumed.
var ErrAudioUnavailable = errors.New("audio output unavailable")

type Kind string

const (
	Accent    Kind = "accent"
	Click     Kind = "click"
	NoteClick Kind = "note"
)

// Emission is one sound submitted ahead of time. At is in clock seconds.
type Emission struct {
	Kind       Kind       `json:"kind"`
	At         float64    `json:"at"`
	Beat       float64    `json:"beat"`
	Frequency  float64    `json:"frequency"`
	Gain       float64    `json:"gain"`
	Hand       model.Hand `json:"hand,omitempty"`
	Generation uint64     `json:"generation"`
}

// Output schedules sounds at absolute times. Submitted sounds cannot be revoked.
type Output interface {
	Emit(e Emission) error
	FadeIn(at float64, d time.Duration)
}

// Resumer is implemented by outputs whose device must be woken before playback.
type Resumer interface {
	Resume() error
}

// Recorder keeps every emission in memory.
type Recorder struct {
	mu        sync.Mutex
	emissions []Emission
	fades     []float64
}

func (r *Recorder) Emit(e Emission) error {
	r.mu.Lock()
	r.emissions = append(r.emissions, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) FadeIn(at float64, _ time.Duration) {
	r.mu.Lock()
	r.fades = append(r.fades, at)
	r.mu.Unlock()
}

func (r *Recorder) Emissions() []Emission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emission(nil), r.emissions...)
}

func (r *Recorder) Fades() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.fades...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.emissions = nil
	r.fades = nil
	r.mu.Unlock()
}

// LogOutput writes emissions to a logger instead of a device.
type LogOutput struct {
	Logger *log.Logger
}

func (o LogOutput) Emit(e Emission) error {
	o.Logger.Info("emit", "kind", e.Kind, "beat", e.Beat, "at", e.At, "hand", e.Hand)
	return nil
}

func (o LogOutput) FadeIn(at float64, d time.Duration) {
	o.Logger.Debug("fade in", "at", at, "duration", d)
}
