package playback

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/timeline"
	"github.com/jsphweid/rhythmdrill/util"
	"github.com/pkg/errors"
)

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "stopped"
}

// Session is the state of one playback session. Generation is bumped whenever
// the look-ahead loop is started or cancelled, so callbacks from an older loop
// can tell they are stale.
type Session struct {
	SchedulerBeat float64 `json:"schedulerBeat"`
	VisualAnchor  float64 `json:"visualAnchorBeat"`
	Origin        float64 `json:"audioClockOrigin"`
	NextTime      float64 `json:"nextTime"`
	Tempo         float64 `json:"tempo"`
	State         State   `json:"-"`
	Generation    uint64  `json:"runGeneration"`
	Metronome     bool    `json:"metronome"`
}

func (s Session) SecondsPerBeat() float64 {
	return 60 / s.Tempo
}

type Config struct {
	Clock     Clock
	Timer     Timer
	Logger    *log.Logger
	Tempo     float64
	Metronome bool

	Lookahead    float64
	TickInterval time.Duration
	StartDelay   float64
	EndBuffer    float64
	Fade         time.Duration
}

func (c Config) withDefaults() Config {
	if c.Clock == nil {
		c.Clock = NewSystemClock()
	}
	if c.Timer == nil {
		c.Timer = TickerTimer{}
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Tempo == 0 {
		c.Tempo = constants.DefaultTempo
	}
	if c.Lookahead == 0 {
		c.Lookahead = constants.LookaheadSeconds
	}
	if c.TickInterval == 0 {
		c.TickInterval = constants.TickInterval
	}
	if c.StartDelay == 0 {
		c.StartDelay = constants.StartDelay
	}
	if c.EndBuffer == 0 {
		c.EndBuffer = constants.EndBufferSeconds
	}
	if c.Fade == 0 {
		c.Fade = constants.ScrubFade
	}
	return c
}

// Scheduler walks a timeline against a real-time clock and submits clicks
// slightly ahead of when they should sound.
type Scheduler struct {
	mu      sync.Mutex
	tl      *timeline.Timeline
	out     Output
	cfg     Config
	session Session
	cancel  func()
}

func NewScheduler(tl *timeline.Timeline, out Output, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		tl:  tl,
		out: out,
		cfg: cfg,
		session: Session{
			Tempo:     clampTempo(cfg.Tempo),
			Metronome: cfg.Metronome,
		},
	}
}

func clampTempo(bpm float64) float64 {
	return util.Clamp(bpm, constants.MinTempo, constants.MaxTempo)
}

// Play starts from the top (with a one-measure count-in when the metronome
// is on) or resumes a paused session.
func (s *Scheduler) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.session.State {
	case Playing:
		return nil
	case Paused:
		if err := s.resumeOutput(); err != nil {
			return err
		}
		now := s.cfg.Clock.Now()
		s.session.SchedulerBeat = s.session.VisualAnchor
		s.session.Origin = now
		s.session.NextTime = now
		s.session.State = Playing
		s.cfg.Logger.Debug("resume", "beat", s.session.VisualAnchor)
		s.startLoop()
		return nil
	}

	if err := s.resumeOutput(); err != nil {
		return err
	}
	var start float64
	if s.session.Metronome {
		start = -s.tl.MeasureAt(0).Length
	}
	now := s.cfg.Clock.Now()
	s.session.SchedulerBeat = start
	s.session.VisualAnchor = start
	s.session.Origin = now + s.cfg.StartDelay
	s.session.NextTime = s.session.Origin
	s.session.State = Playing
	s.cfg.Logger.Debug("play", "start", start, "tempo", s.session.Tempo)
	s.startLoop()
	return nil
}

func (s *Scheduler) resumeOutput() error {
	r, ok := s.out.(Resumer)
	if !ok {
		return nil
	}
	if err := r.Resume(); err != nil {
		return errors.Wrap(ErrAudioUnavailable, err.Error())
	}
	return nil
}

// Pause freezes the visual position and cancels the look-ahead loop.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.State != Playing {
		return
	}
	s.session.VisualAnchor = s.visualAt(s.cfg.Clock.Now())
	s.session.State = Paused
	s.stopLoop()
	s.cfg.Logger.Debug("pause", "beat", s.session.VisualAnchor)
}

// Stop ends the session. The next Play starts over.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLoop()
	s.session.State = Stopped
	s.session.SchedulerBeat = 0
	s.session.VisualAnchor = 0
	s.session.NextTime = 0
	s.session.Origin = 0
	s.cfg.Logger.Debug("stop")
}

// SetTempo changes tempo without moving the playhead or the next committed event.
func (s *Scheduler) SetTempo(bpm float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bpm = clampTempo(bpm)
	if s.session.State == Playing {
		now := s.cfg.Clock.Now()
		visual := s.visualAt(now)
		s.session.VisualAnchor = visual
		s.session.Origin = now
		s.session.NextTime = now + (s.session.SchedulerBeat-visual)*60/bpm
	}
	s.cfg.Logger.Debug("tempo", "from", s.session.Tempo, "to", bpm)
	s.session.Tempo = bpm
}

func (s *Scheduler) SetMetronome(on bool) {
	s.mu.Lock()
	s.session.Metronome = on
	s.mu.Unlock()
}

// Scrub jumps to a fraction of the exercise. A stopped session becomes paused
// at the target so the next Play continues from there.
func (s *Scheduler) Scrub(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := util.Clamp(fraction, 0, 1) * s.tl.TotalBeats
	now := s.cfg.Clock.Now()

	s.session.SchedulerBeat = target
	s.session.VisualAnchor = target
	s.session.Origin = now
	s.session.NextTime = now
	s.out.FadeIn(now, s.cfg.Fade)
	s.cfg.Logger.Debug("scrub", "beat", target)

	if s.session.State == Playing {
		s.startLoop()
		return
	}
	s.stopLoop()
	s.session.State = Paused
}

func (s *Scheduler) startLoop() {
	s.stopLoop()
	gen := s.session.Generation
	s.cancel = s.cfg.Timer.Every(s.cfg.TickInterval, func() { s.pass(gen) })
	s.schedule(s.cfg.Clock.Now())
}

func (s *Scheduler) stopLoop() {
	s.session.Generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) pass(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.session.Generation || s.session.State != Playing {
		return
	}
	s.schedule(s.cfg.Clock.Now())
}

// schedule submits everything due before now+lookahead. Must hold mu.
func (s *Scheduler) schedule(now float64) {
	spb := s.session.SecondsPerBeat()
	horizon := now + s.cfg.Lookahead
	for s.session.NextTime < horizon {
		pos := s.session.SchedulerBeat
		if pos >= s.tl.TotalBeats-util.Epsilon {
			s.session.SchedulerBeat = pos + 1
			s.session.NextTime += spb
			return
		}

		span := s.tl.MeasureAt(pos)
		grid := span.Signature.Grid()
		rel := pos - span.Start
		next := (math.Floor(rel/grid+util.Epsilon) + 1) * grid
		if next > span.Length {
			next = span.Length
		}
		step := next - rel

		if s.session.Metronome && util.NearWithin(rel, math.Round(rel), util.Epsilon) {
			e := Emission{Kind: Click, Frequency: constants.MetronomeFrequency, Gain: constants.MetronomeGain}
			if util.NearWithin(rel, 0, util.Epsilon) {
				e = Emission{Kind: Accent, Frequency: constants.AccentFrequency, Gain: constants.AccentGain}
			}
			e.At = s.session.NextTime
			e.Beat = pos
			s.emit(e)
		}

		for _, b := range s.tl.Between(pos, pos+step) {
			s.emit(Emission{
				Kind:      NoteClick,
				At:        s.session.NextTime + (b.Position-pos)*spb,
				Beat:      b.Position,
				Frequency: b.Frequency,
				Gain:      constants.NoteGain,
				Hand:      b.Hand,
			})
		}

		s.session.SchedulerBeat = span.Start + next
		s.session.NextTime += step * spb
	}
}

func (s *Scheduler) emit(e Emission) {
	e.Generation = s.session.Generation
	if err := s.out.Emit(e); err != nil {
		s.cfg.Logger.Warn("emission skipped", "kind", e.Kind, "beat", e.Beat, "err", err)
	}
}

func (s *Scheduler) visualAt(now float64) float64 {
	if s.session.State != Playing {
		return s.session.VisualAnchor
	}
	elapsed := util.Max(0, now-s.session.Origin)
	return s.session.VisualAnchor + elapsed/s.session.SecondsPerBeat()
}

// VisualBeat is the playhead position right now.
func (s *Scheduler) VisualBeat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visualAt(s.cfg.Clock.Now())
}

func (s *Scheduler) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.State
}

func (s *Scheduler) TotalBeats() float64 {
	return s.tl.TotalBeats
}

// Finished reports whether the playhead has run past the end plus the end buffer.
func (s *Scheduler) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.State != Playing {
		return false
	}
	visual := s.visualAt(s.cfg.Clock.Now())
	return visual >= s.tl.TotalBeats+s.cfg.EndBuffer/s.session.SecondsPerBeat()
}
