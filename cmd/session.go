package cmd

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/drill"
	"github.com/jsphweid/rhythmdrill/playback"
	"github.com/pkg/errors"
)

const (
	sendBuffer   = 256
	writeTimeout = 10 * time.Second
)

var (
	errSessionClosed = errors.New("session closed")
	errSendBlocked   = errors.New("send buffer full")
)

type clientOp struct {
	Op       string  `json:"op"`
	Bpm      float64 `json:"bpm,omitempty"`
	Fraction float64 `json:"fraction,omitempty"`
	On       bool    `json:"on,omitempty"`
}

type serverMsg struct {
	Type     string             `json:"type"`
	Session  string             `json:"session,omitempty"`
	Now      float64            `json:"now"`
	Beat     float64            `json:"beat"`
	State    string             `json:"state,omitempty"`
	Tempo    float64            `json:"tempo,omitempty"`
	Emission *playback.Emission `json:"emission,omitempty"`
	Snapshot *playback.Session  `json:"snapshot,omitempty"`
	At       float64            `json:"at,omitempty"`
	FadeMs   int64              `json:"fadeMs,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// session drives one scheduler for one WebSocket client. Sounds are sent to
// the client ahead of time, stamped with session clock seconds.
type session struct {
	id     string
	conn   *websocket.Conn
	clock  *playback.SystemClock
	sched  *playback.Scheduler
	logger *log.Logger
	send   chan serverMsg
	done   chan struct{}

	mu       sync.Mutex
	watching bool
}

type wsOutput struct {
	s *session
}

func (o wsOutput) Emit(e playback.Emission) error {
	return o.s.push(serverMsg{Type: "emission", Now: o.s.clock.Now(), Beat: e.Beat, Emission: &e})
}

func (o wsOutput) FadeIn(at float64, d time.Duration) {
	o.s.push(serverMsg{Type: "fade", Now: o.s.clock.Now(), At: at, FadeMs: d.Milliseconds()})
}

func newSession(conn *websocket.Conn, d *drill.Drill, logger *log.Logger) *session {
	s := &session{
		id:     uuid.New().String(),
		conn:   conn,
		clock:  playback.NewSystemClock(),
		logger: logger,
		send:   make(chan serverMsg, sendBuffer),
		done:   make(chan struct{}),
	}
	s.logger = logger.With("session", s.id)
	s.sched = playback.NewScheduler(d.Timeline(), wsOutput{s}, playback.Config{
		Clock:     s.clock,
		Logger:    s.logger,
		Tempo:     float64(d.Params.Tempo),
		Metronome: d.Params.Metronome,
	})
	return s
}

func (s *session) push(m serverMsg) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.send <- m:
		return nil
	default:
		return errSendBlocked
	}
}

func (s *session) pushState() {
	snap := s.sched.Snapshot()
	s.push(serverMsg{
		Type:     "state",
		Session:  s.id,
		Now:      s.clock.Now(),
		Beat:     s.sched.VisualBeat(),
		State:    snap.State.String(),
		Tempo:    snap.Tempo,
		Snapshot: &snap,
	})
}

func (s *session) pushError(err error) {
	s.push(serverMsg{Type: "error", Now: s.clock.Now(), Error: err.Error()})
}

func (s *session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		s.sched.Stop()
		close(s.done)
		cancel()
		s.conn.Close()
	}()
	go s.writeLoop(ctx)

	s.pushState()
	debounced := debounce.New(constants.TempoDebounce)
	for {
		var op clientOp
		if err := s.conn.ReadJSON(&op); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read failed", "err", err)
			}
			return
		}
		s.handle(ctx, op, debounced)
	}
}

func (s *session) handle(ctx context.Context, op clientOp, debounced func(func())) {
	switch op.Op {
	case "play":
		if err := s.sched.Play(); err != nil {
			s.pushError(err)
			break
		}
		s.watch(ctx)
	case "pause":
		s.sched.Pause()
	case "stop":
		s.sched.Stop()
	case "tempo":
		bpm := op.Bpm
		debounced(func() {
			s.sched.SetTempo(bpm)
			s.pushState()
		})
		return
	case "scrub":
		s.sched.Scrub(op.Fraction)
	case "metronome":
		s.sched.SetMetronome(op.On)
	default:
		s.pushError(errors.Errorf("unknown op %q", op.Op))
		return
	}
	s.pushState()
}

// watch streams the playhead at frame rate and stops the scheduler once it
// runs off the end.
func (s *session) watch(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watching {
		return
	}
	s.watching = true
	go func() {
		for {
			playback.Watchdog(ctx, s.sched, constants.FrameInterval, func(beat float64) {
				if s.sched.State() == playback.Playing {
					s.push(serverMsg{Type: "position", Now: s.clock.Now(), Beat: beat})
				}
			})
			s.mu.Lock()
			if ctx.Err() != nil || s.sched.State() == playback.Stopped {
				s.watching = false
				s.mu.Unlock()
				s.pushState()
				return
			}
			s.mu.Unlock()
		}
	}()
}

func (s *session) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(m); err != nil {
				s.logger.Debug("write failed", "err", err)
				s.conn.Close()
				return
			}
		}
	}
}
