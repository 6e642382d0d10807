package midi

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/playback"
	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const (
	volumeController = 7
	allNotesOff      = 123
	fullVolume       = 100
	fadeSteps        = 6
)

var ErrClosed = errors.New("midi output closed")

// Output plays emissions on a MIDI port. Emissions are held on timers until
// their clock time comes round.
type Output struct {
	mu      sync.Mutex
	send    func(msg gomidi.Message) error
	port    drivers.Out
	clock   playback.Clock
	logger  *log.Logger
	pending map[*time.Timer]struct{}
	closed  bool
}

func NewOutput(send func(msg gomidi.Message) error, clock playback.Clock, logger *log.Logger) *Output {
	return &Output{
		send:    send,
		clock:   clock,
		logger:  logger,
		pending: make(map[*time.Timer]struct{}),
	}
}

// OpenPort opens output port n of the registered driver.
func OpenPort(n int, clock playback.Clock, logger *log.Logger) (*Output, error) {
	port, err := gomidi.OutPort(n)
	if err != nil {
		return nil, errors.Wrap(playback.ErrAudioUnavailable, err.Error())
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, errors.Wrap(playback.ErrAudioUnavailable, err.Error())
	}
	o := NewOutput(send, clock, logger)
	o.port = port
	logger.Info("opened midi output", "port", port.String())
	return o, nil
}

// Ports lists the output ports of the registered driver.
func Ports() []string {
	var res []string
	for _, p := range gomidi.GetOutPorts() {
		res = append(res, p.String())
	}
	return res
}

func key(k playback.Kind) uint8 {
	switch k {
	case playback.Accent:
		return constants.AccentKey
	case playback.Click:
		return constants.MetronomeKey
	}
	return constants.SnareKey
}

func (o *Output) at(when float64, fn func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return ErrClosed
	}
	delay := time.Duration((when - o.clock.Now()) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		o.mu.Lock()
		delete(o.pending, t)
		closed := o.closed
		o.mu.Unlock()
		if !closed {
			fn()
		}
	})
	o.pending[t] = struct{}{}
	return nil
}

func (o *Output) transmit(msg gomidi.Message) {
	if err := o.send(msg); err != nil {
		o.logger.Warn("midi send failed", "msg", msg.String(), "err", err)
	}
}

func (o *Output) Emit(e playback.Emission) error {
	k, vel := key(e.Kind), velocity(e.Gain)
	return o.at(e.At, func() {
		o.transmit(gomidi.NoteOn(constants.DrumChannel, k, vel))
		time.AfterFunc(constants.HitLength, func() {
			o.transmit(gomidi.NoteOff(constants.DrumChannel, k))
		})
	})
}

// FadeIn ramps channel volume from silence back to full over d.
func (o *Output) FadeIn(at float64, d time.Duration) {
	step := d.Seconds() / fadeSteps
	for i := 0; i <= fadeSteps; i++ {
		level := uint8(fullVolume * i / fadeSteps)
		if err := o.at(at+float64(i)*step, func() {
			o.transmit(gomidi.ControlChange(constants.DrumChannel, volumeController, level))
		}); err != nil {
			return
		}
	}
}

// Resume reopens the port if the driver closed it.
func (o *Output) Resume() error {
	if o.port == nil || o.port.IsOpen() {
		return nil
	}
	return o.port.Open()
}

// Close drops everything still queued and silences the channel.
func (o *Output) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	for t := range o.pending {
		t.Stop()
	}
	o.pending = nil
	o.mu.Unlock()

	err := o.send(gomidi.ControlChange(constants.DrumChannel, allNotesOff, 0))
	if o.port != nil {
		if cerr := o.port.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return errors.Wrap(err, "closing midi output")
}
