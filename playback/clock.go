package playback

import (
	"sync"
	"time"
)

// Clock is a monotonic real-time source in seconds.
type Clock interface {
	Now() float64
}

type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// Timer runs fn every d until the returned stop func is called.
type Timer interface {
	Every(d time.Duration, fn func()) (stop func())
}

type TickerTimer struct{}

func (TickerTimer) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu sync.Mutex
	t  float64
}

func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d float64) {
	c.mu.Lock()
	c.t += d
	c.mu.Unlock()
}

// ManualTimer keeps registered callbacks until Fire is called.
type ManualTimer struct {
	mu    sync.Mutex
	next  int
	funcs map[int]func()
}

func (t *ManualTimer) Every(_ time.Duration, fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.funcs == nil {
		t.funcs = make(map[int]func())
	}
	id := t.next
	t.next++
	t.funcs[id] = fn
	return func() {
		t.mu.Lock()
		delete(t.funcs, id)
		t.mu.Unlock()
	}
}

// Fire runs every live callback once.
func (t *ManualTimer) Fire() {
	t.mu.Lock()
	var fns []func()
	for i := 0; i < t.next; i++ {
		if fn, ok := t.funcs[i]; ok {
			fns = append(fns, fn)
		}
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (t *ManualTimer) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.funcs)
}
