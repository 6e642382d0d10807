package playback

import (
	"context"
	"time"
)

// Watchdog stops s once playback has run past the end. It returns when s is
// stopped, ctx is done, or the end was reached.
func Watchdog(ctx context.Context, s *Scheduler, interval time.Duration, onFrame func(beat float64)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Finished() {
				s.Stop()
				return
			}
			if s.State() == Stopped {
				return
			}
			if onFrame != nil {
				onFrame(s.VisualBeat())
			}
		}
	}
}
