package midi

import (
	"github.com/jsphweid/rhythmdrill/constants"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Excerpt copies the notes of mf between from and to (in ticks) into a new
// file that starts at from. Meta events before the range are kept at its
// start so tempo and meter still apply.
func Excerpt(mf *smf.SMF, from, to uint64) *smf.SMF {
	res := smf.New()
	res.TimeFormat = mf.TimeFormat

	for _, track := range mf.Tracks {
		var newTrack smf.Track
		var absTicks uint64
		last := from
	TrackEventLoop:
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			switch {
			case evt.Message.Is(gomidi.NoteOnMsg):
				if absTicks < from {
					continue
				}
				if absTicks >= to {
					break TrackEventLoop
				}
			case evt.Message.Is(gomidi.NoteOffMsg):
				if absTicks < from {
					continue
				}
				if absTicks > to+constants.NoteTicks {
					break TrackEventLoop
				}
			case evt.Message.Is(smf.MetaEndOfTrackMsg):
				continue
			default:
				if absTicks > to {
					continue
				}
			}
			at := absTicks
			if at < from {
				at = from
			}
			newTrack.Add(uint32(at-last), evt.Message)
			last = at
		}
		var tail uint32
		if to > last {
			tail = uint32(to - last)
		}
		newTrack.Close(tail)
		res.Add(newTrack)
	}
	return res
}
