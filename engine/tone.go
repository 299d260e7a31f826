package engine

import "log"

// toneRelativeVolume is the playback volume relative to the in-call stream.
const toneRelativeVolume = 80

// AsyncTonePlayer plays the upgrade-to-video request tone on its own
// goroutine so event processing never blocks on audio hardware.
type AsyncTonePlayer struct {
	play func()
}

// NewAsyncTonePlayer wraps a playback function. A nil function falls back to
// logging, which the simulator uses.
func NewAsyncTonePlayer(play func()) *AsyncTonePlayer {
	if play == nil {
		play = func() {
			log.Printf("vtguard: upgrade request tone (volume=%d)", toneRelativeVolume)
		}
	}
	return &AsyncTonePlayer{play: play}
}

// PlayUpgradeRequestTone starts playback and returns immediately.
func (p *AsyncTonePlayer) PlayUpgradeRequestTone() {
	if p == nil {
		return
	}
	go p.play()
}
