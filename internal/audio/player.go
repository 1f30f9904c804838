package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// Player streams ready clips through the host speaker. The speaker is a
// process-wide device, so Player is the one piece of audio plumbing hosts
// share; sessions only ever hand it clips they own.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	sampleRate  beep.SampleRate
	initialized bool
}

// NewPlayer creates an uninitialized player. Call Init before Play.
func NewPlayer() *Player {
	return &Player{mixer: &beep.Mixer{}, sampleRate: defaultSampleRate}
}

// Init opens the speaker and starts the mixer. Safe to call once per process.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Play mixes a clip into the output. Empty clips and an uninitialized
// player are silently ignored: missing audio degrades, never crashes.
func (p *Player) Play(c Clip) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || c.Empty() {
		return
	}
	s := c.Streamer()
	if c.Format().SampleRate != p.sampleRate {
		speaker.Lock()
		p.mixer.Add(beep.Resample(4, c.Format().SampleRate, p.sampleRate, s))
		speaker.Unlock()
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// Close stops playback output.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Clear()
	p.initialized = false
}
