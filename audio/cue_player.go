package audio

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// CuePlayer plays notification cues through the system speaker
// Implements service.Service. A missing audio backend disables it without failing startup
type CuePlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	logger      *log.Logger

	// output replaces the speaker when set
	output func(beep.Streamer)

	muted    atomic.Bool
	disabled atomic.Bool
	played   atomic.Uint64
}

// NewCuePlayer creates a player, logger defaults to log.Default()
func NewCuePlayer(logger *log.Logger) *CuePlayer {
	if logger == nil {
		logger = log.Default()
	}
	return &CuePlayer{
		mixer:  &beep.Mixer{},
		logger: logger,
	}
}

// Name implements service.Service
func (p *CuePlayer) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (p *CuePlayer) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: bool - initial mute state
func (p *CuePlayer) Init(args ...any) error {
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok {
			p.muted.Store(muted)
		}
	}
	return nil
}

// Start implements service.Service
// Speaker failure disables the player, no error returned
func (p *CuePlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized || p.output != nil {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		p.disabled.Store(true)
		p.logger.Printf("[INFO] audio: disabled: %v", err)
		return nil
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Stop implements service.Service
func (p *CuePlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return nil
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()

	p.initialized = false
	return nil
}

// Play starts a cue, returns false when the cue was not played
func (p *CuePlayer) Play(c Cue) bool {
	if p.muted.Load() || p.disabled.Load() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized && p.output == nil {
		return false
	}

	streamer := cueStreamer(c, sampleRate)
	if streamer == nil {
		return false
	}

	if p.output != nil {
		p.output(streamer)
	} else {
		speaker.Lock()
		p.mixer.Add(streamer)
		speaker.Unlock()
	}
	p.played.Add(1)
	return true
}

// ToggleMute flips the mute state and returns the new value
func (p *CuePlayer) ToggleMute() bool {
	for {
		old := p.muted.Load()
		if p.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// IsMuted returns the mute state
func (p *CuePlayer) IsMuted() bool {
	return p.muted.Load()
}

// IsDisabled returns true if no audio backend is available
func (p *CuePlayer) IsDisabled() bool {
	return p.disabled.Load()
}

// Played returns the number of cues started
func (p *CuePlayer) Played() uint64 {
	return p.played.Load()
}
