package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

const sampleRate = beep.SampleRate(48000)

// Cue identifies a short notification sound
type Cue uint8

const (
	CueMilestone Cue = iota // Local score crossed a milestone
	CuePowerUp              // A power-up was collected
	CueEaten                // Local player was eaten
)

// String returns the cue name
func (c Cue) String() string {
	switch c {
	case CueMilestone:
		return "milestone"
	case CuePowerUp:
		return "power_up"
	case CueEaten:
		return "eaten"
	default:
		return "unknown"
	}
}

type note struct {
	freq float64
	dur  time.Duration
}

// cueNotes: rising for good news, falling for bad
var cueNotes = map[Cue][]note{
	CueMilestone: {{660, 80 * time.Millisecond}, {880, 120 * time.Millisecond}},
	CuePowerUp:   {{880, 60 * time.Millisecond}, {1175, 60 * time.Millisecond}, {1320, 90 * time.Millisecond}},
	CueEaten:     {{220, 150 * time.Millisecond}, {147, 250 * time.Millisecond}},
}

// cueDuration returns the total length of a cue
func cueDuration(c Cue) time.Duration {
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.dur
	}
	return d
}

// cueStreamer builds the finite streamer for a cue, nil for an unknown cue
func cueStreamer(c Cue, sr beep.SampleRate) beep.Streamer {
	notes := cueNotes[c]
	if len(notes) == 0 {
		return nil
	}
	parts := make([]beep.Streamer, len(notes))
	for i, n := range notes {
		total := sr.N(n.dur)
		parts[i] = beep.Take(total, NewToneGenerator(sr, n.freq, total))
	}
	return beep.Seq(parts...)
}

// ToneGenerator generates a soft sine tone with a short attack and release
type ToneGenerator struct {
	sr    beep.SampleRate
	freq  float64
	pos   int
	total int // Samples until the release completes
	ramp  int // Attack and release length in samples
}

// NewToneGenerator creates a tone lasting total samples
func NewToneGenerator(sr beep.SampleRate, freq float64, total int) *ToneGenerator {
	ramp := sr.N(5 * time.Millisecond)
	if ramp*2 > total {
		ramp = total / 2
	}
	return &ToneGenerator{
		sr:    sr,
		freq:  freq,
		total: total,
		ramp:  ramp,
	}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Fundamental plus a quiet octave
		sample := 0.25*math.Sin(2*math.Pi*g.freq*t) + 0.05*math.Sin(2*math.Pi*g.freq*2*t)
		sample *= g.envelope()

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}

// envelope returns the gain at the current position
func (g *ToneGenerator) envelope() float64 {
	if g.ramp <= 0 {
		return 1
	}
	if g.pos < g.ramp {
		return float64(g.pos) / float64(g.ramp)
	}
	if left := g.total - g.pos; left < g.ramp {
		return math.Max(float64(left)/float64(g.ramp), 0)
	}
	return 1
}
