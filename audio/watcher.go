package audio

import (
	"math"

	"github.com/lixenwraith/arena-hud/engine"
	"github.com/lixenwraith/arena-hud/ingest"
	"github.com/lixenwraith/arena-hud/world"
)

// Player plays cues
// Implemented by *CuePlayer
type Player interface {
	Play(c Cue) bool
}

// LocalView exposes the local player
// Implemented by *world.Store
type LocalView interface {
	LocalPlayer() (world.Player, bool)
}

// Watcher turns world changes into cues
// Implements engine.Observer
type Watcher struct {
	view      LocalView
	player    Player
	milestone float64

	present   bool // Local player seen in the previous observation
	lastScore float64
}

// NewWatcher creates a watcher, milestone <= 0 disables score cues
func NewWatcher(view LocalView, player Player, milestone float64) *Watcher {
	return &Watcher{
		view:      view,
		player:    player,
		milestone: milestone,
	}
}

// Observe implements engine.Observer
func (w *Watcher) Observe(info engine.TickInfo) {
	if info.State != engine.StateRunning || !info.Changed {
		return
	}

	collected := false
	for _, rep := range info.Reports {
		if rep.SessionStart {
			w.present = false
		}
		collected = collected || (rep.Type == ingest.TypePowerUpCollected && rep.Applied)
	}
	if collected {
		w.player.Play(CuePowerUp)
	}

	p, ok := w.view.LocalPlayer()
	switch {
	case ok:
		if w.present && w.crossedMilestone(p.Score) {
			w.player.Play(CueMilestone)
		}
		w.present = true
		w.lastScore = p.Score
	case w.present:
		w.present = false
		w.player.Play(CueEaten)
	}
}

func (w *Watcher) crossedMilestone(score float64) bool {
	if w.milestone <= 0 {
		return false
	}
	return math.Floor(score/w.milestone) > math.Floor(w.lastScore/w.milestone)
}
