package overlay

import (
	"errors"
	"fmt"
	"log"

	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/world"
)

// ErrMissingSurface is returned by Init when a render target is absent
var ErrMissingSurface = errors.New("overlay: missing render target")

// World is the read side of the world state the overlay renders
// Implemented by *world.Store
type World interface {
	Players() []world.Player
	Food() []world.Food
	PowerUps() []world.PowerUp
	LocalID() string
	Bounds() (world.Bounds, bool)
}

// Targets are the three render destinations, each owned exclusively by the overlay
type Targets struct {
	Minimap     render.Surface
	Scoreboard  render.TextTarget
	Speedometer render.TextTarget
}

// Options tunes overlay behavior
type Options struct {
	// PowerUpsOnInit draws power-ups on the initial full draw as well as on updates
	PowerUpsOnInit bool

	// Logger receives warnings, defaults to log.Default()
	Logger *log.Logger
}

// Overlay keeps the scoreboard, minimap and speedometer in sync with the world
type Overlay struct {
	world   World
	targets Targets
	opts    Options
	logger  *log.Logger

	boundsWarned bool
}

// New creates an overlay reading from w
func New(w World, targets Targets, opts Options) *Overlay {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Overlay{
		world:   w,
		targets: targets,
		opts:    opts,
		logger:  logger,
	}
}

// Init validates the targets and performs a full draw
// Called again at every session start, which re-arms the missing bounds warning
func (o *Overlay) Init() error {
	switch {
	case o.targets.Minimap == nil:
		return fmt.Errorf("%w: minimap", ErrMissingSurface)
	case o.targets.Scoreboard == nil:
		return fmt.Errorf("%w: scoreboard", ErrMissingSurface)
	case o.targets.Speedometer == nil:
		return fmt.Errorf("%w: speedometer", ErrMissingSurface)
	}
	o.boundsWarned = false

	if err := DrawMinimap(o.targets.Minimap, o.world, true, o.opts.PowerUpsOnInit); err != nil {
		return fmt.Errorf("overlay init: %w", err)
	}
	o.drawText()
	return nil
}

// Update redraws all three targets from the current world state
// Missing bounds skip the minimap and are logged once
func (o *Overlay) Update() {
	if err := DrawMinimap(o.targets.Minimap, o.world, false, true); err != nil && !o.boundsWarned {
		o.boundsWarned = true
		o.logger.Printf("[WARN] overlay: minimap skipped: %v", err)
	}
	o.drawText()
}

func (o *Overlay) drawText() {
	players := o.world.Players()
	localID := o.world.LocalID()
	DrawScoreboard(o.targets.Scoreboard, players, localID)
	DrawSpeedometer(o.targets.Speedometer, players, localID)
}
