package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// ErrScreenTooSmall is returned when the terminal cannot fit the HUD layout
var ErrScreenTooSmall = errors.New("render: screen too small for HUD")

// HUDConfig sizes the terminal HUD
type HUDConfig struct {
	MinimapSize float64 // Logical minimap size in units
	MinimapCols int
	MinimapRows int

	ScoreboardWidth int
	Background      RGB
}

// DefaultHUDConfig returns a layout that fits an 80x24 terminal
// Two rows per column pair keeps the minimap roughly square on typical fonts
func DefaultHUDConfig() HUDConfig {
	return HUDConfig{
		MinimapSize:     175,
		MinimapCols:     36,
		MinimapRows:     18,
		ScoreboardWidth: 28,
		Background:      RGBBlack,
	}
}

// HUD owns the terminal-backed overlay targets
// Layout: scoreboard on the left, minimap on the right, speedometer and status below the minimap
type HUD struct {
	Minimap     *CellCanvas
	Scoreboard  *TextPanel
	Speedometer *TextPanel
	Status      *TextPanel

	mu           sync.Mutex // Show and Resize run on different goroutines
	cfg          HUDConfig
	orchestrator *RenderOrchestrator
}

// NewHUD lays out the HUD on an initialized screen
func NewHUD(screen tcell.Screen, cfg HUDConfig) (*HUD, error) {
	if screen == nil {
		return nil, errors.New("render: nil screen")
	}

	width, height := screen.Size()
	needW := cfg.ScoreboardWidth + 1 + cfg.MinimapCols
	needH := cfg.MinimapRows + 2
	if width < needW || height < needH {
		return nil, fmt.Errorf("%w: need %dx%d, have %dx%d", ErrScreenTooSmall, needW, needH, width, height)
	}

	h := &HUD{
		Minimap:      NewCellCanvas(cfg.MinimapSize, cfg.MinimapSize, cfg.MinimapCols, cfg.MinimapRows),
		Scoreboard:   NewTextPanel(cfg.ScoreboardWidth, height, cfg.Background),
		Speedometer:  NewTextPanel(cfg.MinimapCols, 1, cfg.Background),
		Status:       NewTextPanel(cfg.MinimapCols, 1, cfg.Background),
		cfg:          cfg,
		orchestrator: NewRenderOrchestrator(screen),
	}

	mapX := cfg.ScoreboardWidth + 1
	h.orchestrator.Place(h.Scoreboard, 0, 0, PriorityPanel)
	h.orchestrator.Place(h.Minimap, mapX, 0, PriorityMinimap)
	h.orchestrator.Place(h.Speedometer, mapX, cfg.MinimapRows, PriorityPanel)
	h.orchestrator.Place(h.Status, mapX, cfg.MinimapRows+1, PriorityStatus)

	return h, nil
}

// Show implements Presenter
func (h *HUD) Show() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.orchestrator.Show()
}

// Resize adapts the scoreboard to the new terminal height and forces a full redraw
// The minimap keeps its configured grid
func (h *HUD) Resize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Scoreboard.Resize(h.cfg.ScoreboardWidth, height)
	h.orchestrator.Sync()
}
