package render

import (
	"github.com/gdamore/tcell/v2"
)

// Blitter copies buffered content onto a tcell screen
type Blitter interface {
	Blit(screen tcell.Screen, x0, y0 int)
}

type placement struct {
	blitter  Blitter
	x, y     int
	priority RenderPriority
	index    int // registration order for stable sort
}

// RenderOrchestrator composes buffered surfaces onto one tcell screen
// Implements Presenter
type RenderOrchestrator struct {
	screen     tcell.Screen
	placements []placement
	regCount   int
}

// NewRenderOrchestrator creates an orchestrator for an initialized screen
func NewRenderOrchestrator(screen tcell.Screen) *RenderOrchestrator {
	return &RenderOrchestrator{
		screen:     screen,
		placements: make([]placement, 0, 8),
	}
}

// Place registers a blitter at cell (x, y). Maintains sorted order via insertion sort
func (o *RenderOrchestrator) Place(b Blitter, x, y int, priority RenderPriority) {
	entry := placement{
		blitter:  b,
		x:        x,
		y:        y,
		priority: priority,
		index:    o.regCount,
	}
	o.regCount++

	pos := len(o.placements)
	for i, e := range o.placements {
		if priority < e.priority || (priority == e.priority && entry.index < e.index) {
			pos = i
			break
		}
	}

	o.placements = append(o.placements, placement{})
	copy(o.placements[pos+1:], o.placements[pos:])
	o.placements[pos] = entry
}

// Show implements Presenter: clear, blit all in priority order, show
func (o *RenderOrchestrator) Show() {
	o.screen.Clear()
	for _, p := range o.placements {
		p.blitter.Blit(o.screen, p.x, p.y)
	}
	o.screen.Show()
}

// Sync forces a full terminal redraw on the next Show
func (o *RenderOrchestrator) Sync() {
	o.screen.Sync()
}
