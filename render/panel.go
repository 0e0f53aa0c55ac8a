package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// TextPanel is a fixed-size text container rendered into terminal cells
// Implements TextTarget
type TextPanel struct {
	width  int
	height int
	bg     RGB
	lines  []TextLine
}

// NewTextPanel creates a panel of width×height cells
func NewTextPanel(width, height int, bg RGB) *TextPanel {
	return &TextPanel{
		width:  width,
		height: height,
		bg:     bg,
	}
}

// SetText implements TextTarget, replacing the whole content
func (p *TextPanel) SetText(lines ...TextLine) {
	p.lines = append(p.lines[:0], lines...)
}

// Lines returns the current content
func (p *TextPanel) Lines() []TextLine {
	out := make([]TextLine, len(p.lines))
	copy(out, p.lines)
	return out
}

// Resize changes the panel dimensions, content is kept and clipped on blit
func (p *TextPanel) Resize(width, height int) {
	p.width = width
	p.height = height
}

// Blit draws the panel at (x0, y0), clipping lines by display width
// Wide runes that would straddle the right edge are not drawn
func (p *TextPanel) Blit(screen tcell.Screen, x0, y0 int) {
	blank := styleFor(p.bg, p.bg, false)
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			screen.SetContent(x0+x, y0+y, ' ', nil, blank)
		}
	}

	for row, line := range p.lines {
		if row >= p.height {
			break
		}
		style := styleFor(line.Color, p.bg, line.Bold)
		x := 0
		for _, r := range line.Text {
			w := runewidth.RuneWidth(r)
			if w == 0 {
				continue
			}
			if x+w > p.width {
				break
			}
			screen.SetContent(x0+x, y0+row, r, nil, style)
			x += w
		}
	}
}
