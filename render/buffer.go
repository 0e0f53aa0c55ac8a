package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

// Cell runes used by the canvas rasterizer
const (
	runeEmpty    = ' '
	runeDisc     = '●'
	runeRing     = '◉'
	runeHoriz    = '─'
	runeVert     = '│'
	runeCross    = '┼'
	runeDiagonal = '·'
)

// Cell is one terminal cell of a canvas
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

// CellCanvas rasterizes a logical square surface onto a grid of terminal cells
// Implements Surface and Layered
type CellCanvas struct {
	logicalW float64
	logicalH float64

	cells  []Cell
	static []Cell // Committed static layer, nil until CommitStatic
	cols   int
	rows   int
}

// NewCellCanvas creates a canvas of logicalW×logicalH units rendered into cols×rows cells
func NewCellCanvas(logicalW, logicalH float64, cols, rows int) *CellCanvas {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	c := &CellCanvas{
		logicalW: logicalW,
		logicalH: logicalH,
		cells:    make([]Cell, cols*rows),
		cols:     cols,
		rows:     rows,
	}
	c.Clear(RGBBlack)
	return c
}

// Size implements Surface
func (c *CellCanvas) Size() (float64, float64) {
	return c.logicalW, c.logicalH
}

// Grid returns the cell dimensions
func (c *CellCanvas) Grid() (int, int) {
	return c.cols, c.rows
}

// Clear implements Surface using exponential copy
func (c *CellCanvas) Clear(bg RGB) {
	if len(c.cells) == 0 {
		return
	}
	c.cells[0] = Cell{Rune: runeEmpty, Fg: bg, Bg: bg}
	for filled := 1; filled < len(c.cells); filled *= 2 {
		copy(c.cells[filled:], c.cells[:filled])
	}
}

// CommitStatic implements Layered
func (c *CellCanvas) CommitStatic() {
	if cap(c.static) < len(c.cells) {
		c.static = make([]Cell, len(c.cells))
	}
	c.static = c.static[:len(c.cells)]
	copy(c.static, c.cells)
}

// RestoreStatic implements Layered
func (c *CellCanvas) RestoreStatic() bool {
	if c.static == nil {
		return false
	}
	copy(c.cells, c.static)
	return true
}

// At returns the cell at grid position (x, y)
func (c *CellCanvas) At(x, y int) Cell {
	if !c.inBounds(x, y) {
		return Cell{}
	}
	return c.cells[y*c.cols+x]
}

// inBounds returns true if in grid bounds
func (c *CellCanvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.cols && y >= 0 && y < c.rows
}

// cellOf maps a logical point to the cell containing it, clamped to the grid
func (c *CellCanvas) cellOf(x, y float64) (int, int) {
	cx := int(math.Floor(x / c.logicalW * float64(c.cols)))
	cy := int(math.Floor(y / c.logicalH * float64(c.rows)))
	return clampInt(cx, 0, c.cols-1), clampInt(cy, 0, c.rows-1)
}

// cellCenter returns the logical coordinates of a cell's center
func (c *CellCanvas) cellCenter(cx, cy int) (float64, float64) {
	return (float64(cx) + 0.5) * c.logicalW / float64(c.cols),
		(float64(cy) + 0.5) * c.logicalH / float64(c.rows)
}

// DrawCircle implements Surface
// Covers every cell whose center lies inside the disc, and always the cell holding the center
func (c *CellCanvas) DrawCircle(circle Circle) {
	if circle.R < 0 || math.IsNaN(circle.X) || math.IsNaN(circle.Y) {
		return
	}

	minX, minY := c.cellOf(circle.X-circle.R, circle.Y-circle.R)
	maxX, maxY := c.cellOf(circle.X+circle.R, circle.Y+circle.R)
	r2 := circle.R * circle.R

	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			px, py := c.cellCenter(cx, cy)
			dx, dy := px-circle.X, py-circle.Y
			if dx*dx+dy*dy <= r2 {
				c.paintDisc(cx, cy, circle)
			}
		}
	}

	cx, cy := c.cellOf(circle.X, circle.Y)
	c.paintDisc(cx, cy, circle)
}

func (c *CellCanvas) paintDisc(cx, cy int, circle Circle) {
	dst := &c.cells[cy*c.cols+cx]
	if circle.HasOutline {
		dst.Rune = runeRing
		dst.Fg = circle.Outline
		dst.Bg = circle.Fill
		return
	}
	dst.Rune = runeDisc
	dst.Fg = circle.Fill
}

// DrawLine implements Surface
// Samples the segment at half-cell steps and blends the line color over each touched cell
func (c *CellCanvas) DrawLine(l Line) {
	cellW := c.logicalW / float64(c.cols)
	cellH := c.logicalH / float64(c.rows)
	dx, dy := l.X1-l.X0, l.Y1-l.Y0

	steps := int(math.Ceil(math.Max(math.Abs(dx)/cellW, math.Abs(dy)/cellH)*2)) + 1
	glyph := runeDiagonal
	switch {
	case dy == 0:
		glyph = runeHoriz
	case dx == 0:
		glyph = runeVert
	}

	lastX, lastY := -1, -1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx, cy := c.cellOf(l.X0+dx*t, l.Y0+dy*t)
		if cx == lastX && cy == lastY {
			continue
		}
		lastX, lastY = cx, cy

		dst := &c.cells[cy*c.cols+cx]
		dst.Fg = Blend(dst.Bg, l.Color, l.Alpha)
		if (dst.Rune == runeHoriz && glyph == runeVert) || (dst.Rune == runeVert && glyph == runeHoriz) {
			dst.Rune = runeCross
		} else {
			dst.Rune = glyph
		}
	}
}

// Blit copies the canvas to screen with its top-left cell at (x0, y0)
func (c *CellCanvas) Blit(screen tcell.Screen, x0, y0 int) {
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			cell := c.cells[y*c.cols+x]
			screen.SetContent(x0+x, y0+y, cell.Rune, nil, styleFor(cell.Fg, cell.Bg, false))
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
