package render

// Surface is a fixed-size 2D drawing target in logical units
// Implementations decide how logical units map to pixels or terminal cells
type Surface interface {
	// Size returns the logical width and height
	Size() (float64, float64)

	// Clear replaces every pixel with bg
	Clear(bg RGB)

	// DrawCircle paints a filled circle, with an optional outline
	DrawCircle(c Circle)

	// DrawLine paints a straight line
	DrawLine(l Line)
}

// Layered is optionally implemented by surfaces that can retain a static layer
// CommitStatic snapshots the current content, RestoreStatic reverts to that snapshot
// RestoreStatic reports false if nothing was committed yet
type Layered interface {
	CommitStatic()
	RestoreStatic() bool
}

// TextTarget is a text container owned exclusively by one renderer
type TextTarget interface {
	SetText(lines ...TextLine)
}

// Presenter is optionally implemented by surfaces that buffer output until shown
type Presenter interface {
	Show()
}

// Circle is a filled disc centered at (X, Y) with radius R
type Circle struct {
	X, Y, R float64
	Fill    RGB

	// Outline is drawn around the disc when HasOutline is set
	Outline    RGB
	HasOutline bool
}

// Line is a segment from (X0, Y0) to (X1, Y1), blended over existing content by Alpha
type Line struct {
	X0, Y0 float64
	X1, Y1 float64
	Color  RGB
	Alpha  float64
}

// TextLine is one styled line of a text container
type TextLine struct {
	Text  string
	Color RGB
	Bold  bool
}
