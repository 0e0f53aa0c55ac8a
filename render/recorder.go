package render

import "sync"

// OpKind identifies a recorded drawing call
type OpKind uint8

const (
	OpClear OpKind = iota
	OpCircle
	OpLine
)

// Op is one recorded drawing call
type Op struct {
	Kind   OpKind
	Bg     RGB // OpClear
	Circle Circle
	Line   Line
}

// Recorder is an in-memory Surface, TextTarget and Presenter for tests and headless runs
// The op list models the visible picture: Clear drops everything drawn before it,
// RestoreStatic rewinds to the ops present at CommitStatic
type Recorder struct {
	mu     sync.Mutex
	width  float64
	height float64

	ops       []Op
	static    []Op
	staticSet bool

	lines []TextLine
	shows int
}

// NewRecorder creates a recorder with the given logical size
func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height}
}

// Size implements Surface
func (r *Recorder) Size() (float64, float64) {
	return r.width, r.height
}

// Clear implements Surface
func (r *Recorder) Clear(bg RGB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops[:0], Op{Kind: OpClear, Bg: bg})
}

// DrawCircle implements Surface
func (r *Recorder) DrawCircle(c Circle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Kind: OpCircle, Circle: c})
}

// DrawLine implements Surface
func (r *Recorder) DrawLine(l Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, Op{Kind: OpLine, Line: l})
}

// CommitStatic implements Layered
func (r *Recorder) CommitStatic() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.static = append(r.static[:0], r.ops...)
	r.staticSet = true
}

// RestoreStatic implements Layered
func (r *Recorder) RestoreStatic() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.staticSet {
		return false
	}
	r.ops = append(r.ops[:0], r.static...)
	return true
}

// SetText implements TextTarget
func (r *Recorder) SetText(lines ...TextLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines[:0], lines...)
}

// Show implements Presenter
func (r *Recorder) Show() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shows++
}

// Ops returns a copy of the visible drawing calls
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Circles returns the visible circles in draw order
func (r *Recorder) Circles() []Circle {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Circle
	for _, op := range r.ops {
		if op.Kind == OpCircle {
			out = append(out, op.Circle)
		}
	}
	return out
}

// Lines returns the current text content
func (r *Recorder) Lines() []TextLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TextLine, len(r.lines))
	copy(out, r.lines)
	return out
}

// Shows returns how many times Show was called
func (r *Recorder) Shows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shows
}
