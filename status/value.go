package status

import (
	"math"
	"sync/atomic"
)

// Float is an atomic float64 stored as its bit pattern
// Zero value is ready to use (represents 0.0)
type Float struct {
	bits atomic.Uint64
}

// Set stores val
func (f *Float) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get loads the value
func (f *Float) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Text is an atomic string, zero value is the empty string
type Text struct {
	ptr atomic.Pointer[string]
}

// Set stores val
func (t *Text) Set(val string) {
	t.ptr.Store(&val)
}

// Get loads the value
func (t *Text) Get() string {
	if p := t.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
