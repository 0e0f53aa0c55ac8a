package overlay

import (
	"errors"

	"github.com/lixenwraith/arena-hud/world"
)

// ErrUninitializedBounds is returned when world bounds are unset or invalid
var ErrUninitializedBounds = errors.New("overlay: world bounds not initialized")

// Project maps world coordinates onto a square surface of side size
// World Y grows upward, surface Y grows downward: (0,0) lands at (0,size) and (W,H) at (size,0)
func Project(x, y float64, b world.Bounds, size float64) (float64, float64, error) {
	if !b.Valid() {
		return 0, 0, ErrUninitializedBounds
	}
	px := x / b.Width * size
	py := (b.Height - y) / b.Height * size
	return px, py, nil
}
