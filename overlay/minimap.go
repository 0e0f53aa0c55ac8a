package overlay

import (
	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/world"
)

// Marker radii in minimap units
const (
	localRadius   = 4
	epicRadius    = 2
	rareRadius    = 1.5
	commonRadius  = 1
	powerUpRadius = 3
)

// axisAlpha is the opacity of the axis guides
const axisAlpha = 0.65

// DrawMinimap paints the world onto s
// With fullRedraw the static layer (background and axes) is repainted and committed when s is layered.
// Otherwise the committed static layer is restored, falling back to a full repaint when there is none.
// Either path produces the same picture. Nothing is drawn when bounds are not set.
func DrawMinimap(s render.Surface, w World, fullRedraw, withPowerUps bool) error {
	bounds, ok := w.Bounds()
	if !ok || !bounds.Valid() {
		return ErrUninitializedBounds
	}
	size, _ := s.Size()

	layered, _ := s.(render.Layered)
	if fullRedraw || layered == nil || !layered.RestoreStatic() {
		drawStatic(s, size)
		if layered != nil {
			layered.CommitStatic()
		}
	}

	project := func(x, y float64) (float64, float64) {
		px, py, _ := Project(x, y, bounds, size)
		return px, py
	}

	if id := w.LocalID(); id != "" {
		for _, p := range w.Players() {
			if p.ID != id {
				continue
			}
			px, py := project(p.X, p.Y)
			s.DrawCircle(render.Circle{X: px, Y: py, R: localRadius, Fill: render.RGBRed})
			break
		}
	}

	for _, f := range w.Food() {
		px, py := project(f.X, f.Y)
		s.DrawCircle(foodMarker(f, px, py))
	}

	if withPowerUps {
		for _, pu := range w.PowerUps() {
			px, py := project(pu.X, pu.Y)
			s.DrawCircle(render.Circle{
				X:          px,
				Y:          py,
				R:          powerUpRadius,
				Fill:       toRGB(pu.Properties.Color),
				Outline:    render.RGBWhite,
				HasOutline: true,
			})
		}
	}

	return nil
}

// drawStatic paints the background and the axis guides through the center
func drawStatic(s render.Surface, size float64) {
	s.Clear(render.RGBBlack)
	mid := size / 2
	s.DrawLine(render.Line{X0: 0, Y0: mid, X1: size, Y1: mid, Color: render.RGBWhite, Alpha: axisAlpha})
	s.DrawLine(render.Line{X0: mid, Y0: 0, X1: mid, Y1: size, Color: render.RGBWhite, Alpha: axisAlpha})
}

func foodMarker(f world.Food, px, py float64) render.Circle {
	switch f.Tier {
	case world.TierEpic:
		return render.Circle{X: px, Y: py, R: epicRadius, Fill: toRGB(f.Color)}
	case world.TierRare:
		return render.Circle{X: px, Y: py, R: rareRadius, Fill: toRGB(f.Color)}
	default:
		return render.Circle{X: px, Y: py, R: commonRadius, Fill: render.RGBGreen}
	}
}

func toRGB(c world.Color) render.RGB {
	return render.RGB{R: c.R, G: c.G, B: c.B}
}
