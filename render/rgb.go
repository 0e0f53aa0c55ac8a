package render

import (
	"github.com/lucasb-eyer/go-colorful"
)

// RGB is a 24-bit color
type RGB struct {
	R, G, B uint8
}

// Predefined colors
var (
	RGBBlack     = RGB{0, 0, 0}
	RGBWhite     = RGB{255, 255, 255}
	RGBRed       = RGB{255, 0, 0}
	RGBGreen     = RGB{0, 128, 0}
	RGBHighlight = RGB{0, 191, 255} // Deep sky blue, marks the local player
	RGBDim       = RGB{128, 128, 128}
	RGBWarning   = RGB{255, 191, 0}
)

// Blend mixes src over dst with alpha in [0, 1]
func Blend(dst, src RGB, alpha float64) RGB {
	if alpha <= 0 {
		return dst
	}
	if alpha >= 1 {
		return src
	}
	return fromColorful(toColorful(dst).BlendRgb(toColorful(src), alpha))
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}
