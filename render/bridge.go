package render

import "github.com/gdamore/tcell/v2"

// RGBToTcell converts RGB to tcell.Color
func RGBToTcell(rgb RGB) tcell.Color {
	return tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B))
}

// styleFor builds the tcell style for a cell
func styleFor(fg, bg RGB, bold bool) tcell.Style {
	return tcell.StyleDefault.
		Foreground(RGBToTcell(fg)).
		Background(RGBToTcell(bg)).
		Bold(bold)
}
