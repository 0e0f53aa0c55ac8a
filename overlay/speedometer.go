package overlay

import (
	"strconv"

	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/world"
)

// SpeedText formats the local player's speed, "Speed: 0" when the local player is unknown
func SpeedText(players []world.Player, localID string) string {
	speed := 0.0
	if localID != "" {
		for _, p := range players {
			if p.ID == localID {
				speed = p.CurrentSpeed
				break
			}
		}
	}
	return "Speed: " + strconv.FormatFloat(speed, 'f', -1, 64)
}

// DrawSpeedometer replaces the target's content with the speed readout
func DrawSpeedometer(target render.TextTarget, players []world.Player, localID string) {
	target.SetText(render.TextLine{Text: SpeedText(players, localID), Color: render.RGBWhite})
}
