package main

import (
	"fmt"

	"github.com/lixenwraith/arena-hud/engine"
	"github.com/lixenwraith/arena-hud/network"
	"github.com/lixenwraith/arena-hud/render"
)

// statusSource is the live state shown on the status line
type statusSource struct {
	feed  interface{ State() network.ConnState }
	audio interface{ IsMuted() bool }
	loop  interface{ DroppedFrames() uint64 }
}

// statusLine formats one status line for the given tick
func (s *statusSource) statusLine(info engine.TickInfo) render.TextLine {
	conn := s.feed.State()
	text := conn.String()
	if info.State == engine.StateIdle && conn == network.StateConnected {
		text = "waiting for game"
	}
	if s.loop != nil {
		if dropped := s.loop.DroppedFrames(); dropped > 0 {
			text += fmt.Sprintf(" | dropped %d", dropped)
		}
	}
	if s.audio != nil && s.audio.IsMuted() {
		text += " | muted"
	}

	color := render.RGBDim
	if conn != network.StateConnected {
		color = render.RGBWarning
	}
	return render.TextLine{Text: text, Color: color}
}

// statusObserver writes the status line after every loop iteration
func statusObserver(target render.TextTarget, src *statusSource) engine.Observer {
	return engine.ObserverFunc(func(info engine.TickInfo) {
		target.SetText(src.statusLine(info))
	})
}
