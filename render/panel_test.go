package render

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestTextPanelBlitClips(t *testing.T) {
	screen := newSimScreen(t, 20, 5)
	p := NewTextPanel(5, 2, RGBBlack)
	p.SetText(
		TextLine{Text: "ab世界", Color: RGBWhite},
		TextLine{Text: "0123456789", Color: RGBHighlight},
		TextLine{Text: "hidden", Color: RGBWhite},
	)
	p.Blit(screen, 0, 0)

	tests := []struct {
		name string
		x, y int
		want rune
	}{
		{"Narrow rune", 1, 0, 'b'},
		{"Wide rune fits", 2, 0, '世'},
		{"Wide rune straddling edge skipped", 4, 0, ' '},
		{"Second line clipped at width", 4, 1, '4'},
		{"Past width untouched", 5, 1, ' '},
		{"Past height untouched", 0, 2, ' '},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mainc, _, _, _ := screen.GetContent(tt.x, tt.y)
			if mainc != tt.want {
				t.Errorf("Expected %q at (%d,%d), got %q", tt.want, tt.x, tt.y, mainc)
			}
		})
	}
}

func TestTextPanelSetTextReplaces(t *testing.T) {
	p := NewTextPanel(10, 3, RGBBlack)
	p.SetText(TextLine{Text: "one"}, TextLine{Text: "two"})
	p.SetText(TextLine{Text: "three"})

	lines := p.Lines()
	if len(lines) != 1 || lines[0].Text != "three" {
		t.Errorf("Expected single line \"three\", got %+v", lines)
	}
}

type stampBlitter struct {
	r rune
}

func (s stampBlitter) Blit(screen tcell.Screen, x0, y0 int) {
	screen.SetContent(x0, y0, s.r, nil, tcell.StyleDefault)
}

func TestRenderOrchestratorPriority(t *testing.T) {
	screen := newSimScreen(t, 10, 2)
	o := NewRenderOrchestrator(screen)

	// Registered out of order, the higher priority must still blit last
	o.Place(stampBlitter{'S'}, 0, 0, PriorityStatus)
	o.Place(stampBlitter{'M'}, 0, 0, PriorityMinimap)
	o.Place(stampBlitter{'A'}, 1, 0, PriorityPanel)
	o.Place(stampBlitter{'B'}, 1, 0, PriorityPanel)
	o.Show()

	if mainc, _, _, _ := screen.GetContent(0, 0); mainc != 'S' {
		t.Errorf("Expected status on top, got %q", mainc)
	}
	if mainc, _, _, _ := screen.GetContent(1, 0); mainc != 'B' {
		t.Errorf("Expected later registration on top for equal priority, got %q", mainc)
	}
}

func TestNewHUD(t *testing.T) {
	t.Run("Too small", func(t *testing.T) {
		screen := newSimScreen(t, 40, 10)
		_, err := NewHUD(screen, DefaultHUDConfig())
		if !errors.Is(err, ErrScreenTooSmall) {
			t.Errorf("Expected ErrScreenTooSmall, got %v", err)
		}
	})

	t.Run("Nil screen", func(t *testing.T) {
		if _, err := NewHUD(nil, DefaultHUDConfig()); err == nil {
			t.Error("Expected error for nil screen")
		}
	})

	t.Run("Layout", func(t *testing.T) {
		screen := newSimScreen(t, 80, 24)
		cfg := DefaultHUDConfig()
		hud, err := NewHUD(screen, cfg)
		if err != nil {
			t.Fatalf("NewHUD failed: %v", err)
		}

		hud.Scoreboard.SetText(TextLine{Text: "Scoreboard", Color: RGBWhite, Bold: true})
		hud.Speedometer.SetText(TextLine{Text: "Speed: 3", Color: RGBWhite})
		hud.Status.SetText(TextLine{Text: "connected", Color: RGBDim})
		hud.Minimap.DrawCircle(Circle{X: 0, Y: 0, R: 1, Fill: RGBRed})
		hud.Show()

		mapX := cfg.ScoreboardWidth + 1
		checks := []struct {
			name string
			x, y int
			want rune
		}{
			{"Scoreboard header", 0, 0, 'S'},
			{"Minimap origin", mapX, 0, runeDisc},
			{"Speedometer", mapX, cfg.MinimapRows, 'S'},
			{"Status", mapX, cfg.MinimapRows + 1, 'c'},
		}
		for _, c := range checks {
			if mainc, _, _, _ := screen.GetContent(c.x, c.y); mainc != c.want {
				t.Errorf("%s: expected %q at (%d,%d), got %q", c.name, c.want, c.x, c.y, mainc)
			}
		}
	})

	t.Run("Resize grows scoreboard", func(t *testing.T) {
		screen := newSimScreen(t, 80, 24)
		hud, err := NewHUD(screen, DefaultHUDConfig())
		if err != nil {
			t.Fatalf("NewHUD failed: %v", err)
		}
		lines := make([]TextLine, 30)
		for i := range lines {
			lines[i] = TextLine{Text: "x", Color: RGBWhite}
		}
		hud.Scoreboard.SetText(lines...)

		screen.SetSize(80, 40)
		hud.Resize(80, 40)
		hud.Show()

		if mainc, _, _, _ := screen.GetContent(0, 29); mainc != 'x' {
			t.Errorf("Expected row 29 visible after resize, got %q", mainc)
		}
	})
}
