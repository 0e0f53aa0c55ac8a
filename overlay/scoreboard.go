package overlay

import (
	"sort"
	"strconv"

	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/world"
)

const (
	scoreboardHeader = "Scoreboard"
	maxNameRunes     = 10
	nameEllipsis     = "..."
)

// Row is one ranked scoreboard entry
type Row struct {
	ID    string
	Name  string // Display name, already truncated
	Score float64
	Local bool
}

// Text formats the row as shown on the scoreboard
func (r Row) Text() string {
	return r.Name + " — " + strconv.FormatFloat(r.Score, 'f', -1, 64)
}

// Rank orders players by score descending, keeping input order for equal scores
func Rank(players []world.Player, localID string) []Row {
	rows := make([]Row, len(players))
	for i, p := range players {
		rows[i] = Row{
			ID:    p.ID,
			Name:  DisplayName(p),
			Score: p.Score,
			Local: localID != "" && p.ID == localID,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	return rows
}

// DisplayName returns the player's name truncated to 10 runes, or the ID when the name is empty
func DisplayName(p world.Player) string {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	runes := []rune(name)
	if len(runes) <= maxNameRunes {
		return name
	}
	return string(runes[:maxNameRunes]) + nameEllipsis
}

// DrawScoreboard replaces the target's content with the ranked player list
func DrawScoreboard(target render.TextTarget, players []world.Player, localID string) {
	rows := Rank(players, localID)
	lines := make([]render.TextLine, 0, len(rows)+1)
	lines = append(lines, render.TextLine{Text: scoreboardHeader, Color: render.RGBWhite, Bold: true})

	for _, r := range rows {
		color := render.RGBWhite
		if r.Local {
			color = render.RGBHighlight
		}
		lines = append(lines, render.TextLine{Text: r.Text(), Color: color, Bold: r.Local})
	}
	target.SetText(lines...)
}
