package overlay

import (
	"reflect"
	"testing"

	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/world"
)

func TestRankIsStable(t *testing.T) {
	players := []world.Player{
		{ID: "a", Score: 5},
		{ID: "b", Score: 9},
		{ID: "c", Score: 5},
		{ID: "d", Score: 9},
		{ID: "e", Score: 1},
		{ID: "f", Score: 5},
	}

	rows := Rank(players, "")
	var got []string
	for _, r := range rows {
		got = append(got, r.ID)
	}

	want := []string{"b", "d", "a", "c", "f", "e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// Ranking the ranked order again must not move equal scores
	reordered := make([]world.Player, len(rows))
	for i, r := range rows {
		reordered[i] = world.Player{ID: r.ID, Score: r.Score}
	}
	again := Rank(reordered, "")
	for i := range again {
		if again[i].ID != rows[i].ID {
			t.Fatalf("Expected rank to be idempotent, position %d moved from %s to %s", i, rows[i].ID, again[i].ID)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		player world.Player
		want   string
	}{
		{"Short name", world.Player{ID: "p1", Name: "alice"}, "alice"},
		{"Exactly ten runes", world.Player{ID: "p1", Name: "abcdefghij"}, "abcdefghij"},
		{"Eleven runes truncated", world.Player{ID: "p1", Name: "abcdefghijk"}, "abcdefghij..."},
		{"Multibyte runes counted once", world.Player{ID: "p1", Name: "ñññññññññññ"}, "ññññññññññ..."},
		{"Empty name falls back to ID", world.Player{ID: "p1"}, "p1"},
		{"Long ID truncated", world.Player{ID: "0123456789abc"}, "0123456789..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.player); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRowText(t *testing.T) {
	tests := []struct {
		row  Row
		want string
	}{
		{Row{Name: "p1", Score: 10}, "p1 — 10"},
		{Row{Name: "bob", Score: 2.5}, "bob — 2.5"},
		{Row{Name: "zero", Score: 0}, "zero — 0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.row.Text(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDrawScoreboardHighlightsLocal(t *testing.T) {
	rec := render.NewRecorder(0, 0)
	players := []world.Player{
		{ID: "p1", Name: "alice", Score: 3},
		{ID: "p2", Name: "bob", Score: 7},
	}
	DrawScoreboard(rec, players, "p1")

	lines := rec.Lines()
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[0].Text != "Scoreboard" {
		t.Errorf("Expected header, got %q", lines[0].Text)
	}
	if lines[1].Text != "bob — 7" || lines[1].Color != render.RGBWhite {
		t.Errorf("Unexpected first row: %+v", lines[1])
	}
	if lines[2].Text != "alice — 3" || lines[2].Color != render.RGBHighlight {
		t.Errorf("Expected highlighted local row, got %+v", lines[2])
	}
}

func TestSpeedText(t *testing.T) {
	players := []world.Player{{ID: "p1", CurrentSpeed: 4.5}}

	tests := []struct {
		name    string
		players []world.Player
		localID string
		want    string
	}{
		{"No local identity", players, "", "Speed: 0"},
		{"Local player absent", players, "p9", "Speed: 0"},
		{"No players", nil, "p1", "Speed: 0"},
		{"Local player present", players, "p1", "Speed: 4.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpeedText(tt.players, tt.localID); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
