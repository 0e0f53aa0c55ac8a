package ingest

import (
	"bytes"
	"errors"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lixenwraith/arena-hud/world"
)

func newTestIngester(t *testing.T) (*Ingester, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewIngester(world.NewStore(), log.New(&buf, "", 0)), &buf
}

const sessionStart = `{
	"type": "game_started",
	"mapWidth": 1000,
	"mapHeight": 1000,
	"yourPlayerId": "p1",
	"players": {
		"p1": {"id": "p1", "name": "alice", "x": 500, "y": 500, "score": 10, "current_speed": 4.5},
		"p2": {"id": "p2", "name": "bob", "x": 100, "y": 900, "score": 3}
	},
	"food": [
		{"x": 1, "y": 1, "type": "common", "color": "green"},
		{"x": 2, "y": 2, "type": "epic", "color": "#ff00ff"}
	]
}`

func mustIngest(t *testing.T, in *Ingester, frame string) Report {
	t.Helper()
	rep, err := in.Ingest([]byte(frame), false)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	return rep
}

func TestSessionStart(t *testing.T) {
	in, _ := newTestIngester(t)
	rep := mustIngest(t, in, sessionStart)

	if !rep.Applied || rep.Players != 2 || rep.Food != 2 {
		t.Fatalf("Unexpected report: %+v", rep)
	}

	s := in.Store()
	if b, ok := s.Bounds(); !ok || b != (world.Bounds{Width: 1000, Height: 1000}) {
		t.Errorf("Expected bounds 1000x1000, got %v (set=%v)", b, ok)
	}
	if s.LocalID() != "p1" {
		t.Errorf("Expected identity p1, got %q", s.LocalID())
	}

	players := s.Players()
	if len(players) != 2 || players[0].ID != "p1" || players[1].ID != "p2" {
		t.Fatalf("Expected wire order p1,p2, got %+v", players)
	}
	if players[0].CurrentSpeed != 4.5 {
		t.Errorf("Expected current speed 4.5, got %v", players[0].CurrentSpeed)
	}

	food := s.Food()
	if food[1].Tier != world.TierEpic || food[1].Color != (world.Color{R: 255, G: 0, B: 255}) {
		t.Errorf("Unexpected epic food: %+v", food[1])
	}
}

func TestMalformedFoodIsDroppedAndLogged(t *testing.T) {
	in, logs := newTestIngester(t)
	mustIngest(t, in, sessionStart)
	logs.Reset()

	rep := mustIngest(t, in, `{
		"type": "food_update",
		"food": [
			{"x": 10, "y": 10, "type": "common"},
			{"x": 20, "y": 20, "type": "rare", "color": "#00f"},
			{"x": "NaN", "y": 30, "type": "epic"},
			{"x": 40, "y": 40, "type": "epic", "color": "purple"},
			{"x": 50, "y": 50}
		]
	}`)

	if got := len(in.Store().Food()); got != 4 {
		t.Errorf("Expected 4 food items, got %d", got)
	}
	if len(rep.Dropped) != 1 {
		t.Fatalf("Expected 1 dropped record, got %d", len(rep.Dropped))
	}
	merr := rep.Dropped[0]
	if merr.Kind != KindFood || merr.Index != 2 || merr.Field != "x" {
		t.Errorf("Unexpected drop detail: %+v", merr)
	}
	if !errors.Is(merr, ErrMalformedRecord) {
		t.Error("Expected drop to wrap ErrMalformedRecord")
	}
	if !strings.Contains(logs.String(), "[WARN]") {
		t.Errorf("Expected a warning in the log, got %q", logs.String())
	}
}

func TestRecordValidation(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		field string
	}{
		{"Missing x", `{"type":"delta","players":[{"id":"p9","y":1}]}`, "x"},
		{"String coordinate", `{"type":"delta","players":[{"id":"p9","x":"1","y":1}]}`, "x"},
		{"Out of bounds", `{"type":"delta","players":[{"id":"p9","x":1001,"y":1}]}`, ""},
		{"Negative", `{"type":"delta","players":[{"id":"p9","x":5,"y":-1}]}`, ""},
		{"Missing id", `{"type":"delta","players":[{"x":5,"y":5}]}`, "id"},
		{"Bad score", `{"type":"delta","players":[{"id":"p9","x":5,"y":5,"score":"high"}]}`, "score"},
		{"Not an object", `{"type":"delta","players":[42]}`, ""},
		{"Bad properties", `{"type":"delta","power_ups":[{"x":5,"y":5,"properties":"fast"}]}`, "properties"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newTestIngester(t)
			mustIngest(t, in, sessionStart)

			rep := mustIngest(t, in, tt.frame)
			if len(rep.Dropped) != 1 {
				t.Fatalf("Expected 1 dropped record, got %d", len(rep.Dropped))
			}
			if rep.Dropped[0].Field != tt.field {
				t.Errorf("Expected field %q, got %q (%v)", tt.field, rep.Dropped[0].Field, rep.Dropped[0])
			}
			if _, ok := in.Store().Player("p9"); ok {
				t.Error("Expected malformed player to stay out of the store")
			}
		})
	}
}

func TestRecordsBeforeBoundsAreDropped(t *testing.T) {
	in, _ := newTestIngester(t)

	rep := mustIngest(t, in, `{"type":"delta","players":[{"id":"p1","x":1,"y":1}]}`)

	if len(rep.Dropped) != 1 || rep.Applied {
		t.Errorf("Expected record dropped without commit, got %+v", rep)
	}
}

func TestNormalizeTier(t *testing.T) {
	tests := []struct {
		in   string
		want world.Tier
	}{
		{"common", world.TierCommon},
		{"RARE", world.TierRare},
		{" epic ", world.TierEpic},
		{"legendary", world.TierCommon},
		{"", world.TierCommon},
	}
	for _, tt := range tests {
		if got := NormalizeTier(tt.in); got != tt.want {
			t.Errorf("NormalizeTier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeColor(t *testing.T) {
	fallback := world.Color{R: 1, G: 2, B: 3}
	tests := []struct {
		in   string
		want world.Color
	}{
		{"#ff8000", world.Color{R: 255, G: 128, B: 0}},
		{"#F80", world.Color{R: 255, G: 136, B: 0}},
		{"red", world.Color{R: 255, G: 0, B: 0}},
		{"not-a-color", fallback},
		{"#zzzzzz", fallback},
		{"", fallback},
	}
	for _, tt := range tests {
		if got := NormalizeColor(tt.in, fallback); got != tt.want {
			t.Errorf("NormalizeColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUnknownTierRendersAsCommon(t *testing.T) {
	in, _ := newTestIngester(t)
	mustIngest(t, in, sessionStart)

	mustIngest(t, in, `{"type":"food_update","food":[{"x":5,"y":5,"type":"mythic","color":"#123456"}]}`)

	food := in.Store().Food()
	if len(food) != 1 || food[0].Tier != world.TierCommon {
		t.Errorf("Expected common tier fallback, got %+v", food)
	}
}

func TestIdentityClaimsFirstWins(t *testing.T) {
	in, logs := newTestIngester(t)
	mustIngest(t, in, sessionStart)

	mustIngest(t, in, `{"type":"game_state","yourPlayerId":"p2","players":{"p1":{"x":1,"y":1},"p2":{"x":2,"y":2}}}`)

	if got := in.Store().LocalID(); got != "p1" {
		t.Errorf("Expected identity to stay p1, got %q", got)
	}
	if !strings.Contains(logs.String(), "ignoring identity claim") {
		t.Errorf("Expected replayed identity to be logged, got %q", logs.String())
	}
}

func TestConflictingBoundsIgnored(t *testing.T) {
	in, logs := newTestIngester(t)
	mustIngest(t, in, sessionStart)

	mustIngest(t, in, `{"type":"snapshot","mapWidth":50,"mapHeight":50,"players":{}}`)

	if b, _ := in.Store().Bounds(); b.Width != 1000 {
		t.Errorf("Expected bounds to stay fixed, got %v", b)
	}
	if !strings.Contains(logs.String(), "ignoring map size") {
		t.Errorf("Expected bounds conflict warning, got %q", logs.String())
	}
}

func TestNewSessionReplacesState(t *testing.T) {
	tests := []struct {
		name  string
		frame string
	}{
		{"game_started", `{"type":"game_started","mapWidth":800,"mapHeight":600,"yourPlayerId":"p7",
			"players":{"p7":{"x":10,"y":10,"current_speed":5}}}`},
		{"game_joined", `{"type":"game_joined","mapWidth":800,"mapHeight":600,"yourPlayerId":"p7",
			"players":{"p7":{"x":10,"y":10,"current_speed":5}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, logs := newTestIngester(t)
			mustIngest(t, in, sessionStart)
			mustIngest(t, in, `{"type":"power_up_spawned","power_ups":[{"x":3,"y":3}]}`)

			rep := mustIngest(t, in, tt.frame)
			if !rep.Applied || !rep.SessionStart {
				t.Fatalf("Expected applied session start, got %+v", rep)
			}

			s := in.Store()
			if s.LocalID() != "p7" {
				t.Errorf("Expected identity p7, got %q", s.LocalID())
			}
			if b, _ := s.Bounds(); b != (world.Bounds{Width: 800, Height: 600}) {
				t.Errorf("Expected bounds 800x600, got %v", b)
			}
			if got := ids(s.Players()); !reflect.DeepEqual(got, []string{"p7"}) {
				t.Errorf("Expected only p7, got %v", got)
			}
			if len(s.Food()) != 0 || len(s.PowerUps()) != 0 {
				t.Errorf("Expected previous session collections gone, got food=%d powerups=%d",
					len(s.Food()), len(s.PowerUps()))
			}
			if p, ok := s.LocalPlayer(); !ok || p.CurrentSpeed != 5 {
				t.Errorf("Expected local speed 5, got %+v (found=%v)", p, ok)
			}
			if strings.Contains(logs.String(), "ignoring") {
				t.Errorf("Expected no conflict warnings, got %q", logs.String())
			}
		})
	}
}

func TestNewSessionKeepsPresetBounds(t *testing.T) {
	in, logs := newTestIngester(t)
	preset := world.Bounds{Width: 3000, Height: 2000}
	if err := in.Store().PresetBounds(preset); err != nil {
		t.Fatalf("PresetBounds failed: %v", err)
	}

	rep := mustIngest(t, in, sessionStart)

	if b, _ := in.Store().Bounds(); b != preset {
		t.Errorf("Expected preset bounds %v, got %v", preset, b)
	}
	if rep.Players != 2 {
		t.Errorf("Expected 2 players validated against preset bounds, got %d", rep.Players)
	}
	if !strings.Contains(logs.String(), "configured bounds") {
		t.Errorf("Expected map size override warning, got %q", logs.String())
	}
}

func TestDroppedSnapshotPlayerKeepsPriorRecord(t *testing.T) {
	in, _ := newTestIngester(t)
	mustIngest(t, in, sessionStart)

	rep := mustIngest(t, in, `{"type":"players_update","players":{
		"p1":{"x":510,"y":510,"score":11},
		"p2":{"x":"NaN","y":900}}}`)

	if len(rep.Dropped) != 1 || rep.Kept != 1 {
		t.Fatalf("Expected one dropped and kept record, got %+v", rep)
	}
	s := in.Store()
	if got := ids(s.Players()); !reflect.DeepEqual(got, []string{"p1", "p2"}) {
		t.Fatalf("Expected players p1,p2, got %v", got)
	}
	if p, _ := s.Player("p2"); p.X != 100 || p.Y != 900 || p.Score != 3 {
		t.Errorf("Expected p2 at its previous state, got %+v", p)
	}
	if p, _ := s.Player("p1"); p.X != 510 {
		t.Errorf("Expected p1 updated, got %+v", p)
	}

	// A player that was never stored still cannot be conjured from a bad record
	mustIngest(t, in, `{"type":"players_update","players":[{"id":"p1","x":1,"y":1},{"id":"p9","x":-5,"y":1}]}`)
	if got := ids(s.Players()); !reflect.DeepEqual(got, []string{"p1"}) {
		t.Errorf("Expected only p1, got %v", got)
	}
}

func TestFoodRemovalByPosition(t *testing.T) {
	tests := []struct {
		name    string
		removed string
		left    int
	}{
		{"position only", `[{"x":2,"y":2}]`, 1},
		{"tier without color", `[{"x":2,"y":2,"type":"epic"}]`, 1},
		{"color ignored", `[{"x":2,"y":2,"type":"epic","color":"red"}]`, 1},
		{"tier mismatch", `[{"x":2,"y":2,"type":"rare"}]`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, _ := newTestIngester(t)
			mustIngest(t, in, sessionStart)

			rep := mustIngest(t, in, `{"type":"delta","removed":{"food":`+tt.removed+`}}`)

			if len(rep.Dropped) != 0 {
				t.Fatalf("Expected no dropped records, got %v", rep.Dropped)
			}
			if n := len(in.Store().Food()); n != tt.left {
				t.Errorf("Expected %d food items left, got %d", tt.left, n)
			}
		})
	}
}

func TestPlayerEatenAndDisconnected(t *testing.T) {
	in, _ := newTestIngester(t)
	mustIngest(t, in, sessionStart)

	mustIngest(t, in, `{"type":"player_eat_other_player","player_eaten":"p2",
		"players":{"p1":{"x":500,"y":500,"score":20},"p2":{"x":100,"y":900}}}`)
	if _, ok := in.Store().Player("p2"); ok {
		t.Error("Expected eaten player removed")
	}

	mustIngest(t, in, `{"type":"player_disconnected","playerId":"p1"}`)
	if n := len(in.Store().Players()); n != 0 {
		t.Errorf("Expected no players left, got %d", n)
	}
}

func TestDeltaSemantics(t *testing.T) {
	in, _ := newTestIngester(t)
	mustIngest(t, in, sessionStart)

	mustIngest(t, in, `{"type":"delta",
		"players":[{"id":"p3","name":"carol","x":3,"y":3}],
		"food":[{"x":7,"y":7,"type":"rare","color":"#0000ff"}],
		"power_ups":[{"x":9,"y":9,"properties":{"color":"gold","effect":"speed"}}],
		"removed":{"players":["p2"],"food":[{"x":1,"y":1,"type":"common","color":"green"}]}}`)

	s := in.Store()
	if got := ids(s.Players()); !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Errorf("Expected players p1,p3, got %v", got)
	}
	if n := len(s.Food()); n != 2 {
		t.Errorf("Expected 2 food items after diff, got %d", n)
	}
	pus := s.PowerUps()
	if len(pus) != 1 || pus[0].Properties.Effect["effect"] != "speed" {
		t.Errorf("Expected power-up with effect metadata, got %+v", pus)
	}

	mustIngest(t, in, `{"type":"delta","removed":{"power_ups":[{"x":9,"y":9}]}}`)
	if n := len(s.PowerUps()); n != 0 {
		t.Errorf("Expected power-up removed, got %d", n)
	}
}

func TestIgnoredMessages(t *testing.T) {
	in, logs := newTestIngester(t)
	mustIngest(t, in, sessionStart)
	before := in.Store().Version()

	for _, frame := range []string{
		`{"type":"waiting_room","games":[]}`,
		`{"type":"return_to_waiting_room","message":"Score final : 20"}`,
		`{"type":"fireworks","players":{}}`,
	} {
		if rep := mustIngest(t, in, frame); rep.Applied {
			t.Errorf("Expected %s to be ignored", rep.Type)
		}
	}
	if in.Store().Version() != before {
		t.Error("Expected store untouched by ignored messages")
	}
	if !strings.Contains(logs.String(), "fireworks") {
		t.Errorf("Expected unknown type to be logged, got %q", logs.String())
	}
}

func TestUndecodableFrame(t *testing.T) {
	in, _ := newTestIngester(t)

	for _, frame := range []string{`not json`, `[1,2]`, `null`, `{"type": 5}`, `{"players": 7}`} {
		if _, err := in.Ingest([]byte(frame), false); !errors.Is(err, ErrFrame) {
			t.Errorf("Ingest(%q): expected ErrFrame, got %v", frame, err)
		}
	}
}

func TestMsgpackFrame(t *testing.T) {
	in, _ := newTestIngester(t)

	frame := map[string]any{
		"type":         "game_started",
		"mapWidth":     200,
		"mapHeight":    100.5,
		"yourPlayerId": "p1",
		"players": []any{
			map[string]any{"id": "p1", "x": 10, "y": 20.5, "score": uint8(7)},
		},
		"powerUps": []any{
			map[string]any{"x": 1, "y": 2, "properties": map[string]any{"color": "#00ff00"}},
		},
	}
	data, err := msgpack.Marshal(frame)
	if err != nil {
		t.Fatalf("msgpack.Marshal failed: %v", err)
	}

	rep, err := in.Ingest(data, true)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if !rep.Applied || rep.Players != 1 || rep.PowerUps != 1 {
		t.Fatalf("Unexpected report: %+v", rep)
	}

	p, ok := in.Store().LocalPlayer()
	if !ok || p.Score != 7 || p.Y != 20.5 {
		t.Errorf("Unexpected local player: %+v (ok=%v)", p, ok)
	}
	if b, _ := in.Store().Bounds(); b.Height != 100.5 {
		t.Errorf("Expected height 100.5, got %v", b.Height)
	}
}

func TestSnapshotFrameIdempotent(t *testing.T) {
	in, _ := newTestIngester(t)
	mustIngest(t, in, sessionStart)
	first := in.Store().Snapshot()

	mustIngest(t, in, sessionStart)
	second := in.Store().Snapshot()

	first.Version, second.Version = 0, 0
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical state after replay:\n%+v\n%+v", first, second)
	}
}

func ids(players []world.Player) []string {
	out := make([]string, len(players))
	for i, p := range players {
		out[i] = p.ID
	}
	return out
}
