package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/arena-hud/world"
)

// ErrMalformedRecord is wrapped by every per-record validation failure
var ErrMalformedRecord = errors.New("malformed record")

// RecordKind names the entity collection a record belongs to
type RecordKind string

const (
	KindPlayer  RecordKind = "player"
	KindFood    RecordKind = "food"
	KindPowerUp RecordKind = "power_up"
)

// MalformedRecordError describes one dropped record
type MalformedRecordError struct {
	Kind   RecordKind
	Index  int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed %s record #%d: %s", e.Kind, e.Index, e.Reason)
	}
	return fmt.Sprintf("malformed %s record #%d: field %q: %s", e.Kind, e.Index, e.Field, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Default marker colors per tier, used when the wire color is missing or unknown
var (
	ColorCommon  = world.Color{R: 0, G: 128, B: 0}    // green
	ColorRare    = world.Color{R: 30, G: 144, B: 255} // dodgerblue
	ColorEpic    = world.Color{R: 186, G: 85, B: 211} // mediumorchid
	ColorPowerUp = world.Color{R: 255, G: 215, B: 0}  // gold
)

// recordParser validates raw records against the session bounds
type recordParser struct {
	bounds    world.Bounds
	hasBounds bool
}

func (rp *recordParser) fail(kind RecordKind, idx int, field, format string, args ...any) *MalformedRecordError {
	return &MalformedRecordError{
		Kind:   kind,
		Index:  idx,
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// position validates a required coordinate pair
func (rp *recordParser) position(kind RecordKind, idx int, m map[string]any) (float64, float64, *MalformedRecordError) {
	if !rp.hasBounds {
		return 0, 0, rp.fail(kind, idx, "", "world bounds not set")
	}

	x, err := requiredNumber(m, "x")
	if err != nil {
		return 0, 0, rp.fail(kind, idx, "x", "%v", err)
	}
	y, err := requiredNumber(m, "y")
	if err != nil {
		return 0, 0, rp.fail(kind, idx, "y", "%v", err)
	}
	if !rp.bounds.Contains(x, y) {
		return 0, 0, rp.fail(kind, idx, "", "position (%g, %g) outside %gx%g", x, y, rp.bounds.Width, rp.bounds.Height)
	}
	return x, y, nil
}

// player validates a player record, key is the object key when the collection was keyed by ID
func (rp *recordParser) player(idx int, rec Record) (world.Player, *MalformedRecordError) {
	m, ok := asMap(rec.Value)
	if !ok {
		return world.Player{}, rp.fail(KindPlayer, idx, "", "expected object, got %T", rec.Value)
	}

	id := rec.Key
	if raw, ok := m["id"]; ok {
		s, ok := idString(raw)
		if !ok {
			return world.Player{}, rp.fail(KindPlayer, idx, "id", "expected string or integer, got %T", raw)
		}
		id = s
	}
	if id == "" {
		return world.Player{}, rp.fail(KindPlayer, idx, "id", "missing")
	}

	x, y, merr := rp.position(KindPlayer, idx, m)
	if merr != nil {
		return world.Player{}, merr
	}

	p := world.Player{ID: id, X: x, Y: y}

	if raw, ok := m["name"]; ok && raw != nil {
		name, ok := raw.(string)
		if !ok {
			return world.Player{}, rp.fail(KindPlayer, idx, "name", "expected string, got %T", raw)
		}
		p.Name = name
	}

	var err error
	if p.Score, err = optionalNumber(m, "score"); err != nil {
		return world.Player{}, rp.fail(KindPlayer, idx, "score", "%v", err)
	}
	for _, key := range []string{"current_speed", "currentSpeed"} {
		if _, ok := m[key]; !ok {
			continue
		}
		if p.CurrentSpeed, err = optionalNumber(m, key); err != nil {
			return world.Player{}, rp.fail(KindPlayer, idx, key, "%v", err)
		}
		break
	}

	return p, nil
}

// food validates a food record, normalizing tier and color
func (rp *recordParser) food(idx int, rec Record) (world.Food, *MalformedRecordError) {
	m, ok := asMap(rec.Value)
	if !ok {
		return world.Food{}, rp.fail(KindFood, idx, "", "expected object, got %T", rec.Value)
	}

	x, y, merr := rp.position(KindFood, idx, m)
	if merr != nil {
		return world.Food{}, merr
	}

	tierName, _ := tierField(m)
	tier := NormalizeTier(tierName)

	colorName, _ := m["color"].(string)
	return world.Food{
		X:     x,
		Y:     y,
		Tier:  tier,
		Color: NormalizeColor(colorName, tierColor(tier)),
	}, nil
}

// powerUp validates a power-up record
// Properties other than color are kept verbatim as effect metadata
func (rp *recordParser) powerUp(idx int, rec Record) (world.PowerUp, *MalformedRecordError) {
	m, ok := asMap(rec.Value)
	if !ok {
		return world.PowerUp{}, rp.fail(KindPowerUp, idx, "", "expected object, got %T", rec.Value)
	}

	x, y, merr := rp.position(KindPowerUp, idx, m)
	if merr != nil {
		return world.PowerUp{}, merr
	}

	pu := world.PowerUp{
		X:          x,
		Y:          y,
		Properties: world.PowerUpProperties{Color: ColorPowerUp},
	}

	raw, ok := m["properties"]
	if !ok || raw == nil {
		return pu, nil
	}
	props, ok := asMap(raw)
	if !ok {
		return world.PowerUp{}, rp.fail(KindPowerUp, idx, "properties", "expected object, got %T", raw)
	}

	for k, v := range props {
		if k == "color" {
			name, _ := v.(string)
			pu.Properties.Color = NormalizeColor(name, ColorPowerUp)
			continue
		}
		if pu.Properties.Effect == nil {
			pu.Properties.Effect = make(map[string]any, len(props))
		}
		pu.Properties.Effect[k] = v
	}
	return pu, nil
}

// foodRemoval validates a food removal, tier narrows the match only when present
func (rp *recordParser) foodRemoval(idx int, rec Record) (world.FoodRemoval, *MalformedRecordError) {
	pt, merr := rp.point(KindFood, idx, rec)
	if merr != nil {
		return world.FoodRemoval{}, merr
	}
	r := world.FoodRemoval{X: pt.X, Y: pt.Y}
	m, _ := asMap(rec.Value)
	if name, ok := tierField(m); ok {
		r.Tier = NormalizeTier(name)
		r.HasTier = true
	}
	return r, nil
}

// tierField returns the wire tier name under either of its keys
func tierField(m map[string]any) (string, bool) {
	for _, key := range []string{"type", "tier"} {
		if s, ok := m[key].(string); ok {
			return s, true
		}
	}
	return "", false
}

// recordID recovers the player ID of a record that failed validation, empty when unreadable
func recordID(rec Record) string {
	if m, ok := asMap(rec.Value); ok {
		if raw, ok := m["id"]; ok {
			id, _ := idString(raw)
			return id
		}
	}
	return rec.Key
}

// point validates a bare position used by removal lists
func (rp *recordParser) point(kind RecordKind, idx int, rec Record) (world.Point, *MalformedRecordError) {
	m, ok := asMap(rec.Value)
	if !ok {
		return world.Point{}, rp.fail(kind, idx, "", "expected object, got %T", rec.Value)
	}
	x, y, merr := rp.position(kind, idx, m)
	if merr != nil {
		return world.Point{}, merr
	}
	return world.Point{X: x, Y: y}, nil
}

// NormalizeTier maps a wire tier name to the canonical set, unknown names fall back to common
func NormalizeTier(name string) world.Tier {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "epic":
		return world.TierEpic
	case "rare":
		return world.TierRare
	default:
		return world.TierCommon
	}
}

// NormalizeColor parses #rgb, #rrggbb or a CSS/X11 color name
// Returns fallback when the value is empty or unrecognized
func NormalizeColor(value string, fallback world.Color) world.Color {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return fallback
	}

	if strings.HasPrefix(s, "#") {
		if len(s) == 4 {
			s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
		}
		c, err := colorful.Hex(s)
		if err != nil {
			return fallback
		}
		r, g, b := c.RGB255()
		return world.Color{R: r, G: g, B: b}
	}

	tc, ok := tcell.ColorNames[s]
	if !ok {
		return fallback
	}
	r, g, b := tc.RGB()
	return world.Color{R: uint8(r), G: uint8(g), B: uint8(b)}
}

func tierColor(t world.Tier) world.Color {
	switch t {
	case world.TierEpic:
		return ColorEpic
	case world.TierRare:
		return ColorRare
	default:
		return ColorCommon
	}
}

// ===== RAW VALUE HELPERS =====

var errMissing = errors.New("missing")

func requiredNumber(m map[string]any, key string) (float64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, errMissing
	}
	return toNumber(raw)
}

func optionalNumber(m map[string]any, key string) (float64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return 0, nil
	}
	return toNumber(raw)
}

// toNumber accepts JSON numbers and every msgpack numeric type, strings are rejected
func toNumber(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return 0, fmt.Errorf("not a finite number: %s", v)
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}

// idString accepts string IDs and integral numeric IDs
func idString(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		if _, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return string(v), true
		}
		return "", false
	case int8, int16, int32, int64, int, uint8, uint16, uint32, uint64, uint:
		return fmt.Sprint(v), true
	}
	return "", false
}

// asMap accepts both map shapes produced by the json and msgpack decoders
func asMap(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}
