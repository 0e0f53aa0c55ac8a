package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// ErrFrame is wrapped by every whole-frame decode failure
var ErrFrame = errors.New("ingest: undecodable frame")

// Record is one raw entity as found on the wire
// Key is the object key when the collection was keyed by ID, empty for arrays
type Record struct {
	Key   string
	Value any
}

// Removal lists carried by a delta
type Removal struct {
	Players  []any
	Food     []Record
	PowerUps []Record
}

// Message is a decoded but unvalidated feed frame
// Collections keep wire order so player encounter order survives decoding
type Message struct {
	Type string

	MapWidth  any
	MapHeight any
	Identity  any // yourPlayerId
	PlayerID  any // subject of player_disconnected
	Eaten     any // subject of player_eat_other_player

	Players     []Record
	HasPlayers  bool
	Food        []Record
	HasFood     bool
	PowerUps    []Record
	HasPowerUps bool

	Removed *Removal
}

// codec abstracts the two wire encodings over the same envelope shape
type codec interface {
	fields(data []byte) (map[string][]byte, error)
	value(data []byte) (any, error)
	records(data []byte) ([]Record, bool, error)
}

// Decoder turns raw frames into Messages
// Text frames are JSON, binary frames are msgpack
type Decoder struct {
	text   codec
	binary codec
}

// NewDecoder creates a decoder for both frame kinds
func NewDecoder() *Decoder {
	return &Decoder{
		text:   jsonCodec{},
		binary: msgpackCodec{},
	}
}

// Decode parses one frame
func (d *Decoder) Decode(data []byte, binary bool) (*Message, error) {
	c := d.text
	if binary {
		c = d.binary
	}

	fields, err := c.fields(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrame, err)
	}

	msg := &Message{}

	if raw, ok := fields["type"]; ok {
		v, err := c.value(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field \"type\": %v", ErrFrame, err)
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field \"type\": expected string, got %T", ErrFrame, v)
		}
		msg.Type = s
	}

	scalars := []struct {
		key string
		dst *any
	}{
		{"mapWidth", &msg.MapWidth},
		{"mapHeight", &msg.MapHeight},
		{"yourPlayerId", &msg.Identity},
		{"playerId", &msg.PlayerID},
		{"player_eaten", &msg.Eaten},
	}
	for _, sc := range scalars {
		raw, ok := fields[sc.key]
		if !ok {
			continue
		}
		v, err := c.value(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrFrame, sc.key, err)
		}
		*sc.dst = v
	}

	collections := []struct {
		keys []string
		dst  *[]Record
		has  *bool
	}{
		{[]string{"players"}, &msg.Players, &msg.HasPlayers},
		{[]string{"food"}, &msg.Food, &msg.HasFood},
		{[]string{"power_ups", "powerUps"}, &msg.PowerUps, &msg.HasPowerUps},
	}
	for _, col := range collections {
		for _, key := range col.keys {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			recs, present, err := c.records(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %v", ErrFrame, key, err)
			}
			*col.dst = recs
			*col.has = present
			break
		}
	}

	if raw, ok := fields["removed"]; ok {
		rm, err := decodeRemoval(c, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field \"removed\": %v", ErrFrame, err)
		}
		msg.Removed = rm
	}

	return msg, nil
}

func decodeRemoval(c codec, data []byte) (*Removal, error) {
	fields, err := c.fields(data)
	if err != nil {
		return nil, err
	}
	rm := &Removal{}

	if raw, ok := fields["players"]; ok {
		recs, _, err := c.records(raw)
		if err != nil {
			return nil, fmt.Errorf("players: %w", err)
		}
		for _, r := range recs {
			rm.Players = append(rm.Players, r.Value)
		}
	}
	if raw, ok := fields["food"]; ok {
		if rm.Food, _, err = c.records(raw); err != nil {
			return nil, fmt.Errorf("food: %w", err)
		}
	}
	for _, key := range []string{"power_ups", "powerUps"} {
		if raw, ok := fields[key]; ok {
			if rm.PowerUps, _, err = c.records(raw); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			break
		}
	}
	return rm, nil
}

// ===== JSON =====

type jsonCodec struct{}

func (jsonCodec) fields(data []byte) (map[string][]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected object, got null")
	}
	out := make(map[string][]byte, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out, nil
}

func (jsonCodec) value(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// records walks an object or array token by token to preserve wire order
func (jsonCodec) records(data []byte) ([]Record, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, false, err
	}

	switch tok {
	case nil:
		return nil, false, nil

	case json.Delim('{'):
		recs := make([]Record, 0, 8)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, false, err
			}
			key, _ := keyTok.(string)
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, false, err
			}
			recs = append(recs, Record{Key: key, Value: v})
		}
		return recs, true, nil

	case json.Delim('['):
		recs := make([]Record, 0, 8)
		for dec.More() {
			var v any
			if err := dec.Decode(&v); err != nil {
				return nil, false, err
			}
			recs = append(recs, Record{Value: v})
		}
		return recs, true, nil
	}

	return nil, false, fmt.Errorf("expected object or array, got %v", tok)
}

// ===== MSGPACK =====

type msgpackCodec struct{}

func (msgpackCodec) fields(data []byte) (map[string][]byte, error) {
	var raw map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("expected map, got nil")
	}
	out := make(map[string][]byte, len(raw))
	for k, v := range raw {
		out[k] = v
	}
	return out, nil
}

func (msgpackCodec) value(data []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// records reads map entries in encoded order, maps decode to Go maps otherwise
func (msgpackCodec) records(data []byte) ([]Record, bool, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	code, err := dec.PeekCode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		return nil, false, err
	}

	switch {
	case code == msgpcode.Nil:
		return nil, false, nil

	case msgpcode.IsFixedMap(code) || code == msgpcode.Map16 || code == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return nil, false, err
		}
		recs := make([]Record, 0, n)
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return nil, false, err
			}
			v, err := dec.DecodeInterface()
			if err != nil {
				return nil, false, err
			}
			recs = append(recs, Record{Key: key, Value: v})
		}
		return recs, true, nil

	case msgpcode.IsFixedArray(code) || code == msgpcode.Array16 || code == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return nil, false, err
		}
		recs := make([]Record, 0, n)
		for i := 0; i < n; i++ {
			v, err := dec.DecodeInterface()
			if err != nil {
				return nil, false, err
			}
			recs = append(recs, Record{Value: v})
		}
		return recs, true, nil
	}

	return nil, false, fmt.Errorf("expected map or array, got code 0x%x", code)
}
