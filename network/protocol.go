package network

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Outbound message types understood by the game server
const (
	MsgStartGame = "start_game"
	MsgJoinGame  = "join_game"
)

// bootstrap asks the server to start or join a game once connected
type bootstrap struct {
	Type   string `json:"type" msgpack:"type"`
	GameID string `json:"gameId,omitempty" msgpack:"gameId,omitempty"`
}

// newBootstrap builds the session request for cfg
func newBootstrap(cfg *Config) bootstrap {
	if cfg.Join != "" {
		return bootstrap{Type: MsgJoinGame, GameID: cfg.Join}
	}
	return bootstrap{Type: MsgStartGame}
}

// encode returns the websocket message type and payload for codec
func (b bootstrap) encode(codec Codec) (int, []byte, error) {
	switch codec {
	case CodecMsgpack:
		data, err := msgpack.Marshal(b)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s: %w", b.Type, err)
		}
		return websocket.BinaryMessage, data, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s: %w", b.Type, err)
		}
		return websocket.TextMessage, data, nil
	}
}
