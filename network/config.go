package network

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Codec selects the encoding of outbound messages
type Codec string

const (
	CodecJSON    Codec = "json"
	CodecMsgpack Codec = "msgpack"
)

// Config holds feed configuration
type Config struct {
	// URL of the game websocket endpoint, ws:// or wss://
	URL string

	// Join is the game id to join, empty starts a new game
	Join string

	// Codec for the bootstrap message
	Codec Codec

	// TLS configuration for wss:// (nil = system defaults)
	TLS *tls.Config

	// Timing
	DialTimeout    time.Duration
	WriteTimeout   time.Duration
	PongTimeout    time.Duration // Read deadline, extended by every frame and pong
	PingInterval   time.Duration // Must be shorter than PongTimeout
	ReconnectDelay time.Duration

	// Limits
	ReadLimit int64 // Max inbound frame size in bytes
	QueueSize int   // Frames buffered for the engine
}

// DefaultConfig returns production-safe defaults
func DefaultConfig() *Config {
	return &Config{
		URL:            "ws://localhost:8000/ws/game/",
		Codec:          CodecJSON,
		DialTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		PongTimeout:    30 * time.Second,
		PingInterval:   10 * time.Second,
		ReconnectDelay: 2 * time.Second,
		ReadLimit:      1 << 20,
		QueueSize:      256,
	}
}

// Validate checks the configuration for values the feed cannot run with
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("network: invalid url %q: %w", c.URL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("network: url %q: scheme must be ws or wss", c.URL)
	}
	if c.Codec != CodecJSON && c.Codec != CodecMsgpack {
		return fmt.Errorf("network: unknown codec %q", c.Codec)
	}
	if c.PingInterval <= 0 || c.PongTimeout <= c.PingInterval {
		return errors.New("network: ping interval must be positive and shorter than pong timeout")
	}
	if c.QueueSize < 1 {
		return errors.New("network: queue size must be positive")
	}
	return nil
}
