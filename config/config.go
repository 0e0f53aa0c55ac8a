package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/arena-hud/network"
	"github.com/lixenwraith/arena-hud/overlay"
	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/world"
)

// Config is the complete client configuration
// Precedence, lowest first: Default, TOML file, environment, command-line flags
type Config struct {
	Network NetworkConfig `toml:"network"`
	Overlay OverlayConfig `toml:"overlay"`
	World   WorldConfig   `toml:"world"`
	Audio   AudioConfig   `toml:"audio"`
	Debug   bool          `toml:"debug"`
}

// NetworkConfig is the [network] section
type NetworkConfig struct {
	URL            string        `toml:"url"`
	Join           string        `toml:"join"`
	Codec          string        `toml:"codec"`
	DialTimeout    time.Duration `toml:"dial_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout"`
	PongTimeout    time.Duration `toml:"pong_timeout"`
	PingInterval   time.Duration `toml:"ping_interval"`
	ReconnectDelay time.Duration `toml:"reconnect_delay"`
	ReadLimit      int64         `toml:"read_limit"`
	QueueSize      int           `toml:"queue_size"`
}

// OverlayConfig is the [overlay] section
type OverlayConfig struct {
	MinimapSize     float64       `toml:"minimap_size"`
	MinimapCols     int           `toml:"minimap_cols"`
	MinimapRows     int           `toml:"minimap_rows"`
	ScoreboardWidth int           `toml:"scoreboard_width"`
	PowerUpsOnInit  bool          `toml:"power_ups_on_init"`
	FrameInterval   time.Duration `toml:"frame_interval"`
}

// WorldConfig is the [world] section
// Both dimensions zero means bounds come from the session start message
type WorldConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// AudioConfig is the [audio] section
type AudioConfig struct {
	Enabled   bool    `toml:"enabled"`
	Milestone float64 `toml:"milestone"` // Score step that plays a cue, 0 disables
}

// Default returns the built-in configuration
func Default() *Config {
	nc := network.DefaultConfig()
	hud := render.DefaultHUDConfig()
	return &Config{
		Network: NetworkConfig{
			URL:            nc.URL,
			Codec:          string(nc.Codec),
			DialTimeout:    nc.DialTimeout,
			WriteTimeout:   nc.WriteTimeout,
			PongTimeout:    nc.PongTimeout,
			PingInterval:   nc.PingInterval,
			ReconnectDelay: nc.ReconnectDelay,
			ReadLimit:      nc.ReadLimit,
			QueueSize:      nc.QueueSize,
		},
		Overlay: OverlayConfig{
			MinimapSize:     hud.MinimapSize,
			MinimapCols:     hud.MinimapCols,
			MinimapRows:     hud.MinimapRows,
			ScoreboardWidth: hud.ScoreboardWidth,
			FrameInterval:   16 * time.Millisecond,
		},
		Audio: AudioConfig{
			Enabled:   true,
			Milestone: 50,
		},
	}
}

// Load reads a TOML file over the defaults
// Unknown keys are rejected so typos do not silently fall back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config: load %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.FeedConfig().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	o := c.Overlay
	if !(o.MinimapSize > 0) || math.IsInf(o.MinimapSize, 0) {
		return fmt.Errorf("config: overlay.minimap_size must be positive, got %v", o.MinimapSize)
	}
	if o.MinimapCols < 1 || o.MinimapRows < 1 || o.ScoreboardWidth < 1 {
		return errors.New("config: overlay cell dimensions must be positive")
	}
	if o.FrameInterval <= 0 {
		return fmt.Errorf("config: overlay.frame_interval must be positive, got %v", o.FrameInterval)
	}

	if c.World.Width != 0 || c.World.Height != 0 {
		if _, ok := c.WorldBounds(); !ok {
			return fmt.Errorf("config: world bounds %vx%v invalid", c.World.Width, c.World.Height)
		}
	}

	if c.Audio.Milestone < 0 {
		return fmt.Errorf("config: audio.milestone must not be negative, got %v", c.Audio.Milestone)
	}
	return nil
}

// FeedConfig converts the [network] section for the feed
func (c *Config) FeedConfig() *network.Config {
	n := c.Network
	return &network.Config{
		URL:            n.URL,
		Join:           n.Join,
		Codec:          network.Codec(n.Codec),
		DialTimeout:    n.DialTimeout,
		WriteTimeout:   n.WriteTimeout,
		PongTimeout:    n.PongTimeout,
		PingInterval:   n.PingInterval,
		ReconnectDelay: n.ReconnectDelay,
		ReadLimit:      n.ReadLimit,
		QueueSize:      n.QueueSize,
	}
}

// HUDConfig converts the [overlay] section for the terminal layout
func (c *Config) HUDConfig() render.HUDConfig {
	hud := render.DefaultHUDConfig()
	hud.MinimapSize = c.Overlay.MinimapSize
	hud.MinimapCols = c.Overlay.MinimapCols
	hud.MinimapRows = c.Overlay.MinimapRows
	hud.ScoreboardWidth = c.Overlay.ScoreboardWidth
	return hud
}

// OverlayOptions converts the [overlay] section for the renderer
func (c *Config) OverlayOptions() overlay.Options {
	return overlay.Options{PowerUpsOnInit: c.Overlay.PowerUpsOnInit}
}

// WorldBounds returns the pre-seeded bounds, false when unset or invalid
func (c *Config) WorldBounds() (world.Bounds, bool) {
	b := world.Bounds{Width: c.World.Width, Height: c.World.Height}
	return b, b.Valid()
}
