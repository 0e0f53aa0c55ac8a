package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadEnv
const (
	EnvURL   = "ARENA_HUD_URL"
	EnvJoin  = "ARENA_HUD_JOIN"
	EnvCodec = "ARENA_HUD_CODEC"
	EnvDebug = "ARENA_HUD_DEBUG"
	EnvMute  = "ARENA_HUD_MUTE"
)

// LoadEnv applies environment overrides to cfg
// Variables may also come from dotenv files; the process environment wins over file values,
// an earlier file wins over a later one and missing files are skipped individually
func LoadEnv(cfg *Config, files ...string) error {
	fileVars := make(map[string]string)
	for _, file := range files {
		vars, err := godotenv.Read(file)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return fmt.Errorf("config: read env file %s: %w", file, err)
		}
		for k, v := range vars {
			if _, seen := fileVars[k]; !seen {
				fileVars[k] = v
			}
		}
	}

	return applyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// applyEnv copies recognized variables from lookup into cfg
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvURL); ok && v != "" {
		cfg.Network.URL = v
	}
	if v, ok := lookup(EnvJoin); ok {
		cfg.Network.Join = v
	}
	if v, ok := lookup(EnvCodec); ok && v != "" {
		cfg.Network.Codec = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}
	if v, ok := lookup(EnvMute); ok && v != "" {
		mute, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMute, err)
		}
		cfg.Audio.Enabled = !mute
	}
	return nil
}
