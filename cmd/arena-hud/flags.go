package main

import (
	"flag"
	"io"

	"github.com/lixenwraith/arena-hud/config"
)

// options holds command-line flags
// Only flags set explicitly override the file and environment
type options struct {
	configPath string
	envFile    string
	url        string
	join       string
	codec      string
	debug      bool
	mute       bool

	set map[string]bool
}

func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("arena-hud", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.configPath, "config", "", "TOML config file")
	fs.StringVar(&opts.envFile, "env", ".env", "dotenv file, skipped when missing")
	fs.StringVar(&opts.url, "url", "", "game server websocket url")
	fs.StringVar(&opts.join, "join", "", "join an existing game by id instead of starting one")
	fs.StringVar(&opts.codec, "codec", "", "wire codec: json, msgpack")
	fs.BoolVar(&opts.debug, "debug", false, "write logs to logs/arena-hud.log")
	fs.BoolVar(&opts.mute, "mute", false, "start with audio cues muted")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply copies explicitly set flags into cfg
func (o *options) apply(cfg *config.Config) {
	if o.set["url"] {
		cfg.Network.URL = o.url
	}
	if o.set["join"] {
		cfg.Network.Join = o.join
	}
	if o.set["codec"] {
		cfg.Network.Codec = o.codec
	}
	if o.set["debug"] {
		cfg.Debug = o.debug
	}
	if o.set["mute"] {
		cfg.Audio.Enabled = !o.mute
	}
}

// loadConfig resolves the configuration: defaults, file, environment, then flags
func loadConfig(o *options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	if err := config.LoadEnv(cfg, envFiles...); err != nil {
		return nil, err
	}

	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
