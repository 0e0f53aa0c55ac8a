package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/ttacon/chalk"
	"golang.org/x/term"

	"github.com/lixenwraith/arena-hud/audio"
	"github.com/lixenwraith/arena-hud/config"
	"github.com/lixenwraith/arena-hud/core"
	"github.com/lixenwraith/arena-hud/engine"
	"github.com/lixenwraith/arena-hud/ingest"
	"github.com/lixenwraith/arena-hud/network"
	"github.com/lixenwraith/arena-hud/overlay"
	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/service"
	"github.com/lixenwraith/arena-hud/status"
	"github.com/lixenwraith/arena-hud/world"
)

func main() {
	// The main goroutine restores the terminal on panic too
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fatal(err)
	}

	if logFile := setupLogging(cfg.Debug); logFile != nil {
		defer logFile.Close()
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fatal(errors.New("stdout is not a terminal"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, fmtFatal(err.Error()))
	os.Exit(1)
}

func fmtFatal(msg string) string {
	return chalk.Red.Color("arena-hud: " + msg)
}

// run owns the terminal for the lifetime of one client session
func run(ctx context.Context, cfg *config.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	core.SetCrashReset(screen.Fini)
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.Clear()

	hud, err := render.NewHUD(screen, cfg.HUDConfig())
	if err != nil {
		return err
	}

	store := world.NewStore()
	if b, ok := cfg.WorldBounds(); ok {
		if err := store.PresetBounds(b); err != nil {
			return err
		}
	}
	ingester := ingest.NewIngester(store, nil)
	ov := overlay.New(store, overlay.Targets{
		Minimap:     hud.Minimap,
		Scoreboard:  hud.Scoreboard,
		Speedometer: hud.Speedometer,
	}, cfg.OverlayOptions())

	feed := network.NewFeed(nil)
	player := audio.NewCuePlayer(nil)

	hub := service.NewHub(nil)
	if err := hub.Register(player, !cfg.Audio.Enabled); err != nil {
		return err
	}
	if err := hub.Register(feed, cfg.FeedConfig()); err != nil {
		return err
	}
	if err := hub.InitAll(); err != nil {
		return err
	}
	if err := hub.StartAll(); err != nil {
		return err
	}
	defer hub.StopAll()

	metrics := status.NewRegistry()
	defer logSessionMetrics(log.Default(), metrics)

	statusLine := &statusSource{feed: feed, audio: player}
	loop := engine.NewLoop(engine.LoopConfig{
		FrameInterval: cfg.Overlay.FrameInterval,
		Presenter:     hud,
		Observers: []engine.Observer{
			statusObserver(hud.Status, statusLine),
			metricsObserver(metrics, store, feed),
			audio.NewWatcher(store, player, cfg.Audio.Milestone),
		},
	}, ingester, ov, feed.Frames())
	statusLine.loop = loop

	ctx, cancel := context.WithCancel(ctx)
	loopErr := make(chan error, 1)
	loopDone := make(chan struct{})
	core.Go(func() {
		defer close(loopDone)
		loopErr <- loop.Run(ctx)
	})
	// The loop draws to the screen, it must be gone before Fini
	defer func() {
		cancel()
		<-loopDone
	}()

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	// PollEvent returns nil once the screen is finalized
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	})

	log.Printf("[INFO] arena-hud: started, server %s", cfg.Network.URL)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-loopErr:
			return err
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !handleEvent(ev, hud, player) {
				return nil
			}
		}
	}
}

// handleEvent reacts to terminal input, returns false to quit
func handleEvent(ev tcell.Event, hud interface{ Resize(int, int) }, player interface{ ToggleMute() bool }) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'm':
			muted := player.ToggleMute()
			log.Printf("[INFO] arena-hud: audio muted=%v", muted)
		}
	case *tcell.EventResize:
		w, h := ev.Size()
		hud.Resize(w, h)
	}
	return true
}
