package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/arena-hud/ingest"
	"github.com/lixenwraith/arena-hud/overlay"
	"github.com/lixenwraith/arena-hud/render"
	"github.com/lixenwraith/arena-hud/world"
)

// ErrAlreadyRunning is returned by Init after the loop has started
var ErrAlreadyRunning = errors.New("engine: loop already running")

// State is the loop lifecycle state
type State int32

const (
	StateIdle State = iota
	StateRunning
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// FrameIngester commits raw frames to the world store
// Implemented by *ingest.Ingester
type FrameIngester interface {
	IngestFrame(f ingest.Frame) (ingest.Report, error)
	Store() *world.Store
}

// Renderer is the overlay driven by the loop
// Implemented by *overlay.Overlay
type Renderer interface {
	Init() error
	Update()
}

// TickInfo describes what one loop iteration did
type TickInfo struct {
	State   State
	Reports []ingest.Report
	Changed bool // World version moved since the previous notification
}

// Observer is notified after each iteration has been rendered
type Observer interface {
	Observe(info TickInfo)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(info TickInfo)

// Observe implements Observer
func (f ObserverFunc) Observe(info TickInfo) { f(info) }

// LoopConfig configures the loop
type LoopConfig struct {
	FrameInterval time.Duration

	// Presenter flushes buffered output after each render, optional
	Presenter render.Presenter

	Observers []Observer

	// Logger defaults to log.Default()
	Logger *log.Logger
}

// DefaultFrameInterval is the render cadence when none is configured
const DefaultFrameInterval = 16 * time.Millisecond

// Loop drives ingestion and rendering from a single goroutine
// Frames queued before a tick are committed before that tick renders
type Loop struct {
	cfg      LoopConfig
	ingester FrameIngester
	overlay  Renderer
	frames   <-chan ingest.Frame
	logger   *log.Logger

	initMu      sync.Mutex
	state       atomic.Int32
	lastVersion uint64

	tickCount     atomic.Uint64
	droppedFrames atomic.Uint64
}

// NewLoop creates an idle loop reading raw frames from frames
func NewLoop(cfg LoopConfig, ingester FrameIngester, ov Renderer, frames <-chan ingest.Frame) *Loop {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{
		cfg:      cfg,
		ingester: ingester,
		overlay:  ov,
		frames:   frames,
		logger:   logger,
	}
}

// State returns the current lifecycle state
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Ticks returns the number of rendered ticks
func (l *Loop) Ticks() uint64 {
	return l.tickCount.Load()
}

// DroppedFrames returns the number of frames that failed to decode
func (l *Loop) DroppedFrames() uint64 {
	return l.droppedFrames.Load()
}

// Init performs the overlay's initial draw and moves the loop to Running
// A failed init leaves the loop Idle so it can be retried
func (l *Loop) Init() error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.State() == StateRunning {
		return ErrAlreadyRunning
	}
	if err := l.overlay.Init(); err != nil {
		return err
	}
	l.state.Store(int32(StateRunning))
	l.present()
	return nil
}

// Tick commits every queued frame, redraws the overlay and notifies observers
// A session start among the frames triggers a full redraw instead of an incremental one
// No-op while Idle
func (l *Loop) Tick() {
	if l.State() != StateRunning {
		return
	}
	reports := l.drain()
	if startsSession(reports) {
		if err := l.restart(); err != nil {
			l.logger.Printf("[WARN] engine: waiting for new session bounds: %v", err)
			l.present()
			l.notify(StateIdle, reports)
			return
		}
	} else {
		l.overlay.Update()
	}
	l.present()
	l.tickCount.Add(1)
	l.notify(StateRunning, reports)
}

// restart redoes the overlay's full draw for a new session
// Bounds missing from the new session drop the loop back to Idle until Run's retry succeeds
func (l *Loop) restart() error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	err := l.overlay.Init()
	if errors.Is(err, overlay.ErrUninitializedBounds) {
		l.state.Store(int32(StateIdle))
		return err
	}
	if err != nil {
		l.logger.Printf("[WARN] engine: session redraw: %v", err)
		l.overlay.Update()
	}
	return nil
}

func startsSession(reports []ingest.Report) bool {
	for _, rep := range reports {
		if rep.SessionStart {
			return true
		}
	}
	return false
}

// Run initializes the loop and ticks every FrameInterval until ctx is done
// While the world bounds are unknown, queued frames are still committed and Init is retried each interval
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		if l.State() == StateRunning {
			l.Tick()
		} else if err := l.waitForSession(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// waitForSession commits pending frames and retries Init
// Only a bounds error is tolerated, the session start has not arrived yet
func (l *Loop) waitForSession() error {
	reports := l.drain()
	err := l.Init()
	switch {
	case err == nil:
		l.notify(StateRunning, reports)
		return nil
	case errors.Is(err, overlay.ErrUninitializedBounds):
		l.present()
		l.notify(StateIdle, reports)
		return nil
	default:
		return err
	}
}

// drain ingests the frames queued at call time
// Frames arriving during the drain wait for the next tick so a fast feed cannot starve rendering
func (l *Loop) drain() []ingest.Report {
	if l.frames == nil {
		return nil
	}
	n := len(l.frames)
	if n == 0 {
		return nil
	}

	reports := make([]ingest.Report, 0, n)
	for i := 0; i < n; i++ {
		var f ingest.Frame
		var ok bool
		select {
		case f, ok = <-l.frames:
		default:
		}
		if !ok {
			break
		}

		rep, err := l.ingester.IngestFrame(f)
		if err != nil {
			l.droppedFrames.Add(1)
			l.logger.Printf("[WARN] engine: dropping frame: %v", err)
			continue
		}
		reports = append(reports, rep)
	}
	return reports
}

func (l *Loop) present() {
	if l.cfg.Presenter != nil {
		l.cfg.Presenter.Show()
	}
}

func (l *Loop) notify(state State, reports []ingest.Report) {
	if len(l.cfg.Observers) == 0 {
		return
	}

	version := l.ingester.Store().Version()
	info := TickInfo{
		State:   state,
		Reports: reports,
		Changed: version != l.lastVersion,
	}
	l.lastVersion = version

	for _, o := range l.cfg.Observers {
		o.Observe(info)
	}
}
