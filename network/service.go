package network

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/arena-hud/core"
	"github.com/lixenwraith/arena-hud/ingest"
)

// Frame is one raw inbound message
type Frame = ingest.Frame

// ConnState represents connection lifecycle state
type ConnState uint32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateStopped
)

// String returns the state name shown on the status line
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Feed receives world updates from the game server and queues them as raw frames
// Implements service.Service
type Feed struct {
	config *Config
	logger *log.Logger
	dialer *websocket.Dialer
	frames chan Frame

	state    atomic.Uint32
	sessions atomic.Uint64
	lastErr  atomic.Value // string

	// Lifecycle
	configured bool
	running    atomic.Bool
	cancel     context.CancelFunc
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewFeed creates a feed, logger defaults to log.Default()
// The frame queue is allocated by Init
func NewFeed(logger *log.Logger) *Feed {
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{
		config: DefaultConfig(),
		logger: logger,
	}
}

// Name implements service.Service
func (f *Feed) Name() string {
	return "network"
}

// Dependencies implements service.Service
func (f *Feed) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: *Config (optional, overrides default)
func (f *Feed) Init(args ...any) error {
	if len(args) > 0 {
		if cfg, ok := args[0].(*Config); ok && cfg != nil {
			f.config = cfg
		}
	}
	if err := f.config.Validate(); err != nil {
		return err
	}

	f.dialer = &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: f.config.DialTimeout,
		TLSClientConfig:  f.config.TLS,
	}
	f.frames = make(chan Frame, f.config.QueueSize)
	f.configured = true
	return nil
}

// Start implements service.Service
func (f *Feed) Start() error {
	return f.StartContext(context.Background())
}

// StartContext launches the connection goroutine, which reconnects until ctx is done or Stop is called
func (f *Feed) StartContext(ctx context.Context) error {
	if !f.configured {
		if err := f.Init(); err != nil {
			return err
		}
	}
	if !f.running.CompareAndSwap(false, true) {
		return nil
	}

	ctx, f.cancel = context.WithCancel(ctx)
	f.wg.Add(1)
	core.Go(func() {
		defer f.wg.Done()
		f.run(ctx)
	})
	return nil
}

// Stop implements service.Service, idempotent
func (f *Feed) Stop() error {
	f.stopOnce.Do(func() {
		if f.running.Load() {
			f.cancel()
			f.wg.Wait()
		}
		f.state.Store(uint32(StateStopped))
	})
	return nil
}

// Frames returns the inbound frame queue
func (f *Feed) Frames() <-chan Frame {
	return f.frames
}

// State returns the connection state
func (f *Feed) State() ConnState {
	return ConnState(f.state.Load())
}

// Sessions returns how many connections were established
func (f *Feed) Sessions() uint64 {
	return f.sessions.Load()
}

// LastError returns the error that ended the most recent session, empty if none
func (f *Feed) LastError() string {
	if s, ok := f.lastErr.Load().(string); ok {
		return s
	}
	return ""
}

// run keeps a session alive, reconnecting after ReconnectDelay
func (f *Feed) run(ctx context.Context) {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		err := f.session(ctx)
		f.state.Store(uint32(StateDisconnected))
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			f.lastErr.Store(err.Error())
			f.logger.Printf("[WARN] network: %v, reconnecting in %v", err, f.config.ReconnectDelay)
		}

		timer.Reset(f.config.ReconnectDelay)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

// session runs one connection until it fails or ctx is done
// A nil return means the session ended because ctx was cancelled
func (f *Feed) session(ctx context.Context) error {
	f.state.Store(uint32(StateConnecting))

	dialCtx, cancel := context.WithTimeout(ctx, f.config.DialTimeout)
	conn, _, err := f.dialer.DialContext(dialCtx, f.config.URL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial %s: %w", f.config.URL, err)
	}
	defer conn.Close()

	conn.SetReadLimit(f.config.ReadLimit)
	extend := func() error {
		return conn.SetReadDeadline(time.Now().Add(f.config.PongTimeout))
	}
	if err := extend(); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}
	conn.SetPongHandler(func(string) error { return extend() })

	msgType, payload, err := newBootstrap(f.config).encode(f.config.Codec)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(msgType, payload); err != nil {
		return fmt.Errorf("send bootstrap: %w", err)
	}

	f.state.Store(uint32(StateConnected))
	f.sessions.Add(1)
	f.logger.Printf("[INFO] network: connected to %s", f.config.URL)

	done := make(chan struct{})
	defer close(done)
	core.Go(func() { f.keepAlive(ctx, conn, done) })

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("server closed connection")
			}
			return fmt.Errorf("read: %w", err)
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		if err := extend(); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		// Block on a full queue, dropping a delta would desync the world
		select {
		case f.frames <- Frame{Data: data, Binary: mt == websocket.BinaryMessage}:
		case <-ctx.Done():
			return nil
		}
	}
}

// keepAlive pings on PingInterval and closes the connection when ctx is done
// WriteControl is safe to call concurrently with the reader
func (f *Feed) keepAlive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(f.config.WriteTimeout))
			conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(f.config.WriteTimeout)); err != nil {
				f.logger.Printf("[WARN] network: ping: %v", err)
				conn.Close()
				return
			}
		}
	}
}
