package main

import (
	"log"

	"github.com/lixenwraith/arena-hud/engine"
	"github.com/lixenwraith/arena-hud/network"
	"github.com/lixenwraith/arena-hud/status"
	"github.com/lixenwraith/arena-hud/world"
)

type feedStats interface {
	State() network.ConnState
	Sessions() uint64
}

// metricsObserver publishes session counters into reg after every loop iteration
func metricsObserver(reg *status.Registry, store *world.Store, feed feedStats) engine.Observer {
	players := reg.Ints.Get("world.players")
	food := reg.Ints.Get("world.food")
	powerUps := reg.Ints.Get("world.power_ups")
	frames := reg.Ints.Get("ingest.frames")
	dropped := reg.Ints.Get("ingest.dropped_records")
	score := reg.Floats.Get("local.score")
	speed := reg.Floats.Get("local.speed")
	sessions := reg.Ints.Get("feed.sessions")
	state := reg.Texts.Get("feed.state")

	return engine.ObserverFunc(func(info engine.TickInfo) {
		state.Set(feed.State().String())
		sessions.Store(int64(feed.Sessions()))

		frames.Add(int64(len(info.Reports)))
		for _, rep := range info.Reports {
			dropped.Add(int64(len(rep.Dropped)))
		}
		if !info.Changed {
			return
		}

		snap := store.Snapshot()
		players.Store(int64(len(snap.Players)))
		food.Store(int64(len(snap.Food)))
		powerUps.Store(int64(len(snap.PowerUps)))
		if p, ok := store.LocalPlayer(); ok {
			score.Set(p.Score)
			speed.Set(p.CurrentSpeed)
		}
	})
}

// logSessionMetrics writes the final metrics, visible with -debug
func logSessionMetrics(logger *log.Logger, reg *status.Registry) {
	reg.Each(func(key, value string) {
		logger.Printf("[INFO] session: %s=%s", key, value)
	})
}
