package ingest

import (
	"errors"
	"fmt"
	"log"

	"github.com/lixenwraith/arena-hud/world"
)

// Feed message types
const (
	TypeGameStarted        = "game_started"
	TypeGameJoined         = "game_joined"
	TypeSnapshot           = "snapshot"
	TypeDelta              = "delta"
	TypeGameState          = "game_state"
	TypePlayersUpdate      = "players_update"
	TypeFoodUpdate         = "food_update"
	TypePowerUpSpawned     = "power_up_spawned"
	TypePowerUpCollected   = "power_up_collected"
	TypePowerUpUsed        = "power_up_used"
	TypePlayerDisconnected = "player_disconnected"
	TypePlayerEaten        = "player_eat_other_player"
	TypeWaitingRoom        = "waiting_room"
	TypeUpdateWaitingRoom  = "update_waiting_room"
	TypeReturnToWaiting    = "return_to_waiting_room"
)

// messageClass decides how the sections present in a message are committed
type messageClass uint8

const (
	classIgnored  messageClass = iota
	classSnapshot              // Present sections replace their collection
	classDelta                 // Present sections merge into their collection
	classRemoval               // Only explicit removals apply
)

var messageClasses = map[string]messageClass{
	TypeGameStarted:        classSnapshot,
	TypeGameJoined:         classSnapshot,
	TypeSnapshot:           classSnapshot,
	TypeGameState:          classSnapshot,
	TypePlayersUpdate:      classSnapshot,
	TypeFoodUpdate:         classSnapshot,
	TypePowerUpSpawned:     classSnapshot,
	TypePowerUpCollected:   classSnapshot,
	TypePowerUpUsed:        classSnapshot,
	TypePlayerEaten:        classSnapshot,
	TypeDelta:              classDelta,
	TypePlayerDisconnected: classRemoval,
	TypeWaitingRoom:        classIgnored,
	TypeUpdateWaitingRoom:  classIgnored,
	TypeReturnToWaiting:    classIgnored,
}

// sessionStarts begin a fresh session, discarding everything the store holds
var sessionStarts = map[string]bool{
	TypeGameStarted: true,
	TypeGameJoined:  true,
}

// Frame is one raw message as received from the feed
type Frame struct {
	Data   []byte
	Binary bool // msgpack when set, JSON otherwise
}

// Report summarizes what one frame did to the store
type Report struct {
	Type         string
	Applied      bool
	SessionStart bool // The store was reset before this frame applied
	Dropped      []*MalformedRecordError

	Players  int
	Food     int
	PowerUps int
	Removed  int
	Kept     int // Dropped snapshot players whose previous record was retained
}

// Ingester validates decoded messages and commits them to the store
// Single writer: the store must not be mutated by anything else
type Ingester struct {
	store   *world.Store
	decoder *Decoder
	logger  *log.Logger
}

// NewIngester creates an ingester writing to store, logger defaults to log.Default()
func NewIngester(store *world.Store, logger *log.Logger) *Ingester {
	if logger == nil {
		logger = log.Default()
	}
	return &Ingester{
		store:   store,
		decoder: NewDecoder(),
		logger:  logger,
	}
}

// Store returns the store this ingester writes to
func (in *Ingester) Store() *world.Store {
	return in.store
}

// Ingest decodes one raw frame and commits it
// Only an undecodable frame is an error, malformed records are dropped and reported
func (in *Ingester) Ingest(data []byte, binary bool) (Report, error) {
	msg, err := in.decoder.Decode(data, binary)
	if err != nil {
		return Report{}, fmt.Errorf("ingest: %w", err)
	}
	return in.Apply(msg), nil
}

// IngestFrame is Ingest for a queued frame
func (in *Ingester) IngestFrame(f Frame) (Report, error) {
	return in.Ingest(f.Data, f.Binary)
}

// Apply validates msg and commits the surviving records as one update
func (in *Ingester) Apply(msg *Message) Report {
	rep := Report{Type: msg.Type}

	class, known := messageClasses[msg.Type]
	if !known {
		in.logger.Printf("[INFO] ingest: ignoring unknown message type %q", msg.Type)
		return rep
	}
	if class == classIgnored {
		return rep
	}

	var u world.Update
	var bounds world.Bounds
	var hasBounds bool

	if sessionStarts[msg.Type] {
		bounds, hasBounds = in.sessionBounds(msg)
		u.NewSession = true
		u.Bounds = bounds
		rep.SessionStart = true
	} else {
		in.applyBounds(msg)
		bounds, hasBounds = in.store.Bounds()
	}
	rp := &recordParser{bounds: bounds, hasBounds: hasBounds}

	switch class {
	case classSnapshot:
		in.collect(rp, msg, &u, &rep, msg.HasPlayers && !u.NewSession)
		if msg.HasPlayers {
			u.Full |= world.SectionPlayers
		}
		if msg.HasFood {
			u.Full |= world.SectionFood
		}
		if msg.HasPowerUps {
			u.Full |= world.SectionPowerUps
		}
		if id, ok := idString(msg.Eaten); ok && id != "" {
			u.RemovedPlayers = append(u.RemovedPlayers, id)
		}

	case classDelta:
		in.collect(rp, msg, &u, &rep, false)
		in.collectRemovals(rp, msg.Type, msg.Removed, &u, &rep)

	case classRemoval:
		if id, ok := idString(msg.PlayerID); ok && id != "" {
			u.RemovedPlayers = append(u.RemovedPlayers, id)
		}
		in.collectRemovals(rp, msg.Type, msg.Removed, &u, &rep)
	}

	u.Identity = in.identity(msg, u.NewSession)
	rep.Removed += len(u.RemovedPlayers)

	if u.Empty() {
		return rep
	}
	in.store.ApplyUpdate(u)
	rep.Applied = true
	return rep
}

// mapSize extracts the world size carried by msg, logging unusable values
func (in *Ingester) mapSize(msg *Message) (world.Bounds, bool) {
	if msg.MapWidth == nil && msg.MapHeight == nil {
		return world.Bounds{}, false
	}

	w, errW := toNumber(msg.MapWidth)
	h, errH := toNumber(msg.MapHeight)
	if errW != nil || errH != nil {
		in.logger.Printf("[WARN] ingest: %s: invalid map size (%v, %v)", msg.Type, msg.MapWidth, msg.MapHeight)
		return world.Bounds{}, false
	}
	b := world.Bounds{Width: w, Height: h}
	if !b.Valid() {
		in.logger.Printf("[WARN] ingest: %s: %v (%gx%g)", msg.Type, world.ErrInvalidBounds, w, h)
		return world.Bounds{}, false
	}
	return b, true
}

// sessionBounds picks the bounds for a new session, preset bounds win over the message
func (in *Ingester) sessionBounds(msg *Message) (world.Bounds, bool) {
	b, ok := in.mapSize(msg)
	preset, hasPreset := in.store.Preset()
	if !hasPreset {
		return b, ok
	}
	if ok && b != preset {
		in.logger.Printf("[WARN] ingest: %s: ignoring map size %gx%g, configured bounds are %gx%g",
			msg.Type, b.Width, b.Height, preset.Width, preset.Height)
	}
	return preset, true
}

// applyBounds establishes bounds from a mid-session message that carries a map size
func (in *Ingester) applyBounds(msg *Message) {
	b, ok := in.mapSize(msg)
	if !ok {
		return
	}

	err := in.store.SetBounds(b)
	switch {
	case err == nil:
	case errors.Is(err, world.ErrBoundsFixed):
		current, _ := in.store.Bounds()
		in.logger.Printf("[WARN] ingest: %s: ignoring map size %gx%g, session bounds are %gx%g",
			msg.Type, b.Width, b.Height, current.Width, current.Height)
	default:
		in.logger.Printf("[WARN] ingest: %s: %v (%gx%g)", msg.Type, err, b.Width, b.Height)
	}
}

// identity extracts the identity claim, logging claims that contradict the established one
// A session start replaces the identity instead of contradicting it
func (in *Ingester) identity(msg *Message, sessionStart bool) string {
	if msg.Identity == nil {
		return ""
	}
	id, ok := idString(msg.Identity)
	if !ok || id == "" {
		in.logger.Printf("[WARN] ingest: %s: invalid identity claim %v", msg.Type, msg.Identity)
		return ""
	}
	if sessionStart {
		return id
	}
	if current := in.store.LocalID(); current != "" && current != id {
		in.logger.Printf("[WARN] ingest: %s: ignoring identity claim %q, session identity is %q", msg.Type, id, current)
		return ""
	}
	return id
}

// collect validates the entity sections of msg into u
// With keepPrior set, a dropped player whose ID is still readable keeps its stored record
// so a replacing snapshot does not despawn it
func (in *Ingester) collect(rp *recordParser, msg *Message, u *world.Update, rep *Report, keepPrior bool) {
	for i, rec := range msg.Players {
		p, merr := rp.player(i, rec)
		if merr == nil {
			u.Players = append(u.Players, p)
			rep.Players++
			continue
		}
		in.drop(msg.Type, merr, rep)
		if !keepPrior {
			continue
		}
		if prior, ok := in.store.Player(recordID(rec)); ok {
			u.Players = append(u.Players, prior)
			rep.Kept++
		}
	}
	for i, rec := range msg.Food {
		f, merr := rp.food(i, rec)
		if merr != nil {
			in.drop(msg.Type, merr, rep)
			continue
		}
		u.Food = append(u.Food, f)
	}
	for i, rec := range msg.PowerUps {
		pu, merr := rp.powerUp(i, rec)
		if merr != nil {
			in.drop(msg.Type, merr, rep)
			continue
		}
		u.PowerUps = append(u.PowerUps, pu)
	}

	rep.Food += len(u.Food)
	rep.PowerUps += len(u.PowerUps)
}

// collectRemovals validates explicit removal lists into u
func (in *Ingester) collectRemovals(rp *recordParser, msgType string, rm *Removal, u *world.Update, rep *Report) {
	if rm == nil {
		return
	}
	for i, raw := range rm.Players {
		id, ok := idString(raw)
		if !ok || id == "" {
			in.drop(msgType, &MalformedRecordError{Kind: KindPlayer, Index: i, Field: "id", Reason: "invalid removal id"}, rep)
			continue
		}
		u.RemovedPlayers = append(u.RemovedPlayers, id)
	}
	for i, rec := range rm.Food {
		r, merr := rp.foodRemoval(i, rec)
		if merr != nil {
			in.drop(msgType, merr, rep)
			continue
		}
		u.RemovedFood = append(u.RemovedFood, r)
		rep.Removed++
	}
	for i, rec := range rm.PowerUps {
		pt, merr := rp.point(KindPowerUp, i, rec)
		if merr != nil {
			in.drop(msgType, merr, rep)
			continue
		}
		u.RemovedPowerUps = append(u.RemovedPowerUps, pt)
		rep.Removed++
	}
}

func (in *Ingester) drop(msgType string, merr *MalformedRecordError, rep *Report) {
	rep.Dropped = append(rep.Dropped, merr)
	in.logger.Printf("[WARN] ingest: %s: dropped %v", msgType, merr)
}
