package world

import (
	"errors"
	"sync"
)

var (
	// ErrInvalidBounds is returned for non-positive or non-finite world dimensions
	ErrInvalidBounds = errors.New("world: invalid bounds")
	// ErrBoundsFixed is returned when a session tries to change already established bounds
	ErrBoundsFixed = errors.New("world: bounds already set")
)

// Store is the client-side mirror of the world
// One writer commits whole updates under the write lock, readers always see a committed state
type Store struct {
	mu sync.RWMutex

	bounds    Bounds
	hasBounds bool
	preset    Bounds // Survives session resets
	hasPreset bool

	players map[string]Player
	order   []string // Encounter order of player IDs

	food     []Food
	powerUps []PowerUp

	localID string
	version uint64
}

// NewStore creates an empty store, bounds unset
func NewStore() *Store {
	return &Store{
		players:  make(map[string]Player),
		order:    make([]string, 0, 16),
		food:     make([]Food, 0, 64),
		powerUps: make([]PowerUp, 0, 8),
	}
}

// SetBounds establishes the world size once per session
// Repeating the same value is a no-op
func (s *Store) SetBounds(b Bounds) error {
	if !b.Valid() {
		return ErrInvalidBounds
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasBounds {
		if s.bounds == b {
			return nil
		}
		return ErrBoundsFixed
	}
	s.bounds = b
	s.hasBounds = true
	return nil
}

// PresetBounds fixes the world size for every session, overriding the feed
// Fails like SetBounds when different bounds are already established
func (s *Store) PresetBounds(b Bounds) error {
	if err := s.SetBounds(b); err != nil {
		return err
	}
	s.mu.Lock()
	s.preset = b
	s.hasPreset = true
	s.mu.Unlock()
	return nil
}

// Preset returns the preset bounds, false when none were configured
func (s *Store) Preset() (Bounds, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preset, s.hasPreset
}

// Bounds returns the session bounds and whether they are set
func (s *Store) Bounds() (Bounds, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bounds, s.hasBounds
}

// ClaimIdentity sets the local player ID if none is set yet
// Returns true if the claim was accepted or matches the current identity
func (s *Store) ClaimIdentity(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.localID == "" {
		s.localID = id
		s.version++
		return true
	}
	return s.localID == id
}

// ApplyUpdate commits u atomically
// Last record wins per player ID, both within u and across updates
func (s *Store) ApplyUpdate(u Update) {
	if u.Empty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u.NewSession {
		s.resetSession(u.Bounds)
	}
	s.applyPlayers(&u)
	s.applyFood(&u)
	s.applyPowerUps(&u)

	if u.Identity != "" && s.localID == "" {
		s.localID = u.Identity
	}
	s.version++
}

// resetSession drops all per-session state, caller holds the write lock
func (s *Store) resetSession(b Bounds) {
	clear(s.players)
	s.order = s.order[:0]
	s.food = s.food[:0]
	s.powerUps = s.powerUps[:0]
	s.localID = ""

	switch {
	case s.hasPreset:
		s.bounds, s.hasBounds = s.preset, true
	case b.Valid():
		s.bounds, s.hasBounds = b, true
	default:
		s.bounds, s.hasBounds = Bounds{}, false
	}
}

// applyPlayers replaces or merges the player set, caller holds the write lock
func (s *Store) applyPlayers(u *Update) {
	if u.Full.Has(SectionPlayers) {
		clear(s.players)
		s.order = s.order[:0]
	}

	for _, p := range u.Players {
		if _, exists := s.players[p.ID]; !exists {
			s.order = append(s.order, p.ID)
		}
		s.players[p.ID] = p
	}

	for _, id := range u.RemovedPlayers {
		if _, exists := s.players[id]; !exists {
			continue
		}
		delete(s.players, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// applyFood replaces or diffs the food collection, caller holds the write lock
func (s *Store) applyFood(u *Update) {
	if u.Full.Has(SectionFood) {
		s.food = append(s.food[:0], u.Food...)
	} else {
		s.food = append(s.food, u.Food...)
	}

	if len(u.RemovedFood) == 0 {
		return
	}
	// Each removal consumes one matching item, duplicates need duplicate removals
	kept := s.food[:0]
	pending := append([]FoodRemoval(nil), u.RemovedFood...)
	for _, f := range s.food {
		matched := false
		for i, r := range pending {
			if r.Matches(f) {
				pending = append(pending[:i], pending[i+1:]...)
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, f)
		}
	}
	s.food = kept
}

// applyPowerUps replaces or diffs the power-up collection, caller holds the write lock
func (s *Store) applyPowerUps(u *Update) {
	if u.Full.Has(SectionPowerUps) {
		s.powerUps = append(s.powerUps[:0], u.PowerUps...)
	} else {
		s.powerUps = append(s.powerUps, u.PowerUps...)
	}

	if len(u.RemovedPowerUps) == 0 {
		return
	}
	kept := s.powerUps[:0]
	pending := append([]Point(nil), u.RemovedPowerUps...)
	for _, p := range s.powerUps {
		matched := false
		for i, at := range pending {
			if at.X == p.X && at.Y == p.Y {
				pending = append(pending[:i], pending[i+1:]...)
				matched = true
				break
			}
		}
		if !matched {
			kept = append(kept, p)
		}
	}
	s.powerUps = kept
}

// Players returns a copy of all players in encounter order
func (s *Store) Players() []Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Player, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.players[id])
	}
	return result
}

// Player returns the player with the given ID
func (s *Store) Player(id string) (Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	return p, ok
}

// LocalPlayer returns the player controlled by this client, false before spawn or identity
func (s *Store) LocalPlayer() (Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.localID == "" {
		return Player{}, false
	}
	p, ok := s.players[s.localID]
	return p, ok
}

// Food returns a copy of the food collection
func (s *Store) Food() []Food {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Food, len(s.food))
	copy(result, s.food)
	return result
}

// PowerUps returns a copy of the power-up collection
// Effect maps are shared, they are never mutated after ingestion
func (s *Store) PowerUps() []PowerUp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]PowerUp, len(s.powerUps))
	copy(result, s.powerUps)
	return result
}

// LocalID returns the local player ID, empty before identity is established
func (s *Store) LocalID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localID
}

// Version increments once per committed update
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Snapshot is a consistent copy of the whole store taken under one read lock
type Snapshot struct {
	Bounds    Bounds
	HasBounds bool
	Players   []Player
	Food      []Food
	PowerUps  []PowerUp
	LocalID   string
	Version   uint64
}

// Snapshot copies every collection under a single read lock
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Bounds:    s.bounds,
		HasBounds: s.hasBounds,
		Players:   make([]Player, 0, len(s.order)),
		Food:      make([]Food, len(s.food)),
		PowerUps:  make([]PowerUp, len(s.powerUps)),
		LocalID:   s.localID,
		Version:   s.version,
	}
	for _, id := range s.order {
		snap.Players = append(snap.Players, s.players[id])
	}
	copy(snap.Food, s.food)
	copy(snap.PowerUps, s.powerUps)
	return snap
}
