package world

import (
	"fmt"
	"math"
)

// Tier is the rarity class of a food item
type Tier uint8

const (
	TierCommon Tier = iota
	TierRare
	TierEpic
)

// String returns the wire name of the tier
func (t Tier) String() string {
	switch t {
	case TierRare:
		return "rare"
	case TierEpic:
		return "epic"
	default:
		return "common"
	}
}

// Color is a canonical 24-bit color, decoupled from any rendering backend
type Color struct {
	R, G, B uint8
}

// Hex returns the #rrggbb form
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Bounds is the world size, fixed for the lifetime of a session
type Bounds struct {
	Width  float64
	Height float64
}

// Valid reports whether both dimensions are positive and finite
func (b Bounds) Valid() bool {
	return b.Width > 0 && b.Height > 0 &&
		!math.IsInf(b.Width, 0) && !math.IsInf(b.Height, 0)
}

// Contains reports whether (x, y) lies in [0,Width]×[0,Height]
func (b Bounds) Contains(x, y float64) bool {
	return x >= 0 && x <= b.Width && y >= 0 && y <= b.Height
}

// Player is the server-authoritative state of one participant
type Player struct {
	ID           string
	Name         string
	X, Y         float64
	Score        float64
	CurrentSpeed float64
}

// Food is an immutable collectible
type Food struct {
	X, Y  float64
	Tier  Tier
	Color Color
}

// PowerUpProperties carries the display color plus opaque effect metadata
type PowerUpProperties struct {
	Color  Color
	Effect map[string]any
}

// PowerUp is an immutable pickup, removed by position in deltas
type PowerUp struct {
	X, Y       float64
	Properties PowerUpProperties
}

// Point is a world-space position
type Point struct {
	X, Y float64
}

// FoodRemoval selects a food item by position, narrowed by tier when HasTier is set
// Color never takes part in matching
type FoodRemoval struct {
	X, Y    float64
	Tier    Tier
	HasTier bool
}

// Matches reports whether f is selected by r
func (r FoodRemoval) Matches(f Food) bool {
	if r.X != f.X || r.Y != f.Y {
		return false
	}
	return !r.HasTier || r.Tier == f.Tier
}

// Section selects entity collections within an update
type Section uint8

const (
	SectionPlayers Section = 1 << iota
	SectionFood
	SectionPowerUps

	SectionNone Section = 0
	SectionAll          = SectionPlayers | SectionFood | SectionPowerUps
)

// Has reports whether s includes all bits of other
func (s Section) Has(other Section) bool {
	return s&other == other
}

// Update is a validated change set committed to the Store as one unit
// Sections flagged in Full replace their collection wholesale (even when empty),
// other sections are merged: players upserted by ID, food and power-ups appended
type Update struct {
	// NewSession resets the store before anything else in the update applies:
	// collections and identity are cleared, bounds fall back to the preset or to Bounds
	NewSession bool
	Bounds     Bounds

	Full Section

	Players        []Player
	RemovedPlayers []string

	Food        []Food
	RemovedFood []FoodRemoval

	PowerUps        []PowerUp
	RemovedPowerUps []Point

	// Identity is the local player claim carried by this update, empty if none
	Identity string
}

// Empty reports whether applying u would change nothing
func (u *Update) Empty() bool {
	return !u.NewSession && u.Full == SectionNone &&
		len(u.Players) == 0 && len(u.RemovedPlayers) == 0 &&
		len(u.Food) == 0 && len(u.RemovedFood) == 0 &&
		len(u.PowerUps) == 0 && len(u.RemovedPowerUps) == 0 &&
		u.Identity == ""
}
