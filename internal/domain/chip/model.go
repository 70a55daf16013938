package chip

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInsufficientInventory = errors.New("insufficient chip inventory")
	ErrUnknownChipType       = errors.New("unknown chip type")
)

// Rarity tiers, rarest last.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// AllRarities lists tiers in draw order, rarest first; the selector walks
// cumulative thresholds in this order.
var AllRarities = []Rarity{RarityLegendary, RarityEpic, RarityRare, RarityCommon}

// EffectType identifies a chip's gameplay effect.
type EffectType string

const (
	EffectSwap          EffectType = "swap"
	EffectBanish        EffectType = "banish"
	EffectCurse         EffectType = "curse"
	EffectShield        EffectType = "shield"
	EffectTripleCaptain EffectType = "triple-captain"
	EffectBenchBoost    EffectType = "bench-boost"
)

var AllEffectTypes = map[EffectType]struct{}{
	EffectSwap:          {},
	EffectBanish:        {},
	EffectCurse:         {},
	EffectShield:        {},
	EffectTripleCaptain: {},
	EffectBenchBoost:    {},
}

// RequiresTarget reports whether the effect acts on another participant.
func (t EffectType) RequiresTarget() bool {
	switch t {
	case EffectSwap, EffectBanish, EffectCurse:
		return true
	default:
		return false
	}
}

// Chip is a consumable modifier definition.
type Chip struct {
	ID        string
	Name      string
	Rarity    Rarity
	Effect    EffectType
	Magnitude float64
}

func (c Chip) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chip id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("chip name is required")
	}
	if _, ok := AllEffectTypes[c.Effect]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChipType, c.Effect)
	}

	return nil
}

// InventoryEntry is a participant's holding of one chip definition.
type InventoryEntry struct {
	ParticipantID string
	ChipID        string
	Quantity      int
}

// Effect is a spent chip's recorded consequence. Readers ignore rows whose
// ActiveUntil has passed; expiry is by timestamp comparison, not deletion.
type Effect struct {
	ID          string
	SourceID    string
	TargetID    string
	ChipType    EffectType
	Magnitude   float64
	Gameweek    int
	ActiveUntil time.Time
	CreatedAt   time.Time
}

func (e Effect) ActiveAt(at time.Time) bool {
	return at.Before(e.ActiveUntil)
}

// Cooldown blocks repeat use of a chip type by one participant, optionally
// scoped to a target. Stale rows are ignored, never deleted.
type Cooldown struct {
	ParticipantID string
	ChipType      EffectType
	TargetID      string
	Until         time.Time
}

func (c Cooldown) ActiveAt(at time.Time) bool {
	return at.Before(c.Until)
}

// Grant records the most recent reward draw per participant, for the
// once-per-calendar-day gate.
type Grant struct {
	ParticipantID string
	ChipID        string
	GrantedAt     time.Time
}
