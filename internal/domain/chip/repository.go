package chip

import (
	"context"
	"time"
)

// Repository describes chip persistence needs from use cases.
type Repository interface {
	ListDefinitions(ctx context.Context) ([]Chip, error)
	GetDefinitionByType(ctx context.Context, effect EffectType) (Chip, bool, error)

	ListInventory(ctx context.Context, participantID string) ([]InventoryEntry, error)
	AddToInventory(ctx context.Context, participantID, chipID string) error

	// Consume decrements the holding of one chip matching the effect type by
	// exactly one unit inside a single atomic section; the quantity check and
	// the decrement cannot interleave with a concurrent Consume. Returns the
	// consumed definition, or ErrInsufficientInventory.
	Consume(ctx context.Context, participantID string, effect EffectType) (Chip, error)

	SaveEffect(ctx context.Context, e Effect) error
	ListEffectsActiveAt(ctx context.Context, participantID string, at time.Time) ([]Effect, error)

	GetCooldown(ctx context.Context, participantID string, effect EffectType, targetID string) (Cooldown, bool, error)
	SaveCooldown(ctx context.Context, c Cooldown) error

	GetLastGrant(ctx context.Context, participantID string) (Grant, bool, error)
	SaveGrant(ctx context.Context, g Grant) error
}
