package player

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrConflict is returned by Allocate when the store detects a concurrent
	// mutation of the affected rows. Callers may retry.
	ErrConflict = errors.New("concurrent player mutation")

	// ErrNotFound is returned by Allocate when the target player does not
	// exist.
	ErrNotFound = errors.New("player not found")
)

// AllocateFunc receives the target player and the owner's current squad
// excluding the target, both read under the store's exclusivity guarantee,
// and returns the full set of rows to persist. Returning an error aborts
// without writing.
type AllocateFunc func(target Player, ownerSquad []Player) ([]Player, error)

// Repository describes player persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Player, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Player, error)

	// Allocate runs fn inside a single atomic section scoped to the target
	// player and the owner's squad rows: read, validate, write. ownerID may
	// be empty for mutations keyed only on the target (unassign). A failed
	// serialization surfaces as ErrConflict, never a silent overwrite.
	Allocate(ctx context.Context, playerID, ownerID string, fn AllocateFunc) error

	// SnapshotBaselines sets every player's baseline to its current season
	// total and returns the number of players touched.
	SnapshotBaselines(ctx context.Context, at time.Time) (int, error)

	// UpdateSeasonPoints applies season totals supplied by the performance
	// feed or the simulator. Baselines are never touched here.
	UpdateSeasonPoints(ctx context.Context, totals map[string]int) error
}
