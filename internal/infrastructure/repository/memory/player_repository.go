package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/player"
)

// PlayerRepository is an in-memory player.Repository. The single mutex gives
// Allocate its atomic section: no concurrent read-check-write can interleave.
type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository(seed []player.Player) *PlayerRepository {
	players := make(map[string]player.Player, len(seed))
	for _, p := range seed {
		players[p.ID] = p
	}
	return &PlayerRepository{players: players}
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) ListByOwner(_ context.Context, ownerID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.ownerSquadLocked(ownerID, ""), nil
}

func (r *PlayerRepository) Allocate(_ context.Context, playerID, ownerID string, fn player.AllocateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.players[playerID]
	if !ok {
		return player.ErrNotFound
	}

	squadOwner := ownerID
	if squadOwner == "" {
		squadOwner = target.OwnerID
	}

	rows, err := fn(target, r.ownerSquadLocked(squadOwner, target.ID))
	if err != nil {
		return err
	}
	for _, row := range rows {
		r.players[row.ID] = row
	}

	return nil
}

func (r *PlayerRepository) SnapshotBaselines(_ context.Context, _ time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.players {
		p.BaselinePoints = p.SeasonPoints
		r.players[id] = p
	}

	return len(r.players), nil
}

func (r *PlayerRepository) UpdateSeasonPoints(_ context.Context, totals map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, total := range totals {
		p, ok := r.players[id]
		if !ok {
			continue
		}
		p.SeasonPoints = total
		r.players[id] = p
	}

	return nil
}

func (r *PlayerRepository) ownerSquadLocked(ownerID, excludeID string) []player.Player {
	if ownerID == "" {
		return nil
	}

	squad := make([]player.Player, 0, 5)
	for _, p := range r.players {
		if p.OwnerID == ownerID && p.ID != excludeID {
			squad = append(squad, p)
		}
	}
	sort.Slice(squad, func(i, j int) bool { return squad[i].ID < squad[j].ID })

	return squad
}
