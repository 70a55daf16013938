package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fivesquad/fivesquad/internal/domain/chip"
)

// ChipRepository keeps chip definitions, inventory, spent effects, cooldowns
// and draw grants. Consume holds the write lock across its check and
// decrement, which is the whole atomicity story for the memory store.
type ChipRepository struct {
	mu          sync.RWMutex
	definitions map[string]chip.Chip
	inventory   map[string]map[string]int
	effects     []chip.Effect
	cooldowns   map[string]chip.Cooldown
	grants      map[string]chip.Grant
}

func NewChipRepository(definitions []chip.Chip) *ChipRepository {
	defs := make(map[string]chip.Chip, len(definitions))
	for _, d := range definitions {
		defs[d.ID] = d
	}
	return &ChipRepository{
		definitions: defs,
		inventory:   make(map[string]map[string]int),
		cooldowns:   make(map[string]chip.Cooldown),
		grants:      make(map[string]chip.Grant),
	}
}

func cooldownKey(participantID string, effect chip.EffectType, targetID string) string {
	return participantID + ":" + string(effect) + ":" + targetID
}

func (r *ChipRepository) ListDefinitions(_ context.Context) ([]chip.Chip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]chip.Chip, 0, len(r.definitions))
	for _, d := range r.definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ChipRepository) GetDefinitionByType(_ context.Context, effect chip.EffectType) (chip.Chip, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.definitionByTypeLocked(effect)
}

func (r *ChipRepository) definitionByTypeLocked(effect chip.EffectType) (chip.Chip, bool, error) {
	ids := make([]string, 0, len(r.definitions))
	for id := range r.definitions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if r.definitions[id].Effect == effect {
			return r.definitions[id], true, nil
		}
	}

	return chip.Chip{}, false, nil
}

func (r *ChipRepository) ListInventory(_ context.Context, participantID string) ([]chip.InventoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	holdings := r.inventory[participantID]
	out := make([]chip.InventoryEntry, 0, len(holdings))
	for chipID, qty := range holdings {
		if qty <= 0 {
			continue
		}
		out = append(out, chip.InventoryEntry{ParticipantID: participantID, ChipID: chipID, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChipID < out[j].ChipID })

	return out, nil
}

func (r *ChipRepository) AddToInventory(_ context.Context, participantID, chipID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inventory[participantID] == nil {
		r.inventory[participantID] = make(map[string]int)
	}
	r.inventory[participantID][chipID]++

	return nil
}

func (r *ChipRepository) Consume(_ context.Context, participantID string, effect chip.EffectType) (chip.Chip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	def, ok, _ := r.definitionByTypeLocked(effect)
	if !ok {
		return chip.Chip{}, chip.ErrUnknownChipType
	}

	holdings := r.inventory[participantID]
	if holdings[def.ID] <= 0 {
		return chip.Chip{}, chip.ErrInsufficientInventory
	}
	holdings[def.ID]--

	return def, nil
}

func (r *ChipRepository) SaveEffect(_ context.Context, e chip.Effect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.effects = append(r.effects, e)
	return nil
}

func (r *ChipRepository) ListEffectsActiveAt(_ context.Context, participantID string, at time.Time) ([]chip.Effect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]chip.Effect, 0)
	for _, e := range r.effects {
		if e.TargetID == participantID && e.ActiveAt(at) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (r *ChipRepository) GetCooldown(_ context.Context, participantID string, effect chip.EffectType, targetID string) (chip.Cooldown, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cooldowns[cooldownKey(participantID, effect, targetID)]
	return c, ok, nil
}

func (r *ChipRepository) SaveCooldown(_ context.Context, c chip.Cooldown) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cooldowns[cooldownKey(c.ParticipantID, c.ChipType, c.TargetID)] = c
	return nil
}

func (r *ChipRepository) GetLastGrant(_ context.Context, participantID string) (chip.Grant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.grants[participantID]
	return g, ok, nil
}

func (r *ChipRepository) SaveGrant(_ context.Context, g chip.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grants[g.ParticipantID] = g
	return nil
}
