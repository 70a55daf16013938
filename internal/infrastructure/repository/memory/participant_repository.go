package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fivesquad/fivesquad/internal/domain/participant"
)

type ParticipantRepository struct {
	mu           sync.RWMutex
	participants map[string]participant.Participant
}

func NewParticipantRepository(seed []participant.Participant) *ParticipantRepository {
	participants := make(map[string]participant.Participant, len(seed))
	for _, p := range seed {
		participants[p.ID] = p
	}
	return &ParticipantRepository{participants: participants}
}

func (r *ParticipantRepository) List(_ context.Context) ([]participant.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]participant.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *ParticipantRepository) GetByID(_ context.Context, participantID string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[participantID]
	return p, ok, nil
}
