package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fivesquad/fivesquad/internal/domain/scoring"
)

type ScoringRepository struct {
	mu     sync.RWMutex
	scores map[string]scoring.ParticipantGameweekScore
	window scoring.Window
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{scores: make(map[string]scoring.ParticipantGameweekScore)}
}

func scoreKey(participantID string, gameweek int) string {
	return fmt.Sprintf("%s:%d", participantID, gameweek)
}

func (r *ScoringRepository) UpsertScore(_ context.Context, score scoring.ParticipantGameweekScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scores[scoreKey(score.ParticipantID, score.Gameweek)] = score
	return nil
}

func (r *ScoringRepository) ListScoresByGameweek(_ context.Context, gameweek int) ([]scoring.ParticipantGameweekScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.ParticipantGameweekScore, 0)
	for _, s := range r.scores {
		if s.Gameweek == gameweek {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })

	return out, nil
}

func (r *ScoringRepository) ListScoresByParticipant(_ context.Context, participantID string) ([]scoring.ParticipantGameweekScore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scoring.ParticipantGameweekScore, 0)
	for _, s := range r.scores {
		if s.ParticipantID == participantID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gameweek < out[j].Gameweek })

	return out, nil
}

func (r *ScoringRepository) GetWindow(_ context.Context) (scoring.Window, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.window, nil
}

func (r *ScoringRepository) SaveWindow(_ context.Context, w scoring.Window) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.window = w
	return nil
}
