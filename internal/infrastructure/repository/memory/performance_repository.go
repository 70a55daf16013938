package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fivesquad/fivesquad/internal/domain/performance"
)

type PerformanceRepository struct {
	mu   sync.RWMutex
	rows map[string]performance.Performance
}

func NewPerformanceRepository() *PerformanceRepository {
	return &PerformanceRepository{rows: make(map[string]performance.Performance)}
}

func performanceKey(playerID string, gameweek int) string {
	return fmt.Sprintf("%s:%d", playerID, gameweek)
}

func (r *PerformanceRepository) ListByGameweek(_ context.Context, gameweek int) ([]performance.Performance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]performance.Performance, 0)
	for _, row := range r.rows {
		if row.Gameweek == gameweek {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })

	return out, nil
}

func (r *PerformanceRepository) GetByPlayerAndGameweek(_ context.Context, playerID string, gameweek int) (performance.Performance, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[performanceKey(playerID, gameweek)]
	return row, ok, nil
}

func (r *PerformanceRepository) UpsertBatch(_ context.Context, rows []performance.Performance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range rows {
		r.rows[performanceKey(row.PlayerID, row.Gameweek)] = row
	}

	return nil
}
