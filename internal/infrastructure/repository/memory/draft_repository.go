package memory

import (
	"context"
	"sync"

	"github.com/fivesquad/fivesquad/internal/domain/draft"
)

type DraftRepository struct {
	mu    sync.RWMutex
	state draft.Draft
}

func NewDraftRepository() *DraftRepository {
	return &DraftRepository{state: draft.Draft{Status: draft.StatusActive}}
}

func (r *DraftRepository) Get(_ context.Context) (draft.Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state, nil
}

func (r *DraftRepository) Save(_ context.Context, d draft.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = d
	return nil
}
