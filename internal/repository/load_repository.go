package repository

import (
	"context"
	"fmt"
	"sync"

	"ironroute-backend/internal/model"
)

// LoadRepository manages global load-chip supply and the per-city
// dropped-load buckets (spec.md §3/§4.7). The in-memory implementation
// guards its maps with its own mutex, separate from the player
// repository's; the Executor keeps a pickup atomic by running Take and
// the carried-load update as steps of one transaction, which rolls the
// Take back if a later step fails.
type LoadRepository interface {
	GetAll(ctx context.Context, gameID string) (map[model.LoadType]model.LoadState, error)
	Take(ctx context.Context, gameID string, loadType model.LoadType) error
	Return(ctx context.Context, gameID string, loadType model.LoadType) error
	DroppedAt(ctx context.Context, gameID, city string) ([]model.LoadType, error)
	Drop(ctx context.Context, gameID, city string, loadType model.LoadType) error
	TakeDropped(ctx context.Context, gameID, city string, loadType model.LoadType) (bool, error)
}

// InMemoryLoadRepository implements LoadRepository.
type InMemoryLoadRepository struct {
	mu      sync.Mutex
	states  map[string]map[model.LoadType]model.LoadState // gameID -> type -> state
	dropped map[string]map[string][]model.LoadType         // gameID -> city -> loads
}

func NewInMemoryLoadRepository(initial map[string][]model.LoadState) *InMemoryLoadRepository {
	states := make(map[string]map[model.LoadType]model.LoadState)
	for gameID, list := range initial {
		m := make(map[model.LoadType]model.LoadState, len(list))
		for _, s := range list {
			m[s.Type] = s
		}
		states[gameID] = m
	}
	return &InMemoryLoadRepository{
		states:  states,
		dropped: make(map[string]map[string][]model.LoadType),
	}
}

func (r *InMemoryLoadRepository) GetAll(ctx context.Context, gameID string) (map[model.LoadType]model.LoadState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[model.LoadType]model.LoadState, len(r.states[gameID]))
	for k, v := range r.states[gameID] {
		out[k] = v
	}
	return out, nil
}

// Take decrements Available by one, failing if none are available --
// callers must have already validated feasibility, so this is a sanity
// check, not the feasibility decision itself.
func (r *InMemoryLoadRepository) Take(ctx context.Context, gameID string, loadType model.LoadType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.states[gameID]
	state, ok := m[loadType]
	if !ok || state.Available <= 0 {
		return fmt.Errorf("no %s available in game %s", loadType, gameID)
	}
	state.Available--
	m[loadType] = state
	return nil
}

// Return increments Available by one, never above Total. Its caller is
// TakeLoadOperation's rollback, undoing a Take; delivery does not call
// it, so a delivered token leaves circulation (see the Executor's
// deliverLoad).
func (r *InMemoryLoadRepository) Return(ctx context.Context, gameID string, loadType model.LoadType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.states[gameID]
	state := m[loadType]
	if state.Available < state.Total {
		state.Available++
	}
	m[loadType] = state
	return nil
}

func (r *InMemoryLoadRepository) DroppedAt(ctx context.Context, gameID, city string) ([]model.LoadType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]model.LoadType(nil), r.dropped[gameID][city]...), nil
}

func (r *InMemoryLoadRepository) Drop(ctx context.Context, gameID, city string, loadType model.LoadType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dropped[gameID] == nil {
		r.dropped[gameID] = make(map[string][]model.LoadType)
	}
	r.dropped[gameID][city] = append(r.dropped[gameID][city], loadType)
	return nil
}

// TakeDropped removes one token of loadType from city's dropped bucket,
// reporting whether one was found.
func (r *InMemoryLoadRepository) TakeDropped(ctx context.Context, gameID, city string, loadType model.LoadType) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.dropped[gameID][city]
	for i, lt := range bucket {
		if lt == loadType {
			r.dropped[gameID][city] = append(bucket[:i], bucket[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
