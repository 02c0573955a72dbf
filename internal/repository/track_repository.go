package repository

import (
	"context"
	"sync"

	"ironroute-backend/internal/events"
	"ironroute-backend/internal/model"
)

// TrackRepository manages the player_tracks table (spec.md §6):
// PRIMARY KEY (game_id, player_id), segments append-only.
type TrackRepository interface {
	Get(ctx context.Context, gameID, playerID string) (model.PlayerTrackState, error)
	ListAll(ctx context.Context, gameID string) ([]model.PlayerTrackState, error)
	AppendSegments(ctx context.Context, gameID, playerID string, segments []model.TrackSegment, cost int) error
	ResetTurnBuildCost(ctx context.Context, gameID, playerID string) error
}

// InMemoryTrackRepository implements TrackRepository.
type InMemoryTrackRepository struct {
	mu       sync.RWMutex
	tracks   map[string]map[string]model.PlayerTrackState // gameID -> playerID -> state
	eventBus events.Bus
}

func NewInMemoryTrackRepository(eventBus events.Bus) *InMemoryTrackRepository {
	return &InMemoryTrackRepository{
		tracks:   make(map[string]map[string]model.PlayerTrackState),
		eventBus: eventBus,
	}
}

func (r *InMemoryTrackRepository) Get(ctx context.Context, gameID, playerID string) (model.PlayerTrackState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.tracks[gameID][playerID]
	if !ok {
		return model.PlayerTrackState{GameID: gameID, PlayerID: playerID}, nil
	}
	return cloneTrackState(state), nil
}

func (r *InMemoryTrackRepository) ListAll(ctx context.Context, gameID string) ([]model.PlayerTrackState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.PlayerTrackState, 0, len(r.tracks[gameID]))
	for _, state := range r.tracks[gameID] {
		out = append(out, cloneTrackState(state))
	}
	return out, nil
}

// AppendSegments appends new segments atomically (same lock as the cost
// bump) and bumps total/turn build cost, never removing prior segments
// (track is append-only within a game, spec.md §3).
func (r *InMemoryTrackRepository) AppendSegments(ctx context.Context, gameID, playerID string, segments []model.TrackSegment, cost int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tracks[gameID] == nil {
		r.tracks[gameID] = make(map[string]model.PlayerTrackState)
	}
	state := r.tracks[gameID][playerID]
	state.GameID = gameID
	state.PlayerID = playerID
	state.Segments = append(state.Segments, segments...)
	state.TotalCost += cost
	state.TurnBuildCost += cost
	r.tracks[gameID][playerID] = state

	if r.eventBus != nil {
		_ = r.eventBus.Publish(ctx, events.NewTrackUpdatedEvent(gameID, playerID))
	}
	return nil
}

// ResetTurnBuildCost zeroes turn_build_cost, called at the start of the
// owning player's next turn (spec.md §3).
func (r *InMemoryTrackRepository) ResetTurnBuildCost(ctx context.Context, gameID, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tracks[gameID] == nil {
		return nil
	}
	state := r.tracks[gameID][playerID]
	state.TurnBuildCost = 0
	r.tracks[gameID][playerID] = state
	return nil
}

func cloneTrackState(s model.PlayerTrackState) model.PlayerTrackState {
	cp := s
	cp.Segments = append([]model.TrackSegment(nil), s.Segments...)
	return cp
}
