// Package repository holds the in-memory, mutex-guarded store
// implementations for the persistent-store contracts named in
// spec.md §6 (games, players, player_tracks, bot_audits plus the load
// and demand-deck tables the spec treats as part of the same store).
// Grounded on the teacher's internal/repository package: a map guarded
// by a mutex, returning defensive copies. Only AdvanceSeat (turn:change)
// and the track repository's AppendSegments (track:updated) publish
// events; the other writes publish nothing.
package repository

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	domainerrors "ironroute-backend/internal/errors"
	"ironroute-backend/internal/events"
	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/model"
)

// GameRepository manages the games table (spec.md §6).
type GameRepository interface {
	Create(ctx context.Context, game model.Game) error
	Get(ctx context.Context, gameID string) (*model.Game, error)
	Update(ctx context.Context, game model.Game) error
	AdvanceSeat(ctx context.Context, gameID string, nextSeat int) error
}

// InMemoryGameRepository implements GameRepository.
type InMemoryGameRepository struct {
	mu       sync.RWMutex
	games    map[string]model.Game
	eventBus events.Bus
}

func NewInMemoryGameRepository(eventBus events.Bus) *InMemoryGameRepository {
	return &InMemoryGameRepository{
		games:    make(map[string]model.Game),
		eventBus: eventBus,
	}
}

func (r *InMemoryGameRepository) Create(ctx context.Context, game model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[game.ID]; exists {
		return fmt.Errorf("game %s already exists", game.ID)
	}
	r.games[game.ID] = game
	return nil
}

func (r *InMemoryGameRepository) Get(ctx context.Context, gameID string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[gameID]
	if !ok {
		return nil, &domainerrors.NotFoundError{Resource: "game", ID: gameID}
	}
	return &g, nil
}

func (r *InMemoryGameRepository) Update(ctx context.Context, game model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.games[game.ID]; !exists {
		return &domainerrors.NotFoundError{Resource: "game", ID: game.ID}
	}
	r.games[game.ID] = game
	return nil
}

// AdvanceSeat writes currentSeatIndex = nextSeat, which per spec.md §4.8
// is itself the trigger for the next turn-change event -- publishing
// here is how bot chains become emergent rather than recursive.
func (r *InMemoryGameRepository) AdvanceSeat(ctx context.Context, gameID string, nextSeat int) error {
	r.mu.Lock()
	g, ok := r.games[gameID]
	if !ok {
		r.mu.Unlock()
		return &domainerrors.NotFoundError{Resource: "game", ID: gameID}
	}
	if nextSeat < 0 || nextSeat >= g.SeatCount {
		r.mu.Unlock()
		return fmt.Errorf("seat index %d out of range [0,%d)", nextSeat, g.SeatCount)
	}
	g.CurrentSeatIndex = nextSeat
	r.games[gameID] = g
	r.mu.Unlock()

	log := logger.WithGameContext(gameID, "")
	log.Debug("seat advanced", zap.Int("next_seat", nextSeat))

	if r.eventBus != nil {
		return r.eventBus.Publish(ctx, events.NewTurnChangeEvent(gameID, nextSeat, ""))
	}
	return nil
}
