package repository

import (
	"sync"

	"ironroute-backend/internal/model"
)

// DemandDeckRepository manages the shared draw pile behind every
// player's three-card hand (spec.md §3: "delivering discards the
// fulfilled card and draws one from the demand deck").
type DemandDeckRepository interface {
	Draw(gameID string) (model.DemandCard, bool)
	Discard(gameID string, card model.DemandCard)
	Remaining(gameID string) int
}

// InMemoryDemandDeckRepository implements DemandDeckRepository as a
// simple FIFO draw pile per game, reshuffled from the discard pile when
// exhausted (matching the teacher's deck.DrawProjectCards pattern of
// "stop/err when empty" rather than crashing the caller).
type InMemoryDemandDeckRepository struct {
	mu      sync.Mutex
	decks   map[string][]model.DemandCard
	discard map[string][]model.DemandCard
}

func NewInMemoryDemandDeckRepository(initial map[string][]model.DemandCard) *InMemoryDemandDeckRepository {
	decks := make(map[string][]model.DemandCard, len(initial))
	for gameID, cards := range initial {
		decks[gameID] = append([]model.DemandCard(nil), cards...)
	}
	return &InMemoryDemandDeckRepository{
		decks:   decks,
		discard: make(map[string][]model.DemandCard),
	}
}

// Draw pops the next card off the deck, reshuffling the discard pile
// back in (in FIFO order, no hidden randomness needed server-side since
// the deck order was already randomized at game creation) if the draw
// pile is empty. ok is false only if both piles are empty.
func (r *InMemoryDemandDeckRepository) Draw(gameID string) (model.DemandCard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deck := r.decks[gameID]
	if len(deck) == 0 {
		deck = r.discard[gameID]
		r.discard[gameID] = nil
		r.decks[gameID] = deck
	}
	if len(deck) == 0 {
		return model.DemandCard{}, false
	}

	card := deck[0]
	r.decks[gameID] = deck[1:]
	return card, true
}

func (r *InMemoryDemandDeckRepository) Discard(gameID string, card model.DemandCard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discard[gameID] = append(r.discard[gameID], card)
}

func (r *InMemoryDemandDeckRepository) Remaining(gameID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.decks[gameID]) + len(r.discard[gameID])
}
