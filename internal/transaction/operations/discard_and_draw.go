package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// DiscardAndDrawOperation replaces a fulfilled demand card in a player's
// hand with a fresh one drawn from the shared deck (spec.md §3).
type DiscardAndDrawOperation struct {
	playerRepo repository.PlayerRepository
	demandRepo repository.DemandDeckRepository
	gameID     string
	playerID   string
	cardID     int

	discarded model.DemandCard
	drawn     model.DemandCard
	drew      bool
	applied   bool
}

func NewDiscardAndDrawOperation(playerRepo repository.PlayerRepository, demandRepo repository.DemandDeckRepository, gameID, playerID string, cardID int) *DiscardAndDrawOperation {
	return &DiscardAndDrawOperation{playerRepo: playerRepo, demandRepo: demandRepo, gameID: gameID, playerID: playerID, cardID: cardID}
}

func (op *DiscardAndDrawOperation) Execute(ctx context.Context) error {
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state: %w", err)
	}

	index := -1
	for i, c := range player.Hand {
		if c.ID == op.cardID {
			index = i
			break
		}
	}
	if index == -1 {
		return fmt.Errorf("card %d not in hand", op.cardID)
	}
	op.discarded = player.Hand[index]

	updated := player.Clone()
	hand := append([]model.DemandCard(nil), updated.Hand[:index]...)
	hand = append(hand, updated.Hand[index+1:]...)

	if drawn, ok := op.demandRepo.Draw(op.gameID); ok {
		hand = append(hand, drawn)
		op.drawn = drawn
		op.drew = true
	}
	updated.Hand = hand

	if err := op.playerRepo.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("failed to update hand: %w", err)
	}
	op.demandRepo.Discard(op.gameID, op.discarded)
	op.applied = true
	return nil
}

func (op *DiscardAndDrawOperation) Rollback(ctx context.Context) error {
	if !op.applied {
		return nil
	}
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state for rollback: %w", err)
	}
	updated := player.Clone()
	hand := make([]model.DemandCard, 0, len(updated.Hand)+1)
	for _, c := range updated.Hand {
		if op.drew && c.ID == op.drawn.ID {
			continue
		}
		hand = append(hand, c)
	}
	hand = append(hand, op.discarded)
	updated.Hand = hand
	return op.playerRepo.UpdatePlayer(ctx, updated)
}

func (op *DiscardAndDrawOperation) String() string {
	return fmt.Sprintf("DiscardAndDraw(gameID=%s, playerID=%s, cardID=%d)", op.gameID, op.playerID, op.cardID)
}
