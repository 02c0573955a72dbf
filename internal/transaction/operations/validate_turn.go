package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// ValidateTurnOperation checks that playerID currently holds the seat
// and the game is in a state that accepts actions.
type ValidateTurnOperation struct {
	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	gameID     string
	playerID   string
}

func NewValidateTurnOperation(gameRepo repository.GameRepository, playerRepo repository.PlayerRepository, gameID, playerID string) *ValidateTurnOperation {
	return &ValidateTurnOperation{gameRepo: gameRepo, playerRepo: playerRepo, gameID: gameID, playerID: playerID}
}

func (op *ValidateTurnOperation) Execute(ctx context.Context) error {
	game, err := op.gameRepo.Get(ctx, op.gameID)
	if err != nil {
		return fmt.Errorf("failed to get game state: %w", err)
	}
	if game.Status != model.GameStatusActive {
		return fmt.Errorf("actions not allowed in status %s", game.Status)
	}

	seatOrder, err := op.playerRepo.SeatOrder(ctx, op.gameID)
	if err != nil {
		return fmt.Errorf("failed to get seat order: %w", err)
	}
	if game.CurrentSeatIndex < 0 || game.CurrentSeatIndex >= len(seatOrder) {
		return fmt.Errorf("current seat index out of range")
	}
	if seatOrder[game.CurrentSeatIndex] != op.playerID {
		return fmt.Errorf("not your turn: current seat is %s", seatOrder[game.CurrentSeatIndex])
	}
	return nil
}

func (op *ValidateTurnOperation) Rollback(ctx context.Context) error {
	return nil
}

func (op *ValidateTurnOperation) String() string {
	return fmt.Sprintf("ValidateTurn(gameID=%s, playerID=%s)", op.gameID, op.playerID)
}
