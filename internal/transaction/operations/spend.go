package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/repository"
)

// SpendOperation deducts a flat ECU-millions cost from a player, used
// for track construction and train upgrades/crossgrades.
type SpendOperation struct {
	playerRepo repository.PlayerRepository
	gameID     string
	playerID   string
	cost       int

	originalMoney int
	applied       bool
}

func NewSpendOperation(playerRepo repository.PlayerRepository, gameID, playerID string, cost int) *SpendOperation {
	return &SpendOperation{playerRepo: playerRepo, gameID: gameID, playerID: playerID, cost: cost}
}

func (op *SpendOperation) Execute(ctx context.Context) error {
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state: %w", err)
	}
	if player.Money < op.cost {
		return fmt.Errorf("insufficient money: need %d, have %d", op.cost, player.Money)
	}

	op.originalMoney = player.Money

	updated := player.Clone()
	updated.Money -= op.cost
	if err := op.playerRepo.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("failed to deduct cost: %w", err)
	}
	op.applied = true
	return nil
}

func (op *SpendOperation) Rollback(ctx context.Context) error {
	if !op.applied {
		return nil
	}
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state for rollback: %w", err)
	}
	restored := player.Clone()
	restored.Money = op.originalMoney
	return op.playerRepo.UpdatePlayer(ctx, restored)
}

func (op *SpendOperation) String() string {
	return fmt.Sprintf("Spend(gameID=%s, playerID=%s, cost=%d)", op.gameID, op.playerID, op.cost)
}
