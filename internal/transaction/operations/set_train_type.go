package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// SetTrainTypeOperation upgrades or crossgrades a player's train.
type SetTrainTypeOperation struct {
	playerRepo repository.PlayerRepository
	gameID     string
	playerID   string
	target     model.TrainType

	original model.TrainType
	applied  bool
}

func NewSetTrainTypeOperation(playerRepo repository.PlayerRepository, gameID, playerID string, target model.TrainType) *SetTrainTypeOperation {
	return &SetTrainTypeOperation{playerRepo: playerRepo, gameID: gameID, playerID: playerID, target: target}
}

func (op *SetTrainTypeOperation) Execute(ctx context.Context) error {
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state: %w", err)
	}
	op.original = player.TrainType

	updated := player.Clone()
	updated.TrainType = op.target
	if err := op.playerRepo.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("failed to set train type: %w", err)
	}
	op.applied = true
	return nil
}

func (op *SetTrainTypeOperation) Rollback(ctx context.Context) error {
	if !op.applied {
		return nil
	}
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state for rollback: %w", err)
	}
	restored := player.Clone()
	restored.TrainType = op.original
	return op.playerRepo.UpdatePlayer(ctx, restored)
}

func (op *SetTrainTypeOperation) String() string {
	return fmt.Sprintf("SetTrainType(gameID=%s, playerID=%s, target=%s)", op.gameID, op.playerID, op.target)
}
