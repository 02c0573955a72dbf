package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// MoveTrainOperation advances a player's train along path, consuming one
// remaining-movement point per milepost crossed.
type MoveTrainOperation struct {
	playerRepo repository.PlayerRepository
	gameID     string
	playerID   string
	path       []model.Coord

	original model.TrainState
	applied  bool
}

func NewMoveTrainOperation(playerRepo repository.PlayerRepository, gameID, playerID string, path []model.Coord) *MoveTrainOperation {
	return &MoveTrainOperation{playerRepo: playerRepo, gameID: gameID, playerID: playerID, path: path}
}

func (op *MoveTrainOperation) Execute(ctx context.Context) error {
	if len(op.path) == 0 {
		return nil
	}
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state: %w", err)
	}

	mileposts := len(op.path) - 1
	if mileposts > player.Train.RemainingMovement {
		return fmt.Errorf("path length %d exceeds remaining movement %d", mileposts, player.Train.RemainingMovement)
	}
	op.original = player.Train

	updated := player.Clone()
	dest := op.path[len(op.path)-1]
	updated.Train.Position = &dest
	updated.Train.RemainingMovement -= mileposts
	updated.Train.MovementHistory = append(updated.Train.MovementHistory, op.path[1:]...)

	if err := op.playerRepo.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("failed to move train: %w", err)
	}
	op.applied = true
	return nil
}

func (op *MoveTrainOperation) Rollback(ctx context.Context) error {
	if !op.applied {
		return nil
	}
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state for rollback: %w", err)
	}
	restored := player.Clone()
	restored.Train = op.original
	return op.playerRepo.UpdatePlayer(ctx, restored)
}

func (op *MoveTrainOperation) String() string {
	return fmt.Sprintf("MoveTrain(gameID=%s, playerID=%s, mileposts=%d)", op.gameID, op.playerID, len(op.path)-1)
}
