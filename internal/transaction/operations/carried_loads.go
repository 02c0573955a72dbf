package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// CarriedLoadsOperation adds or removes one load token of loadType from
// a player's train, depending on add.
type CarriedLoadsOperation struct {
	playerRepo repository.PlayerRepository
	gameID     string
	playerID   string
	loadType   model.LoadType
	add        bool

	originalLoads []model.LoadType
	applied       bool
}

func NewCarriedLoadsOperation(playerRepo repository.PlayerRepository, gameID, playerID string, loadType model.LoadType, add bool) *CarriedLoadsOperation {
	return &CarriedLoadsOperation{playerRepo: playerRepo, gameID: gameID, playerID: playerID, loadType: loadType, add: add}
}

func (op *CarriedLoadsOperation) Execute(ctx context.Context) error {
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state: %w", err)
	}
	op.originalLoads = append([]model.LoadType(nil), player.Train.CarriedLoads...)

	updated := player.Clone()
	if op.add {
		if len(updated.Train.CarriedLoads) >= updated.TrainType.Capacity() {
			return fmt.Errorf("carried loads at capacity")
		}
		updated.Train.CarriedLoads = append(updated.Train.CarriedLoads, op.loadType)
	} else {
		removed := false
		kept := updated.Train.CarriedLoads[:0]
		for _, lt := range updated.Train.CarriedLoads {
			if !removed && lt == op.loadType {
				removed = true
				continue
			}
			kept = append(kept, lt)
		}
		if !removed {
			return fmt.Errorf("load %s not carried", op.loadType)
		}
		updated.Train.CarriedLoads = kept
	}

	if err := op.playerRepo.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("failed to update carried loads: %w", err)
	}
	op.applied = true
	return nil
}

func (op *CarriedLoadsOperation) Rollback(ctx context.Context) error {
	if !op.applied {
		return nil
	}
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state for rollback: %w", err)
	}
	restored := player.Clone()
	restored.Train.CarriedLoads = append([]model.LoadType(nil), op.originalLoads...)
	return op.playerRepo.UpdatePlayer(ctx, restored)
}

func (op *CarriedLoadsOperation) String() string {
	verb := "Remove"
	if op.add {
		verb = "Add"
	}
	return fmt.Sprintf("CarriedLoads%s(gameID=%s, playerID=%s, loadType=%s)", verb, op.gameID, op.playerID, op.loadType)
}
