package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// TakeLoadOperation removes one load token of loadType from the global
// supply (or, if city is non-empty, from that city's dropped-load
// bucket) so it can be added to a player's train.
type TakeLoadOperation struct {
	loadRepo repository.LoadRepository
	gameID   string
	city     string
	loadType model.LoadType

	takenFromDropped bool
	applied          bool
}

func NewTakeLoadOperation(loadRepo repository.LoadRepository, gameID, city string, loadType model.LoadType) *TakeLoadOperation {
	return &TakeLoadOperation{loadRepo: loadRepo, gameID: gameID, city: city, loadType: loadType}
}

func (op *TakeLoadOperation) Execute(ctx context.Context) error {
	if op.city != "" {
		found, err := op.loadRepo.TakeDropped(ctx, op.gameID, op.city, op.loadType)
		if err != nil {
			return fmt.Errorf("failed to take dropped load: %w", err)
		}
		if found {
			op.takenFromDropped = true
			op.applied = true
			return nil
		}
	}
	if err := op.loadRepo.Take(ctx, op.gameID, op.loadType); err != nil {
		return fmt.Errorf("failed to take load: %w", err)
	}
	op.applied = true
	return nil
}

func (op *TakeLoadOperation) Rollback(ctx context.Context) error {
	if !op.applied {
		return nil
	}
	if op.takenFromDropped {
		return op.loadRepo.Drop(ctx, op.gameID, op.city, op.loadType)
	}
	return op.loadRepo.Return(ctx, op.gameID, op.loadType)
}

func (op *TakeLoadOperation) String() string {
	return fmt.Sprintf("TakeLoad(gameID=%s, city=%s, loadType=%s)", op.gameID, op.city, op.loadType)
}
