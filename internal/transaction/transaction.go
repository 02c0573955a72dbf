package transaction

import (
	"context"
	"fmt"
	"sync"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/transaction/operations"
)

// Transaction represents a single atomic transaction containing
// multiple operations.
type Transaction struct {
	manager    TransactionManager
	operations []Operation
	rolledBack bool
	committed  bool
	mutex      sync.RWMutex
}

// NewTransaction creates a new transaction.
func NewTransaction(manager TransactionManager) *Transaction {
	return &Transaction{
		manager:    manager,
		operations: make([]Operation, 0),
	}
}

// AddOperation adds an operation to the transaction.
func (t *Transaction) AddOperation(op Operation) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.committed || t.rolledBack {
		return
	}
	t.operations = append(t.operations, op)
}

// Execute runs all operations in the transaction, rolling back every
// previously executed operation if any step fails.
func (t *Transaction) Execute(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.committed || t.rolledBack {
		return fmt.Errorf("transaction already finished")
	}

	for i, op := range t.operations {
		if err := op.Execute(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = t.operations[j].Rollback(ctx)
			}
			t.rolledBack = true
			return fmt.Errorf("operation %d (%s) failed: %w", i, op.String(), err)
		}
	}

	t.committed = true
	return nil
}

// Rollback undoes all executed operations in reverse order.
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.rolledBack {
		return nil
	}
	if t.committed {
		return fmt.Errorf("cannot rollback committed transaction")
	}

	var rollbackErrors []error
	for i := len(t.operations) - 1; i >= 0; i-- {
		if err := t.operations[i].Rollback(ctx); err != nil {
			rollbackErrors = append(rollbackErrors, err)
		}
	}
	t.rolledBack = true

	if len(rollbackErrors) > 0 {
		return fmt.Errorf("rollback completed with errors: %v", rollbackErrors)
	}
	return nil
}

func (t *Transaction) IsCommitted() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.committed
}

func (t *Transaction) IsRolledBack() bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.rolledBack
}

// ValidateTurn adds an operation confirming playerID currently holds
// the seat.
func (t *Transaction) ValidateTurn(gameID, playerID string) {
	t.AddOperation(operations.NewValidateTurnOperation(t.manager.GetGameRepo(), t.manager.GetPlayerRepo(), gameID, playerID))
}

// PayDelivery adds an operation crediting payment through the Mercy Rule.
func (t *Transaction) PayDelivery(gameID, playerID string, payment int) {
	t.AddOperation(operations.NewPayDeliveryOperation(t.manager.GetPlayerRepo(), gameID, playerID, payment))
}

// Spend adds an operation deducting a flat cost (track build, upgrade).
func (t *Transaction) Spend(gameID, playerID string, cost int) {
	t.AddOperation(operations.NewSpendOperation(t.manager.GetPlayerRepo(), gameID, playerID, cost))
}

// AppendTrack adds an operation laying new track segments.
func (t *Transaction) AppendTrack(gameID, playerID string, segments []model.TrackSegment, cost int) {
	t.AddOperation(operations.NewAppendTrackOperation(t.manager.GetTrackRepo(), gameID, playerID, segments, cost))
}

// TakeLoad adds an operation removing one load token from supply (or,
// if city is non-empty and the token was dropped there, from the
// dropped-load bucket).
func (t *Transaction) TakeLoad(gameID, city string, loadType model.LoadType) {
	t.AddOperation(operations.NewTakeLoadOperation(t.manager.GetLoadRepo(), gameID, city, loadType))
}

// AddCarriedLoad adds an operation loading one token onto the player's train.
func (t *Transaction) AddCarriedLoad(gameID, playerID string, loadType model.LoadType) {
	t.AddOperation(operations.NewCarriedLoadsOperation(t.manager.GetPlayerRepo(), gameID, playerID, loadType, true))
}

// RemoveCarriedLoad adds an operation unloading one token from the
// player's train.
func (t *Transaction) RemoveCarriedLoad(gameID, playerID string, loadType model.LoadType) {
	t.AddOperation(operations.NewCarriedLoadsOperation(t.manager.GetPlayerRepo(), gameID, playerID, loadType, false))
}

// DiscardAndDraw adds an operation replacing a fulfilled demand card
// with a freshly drawn one.
func (t *Transaction) DiscardAndDraw(gameID, playerID string, cardID int) {
	t.AddOperation(operations.NewDiscardAndDrawOperation(t.manager.GetPlayerRepo(), t.manager.GetDemandRepo(), gameID, playerID, cardID))
}

// SetTrainType adds an operation upgrading or crossgrading the player's train.
func (t *Transaction) SetTrainType(gameID, playerID string, target model.TrainType) {
	t.AddOperation(operations.NewSetTrainTypeOperation(t.manager.GetPlayerRepo(), gameID, playerID, target))
}

// MoveTrain adds an operation advancing the player's train along path.
func (t *Transaction) MoveTrain(gameID, playerID string, path []model.Coord) {
	t.AddOperation(operations.NewMoveTrainOperation(t.manager.GetPlayerRepo(), gameID, playerID, path))
}
