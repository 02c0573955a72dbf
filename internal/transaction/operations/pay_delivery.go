package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// PayDeliveryOperation credits a delivery payment to the player, running
// it through the Mercy Rule so outstanding debt is repaid first
// (model.ApplyMercyRule).
type PayDeliveryOperation struct {
	playerRepo repository.PlayerRepository
	gameID     string
	playerID   string
	payment    int

	originalMoney int
	originalDebt  int
	applied       bool
}

func NewPayDeliveryOperation(playerRepo repository.PlayerRepository, gameID, playerID string, payment int) *PayDeliveryOperation {
	return &PayDeliveryOperation{playerRepo: playerRepo, gameID: gameID, playerID: playerID, payment: payment}
}

func (op *PayDeliveryOperation) Execute(ctx context.Context) error {
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state: %w", err)
	}

	op.originalMoney = player.Money
	op.originalDebt = player.Debt

	updated := player.Clone()
	updated.Money, updated.Debt = model.ApplyMercyRule(player.Money, player.Debt, op.payment)
	if err := op.playerRepo.UpdatePlayer(ctx, updated); err != nil {
		return fmt.Errorf("failed to credit payment: %w", err)
	}
	op.applied = true
	return nil
}

func (op *PayDeliveryOperation) Rollback(ctx context.Context) error {
	if !op.applied {
		return nil
	}
	player, err := op.playerRepo.GetPlayer(ctx, op.gameID, op.playerID)
	if err != nil {
		return fmt.Errorf("failed to get player state for rollback: %w", err)
	}
	restored := player.Clone()
	restored.Money = op.originalMoney
	restored.Debt = op.originalDebt
	return op.playerRepo.UpdatePlayer(ctx, restored)
}

func (op *PayDeliveryOperation) String() string {
	return fmt.Sprintf("PayDelivery(gameID=%s, playerID=%s, payment=%d)", op.gameID, op.playerID, op.payment)
}
