// Package executor dispatches a validated TurnPlan's actions against the
// stores, each wrapped in its own atomic transaction (spec.md §4.7).
// Grounded on the teacher's internal/actions dispatch-by-kind pattern
// (one switch over an action's discriminant, each branch building and
// running a transaction.Manager.ExecuteAtomic call).
package executor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/transaction"
)

// Result reports how far a plan got (spec.md §4.7: "returns
// {success:false, actionsExecuted, error}; already-committed actions
// remain committed").
type Result struct {
	Success         bool
	ActionsExecuted int
	Error           string
}

// Executor runs a TurnPlan's actions in order against the transaction
// manager.
type Executor struct {
	txManager *transaction.Manager
}

// New constructs an Executor.
func New(txManager *transaction.Manager) *Executor {
	return &Executor{txManager: txManager}
}

// Run dispatches every action in plan against gameID/botPlayerID,
// consulting snap for the demand-card and load-type details each action
// references. It stops at the first failing action; every action before
// it remains committed.
func (e *Executor) Run(ctx context.Context, gameID, botPlayerID string, snap *snapshot.WorldSnapshot, plan *planner.TurnPlan) Result {
	log := logger.WithGameContext(gameID, botPlayerID)

	for i, opt := range plan.Actions {
		if err := e.dispatch(ctx, gameID, botPlayerID, snap, opt); err != nil {
			log.Warn("bot action failed",
				zap.Int("actionIndex", i),
				zap.String("kind", string(opt.Kind)),
				zap.Error(err),
			)
			return Result{Success: false, ActionsExecuted: i, Error: err.Error()}
		}
	}
	return Result{Success: true, ActionsExecuted: len(plan.Actions)}
}

func (e *Executor) dispatch(ctx context.Context, gameID, botPlayerID string, snap *snapshot.WorldSnapshot, opt planner.Option) error {
	switch opt.Kind {
	case planner.OptionPass:
		return nil
	case planner.OptionDeliver:
		return e.deliverLoad(ctx, gameID, botPlayerID, snap, opt)
	case planner.OptionPickupAndDeliver:
		return e.pickupAndDeliver(ctx, gameID, botPlayerID, snap, opt)
	case planner.OptionBuild, planner.OptionBuildTowardMajorCity:
		return e.buildTrack(ctx, gameID, botPlayerID, opt)
	case planner.OptionUpgrade:
		return e.upgradeTrain(ctx, gameID, botPlayerID, snap, opt)
	default:
		return fmt.Errorf("unknown option kind %q", opt.Kind)
	}
}

func demandPayment(snap *snapshot.WorldSnapshot, cardID, demandIndex int) (int, string) {
	for _, card := range snap.Hand() {
		if card.ID == cardID && demandIndex >= 0 && demandIndex < len(card.Demands) {
			d := card.Demands[demandIndex]
			return d.Payment, d.DestinationCity
		}
	}
	return 0, ""
}

// deliverLoad moves along movePath, then atomically discards the
// fulfilled card, draws a replacement, removes the carried token, and
// pays through the Mercy Rule (spec.md §4.7).
func (e *Executor) deliverLoad(ctx context.Context, gameID, botPlayerID string, snap *snapshot.WorldSnapshot, opt planner.Option) error {
	payment, _ := demandPayment(snap, opt.CardID, opt.DemandIndex)

	return e.txManager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.ValidateTurn(gameID, botPlayerID)
		if len(opt.DeliveryPath) > 1 {
			tx.MoveTrain(gameID, botPlayerID, opt.DeliveryPath)
		}
		tx.RemoveCarriedLoad(gameID, botPlayerID, opt.LoadType)
		tx.PayDelivery(gameID, botPlayerID, payment)
		tx.DiscardAndDraw(gameID, botPlayerID, opt.CardID)
		return nil
	})
}

// pickupAndDeliver traverses the pickup path, loads the token (pulling
// from a city's dropped-load bucket first via TakeLoad), and, if a
// delivery path was also planned, continues straight into the delivery
// operation in the same transaction (spec.md §4.7).
func (e *Executor) pickupAndDeliver(ctx context.Context, gameID, botPlayerID string, snap *snapshot.WorldSnapshot, opt planner.Option) error {
	payment, _ := demandPayment(snap, opt.CardID, opt.DemandIndex)

	return e.txManager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.ValidateTurn(gameID, botPlayerID)
		if len(opt.PickupPath) > 1 {
			tx.MoveTrain(gameID, botPlayerID, opt.PickupPath)
		}
		tx.TakeLoad(gameID, opt.PickupCity, opt.LoadType)
		tx.AddCarriedLoad(gameID, botPlayerID, opt.LoadType)

		if len(opt.DeliveryPath) > 1 {
			tx.MoveTrain(gameID, botPlayerID, opt.DeliveryPath)
			tx.RemoveCarriedLoad(gameID, botPlayerID, opt.LoadType)
			tx.PayDelivery(gameID, botPlayerID, payment)
			tx.DiscardAndDraw(gameID, botPlayerID, opt.CardID)
		}
		return nil
	})
}

// buildTrack appends opt.Segments to the bot's track row and deducts
// the summed cost, all in one transaction (spec.md §4.7).
func (e *Executor) buildTrack(ctx context.Context, gameID, botPlayerID string, opt planner.Option) error {
	cost := 0
	for _, seg := range opt.Segments {
		cost += seg.Cost
	}

	return e.txManager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.ValidateTurn(gameID, botPlayerID)
		tx.Spend(gameID, botPlayerID, cost)
		tx.AppendTrack(gameID, botPlayerID, opt.Segments, cost)
		return nil
	})
}

// upgradeTrain deducts the upgrade/crossgrade cost and sets the new
// train type (spec.md §4.7).
func (e *Executor) upgradeTrain(ctx context.Context, gameID, botPlayerID string, snap *snapshot.WorldSnapshot, opt planner.Option) error {
	_, cost, ok := model.UpgradeEdge(snap.TrainType(), opt.UpgradeTarget)
	if !ok {
		return fmt.Errorf("no upgrade edge from %s to %s", snap.TrainType(), opt.UpgradeTarget)
	}

	return e.txManager.ExecuteAtomic(ctx, func(tx *transaction.Transaction) error {
		tx.ValidateTurn(gameID, botPlayerID)
		tx.Spend(gameID, botPlayerID, cost)
		tx.SetTrainType(gameID, botPlayerID, opt.UpgradeTarget)
		return nil
	})
}
