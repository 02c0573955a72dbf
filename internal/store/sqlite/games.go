package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	domainerrors "ironroute-backend/internal/errors"
	"ironroute-backend/internal/events"
	"ironroute-backend/internal/model"
)

// GameRepository implements repository.GameRepository against sqlite.
type GameRepository struct {
	db  *sql.DB
	bus events.Bus
}

func (r *GameRepository) Create(ctx context.Context, game model.Game) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO games (id, status, current_seat_index, seat_count, winner_id) VALUES (?, ?, ?, ?, ?)`,
		game.ID, string(game.Status), game.CurrentSeatIndex, game.SeatCount, game.WinnerID)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", game.ID, err)
	}
	return nil
}

func (r *GameRepository) Get(ctx context.Context, gameID string) (*model.Game, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, status, current_seat_index, seat_count, winner_id FROM games WHERE id = ?`, gameID)

	var g model.Game
	var status string
	if err := row.Scan(&g.ID, &status, &g.CurrentSeatIndex, &g.SeatCount, &g.WinnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domainerrors.NotFoundError{Resource: "game", ID: gameID}
		}
		return nil, fmt.Errorf("get game %s: %w", gameID, err)
	}
	g.Status = model.GameStatus(status)
	return &g, nil
}

func (r *GameRepository) Update(ctx context.Context, game model.Game) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = ?, current_seat_index = ?, seat_count = ?, winner_id = ? WHERE id = ?`,
		string(game.Status), game.CurrentSeatIndex, game.SeatCount, game.WinnerID, game.ID)
	if err != nil {
		return fmt.Errorf("update game %s: %w", game.ID, err)
	}
	return requireRowsAffected(result, "game", game.ID)
}

// AdvanceSeat writes current_seat_index = nextSeat and publishes
// turn:change, same contract as the in-memory repository (spec.md
// §4.8: bot chains are emergent from this publish, not recursive).
func (r *GameRepository) AdvanceSeat(ctx context.Context, gameID string, nextSeat int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE games SET current_seat_index = ? WHERE id = ? AND ? < seat_count AND ? >= 0`,
		nextSeat, gameID, nextSeat, nextSeat)
	if err != nil {
		return fmt.Errorf("advance seat for game %s: %w", gameID, err)
	}
	if err := requireRowsAffected(result, "game", gameID); err != nil {
		return err
	}

	if r.bus != nil {
		return r.bus.Publish(ctx, events.NewTurnChangeEvent(gameID, nextSeat, ""))
	}
	return nil
}

func requireRowsAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected for %s %s: %w", resource, id, err)
	}
	if n == 0 {
		return &domainerrors.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}
