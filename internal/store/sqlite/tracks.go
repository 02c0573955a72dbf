package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ironroute-backend/internal/events"
	"ironroute-backend/internal/model"
)

// TrackRepository implements repository.TrackRepository against sqlite.
// Segments are append-only within a game (spec.md §3), so AppendSegments
// reads the current row, appends in Go, and writes the whole
// segments_json back rather than mutating individual segments.
type TrackRepository struct {
	db  *sql.DB
	bus events.Bus
}

func (r *TrackRepository) Get(ctx context.Context, gameID, playerID string) (model.PlayerTrackState, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT segments_json, total_cost, turn_build_cost FROM player_tracks WHERE game_id = ? AND player_id = ?`,
		gameID, playerID)

	var segmentsJSON string
	var state model.PlayerTrackState
	state.GameID = gameID
	state.PlayerID = playerID

	err := row.Scan(&segmentsJSON, &state.TotalCost, &state.TurnBuildCost)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return model.PlayerTrackState{}, fmt.Errorf("get track state for %s/%s: %w", gameID, playerID, err)
	}
	if err := json.Unmarshal([]byte(segmentsJSON), &state.Segments); err != nil {
		return model.PlayerTrackState{}, fmt.Errorf("unmarshal segments: %w", err)
	}
	return state, nil
}

func (r *TrackRepository) ListAll(ctx context.Context, gameID string) ([]model.PlayerTrackState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT player_id, segments_json, total_cost, turn_build_cost FROM player_tracks WHERE game_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list track states for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var states []model.PlayerTrackState
	for rows.Next() {
		var state model.PlayerTrackState
		var segmentsJSON string
		state.GameID = gameID
		if err := rows.Scan(&state.PlayerID, &segmentsJSON, &state.TotalCost, &state.TurnBuildCost); err != nil {
			return nil, fmt.Errorf("scan track state row: %w", err)
		}
		if err := json.Unmarshal([]byte(segmentsJSON), &state.Segments); err != nil {
			return nil, fmt.Errorf("unmarshal segments: %w", err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

func (r *TrackRepository) AppendSegments(ctx context.Context, gameID, playerID string, segments []model.TrackSegment, cost int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append segments tx: %w", err)
	}
	defer tx.Rollback()

	var segmentsJSON string
	var totalCost, turnBuildCost int
	err = tx.QueryRowContext(ctx,
		`SELECT segments_json, total_cost, turn_build_cost FROM player_tracks WHERE game_id = ? AND player_id = ?`,
		gameID, playerID).Scan(&segmentsJSON, &totalCost, &turnBuildCost)

	var existing []model.TrackSegment
	exists := true
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return fmt.Errorf("read existing track state: %w", err)
	} else if err := json.Unmarshal([]byte(segmentsJSON), &existing); err != nil {
		return fmt.Errorf("unmarshal existing segments: %w", err)
	}

	existing = append(existing, segments...)
	totalCost += cost
	turnBuildCost += cost

	encoded, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	if exists {
		_, err = tx.ExecContext(ctx,
			`UPDATE player_tracks SET segments_json = ?, total_cost = ?, turn_build_cost = ? WHERE game_id = ? AND player_id = ?`,
			string(encoded), totalCost, turnBuildCost, gameID, playerID)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO player_tracks (game_id, player_id, segments_json, total_cost, turn_build_cost) VALUES (?, ?, ?, ?, ?)`,
			gameID, playerID, string(encoded), totalCost, turnBuildCost)
	}
	if err != nil {
		return fmt.Errorf("write track state for %s/%s: %w", gameID, playerID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append segments tx: %w", err)
	}

	if r.bus != nil {
		return r.bus.Publish(ctx, events.NewTrackUpdatedEvent(gameID, playerID))
	}
	return nil
}

func (r *TrackRepository) ResetTurnBuildCost(ctx context.Context, gameID, playerID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE player_tracks SET turn_build_cost = 0 WHERE game_id = ? AND player_id = ?`, gameID, playerID)
	if err != nil {
		return fmt.Errorf("reset turn build cost for %s/%s: %w", gameID, playerID, err)
	}
	return nil
}
