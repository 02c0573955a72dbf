package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	domainerrors "ironroute-backend/internal/errors"
	"ironroute-backend/internal/events"
	"ironroute-backend/internal/model"
)

// PlayerRepository implements repository.PlayerRepository against
// sqlite. Nested structures (BotConfig, TrainState, Hand) are stored as
// JSON columns -- the same hybrid relational/JSON shape the
// Vitadek-OwnWorld example uses for buildings_json.
type PlayerRepository struct {
	db  *sql.DB
	bus events.Bus
}

func (r *PlayerRepository) AddPlayer(ctx context.Context, player model.Player) error {
	botConfigJSON, err := json.Marshal(player.BotConfig)
	if err != nil {
		return fmt.Errorf("marshal bot config: %w", err)
	}
	trainJSON, err := json.Marshal(player.Train)
	if err != nil {
		return fmt.Errorf("marshal train state: %w", err)
	}
	handJSON, err := json.Marshal(player.Hand)
	if err != nil {
		return fmt.Errorf("marshal hand: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO players (game_id, id, user_id, is_bot, bot_config_json, name, color, money, debt,
			train_type, train_json, current_turn_num, is_online, hand_json, created_at_unix_sec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		player.GameID, player.ID, player.UserID, boolToInt(player.IsBot), string(botConfigJSON),
		player.Name, player.Color, player.Money, player.Debt, string(player.TrainType), string(trainJSON),
		player.CurrentTurnNum, boolToInt(player.IsOnline), string(handJSON), player.CreatedAtUnixSec)
	if err != nil {
		return fmt.Errorf("insert player %s: %w", player.ID, err)
	}
	return nil
}

func (r *PlayerRepository) GetPlayer(ctx context.Context, gameID, playerID string) (*model.Player, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT game_id, id, user_id, is_bot, bot_config_json, name, color, money, debt,
			train_type, train_json, current_turn_num, is_online, hand_json, created_at_unix_sec
		FROM players WHERE game_id = ? AND id = ?`, gameID, playerID)

	player, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domainerrors.NotFoundError{Resource: "player", ID: playerID}
	}
	if err != nil {
		return nil, fmt.Errorf("get player %s: %w", playerID, err)
	}
	return player, nil
}

func (r *PlayerRepository) UpdatePlayer(ctx context.Context, player model.Player) error {
	botConfigJSON, err := json.Marshal(player.BotConfig)
	if err != nil {
		return fmt.Errorf("marshal bot config: %w", err)
	}
	trainJSON, err := json.Marshal(player.Train)
	if err != nil {
		return fmt.Errorf("marshal train state: %w", err)
	}
	handJSON, err := json.Marshal(player.Hand)
	if err != nil {
		return fmt.Errorf("marshal hand: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE players SET user_id = ?, is_bot = ?, bot_config_json = ?, name = ?, color = ?, money = ?,
			debt = ?, train_type = ?, train_json = ?, current_turn_num = ?, is_online = ?, hand_json = ?
		WHERE game_id = ? AND id = ?`,
		player.UserID, boolToInt(player.IsBot), string(botConfigJSON), player.Name, player.Color,
		player.Money, player.Debt, string(player.TrainType), string(trainJSON), player.CurrentTurnNum,
		boolToInt(player.IsOnline), string(handJSON), player.GameID, player.ID)
	if err != nil {
		return fmt.Errorf("update player %s: %w", player.ID, err)
	}
	return requireRowsAffected(result, "player", player.ID)
}

func (r *PlayerRepository) ListPlayers(ctx context.Context, gameID string) ([]model.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT game_id, id, user_id, is_bot, bot_config_json, name, color, money, debt,
			train_type, train_json, current_turn_num, is_online, hand_json, created_at_unix_sec
		FROM players WHERE game_id = ?`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list players for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player row: %w", err)
		}
		players = append(players, *player)
	}
	return players, rows.Err()
}

// SeatOrder returns player IDs ordered by created_at_unix_sec ascending
// (spec.md §6).
func (r *PlayerRepository) SeatOrder(ctx context.Context, gameID string) ([]string, error) {
	players, err := r.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sort.Slice(players, func(i, j int) bool { return players[i].CreatedAtUnixSec < players[j].CreatedAtUnixSec })

	order := make([]string, len(players))
	for i, p := range players {
		order[i] = p.ID
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*model.Player, error) {
	var p model.Player
	var isBot, isOnline int
	var botConfigJSON, trainJSON, handJSON string
	var trainType string

	if err := row.Scan(&p.GameID, &p.ID, &p.UserID, &isBot, &botConfigJSON, &p.Name, &p.Color,
		&p.Money, &p.Debt, &trainType, &trainJSON, &p.CurrentTurnNum, &isOnline, &handJSON,
		&p.CreatedAtUnixSec); err != nil {
		return nil, err
	}

	p.IsBot = isBot != 0
	p.IsOnline = isOnline != 0
	p.TrainType = model.TrainType(trainType)

	var botConfig *model.BotConfig
	if err := json.Unmarshal([]byte(botConfigJSON), &botConfig); err != nil {
		return nil, fmt.Errorf("unmarshal bot config: %w", err)
	}
	p.BotConfig = botConfig

	if err := json.Unmarshal([]byte(trainJSON), &p.Train); err != nil {
		return nil, fmt.Errorf("unmarshal train state: %w", err)
	}
	if err := json.Unmarshal([]byte(handJSON), &p.Hand); err != nil {
		return nil, fmt.Errorf("unmarshal hand: %w", err)
	}

	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
