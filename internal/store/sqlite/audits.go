package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ironroute-backend/internal/repository"
)

// AuditRepository implements repository.AuditRepository against sqlite.
type AuditRepository struct {
	db *sql.DB
}

func (r *AuditRepository) Write(ctx context.Context, record repository.AuditRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bot_audits (game_id, player_id, turn_number, audit, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.GameID, record.PlayerID, record.TurnNumber, record.Audit, time.Now())
	if err != nil {
		return fmt.Errorf("insert audit for %s/%s: %w", record.GameID, record.PlayerID, err)
	}
	return nil
}

func (r *AuditRepository) Latest(ctx context.Context, gameID, playerID string) (*repository.AuditRecord, bool) {
	row := r.db.QueryRowContext(ctx, `
		SELECT game_id, player_id, turn_number, audit, created_at FROM bot_audits
		WHERE game_id = ? AND player_id = ? ORDER BY id DESC LIMIT 1`, gameID, playerID)

	var rec repository.AuditRecord
	if err := row.Scan(&rec.GameID, &rec.PlayerID, &rec.TurnNumber, &rec.Audit, &rec.CreatedAt); err != nil {
		return nil, false
	}
	return &rec, true
}

func (r *AuditRepository) ListForGame(ctx context.Context, gameID string) ([]repository.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT game_id, player_id, turn_number, audit, created_at FROM bot_audits
		WHERE game_id = ? ORDER BY id ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list audits for game %s: %w", gameID, err)
	}
	defer rows.Close()

	var records []repository.AuditRecord
	for rows.Next() {
		var rec repository.AuditRecord
		if err := rows.Scan(&rec.GameID, &rec.PlayerID, &rec.TurnNumber, &rec.Audit, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
