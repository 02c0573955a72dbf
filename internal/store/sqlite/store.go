// Package sqlite implements the repository interfaces declared in
// internal/repository against a persistent modernc.org/sqlite-backed
// database/sql connection, satisfying spec.md §6's column contract for
// games, players, player_tracks, and bot_audits. Grounded on the
// Vitadek-OwnWorld example's db.go (database/sql + an embedded
// CREATE TABLE IF NOT EXISTS schema run once at open, JSON/BLOB columns
// for nested structures) -- the teacher itself has no persistence
// layer to ground this on.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"ironroute-backend/internal/events"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id text PRIMARY KEY,
	status text NOT NULL,
	current_seat_index integer NOT NULL DEFAULT 0,
	seat_count integer NOT NULL,
	winner_id text NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS players (
	game_id text NOT NULL,
	id text NOT NULL,
	user_id text NOT NULL DEFAULT '',
	is_bot integer NOT NULL DEFAULT 0,
	bot_config_json text,
	name text NOT NULL DEFAULT '',
	color text NOT NULL DEFAULT '',
	money integer NOT NULL DEFAULT 0,
	debt integer NOT NULL DEFAULT 0,
	train_type text NOT NULL DEFAULT '',
	train_json text NOT NULL DEFAULT '{}',
	current_turn_num integer NOT NULL DEFAULT 0,
	is_online integer NOT NULL DEFAULT 0,
	hand_json text NOT NULL DEFAULT '[]',
	created_at_unix_sec integer NOT NULL,
	PRIMARY KEY (game_id, id)
);

CREATE TABLE IF NOT EXISTS player_tracks (
	game_id text NOT NULL,
	player_id text NOT NULL,
	segments_json text NOT NULL DEFAULT '[]',
	total_cost integer NOT NULL DEFAULT 0,
	turn_build_cost integer NOT NULL DEFAULT 0,
	PRIMARY KEY (game_id, player_id)
);

CREATE TABLE IF NOT EXISTS bot_audits (
	id integer PRIMARY KEY AUTOINCREMENT,
	game_id text NOT NULL,
	player_id text NOT NULL,
	turn_number integer NOT NULL,
	audit blob NOT NULL,
	created_at datetime NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_bot_audits_game ON bot_audits(game_id);
`

// Store bundles a sqlite connection and the event bus its game and
// track repositories publish to (the player repository holds it but
// publishes nothing; the audit repository has none), mirroring the in-memory
// repositories' constructor shape (internal/repository takes an
// events.Bus too).
type Store struct {
	db  *sql.DB
	bus events.Bus
}

// Open creates (if necessary) and opens the sqlite database at path,
// applying schema, and returns a Store ready to hand out repositories.
// path may be ":memory:" for tests.
func Open(ctx context.Context, path string, bus events.Bus) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid SQLITE_BUSY under concurrent repos

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &Store{db: db, bus: bus}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Games returns a GameRepository backed by this store.
func (s *Store) Games() *GameRepository { return &GameRepository{db: s.db, bus: s.bus} }

// Players returns a PlayerRepository backed by this store.
func (s *Store) Players() *PlayerRepository { return &PlayerRepository{db: s.db, bus: s.bus} }

// Tracks returns a TrackRepository backed by this store.
func (s *Store) Tracks() *TrackRepository { return &TrackRepository{db: s.db, bus: s.bus} }

// Audits returns an AuditRepository backed by this store.
func (s *Store) Audits() *AuditRepository { return &AuditRepository{db: s.db} }
