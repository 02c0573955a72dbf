package transaction

import (
	"context"

	"ironroute-backend/internal/repository"
)

// Manager is the main entry point for creating and executing transactions.
type Manager struct {
	gameRepo   repository.GameRepository
	playerRepo repository.PlayerRepository
	trackRepo  repository.TrackRepository
	loadRepo   repository.LoadRepository
	demandRepo repository.DemandDeckRepository
}

// NewManager creates a new transaction manager.
func NewManager(
	gameRepo repository.GameRepository,
	playerRepo repository.PlayerRepository,
	trackRepo repository.TrackRepository,
	loadRepo repository.LoadRepository,
	demandRepo repository.DemandDeckRepository,
) *Manager {
	return &Manager{
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		trackRepo:  trackRepo,
		loadRepo:   loadRepo,
		demandRepo: demandRepo,
	}
}

func (m *Manager) GetGameRepo() repository.GameRepository         { return m.gameRepo }
func (m *Manager) GetPlayerRepo() repository.PlayerRepository     { return m.playerRepo }
func (m *Manager) GetTrackRepo() repository.TrackRepository       { return m.trackRepo }
func (m *Manager) GetLoadRepo() repository.LoadRepository         { return m.loadRepo }
func (m *Manager) GetDemandRepo() repository.DemandDeckRepository { return m.demandRepo }

// ExecuteAtomic executes a function within an atomic transaction context.
func (m *Manager) ExecuteAtomic(ctx context.Context, build func(tx *Transaction) error) error {
	tx := NewTransaction(m)

	if err := build(tx); err != nil {
		return err
	}

	if err := tx.Execute(ctx); err != nil {
		return err
	}

	return nil
}

// NewTransaction creates a new transaction (used for advanced cases that
// need to inspect commit/rollback state directly).
func (m *Manager) NewTransaction() *Transaction {
	return NewTransaction(m)
}
