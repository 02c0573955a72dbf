package transaction

import (
	"context"

	"ironroute-backend/internal/repository"
)

// Operation represents a single atomic operation that can be rolled back.
type Operation interface {
	Execute(ctx context.Context) error
	Rollback(ctx context.Context) error
	String() string
}

// TransactionManager is the repository set every Transaction is built
// against.
type TransactionManager interface {
	GetGameRepo() repository.GameRepository
	GetPlayerRepo() repository.PlayerRepository
	GetTrackRepo() repository.TrackRepository
	GetLoadRepo() repository.LoadRepository
	GetDemandRepo() repository.DemandDeckRepository
}
