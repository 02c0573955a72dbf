package operations

import (
	"context"
	"fmt"

	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
)

// AppendTrackOperation lays new track segments for a player. Track is
// permanent once built (spec.md §3: building a segment is irreversible),
// so Rollback is intentionally a no-op rather than attempting to strip
// segments the repository has no way to remove.
type AppendTrackOperation struct {
	trackRepo repository.TrackRepository
	gameID    string
	playerID  string
	segments  []model.TrackSegment
	cost      int
}

func NewAppendTrackOperation(trackRepo repository.TrackRepository, gameID, playerID string, segments []model.TrackSegment, cost int) *AppendTrackOperation {
	return &AppendTrackOperation{trackRepo: trackRepo, gameID: gameID, playerID: playerID, segments: segments, cost: cost}
}

func (op *AppendTrackOperation) Execute(ctx context.Context) error {
	if err := op.trackRepo.AppendSegments(ctx, op.gameID, op.playerID, op.segments, op.cost); err != nil {
		return fmt.Errorf("failed to append track: %w", err)
	}
	return nil
}

func (op *AppendTrackOperation) Rollback(ctx context.Context) error {
	return nil
}

func (op *AppendTrackOperation) String() string {
	return fmt.Sprintf("AppendTrack(gameID=%s, playerID=%s, segments=%d, cost=%d)", op.gameID, op.playerID, len(op.segments), op.cost)
}
