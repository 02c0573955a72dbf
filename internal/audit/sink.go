// Package audit builds and writes the structured record of a single
// bot turn into the bot_audits store (spec.md §2 AuditSink, §6 schema
// `bot_audits(game_id, player_id, turn_number, audit JSON,
// created_at)`). Grounded on the teacher's internal/game
// state_repository.go WriteFull pattern: serialize a snapshot of what
// happened into a JSON-friendly struct and hand it to a repository for
// an append-only write, rather than mutating a log object in place.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"ironroute-backend/internal/executor"
	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/validator"
)

// ActionRecord is one scored candidate option, whether it ended up
// selected, merely feasible, or rejected.
type ActionRecord struct {
	Index  int     `json:"index"`
	Kind   string  `json:"kind"`
	CardID int     `json:"cardId,omitempty"`
	Score  float64 `json:"score,omitempty"`
	Reason string  `json:"rejectReason,omitempty"`
}

// StrategyAudit is the JSON payload written to bot_audits.audit (spec.md
// §3: "{turnNumber, archetype, skill, snapshotHash, feasibleOptions,
// rejectedOptions, selectedPlan, executionResult, botStatus,
// durationMs}"). The snapshot fingerprint correlates this record with
// the exact state the bot planned on (glossary: "Snapshot fingerprint").
type StrategyAudit struct {
	GameID              string         `json:"gameId"`
	PlayerID            string         `json:"playerId"`
	TurnNumber          int            `json:"turnNumber"`
	Archetype           string         `json:"archetype"`
	Skill               string         `json:"skill"`
	SnapshotFingerprint string         `json:"snapshotFingerprint"`
	PlannedActions      []ActionRecord `json:"plannedActions"`
	FeasibleOptions     []ActionRecord `json:"feasibleOptions,omitempty"`
	RejectedOptions     []ActionRecord `json:"rejectedOptions,omitempty"`
	Success             bool           `json:"success"`
	ActionsExecuted     int            `json:"actionsExecuted"`
	FailureReason       string         `json:"failureReason,omitempty"`
	RejectedActionIndex *int           `json:"rejectedActionIndex,omitempty"`
	RejectedReason      string         `json:"rejectedReason,omitempty"`
	BotStatus           string         `json:"botStatus"`
	DurationMs          int64          `json:"durationMs"`
	RecordedAt          time.Time      `json:"recordedAt"`
}

// Sink writes a StrategyAudit for every executed bot turn. It
// implements the narrow scheduler.AuditSink interface without
// importing the scheduler package, so there is no import cycle.
type Sink struct {
	repo repository.AuditRepository
}

// New constructs a Sink backed by repo.
func New(repo repository.AuditRepository) *Sink {
	return &Sink{repo: repo}
}

// Record assembles a StrategyAudit from the bot's configuration, the
// planned/validated plan, and the executor's result, then writes it to
// the audit repository. Marshal failures are logged and swallowed: a
// missing audit row must never fail a bot turn that otherwise completed
// (spec.md §7 treats the audit write as a side effect of, not a
// precondition for, turn completion).
func (s *Sink) Record(ctx context.Context, gameID, playerID string, turnNum int, snap *snapshot.WorldSnapshot, config model.BotConfig, plan *planner.TurnPlan, rejection *validator.Rejection, result executor.Result, duration time.Duration) {
	if plan == nil {
		plan = &planner.TurnPlan{}
	}
	record := StrategyAudit{
		GameID:              gameID,
		PlayerID:            playerID,
		TurnNumber:          turnNum,
		Archetype:           string(config.Archetype),
		Skill:               string(config.Skill),
		SnapshotFingerprint: snap.Fingerprint(),
		PlannedActions:      optionRecords(plan.Actions),
		FeasibleOptions:     optionRecords(plan.FeasibleOptions),
		RejectedOptions:     optionRecords(plan.RejectedOptions),
		Success:             result.Success,
		ActionsExecuted:     result.ActionsExecuted,
		FailureReason:       result.Error,
		BotStatus:           botStatus(plan, result),
		DurationMs:          duration.Milliseconds(),
		RecordedAt:          time.Now(),
	}
	if rejection != nil {
		idx := rejection.ActionIndex
		record.RejectedActionIndex = &idx
		record.RejectedReason = rejection.Reason
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		logger.WithGameContext(gameID, playerID).Error("failed to marshal bot turn audit", zap.Error(err))
		return
	}

	if err := s.repo.Write(ctx, repository.AuditRecord{
		GameID:     gameID,
		PlayerID:   playerID,
		TurnNumber: turnNum,
		Audit:      encoded,
	}); err != nil {
		logger.WithGameContext(gameID, playerID).Error("failed to write bot turn audit", zap.Error(err))
	}
}

func optionRecords(options []planner.Option) []ActionRecord {
	if len(options) == 0 {
		return nil
	}
	out := make([]ActionRecord, len(options))
	for i, opt := range options {
		out[i] = ActionRecord{Index: i, Kind: string(opt.Kind), CardID: opt.CardID, Score: opt.Score, Reason: opt.RejectReason}
	}
	return out
}

// botStatus summarizes how the turn concluded: a voluntary pass (no
// feasible option beyond passing), a hard failure mid-execution, or a
// normal completion.
func botStatus(plan *planner.TurnPlan, result executor.Result) string {
	if len(plan.Actions) == 1 && plan.Actions[0].Kind == planner.OptionPass {
		return "passed"
	}
	if !result.Success {
		return "failed"
	}
	return "completed"
}
