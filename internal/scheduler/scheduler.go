// Package scheduler implements the BotTurnScheduler (spec.md §4.8): the
// state machine that watches turn:change events, decides whether the
// new seat belongs to a bot, gates dispatch on at least one connected
// human, serializes turns per game, and advances the seat once the
// bot's turn has executed. Grounded on the teacher's
// internal/delivery/websocket/core/hub.go run loop (select over
// channels, ctx-cancellable) and internal/action/turn_management (turn
// advancement), generalized from human-driven to event-driven
// dispatch.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"ironroute-backend/internal/events"
	"ironroute-backend/internal/executor"
	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/metrics"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/validator"
)

// Clock abstracts the 1500ms UX pause so tests don't sleep for real.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Scheduler runs the per-game bot-turn state machine described in
// spec.md §4.8.
type Scheduler struct {
	bus        events.Bus
	games      repository.GameRepository
	players    repository.PlayerRepository
	tracks     repository.TrackRepository
	assembler  *snapshot.Assembler
	planner    *planner.Planner
	validator  *validator.Validator
	executor   *executor.Executor
	audit      AuditSink
	clock      Clock
	limiter    *rate.Limiter
	turnDelay  time.Duration
	metrics    *metrics.Collectors

	mu      sync.Mutex
	pending map[string]bool // gameId -> in flight
	queued  map[string]queuedTurn

	group singleflight.Group
	wg    errgroup.Group
}

// AuditSink is the subset of the audit package the scheduler depends
// on; kept as an interface so tests can substitute a fake.
type AuditSink interface {
	Record(ctx context.Context, gameID, playerID string, turnNum int, snap *snapshot.WorldSnapshot, config model.BotConfig, plan *planner.TurnPlan, rejection *validator.Rejection, result executor.Result, duration time.Duration)
}

type queuedTurn struct {
	seatIndex int
	playerID  string
}

// New constructs a Scheduler wired to bus and subscribes it to
// turn:change and player:reconnect immediately.
func New(
	bus events.Bus,
	games repository.GameRepository,
	players repository.PlayerRepository,
	tracks repository.TrackRepository,
	assembler *snapshot.Assembler,
	plnr *planner.Planner,
	vldtr *validator.Validator,
	exec *executor.Executor,
	audit AuditSink,
) *Scheduler {
	s := &Scheduler{
		bus:       bus,
		games:     games,
		players:   players,
		tracks:    tracks,
		assembler: assembler,
		planner:   plnr,
		validator: vldtr,
		executor:  exec,
		audit:     audit,
		clock:     realClock{},
		limiter:   rate.NewLimiter(rate.Limit(20), 20),
		turnDelay: model.BotTurnDelayMillis * time.Millisecond,
		pending:   make(map[string]bool),
		queued:    make(map[string]queuedTurn),
	}

	bus.Subscribe(events.TypeTurnChange, s.handleTurnChange)
	bus.Subscribe(events.TypePlayerReconnect, s.handleReconnect)
	return s
}

// SetClock overrides the delay clock; test-only hook.
func (s *Scheduler) SetClock(c Clock) { s.clock = c }

// SetMetrics wires prometheus collectors; optional, nil-safe if never
// called.
func (s *Scheduler) SetMetrics(c *metrics.Collectors) { s.metrics = c }

// Wait blocks until every in-flight dispatch goroutine started via
// errgroup has returned. Callers invoke this during shutdown to drain
// outstanding timers (spec.md §9 "cancellation on shutdown must drain
// timers").
func (s *Scheduler) Wait() error {
	return s.wg.Wait()
}

// IsPending reports whether gameID currently has a bot turn in flight.
func (s *Scheduler) IsPending(gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[gameID]
}

// IsQueued reports whether gameID is waiting on a human reconnect.
func (s *Scheduler) IsQueued(gameID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.queued[gameID]
	return ok
}

func (s *Scheduler) handleTurnChange(ctx context.Context, event events.Event) error {
	payload, ok := event.GetPayload().(events.TurnChangePayload)
	if !ok {
		return fmt.Errorf("turn:change event carried unexpected payload type %T", event.GetPayload())
	}
	return s.onTurnChange(ctx, payload.GameID, payload.SeatIndex, payload.PlayerID)
}

func (s *Scheduler) handleReconnect(ctx context.Context, event events.Event) error {
	payload, ok := event.GetPayload().(events.PlayerReconnectPayload)
	if !ok {
		return fmt.Errorf("player:reconnect event carried unexpected payload type %T", event.GetPayload())
	}
	return s.onHumanReconnect(ctx, payload.GameID)
}

// onTurnChange implements spec.md §4.8's onTurnChange handler. The
// singleflight group collapses concurrent calls for the same gameId so
// that two near-simultaneous turn:change deliveries (S4) still result
// in exactly one Executor run.
func (s *Scheduler) onTurnChange(ctx context.Context, gameID string, seatIndex int, playerID string) error {
	_, err, _ := s.group.Do(gameID, func() (interface{}, error) {
		return nil, s.dispatchTurnChange(ctx, gameID, seatIndex, playerID)
	})
	return err
}

func (s *Scheduler) dispatchTurnChange(ctx context.Context, gameID string, seatIndex int, playerID string) error {
	s.mu.Lock()
	if s.pending[gameID] {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	seatOrder, err := s.players.SeatOrder(ctx, gameID)
	if err != nil {
		return err
	}
	if seatIndex < 0 || seatIndex >= len(seatOrder) {
		return fmt.Errorf("seat index %d out of range for game %s", seatIndex, gameID)
	}
	resolvedPlayerID := seatOrder[seatIndex]

	player, err := s.players.GetPlayer(ctx, gameID, resolvedPlayerID)
	if err != nil {
		return err
	}
	if !player.IsBot {
		return nil
	}
	if !s.anyHumanConnected(ctx, gameID) {
		s.mu.Lock()
		s.queued[gameID] = queuedTurn{seatIndex: seatIndex, playerID: resolvedPlayerID}
		queuedCount := len(s.queued)
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.QueuedBotTurns.Set(float64(queuedCount))
		}
		return nil
	}

	s.mu.Lock()
	s.pending[gameID] = true
	pendingCount := len(s.pending)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.PendingBotTurns.Set(float64(pendingCount))
	}

	s.wg.Go(func() error {
		select {
		case <-s.clock.After(s.turnDelay):
		case <-ctx.Done():
			s.clearPending(gameID)
			return nil
		}
		s.runBotTurn(ctx, gameID, seatIndex, *player)
		return nil
	})
	return nil
}

func (s *Scheduler) anyHumanConnected(ctx context.Context, gameID string) bool {
	players, err := s.players.ListPlayers(ctx, gameID)
	if err != nil {
		return false
	}
	for _, p := range players {
		if !p.IsBot && p.IsOnline {
			return true
		}
	}
	return false
}

func (s *Scheduler) clearPending(gameID string) {
	s.mu.Lock()
	delete(s.pending, gameID)
	pendingCount := len(s.pending)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.PendingBotTurns.Set(float64(pendingCount))
	}
}

// runBotTurn runs the full pipeline -- snapshot, plan, validate,
// execute, audit -- and, on success, advances the seat. Failure policy
// (spec.md §7): log, record audit if possible, clear pending, do not
// advance the seat.
func (s *Scheduler) runBotTurn(ctx context.Context, gameID string, seatIndex int, player model.Player) {
	defer s.clearPending(gameID)

	started := time.Now()
	if s.metrics != nil {
		defer func() {
			s.metrics.TurnDuration.Observe(time.Since(started).Seconds())
		}()
	}

	config := model.BotConfig{Archetype: model.ArchetypeOpportunist, Skill: model.SkillMedium}
	if player.BotConfig != nil {
		config = *player.BotConfig
	}
	log := logger.WithBotContext(gameID, player.ID, string(config.Archetype), string(config.Skill))

	if err := s.limiter.Wait(ctx); err != nil {
		log.Warn("bot turn dispatch throttled away", zap.Error(err))
		return
	}

	_ = s.bus.Publish(ctx, events.NewAiThinkingEvent(gameID, player.ID))

	// Turn build cost is a per-turn budget (spec.md §3); reset it for the
	// seat whose turn is starting, before the planner reads it.
	if err := s.tracks.ResetTurnBuildCost(ctx, gameID, player.ID); err != nil {
		log.Warn("reset turn build cost failed", zap.Error(err))
	}

	snap, err := s.assembler.Capture(ctx, gameID, player.ID)
	if err != nil {
		log.Error("snapshot capture failed, pending cleared without advancing seat", zap.Error(err))
		return
	}

	plan := s.planner.Plan(snap, config)
	validated, rejection := s.validator.Validate(snap, plan)
	if rejection != nil {
		log.Info("plan truncated by validator", zap.Int("actionIndex", rejection.ActionIndex), zap.String("reason", rejection.Reason))
		if s.metrics != nil {
			s.metrics.OptionsRejected.Inc()
		}
	}
	if s.metrics != nil {
		s.metrics.PlanLength.Observe(float64(len(validated.Actions)))
		s.metrics.OptionsFeasible.Add(float64(len(validated.Actions)))
	}

	result := s.executor.Run(ctx, gameID, player.ID, snap, validated)
	if s.metrics != nil {
		if result.Success {
			s.metrics.TurnsExecuted.Inc()
		} else {
			s.metrics.TurnsFailed.Inc()
		}
	}
	if s.audit != nil {
		s.audit.Record(ctx, gameID, player.ID, player.CurrentTurnNum, snap, config, validated, rejection, result, time.Since(started))
	}

	summary := summarize(validated, result)
	_ = s.bus.Publish(ctx, events.NewAiTurnCompleteEvent(gameID, player.ID, summary, string(config.Archetype), result))

	if !result.Success {
		log.Warn("bot turn execution failed, seat not advanced", zap.String("error", result.Error))
		return
	}

	s.advanceSeat(ctx, gameID, seatIndex, player)
}

func summarize(plan *planner.TurnPlan, result executor.Result) string {
	if len(plan.Actions) == 0 {
		return "passed"
	}
	if !result.Success {
		return fmt.Sprintf("executed %d of %d planned actions before failing", result.ActionsExecuted, len(plan.Actions))
	}
	return fmt.Sprintf("executed %d action(s)", result.ActionsExecuted)
}

// advanceSeat implements spec.md §4.8's advanceSeat: increment the
// outgoing bot's per-seat turn counter, compute next = (seatIndex+1) mod
// seatCount, and write currentSeatIndex = next, which itself triggers a
// new turn:change event via the repository's own publish -- bot chains
// are therefore emergent, not recursive.
func (s *Scheduler) advanceSeat(ctx context.Context, gameID string, seatIndex int, player model.Player) {
	player.CurrentTurnNum++
	if err := s.players.UpdatePlayer(ctx, player); err != nil {
		logger.WithGameContext(gameID, player.ID).Error("advanceSeat: turn counter update failed", zap.Error(err))
	}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		logger.WithGameContext(gameID, "").Error("advanceSeat: game lookup failed", zap.Error(err))
		return
	}
	next := (seatIndex + 1) % game.SeatCount
	if err := s.games.AdvanceSeat(ctx, gameID, next); err != nil {
		logger.WithGameContext(gameID, "").Error("advanceSeat failed", zap.Error(err))
	}
}

// onHumanReconnect implements spec.md §4.8's onHumanReconnect: if
// queued has gameId, remove it and replay onTurnChange for the seat
// that was deferred.
func (s *Scheduler) onHumanReconnect(ctx context.Context, gameID string) error {
	s.mu.Lock()
	turn, ok := s.queued[gameID]
	if ok {
		delete(s.queued, gameID)
	}
	queuedCount := len(s.queued)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	if s.metrics != nil {
		s.metrics.QueuedBotTurns.Set(float64(queuedCount))
	}
	return s.onTurnChange(ctx, gameID, turn.seatIndex, turn.playerID)
}
