package scheduler_test

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ironroute-backend/internal/events"
	"ironroute-backend/internal/executor"
	"ironroute-backend/internal/feasibility"
	"ironroute-backend/internal/metrics"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/pathfinder"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/scheduler"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/topology"
	"ironroute-backend/internal/transaction"
	"ironroute-backend/internal/validator"
)

// instantClock fires immediately, removing the 1500ms UX pause from tests.
type instantClock struct{}

func (instantClock) After(time.Duration) <-chan time.Time {
	c := make(chan time.Time, 1)
	c <- time.Time{}
	return c
}

// countingAudit records how many times a turn was audited.
type countingAudit struct {
	calls int32
}

func (a *countingAudit) Record(ctx context.Context, gameID, playerID string, turnNum int, snap *snapshot.WorldSnapshot, config model.BotConfig, plan *planner.TurnPlan, rejection *validator.Rejection, result executor.Result, duration time.Duration) {
	atomic.AddInt32(&a.calls, 1)
}

func buildScheduler(t *testing.T, bus events.Bus) (*scheduler.Scheduler, repository.GameRepository, repository.PlayerRepository, *countingAudit) {
	t.Helper()

	points := []model.Point{
		{Coord: model.Coord{Row: 0, Col: 0}, Terrain: model.TerrainClear, Name: "CityA"},
		{Coord: model.Coord{Row: 0, Col: 1}, Terrain: model.TerrainMediumCity, Name: "CityB"},
	}
	topo := topology.New(points, nil)

	games := repository.NewInMemoryGameRepository(bus)
	players := repository.NewInMemoryPlayerRepository(bus)
	tracks := repository.NewInMemoryTrackRepository(bus)
	loads := repository.NewInMemoryLoadRepository(nil)
	demand := repository.NewInMemoryDemandDeckRepository(nil)

	fs := feasibility.NewService()
	pf := pathfinder.New(topo)
	pln := planner.New(topo, pf, fs, rand.New(rand.NewSource(1)))
	vld := validator.New(fs)
	asm := snapshot.NewAssembler(topo, games, players, tracks, loads)
	txMgr := transaction.NewManager(games, players, tracks, loads, demand)
	exec := executor.New(txMgr)
	audit := &countingAudit{}

	s := scheduler.New(bus, games, players, tracks, asm, pln, vld, exec, audit)
	s.SetClock(instantClock{})
	collectors, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	s.SetMetrics(collectors)
	return s, games, players, audit
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestScheduler_QueuesWhenNoHumanConnected(t *testing.T) {
	bus := events.NewInMemoryBus(4, 16)
	defer bus.Close()
	s, games, players, audit := buildScheduler(t, bus)
	ctx := context.Background()

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 2}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{ID: "human1", GameID: "g1", IsBot: false, IsOnline: false, CreatedAtUnixSec: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{ID: "bot1", GameID: "g1", IsBot: true, CreatedAtUnixSec: 2,
		BotConfig: &model.BotConfig{Archetype: model.ArchetypeOpportunist, Skill: model.SkillEasy}}))

	require.NoError(t, bus.Publish(ctx, events.NewTurnChangeEvent("g1", 1, "bot1")))

	waitUntil(t, time.Second, func() bool { return s.IsQueued("g1") })
	assert.False(t, s.IsPending("g1"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&audit.calls))

	require.NoError(t, players.UpdatePlayer(ctx, model.Player{ID: "human1", GameID: "g1", IsBot: false, IsOnline: true, CreatedAtUnixSec: 1}))
	require.NoError(t, bus.Publish(ctx, events.NewPlayerReconnectEvent("g1", "human1")))

	waitUntil(t, time.Second, func() bool { return atomic.LoadInt32(&audit.calls) == 1 })
	assert.False(t, s.IsQueued("g1"))
	require.NoError(t, s.Wait())
}

func TestScheduler_DoubleTriggerYieldsOneExecution(t *testing.T) {
	bus := events.NewInMemoryBus(4, 16)
	defer bus.Close()
	s, games, players, audit := buildScheduler(t, bus)
	ctx := context.Background()

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 2}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{ID: "human1", GameID: "g1", IsBot: false, IsOnline: true, CreatedAtUnixSec: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{ID: "bot1", GameID: "g1", IsBot: true, CreatedAtUnixSec: 2,
		BotConfig: &model.BotConfig{Archetype: model.ArchetypeOpportunist, Skill: model.SkillEasy}}))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(ctx, events.NewTurnChangeEvent("g1", 1, "bot1"))
		}()
	}
	wg.Wait()

	waitUntil(t, time.Second, func() bool { return atomic.LoadInt32(&audit.calls) >= 1 })
	time.Sleep(50 * time.Millisecond) // let any stray second dispatch land
	assert.Equal(t, int32(1), atomic.LoadInt32(&audit.calls))
	require.NoError(t, s.Wait())
}

func TestScheduler_AdvanceSeatBumpsTurnCounterAndWrapsSeat(t *testing.T) {
	bus := events.NewInMemoryBus(4, 16)
	defer bus.Close()
	s, games, players, audit := buildScheduler(t, bus)
	ctx := context.Background()

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 2}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{ID: "human1", GameID: "g1", IsBot: false, IsOnline: true, CreatedAtUnixSec: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{ID: "bot1", GameID: "g1", IsBot: true, CreatedAtUnixSec: 2, CurrentTurnNum: 3,
		BotConfig: &model.BotConfig{Archetype: model.ArchetypeOpportunist, Skill: model.SkillEasy}}))

	require.NoError(t, bus.Publish(ctx, events.NewTurnChangeEvent("g1", 1, "bot1")))

	waitUntil(t, time.Second, func() bool { return atomic.LoadInt32(&audit.calls) == 1 })

	bot, err := players.GetPlayer(ctx, "g1", "bot1")
	require.NoError(t, err)
	assert.Equal(t, 4, bot.CurrentTurnNum, "a completed bot turn must bump the seat's own turn counter")

	game, err := games.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 0, game.CurrentSeatIndex, "seat 1 (last) wraps back to seat 0 for a 2-seat game")
	require.NoError(t, s.Wait())
}

func TestScheduler_HumanSeatIsIgnored(t *testing.T) {
	bus := events.NewInMemoryBus(4, 16)
	defer bus.Close()
	s, games, players, audit := buildScheduler(t, bus)
	ctx := context.Background()

	require.NoError(t, games.Create(ctx, model.Game{ID: "g1", Status: model.GameStatusActive, SeatCount: 1}))
	require.NoError(t, players.AddPlayer(ctx, model.Player{ID: "human1", GameID: "g1", IsBot: false, IsOnline: true, CreatedAtUnixSec: 1}))

	require.NoError(t, bus.Publish(ctx, events.NewTurnChangeEvent("g1", 0, "human1")))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, s.IsPending("g1"))
	assert.False(t, s.IsQueued("g1"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&audit.calls))
}
