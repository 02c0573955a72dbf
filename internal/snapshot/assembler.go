package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"lukechampine.com/blake3"

	domainerrors "ironroute-backend/internal/errors"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/topology"
)

// tick is a process-wide monotonic counter folded into every
// fingerprint so that two captures of genuinely different state never
// collide even if every other field happens to match (spec.md §4.2
// step 7).
var tick int64

// Assembler builds WorldSnapshots for the Planner (spec.md §4.2).
// Grounded on the teacher's internal/game/state_diff.go point-in-time
// capture pattern, re-expressed as a standalone read-only service per
// DESIGN NOTES §9 ("singletons become values constructed at startup").
type Assembler struct {
	topo    *topology.Topology
	players repository.PlayerRepository
	tracks  repository.TrackRepository
	loads   repository.LoadRepository
	games   repository.GameRepository
}

// NewAssembler constructs an Assembler from its dependencies.
func NewAssembler(topo *topology.Topology, games repository.GameRepository, players repository.PlayerRepository, tracks repository.TrackRepository, loads repository.LoadRepository) *Assembler {
	return &Assembler{topo: topo, games: games, players: players, tracks: tracks, loads: loads}
}

// Capture reads the player row, all track rows, global load state and
// the bot's demand hand, and assembles an immutable WorldSnapshot. It
// never mutates store state (spec.md §4.2 contract).
func (a *Assembler) Capture(ctx context.Context, gameID, botPlayerID string) (*WorldSnapshot, error) {
	game, err := a.games.Get(ctx, gameID)
	if err != nil {
		return nil, &domainerrors.TransientStoreError{Op: "read game", Err: err}
	}

	players, err := a.players.ListPlayers(ctx, gameID)
	if err != nil {
		return nil, &domainerrors.TransientStoreError{Op: "list players", Err: err}
	}

	var bot *model.Player
	for i := range players {
		if players[i].ID == botPlayerID {
			bot = &players[i]
			break
		}
	}
	if bot == nil {
		return nil, &domainerrors.BotNotFoundError{GameID: gameID, PlayerID: botPlayerID}
	}

	allTracks, err := a.tracks.ListAll(ctx, gameID)
	if err != nil {
		return nil, &domainerrors.TransientStoreError{Op: "list tracks", Err: err}
	}

	var ownTrack model.PlayerTrackState
	var allSegments []model.TrackSegment
	for _, t := range allTracks {
		allSegments = append(allSegments, t.Segments...)
		if t.PlayerID == botPlayerID {
			ownTrack = t
		}
	}

	loadStates, err := a.loads.GetAll(ctx, gameID)
	if err != nil {
		return nil, &domainerrors.TransientStoreError{Op: "read load state", Err: err}
	}

	carriedByType := make(map[model.LoadType]int)
	for _, p := range players {
		for _, lt := range p.Train.CarriedLoads {
			carriedByType[lt]++
		}
	}
	availability := make(map[model.LoadType]int, len(loadStates))
	producers := make(map[model.LoadType][]string, len(loadStates))
	for lt, state := range loadStates {
		avail := state.Available - carriedByType[lt]
		if avail < 0 {
			avail = 0
		}
		availability[lt] = avail
		producers[lt] = append([]string(nil), state.ProducingCities...)
	}

	droppedLoads := make(map[string][]model.LoadType)
	for _, group := range a.topo.MajorCityGroups() {
		dropped, err := a.loads.DroppedAt(ctx, gameID, group.Name)
		if err != nil {
			return nil, &domainerrors.TransientStoreError{Op: "read dropped loads", Err: err}
		}
		if len(dropped) > 0 {
			droppedLoads[group.Name] = dropped
		}
	}

	graph := ownTrack.AdjacencyGraph()

	connected := make(map[string]bool)
	for _, group := range a.topo.MajorCityGroups() {
		for _, node := range group.Nodes() {
			if _, ok := graph[node]; ok {
				connected[group.Name] = true
				break
			}
		}
	}

	connectedCities := make(map[string]bool)
	for node := range graph {
		if p, ok := a.topo.Point(node); ok && p.Name != "" {
			connectedCities[p.Name] = true
		}
	}

	snap := &WorldSnapshot{
		gameID:               gameID,
		botPlayerID:          botPlayerID,
		phase:                game.Status,
		money:                bot.Money,
		debt:                 bot.Debt,
		position:             bot.Train.Position,
		trainType:            bot.TrainType,
		remainingMovement:    bot.Train.RemainingMovement,
		carriedLoads:         append([]model.LoadType(nil), bot.Train.CarriedLoads...),
		hand:                 append([]model.DemandCard(nil), bot.Hand...),
		ownSegments:          append([]model.TrackSegment(nil), ownTrack.Segments...),
		turnBuildCost:        ownTrack.TurnBuildCost,
		allSegments:          allSegments,
		loadAvailability:     availability,
		loadProducers:        producers,
		droppedLoads:         droppedLoads,
		majorCityGroups:      a.topo.MajorCityGroups(),
		points:               a.topo.AllPoints(),
		ownGraph:             graph,
		connectedMajorCities: connected,
		connectedCities:      connectedCities,
	}
	snap.fingerprint = fingerprint(snap)
	return snap, nil
}

// fingerprint canonicalises the snapshot's contents plus a monotonic
// tick into a 16-character hex digest (spec.md §4.2 step 7).
func fingerprint(s *WorldSnapshot) string {
	t := atomic.AddInt64(&tick, 1)

	var b strings.Builder
	fmt.Fprintf(&b, "game=%s;bot=%s;phase=%s;money=%d;debt=%d;train=%s;moves=%d;tick=%d;",
		s.gameID, s.botPlayerID, s.phase, s.money, s.debt, s.trainType, s.remainingMovement, t)

	if s.position != nil {
		fmt.Fprintf(&b, "pos=%s;", *s.position)
	}

	carried := append([]model.LoadType(nil), s.carriedLoads...)
	sort.Slice(carried, func(i, j int) bool { return carried[i] < carried[j] })
	for _, lt := range carried {
		fmt.Fprintf(&b, "carry=%s;", lt)
	}

	handIDs := make([]int, 0, len(s.hand))
	for _, c := range s.hand {
		handIDs = append(handIDs, c.ID)
	}
	sort.Ints(handIDs)
	for _, id := range handIDs {
		fmt.Fprintf(&b, "hand=%d;", id)
	}

	fmt.Fprintf(&b, "ownsegs=%d;allsegs=%d;", len(s.ownSegments), len(s.allSegments))

	loadTypes := make([]string, 0, len(s.loadAvailability))
	for lt := range s.loadAvailability {
		loadTypes = append(loadTypes, string(lt))
	}
	sort.Strings(loadTypes)
	for _, lt := range loadTypes {
		fmt.Fprintf(&b, "avail[%s]=%d;", lt, s.loadAvailability[model.LoadType(lt)])
	}

	cities := make([]string, 0, len(s.connectedMajorCities))
	for name, connected := range s.connectedMajorCities {
		if connected {
			cities = append(cities, name)
		}
	}
	sort.Strings(cities)
	for _, c := range cities {
		fmt.Fprintf(&b, "connected=%s;", c)
	}

	sum := blake3.Sum256([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:8])
}
