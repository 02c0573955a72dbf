// Command botctl is an operator CLI for the IronRoute bot-turn
// pipeline, independent of the HTTP admin API: it talks to the same
// sqlite store the server process uses, so an operator can inspect a
// game's seat state, force a single bot turn to replay, or dump the
// latest recorded StrategyAudit for a player, without the server
// running. Grounded on urfave/cli/v3's command/flag shape (the
// wricardo-tesla-road-trip-game example carries this dependency but
// has no CLI built on it to imitate, so the commands below follow
// urfave/cli/v3's own documented Command/Action/Flag conventions).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"ironroute-backend/internal/audit"
	"ironroute-backend/internal/config"
	"ironroute-backend/internal/executor"
	"ironroute-backend/internal/feasibility"
	"ironroute-backend/internal/model"
	"ironroute-backend/internal/pathfinder"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/store/sqlite"
	"ironroute-backend/internal/topology"
	"ironroute-backend/internal/transaction"
	"ironroute-backend/internal/validator"
)

func main() {
	cmd := &cli.Command{
		Name:  "botctl",
		Usage: "operate on the IronRoute bot-turn pipeline's persisted state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Value: "file:ironroute.db?cache=shared&_pragma=foreign_keys(1)",
				Usage: "sqlite DSN, same default as the server's IRONROUTE_SQLITE_DSN",
			},
			&cli.StringFlag{Name: "grid-points", Value: "assets/gridPoints.json"},
		},
		Commands: []*cli.Command{
			statusCommand(),
			replayCommand(),
			auditCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "botctl:", err)
		os.Exit(1)
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show a game's current seat and whether it belongs to a bot",
		ArgsUsage: "<gameId>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameID := cmd.Args().Get(0)
			if gameID == "" {
				return fmt.Errorf("gameId argument required")
			}

			store, err := sqlite.Open(ctx, cmd.String("db"), nil)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			game, err := store.Games().Get(ctx, gameID)
			if err != nil {
				return fmt.Errorf("get game: %w", err)
			}

			players, err := store.Players().ListPlayers(ctx, gameID)
			if err != nil {
				return fmt.Errorf("list players: %w", err)
			}

			seatOrder, err := store.Players().SeatOrder(ctx, gameID)
			if err != nil {
				return fmt.Errorf("seat order: %w", err)
			}

			fmt.Printf("game %s: status=%s seat=%d/%d winner=%q\n",
				game.ID, game.Status, game.CurrentSeatIndex, game.SeatCount, game.WinnerID)

			if game.CurrentSeatIndex < 0 || game.CurrentSeatIndex >= len(seatOrder) {
				fmt.Println("current seat index is out of range for the recorded seat order")
				return nil
			}
			currentID := seatOrder[game.CurrentSeatIndex]
			for _, p := range players {
				if p.ID != currentID {
					continue
				}
				fmt.Printf("current seat: player=%s isBot=%v online=%v turn=%d\n",
					p.ID, p.IsBot, p.IsOnline, p.CurrentTurnNum)
				if p.IsBot {
					fmt.Println("this seat is a bot; `botctl replay` can force its turn")
				}
			}
			return nil
		},
	}
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "force a single bot turn to run now, bypassing the live scheduler",
		ArgsUsage: "<gameId> <playerId>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameID := cmd.Args().Get(0)
			playerID := cmd.Args().Get(1)
			if gameID == "" || playerID == "" {
				return fmt.Errorf("gameId and playerId arguments required")
			}

			store, err := sqlite.Open(ctx, cmd.String("db"), nil)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			points, err := config.LoadGridPoints(cmd.String("grid-points"))
			if err != nil {
				return fmt.Errorf("load grid points: %w", err)
			}
			topo := topology.New(points, config.DeriveMajorCityGroups(points))

			games := store.Games()
			players := store.Players()
			tracks := store.Tracks()
			audits := store.Audits()
			loads := repository.NewInMemoryLoadRepository(nil)
			demand := repository.NewInMemoryDemandDeckRepository(nil)

			player, err := players.GetPlayer(ctx, gameID, playerID)
			if err != nil {
				return fmt.Errorf("get player: %w", err)
			}
			if !player.IsBot {
				return fmt.Errorf("player %s is not a bot seat", playerID)
			}

			assembler := snapshot.NewAssembler(topo, games, players, tracks, loads)
			pf := pathfinder.New(topo)
			fs := feasibility.NewService()
			rng := rand.New(rand.NewSource(time.Now().UnixNano()))
			pln := planner.New(topo, pf, fs, rng)
			vld := validator.New(fs)
			txManager := transaction.NewManager(games, players, tracks, loads, demand)
			exec := executor.New(txManager)

			if err := tracks.ResetTurnBuildCost(ctx, gameID, playerID); err != nil {
				return fmt.Errorf("reset turn build cost: %w", err)
			}

			started := time.Now()
			snap, err := assembler.Capture(ctx, gameID, playerID)
			if err != nil {
				return fmt.Errorf("capture snapshot: %w", err)
			}

			botConfig := model.BotConfig{Archetype: model.ArchetypeOpportunist, Skill: model.SkillMedium}
			if player.BotConfig != nil {
				botConfig = *player.BotConfig
			}

			plan := pln.Plan(snap, botConfig)
			validated, rejection := vld.Validate(snap, plan)
			if rejection != nil {
				fmt.Printf("plan truncated at action %d: %s\n", rejection.ActionIndex, rejection.Reason)
			}

			result := exec.Run(ctx, gameID, playerID, snap, validated)
			audit.New(audits).Record(ctx, gameID, playerID, player.CurrentTurnNum, snap, botConfig, validated, rejection, result, time.Since(started))

			fmt.Printf("replay complete: success=%v actionsExecuted=%d\n", result.Success, result.ActionsExecuted)
			if result.Error != "" {
				fmt.Printf("error: %s\n", result.Error)
			}

			if result.Success {
				player.CurrentTurnNum++
				if err := players.UpdatePlayer(ctx, *player); err != nil {
					fmt.Printf("warning: could not bump turn counter: %v\n", err)
				}

				game, err := games.Get(ctx, gameID)
				if err != nil {
					fmt.Printf("warning: could not reload game to advance seat: %v\n", err)
					return nil
				}
				nextSeat := (game.CurrentSeatIndex + 1) % game.SeatCount
				if err := games.AdvanceSeat(ctx, gameID, nextSeat); err != nil {
					fmt.Printf("warning: could not advance seat: %v\n", err)
				}
			}
			return nil
		},
	}
}

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:      "audit",
		Usage:     "print the latest recorded StrategyAudit JSON for a game/player",
		ArgsUsage: "<gameId> <playerId>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameID := cmd.Args().Get(0)
			playerID := cmd.Args().Get(1)
			if gameID == "" || playerID == "" {
				return fmt.Errorf("gameId and playerId arguments required")
			}

			store, err := sqlite.Open(ctx, cmd.String("db"), nil)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			record, ok := store.Audits().Latest(ctx, gameID, playerID)
			if !ok {
				return fmt.Errorf("no audit recorded for %s/%s", gameID, playerID)
			}

			var pretty map[string]interface{}
			if err := json.Unmarshal(record.Audit, &pretty); err != nil {
				fmt.Println(string(record.Audit))
				return nil
			}
			out, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}
