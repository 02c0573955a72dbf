// Command server wires the IronRoute AI turn pipeline together and
// serves its HTTP/WebSocket surface. Grounded on the teacher's
// cmd/server/main.go: one flat main that constructs repositories, an
// event bus, a gin router, and a WebSocket hub, then blocks serving.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ironroute-backend/internal/audit"
	"ironroute-backend/internal/config"
	httpdelivery "ironroute-backend/internal/delivery/http"
	"ironroute-backend/internal/delivery/websocket"
	"ironroute-backend/internal/events"
	"ironroute-backend/internal/executor"
	"ironroute-backend/internal/feasibility"
	"ironroute-backend/internal/logger"
	"ironroute-backend/internal/metrics"
	"ironroute-backend/internal/pathfinder"
	"ironroute-backend/internal/planner"
	"ironroute-backend/internal/repository"
	"ironroute-backend/internal/scheduler"
	"ironroute-backend/internal/snapshot"
	"ironroute-backend/internal/store/sqlite"
	"ironroute-backend/internal/topology"
	"ironroute-backend/internal/transaction"
	"ironroute-backend/internal/validator"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(&cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Shutdown()
	log := logger.Get()

	points, err := config.LoadGridPoints(cfg.GridPointsPath)
	if err != nil {
		log.Fatal("failed to load grid points", zap.Error(err))
	}
	cityGroups := config.DeriveMajorCityGroups(points)
	topo := topology.New(points, cityGroups)

	if _, err := config.LoadDemandDeck(cfg.DemandDeckPath); err != nil {
		log.Fatal("failed to load demand deck content", zap.Error(err))
	}
	if _, err := config.LoadLoadCities(cfg.LoadCitiesPath); err != nil {
		log.Fatal("failed to load city content", zap.Error(err))
	}

	bus := events.NewInMemoryBus(8, 256)
	defer bus.Close()

	store, err := sqlite.Open(context.Background(), cfg.SqliteDSN, bus)
	if err != nil {
		log.Fatal("failed to open sqlite store", zap.Error(err))
	}
	defer store.Close()

	games := store.Games()
	players := store.Players()
	tracks := store.Tracks()
	audits := store.Audits()
	loads := repository.NewInMemoryLoadRepository(nil)
	demand := repository.NewInMemoryDemandDeckRepository(nil)

	reg, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("failed to register metrics collectors", zap.Error(err))
	}

	assembler := snapshot.NewAssembler(topo, games, players, tracks, loads)
	pf := pathfinder.New(topo)
	fs := feasibility.NewService()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pln := planner.New(topo, pf, fs, rng)
	vld := validator.New(fs)

	txManager := transaction.NewManager(games, players, tracks, loads, demand)
	exec := executor.New(txManager)

	auditSink := audit.New(audits)

	sched := scheduler.New(bus, games, players, tracks, assembler, pln, vld, exec, auditSink)
	sched.SetMetrics(reg)

	hub := websocket.NewHub(bus)
	wsHandler := websocket.NewHandler(hub)
	wsCtx, wsCancel := context.WithCancel(context.Background())
	defer wsCancel()
	go hub.Run(wsCtx)

	gameHandler := httpdelivery.NewGameHandler(games, players, sched)
	auditHandler := httpdelivery.NewAuditHandler(audits)
	router := httpdelivery.NewRouter(gameHandler, auditHandler)
	router.GET("/ws", func(c *gin.Context) { wsHandler.ServeWS(c.Writer, c.Request) })

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		log.Info("ironroute server starting", zap.Int("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	wsCancel()
	if err := sched.Wait(); err != nil {
		log.Warn("scheduler drain returned error", zap.Error(err))
	}
}
