package testserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"ironroute-backend/internal/repository"
)

// newRouter builds the mux router the integration harness drives.
// Grounded on the teacher's internal/delivery/http/router.go SetupRouter
// -- same PathPrefix/Subrouter shape, narrowed to the fixture routes an
// integration test needs.
func newRouter(games repository.GameRepository, players repository.PlayerRepository) *mux.Router {
	gh := newGameHandler(games)
	ph := newPlayerHandler(players)

	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	gameRoutes := api.PathPrefix("/games").Subrouter()
	gameRoutes.HandleFunc("", gh.CreateGame).Methods(http.MethodPost)
	gameRoutes.HandleFunc("/{gameId}", gh.GetGame).Methods(http.MethodGet)

	playerRoutes := api.PathPrefix("/games/{gameId}/players").Subrouter()
	playerRoutes.HandleFunc("", ph.AddPlayer).Methods(http.MethodPost)
	playerRoutes.HandleFunc("/{playerId}", ph.GetPlayer).Methods(http.MethodGet)

	return router
}
