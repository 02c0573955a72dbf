// Command aiwatch is a terminal dashboard that tails a running
// server's ai:thinking and ai:turn-complete broadcasts for one game
// and renders them with lipgloss. Grounded on the teacher's
// cmd/cli/main.go connection/read-loop shape, repurposed from an
// interactive player console into a read-only bot decision tailer:
// it never writes an action back over the socket.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ironroute-backend/internal/events"
)

type envelope struct {
	Type    string          `json:"type"`
	GameID  string          `json:"gameId"`
	Payload json.RawMessage `json:"payload"`
}

// turnSucceeded reads the executor.Result.Success field out of the
// ai:turn-complete payload's debug blob, which arrives as a generic
// map after a JSON round trip.
func turnSucceeded(debug interface{}) bool {
	m, ok := debug.(map[string]interface{})
	if !ok {
		return false
	}
	success, _ := m["Success"].(bool)
	return success
}

func main() {
	addr := flag.String("addr", "localhost:8080", "host:port of the ironroute server")
	gameID := flag.String("game", "", "game id to watch")
	maxRows := flag.Int("history", 12, "number of completed turns to keep on screen")
	flag.Parse()

	if *gameID == "" {
		fmt.Fprintln(os.Stderr, "aiwatch: -game is required")
		os.Exit(1)
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: url.Values{
		"gameId": {*gameID},
		"userId": {"aiwatch-" + uuid.New().String()[:8]},
	}.Encode()}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("aiwatch: dial %s: %v", u.String(), err)
	}
	defer conn.Close()

	board := newDashboard(*gameID, *maxRows)
	render := func() {
		clearScreen()
		fmt.Println(board.render())
	}
	render()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("aiwatch: connection closed: %v", err)
				}
				return
			}

			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				continue
			}

			switch env.Type {
			case events.TypeAiThinking:
				var p events.AiThinkingPayload
				if json.Unmarshal(env.Payload, &p) == nil {
					board.onThinking(p.PlayerID)
					render()
				}
			case events.TypeAiTurnComplete:
				var p events.AiTurnCompletePayload
				if json.Unmarshal(env.Payload, &p) == nil {
					board.onTurnComplete(p.PlayerID, p.Strategy, p.Summary, turnSucceeded(p.Debug))
					render()
				}
			}
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(200 * time.Millisecond)
	}
}
