package events

import "time"

// TurnChangePayload is the sole trigger for the BotTurnScheduler
// (spec.md §6): turn:change {gameId, seatIndex, playerId}.
type TurnChangePayload struct {
	GameID    string
	SeatIndex int
	PlayerID  string
}

// NewTurnChangeEvent builds the turn:change event.
func NewTurnChangeEvent(gameID string, seatIndex int, playerID string) *BaseEvent {
	e := NewBaseEvent(TypeTurnChange, gameID, TurnChangePayload{GameID: gameID, SeatIndex: seatIndex, PlayerID: playerID})
	return &e
}

// PlayerReconnectPayload triggers queued-turn replay (spec.md §6).
type PlayerReconnectPayload struct {
	GameID string
	UserID string
}

func NewPlayerReconnectEvent(gameID, userID string) *BaseEvent {
	e := NewBaseEvent(TypePlayerReconnect, gameID, PlayerReconnectPayload{GameID: gameID, UserID: userID})
	return &e
}

// StatePatchPayload carries the delta sent after each mutation
// (spec.md §6): state:patch {gameId, players, tracks}.
type StatePatchPayload struct {
	GameID          string
	ChangedPlayers  []string
	ChangedTracks   []string
}

func NewStatePatchEvent(gameID string, changedPlayers, changedTracks []string) *BaseEvent {
	e := NewBaseEvent(TypeStatePatch, gameID, StatePatchPayload{GameID: gameID, ChangedPlayers: changedPlayers, ChangedTracks: changedTracks})
	return &e
}

// TrackUpdatedPayload mirrors spec.md §6: track:updated {gameId,
// playerId, timestamp}.
type TrackUpdatedPayload struct {
	GameID    string
	PlayerID  string
	Timestamp time.Time
}

func NewTrackUpdatedEvent(gameID, playerID string) *BaseEvent {
	e := NewBaseEvent(TypeTrackUpdated, gameID, TrackUpdatedPayload{GameID: gameID, PlayerID: playerID, Timestamp: time.Now()})
	return &e
}

// AiThinkingPayload announces that a bot's turn has begun planning
// (spec.md §6): ai:thinking {playerId}.
type AiThinkingPayload struct {
	GameID   string
	PlayerID string
}

func NewAiThinkingEvent(gameID, playerID string) *BaseEvent {
	e := NewBaseEvent(TypeAiThinking, gameID, AiThinkingPayload{GameID: gameID, PlayerID: playerID})
	return &e
}

// AiTurnCompletePayload is emitted after a bot turn finishes, including
// when it summarises a Pass (spec.md §7): ai:turn-complete {playerId,
// summary, strategy, debug}.
type AiTurnCompletePayload struct {
	GameID    string
	PlayerID  string
	Summary   string
	Strategy  string
	Debug     interface{}
}

func NewAiTurnCompleteEvent(gameID, playerID, summary, strategy string, debug interface{}) *BaseEvent {
	e := NewBaseEvent(TypeAiTurnComplete, gameID, AiTurnCompletePayload{
		GameID: gameID, PlayerID: playerID, Summary: summary, Strategy: strategy, Debug: debug,
	})
	return &e
}
