// Package events implements the string-typed, worker-pool-backed event
// bus that carries the upstream/downstream events named in spec.md §6
// (turn:change, player:reconnect, state:patch, track:updated,
// ai:thinking, ai:turn-complete). Grounded on the teacher's
// internal/events bus.go.
package events

import (
	"errors"
	"time"
)

// ErrEventBusClosed is returned by Publish once the bus has been closed.
var ErrEventBusClosed = errors.New("event bus is closed")

// Event types used throughout the pipeline (spec.md §6).
const (
	TypeTurnChange       = "turn:change"
	TypePlayerReconnect  = "player:reconnect"
	TypeStatePatch       = "state:patch"
	TypeTrackUpdated     = "track:updated"
	TypeAiThinking       = "ai:thinking"
	TypeAiTurnComplete   = "ai:turn-complete"
)

// Event is a domain event that can be published and consumed.
type Event interface {
	GetType() string
	GetGameID() string
	GetTimestamp() time.Time
	GetPayload() interface{}
}

// BaseEvent provides the common Event plumbing for concrete event types.
type BaseEvent struct {
	Type      string      `json:"type"`
	GameID    string      `json:"gameId"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

func (e *BaseEvent) GetType() string          { return e.Type }
func (e *BaseEvent) GetGameID() string        { return e.GameID }
func (e *BaseEvent) GetTimestamp() time.Time  { return e.Timestamp }
func (e *BaseEvent) GetPayload() interface{}  { return e.Payload }

// NewBaseEvent constructs a BaseEvent stamped with the current time.
func NewBaseEvent(eventType, gameID string, payload interface{}) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		GameID:    gameID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}
