// Package errors holds the typed error values the AI turn pipeline uses to
// tell callers how to react: retry, skip the option, or halt the process.
package errors

import "fmt"

// NotFoundError represents a generic missing-resource error.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// BotNotFoundError is returned by the snapshot assembler when the seat it
// was asked to capture is missing from the game's player rows.
type BotNotFoundError struct {
	GameID   string
	PlayerID string
}

func (e *BotNotFoundError) Error() string {
	return fmt.Sprintf("bot player %s not found in game %s", e.PlayerID, e.GameID)
}

// InfeasibleActionError wraps a FeasibilityService rejection reason so it
// can be returned as an error where a function signature demands one
// (e.g. the pathfinder's "no route" case).
type InfeasibleActionError struct {
	Reason string
}

func (e *InfeasibleActionError) Error() string {
	return fmt.Sprintf("action infeasible: %s", e.Reason)
}

// TransientStoreError wraps an underlying store error that the scheduler
// should treat as retryable: clear pending, do not advance the seat, let a
// later turn-change event try again.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store error during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}

// ConfigurationError marks a fatal startup error -- missing grid data,
// corrupt JSON, anything that should stop the process before it runs
// games.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error loading %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
