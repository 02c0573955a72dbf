// Package logger provides the process-wide structured logger used by every
// package in the AI turn pipeline.
package logger

import (
	"os"

	"go.uber.org/zap"
)

var globalLogger *zap.Logger

// Init initializes the global logger. logLevel overrides IRONROUTE_LOG_LEVEL
// when non-nil; GO_ENV=production selects the production JSON encoder.
func Init(logLevel *string) error {
	var err error

	env := os.Getenv("GO_ENV")
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	appliedLogLevel := os.Getenv("IRONROUTE_LOG_LEVEL")
	if logLevel != nil && *logLevel != "" {
		appliedLogLevel = *logLevel
	}
	if appliedLogLevel == "" {
		appliedLogLevel = "info"
	}

	switch appliedLogLevel {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	globalLogger, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// Get returns the global logger, falling back to a development logger if
// Init was never called (keeps tests from needing boilerplate setup).
func Get() *zap.Logger {
	if globalLogger == nil {
		globalLogger, _ = zap.NewDevelopment()
	}
	return globalLogger
}

// Sync flushes buffered log entries.
func Sync() error {
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}

// Shutdown flushes the logger during process shutdown.
func Shutdown() error {
	return Sync()
}

// WithContext returns a logger enriched with arbitrary fields.
func WithContext(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// WithGameContext returns a logger tagged with the game and player it is
// acting on behalf of.
func WithGameContext(gameID, playerID string) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if gameID != "" {
		fields = append(fields, zap.String("game_id", gameID))
	}
	if playerID != "" {
		fields = append(fields, zap.String("player_id", playerID))
	}
	return Get().With(fields...)
}

// WithBotContext returns a logger tagged with the bot seat's game, player,
// archetype and skill -- used by the scheduler's turn pipeline so every log
// line from one bot turn can be correlated.
func WithBotContext(gameID, playerID, archetype, skill string) *zap.Logger {
	return Get().With(
		zap.String("game_id", gameID),
		zap.String("player_id", playerID),
		zap.String("archetype", archetype),
		zap.String("skill", skill),
	)
}
