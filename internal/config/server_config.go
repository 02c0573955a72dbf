// Package config loads the two kinds of startup-time configuration the
// pipeline needs: environment/flag settings via viper (grounded on the
// niceyeti-tabular example, the one repo in the pack that wires a server
// this way), and the read-only content JSON files named in spec.md §6,
// loaded with the teacher's multi-candidate-path search
// (internal/repository/card_repository.go in the teacher).
package config

import (
	"strings"

	"github.com/spf13/viper"

	domainerrors "ironroute-backend/internal/errors"
)

// ServerConfig holds every environment/flag-tunable setting. Content
// file locations are separate (see content.go) since they are read-only
// game data, not server configuration.
type ServerConfig struct {
	LogLevel          string
	BotTurnDelayMs    int
	PerTurnDeadlineMs int
	HTTPPort          int
	MetricsPort       int
	SqliteDSN         string
	GridPointsPath    string
	LoadCitiesPath    string
	DemandDeckPath    string
}

// LoadServerConfig reads IRONROUTE_-prefixed environment variables (and
// an optional ironroute.yaml/json/toml in the working directory) into a
// ServerConfig, applying defaults for anything unset.
func LoadServerConfig() (*ServerConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("IRONROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("ironroute")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("log_level", "info")
	v.SetDefault("bot_turn_delay_ms", 1500)
	v.SetDefault("per_turn_deadline_ms", 10000)
	v.SetDefault("http_port", 8080)
	v.SetDefault("metrics_port", 9090)
	v.SetDefault("sqlite_dsn", "file:ironroute.db?cache=shared&_pragma=foreign_keys(1)")
	v.SetDefault("grid_points_path", "assets/gridPoints.json")
	v.SetDefault("load_cities_path", "assets/load_cities.json")
	v.SetDefault("demand_deck_path", "assets/demand_deck.json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, &domainerrors.ConfigurationError{Source: "server config", Err: err}
		}
	}

	return &ServerConfig{
		LogLevel:          v.GetString("log_level"),
		BotTurnDelayMs:    v.GetInt("bot_turn_delay_ms"),
		PerTurnDeadlineMs: v.GetInt("per_turn_deadline_ms"),
		HTTPPort:          v.GetInt("http_port"),
		MetricsPort:       v.GetInt("metrics_port"),
		SqliteDSN:         v.GetString("sqlite_dsn"),
		GridPointsPath:    v.GetString("grid_points_path"),
		LoadCitiesPath:    v.GetString("load_cities_path"),
		DemandDeckPath:    v.GetString("demand_deck_path"),
	}, nil
}
