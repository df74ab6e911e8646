package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Limits      LimitsConfig      `toml:"limits"`
	Credits     CreditsConfig     `toml:"credits"`
	Import      ImportConfig      `toml:"import"`
	Suggestions SuggestionsConfig `toml:"suggestions"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LimitsConfig contains catalog and playlist limits.
type LimitsConfig struct {
	MaxPlaylists  int `toml:"max_playlists"`
	MaxNameLength int `toml:"max_name_length"`
}

// CreditsConfig contains the monetization constants.
//
// The conversion rate and creation fee are expected to be tuned over time,
// so both are configuration rather than code constants.
type CreditsConfig struct {
	AdFreeMinutesPerCoin int `toml:"ad_free_minutes_per_coin"`
	PlaylistCreationFee  int `toml:"playlist_creation_fee"`
	RecheckSeconds       int `toml:"recheck_seconds"`
}

// ImportConfig contains bulk import settings.
type ImportConfig struct {
	ChunkSize int `toml:"chunk_size"`
}

// SuggestionsConfig contains settings for the AI playlist-suggestion service.
type SuggestionsConfig struct {
	Enabled           bool   `toml:"enabled"`
	APIKey            string `toml:"api_key"`
	Model             string `toml:"model"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
