package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Reader   ReaderConfig   `toml:"reader"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	BaseURL        string  `toml:"base_url"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// DatabaseConfig contains local database settings for the session and
// progress snapshot cache.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ReaderConfig contains reader behaviour settings.
type ReaderConfig struct {
	FallbackDocument string `toml:"fallback_document"`
	ProgressDebounce string `toml:"progress_debounce"`
	NotesDebounce    string `toml:"notes_debounce"`
}

// ProgressInterval parses the progress debounce window, zero when unset
// or malformed so callers fall back to their default.
func (r ReaderConfig) ProgressInterval() time.Duration {
	d, err := time.ParseDuration(r.ProgressDebounce)
	if err != nil {
		return 0
	}
	return d
}

// NotesInterval parses the notes debounce window, zero when unset or
// malformed so callers fall back to their default.
func (r ReaderConfig) NotesInterval() time.Duration {
	d, err := time.ParseDuration(r.NotesDebounce)
	if err != nil {
		return 0
	}
	return d
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
