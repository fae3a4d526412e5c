package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the todokeeper CLI.
//
// Fields:
//   - ServerURL: base URL of the todokeeper HTTP API.
//   - StatePath: SQLite file that keeps the current session.
//   - Timeout: per-request HTTP timeout.
type Config struct {
	ServerURL string
	StatePath string
	Timeout   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.StatePath = DefaultStatePath()
	c.Timeout = 10 * time.Second
}

// DefaultStatePath is state.db under the user's config directory, or in
// the working directory when that cannot be resolved.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "todokeeper-state.db"
	}
	return filepath.Join(dir, "todokeeper", "state.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file named by -c/-config, if any. Command-line flags and
// environment variables are applied on top by the CLI itself.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	return cfg
}
