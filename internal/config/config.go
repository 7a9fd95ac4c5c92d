// Package config loads service configuration from an optional YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither file nor environment specify a value.
const (
	DefaultListenAddr       = ":8080"
	DefaultDatabasePath     = "ethos.db"
	DefaultCORSOrigins      = "*"
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
	DefaultVouchPageSize    = 20
	MaxVouchPageSize        = 100
	ProfileVouchCount       = 10
)

// Config holds the service settings. All fields have working defaults, so
// a zero configuration runs a local instance.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`

	// DatabasePath is the SQLite database file path.
	DatabasePath string `yaml:"database_path"`

	// CORSOrigins is a comma-separated list of allowed origins ("*" for all).
	CORSOrigins string `yaml:"cors_origins"`

	// LeaderboardLimit caps how many agents a leaderboard request may return,
	// regardless of the caller-requested value.
	LeaderboardLimit int `yaml:"leaderboard_limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ListenAddr:       DefaultListenAddr,
		DatabasePath:     DefaultDatabasePath,
		CORSOrigins:      DefaultCORSOrigins,
		LeaderboardLimit: MaxLeaderboardLimit,
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped silently when path is empty or the file does not exist),
// then ETHOS_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.LeaderboardLimit <= 0 || cfg.LeaderboardLimit > MaxLeaderboardLimit {
		cfg.LeaderboardLimit = MaxLeaderboardLimit
	}
	return cfg, nil
}

// applyEnv overlays ETHOS_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("ETHOS_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ETHOS_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("ETHOS_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = v
	}
	if v := os.Getenv("ETHOS_LEADERBOARD_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LeaderboardLimit = n
		}
	}
}

// CORSOriginList splits the configured origins into a cleaned slice.
func (c Config) CORSOriginList() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
