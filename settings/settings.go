// Package settings reads process-level settings from the environment.
//
// Command-line flags in main take precedence; these values are their
// defaults.
package settings

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Session store kinds
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Settings holds everything the server reads from the environment
type Settings struct {
	Host      string `env:"HOST" envDefault:"localhost"`
	Port      int    `env:"PORT" envDefault:"8080"`
	ConfigDir string `env:"CONFIG_DIR" envDefault:"configs"`

	SessionStore    string        `env:"SESSION_STORE" envDefault:"file"`
	SessionsDir     string        `env:"SESSIONS_DIR" envDefault:"sessions"`
	SessionDB       string        `env:"SESSION_DB" envDefault:"sessions.db"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
	SyncInterval    time.Duration `env:"SESSION_SYNC_INTERVAL" envDefault:"5s"`

	// ExternalAPI is probed by the stdio MCP mode before it starts its own server
	ExternalAPI string `env:"PLATEPUSH_API_URL" envDefault:"http://localhost:8080"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// Load parses the environment into Settings and checks the result
func Load() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate reports settings that cannot work together
func (s *Settings) Validate() error {
	switch s.SessionStore {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreFile, StoreSQLite, s.SessionStore)
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", s.Port)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", s.SessionTTL)
	}
	if s.CleanupInterval <= 0 || s.SyncInterval <= 0 {
		return fmt.Errorf("session intervals must be positive")
	}
	return nil
}
