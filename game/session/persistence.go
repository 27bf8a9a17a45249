package session

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/platepush/game/engine"
	"github.com/wricardo/mcp-training/platepush/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is what a store keeps for one session
type PersistedSessionData struct {
	ID             string                    `json:"id"`
	ConfigName     string                    `json:"config_name"` // config ID, not display name
	CreatedAt      time.Time                 `json:"created_at"`
	LastAccessedAt time.Time                 `json:"last_accessed_at"`
	MoveHistory    []engine.MoveHistoryEntry `json:"move_history"`
	CurrentMoves   []engine.MoveHistoryEntry `json:"current_moves"`
}

// snapshot captures the persistable part of a session
func snapshot(session *service.Session, configs service.ConfigManager) (*PersistedSessionData, error) {
	if session == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	configID, err := configIDFromName(configs, session.Config.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get config ID: %w", err)
	}

	state := session.Engine.GetState()
	return &PersistedSessionData{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		MoveHistory:    state.MoveHistory,
		CurrentMoves:   state.CurrentMoves,
	}, nil
}

// restore rebuilds a live session by replaying the persisted moves onto a
// freshly loaded level
func restore(data *PersistedSessionData, configs service.ConfigManager) (*service.Session, error) {
	gameConfig, err := configs.LoadConfig(data.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", data.ConfigName, err)
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	if err := gameEngine.Restore(data.MoveHistory, data.CurrentMoves); err != nil {
		return nil, fmt.Errorf("failed to replay moves: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// configIDFromName returns the config ID (filename without extension) for a display name
func configIDFromName(configs service.ConfigManager, displayName string) (string, error) {
	list, err := configs.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}

	for _, config := range list {
		if config.Name == displayName {
			return config.ConfigID, nil
		}
	}

	// The built-in level has no file behind it
	if displayName == engine.DefaultGameConfig().Name {
		return engine.BuiltinConfigID, nil
	}

	// If not found, assume the displayName is already the config ID
	return displayName, nil
}
