// Package config provides level configuration management for the plate push
// game.
//
// The config package handles:
//   - Loading level configurations from JSON files
//   - Configuration validation through the engine
//   - Default configuration management
//   - Configuration discovery, listing and "did you mean" suggestions
//
// Configuration Format:
//
// Levels are stored as JSON files in the configs directory. Each file defines
// a name, a description, the layout rows in sokoban notation and the
// messages shown to players. See package engine for the notation.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration
//	level, err := manager.LoadConfig("easy")
//	if errors.Is(err, config.ErrConfigNotFound) {
//		fmt.Println("did you mean:", manager.Suggest("easy"))
//	}
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// The default configuration is "classic" when present, otherwise the first
// valid file in the directory, otherwise the engine's built-in level.
package config
