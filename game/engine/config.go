package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// requiredLegend maps layout characters to the names they must carry when a
// config declares a legend.
var requiredLegend = map[string]string{
	"#": "wall",
	"@": "actor",
	"+": "actor_on_plate",
	"$": "crate",
	"*": "crate_on_plate",
	".": "plate",
	"-": "floor",
}

// ValidateGameConfig validates a level for correctness and basic solvability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if len(config.Name) > MaxNameLen {
		return fmt.Errorf("config validation: name must be at most %d characters, got %d", MaxNameLen, len(config.Name))
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	width, height := LayoutSize(config.Layout)
	if height < MinGridSize || height > MaxGridSize {
		return fmt.Errorf("config validation: layout must have between %d and %d rows, got %d", MinGridSize, MaxGridSize, height)
	}
	if width < MinGridSize || width > MaxGridSize {
		return fmt.Errorf("config validation: layout must have between %d and %d columns, got %d", MinGridSize, MaxGridSize, width)
	}

	actors, crates, plates, covered := 0, 0, 0, 0
	for i, row := range config.Layout {
		for j := 0; j < len(row); j++ {
			switch row[j] {
			case ActorChar:
				actors++
			case ActorOnPlate:
				actors++
				plates++
				covered++
			case CrateChar:
				crates++
			case CrateOnPlate:
				crates++
				plates++
				covered++
			case PlateChar:
				plates++
			case WallChar, FloorChar, SpaceFloorChar, UnderscoreFloor:
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", row[j], i+1, j+1)
			}
		}
	}

	if actors != 1 {
		return fmt.Errorf("config validation: layout must contain exactly one actor (@ or +), got %d", actors)
	}
	if plates == 0 {
		return fmt.Errorf("config validation: layout must contain at least one plate (., + or *)")
	}
	if crates+actors < plates {
		return fmt.Errorf("config validation: %d plates cannot all be pressed by %d crates and the actor", plates, crates)
	}
	if covered == plates {
		return fmt.Errorf("config validation: every plate is already pressed in the starting layout")
	}

	// Validate legend if one is given
	if len(config.Legend) > 0 {
		for key, expectedValue := range requiredLegend {
			if value, ok := config.Legend[key]; !ok || value != expectedValue {
				return fmt.Errorf("config validation: legend['%s'] must be '%s', got '%s'", key, expectedValue, value)
			}
		}
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Solved == "" {
		return fmt.Errorf("config validation: messages.solved is required")
	}
	if msg := config.Messages.PlatePressed; msg != "" && formatVerbs(msg) != "dd" {
		return fmt.Errorf("config validation: messages.plate_pressed must contain %%d twice (pressed, total); write %%%% for a literal percent")
	}
	if v := formatVerbs(config.Messages.Moved); v != "" && v != "s" {
		return fmt.Errorf("config validation: messages.moved may only contain %%s (direction); write %%%% for a literal percent")
	}
	if v := formatVerbs(config.Messages.Pushed); v != "" && v != "ds" {
		return fmt.Errorf("config validation: messages.pushed may only contain %%d then %%s (count, direction); write %%%% for a literal percent")
	}

	return nil
}

// formatVerbs returns the verb letters of a message template in order.
// "%%" is a literal percent; a trailing lone '%' yields '!'.
func formatVerbs(msg string) string {
	var verbs []byte
	for i := 0; i < len(msg); i++ {
		if msg[i] != '%' {
			continue
		}
		if i+1 == len(msg) {
			verbs = append(verbs, '!')
			break
		}
		i++
		if msg[i] != '%' {
			verbs = append(verbs, msg[i])
		}
	}
	return string(verbs)
}

// withDefaultMessages fills optional messages left empty by a config
func withDefaultMessages(m GameMessages) GameMessages {
	if m.Moved == "" {
		m.Moved = "Moved %s."
	}
	if m.Pushed == "" {
		m.Pushed = "Pushed %d crate(s) %s."
	}
	if m.BlockedWall == "" {
		m.BlockedWall = "Can't move: a wall is in the way."
	}
	if m.BlockedEdge == "" {
		m.BlockedEdge = "Can't move: nothing can go past the edge of the board."
	}
	if m.PlatePressed == "" {
		m.PlatePressed = "Plate pressed! %d/%d plates down."
	}
	if m.PlateReleased == "" {
		m.PlateReleased = "A plate was released."
	}
	if m.AlreadySolved == "" {
		m.AlreadySolved = "This level is already solved. Reset to play again."
	}
	return m
}

// LoadGameConfig loads and validates a level from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	// Validate the loaded configuration
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a level by name from dir, adding the .json
// extension when it is missing.
func LoadConfigByName(dir, configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join(dir, configName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	config, err := LoadGameConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

// BuiltinConfigID names DefaultGameConfig wherever a config ID is stored
const BuiltinConfigID = "builtin"

// DefaultGameConfig returns the built-in level used when no config directory
// provides one.
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "Warehouse",
		Description: "A small warehouse with two crates and two plates",
		Layout: []string{
			"#######",
			"#-----#",
			"#-$-$-#",
			"#--@--#",
			"#.---.#",
			"#######",
		},
		Messages: GameMessages{
			Welcome: "Welcome! Push the crates onto every plate.",
			Solved:  "All plates pressed! Level solved!",
		},
	}
}
