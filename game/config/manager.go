package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/wricardo/mcp-training/platepush/game/engine"
	"github.com/wricardo/mcp-training/platepush/game/service"
)

var (
	// Shared with the service layer so callers there can match them
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is the level preferred as the default
const DefaultConfigID = "classic"

// maxSuggestions bounds the result of Suggest
const maxSuggestions = 3

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	m.defaultConfig = m.resolveDefault()
	return m, nil
}

// configID normalizes a name or filename into the cache key
func configID(name string) string {
	return strings.TrimSuffix(name, ".json")
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	id := configID(name)

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	var config *engine.GameConfig
	if id == engine.BuiltinConfigID {
		config = engine.DefaultGameConfig()
	} else {
		var err error
		if config, err = m.readConfig(id); err != nil {
			return nil, err
		}
	}

	// Cache the config
	m.configs[id] = config
	return config, nil
}

// readConfig reads and validates one config file without touching the cache
func (m *Manager) readConfig(id string) (*engine.GameConfig, error) {
	// IDs are plain file names; anything that walks out of the directory is unknown
	if id == "" || id != filepath.Base(id) {
		return nil, ErrConfigNotFound
	}

	configPath := filepath.Join(m.configDir, id+".json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, id, err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// configIDs returns the IDs of every JSON file in the config directory
func (m *Manager) configIDs() ([]string, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, configID(entry.Name()))
	}
	return ids, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	ids, err := m.configIDs()
	if err != nil {
		return nil, err
	}

	var configs []*service.ConfigInfo

	for _, id := range ids {
		// Try to load the config to get details
		config, err := m.LoadConfig(id)
		if err != nil {
			// Skip invalid configs
			continue
		}

		width, height := engine.LayoutSize(config.Layout)
		configs = append(configs, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id, // This is the identifier to use for session creation
			Name:        config.Name,
			Description: config.Description,
			Width:       width,
			Height:      height,
			Plates:      engine.CountChar(config.Layout, engine.PlateChar) + engine.CountChar(config.Layout, engine.ActorOnPlate) + engine.CountChar(config.Layout, engine.CrateOnPlate),
			Crates:      engine.CountChar(config.Layout, engine.CrateChar) + engine.CountChar(config.Layout, engine.CrateOnPlate),
		})
	}

	return configs, nil
}

// Suggest returns the config IDs closest to name by edit distance, nearest
// first. Only reasonably close IDs are returned.
func (m *Manager) Suggest(name string) []string {
	ids, err := m.configIDs()
	if err != nil {
		return nil
	}

	target := strings.ToLower(configID(name))
	threshold := len(target) / 3
	if threshold < 2 {
		threshold = 2
	}

	type candidate struct {
		id       string
		distance int
	}
	var candidates []candidate
	for _, id := range ids {
		d := levenshtein.ComputeDistance(target, strings.ToLower(id))
		if d <= threshold || (target != "" && strings.HasPrefix(strings.ToLower(id), target)) {
			candidates = append(candidates, candidate{id: id, distance: d})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].id < candidates[j].id
	})

	suggestions := make([]string, 0, maxSuggestions)
	for _, c := range candidates {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, c.id)
	}
	return suggestions
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops all cached configurations and re-resolves the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	def := m.resolveDefault()

	m.mu.Lock()
	m.defaultConfig = def
	m.mu.Unlock()
}

// resolveDefault picks classic, then the first valid config, then the
// built-in level. It must be called without m.mu held.
func (m *Manager) resolveDefault() *engine.GameConfig {
	if config, err := m.LoadConfig(DefaultConfigID); err == nil {
		return config
	}

	// Try to load the first available config
	configs, err := m.ListConfigs()
	if err == nil && len(configs) > 0 {
		if config, err := m.LoadConfig(configs[0].ConfigID); err == nil {
			return config
		}
	}

	// Load through the cache so sessions on it resolve by BuiltinConfigID
	config, _ := m.LoadConfig(engine.BuiltinConfigID)
	return config
}

// SaveConfig saves a configuration to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	// Validate config before saving
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || id != filepath.Base(id) {
		return fmt.Errorf("%w: config name %q is not a plain file name", ErrInvalidConfig, name)
	}
	if id == engine.BuiltinConfigID {
		return fmt.Errorf("%w: config name %q is reserved", ErrInvalidConfig, name)
	}

	configPath := filepath.Join(m.configDir, id+".json")

	// Marshal config to JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}
