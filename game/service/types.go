package service

import (
	"time"

	"github.com/wricardo/mcp-training/platepush/game/engine"
)

// Event types emitted by moves
const (
	EventReset         = "reset"
	EventMove          = "move"
	EventPush          = "push"
	EventPlatePressed  = "plate_pressed"
	EventPlateReleased = "plate_released"
	EventSolved        = "solved"
)

// Stop reason codes for bulk moves
const (
	StopBlockedWall      = "blocked_wall"
	StopBlockedEdge      = "blocked_edge"
	StopInvalidDirection = "invalid_direction"
	StopSolved           = "solved"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool               `json:"success"`
	GameState   *engine.GameState  `json:"game_state"`
	Message     string             `json:"message"`
	Events      []GameEvent        `json:"events,omitempty"`
	Report      *engine.MoveReport `json:"report,omitempty"`
	Step        *StepInfo          `json:"step,omitempty"`
	AttemptedTo *AttemptInfo       `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_wall|blocked_edge|invalid_direction|solved
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos    engine.Position `json:"start_pos"`
	EndPos      engine.Position `json:"end_pos"`
	PushesDelta int             `json:"pushes_delta"`
	PlatesDelta int             `json:"plates_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Failure diagnostics
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	Solved        bool     `json:"solved"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView3x3  []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx           int             `json:"idx"`
	Dir           string          `json:"dir"`
	From          engine.Position `json:"from"`
	To            engine.Position `json:"to"`
	Pushed        int             `json:"pushed,omitempty"`
	PressedPlates int             `json:"pressed_plates"`
	Success       bool            `json:"success"`
	Solved        bool            `json:"solved,omitempty"`
}

// AttemptInfo details the cell that stopped a blocked move
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	TileChar string `json:"tile_char,omitempty"`
	TileType string `json:"tile_type"`
	Reason   string `json:"reason"` // "immovable" or "edge"
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a level configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Plates      int    `json:"plates"`
	Crates      int    `json:"crates"`
}
