package engine

import "github.com/wricardo/mcp-training/platepush/game/board"

// Position is a board coordinate; x grows right and y grows down
type Position = board.Position

// Layout characters
const (
	WallChar        = '#'
	ActorChar       = '@'
	ActorOnPlate    = '+'
	CrateChar       = '$'
	CrateOnPlate    = '*'
	PlateChar       = '.'
	FloorChar       = '-'
	SpaceFloorChar  = ' '
	UnderscoreFloor = '_'
)

const (
	// Validation constants
	MinGridSize  = 1
	MaxGridSize  = 50
	MaxBulkMoves = 50
	MaxNameLen   = 64

	WebSocketBufferSize = 256
)

// GameMessages holds the text shown to players after game events
type GameMessages struct {
	Welcome       string `json:"welcome"`
	Solved        string `json:"solved"`
	Moved         string `json:"moved,omitempty"`
	Pushed        string `json:"pushed,omitempty"`
	BlockedWall   string `json:"blocked_wall,omitempty"`
	BlockedEdge   string `json:"blocked_edge,omitempty"`
	PlatePressed  string `json:"plate_pressed,omitempty"` // %d pressed, %d total
	PlateReleased string `json:"plate_released,omitempty"`
	AlreadySolved string `json:"already_solved,omitempty"`
}

// GameConfig is a level definition loaded from JSON
type GameConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Layout      []string          `json:"layout"`
	Legend      map[string]string `json:"legend,omitempty"`
	Messages    GameMessages      `json:"messages"`
}

// PlateState is the client view of one pressure plate
type PlateState struct {
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Pressed bool `json:"pressed"`
}

// PlateChange records a plate flipping state during a move
type PlateChange struct {
	Position Position `json:"position"`
	Pressed  bool     `json:"pressed"`
}

// PushedPiece describes one entity displaced by the actor's move
type PushedPiece struct {
	Kind PieceKind `json:"kind"`
	From Position  `json:"from"`
	To   Position  `json:"to"`
}

// MoveReport describes what a single move did to the board
type MoveReport struct {
	Direction    string        `json:"direction"`
	Success      bool          `json:"success"`
	From         Position      `json:"from"`
	To           Position      `json:"to"`
	Pushed       []PushedPiece `json:"pushed,omitempty"`
	Rejection    string        `json:"rejection,omitempty"` // "immovable" or "edge"
	BlockedAt    *Position     `json:"blocked_at,omitempty"`
	PlateChanges []PlateChange `json:"plate_changes,omitempty"`
	Solved       bool          `json:"solved"`
}

// GameState represents the complete client-facing game state
type GameState struct {
	Grid          []string     `json:"grid"`
	Width         int          `json:"width"`
	Height        int          `json:"height"`
	PlayerPos     Position     `json:"player_pos"`
	Plates        []PlateState `json:"plates"`
	PressedPlates int          `json:"pressed_plates"`
	TotalPlates   int          `json:"total_plates"`
	TotalPushes   int          `json:"total_pushes"`
	Solved        bool         `json:"solved"`
	GameOver      bool         `json:"game_over"`
	Message       string       `json:"message"`
	ConfigName    string       `json:"config_name"`

	// CratesDisplaced counts crates pushed off the cell they started on
	CratesDisplaced int `json:"crates_displaced"`

	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	// Computed helper view (not required for core game logic)
	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string   `json:"action"`
	FromPosition Position `json:"from_position"`
	ToPosition   Position `json:"to_position"`
	Pushed       int      `json:"pushed"`
	Timestamp    int64    `json:"timestamp"`
	Success      bool     `json:"success"`
	MoveNumber   int      `json:"move_number"`
}
