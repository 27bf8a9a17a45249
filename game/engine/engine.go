package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/platepush/game/board"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	Restore(history, current []MoveHistoryEntry) error
	IsGameOver() bool
	IsSolved() bool
	GetPlayerPosition() Position

	// Movement operations
	Move(direction string) (*MoveReport, error)
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Plates
	GetTotalPlates() int
	GetPressedPlates() int
}

// GameEngine implements Engine on top of a push board. It is the board's
// plate observer.
type GameEngine struct {
	state    *GameState
	config   *GameConfig
	messages GameMessages
	board    *board.Board
	actor    *Piece

	// pressed holds the plate states seen by the last notification; nil
	// until the first one after a load.
	pressed map[Position]bool
	changes []PlateChange
}

// NewEngine creates a new game engine with the provided level
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{config: config}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in level
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("built-in level is invalid: %v", err))
	}
	return e
}

// load builds a fresh board generation from the config and resets the state
func (e *GameEngine) load() error {
	level, err := BuildLevel(e.config.Layout)
	if err != nil {
		return fmt.Errorf("failed to build level: %w", err)
	}
	return e.install(level)
}

// install swaps a built level in as the live board generation. On error the
// previous generation stays live.
func (e *GameEngine) install(level *Level) error {
	prevBoard, prevState, prevActor := e.board, e.state, e.actor
	prevMessages, prevPressed := e.messages, e.pressed

	e.board = board.New(e)
	e.messages = withDefaultMessages(e.config.Messages)
	e.state = &GameState{
		Message:      e.messages.Welcome,
		ConfigName:   e.config.Name,
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	e.actor = level.Actor
	e.pressed = nil

	if err := e.board.Load(level.Cells, level.Plates); err != nil {
		e.board, e.state, e.actor = prevBoard, prevState, prevActor
		e.messages, e.pressed = prevMessages, prevPressed
		return fmt.Errorf("failed to load board: %w", err)
	}
	if prevBoard != nil {
		prevBoard.Clear()
	}
	e.changes = nil
	e.refresh()
	return nil
}

// PlatesChanged re-derives plate progress after the board recomputed plates
func (e *GameEngine) PlatesChanged() {
	plates := e.board.Plates()
	pressed := make(map[Position]bool, len(plates))
	count := 0

	for _, p := range plates {
		pressed[p.Pos] = p.IsPressed
		if p.IsPressed {
			count++
		}
		if e.pressed != nil && e.pressed[p.Pos] != p.IsPressed {
			e.changes = append(e.changes, PlateChange{Position: p.Pos, Pressed: p.IsPressed})
		}
	}

	e.pressed = pressed
	e.state.PressedPlates = count
	e.state.TotalPlates = len(plates)
	e.state.Solved = len(plates) > 0 && count == len(plates)
	if e.state.Solved {
		e.state.GameOver = true
	}
}

// refresh rebuilds the rendered parts of the state from the board
func (e *GameEngine) refresh() {
	e.state.Grid = RenderGrid(e.board)
	e.state.Width = e.board.Width()
	e.state.Height = e.board.Height()
	e.state.PlayerPos = e.actor.Position()

	plates := e.board.Plates()
	e.state.Plates = make([]PlateState, 0, len(plates))
	for _, p := range plates {
		e.state.Plates = append(e.state.Plates, PlateState{X: p.Pos.X, Y: p.Pos.Y, Pressed: p.IsPressed})
	}
	e.state.CratesDisplaced = e.cratesDisplaced()
	e.state.LocalView3x3 = e.GetLocalView()
}

// cratesDisplaced counts live crates that no longer sit on their start cell
func (e *GameEngine) cratesDisplaced() int {
	n := 0
	for _, entity := range e.board.Entities() {
		piece, ok := entity.(*Piece)
		if ok && piece.Kind == Crate && piece.Active() && piece.Position() != piece.Origin() {
			n++
		}
	}
	return n
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Reset reloads the level from its config
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	if err := e.load(); err != nil {
		// The config was validated when it was set, so this cannot fail
		// unless the config was mutated in place.
		e.state.Message = fmt.Sprintf("Reset failed: %v", err)
	}

	// Restore cumulative history and totals; clear only the current segment
	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// Restore rebuilds the level and replays the successful moves of the current
// segment, then installs the given histories. It is how persisted sessions
// come back to life without a board serialization format.
func (e *GameEngine) Restore(history, current []MoveHistoryEntry) error {
	if err := e.load(); err != nil {
		return err
	}

	for _, entry := range current {
		if !entry.Success {
			continue
		}
		dir, err := board.ParseDirection(entry.Action)
		if err != nil {
			return fmt.Errorf("replay move %d: %w", entry.MoveNumber, err)
		}
		outcome, err := e.board.Move(e.actor, dir)
		if err != nil {
			return fmt.Errorf("replay move %d: %w", entry.MoveNumber, err)
		}
		if !outcome.Moved {
			return fmt.Errorf("replay move %d (%s) was blocked by %s at %s",
				entry.MoveNumber, entry.Action, outcome.Rejection, outcome.BlockedAt)
		}
		e.state.TotalPushes += len(outcome.Pushed)
	}
	e.changes = nil

	if history == nil {
		history = []MoveHistoryEntry{}
	}
	if current == nil {
		current = []MoveHistoryEntry{}
	}
	e.state.MoveHistory = history
	e.state.TotalMoves = len(history)
	e.state.CurrentMoves = current
	e.state.CurrentMovesCount = len(current)
	if e.state.Solved {
		e.state.Message = e.messages.Solved
	}

	e.refresh()
	return nil
}

// IsGameOver returns whether the game accepts no more moves
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsSolved returns whether every plate is pressed
func (e *GameEngine) IsSolved() bool {
	return e.state.Solved
}

// GetPlayerPosition returns the current actor position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.actor.Position()
}

// Move attempts to move the actor in the named direction.
//
// A blocked move is not an error: the report has Success false and the
// rejection reason. Errors are returned for unknown direction names.
func (e *GameEngine) Move(direction string) (*MoveReport, error) {
	dir, err := board.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	name := dir.Name()

	from := e.actor.Position()
	report := &MoveReport{Direction: name, From: from, To: from}

	if e.state.GameOver {
		report.Solved = e.state.Solved
		e.state.Message = e.messages.AlreadySolved
		return report, nil
	}

	e.changes = nil
	outcome, err := e.board.Move(e.actor, dir)
	if err != nil {
		return nil, fmt.Errorf("move %s: %w", name, err)
	}

	if !outcome.Moved {
		blocked := outcome.BlockedAt
		report.Rejection = outcome.Rejection.String()
		report.BlockedAt = &blocked
		if outcome.Rejection == board.RejectEdge {
			e.state.Message = e.messages.BlockedEdge
		} else {
			e.state.Message = e.messages.BlockedWall
		}
	} else {
		report.Success = true
		report.To = outcome.To
		for _, push := range outcome.Pushed {
			kind := Crate
			if piece, ok := push.Entity.(*Piece); ok {
				kind = piece.Kind
			}
			to := push.Entity.Position()
			report.Pushed = append(report.Pushed, PushedPiece{
				Kind: kind,
				From: Position{X: to.X - dir.X, Y: to.Y - dir.Y},
				To:   to,
			})
		}
		report.PlateChanges = e.changes
		e.state.TotalPushes += len(outcome.Pushed)
		e.state.Message = e.successMessage(name, len(outcome.Pushed))
	}

	report.Solved = e.state.Solved
	e.AddMoveToHistory(name, report.From, report.To, len(report.Pushed), report.Success)
	e.refresh()

	return report, nil
}

// successMessage picks the most significant message for a completed move
func (e *GameEngine) successMessage(direction string, pushed int) string {
	if e.state.Solved {
		return e.messages.Solved
	}

	pressedAny, releasedAny := false, false
	for _, c := range e.changes {
		if c.Pressed {
			pressedAny = true
		} else {
			releasedAny = true
		}
	}

	switch {
	case pressedAny:
		return fmt.Sprintf(e.messages.PlatePressed, e.state.PressedPlates, e.state.TotalPlates)
	case releasedAny:
		return e.messages.PlateReleased
	case pushed > 0:
		if formatVerbs(e.messages.Pushed) == "" {
			return e.messages.Pushed
		}
		return fmt.Sprintf(e.messages.Pushed, pushed, direction)
	default:
		if formatVerbs(e.messages.Moved) == "" {
			return e.messages.Moved
		}
		return fmt.Sprintf(e.messages.Moved, direction)
	}
}

// CanMove checks if the actor can move in the named direction
func (e *GameEngine) CanMove(direction string) bool {
	if e.state.GameOver {
		return false
	}
	dir, err := board.ParseDirection(direction)
	if err != nil {
		return false
	}
	ok, err := e.board.CanMove(e.actor, dir)
	return err == nil && ok
}

// GetPossibleMoves returns all directions the actor can currently move
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, dir := range board.Directions {
		if e.CanMove(dir.Name()) {
			possible = append(possible, dir.Name())
		}
	}
	return possible
}

// GetConfig returns the current level configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig switches to a new level and resets the game. On error the
// current level and its progress are kept.
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	prev := e.config
	e.config = config
	if err := e.load(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetTotalPlates returns the number of plates in the level
func (e *GameEngine) GetTotalPlates() int {
	return e.state.TotalPlates
}

// GetPressedPlates returns the number of plates currently pressed
func (e *GameEngine) GetPressedPlates() int {
	return e.state.PressedPlates
}

// CellAt returns the layout character at (x, y) and whether it is on the board
func (e *GameEngine) CellAt(x, y int) (byte, bool) {
	pos := Position{X: x, Y: y}
	if !e.board.OnBoard(pos) {
		return 0, false
	}
	return cellChar(e.board, pos), true
}
