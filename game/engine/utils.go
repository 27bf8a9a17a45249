package engine

import (
	"time"

	"github.com/wricardo/mcp-training/platepush/game/board"
)

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountChar counts occurrences of a layout character in rendered rows
func CountChar(grid []string, c byte) int {
	count := 0
	for _, row := range grid {
		for i := 0; i < len(row); i++ {
			if row[i] == c {
				count++
			}
		}
	}
	return count
}

// FindNearestFreePlate returns the unpressed plate closest to the actor
func FindNearestFreePlate(state *GameState) (Position, int, bool) {
	minDistance := -1
	var nearest Position
	found := false

	for _, p := range state.Plates {
		if p.Pressed {
			continue
		}
		pos := Position{X: p.X, Y: p.Y}
		distance := ManhattanDistance(state.PlayerPos, pos)
		if minDistance == -1 || distance < minDistance {
			minDistance = distance
			nearest = pos
			found = true
		}
	}

	return nearest, minDistance, found
}

// GetLocalView renders the 3x3 neighbourhood of the actor; cells off the
// board show as walls.
func (e *GameEngine) GetLocalView() []string {
	center := e.actor.Position()
	lines := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		row := make([]byte, 0, 3)
		for dx := -1; dx <= 1; dx++ {
			pos := board.Position{X: center.X + dx, Y: center.Y + dy}
			if !e.board.OnBoard(pos) {
				row = append(row, WallChar)
				continue
			}
			row = append(row, cellChar(e.board, pos))
		}
		lines = append(lines, string(row))
	}
	return lines
}

// AddMoveToHistory adds a move to the game's move history
func (e *GameEngine) AddMoveToHistory(action string, fromPos, toPos Position, pushed int, success bool) {
	gs := e.state
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: fromPos,
		ToPosition:   toPos,
		Pushed:       pushed,
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
