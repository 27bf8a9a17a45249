package main

import (
	"fmt"
	"path/filepath"

	"github.com/wricardo/mcp-training/platepush/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the level unplayable; Warnings point at likely design mistakes.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

type cell struct{ x, y int }

var directions = []cell{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// validateConfig loads a level through the engine's own validation, then
// checks that every plate is reachable and flags crates stuck in corners.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	config, err := engine.LoadGameConfig(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	reachable := walkable(config.Layout)
	plates, crates := 0, 0
	for y, row := range config.Layout {
		for x := 0; x < len(row); x++ {
			c := row[x]
			if isPlate(c) {
				plates++
				if !reachable[cell{x, y}] {
					result.Valid = false
					result.Errors = append(result.Errors, fmt.Sprintf("Plate at (%d,%d) is walled off from the actor", x, y))
				}
			}
			if c == engine.CrateChar || c == engine.CrateOnPlate {
				crates++
			}
			if c == engine.CrateChar && cornered(config.Layout, x, y) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Crate at (%d,%d) starts in a corner and can never move", x, y))
			}
		}
	}

	if result.Valid {
		width, height := engine.LayoutSize(config.Layout)
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Name: %s", config.Name),
			fmt.Sprintf("✓ Grid: %dx%d", width, height),
			fmt.Sprintf("✓ Plates: %d", plates),
			fmt.Sprintf("✓ Crates: %d", crates),
			fmt.Sprintf("✓ Connectivity: all %d plates reachable", plates),
		)
	}

	return result
}

func isPlate(c byte) bool {
	return c == engine.PlateChar || c == engine.CrateOnPlate || c == engine.ActorOnPlate
}

func isWall(layout []string, x, y int) bool {
	if y < 0 || y >= len(layout) || x < 0 {
		return true
	}
	// short rows are padded with floor
	width, _ := engine.LayoutSize(layout)
	if x >= width {
		return true
	}
	return x < len(layout[y]) && layout[y][x] == engine.WallChar
}

// walkable flood fills from the actor over every non-wall cell. Crates
// count as open since they can be pushed out of the way.
func walkable(layout []string) map[cell]bool {
	visited := make(map[cell]bool)
	var queue []cell
	for y, row := range layout {
		for x := 0; x < len(row); x++ {
			if row[x] == engine.ActorChar || row[x] == engine.ActorOnPlate {
				queue = append(queue, cell{x, y})
			}
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, d := range directions {
			next := cell{current.x + d.x, current.y + d.y}
			if !visited[next] && !isWall(layout, next.x, next.y) {
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// cornered reports a cell blocked on one vertical and one horizontal side
func cornered(layout []string, x, y int) bool {
	vertical := isWall(layout, x, y-1) || isWall(layout, x, y+1)
	horizontal := isWall(layout, x-1, y) || isWall(layout, x+1, y)
	return vertical && horizontal
}
