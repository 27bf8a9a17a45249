package main

import (
	"fmt"
	"io"

	"github.com/wricardo/mcp-training/platepush/game/engine"
)

// analyzeConfig prints quick heuristics about one level: its size, how many
// plates start pressed, and how far the actor is from the nearest free plate.
func analyzeConfig(w io.Writer, path string) error {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return err
	}
	state := eng.GetState()

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", state.Width, state.Height)
	fmt.Fprintf(w, "Actor: (%d, %d)\n", state.PlayerPos.X, state.PlayerPos.Y)
	fmt.Fprintf(w, "Crates: %d\n", engine.CountChar(state.Grid, engine.CrateChar)+engine.CountChar(state.Grid, engine.CrateOnPlate))
	fmt.Fprintf(w, "Plates: %d (%d pressed at start)\n", state.TotalPlates, state.PressedPlates)

	if pos, dist, ok := engine.FindNearestFreePlate(state); ok {
		fmt.Fprintf(w, "Nearest free plate: (%d, %d), %d steps away\n", pos.X, pos.Y, dist)
	}
	fmt.Fprintf(w, "Opening moves: %v\n", eng.GetPossibleMoves())

	open := len(walkable(config.Layout))
	fmt.Fprintf(w, "Open cells reachable from the actor: %d\n", open)

	stuck := 0
	for y, row := range config.Layout {
		for x := 0; x < len(row); x++ {
			if row[x] == engine.CrateChar && cornered(config.Layout, x, y) {
				stuck++
			}
		}
	}
	if free := state.TotalPlates - state.PressedPlates; stuck > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d crate(s) start in a corner; %d free plate(s) remain for the rest\n", stuck, free)
	} else {
		fmt.Fprintf(w, "✅ No crate starts in a corner\n")
	}

	return nil
}

// renderMoves plays moves from the level's start and prints the board after
// each one. A blocked move is reported and play continues.
func renderMoves(w io.Writer, path string, moves []string) error {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return err
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return err
	}

	printGrid(w, eng.GetState())
	for i, move := range moves {
		report, err := eng.Move(move)
		if err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}

		status := "ok"
		if !report.Success {
			status = "blocked (" + report.Rejection + ")"
		}
		fmt.Fprintf(w, "\n%d. %s: %s, pushed %d\n", i+1, move, status, len(report.Pushed))
		printGrid(w, eng.GetState())

		if report.Solved {
			fmt.Fprintln(w, "🎉 Solved")
			break
		}
	}
	return nil
}

func printGrid(w io.Writer, state *engine.GameState) {
	for _, row := range state.Grid {
		fmt.Fprintln(w, row)
	}
	fmt.Fprintf(w, "Plates: %d/%d, crates moved: %d\n", state.PressedPlates, state.TotalPlates, state.CratesDisplaced)
}
