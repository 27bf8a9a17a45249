// Package engine provides the level rules for the Plate Push puzzle.
//
// The engine package builds on the push board in game/board and adds:
//   - Level layouts in sokoban notation and their validation
//   - Building a board generation (walls, crates, the actor) from a layout
//   - Tracking pressure plates and detecting a solved level
//   - Move history and game state snapshots for clients
//
// Core Types:
//
// GameEngine owns one board.Board and acts as its plate observer: every time
// the board reports that plates may have changed, the engine re-reads the
// plates, records which ones were pressed or released, and checks whether all
// of them are down. GameState is the JSON view clients render, and
// GameConfig is a level loaded from a JSON file.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	report, err := gameEngine.Move("right")
//	state := gameEngine.GetState()
//
// Layout Notation:
//
//	#  wall (cannot be pushed)
//	@  actor             +  actor standing on a plate
//	$  crate             *  crate resting on a plate
//	.  plate
//	-  floor (space and _ are accepted too)
//
// A level is solved when every plate is pressed at once.
package engine
