// Package board implements the push-movement grid at the heart of the Plate
// Push puzzle.
//
// A Board owns two parallel grids of the same dimensions: the entity grid,
// where every cell holds at most one occupant, and the plate grid, where
// pressure plates sit at fixed cells. Coordinates are (x, y) with x growing to
// the right and y growing downwards.
//
// Movement:
//
// An actor moves one cell in a cardinal direction. Every movable entity
// directly ahead of it, up to the first empty cell, is pushed along in the
// same direction. The move is rejected when the chain reaches an immovable
// entity or runs off the board before finding an empty landing cell. A
// rejected move leaves the board untouched; it is an ordinary outcome, not an
// error.
//
// Plates:
//
// After every Load and every successful Move, every plate's pressed state is
// recomputed from scratch and the PlateObserver passed to New is notified.
// The observer reads the plates itself; the notification has no payload.
//
// Usage:
//
//	b := board.New(board.PlateObserverFunc(func() {
//		log.Printf("plates changed")
//	}))
//	if err := b.Load(cells, plates); err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := b.Move(actor, board.Right)
//	if err != nil {
//		log.Fatal(err) // programming error: bad direction or unknown actor
//	}
//	if !outcome.Moved {
//		log.Printf("blocked (%s) at %s", outcome.Rejection, outcome.BlockedAt)
//	}
//
// A Board is not safe for concurrent use; callers serialize access.
package board
