package engine

import "github.com/wricardo/mcp-training/platepush/game/board"

// PieceKind tags what a board occupant is
type PieceKind string

const (
	Actor PieceKind = "actor"
	Crate PieceKind = "crate"
	Wall  PieceKind = "wall"
)

// Piece is the board.Entity used by levels. Walls are the only immovable kind.
type Piece struct {
	Kind   PieceKind
	pos    board.Position
	origin board.Position
	active bool
}

func newPiece(kind PieceKind) *Piece {
	return &Piece{Kind: kind, pos: board.NoPosition, origin: board.NoPosition}
}

// CanBeMoved reports whether the piece may be pushed
func (p *Piece) CanBeMoved() bool {
	return p.Kind != Wall
}

// Position returns the piece's current cell
func (p *Piece) Position() board.Position {
	return p.pos
}

// SetPosition is called by the board on placement and on every push
func (p *Piece) SetPosition(pos board.Position, initial bool) {
	p.pos = pos
	if initial {
		p.origin = pos
		p.active = true
	}
}

// Origin returns the cell the piece was placed on when the level loaded
func (p *Piece) Origin() board.Position {
	return p.origin
}

// Release detaches the piece once its board generation is cleared
func (p *Piece) Release() {
	p.pos = board.NoPosition
	p.active = false
}

// Active reports whether the piece belongs to the live board generation
func (p *Piece) Active() bool {
	return p.active
}
