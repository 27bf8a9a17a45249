package board

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEntityNotFound    = errors.New("entity not found on board")
	ErrInvalidDirection  = errors.New("direction must be a cardinal unit vector")
	ErrEmptyGrid         = errors.New("grid must have non-zero dimensions")
	ErrDimensionMismatch = errors.New("entity and plate grids differ in dimensions")
	ErrDuplicateEntity   = errors.New("entity placed in more than one cell")
)

// Position is a cell coordinate on the board
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPosition marks an entity or plate that is not on any board slot
var NoPosition = Position{X: -1, Y: -1}

// Add returns the position one step away along d
func (p Position) Add(d Direction) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction is a movement vector. Only the four cardinal unit vectors are
// valid arguments to Move.
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// Directions lists the cardinal directions in the order clients display them
var Directions = []Direction{Up, Down, Left, Right}

// IsUnit reports whether d has magnitude exactly one
func (d Direction) IsUnit() bool {
	return d.X*d.X+d.Y*d.Y == 1
}

// Name returns the lowercase name of a cardinal direction, or the vector
// notation for anything else.
func (d Direction) Name() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("(%d,%d)", d.X, d.Y)
}

func (d Direction) String() string {
	return d.Name()
}

// ParseDirection converts a direction name into its unit vector
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "up", "u", "north", "n":
		return Up, nil
	case "down", "d", "south", "s":
		return Down, nil
	case "left", "l", "west", "w":
		return Left, nil
	case "right", "r", "east", "e":
		return Right, nil
	}
	return Direction{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidDirection, name)
}

// Entity is any board occupant.
//
// Entities are compared by identity, so implementations should be pointer
// types. The board calls SetPosition with initial set to true when the entity
// is placed by Load, and with initial set to false on every relocation.
type Entity interface {
	CanBeMoved() bool
	Position() Position
	SetPosition(pos Position, initial bool)
}

// Releaser is implemented by entities holding resources that must be freed
// when the board generation they belong to is cleared.
type Releaser interface {
	Release()
}

// Plate is a pressure plate bound to one fixed cell
type Plate struct {
	Pos       Position `json:"pos"`
	IsPressed bool     `json:"is_pressed"`
}

// NewPlate returns an unplaced plate
func NewPlate() *Plate {
	return &Plate{Pos: NoPosition}
}

// SetPosition stamps the plate with its cell; called once by Load
func (p *Plate) SetPosition(pos Position) {
	p.Pos = pos
}

func (p *Plate) release() {
	p.Pos = NoPosition
	p.IsPressed = false
}

// PlateObserver is told that plate states may have changed
type PlateObserver interface {
	PlatesChanged()
}

// PlateObserverFunc adapts a function to PlateObserver
type PlateObserverFunc func()

// PlatesChanged calls f
func (f PlateObserverFunc) PlatesChanged() {
	f()
}

// Rejection explains why a move did not happen
type Rejection int

const (
	RejectNone Rejection = iota
	// RejectImmovable: the chain reached an entity that cannot be moved.
	RejectImmovable
	// RejectEdge: the chain ran off the board before an empty landing cell.
	RejectEdge
)

func (r Rejection) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectImmovable:
		return "immovable"
	case RejectEdge:
		return "edge"
	}
	return fmt.Sprintf("rejection(%d)", int(r))
}

// Push records one entity displaced as a side effect of a move
type Push struct {
	Entity    Entity
	Direction Direction
}

// Outcome is the result of Move.
//
// When Moved is false the board is unchanged, Pushed is nil and Rejection
// with BlockedAt describe the cell that stopped the chain.
type Outcome struct {
	Moved     bool
	From      Position
	To        Position
	Pushed    []Push
	Rejection Rejection
	BlockedAt Position
}
