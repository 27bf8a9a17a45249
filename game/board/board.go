package board

import "fmt"

// EntityID indexes the board's entity arena. Zero means an empty cell.
type EntityID int

const noEntity EntityID = 0

// Board owns the entity and plate grids of one loaded level
type Board struct {
	width    int
	height   int
	cells    [][]EntityID // [x][y]
	plates   [][]*Plate   // [x][y]
	entities []Entity     // index 0 is unused
	observer PlateObserver
}

// New creates an empty board. observer may be nil.
func New(observer PlateObserver) *Board {
	return &Board{observer: observer}
}

// Width returns the number of columns
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows
func (b *Board) Height() int {
	return b.height
}

// OnBoard reports whether p lies inside the grid
func (b *Board) OnBoard(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < b.width && p.Y < b.height
}

// Load replaces the board wholesale.
//
// Both grids are indexed [x][y] and must share the same non-zero
// dimensions. The previous generation of entities and plates is released
// first, so a failed Load leaves an empty board behind.
func (b *Board) Load(cells [][]Entity, plates [][]*Plate) error {
	b.Clear()

	width := len(cells)
	if width == 0 || len(cells[0]) == 0 {
		return ErrEmptyGrid
	}
	height := len(cells[0])

	if len(plates) != width {
		return fmt.Errorf("%w: %d entity columns, %d plate columns", ErrDimensionMismatch, width, len(plates))
	}
	for x := 0; x < width; x++ {
		if len(cells[x]) != height {
			return fmt.Errorf("%w: entity column %d has %d cells, want %d", ErrDimensionMismatch, x, len(cells[x]), height)
		}
		if len(plates[x]) != height {
			return fmt.Errorf("%w: plate column %d has %d cells, want %d", ErrDimensionMismatch, x, len(plates[x]), height)
		}
	}

	ids := make([][]EntityID, width)
	entities := []Entity{nil}
	seen := make(map[Entity]Position)
	for x := 0; x < width; x++ {
		ids[x] = make([]EntityID, height)
		for y := 0; y < height; y++ {
			e := cells[x][y]
			if e == nil {
				continue
			}
			pos := Position{X: x, Y: y}
			if first, dup := seen[e]; dup {
				return fmt.Errorf("%w: at %s and %s", ErrDuplicateEntity, first, pos)
			}
			seen[e] = pos
			ids[x][y] = EntityID(len(entities))
			entities = append(entities, e)
		}
	}

	grid := make([][]*Plate, width)
	for x := 0; x < width; x++ {
		grid[x] = make([]*Plate, height)
		copy(grid[x], plates[x])
	}

	b.width = width
	b.height = height
	b.cells = ids
	b.plates = grid
	b.entities = entities

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			pos := Position{X: x, Y: y}
			if id := b.cells[x][y]; id != noEntity {
				b.entities[id].SetPosition(pos, true)
			}
			if p := b.plates[x][y]; p != nil {
				p.SetPosition(pos)
			}
		}
	}

	b.updatePlates()
	return nil
}

// Clear releases every entity and plate and leaves a 0x0 board
func (b *Board) Clear() {
	for _, e := range b.entities {
		if r, ok := e.(Releaser); ok {
			r.Release()
		}
	}
	for _, column := range b.plates {
		for _, p := range column {
			if p != nil {
				p.release()
			}
		}
	}

	b.width = 0
	b.height = 0
	b.cells = nil
	b.plates = nil
	b.entities = nil
}

// LocateEntity scans the grid in row-major order (x, then y) and returns
// the cell holding e.
func (b *Board) LocateEntity(e Entity) (Position, error) {
	if e == nil {
		return NoPosition, ErrEntityNotFound
	}
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if id := b.cells[x][y]; id != noEntity && b.entities[id] == e {
				return Position{X: x, Y: y}, nil
			}
		}
	}
	return NoPosition, ErrEntityNotFound
}

// locate trusts the entity's cached position when the grid agrees with it,
// and falls back to a full scan otherwise.
func (b *Board) locate(e Entity) (Position, error) {
	if e == nil {
		return NoPosition, ErrEntityNotFound
	}
	if p := e.Position(); b.OnBoard(p) {
		if id := b.cells[p.X][p.Y]; id != noEntity && b.entities[id] == e {
			return p, nil
		}
	}
	return b.LocateEntity(e)
}

// EntityAt returns the occupant of p, or nil for empty and off-board cells
func (b *Board) EntityAt(p Position) Entity {
	if !b.OnBoard(p) {
		return nil
	}
	id := b.cells[p.X][p.Y]
	if id == noEntity {
		return nil
	}
	return b.entities[id]
}

// PlateAt returns the plate bound to p, or nil
func (b *Board) PlateAt(p Position) *Plate {
	if !b.OnBoard(p) {
		return nil
	}
	return b.plates[p.X][p.Y]
}

// Plates returns every plate in row-major order
func (b *Board) Plates() []*Plate {
	var plates []*Plate
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if p := b.plates[x][y]; p != nil {
				plates = append(plates, p)
			}
		}
	}
	return plates
}

// Entities returns every entity on the board in row-major order
func (b *Board) Entities() []Entity {
	entities := make([]Entity, 0, len(b.entities))
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if id := b.cells[x][y]; id != noEntity {
				entities = append(entities, b.entities[id])
			}
		}
	}
	return entities
}

// Move moves actor one cell along dir, pushing any chain of movable
// entities ahead of it.
//
// An error is returned only for programming errors: a non-unit direction or
// an actor that is not on the board. A blocked move is reported through
// Outcome.Moved and leaves the board unchanged.
func (b *Board) Move(actor Entity, dir Direction) (Outcome, error) {
	if !dir.IsUnit() {
		return Outcome{}, fmt.Errorf("%w: got (%d,%d)", ErrInvalidDirection, dir.X, dir.Y)
	}

	start, err := b.locate(actor)
	if err != nil {
		return Outcome{}, err
	}

	chain := b.resolveChain(start, dir)
	if chain.rejection != RejectNone {
		return Outcome{
			From:      start,
			To:        start,
			Rejection: chain.rejection,
			BlockedAt: chain.blockedAt,
		}, nil
	}

	pushed := make([]Push, 0, len(chain.positions)-1)
	for _, p := range chain.positions[1:] {
		pushed = append(pushed, Push{Entity: b.EntityAt(p), Direction: dir})
	}

	// Far end first so every destination is already vacated.
	for i := len(chain.positions) - 1; i >= 0; i-- {
		from := chain.positions[i]
		to := from.Add(dir)
		id := b.cells[from.X][from.Y]
		b.cells[to.X][to.Y] = id
		b.entities[id].SetPosition(to, false)
		b.cells[from.X][from.Y] = noEntity
	}

	b.updatePlates()

	return Outcome{
		Moved:  true,
		From:   start,
		To:     start.Add(dir),
		Pushed: pushed,
	}, nil
}

// updatePlates recomputes every plate from the grid and notifies the observer
func (b *Board) updatePlates() {
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if p := b.plates[x][y]; p != nil {
				p.IsPressed = b.cells[x][y] != noEntity
			}
		}
	}
	if b.observer != nil {
		b.observer.PlatesChanged()
	}
}
