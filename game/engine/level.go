package engine

import (
	"fmt"

	"github.com/wricardo/mcp-training/platepush/game/board"
)

// Level is one freshly built board generation
type Level struct {
	Cells  [][]board.Entity
	Plates [][]*board.Plate
	Actor  *Piece
	Width  int
	Height int
}

// LayoutSize returns the width of the widest row and the number of rows
func LayoutSize(layout []string) (int, int) {
	width := 0
	for _, row := range layout {
		if len(row) > width {
			width = len(row)
		}
	}
	return width, len(layout)
}

// BuildLevel turns a layout into fresh entity and plate grids indexed [x][y].
// Short rows are padded with floor.
func BuildLevel(layout []string) (*Level, error) {
	width, height := LayoutSize(layout)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("layout is empty")
	}

	level := &Level{
		Cells:  make([][]board.Entity, width),
		Plates: make([][]*board.Plate, width),
		Width:  width,
		Height: height,
	}
	for x := 0; x < width; x++ {
		level.Cells[x] = make([]board.Entity, height)
		level.Plates[x] = make([]*board.Plate, height)
	}

	for y, row := range layout {
		for x := 0; x < len(row); x++ {
			var occupant *Piece
			plate := false

			switch row[x] {
			case WallChar:
				occupant = newPiece(Wall)
			case ActorChar:
				occupant = newPiece(Actor)
			case ActorOnPlate:
				occupant = newPiece(Actor)
				plate = true
			case CrateChar:
				occupant = newPiece(Crate)
			case CrateOnPlate:
				occupant = newPiece(Crate)
				plate = true
			case PlateChar:
				plate = true
			case FloorChar, SpaceFloorChar, UnderscoreFloor:
			default:
				return nil, fmt.Errorf("invalid character '%c' at row %d, col %d", row[x], y+1, x+1)
			}

			if occupant != nil {
				if occupant.Kind == Actor {
					if level.Actor != nil {
						return nil, fmt.Errorf("second actor at row %d, col %d", y+1, x+1)
					}
					level.Actor = occupant
				}
				level.Cells[x][y] = occupant
			}
			if plate {
				level.Plates[x][y] = board.NewPlate()
			}
		}
	}

	if level.Actor == nil {
		return nil, fmt.Errorf("layout has no actor (%c or %c)", ActorChar, ActorOnPlate)
	}

	return level, nil
}

// cellChar renders one board cell in layout notation
func cellChar(b *board.Board, pos board.Position) byte {
	plate := b.PlateAt(pos) != nil
	piece, _ := b.EntityAt(pos).(*Piece)

	switch {
	case piece == nil && plate:
		return PlateChar
	case piece == nil:
		return FloorChar
	case piece.Kind == Wall:
		return WallChar
	case piece.Kind == Actor && plate:
		return ActorOnPlate
	case piece.Kind == Actor:
		return ActorChar
	case plate:
		return CrateOnPlate
	default:
		return CrateChar
	}
}

// RenderGrid renders the board as layout rows, top to bottom
func RenderGrid(b *board.Board) []string {
	rows := make([]string, b.Height())
	line := make([]byte, b.Width())
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			line[x] = cellChar(b, board.Position{X: x, Y: y})
		}
		rows[y] = string(line)
	}
	return rows
}

// DescribeChar names the cell type a layout character stands for
func DescribeChar(c byte) string {
	switch c {
	case WallChar:
		return "wall"
	case ActorChar:
		return "actor"
	case ActorOnPlate:
		return "actor_on_plate"
	case CrateChar:
		return "crate"
	case CrateOnPlate:
		return "crate_on_plate"
	case PlateChar:
		return "plate"
	case FloorChar, SpaceFloorChar, UnderscoreFloor:
		return "floor"
	}
	return "unknown"
}
