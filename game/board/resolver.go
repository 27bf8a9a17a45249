package board

// chain is the result of walking a move direction from the actor's cell
type chain struct {
	positions []Position // actor first, then every pushed entity in order
	rejection Rejection
	blockedAt Position
}

// resolveChain walks from start along dir and collects the cells that must
// shift. It never mutates the board.
func (b *Board) resolveChain(start Position, dir Direction) chain {
	positions := []Position{start}

	for next := start.Add(dir); ; next = next.Add(dir) {
		if !b.OnBoard(next) {
			return chain{rejection: RejectEdge, blockedAt: next}
		}

		occupant := b.EntityAt(next)
		if occupant == nil {
			return chain{positions: positions}
		}
		if !occupant.CanBeMoved() {
			return chain{rejection: RejectImmovable, blockedAt: next}
		}

		positions = append(positions, next)
	}
}

// CanMove reports whether Move would succeed without performing it
func (b *Board) CanMove(actor Entity, dir Direction) (bool, error) {
	if !dir.IsUnit() {
		return false, ErrInvalidDirection
	}
	start, err := b.locate(actor)
	if err != nil {
		return false, err
	}
	return b.resolveChain(start, dir).rejection == RejectNone, nil
}
