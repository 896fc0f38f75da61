package puzzle

import (
	"encoding/json"
)

const (
	Size  = 3
	Cells = Size * Size

	NoPiece = -1
)

// Board holds a piece id per cell in row-major order, or [NoPiece].
type Board [Cells]int

func EmptyBoard() (b Board) {
	for i := range b {
		b[i] = NoPiece
	}
	return
}

func ValidPosition(pos int) bool {
	return 0 <= pos && pos < Cells
}

func (b Board) Occupied(pos int) bool {
	return b[pos] != NoPiece
}

func (b Board) Contains(id int) bool {
	for _, c := range b {
		if c == id {
			return true
		}
	}
	return false
}

func (b Board) Full() bool {
	for _, c := range b {
		if c == NoPiece {
			return false
		}
	}
	return true
}

// [Board] implements [json.Marshaler]; empty cells encode as null.
func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]*int, Cells)
	for i, c := range b {
		if c != NoPiece {
			id := c
			cells[i] = &id
		}
	}
	return json.Marshal(cells)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var cells []*int
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	*b = EmptyBoard()
	for i, c := range cells {
		if i < Cells && c != nil {
			b[i] = *c
		}
	}
	return nil
}

type Neighbor struct {
	Pos  int
	Side Side // side of the cell that faces the neighbor
}

// Neighbors lists the on-board cells adjacent to pos, top first, clockwise.
func Neighbors(pos int) []Neighbor {
	row, col := pos/Size, pos%Size
	ns := make([]Neighbor, 0, 4)
	if row > 0 {
		ns = append(ns, Neighbor{pos - Size, Top})
	}
	if col < Size-1 {
		ns = append(ns, Neighbor{pos + 1, Right})
	}
	if row < Size-1 {
		ns = append(ns, Neighbor{pos + Size, Bottom})
	}
	if col > 0 {
		ns = append(ns, Neighbor{pos - 1, Left})
	}
	return ns
}

// Matches reports whether edges placed against other on the given side agree.
// Touching edges must carry the same symbol.
func Matches(edges Edges, side Side, other Edges) bool {
	return other[side.Opposite()] == edges[side]
}

// Layout exposes the edges of whatever piece sits in a cell.
type Layout interface {
	EdgesAt(pos int) (Edges, bool)
}

// CanPlace checks edges at pos against every occupied neighbor in l.
func CanPlace(edges Edges, pos int, l Layout) bool {
	for _, n := range Neighbors(pos) {
		other, ok := l.EdgesAt(n.Pos)
		if !ok {
			continue
		}
		if !Matches(edges, n.Side, other) {
			return false
		}
	}
	return true
}
