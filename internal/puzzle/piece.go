package puzzle

import (
	"fmt"
	"strings"
)

type Symbol uint8

const (
	Plus Symbol = iota
	Minus
	Times
	Divide
)

var Symbols = [...]Symbol{Plus, Minus, Times, Divide}

func (s Symbol) String() string {
	switch s {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Times:
		return "×"
	case Divide:
		return "÷"
	default:
		return "?"
	}
}

// [Symbol] implements [encoding.TextMarshaler]
func (s Symbol) MarshalText() ([]byte, error) {
	if int(s) >= len(Symbols) {
		return nil, fmt.Errorf("invalid symbol %d", s)
	}
	return []byte(s.String()), nil
}

func (s *Symbol) UnmarshalText(text []byte) error {
	for _, sym := range Symbols {
		if sym.String() == string(text) {
			*s = sym
			return nil
		}
	}
	return fmt.Errorf("invalid symbol %q", text)
}

type Side int

const (
	Top Side = iota
	Right
	Bottom
	Left
)

func (s Side) Opposite() Side {
	return (s + 2) % 4
}

// Edges are indexed by [Side], clockwise starting at the top.
type Edges [4]Symbol

func (e Edges) String() string {
	parts := make([]string, len(e))
	for i, s := range e {
		parts[i] = s.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

type Direction int

const (
	Clockwise Direction = iota
	Anticlockwise
)

func (d Direction) String() string {
	if d == Anticlockwise {
		return "anticlockwise"
	}
	return "clockwise"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clockwise", "cw":
		return Clockwise, nil
	case "anticlockwise", "counterclockwise", "ccw":
		return Anticlockwise, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

/*
Rotate returns the edges turned a quarter in direction d. A clockwise turn
moves the left edge to the top; an anticlockwise turn moves the right edge
to the top.
*/
func (e Edges) Rotate(d Direction) Edges {
	if d == Anticlockwise {
		return Edges{e[Right], e[Bottom], e[Left], e[Top]}
	}
	return Edges{e[Left], e[Top], e[Right], e[Bottom]}
}

// Orientations lists e followed by its three successive clockwise turns.
func (e Edges) Orientations() (o [4]Edges) {
	o[0] = e
	for i := 1; i < 4; i++ {
		o[i] = o[i-1].Rotate(Clockwise)
	}
	return
}

type Piece struct {
	ID       int   `json:"id"`
	Edges    Edges `json:"edges"`
	Rotation int   `json:"rotation"` // degrees, display only
}

func (p *Piece) Rotate(d Direction) {
	delta := 90
	if d == Anticlockwise {
		delta = -90
	}
	p.Rotation = (p.Rotation + delta + 360) % 360
	p.Edges = p.Edges.Rotate(d)
}

func (p Piece) String() string {
	return fmt.Sprintf("#%d%s@%d", p.ID, p.Edges, p.Rotation)
}
