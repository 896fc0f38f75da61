package puzzle

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	msgStart           = "Select a piece and place it on the board"
	msgNoSuchPiece     = "No such piece"
	msgAlreadyPlaced   = "This piece is already placed on the board"
	msgSelected        = "Piece selected. Rotate or place it on the board."
	msgSelectFirst     = "Select a piece first"
	msgNoSuchPosition  = "No such position"
	msgOccupied        = "This position is already occupied"
	msgInvalidPlace    = "Invalid placement. Edges must match adjacent pieces."
	msgPlaced          = "Piece placed! Select another piece."
	msgSolved          = "Puzzle solved automatically!"
	msgNoSolutionFound = "Could not find a valid solution. Try resetting the puzzle."
)

/*
Game is the state of one puzzle. Rejected commands only change Message;
the board, pieces and selection are left as they were.

A Game is not safe for concurrent use.
*/
type Game struct {
	Pieces      []Piece
	Board       Board
	Selected    int /* piece id or NoPiece */
	Message     string
	CheckResult *CheckResult
	UsedSolver  bool

	rnd *rand.Rand
}

func NewGame(r *rand.Rand) *Game {
	g := &Game{rnd: r}
	g.ResetGame()
	return g
}

func DecodeGame(buf []byte, r *rand.Rand) (*Game, error) {
	var g Game
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&g); err != nil {
		return nil, fmt.Errorf("unable to decode game: %w", err)
	}
	if len(g.Pieces) != PieceCount {
		return nil, fmt.Errorf("decoded game has %d pieces", len(g.Pieces))
	}
	g.rnd = r
	return &g, nil
}

func (g *Game) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// [Game] implements [Layout]
func (g *Game) EdgesAt(pos int) (Edges, bool) {
	if !ValidPosition(pos) || !g.Board.Occupied(pos) {
		return Edges{}, false
	}
	p := g.piece(g.Board[pos])
	if p == nil {
		return Edges{}, false
	}
	return p.Edges, true
}

func (g *Game) piece(id int) *Piece {
	for i := range g.Pieces {
		if g.Pieces[i].ID == id {
			return &g.Pieces[i]
		}
	}
	return nil
}

func (g *Game) SelectPiece(id int) {
	if g.piece(id) == nil {
		g.Message = msgNoSuchPiece
		return
	}
	if g.Board.Contains(id) {
		g.Message = msgAlreadyPlaced
		return
	}
	g.Selected = id
	g.Message = msgSelected
}

func (g *Game) RotatePiece(d Direction) {
	if g.Selected == NoPiece {
		g.Message = msgSelectFirst
		return
	}
	g.piece(g.Selected).Rotate(d)
}

func (g *Game) PlacePiece(pos int) {
	if g.Selected == NoPiece {
		g.Message = msgSelectFirst
		return
	}
	if !ValidPosition(pos) {
		g.Message = msgNoSuchPosition
		return
	}
	if g.Board.Occupied(pos) {
		g.Message = msgOccupied
		return
	}
	if !CanPlace(g.piece(g.Selected).Edges, pos, g) {
		g.Message = msgInvalidPlace
		return
	}
	g.Board[pos] = g.Selected
	g.Selected = NoPiece
	g.Message = msgPlaced
}

func (g *Game) CheckSolution() {
	g.CheckResult = Check(g)
}

func (g *Game) Solved() bool {
	return g.CheckResult != nil && g.CheckResult.Status == Success
}

func (g *Game) ResetGame() {
	g.Pieces = NewPieces(g.rnd)
	g.Board = EmptyBoard()
	g.Selected = NoPiece
	g.Message = msgStart
	g.CheckResult = nil
	g.UsedSolver = false
}

func (g *Game) SolvePuzzle() {
	g.Board = EmptyBoard()
	g.Selected = NoPiece

	solution, stats, ok := Solve(g.Pieces)
	if !ok {
		g.Message = msgNoSolutionFound
		Log.WithFields(logrus.Fields{"nodes": stats.Nodes}).Debug("deal has no solution")
		return
	}

	for pos, pl := range solution {
		p := g.piece(pl.PieceID)
		for range pl.Turns {
			p.Rotate(Clockwise)
		}
		g.Board[pos] = pl.PieceID
	}
	g.UsedSolver = true
	g.Message = msgSolved
	g.CheckSolution()
}

// AvailablePieces returns the pieces not on the board, ordered by id.
func (g *Game) AvailablePieces() []Piece {
	available := make([]Piece, 0, len(g.Pieces))
	for id := range PieceCount {
		if g.Board.Contains(id) {
			continue
		}
		if p := g.piece(id); p != nil {
			available = append(available, *p)
		}
	}
	return available
}

type Snapshot struct {
	Pieces          []Piece      `json:"pieces"`
	Board           Board        `json:"board"`
	SelectedPieceID *int         `json:"selected_piece_id"`
	Message         string       `json:"message"`
	CheckResult     *CheckResult `json:"check_result"`
	UsedSolver      bool         `json:"used_solver"`
}

func (g *Game) State() Snapshot {
	s := Snapshot{
		Pieces:     append([]Piece(nil), g.Pieces...),
		Board:      g.Board,
		Message:    g.Message,
		UsedSolver: g.UsedSolver,
	}
	if g.Selected != NoPiece {
		id := g.Selected
		s.SelectedPieceID = &id
	}
	if g.CheckResult != nil {
		c := *g.CheckResult
		c.Mismatches = append([]Mismatch(nil), c.Mismatches...)
		s.CheckResult = &c
	}
	return s
}

func (g *Game) String() string {
	var b strings.Builder
	for row := range Size {
		for col := range Size {
			if e, ok := g.EdgesAt(row*Size + col); ok {
				fmt.Fprintf(&b, "#%d%s ", g.Board[row*Size+col], e)
			} else {
				fmt.Fprint(&b, "    .     ")
			}
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
