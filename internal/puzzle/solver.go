package puzzle

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Placement puts a piece in a cell after Turns clockwise quarter turns from
// the orientation it had when the search started.
type Placement struct {
	PieceID int
	Turns   int
}

type Solution [Cells]Placement

type Stats struct {
	Nodes    int // orientations tested
	Duration time.Duration
}

// searchGrid is the partial layout built during a search.
type searchGrid struct {
	edges  [Cells]Edges
	filled int
}

// [searchGrid] implements [Layout]; cells are filled in position order.
func (g *searchGrid) EdgesAt(pos int) (Edges, bool) {
	if pos >= g.filled {
		return Edges{}, false
	}
	return g.edges[pos], true
}

type search struct {
	pieces       []Piece
	orientations [][4]Edges
	grid         searchGrid
	solution     Solution
	nodes        int
}

/*
Solve looks for an assignment of every piece to a cell, each in some
orientation, such that all touching edges agree. Cells are filled in order;
for each cell the unused pieces are tried in slice order, each in its current
orientation and then after one, two and three clockwise turns. The first
complete layout found is returned.

The pieces are not modified: orientations are precomputed per piece and
referred to by index during the search.
*/
func Solve(pieces []Piece) (*Solution, Stats, bool) {
	start := time.Now()

	s := &search{
		pieces:       pieces,
		orientations: make([][4]Edges, len(pieces)),
	}
	remaining := make([]int, len(pieces))
	for i, p := range pieces {
		s.orientations[i] = p.Edges.Orientations()
		remaining[i] = i
	}

	ok := len(pieces) == Cells && s.place(0, remaining)
	stats := Stats{Nodes: s.nodes, Duration: time.Since(start)}

	Log.WithFields(logrus.Fields{
		"op": "solve", "solved": ok, "nodes": stats.Nodes, "duration": stats.Duration,
	}).Debug("search finished")

	if !ok {
		return nil, stats, false
	}
	solution := s.solution
	return &solution, stats, true
}

func (s *search) place(pos int, remaining []int) bool {
	if pos == Cells {
		return true
	}

	for i, idx := range remaining {
		for turns, edges := range s.orientations[idx] {
			s.nodes++
			if !CanPlace(edges, pos, &s.grid) {
				continue
			}

			s.grid.edges[pos] = edges
			s.grid.filled = pos + 1
			s.solution[pos] = Placement{PieceID: s.pieces[idx].ID, Turns: turns}

			if s.place(pos+1, without(remaining, i)) {
				return true
			}
			s.grid.filled = pos
		}
	}

	return false
}

func without(s []int, i int) []int {
	out := make([]int, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
