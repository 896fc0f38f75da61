package puzzle

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

const PieceCount = Cells

func randomEdges(r *rand.Rand) (e Edges) {
	for i := range e {
		e[i] = Symbols[r.IntN(len(Symbols))]
	}
	return
}

/*
NewPieces deals PieceCount pieces with pairwise distinct edge tuples. Only
the unrotated tuples are compared, so two pieces may still be rotations of
one another, and nothing guarantees the deal can be solved.
*/
func NewPieces(r *rand.Rand) []Piece {
	pieces := make([]Piece, 0, PieceCount)
	used := make(map[Edges]struct{}, PieceCount)
	redraws := 0

	for id := range PieceCount {
		edges := randomEdges(r)
		for {
			if _, ok := used[edges]; !ok {
				break
			}
			redraws++
			edges = randomEdges(r)
		}
		used[edges] = struct{}{}
		pieces = append(pieces, Piece{ID: id, Edges: edges})
	}

	Log.WithFields(logrus.Fields{
		"op": "deal", "redraws": redraws,
	}).Debug("dealt pieces")

	return pieces
}
