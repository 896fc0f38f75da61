package puzzle

import (
	"fmt"
	"math"
	"strings"
)

// PairCount is the number of adjacent cell pairs on the board.
const PairCount = (Size - 1) * Size * 2

type CheckStatus int

const (
	Incomplete CheckStatus = iota
	Success
	Incorrect
)

func (s CheckStatus) String() string {
	switch s {
	case Success:
		return "success"
	case Incorrect:
		return "incorrect"
	default:
		return "incomplete"
	}
}

func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *CheckStatus) UnmarshalText(text []byte) error {
	for _, st := range []CheckStatus{Incomplete, Success, Incorrect} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("invalid check status %q", text)
}

type Mismatch struct {
	Horizontal bool `json:"horizontal"`
	// 1-indexed; for a horizontal pair Row is shared and Col is the left cell,
	// for a vertical pair Col is shared and Row is the upper cell.
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m Mismatch) String() string {
	if m.Horizontal {
		return fmt.Sprintf("Mismatch at row %d, between columns %d and %d", m.Row, m.Col, m.Col+1)
	}
	return fmt.Sprintf("Mismatch at column %d, between rows %d and %d", m.Col, m.Row, m.Row+1)
}

type CheckResult struct {
	Status     CheckStatus `json:"status"`
	Matching   int         `json:"matching"`
	Percentage int         `json:"percentage"`
	Mismatches []Mismatch  `json:"mismatches"`
}

func (c CheckResult) String() string {
	switch c.Status {
	case Incomplete:
		return "Incomplete: Fill all positions on the board"
	case Success:
		return "Success! All edges match correctly and form valid patterns (100% complete)"
	}
	lines := make([]string, 0, len(c.Mismatches)+1)
	lines = append(lines, fmt.Sprintf(
		"Incorrect: Found %d mismatches (%d%% patterns complete)",
		len(c.Mismatches), c.Percentage,
	))
	for _, m := range c.Mismatches {
		lines = append(lines, m.String())
	}
	return strings.Join(lines, "\n")
}

// Check scores every adjacent pair of a full layout, horizontal pairs first.
func Check(l Layout) *CheckResult {
	edges := make([]Edges, Cells)
	for pos := range Cells {
		e, ok := l.EdgesAt(pos)
		if !ok {
			return &CheckResult{Status: Incomplete}
		}
		edges[pos] = e
	}

	res := &CheckResult{Mismatches: []Mismatch{}}
	for row := range Size {
		for col := range Size - 1 {
			left, right := edges[row*Size+col], edges[row*Size+col+1]
			if Matches(left, Right, right) {
				res.Matching++
			} else {
				res.Mismatches = append(res.Mismatches, Mismatch{true, row + 1, col + 1})
			}
		}
	}
	for row := range Size - 1 {
		for col := range Size {
			top, bottom := edges[row*Size+col], edges[(row+1)*Size+col]
			if Matches(top, Bottom, bottom) {
				res.Matching++
			} else {
				res.Mismatches = append(res.Mismatches, Mismatch{false, row + 1, col + 1})
			}
		}
	}

	res.Percentage = int(math.Round(float64(res.Matching) / PairCount * 100))
	if len(res.Mismatches) == 0 {
		res.Status = Success
	} else {
		res.Status = Incorrect
	}
	return res
}
