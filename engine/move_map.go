package engine

import "sort"

// MoveMap is a per-cell desirability overlay for one side. Occupied cells
// score zero; it is always rebuilt from the board and never stored state.
type MoveMap struct {
	Size   int   `json:"size"`
	Side   Cell  `json:"side"`
	Scores []int `json:"scores"`
}

func (b *Board) MoveMap(side Cell, h Heuristics) MoveMap {
	h = h.Resolved()
	m := MoveMap{Size: b.size, Side: side, Scores: make([]int, len(b.cells))}
	var buf [9]Cell
	for idx, cell := range b.cells {
		if cell != CellEmpty {
			continue
		}
		m.Scores[idx] = b.scoreCell(idx%b.size, idx/b.size, side, &h, buf[:])
	}
	return m
}

func (m MoveMap) At(x, y int) int {
	return m.Scores[y*m.Size+x]
}

// Ranked lists the scored cells best first. Ties keep row-major order.
func (m MoveMap) Ranked() []Point {
	idx := make([]int, 0, len(m.Scores))
	for i, s := range m.Scores {
		if s > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return m.Scores[idx[a]] > m.Scores[idx[b]]
	})
	out := make([]Point, len(idx))
	for i, v := range idx {
		out[i] = Point{X: v % m.Size, Y: v / m.Size}
	}
	return out
}

// scoreCell rates an empty cell for side: its own lines through the cell,
// the opponent's lines it would block, captures it makes or prevents and a
// penalty when it walks into a capture.
func (b *Board) scoreCell(x, y int, side Cell, h *Heuristics, buf []Cell) int {
	opp := opponent(side)
	score := 0
	for _, axis := range axes {
		w := b.extractInto(x-4*axis.DX, y-4*axis.DY, axis, buf[:9])
		score += h.lineValue(runAt(w, 4, side))
		score += h.defense(h.lineValue(runAt(w, 4, opp)))
	}
	for _, d := range Directions {
		w := b.extractInto(x, y, d, buf[:4])
		if IsCaptureSetup(w, side) {
			score += h.captureValue(b.Captures(side), b.captureWinStones)
		}
		if IsCaptureSetup(w, opp) {
			score += h.defense(h.captureValue(b.Captures(opp), b.captureWinStones))
		}
		w = b.extractInto(x-d.DX, y-d.DY, d, buf[:4])
		if IsUnderCapture(w, side) {
			score -= h.UnderCapture
		}
	}
	return score
}
