package engine

// undoRecord restores one simulated placement, captured stones included.
type undoRecord struct {
	idx           int
	color         Cell
	capturedIdx   [16]int
	captured      int
	prevResult    Result
	prevToMove    Cell
	prevBlackCapt int
	prevWhiteCapt int
}

// place applies a stone on an empty in-bounds cell: capture rule first, then
// the win check for the mover.
func (b *Board) place(x, y int, color Cell) undoRecord {
	idx := b.index(x, y)
	rec := undoRecord{
		idx:           idx,
		color:         color,
		prevResult:    b.result,
		prevToMove:    b.toMove,
		prevBlackCapt: b.blackCaptures,
		prevWhiteCapt: b.whiteCaptures,
	}
	b.put(idx, color)
	b.SetToMove(opponent(color))
	rec.captured = b.applyCaptures(x, y, color, &rec.capturedIdx)
	if color == CellBlack {
		b.blackCaptures += rec.captured
	} else {
		b.whiteCaptures += rec.captured
	}
	switch {
	case b.CaptureWin(color) || b.fiveThrough(x, y, color):
		b.result = winFor(color)
	case b.EmptyCount() == 0:
		b.result = ResultDraw
	}
	return rec
}

func (b *Board) undo(rec undoRecord) {
	b.clear(rec.idx)
	opp := opponent(rec.color)
	for i := 0; i < rec.captured; i++ {
		b.put(rec.capturedIdx[i], opp)
	}
	b.blackCaptures = rec.prevBlackCapt
	b.whiteCaptures = rec.prevWhiteCapt
	b.result = rec.prevResult
	b.SetToMove(rec.prevToMove)
}

// applyCaptures removes every bracketed pair around (x, y) and returns the
// number of removed stones. Removals never trigger further captures.
func (b *Board) applyCaptures(x, y int, color Cell, out *[16]int) int {
	opp := opponent(color)
	n := 0
	for _, d := range Directions {
		x3, y3 := x+3*d.DX, y+3*d.DY
		if !b.InBounds(x3, y3) {
			continue
		}
		x1, y1 := x+d.DX, y+d.DY
		x2, y2 := x+2*d.DX, y+2*d.DY
		if b.At(x1, y1) == opp && b.At(x2, y2) == opp && b.At(x3, y3) == color {
			out[n] = b.index(x1, y1)
			out[n+1] = b.index(x2, y2)
			n += 2
		}
	}
	for i := 0; i < n; i++ {
		b.clear(out[i])
	}
	return n
}

// CaptureWin reports whether color reached the capture threshold.
func (b *Board) CaptureWin(color Cell) bool {
	return b.Captures(color) >= b.captureWinStones
}

// LocalFiveMatch only looks at the lines through (x, y).
func (b *Board) LocalFiveMatch(color Cell, x, y int) bool {
	if !b.InBounds(x, y) || b.At(x, y) != color {
		return false
	}
	return b.fiveThrough(x, y, color)
}

// GlobalFiveMatch scans every stone of color for a run of five or more.
func (b *Board) GlobalFiveMatch(color Cell) bool {
	set := b.set(color)
	if set == nil || set.Count() < 5 {
		return false
	}
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		x, y := int(i)%b.size, int(i)/b.size
		for _, axis := range axes {
			px, py := x-axis.DX, y-axis.DY
			if b.InBounds(px, py) && b.At(px, py) == color {
				continue
			}
			if 1+b.countDirection(x, y, axis.DX, axis.DY, color) >= 5 {
				return true
			}
		}
	}
	return false
}

func (b *Board) fiveThrough(x, y int, color Cell) bool {
	for _, axis := range axes {
		count := 1
		count += b.countDirection(x, y, axis.DX, axis.DY, color)
		count += b.countDirection(x, y, -axis.DX, -axis.DY, color)
		if count >= 5 {
			return true
		}
	}
	return false
}

func (b *Board) countDirection(x, y, dx, dy int, color Cell) int {
	count := 0
	x += dx
	y += dy
	for b.InBounds(x, y) && b.At(x, y) == color {
		count++
		x += dx
		y += dy
	}
	return count
}
