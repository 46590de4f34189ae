package engine

type Direction struct {
	DX int
	DY int
}

// Directions lists the 8 rays in the order captures and scans visit them.
var Directions = [8]Direction{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
}

var axes = [4]Direction{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// ExtractWindow copies length cells starting at (x, y) and stepping along dir.
// Positions off the board read as CellOutside.
func (b *Board) ExtractWindow(x, y int, dir Direction, length int) []Cell {
	return b.extractInto(x, y, dir, make([]Cell, length))
}

func (b *Board) extractInto(x, y int, dir Direction, buf []Cell) []Cell {
	for i := range buf {
		if b.InBounds(x, y) {
			buf[i] = b.At(x, y)
		} else {
			buf[i] = CellOutside
		}
		x += dir.DX
		y += dir.DY
	}
	return buf
}

// IsFive matches five or more consecutive stones of color.
func IsFive(w []Cell, color Cell) bool {
	run := 0
	for _, c := range w {
		if c == color {
			run++
			if run >= 5 {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}

func IsOpenTwo(w []Cell, color Cell) bool {
	return hasOpenRun(w, color, 2)
}

func IsOpenThree(w []Cell, color Cell) bool {
	return hasOpenRun(w, color, 3)
}

func IsOpenFour(w []Cell, color Cell) bool {
	return hasOpenRun(w, color, 4)
}

// hasOpenRun looks for a maximal run of exactly n stones with an empty cell
// inside the window on both sides.
func hasOpenRun(w []Cell, color Cell, n int) bool {
	if color != CellBlack && color != CellWhite {
		return false
	}
	for i := 0; i < len(w); {
		if w[i] != color {
			i++
			continue
		}
		j := i
		for j < len(w) && w[j] == color {
			j++
		}
		if j-i == n && i > 0 && j < len(w) && w[i-1] == CellEmpty && w[j] == CellEmpty {
			return true
		}
		i = j
	}
	return false
}

// IsCaptureSetup matches [Empty, opp, opp, color]: color playing the first
// cell captures the pair.
func IsCaptureSetup(w []Cell, color Cell) bool {
	if len(w) < 4 || (color != CellBlack && color != CellWhite) {
		return false
	}
	opp := opponent(color)
	return w[0] == CellEmpty && w[1] == opp && w[2] == opp && w[3] == color
}

// IsUnderCapture takes a window starting one step behind the placement cell
// w[1]. Placing color there next to w[2] leaves a pair with the opponent on
// one flank and an empty cell on the other.
func IsUnderCapture(w []Cell, color Cell) bool {
	if len(w) < 4 || (color != CellBlack && color != CellWhite) {
		return false
	}
	if w[1] != CellEmpty || w[2] != color {
		return false
	}
	opp := opponent(color)
	return (w[0] == opp && w[3] == CellEmpty) || (w[0] == CellEmpty && w[3] == opp)
}

// runAt measures the run of color through w[center], treating the center as
// color, and counts the empty cells flanking it.
func runAt(w []Cell, center int, color Cell) (length, openEnds int) {
	lo, hi := center, center
	for lo > 0 && w[lo-1] == color {
		lo--
	}
	for hi < len(w)-1 && w[hi+1] == color {
		hi++
	}
	if lo > 0 && w[lo-1] == CellEmpty {
		openEnds++
	}
	if hi < len(w)-1 && w[hi+1] == CellEmpty {
		openEnds++
	}
	return hi - lo + 1, openEnds
}
