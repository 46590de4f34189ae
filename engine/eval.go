package engine

import "sync"

const threatScore = 900_000

type ThreatTotals struct {
	Win5    int
	Open4   int
	Closed4 int
	Broken4 int
	Open3   int
	Broken3 int
	Closed3 int
	Open2   int
	Broken2 int
}

type patternMatch struct {
	pattern string
	apply   func(*ThreatTotals)
}

var evalPatterns = [...]patternMatch{
	{pattern: "MMMMM", apply: func(t *ThreatTotals) { t.Win5++ }},
	{pattern: ".MMMM.", apply: func(t *ThreatTotals) { t.Open4++ }},
	{pattern: "OMMMM.", apply: func(t *ThreatTotals) { t.Closed4++ }},
	{pattern: ".MMMMO", apply: func(t *ThreatTotals) { t.Closed4++ }},
	{pattern: ".MMM.M.", apply: func(t *ThreatTotals) { t.Broken4++ }},
	{pattern: ".M.MMM.", apply: func(t *ThreatTotals) { t.Broken4++ }},
	{pattern: ".MM.MM.", apply: func(t *ThreatTotals) { t.Broken4++ }},
	{pattern: ".MMM.", apply: func(t *ThreatTotals) { t.Open3++ }},
	{pattern: "OMMM..", apply: func(t *ThreatTotals) { t.Closed3++ }},
	{pattern: "..MMMO", apply: func(t *ThreatTotals) { t.Closed3++ }},
	{pattern: ".MM.M.", apply: func(t *ThreatTotals) { t.Broken3++ }},
	{pattern: ".M.MM.", apply: func(t *ThreatTotals) { t.Broken3++ }},
	{pattern: ".MM.", apply: func(t *ThreatTotals) { t.Open2++ }},
	{pattern: ".M.M.", apply: func(t *ThreatTotals) { t.Broken2++ }},
}

type lineCache struct {
	mu    sync.Mutex
	lines map[int][][]int
}

var cachedLines = &lineCache{lines: make(map[int][][]int)}

func getLinesForSize(size int) [][]int {
	cachedLines.mu.Lock()
	defer cachedLines.mu.Unlock()
	if lines, ok := cachedLines.lines[size]; ok {
		return lines
	}
	lines := buildLines(size)
	cachedLines.lines[size] = lines
	return lines
}

// buildLines lists every row, column and diagonal long enough to hold a five.
func buildLines(size int) [][]int {
	lines := [][]int{}
	for y := 0; y < size; y++ {
		lines = append(lines, collectLine(size, 0, y, 1, 0))
	}
	for x := 0; x < size; x++ {
		lines = append(lines, collectLine(size, x, 0, 0, 1))
	}
	starts := func(dx int) [][2]int {
		out := [][2]int{}
		for x := 0; x < size; x++ {
			out = append(out, [2]int{x, 0})
		}
		edge := 0
		if dx < 0 {
			edge = size - 1
		}
		for y := 1; y < size; y++ {
			out = append(out, [2]int{edge, y})
		}
		return out
	}
	for _, dx := range []int{1, -1} {
		for _, s := range starts(dx) {
			if line := collectLine(size, s[0], s[1], dx, 1); len(line) >= 5 {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

func collectLine(size, x, y, dx, dy int) []int {
	line := []int{}
	for x >= 0 && y >= 0 && x < size && y < size {
		line = append(line, y*size+x)
		x += dx
		y += dy
	}
	return line
}

// Evaluate scores the position for side, assumed to be the side to move.
func (b *Board) Evaluate(side Cell, h *Heuristics) int {
	lines := getLinesForSize(b.size)
	opp := opponent(side)
	var tokensBufStack [64]byte
	tokensBuf := tokensBufStack[:0]

	var totalsMe ThreatTotals
	var totalsOpp ThreatTotals
	for _, line := range lines {
		tokens, hasStone := b.buildTokensInto(line, side, tokensBuf)
		if !hasStone {
			continue
		}
		accumulatePatterns(tokens, &totalsMe)
		tokens, _ = b.buildTokensInto(line, opp, tokensBuf)
		accumulatePatterns(tokens, &totalsOpp)
	}

	if totalsMe.Win5 > 0 {
		return 2 * threatScore
	}
	if totalsOpp.Win5 > 0 {
		return -2 * threatScore
	}
	if totalsMe.Open4+totalsMe.Closed4+totalsMe.Broken4 > 0 {
		return threatScore
	}
	if totalsOpp.Open4 > 0 || totalsOpp.Closed4+totalsOpp.Broken4 >= 2 {
		return -threatScore
	}

	score := weightedSum(totalsMe, h) - weightedSum(totalsOpp, h)
	score += forkBonus(totalsMe, h) - forkBonus(totalsOpp, h)
	score += b.captureBalance(side, h)
	return score
}

func (b *Board) captureBalance(side Cell, h *Heuristics) int {
	mine, theirs := b.Captures(side), b.Captures(opponent(side))
	score := (mine - theirs) * h.CaptureStone
	if mine+2 >= b.captureWinStones {
		score += h.CaptureNearWin
	}
	if theirs+2 >= b.captureWinStones {
		score -= h.CaptureNearWin
	}
	return score
}

// buildTokensInto renders a line as M/O/. for side, with walls on both ends.
// hasStone is false when the line holds no stone at all.
func (b *Board) buildTokensInto(line []int, side Cell, buf []byte) ([]byte, bool) {
	needed := len(line) + 2
	if cap(buf) < needed {
		buf = make([]byte, needed)
	} else {
		buf = buf[:needed]
	}
	hasStone := false
	buf[0] = 'O'
	for i, idx := range line {
		switch b.cells[idx] {
		case CellEmpty:
			buf[i+1] = '.'
		case side:
			buf[i+1] = 'M'
			hasStone = true
		default:
			buf[i+1] = 'O'
			hasStone = true
		}
	}
	buf[needed-1] = 'O'
	return buf, hasStone
}

func accumulatePatterns(tokens []byte, totals *ThreatTotals) {
	for i := 0; i < len(tokens); i++ {
		for _, entry := range evalPatterns {
			if matchAt(tokens, entry.pattern, i) {
				entry.apply(totals)
				i += len(entry.pattern) - 1
				break
			}
		}
	}
}

func matchAt(tokens []byte, pattern string, start int) bool {
	if start+len(pattern) > len(tokens) {
		return false
	}
	for i := 0; i < len(pattern); i++ {
		if tokens[start+i] != pattern[i] {
			return false
		}
	}
	return true
}

func weightedSum(t ThreatTotals, h *Heuristics) int {
	return t.Open4*h.Open4 +
		t.Closed4*h.Closed4 +
		t.Broken4*h.Broken4 +
		t.Open3*h.Open3 +
		t.Broken3*h.Broken3 +
		t.Closed3*h.Closed3 +
		t.Open2*h.Open2 +
		t.Broken2*h.Broken2
}

func forkBonus(t ThreatTotals, h *Heuristics) int {
	bonus := 0
	if t.Open3+t.Broken3 >= 2 {
		bonus += h.ForkOpen3
	}
	if t.Closed4+t.Broken4 >= 2 {
		bonus += h.ForkFourPlus
	}
	return bonus
}
