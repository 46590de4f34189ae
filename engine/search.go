package engine

import (
	"context"
	"sort"
	"time"
)

const (
	WinScore = 1_000_000_000
	scoreInf = WinScore + 1
	maxPly   = 64
)

type SearchStats struct {
	Nodes          int64           `json:"nodes"`
	Pruned         int64           `json:"pruned"`
	CacheHits      int64           `json:"cache_hits"`
	Stores         int64           `json:"stores"`
	Depth          int             `json:"depth"`
	DepthDurations []time.Duration `json:"depth_durations,omitempty"`
	Elapsed        time.Duration   `json:"elapsed"`
	Start          time.Time       `json:"-"`
}

// DepthReport is sent after every completed iteration.
type DepthReport struct {
	Depth   int           `json:"depth"`
	Best    Point         `json:"best"`
	Score   int           `json:"score"`
	Nodes   int64         `json:"nodes"`
	Elapsed time.Duration `json:"elapsed"`
}

type SearchOptions struct {
	Depth         int
	Radius        int
	RootBranching int
	Branching     int
	// TimeBudget stops deepening once spent; zero disables it.
	TimeBudget time.Duration
	Heuristics Heuristics
	OnDepth    func(DepthReport)
}

func (o SearchOptions) withDefaults() SearchOptions {
	defaults := DefaultSettings()
	if o.Depth <= 0 {
		o.Depth = defaults.Depth
	}
	if o.Depth > maxPly {
		o.Depth = maxPly
	}
	if o.Radius <= 0 {
		o.Radius = defaults.Radius
	}
	if o.Branching <= 0 {
		o.Branching = defaults.Branching
	}
	if o.RootBranching < o.Branching {
		o.RootBranching = o.Branching
	}
	o.Heuristics = o.Heuristics.Resolved()
	return o
}

type searcher struct {
	ctx       context.Context
	board     *Board
	tt        *TranspositionTable
	opts      SearchOptions
	heurHash  uint64
	stats     *SearchStats
	deadline  time.Time
	polls     int
	aborted   bool
	cancelled bool
	buf       [9]Cell
}

type scoredPoint struct {
	p     Point
	score int
}

// Search picks a move for color with iterative-deepening negamax. The board
// is cloned first and never modified. Cancelling ctx yields an invalid move;
// an exhausted time budget yields the best move of the last finished depth.
func Search(ctx context.Context, board *Board, tt *TranspositionTable, color Cell, opts SearchOptions) (Move, SearchStats) {
	opts = opts.withDefaults()
	stats := SearchStats{Start: time.Now()}
	move := Move{Color: color}
	finish := func() (Move, SearchStats) {
		stats.Elapsed = time.Since(stats.Start)
		move.Elapsed = stats.Elapsed
		return move, stats
	}
	if color != CellBlack && color != CellWhite {
		return finish()
	}
	if board.Result() != ResultInProgress || board.EmptyCount() == 0 || ctx.Err() != nil {
		return finish()
	}
	if tt == nil {
		tt = NewTranspositionTable()
	}
	tt.NextGeneration()
	work := board.Clone()
	work.SetToMove(color)
	s := &searcher{
		ctx:      ctx,
		board:    work,
		tt:       tt,
		opts:     opts,
		heurHash: opts.Heuristics.Hash(),
		stats:    &stats,
	}
	if opts.TimeBudget > 0 {
		s.deadline = stats.Start.Add(opts.TimeBudget)
	}
	if cells := work.neighborhood(opts.Radius); len(cells) == 1 {
		move = Move{Valid: true, X: cells[0].X, Y: cells[0].Y, Color: color, Depth: 1}
		stats.Depth = 1
		return finish()
	}

	for depth := 1; depth <= opts.Depth; depth++ {
		depthStart := time.Now()
		best, score, ok := s.searchRoot(depth)
		if s.cancelled || ctx.Err() != nil {
			move = Move{Color: color}
			return finish()
		}
		if !ok {
			break
		}
		move = Move{Valid: true, X: best.X, Y: best.Y, Color: color, Score: score, Depth: depth}
		stats.Depth = depth
		stats.DepthDurations = append(stats.DepthDurations, time.Since(depthStart))
		if opts.OnDepth != nil {
			opts.OnDepth(DepthReport{Depth: depth, Best: best, Score: score, Nodes: stats.Nodes, Elapsed: time.Since(stats.Start)})
		}
		if score >= WinScore-maxPly || score <= -(WinScore-maxPly) {
			break
		}
	}
	if !move.Valid {
		// The budget ran out inside the first iteration: fall back to ordering.
		if cands := s.candidates(color, Point{}, false, 1); len(cands) > 0 {
			move = Move{Valid: true, X: cands[0].X, Y: cands[0].Y, Color: color}
		}
	}
	return finish()
}

func (s *searcher) searchRoot(depth int) (Point, int, bool) {
	side := s.board.toMove
	key := ttKeyFor(s.board)
	var pv Point
	hasPV := false
	if entry, ok := s.tt.Probe(key, s.heurHash); ok {
		s.stats.CacheHits++
		if entry.HasBest && s.board.IsEmpty(entry.BestMove.X, entry.BestMove.Y) {
			if entry.Depth >= depth && entry.Flag == TTExact {
				return entry.BestMove, int(entry.Score), true
			}
			pv, hasPV = entry.BestMove, true
		}
	}
	s.stats.Nodes++
	cands := s.candidates(side, pv, hasPV, s.opts.RootBranching)
	if len(cands) == 0 {
		return Point{}, 0, false
	}
	alpha, beta := -scoreInf, scoreInf
	best, bestScore := cands[0], -scoreInf
	for _, c := range cands {
		score := s.child(c, depth, 0, alpha, beta)
		if s.aborted {
			return Point{}, 0, false
		}
		if score > bestScore {
			best, bestScore = c, score
		}
		if bestScore > alpha {
			alpha = bestScore
		}
	}
	if s.tt.Store(key, s.heurHash, depth, bestScore, TTExact, best, true) {
		s.stats.Stores++
	}
	return best, bestScore, true
}

// child plays c for the side to move, scores it from that side's point of
// view and takes it back.
func (s *searcher) child(c Point, depth, ply, alpha, beta int) int {
	side := s.board.toMove
	rec := s.board.place(c.X, c.Y, side)
	var score int
	switch s.board.result {
	case winFor(side):
		score = WinScore - ply
	case ResultDraw:
		score = 0
	default:
		score = -s.negamax(depth-1, ply+1, -beta, -alpha)
	}
	s.board.undo(rec)
	return score
}

func (s *searcher) negamax(depth, ply int, alpha, beta int) int {
	if s.poll() {
		return 0
	}
	side := s.board.toMove
	if depth <= 0 {
		return s.board.Evaluate(side, &s.opts.Heuristics)
	}
	key := ttKeyFor(s.board)
	alphaOrig := alpha
	var pv Point
	hasPV := false
	if entry, ok := s.tt.Probe(key, s.heurHash); ok {
		s.stats.CacheHits++
		if entry.HasBest && s.board.IsEmpty(entry.BestMove.X, entry.BestMove.Y) {
			pv, hasPV = entry.BestMove, true
		}
		if entry.Depth >= depth {
			score := scoreFromTT(int(entry.Score), ply)
			switch entry.Flag {
			case TTExact:
				return score
			case TTLower:
				if score > alpha {
					alpha = score
				}
			case TTUpper:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				s.stats.Pruned++
				return score
			}
		}
	}

	s.stats.Nodes++
	cands := s.candidates(side, pv, hasPV, s.opts.Branching)
	if len(cands) == 0 {
		return s.board.Evaluate(side, &s.opts.Heuristics)
	}
	best, bestMove := -scoreInf, cands[0]
	for _, c := range cands {
		score := s.child(c, depth, ply, alpha, beta)
		if s.aborted {
			return 0
		}
		if score > best {
			best, bestMove = score, c
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			s.stats.Pruned++
			break
		}
	}
	flag := TTExact
	if best <= alphaOrig {
		flag = TTUpper
	} else if best >= beta {
		flag = TTLower
	}
	if s.tt.Store(key, s.heurHash, depth, scoreToTT(best, ply), flag, bestMove, true) {
		s.stats.Stores++
	}
	return best
}

// scoreToTT turns a win or loss at ply into a distance from the stored node,
// so the entry stays valid when the position is reached at another ply.
func scoreToTT(score, ply int) int {
	switch {
	case score >= WinScore-maxPly:
		return score + ply
	case score <= -(WinScore - maxPly):
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	switch {
	case score >= WinScore-maxPly:
		return score - ply
	case score <= -(WinScore - maxPly):
		return score + ply
	}
	return score
}

// poll checks cancellation and the deadline every 256 nodes.
func (s *searcher) poll() bool {
	if s.aborted {
		return true
	}
	s.polls++
	if s.polls&255 != 0 {
		return false
	}
	if s.ctx.Err() != nil {
		s.cancelled = true
		s.aborted = true
		return true
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.aborted = true
		return true
	}
	return false
}

// candidates orders the cells near stones by MoveMap score for side, puts the
// transposition move first and keeps at most limit of them.
func (s *searcher) candidates(side Cell, pv Point, hasPV bool, limit int) []Point {
	b := s.board
	cells := b.neighborhood(s.opts.Radius)
	scored := make([]scoredPoint, len(cells))
	for i, p := range cells {
		scored[i] = scoredPoint{p: p, score: b.scoreCell(p.X, p.Y, side, &s.opts.Heuristics, s.buf[:])}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	out := make([]Point, 0, limit)
	if hasPV {
		out = append(out, pv)
	}
	for _, sp := range scored {
		if len(out) >= limit {
			break
		}
		if hasPV && sp.p.Equals(pv) {
			continue
		}
		out = append(out, sp.p)
	}
	return out
}

// neighborhood lists, row-major, the empty cells within Chebyshev distance
// radius of a stone. An empty board yields the center; a board whose stones
// are walled in yields every empty cell.
func (b *Board) neighborhood(radius int) []Point {
	occupied := b.black.Union(b.white)
	if occupied.None() {
		c := b.size / 2
		return []Point{{X: c, Y: c}}
	}
	mark := make([]bool, len(b.cells))
	for i, ok := occupied.NextSet(0); ok; i, ok = occupied.NextSet(i + 1) {
		x, y := int(i)%b.size, int(i)/b.size
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if b.IsEmpty(x+dx, y+dy) {
					mark[b.index(x+dx, y+dy)] = true
				}
			}
		}
	}
	out := make([]Point, 0, 64)
	for idx, m := range mark {
		if m {
			out = append(out, Point{X: idx % b.size, Y: idx / b.size})
		}
	}
	if len(out) == 0 {
		for idx, cell := range b.cells {
			if cell == CellEmpty {
				out = append(out, Point{X: idx % b.size, Y: idx / b.size})
			}
		}
	}
	return out
}
