package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Mode int

const (
	ModeAnalysis Mode = iota
	ModePlayerVsPlayer
	ModePlayerVsEngine
)

func (m Mode) String() string {
	switch m {
	case ModeAnalysis:
		return "analysis"
	case ModePlayerVsPlayer:
		return "pvp"
	case ModePlayerVsEngine:
		return "pve"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "analysis", "dev":
		return ModeAnalysis, nil
	case "pvp", "player_vs_player":
		return ModePlayerVsPlayer, nil
	case "pve", "player_vs_engine", "":
		return ModePlayerVsEngine, nil
	}
	return ModeAnalysis, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// PlayResult reports what a Play call changed.
type PlayResult struct {
	Applied        bool       `json:"applied"`
	Placement      *Placement `json:"placement,omitempty"`
	Reply          *Move      `json:"reply,omitempty"`
	ReplyPlacement *Placement `json:"reply_placement,omitempty"`
	Result         Result     `json:"result"`
}

// Game owns a board, its transposition table and the move history. It is not
// safe for concurrent use.
type Game struct {
	settings  Settings
	board     *Board
	tt        *TranspositionTable
	history   MoveHistory
	lastStats SearchStats
	moveMap   MoveMap
	salt      uint64
	log       *zap.Logger
	turnStart time.Time
}

type GameOption func(*Game)

func WithLogger(logger *zap.Logger) GameOption {
	return func(g *Game) {
		if logger != nil {
			g.log = logger
		}
	}
}

// WithSalt seeds the board's hash keys.
func WithSalt(salt uint64) GameOption {
	return func(g *Game) {
		g.salt = salt
	}
}

func NewGame(settings Settings, opts ...GameOption) (*Game, error) {
	defaults := DefaultSettings()
	if settings.BoardSize == 0 {
		settings.BoardSize = defaults.BoardSize
	}
	if settings.CaptureWinStones <= 0 {
		settings.CaptureWinStones = defaults.CaptureWinStones
	}
	if settings.HumanColor != CellBlack && settings.HumanColor != CellWhite {
		settings.HumanColor = defaults.HumanColor
	}
	settings.Heuristics = settings.Heuristics.Resolved()
	g := &Game{settings: settings, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	board, err := NewBoard(settings.BoardSize, WithHashSalt(g.salt), WithCaptureWinStones(settings.CaptureWinStones))
	if err != nil {
		return nil, err
	}
	g.board = board
	g.tt = NewTranspositionTable()
	g.log = g.log.Named("game")
	g.turnStart = time.Now()
	g.refreshMoveMap()
	return g, nil
}

func (g *Game) Settings() Settings {
	return g.settings
}

// Reset returns to the initial position and forgets every cached search.
func (g *Game) Reset() {
	g.board.Reset()
	g.tt.Clear()
	g.history.Clear()
	g.lastStats = SearchStats{}
	g.turnStart = time.Now()
	g.refreshMoveMap()
}

func (g *Game) Size() int {
	return g.board.Size()
}

func (g *Game) Get(x, y int) (Cell, error) {
	return g.board.Get(x, y)
}

func (g *Game) Result() Result {
	return g.board.Result()
}

func (g *Game) ToMove() Cell {
	return g.board.ToMove()
}

func (g *Game) Captures(color Cell) int {
	return g.board.Captures(color)
}

func (g *Game) Hash() uint64 {
	return g.board.Hash()
}

// Snapshot returns a copy of the board that the caller may modify.
func (g *Game) Snapshot() *Board {
	return g.board.Clone()
}

func (g *Game) TT() *TranspositionTable {
	return g.tt
}

func (g *Game) TTSize() int {
	return g.tt.Len()
}

func (g *Game) LastStats() SearchStats {
	return g.lastStats
}

func (g *Game) History() MoveHistory {
	return g.history
}

// MoveMap is the overlay for the side to move, as of the last change.
func (g *Game) MoveMap() MoveMap {
	return g.moveMap
}

// Set places a stone for color and records it as a human move.
func (g *Game) Set(x, y int, color Cell) (bool, error) {
	_, ok, err := g.apply(x, y, color, false, 0)
	return ok, err
}

// ApplyEngineMove plays a move produced by a search.
func (g *Game) ApplyEngineMove(m Move) (Placement, bool, error) {
	if !m.Valid {
		return Placement{}, false, nil
	}
	return g.apply(m.X, m.Y, m.Color, true, m.Depth)
}

func (g *Game) apply(x, y int, color Cell, isEngine bool, depth int) (Placement, bool, error) {
	placement, ok, err := g.board.Place(x, y, color)
	if err != nil || !ok {
		return placement, ok, err
	}
	elapsed := time.Since(g.turnStart)
	g.turnStart = time.Now()
	g.history.Push(HistoryEntry{
		Move:     placement.Point,
		Color:    color,
		Captured: placement.Captured,
		Elapsed:  elapsed,
		IsEngine: isEngine,
		Depth:    depth,
	})
	g.log.Debug("move played",
		zap.Stringer("color", color),
		zap.Int("x", x),
		zap.Int("y", y),
		zap.Bool("engine", isEngine),
		zap.Int("captured", len(placement.Captured)),
		zap.Int("total_captured", g.board.Captures(color)),
		zap.Duration("elapsed", elapsed),
	)
	if result := g.board.Result(); result != ResultInProgress {
		g.log.Info("game decided", zap.Stringer("result", result), zap.Int("moves", g.history.Size()))
	}
	g.refreshMoveMap()
	return placement, true, nil
}

// Play applies a move according to mode. In analysis mode color is written
// directly (CellEmpty clears the cell); the other modes pick the color
// themselves and ignore it.
func (g *Game) Play(ctx context.Context, mode Mode, x, y int, color Cell) (PlayResult, error) {
	res := PlayResult{}
	switch mode {
	case ModeAnalysis:
		if err := g.board.Setup(x, y, color); err != nil {
			return res, err
		}
		g.board.RefreshResult()
		g.refreshMoveMap()
		res.Applied = true
	case ModePlayerVsPlayer:
		placement, ok, err := g.apply(x, y, g.board.ToMove(), false, 0)
		if err != nil {
			return res, err
		}
		if ok {
			res.Applied = true
			res.Placement = &placement
		}
	case ModePlayerVsEngine:
		human := g.settings.HumanColor
		if g.board.ToMove() != human {
			return res, fmt.Errorf("%w: %v", ErrOutOfTurn, human)
		}
		placement, ok, err := g.apply(x, y, human, false, 0)
		if err != nil {
			return res, err
		}
		if !ok {
			break
		}
		res.Applied = true
		res.Placement = &placement
		if g.board.Result() != ResultInProgress {
			break
		}
		reply := g.PredictMoveContext(ctx, opponent(human), nil)
		res.Reply = &reply
		if reply.Valid {
			replyPlacement, _, err := g.ApplyEngineMove(reply)
			if err != nil {
				return res, err
			}
			res.ReplyPlacement = &replyPlacement
		}
	default:
		return res, fmt.Errorf("%w: %d", ErrUnknownMode, mode)
	}
	res.Result = g.board.Result()
	return res, nil
}

// StartGame lets the engine open when it plays Black against a human.
func (g *Game) StartGame(ctx context.Context, mode Mode) (PlayResult, error) {
	res := PlayResult{Result: g.board.Result()}
	if mode != ModePlayerVsEngine || g.settings.HumanColor != CellWhite || g.board.ToMove() != CellBlack {
		return res, nil
	}
	if g.board.EmptyCount() != g.board.Size()*g.board.Size() {
		return res, nil
	}
	reply := g.PredictMoveContext(ctx, CellBlack, nil)
	res.Reply = &reply
	if !reply.Valid {
		return res, nil
	}
	placement, ok, err := g.ApplyEngineMove(reply)
	if err != nil {
		return res, err
	}
	res.Applied = ok
	res.ReplyPlacement = &placement
	res.Result = g.board.Result()
	return res, nil
}

// HelpMove suggests a move for the side to move without playing it.
func (g *Game) HelpMove(ctx context.Context) Move {
	return g.PredictMoveContext(ctx, g.board.ToMove(), nil)
}

func (g *Game) PredictMove(color Cell) Move {
	return g.PredictMoveContext(context.Background(), color, nil)
}

// PredictMoveContext searches from the current position. The board is left
// untouched; the transposition table keeps what the search learned.
func (g *Game) PredictMoveContext(ctx context.Context, color Cell, onDepth func(DepthReport)) Move {
	opts := g.settings.SearchOptions()
	opts.OnDepth = onDepth
	move, stats := Search(ctx, g.board, g.tt, color, opts)
	g.RecordStats(stats)
	return move
}

// RecordStats keeps the statistics of a search run outside the game.
func (g *Game) RecordStats(stats SearchStats) {
	g.lastStats = stats
	logSearchStats(g.log.Named("ai"), stats, g.tt.Len())
}

func (g *Game) refreshMoveMap() {
	g.moveMap = g.board.MoveMap(g.board.ToMove(), g.settings.Heuristics)
}

func logSearchStats(log *zap.Logger, stats SearchStats, ttSize int) {
	nps := 0.0
	if stats.Elapsed > 0 {
		nps = float64(stats.Nodes) / stats.Elapsed.Seconds()
	}
	log.Debug("search finished",
		zap.Int("depth", stats.Depth),
		zap.Int64("nodes", stats.Nodes),
		zap.Int64("pruned", stats.Pruned),
		zap.Int64("cache_hits", stats.CacheHits),
		zap.Int64("stores", stats.Stores),
		zap.Int("tt_size", ttSize),
		zap.Float64("nps", nps),
		zap.Durations("depth_durations", stats.DepthDurations),
		zap.Duration("elapsed", stats.Elapsed),
	)
}
