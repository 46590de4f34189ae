package selfplay

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/AloySobek/ft-gomoku/engine"
)

// Options drives a match between two sets of weights.
type Options struct {
	Settings     engine.Settings
	Openings     int
	OpeningPlies int
	// MaxMoves ends a game as a draw; zero means the board size squared.
	MaxMoves int
	Mutation float64
	PassRate float64
	EloK     float64
	Seed     int64
}

type Contender struct {
	ID         string            `json:"id"`
	Heuristics engine.Heuristics `json:"heuristics"`
	Elo        float64           `json:"elo"`
}

type Outcome struct {
	Result        engine.Result
	Moves         int
	BlackCaptures int
	WhiteCaptures int
	Elapsed       time.Duration
}

type Summary struct {
	Champion   Contender `json:"champion"`
	Challenger Contender `json:"challenger"`
	Games      int       `json:"games"`
	BlackWins  int       `json:"black_wins"`
	WhiteWins  int       `json:"white_wins"`
	Draws      int       `json:"draws"`
	Points     float64   `json:"challenger_points"`
	Promoted   bool      `json:"promoted"`
}

// BuildOpeningSuite returns count openings of plies distinct cells around the
// center. The same seed always yields the same suite.
func BuildOpeningSuite(boardSize, plies, count int, seed int64) [][]engine.Point {
	rng := rand.New(rand.NewSource(int64(boardSize*97+plies*13) + seed))
	center := boardSize / 2
	offsets := []engine.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1},
		{X: 1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: 2, Y: 0}, {X: 0, Y: 2},
	}
	if plies > len(offsets) {
		plies = len(offsets)
	}
	suite := make([][]engine.Point, 0, count)
	for i := 0; i < count; i++ {
		used := map[engine.Point]bool{}
		opening := make([]engine.Point, 0, plies)
		for len(opening) < plies {
			off := offsets[rng.Intn(len(offsets))]
			p := engine.Point{X: center + off.X, Y: center + off.Y}
			if p.X < 0 || p.Y < 0 || p.X >= boardSize || p.Y >= boardSize || used[p] {
				continue
			}
			used[p] = true
			opening = append(opening, p)
		}
		suite = append(suite, opening)
	}
	return suite
}

// PlayGame plays the opening alternately from Black, then lets each side
// search with its own weights until the game ends.
func PlayGame(ctx context.Context, settings engine.Settings, black, white engine.Heuristics, opening []engine.Point, maxMoves int) (Outcome, error) {
	start := time.Now()
	board, err := engine.NewBoard(settings.BoardSize, engine.WithCaptureWinStones(settings.CaptureWinStones))
	if err != nil {
		return Outcome{}, err
	}
	if maxMoves <= 0 {
		maxMoves = settings.BoardSize * settings.BoardSize
	}
	for _, p := range opening {
		if _, err := board.Set(p.X, p.Y, board.ToMove()); err != nil {
			return Outcome{}, fmt.Errorf("opening %v: %w", p, err)
		}
	}

	tt := engine.NewTranspositionTable()
	weights := map[engine.Cell]engine.Heuristics{engine.CellBlack: black, engine.CellWhite: white}
	moves := len(opening)
	for board.Result() == engine.ResultInProgress && moves < maxMoves {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		color := board.ToMove()
		opts := settings.SearchOptions()
		opts.Heuristics = weights[color]
		move, _ := engine.Search(ctx, board, tt, color, opts)
		if !move.Valid {
			if err := ctx.Err(); err != nil {
				return Outcome{}, err
			}
			break
		}
		if _, err := board.Set(move.X, move.Y, color); err != nil {
			return Outcome{}, err
		}
		moves++
	}
	result := board.Result()
	if result == engine.ResultInProgress {
		result = engine.ResultDraw
	}
	return Outcome{
		Result:        result,
		Moves:         moves,
		BlackCaptures: board.BlackCaptures(),
		WhiteCaptures: board.WhiteCaptures(),
		Elapsed:       time.Since(start),
	}, nil
}

// MutateHeuristics scales every weight by a random factor in
// [1-strength, 1+strength].
func MutateHeuristics(rng *rand.Rand, base engine.Heuristics, strength float64) engine.Heuristics {
	out := base.Resolved()
	mutate := func(v int) int {
		factor := 1 + (rng.Float64()*2-1)*strength
		next := math.Round(float64(v) * factor)
		if next < 1 {
			return v
		}
		return int(next)
	}
	out.Open4 = mutate(out.Open4)
	out.Closed4 = mutate(out.Closed4)
	out.Broken4 = mutate(out.Broken4)
	out.Open3 = mutate(out.Open3)
	out.Broken3 = mutate(out.Broken3)
	out.Closed3 = mutate(out.Closed3)
	out.Open2 = mutate(out.Open2)
	out.Broken2 = mutate(out.Broken2)
	out.Closed2 = mutate(out.Closed2)
	out.ForkOpen3 = mutate(out.ForkOpen3)
	out.ForkFourPlus = mutate(out.ForkFourPlus)
	out.CaptureNow = mutate(out.CaptureNow)
	out.CaptureNearWin = mutate(out.CaptureNearWin)
	out.CaptureStone = mutate(out.CaptureStone)
	out.UnderCapture = mutate(out.UnderCapture)
	return out
}

func UpdateElo(a, b *Contender, resultForA, k float64) {
	expA := 1.0 / (1.0 + math.Pow(10, (b.Elo-a.Elo)/400.0))
	expB := 1.0 / (1.0 + math.Pow(10, (a.Elo-b.Elo)/400.0))
	a.Elo += k * (resultForA - expA)
	b.Elo += k * ((1.0 - resultForA) - expB)
}

// Run pits a mutated challenger against champion on every opening, once
// with each color, and promotes it when it scores at least PassRate.
func Run(ctx context.Context, opts Options, champion engine.Heuristics, log *zap.Logger) (Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.EloK <= 0 {
		opts.EloK = 20
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	champ := Contender{ID: "champion", Heuristics: champion.Resolved(), Elo: 1500}
	challenger := Contender{ID: "challenger", Heuristics: champ.Heuristics, Elo: 1500}
	if opts.Mutation > 0 {
		challenger.Heuristics = MutateHeuristics(rng, champ.Heuristics, opts.Mutation)
	}
	summary := Summary{}
	openings := BuildOpeningSuite(opts.Settings.BoardSize, opts.OpeningPlies, opts.Openings, opts.Seed)
	for i, opening := range openings {
		for _, challengerBlack := range []bool{true, false} {
			black, white := champ.Heuristics, challenger.Heuristics
			if challengerBlack {
				black, white = challenger.Heuristics, champ.Heuristics
			}
			outcome, err := PlayGame(ctx, opts.Settings, black, white, opening, opts.MaxMoves)
			if err != nil {
				return summary, err
			}
			summary.Games++
			points := 0.5
			switch outcome.Result {
			case engine.ResultBlackWin:
				summary.BlackWins++
				points = boolPoints(challengerBlack)
			case engine.ResultWhiteWin:
				summary.WhiteWins++
				points = boolPoints(!challengerBlack)
			default:
				summary.Draws++
			}
			summary.Points += points
			UpdateElo(&challenger, &champ, points, opts.EloK)
			log.Info("game finished",
				zap.Int("opening", i),
				zap.Bool("challenger_black", challengerBlack),
				zap.Stringer("result", outcome.Result),
				zap.Int("moves", outcome.Moves),
				zap.Int("black_captures", outcome.BlackCaptures),
				zap.Int("white_captures", outcome.WhiteCaptures),
				zap.Duration("elapsed", outcome.Elapsed),
				zap.Float64("challenger_elo", challenger.Elo),
			)
		}
	}
	summary.Champion = champ
	summary.Challenger = challenger
	if summary.Games > 0 && summary.Points/float64(summary.Games) >= opts.PassRate && opts.Mutation > 0 {
		summary.Promoted = true
	}
	return summary, nil
}

func boolPoints(won bool) float64 {
	if won {
		return 1
	}
	return 0
}
