package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/AloySobek/ft-gomoku/engine"
	"github.com/AloySobek/ft-gomoku/internal/config"
	"github.com/AloySobek/ft-gomoku/internal/logging"
	"github.com/AloySobek/ft-gomoku/internal/selfplay"
)

func main() {
	fs := pflag.NewFlagSet("gomoku-selfplay", pflag.ExitOnError)
	fs.String("config", "", "path to a config file")
	fs.Int("board-size", 0, "board size")
	fs.Int("depth", 0, "maximum search depth")
	fs.Duration("time-budget", 0, "time budget per move")
	fs.String("log-level", "", "log level")
	fs.Bool("log-development", false, "human readable development logs")
	openings := fs.Int("openings", 4, "number of seeded openings, each played with both colors")
	plies := fs.Int("opening-plies", 4, "stones placed before the engines take over")
	maxMoves := fs.Int("max-moves", 0, "declare a draw after this many moves (0: board area)")
	mutation := fs.Float64("mutation", 0.08, "relative weight mutation for the challenger (0: mirror match)")
	passRate := fs.Float64("pass-rate", 0.52, "score the challenger needs to be promoted")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	championPath := fs.String("champion", "", "JSON file with the champion weights (default: configured heuristics)")
	out := fs.String("out", "", "write the summary as JSON to this file")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	settings, err := cfg.Engine.Settings()
	if err != nil {
		log.Fatal("invalid engine settings", zap.Error(err))
	}
	champion := settings.Heuristics
	if *championPath != "" {
		if champion, err = readHeuristics(*championPath); err != nil {
			log.Fatal("read champion weights", zap.String("path", *championPath), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("self-play started",
		zap.Int("board_size", settings.BoardSize),
		zap.Int("depth", settings.Depth),
		zap.Int("openings", *openings),
		zap.Float64("mutation", *mutation),
		zap.Int64("seed", *seed),
	)
	summary, err := selfplay.Run(ctx, selfplay.Options{
		Settings:     settings,
		Openings:     *openings,
		OpeningPlies: *plies,
		MaxMoves:     *maxMoves,
		Mutation:     *mutation,
		PassRate:     *passRate,
		Seed:         *seed,
	}, champion, log.Named("selfplay"))
	if err != nil {
		log.Fatal("self-play aborted", zap.Error(err))
	}
	log.Info("self-play finished",
		zap.Int("games", summary.Games),
		zap.Int("black_wins", summary.BlackWins),
		zap.Int("white_wins", summary.WhiteWins),
		zap.Int("draws", summary.Draws),
		zap.Float64("challenger_points", summary.Points),
		zap.Float64("challenger_elo", summary.Challenger.Elo),
		zap.Bool("promoted", summary.Promoted),
	)
	if *out != "" {
		if err := writeJSONFile(*out, summary); err != nil {
			log.Fatal("write summary", zap.String("path", *out), zap.Error(err))
		}
	}
}

func readHeuristics(path string) (engine.Heuristics, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return engine.Heuristics{}, err
	}
	var h engine.Heuristics
	if err := json.Unmarshal(raw, &h); err != nil {
		return engine.Heuristics{}, err
	}
	return h.Resolved(), nil
}

// writeJSONFile replaces path atomically.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
