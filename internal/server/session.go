package server

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AloySobek/ft-gomoku/engine"
	"github.com/AloySobek/ft-gomoku/internal/store"
)

var errEngineThinking = errors.New("engine is thinking")

// session serialises every change to one game. Engine replies run on a
// goroutine over a snapshot and are applied under mu when they come back.
type session struct {
	id      uuid.UUID
	mode    engine.Mode
	created time.Time
	hub     *Hub
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	game         *engine.Game
	thinking     bool
	searchSeq    uint64
	cancelSearch context.CancelFunc
	archived     bool
}

// saltFromID folds the session id into the board's hash salt.
func saltFromID(id uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(id[:8]) ^ binary.BigEndian.Uint64(id[8:])
}

func (sess *session) status() statusResponse {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.statusLocked()
}

func (sess *session) statusLocked() statusResponse {
	g := sess.game
	settings := g.Settings()
	result := g.Result()
	human := engine.CodeEmpty
	if sess.mode == engine.ModePlayerVsEngine {
		human = engine.IntFromTokenColor(settings.HumanColor)
	}
	return statusResponse{
		ID:               sess.id.String(),
		Mode:             sess.mode.String(),
		BoardSize:        g.Size(),
		Board:            g.ExportRows(),
		NextPlayer:       engine.IntFromTokenColor(g.ToMove()),
		Winner:           winnerFromResult(result),
		Status:           result.String(),
		BlackCaptures:    g.Captures(engine.CellBlack),
		WhiteCaptures:    g.Captures(engine.CellWhite),
		CaptureWinStones: settings.CaptureWinStones,
		HumanPlayer:      human,
		AiThinking:       sess.thinking,
		History:          historyToDTO(g.History()),
		Hash:             formatTTKey(g.Hash()),
		TTSize:           g.TTSize(),
	}
}

// stopSearchLocked abandons a running engine reply; its result is discarded.
func (sess *session) stopSearchLocked() {
	if sess.cancelSearch != nil {
		sess.cancelSearch()
		sess.cancelSearch = nil
	}
	sess.searchSeq++
	sess.thinking = false
}

func (s *Server) play(ctx context.Context, sess *session, req moveRequest) (bool, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.thinking {
		return false, errEngineThinking
	}
	g := sess.game
	applied := false
	switch sess.mode {
	case engine.ModePlayerVsEngine:
		human := g.Settings().HumanColor
		if g.ToMove() != human {
			return false, engine.ErrOutOfTurn
		}
		ok, err := g.Set(req.X, req.Y, human)
		if err != nil {
			return false, err
		}
		applied = ok
		if ok && g.Result() == engine.ResultInProgress {
			s.startEngineReplyLocked(sess)
		}
	default:
		color := engine.CellEmpty
		if sess.mode == engine.ModeAnalysis {
			c, err := engine.ParseColor(req.Color)
			if err != nil {
				return false, err
			}
			color = c
		}
		res, err := g.Play(ctx, sess.mode, req.X, req.Y, color)
		if err != nil {
			return false, err
		}
		applied = res.Applied
	}
	if applied {
		s.changedLocked(sess)
	}
	return applied, nil
}

// startEngineReplyLocked searches for the side to move without holding the
// session lock. The reply is dropped if the position changed meanwhile.
func (s *Server) startEngineReplyLocked(sess *session) {
	g := sess.game
	color := g.ToMove()
	board := g.Snapshot()
	tt := g.TT()
	opts := g.Settings().SearchOptions()
	opts.OnDepth = func(r engine.DepthReport) {
		sess.hub.PublishSearch(searchToPayload(r))
	}

	ctx, cancel := context.WithCancel(sess.ctx)
	sess.stopSearchLocked()
	sess.thinking = true
	sess.cancelSearch = cancel
	seq := sess.searchSeq

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		defer cancel()
		move, stats := engine.Search(ctx, board, tt, color, opts)

		sess.mu.Lock()
		defer sess.mu.Unlock()
		if seq != sess.searchSeq {
			return
		}
		sess.thinking = false
		sess.cancelSearch = nil
		g.RecordStats(stats)
		if !move.Valid || g.Hash() != board.Hash() {
			sess.log.Debug("engine reply discarded", zap.Bool("valid", move.Valid))
			sess.hub.PublishStatus(sess.statusLocked())
			return
		}
		if _, _, err := g.ApplyEngineMove(move); err != nil {
			sess.log.Warn("engine reply rejected", zap.Error(err))
		}
		s.changedLocked(sess)
	}()
}

// help runs a search for the side to move and returns it without playing.
func (s *Server) help(ctx context.Context, sess *session) (engine.Move, engine.SearchStats, int, error) {
	sess.mu.Lock()
	if sess.thinking {
		sess.mu.Unlock()
		return engine.Move{}, engine.SearchStats{}, 0, errEngineThinking
	}
	g := sess.game
	board := g.Snapshot()
	tt := g.TT()
	opts := g.Settings().SearchOptions()
	color := g.ToMove()
	sess.mu.Unlock()

	move, stats := engine.Search(ctx, board, tt, color, opts)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	g.RecordStats(stats)
	return move, stats, g.TTSize(), nil
}

func (s *Server) reset(ctx context.Context, sess *session) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.stopSearchLocked()
	sess.game.Reset()
	sess.archived = false
	if _, err := sess.game.StartGame(ctx, sess.mode); err != nil {
		return err
	}
	sess.hub.PublishReset(sess.statusLocked())
	return nil
}

func (s *Server) importPosition(sess *session, req rowsRequest) error {
	toMove, err := engine.TokenColorFromInt(req.ToMove)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.stopSearchLocked()
	if err := sess.game.ImportPosition(req.Rows, req.BlackCaptures, req.WhiteCaptures, toMove); err != nil {
		return err
	}
	sess.archived = false
	s.changedLocked(sess)
	return nil
}

func (s *Server) restore(sess *session, snap store.Snapshot) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.stopSearchLocked()
	if err := snap.Restore(sess.game); err != nil {
		return err
	}
	sess.archived = false
	s.changedLocked(sess)
	return nil
}

// changedLocked publishes the new state and archives a game the first time
// it is decided.
func (s *Server) changedLocked(sess *session) {
	sess.hub.PublishStatus(sess.statusLocked())
	if sess.archived || sess.game.Result() == engine.ResultInProgress {
		return
	}
	sess.archived = true
	rec := store.RecordOf(sess.id.String(), sess.mode, sess.game)
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.archive.Record(ctx, rec); err != nil {
			s.log.Warn("archive game failed", zap.String("game", rec.ID), zap.Error(err))
			return
		}
		s.log.Info("game archived", zap.String("game", rec.ID), zap.String("result", rec.Result), zap.Int("moves", len(rec.Moves)))
	}()
}
