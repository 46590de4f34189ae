package engine

import (
	"context"
	"errors"
	"testing"
)

func newTestGame(t *testing.T, mutate func(*Settings)) *Game {
	t.Helper()
	settings := DefaultSettings()
	settings.BoardSize = 9
	settings.Depth = 2
	settings.RootBranching = 10
	settings.Branching = 6
	if mutate != nil {
		mutate(&settings)
	}
	g, err := NewGame(settings, WithSalt(3))
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func TestPlayerVsPlayerAlternatesColors(t *testing.T) {
	g := newTestGame(t, nil)
	ctx := context.Background()
	res, err := g.Play(ctx, ModePlayerVsPlayer, 4, 4, CellEmpty)
	if err != nil || !res.Applied {
		t.Fatalf("expected first move applied, got %+v err=%v", res, err)
	}
	g.Play(ctx, ModePlayerVsPlayer, 5, 5, CellEmpty)
	if c, _ := g.Get(4, 4); c != CellBlack {
		t.Fatalf("first move should be black, got %v", c)
	}
	if c, _ := g.Get(5, 5); c != CellWhite {
		t.Fatalf("second move should be white, got %v", c)
	}
	res, err = g.Play(ctx, ModePlayerVsPlayer, 5, 5, CellEmpty)
	if err != nil || res.Applied {
		t.Fatalf("occupied cell must not apply, got %+v err=%v", res, err)
	}
	if g.History().Size() != 2 {
		t.Fatalf("expected two history entries, got %d", g.History().Size())
	}
}

func TestPlayerVsEngineReplies(t *testing.T) {
	g := newTestGame(t, nil)
	res, err := g.Play(context.Background(), ModePlayerVsEngine, 4, 4, CellEmpty)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Reply == nil || !res.Reply.Valid || res.ReplyPlacement == nil {
		t.Fatalf("expected an engine reply, got %+v", res)
	}
	if c, _ := g.Get(res.Reply.X, res.Reply.Y); c != CellWhite {
		t.Fatalf("engine reply not on the board")
	}
	if g.ToMove() != CellBlack {
		t.Fatalf("human should be to move again")
	}
	entries := g.History().All()
	if len(entries) != 2 || entries[0].IsEngine || !entries[1].IsEngine {
		t.Fatalf("unexpected history %+v", entries)
	}
	if g.LastStats().Depth == 0 {
		t.Fatalf("expected search stats to be recorded")
	}
}

func TestPlayerVsEngineRejectsWrongTurn(t *testing.T) {
	g := newTestGame(t, func(s *Settings) { s.HumanColor = CellWhite })
	if _, err := g.Play(context.Background(), ModePlayerVsEngine, 0, 0, CellEmpty); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
}

func TestStartGameEngineOpensAsBlack(t *testing.T) {
	g := newTestGame(t, func(s *Settings) { s.HumanColor = CellWhite })
	res, err := g.StartGame(context.Background(), ModePlayerVsEngine)
	if err != nil || !res.Applied {
		t.Fatalf("expected engine opening, got %+v err=%v", res, err)
	}
	if c, _ := g.Get(4, 4); c != CellBlack {
		t.Fatalf("expected engine at the center")
	}
	if _, err := g.Play(context.Background(), ModePlayerVsEngine, 3, 3, CellEmpty); err != nil {
		t.Fatalf("human move after opening: %v", err)
	}
}

func TestAnalysisEditsSkipCaptures(t *testing.T) {
	g := newTestGame(t, nil)
	ctx := context.Background()
	g.Play(ctx, ModeAnalysis, 0, 4, CellBlack)
	g.Play(ctx, ModeAnalysis, 1, 4, CellWhite)
	g.Play(ctx, ModeAnalysis, 2, 4, CellWhite)
	g.Play(ctx, ModeAnalysis, 3, 4, CellBlack)
	if c, _ := g.Get(1, 4); c != CellWhite {
		t.Fatalf("analysis edits must not capture")
	}
	if g.Captures(CellBlack) != 0 || g.History().Size() != 0 {
		t.Fatalf("analysis edits are not moves")
	}
	g.Play(ctx, ModeAnalysis, 1, 4, CellEmpty)
	if c, _ := g.Get(1, 4); c != CellEmpty {
		t.Fatalf("expected cell cleared")
	}
	for y := 0; y < 5; y++ {
		g.Play(ctx, ModeAnalysis, 7, y, CellWhite)
	}
	if g.Result() != ResultWhiteWin {
		t.Fatalf("expected analysis five to decide the game, got %v", g.Result())
	}
}

func TestGameResetClearsTableAndHistory(t *testing.T) {
	g := newTestGame(t, nil)
	g.Play(context.Background(), ModePlayerVsEngine, 4, 4, CellEmpty)
	if g.TTSize() == 0 {
		t.Fatalf("expected the search to fill the table")
	}
	g.Reset()
	if g.TTSize() != 0 || g.History().Size() != 0 || g.LastStats().Nodes != 0 {
		t.Fatalf("expected a clean game after reset")
	}
	if g.Hash() != 0 || g.Result() != ResultInProgress || g.ToMove() != CellBlack {
		t.Fatalf("expected a fresh board after reset")
	}
}

func TestHelpMoveDoesNotPlay(t *testing.T) {
	g := newTestGame(t, nil)
	g.Set(4, 4, CellBlack)
	hash := g.Hash()
	move := g.HelpMove(context.Background())
	if !move.Valid || move.Color != CellWhite {
		t.Fatalf("expected a white suggestion, got %+v", move)
	}
	if g.Hash() != hash || g.History().Size() != 1 {
		t.Fatalf("help move must not change the game")
	}
}

func TestGameMoveMapFollowsSideToMove(t *testing.T) {
	g := newTestGame(t, nil)
	if m := g.MoveMap(); m.Side != CellBlack || m.Size != 9 {
		t.Fatalf("unexpected initial move map %+v", m)
	}
	g.Set(4, 4, CellBlack)
	m := g.MoveMap()
	if m.Side != CellWhite || m.At(4, 4) != 0 {
		t.Fatalf("expected a refreshed move map for white")
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"analysis": ModeAnalysis, "PvP": ModePlayerVsPlayer, "pve": ModePlayerVsEngine} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err=%v", in, got, err)
		}
	}
	if _, err := ParseMode("chess"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}
