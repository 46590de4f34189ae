package engine

import (
	"errors"
	"testing"
)

func TestCaptureRemovesBracketedPair(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{0, 4})
	setupStones(t, b, CellWhite, Point{1, 4}, Point{2, 4})
	placement, ok, err := b.Place(3, 4, CellBlack)
	if !ok || err != nil {
		t.Fatalf("expected placement, got ok=%v err=%v", ok, err)
	}
	if b.At(1, 4) != CellEmpty || b.At(2, 4) != CellEmpty {
		t.Fatalf("expected white pair removed")
	}
	if b.BlackCaptures() != 2 || b.WhiteCaptures() != 0 {
		t.Fatalf("expected black captures 2, got %d/%d", b.BlackCaptures(), b.WhiteCaptures())
	}
	if len(placement.Captured) != 2 {
		t.Fatalf("expected two captured points, got %+v", placement.Captured)
	}
	if !b.consistent() {
		t.Fatalf("board bookkeeping out of sync")
	}
}

func TestEightSimultaneousCaptures(t *testing.T) {
	b := newTestBoard(t, 9)
	center := Point{4, 4}
	for _, d := range Directions {
		setupStones(t, b, CellWhite,
			Point{center.X + d.DX, center.Y + d.DY},
			Point{center.X + 2*d.DX, center.Y + 2*d.DY})
		setupStones(t, b, CellBlack, Point{center.X + 3*d.DX, center.Y + 3*d.DY})
	}
	if ok, err := b.Set(center.X, center.Y, CellBlack); !ok || err != nil {
		t.Fatalf("expected placement, got ok=%v err=%v", ok, err)
	}
	if b.BlackCaptures() != 16 {
		t.Fatalf("expected 16 captured stones, got %d", b.BlackCaptures())
	}
	if b.StoneCount(CellWhite) != 0 {
		t.Fatalf("expected every white stone removed, %d left", b.StoneCount(CellWhite))
	}
	if b.Result() != ResultBlackWin {
		t.Fatalf("expected capture win, got %v", b.Result())
	}
}

func TestMovingIntoBracketIsSafe(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{0, 4}, Point{3, 4})
	setupStones(t, b, CellWhite, Point{1, 4})
	b.Set(2, 4, CellWhite)
	if b.At(1, 4) != CellWhite || b.At(2, 4) != CellWhite {
		t.Fatalf("moving into a bracket must not capture yourself")
	}
	if b.BlackCaptures() != 0 || b.WhiteCaptures() != 0 {
		t.Fatalf("expected no captures")
	}
}

func TestCaptureNeedsExactlyAPair(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{0, 4}, Point{5, 4})
	setupStones(t, b, CellWhite, Point{1, 4}, Point{2, 4}, Point{4, 4})
	b.Set(3, 4, CellBlack)
	if b.BlackCaptures() != 2 {
		t.Fatalf("expected a single capture, got %d stones", b.BlackCaptures())
	}
	if b.At(4, 4) != CellWhite {
		t.Fatalf("unrelated stone must stay")
	}
}

func TestCaptureThresholdWins(t *testing.T) {
	b := newTestBoard(t, 9)
	b.SetCaptures(0, 8)
	setupStones(t, b, CellWhite, Point{4, 0})
	setupStones(t, b, CellBlack, Point{4, 1}, Point{4, 2})
	b.Set(4, 3, CellWhite)
	if b.WhiteCaptures() != 10 {
		t.Fatalf("expected 10 captured stones, got %d", b.WhiteCaptures())
	}
	if b.Result() != ResultWhiteWin {
		t.Fatalf("expected white capture win, got %v", b.Result())
	}
	if !b.CaptureWin(CellWhite) || b.CaptureWin(CellBlack) {
		t.Fatalf("capture win mismatch")
	}
}

func TestFiveInARowWins(t *testing.T) {
	b := newTestBoard(t, 9)
	for x := 0; x < 4; x++ {
		b.Set(x, 0, CellBlack)
	}
	if b.Result() != ResultInProgress {
		t.Fatalf("four stones must not win")
	}
	b.Set(4, 0, CellBlack)
	if b.Result() != ResultBlackWin {
		t.Fatalf("expected black win, got %v", b.Result())
	}
	if !b.LocalFiveMatch(CellBlack, 4, 0) || !b.LocalFiveMatch(CellBlack, 0, 0) {
		t.Fatalf("expected local match through the five")
	}
	if b.LocalFiveMatch(CellBlack, 8, 8) || b.LocalFiveMatch(CellWhite, 4, 0) {
		t.Fatalf("unexpected local match")
	}
	if !b.GlobalFiveMatch(CellBlack) || b.GlobalFiveMatch(CellWhite) {
		t.Fatalf("global match mismatch")
	}
	if _, err := b.Set(8, 8, CellWhite); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver after the win, got %v", err)
	}
}

func TestOverlineWins(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellWhite, Point{0, 6}, Point{1, 5}, Point{2, 4}, Point{4, 2}, Point{5, 1})
	b.Set(3, 3, CellWhite)
	if b.Result() != ResultWhiteWin {
		t.Fatalf("expected overline to win, got %v", b.Result())
	}
}

func TestRefreshResultFindsLoadedFive(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellWhite, Point{2, 2}, Point{2, 3}, Point{2, 4}, Point{2, 5}, Point{2, 6})
	if b.Result() != ResultInProgress {
		t.Fatalf("setup must not decide the game")
	}
	if got := b.RefreshResult(); got != ResultWhiteWin {
		t.Fatalf("expected white win after refresh, got %v", got)
	}
}
