package engine

import "testing"

func TestEvaluateMustBlockOpenFour(t *testing.T) {
	b := newTestBoard(t, 9)
	// Opponent (white) has open four: .OOOO.
	setupStones(t, b, CellWhite, Point{1, 0}, Point{2, 0}, Point{3, 0}, Point{4, 0})
	h := DefaultHeuristics()
	if score := b.Evaluate(CellBlack, &h); score > -800000 {
		t.Fatalf("expected strong negative score for must-block open four, got %d", score)
	}
}

func TestEvaluateFourToMoveWins(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{1, 0}, Point{2, 0}, Point{3, 0}, Point{4, 0})
	setupStones(t, b, CellWhite, Point{0, 0})
	h := DefaultHeuristics()
	if score := b.Evaluate(CellBlack, &h); score < 800000 {
		t.Fatalf("expected strong positive score for a closed four to move, got %d", score)
	}
}

func TestEvaluateIsSymmetric(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{3, 3}, Point{4, 3}, Point{5, 3})
	h := DefaultHeuristics()
	black := b.Evaluate(CellBlack, &h)
	white := b.Evaluate(CellWhite, &h)
	if black <= 0 || white != -black {
		t.Fatalf("expected mirrored scores, got black=%d white=%d", black, white)
	}
}

func TestEvaluateCountsCaptures(t *testing.T) {
	b := newTestBoard(t, 9)
	h := DefaultHeuristics()
	base := b.Evaluate(CellBlack, &h)
	b.SetCaptures(4, 0)
	if got := b.Evaluate(CellBlack, &h); got-base != 4*h.CaptureStone {
		t.Fatalf("expected capture differential, got %d", got-base)
	}
}

func TestBuildLinesCoversEveryFive(t *testing.T) {
	lines := buildLines(9)
	// 9 rows, 9 columns and 5+4 diagonals per direction.
	if len(lines) != 9+9+9+9 {
		t.Fatalf("expected 36 lines, got %d", len(lines))
	}
}

func TestResolvedKeepsZeroWeights(t *testing.T) {
	if (Heuristics{}).Resolved() != DefaultHeuristics() {
		t.Fatalf("an unset weight set should resolve to the defaults")
	}
	h := DefaultHeuristics()
	h.CaptureStone = 0
	h.DefensePercent = 0
	got := h.Resolved()
	if got.CaptureStone != 0 || got.DefensePercent != 0 {
		t.Fatalf("zero weights must survive: %+v", got)
	}

	b := newTestBoard(t, 9)
	base := b.Evaluate(CellBlack, &got)
	b.SetCaptures(4, 0)
	if after := b.Evaluate(CellBlack, &got); after != base {
		t.Fatalf("a zero capture weight should ignore captures, got %d vs %d", after, base)
	}
}
