package engine

import (
	"errors"
	"testing"
)

func newTestBoard(t *testing.T, size int, opts ...BoardOption) *Board {
	t.Helper()
	b, err := NewBoard(size, opts...)
	if err != nil {
		t.Fatalf("new board: %v", err)
	}
	return b
}

func setupStones(t *testing.T, b *Board, color Cell, points ...Point) {
	t.Helper()
	for _, p := range points {
		if err := b.Setup(p.X, p.Y, color); err != nil {
			t.Fatalf("setup (%d,%d): %v", p.X, p.Y, err)
		}
	}
}

func TestNewBoardRejectsEvenAndTinySizes(t *testing.T) {
	for _, size := range []int{0, 3, 4, 18} {
		if _, err := NewBoard(size); !errors.Is(err, ErrInvalidBoardSize) {
			t.Fatalf("size %d: expected ErrInvalidBoardSize, got %v", size, err)
		}
	}
}

func TestSetReportsOccupiedAndInvalidInput(t *testing.T) {
	b := newTestBoard(t, 9)
	if ok, err := b.Set(4, 4, CellBlack); !ok || err != nil {
		t.Fatalf("expected first placement to succeed, got ok=%v err=%v", ok, err)
	}
	hash := b.Hash()
	if ok, err := b.Set(4, 4, CellWhite); ok || err != nil {
		t.Fatalf("expected occupied cell to return false without error, got ok=%v err=%v", ok, err)
	}
	if b.Hash() != hash || b.At(4, 4) != CellBlack {
		t.Fatalf("occupied placement must not mutate the board")
	}
	if _, err := b.Set(9, 0, CellWhite); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := b.Set(0, 0, CellEmpty); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if _, err := b.Get(-1, 2); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate from Get, got %v", err)
	}
}

func TestSetFlipsSideToMove(t *testing.T) {
	b := newTestBoard(t, 9)
	if b.ToMove() != CellBlack {
		t.Fatalf("black moves first")
	}
	b.Set(0, 0, CellBlack)
	if b.ToMove() != CellWhite {
		t.Fatalf("expected white to move, got %v", b.ToMove())
	}
	if !b.consistent() {
		t.Fatalf("board bookkeeping out of sync")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	once := newTestBoard(t, 9, WithHashSalt(7))
	twice := newTestBoard(t, 9, WithHashSalt(7))
	for _, b := range []*Board{once, twice} {
		b.Set(4, 4, CellBlack)
		b.Set(5, 5, CellWhite)
		b.SetCaptures(4, 2)
	}
	once.Reset()
	twice.Reset()
	twice.Reset()
	if once.Hash() != twice.Hash() || once.Hash() != 0 {
		t.Fatalf("reset hashes differ: %d vs %d", once.Hash(), twice.Hash())
	}
	if twice.BlackCaptures() != 0 || twice.WhiteCaptures() != 0 {
		t.Fatalf("expected counters cleared")
	}
	if twice.Result() != ResultInProgress || twice.ToMove() != CellBlack || twice.EmptyCount() != 81 {
		t.Fatalf("expected a fresh board after reset")
	}
}

func TestHashDependsOnContentNotOrder(t *testing.T) {
	a := newTestBoard(t, 9, WithHashSalt(42))
	b := newTestBoard(t, 9, WithHashSalt(42))
	a.Set(0, 0, CellBlack)
	a.Set(1, 1, CellWhite)
	setupStones(t, b, CellWhite, Point{1, 1})
	setupStones(t, b, CellBlack, Point{0, 0})
	if a.Hash() != b.Hash() {
		t.Fatalf("expected equal hashes for equal content and side, got %d vs %d", a.Hash(), b.Hash())
	}
	b.SetToMove(CellWhite)
	if a.Hash() == b.Hash() {
		t.Fatalf("expected side to move to change the hash")
	}
}

func TestSaltSeparatesHashes(t *testing.T) {
	a := newTestBoard(t, 9, WithHashSalt(1))
	b := newTestBoard(t, 9, WithHashSalt(2))
	a.Set(3, 3, CellBlack)
	b.Set(3, 3, CellBlack)
	if a.Hash() == b.Hash() {
		t.Fatalf("expected different salts to give different hashes")
	}
}

func TestPlaceUndoRestoresPosition(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{0, 4})
	setupStones(t, b, CellWhite, Point{1, 4}, Point{2, 4})
	hash := b.Hash()
	rec := b.place(3, 4, CellBlack)
	if rec.captured != 2 || b.BlackCaptures() != 2 {
		t.Fatalf("expected a capture, got %d", rec.captured)
	}
	b.undo(rec)
	if b.Hash() != hash {
		t.Fatalf("hash not restored: got %d want %d", b.Hash(), hash)
	}
	if b.At(1, 4) != CellWhite || b.At(2, 4) != CellWhite || b.At(3, 4) != CellEmpty {
		t.Fatalf("stones not restored")
	}
	if b.BlackCaptures() != 0 || b.ToMove() != CellBlack || !b.consistent() {
		t.Fatalf("bookkeeping not restored")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := newTestBoard(t, 9)
	b.Set(4, 4, CellBlack)
	clone := b.Clone()
	clone.Set(5, 5, CellWhite)
	if b.At(5, 5) != CellEmpty || b.StoneCount(CellWhite) != 0 {
		t.Fatalf("clone shares state with the original")
	}
	if clone.Hash() == b.Hash() {
		t.Fatalf("expected clone hash to move on")
	}
}

func TestFullBoardIsDraw(t *testing.T) {
	rows := []string{"BBWWB", "WWBBW", "BBWWB", "WWBBW", "BBWWB"}
	b := newTestBoard(t, 5)
	for y, row := range rows {
		for x, ch := range row {
			if x == 2 && y == 2 {
				continue
			}
			color := CellBlack
			if ch == 'W' {
				color = CellWhite
			}
			setupStones(t, b, color, Point{x, y})
		}
	}
	if ok, err := b.Set(2, 2, CellWhite); !ok || err != nil {
		t.Fatalf("expected last placement to succeed, got ok=%v err=%v", ok, err)
	}
	if b.Result() != ResultDraw {
		t.Fatalf("expected draw, got %v", b.Result())
	}
}

func TestRemoveKeepsCounters(t *testing.T) {
	b := newTestBoard(t, 9)
	b.Set(2, 2, CellBlack)
	b.SetCaptures(2, 0)
	if err := b.Remove(2, 2); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if b.At(2, 2) != CellEmpty || b.BlackCaptures() != 2 || !b.consistent() {
		t.Fatalf("unexpected state after remove")
	}
	if err := b.Remove(20, 2); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Cell{"black": CellBlack, "White": CellWhite, " b ": CellBlack, "empty": CellEmpty}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseColor("red"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if CellBlack.Opponent() != CellWhite || CellWhite.Opponent() != CellBlack {
		t.Fatalf("opponent colors are wrong")
	}
}
