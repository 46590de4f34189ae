package engine

import "testing"

var (
	E = CellEmpty
	B = CellBlack
	W = CellWhite
	X = CellOutside
)

func TestExtractWindowPadsOutside(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{7, 4})
	w := b.ExtractWindow(7, 4, Direction{1, 0}, 4)
	want := []Cell{B, E, X, X}
	for i := range want {
		if w[i] != want[i] {
			t.Fatalf("window %v, want %v", w, want)
		}
	}
	w = b.ExtractWindow(-2, -2, Direction{1, 1}, 3)
	if w[0] != X || w[1] != X || w[2] != E {
		t.Fatalf("expected outside cells before the corner, got %v", w)
	}
}

func TestOpenThreeNeedsEmptyFlanksInsideTheBoard(t *testing.T) {
	b := newTestBoard(t, 9)
	setupStones(t, b, CellBlack, Point{0, 0}, Point{1, 0}, Point{2, 0})
	if IsOpenThree(b.ExtractWindow(0, 0, Direction{1, 0}, 5), CellBlack) {
		t.Fatalf("three against the edge is not open")
	}
	if IsOpenThree(b.ExtractWindow(-1, 0, Direction{1, 0}, 5), CellBlack) {
		t.Fatalf("outside flank must not count as empty")
	}

	setupStones(t, b, CellBlack, Point{3, 2}, Point{4, 2}, Point{5, 2})
	if !IsOpenThree(b.ExtractWindow(2, 2, Direction{1, 0}, 5), CellBlack) {
		t.Fatalf("expected open three in the middle of the board")
	}
	if IsOpenThree(b.ExtractWindow(2, 2, Direction{1, 0}, 5), CellWhite) {
		t.Fatalf("open three belongs to black only")
	}
}

func TestRunClassifiers(t *testing.T) {
	cases := []struct {
		name string
		w    []Cell
		fn   func([]Cell, Cell) bool
		want bool
	}{
		{"five", []Cell{B, B, B, B, B}, IsFive, true},
		{"overline", []Cell{E, B, B, B, B, B, B}, IsFive, true},
		{"broken five", []Cell{B, B, E, B, B, B}, IsFive, false},
		{"open four", []Cell{E, B, B, B, B, E}, IsOpenFour, true},
		{"closed four", []Cell{W, B, B, B, B, E}, IsOpenFour, false},
		{"open two", []Cell{E, B, B, E}, IsOpenTwo, true},
		{"three is not two", []Cell{E, B, B, B, E}, IsOpenTwo, false},
		{"two against outside", []Cell{X, B, B, E}, IsOpenTwo, false},
		{"white open three", []Cell{E, W, W, W, E}, IsOpenThree, false},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.w, CellBlack); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestCaptureSetupAndUnderCapture(t *testing.T) {
	if !IsCaptureSetup([]Cell{E, W, W, B}, CellBlack) {
		t.Fatalf("expected capture setup")
	}
	if IsCaptureSetup([]Cell{B, W, W, B}, CellBlack) {
		t.Fatalf("origin must be empty")
	}
	if IsCaptureSetup([]Cell{E, W, W, X}, CellBlack) {
		t.Fatalf("outside cannot anchor a capture")
	}
	if !IsUnderCapture([]Cell{W, E, B, E}, CellBlack) {
		t.Fatalf("expected under capture with the opponent behind")
	}
	if !IsUnderCapture([]Cell{E, E, B, W}, CellBlack) {
		t.Fatalf("expected under capture with the opponent ahead")
	}
	if IsUnderCapture([]Cell{W, E, B, W}, CellBlack) {
		t.Fatalf("already bracketed pair cannot be captured")
	}
	if IsUnderCapture([]Cell{W, E, B, B}, CellBlack) {
		t.Fatalf("three stones are not a pair")
	}
}

func TestRunAtCountsThroughCenter(t *testing.T) {
	w := []Cell{X, W, B, B, E, B, E, E, E}
	length, open := runAt(w, 4, CellBlack)
	if length != 4 || open != 1 {
		t.Fatalf("got length=%d open=%d", length, open)
	}
}
