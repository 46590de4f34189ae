package engine

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
	// CellOutside only appears in extracted windows.
	CellOutside
)

type Result int

const (
	ResultInProgress Result = iota
	ResultBlackWin
	ResultWhiteWin
	ResultDraw
)

const (
	DefaultBoardSize        = 19
	DefaultCaptureWinStones = 10
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Board is the authoritative game position. The grid and the two occupancy
// sets always agree; the hash covers stones and the side to move.
type Board struct {
	size             int
	cells            []Cell
	black            *bitset.BitSet
	white            *bitset.BitSet
	blackCaptures    int
	whiteCaptures    int
	captureWinStones int
	result           Result
	toMove           Cell
	hash             uint64
	salt             uint64
	zobrist          *ZobristTable
}

type BoardOption func(*Board)

// WithHashSalt gives the board its own Zobrist key space.
func WithHashSalt(salt uint64) BoardOption {
	return func(b *Board) {
		b.salt = salt
	}
}

func WithCaptureWinStones(stones int) BoardOption {
	return func(b *Board) {
		if stones > 0 {
			b.captureWinStones = stones
		}
	}
}

func NewBoard(size int, opts ...BoardOption) (*Board, error) {
	if size < 5 || size%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBoardSize, size)
	}
	b := &Board{size: size, captureWinStones: DefaultCaptureWinStones}
	for _, opt := range opts {
		opt(b)
	}
	b.zobrist = GetZobrist(size, b.salt)
	b.cells = make([]Cell, size*size)
	b.black = bitset.New(uint(size * size))
	b.white = bitset.New(uint(size * size))
	b.Reset()
	return b, nil
}

func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = CellEmpty
	}
	b.black.ClearAll()
	b.white.ClearAll()
	b.blackCaptures = 0
	b.whiteCaptures = 0
	b.result = ResultInProgress
	b.toMove = CellBlack
	b.hash = 0
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

// At reads a cell without bounds checking.
func (b *Board) At(x, y int) Cell {
	return b.cells[b.index(x, y)]
}

func (b *Board) IsEmpty(x, y int) bool {
	return b.InBounds(x, y) && b.At(x, y) == CellEmpty
}

func (b *Board) Get(x, y int) (Cell, error) {
	if !b.InBounds(x, y) {
		return CellEmpty, fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinate, x, y)
	}
	return b.At(x, y), nil
}

// Set places a stone for color and resolves captures and the result.
// An occupied cell is reported as false with no error.
func (b *Board) Set(x, y int, color Cell) (bool, error) {
	_, ok, err := b.Place(x, y, color)
	return ok, err
}

// Placement describes an applied move.
type Placement struct {
	Point    Point   `json:"point"`
	Color    Cell    `json:"color"`
	Captured []Point `json:"captured,omitempty"`
}

// Place is Set that also reports the captured stones.
func (b *Board) Place(x, y int, color Cell) (Placement, bool, error) {
	if !b.InBounds(x, y) {
		return Placement{}, false, fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinate, x, y)
	}
	if color != CellBlack && color != CellWhite {
		return Placement{}, false, fmt.Errorf("%w: %v", ErrInvalidColor, color)
	}
	if b.result != ResultInProgress {
		return Placement{}, false, ErrGameOver
	}
	if b.At(x, y) != CellEmpty {
		return Placement{}, false, nil
	}
	rec := b.place(x, y, color)
	out := Placement{Point: Point{X: x, Y: y}, Color: color}
	for i := 0; i < rec.captured; i++ {
		idx := rec.capturedIdx[i]
		out.Captured = append(out.Captured, Point{X: idx % b.size, Y: idx / b.size})
	}
	return out, true, nil
}

// Remove clears a cell. Capture counters and the result are left alone.
func (b *Board) Remove(x, y int) error {
	if !b.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinate, x, y)
	}
	if b.result != ResultInProgress {
		return ErrGameOver
	}
	b.clear(b.index(x, y))
	return nil
}

// Setup assigns a cell directly. No capture or win check runs; call
// RefreshResult once the position is complete.
func (b *Board) Setup(x, y int, color Cell) error {
	if !b.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d)", ErrInvalidCoordinate, x, y)
	}
	if color != CellEmpty && color != CellBlack && color != CellWhite {
		return fmt.Errorf("%w: %v", ErrInvalidColor, color)
	}
	if b.result != ResultInProgress {
		return ErrGameOver
	}
	idx := b.index(x, y)
	b.clear(idx)
	if color != CellEmpty {
		b.put(idx, color)
	}
	return nil
}

func (b *Board) SetCaptures(black, white int) {
	b.blackCaptures = black
	b.whiteCaptures = white
}

// RefreshResult recomputes the result from the whole position. The side that
// moved last is checked first.
func (b *Board) RefreshResult() Result {
	if b.result != ResultInProgress {
		return b.result
	}
	mover := opponent(b.toMove)
	for _, color := range [2]Cell{mover, b.toMove} {
		if b.CaptureWin(color) || b.GlobalFiveMatch(color) {
			b.result = winFor(color)
			return b.result
		}
	}
	if b.EmptyCount() == 0 {
		b.result = ResultDraw
	}
	return b.result
}

func (b *Board) Clone() *Board {
	clone := *b
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	clone.black = b.black.Clone()
	clone.white = b.white.Clone()
	return &clone
}

func (b *Board) Result() Result {
	return b.result
}

func (b *Board) ToMove() Cell {
	return b.toMove
}

// SetToMove changes the side to move and keeps the hash in sync.
func (b *Board) SetToMove(color Cell) {
	if color != CellBlack && color != CellWhite {
		return
	}
	if color != b.toMove {
		b.hash ^= b.zobrist.side
		b.toMove = color
	}
}

func (b *Board) Hash() uint64 {
	return b.hash
}

func (b *Board) Salt() uint64 {
	return b.salt
}

func (b *Board) BlackCaptures() int {
	return b.blackCaptures
}

func (b *Board) WhiteCaptures() int {
	return b.whiteCaptures
}

func (b *Board) Captures(color Cell) int {
	if color == CellBlack {
		return b.blackCaptures
	}
	return b.whiteCaptures
}

func (b *Board) CaptureWinStones() int {
	return b.captureWinStones
}

func (b *Board) StoneCount(color Cell) int {
	switch color {
	case CellBlack:
		return int(b.black.Count())
	case CellWhite:
		return int(b.white.Count())
	default:
		return 0
	}
}

func (b *Board) EmptyCount() int {
	return len(b.cells) - int(b.black.Count()) - int(b.white.Count())
}

// Stones lists the stones of one color in row-major order.
func (b *Board) Stones(color Cell) []Point {
	set := b.set(color)
	if set == nil {
		return nil
	}
	out := make([]Point, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		out = append(out, Point{X: int(i) % b.size, Y: int(i) / b.size})
	}
	return out
}

func (b *Board) index(x, y int) int {
	return y*b.size + x
}

func (b *Board) set(color Cell) *bitset.BitSet {
	switch color {
	case CellBlack:
		return b.black
	case CellWhite:
		return b.white
	default:
		return nil
	}
}

func (b *Board) put(idx int, color Cell) {
	b.cells[idx] = color
	b.set(color).Set(uint(idx))
	b.hash ^= b.zobrist.stone(idx, color)
}

func (b *Board) clear(idx int) {
	color := b.cells[idx]
	if color == CellEmpty {
		return
	}
	b.cells[idx] = CellEmpty
	b.set(color).Clear(uint(idx))
	b.hash ^= b.zobrist.stone(idx, color)
}

// consistent reports whether the grid, the occupancy sets and the hash agree.
func (b *Board) consistent() bool {
	for idx, cell := range b.cells {
		inBlack := b.black.Test(uint(idx))
		inWhite := b.white.Test(uint(idx))
		if inBlack != (cell == CellBlack) || inWhite != (cell == CellWhite) {
			return false
		}
	}
	return b.hash == ComputeHash(b)
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	case CellOutside:
		return "Outside"
	default:
		return "Empty"
	}
}

// ParseColor accepts "black", "white" and "empty" in any case.
func ParseColor(s string) (Cell, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b":
		return CellBlack, nil
	case "white", "w":
		return CellWhite, nil
	case "empty", "":
		return CellEmpty, nil
	}
	return CellEmpty, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

// Opponent returns the other player's color.
func (c Cell) Opponent() Cell {
	return opponent(c)
}

func (r Result) String() string {
	switch r {
	case ResultBlackWin:
		return "BlackWin"
	case ResultWhiteWin:
		return "WhiteWin"
	case ResultDraw:
		return "Draw"
	default:
		return "InProgress"
	}
}

func opponent(c Cell) Cell {
	if c == CellBlack {
		return CellWhite
	}
	return CellBlack
}

func winFor(c Cell) Result {
	if c == CellBlack {
		return ResultBlackWin
	}
	return ResultWhiteWin
}
