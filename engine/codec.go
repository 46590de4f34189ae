package engine

import "fmt"

// Persistence codes for a cell.
const (
	CodeEmpty = 0
	CodeBlack = 1
	CodeWhite = 2
)

func TokenColorFromInt(v int) (Cell, error) {
	switch v {
	case CodeEmpty:
		return CellEmpty, nil
	case CodeBlack:
		return CellBlack, nil
	case CodeWhite:
		return CellWhite, nil
	}
	return CellEmpty, fmt.Errorf("%w: %d", ErrUnknownColorCode, v)
}

func IntFromTokenColor(c Cell) int {
	switch c {
	case CellBlack:
		return CodeBlack
	case CellWhite:
		return CodeWhite
	default:
		return CodeEmpty
	}
}

// ExportRows renders the grid as rows of persistence codes, rows[y][x].
func (b *Board) ExportRows() [][]int {
	rows := make([][]int, b.size)
	for y := range rows {
		rows[y] = make([]int, b.size)
		for x := range rows[y] {
			rows[y][x] = IntFromTokenColor(b.At(x, y))
		}
	}
	return rows
}

// decodeRows validates every code before anything is written.
func decodeRows(rows [][]int, size int) ([]Cell, error) {
	if len(rows) != size {
		return nil, fmt.Errorf("%w: %d rows, want %d", ErrMalformedRows, len(rows), size)
	}
	cells := make([]Cell, 0, size*size)
	for y, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedRows, y, len(row), size)
		}
		for x, v := range row {
			c, err := TokenColorFromInt(v)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", x, y, err)
			}
			cells = append(cells, c)
		}
	}
	return cells, nil
}

func validCaptures(black, white int) error {
	if black < 0 || white < 0 || black%2 != 0 || white%2 != 0 {
		return fmt.Errorf("%w: black %d, white %d", ErrInvalidCaptures, black, white)
	}
	return nil
}

// LoadRows replaces the position with rows. Capture counters are taken as
// given once they pass validation. toMove names the side to move; CellEmpty
// derives it from the stone counts.
func (b *Board) LoadRows(rows [][]int, blackCaptures, whiteCaptures int, toMove Cell) error {
	if err := validCaptures(blackCaptures, whiteCaptures); err != nil {
		return err
	}
	cells, err := decodeRows(rows, b.size)
	if err != nil {
		return err
	}
	b.Reset()
	for idx, c := range cells {
		if c != CellEmpty {
			b.put(idx, c)
		}
	}
	b.SetCaptures(blackCaptures, whiteCaptures)
	switch {
	case toMove == CellBlack || toMove == CellWhite:
		b.SetToMove(toMove)
	case b.StoneCount(CellBlack) > b.StoneCount(CellWhite):
		b.SetToMove(CellWhite)
	}
	b.RefreshResult()
	return nil
}

func (g *Game) ExportRows() [][]int {
	return g.board.ExportRows()
}

// ImportRows loads a saved position. The game history and the
// transposition table start over.
func (g *Game) ImportRows(rows [][]int) error {
	return g.ImportPosition(rows, 0, 0, CellEmpty)
}

func (g *Game) ImportPosition(rows [][]int, blackCaptures, whiteCaptures int, toMove Cell) error {
	if err := g.board.LoadRows(rows, blackCaptures, whiteCaptures, toMove); err != nil {
		return err
	}
	g.tt.Clear()
	g.history.Clear()
	g.lastStats = SearchStats{}
	g.refreshMoveMap()
	return nil
}
