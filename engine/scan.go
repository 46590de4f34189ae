package engine

import (
	"fmt"
	"strings"
)

// ScanKind selects one of the advisory overlays.
type ScanKind int

const (
	ScanOpenTwo ScanKind = iota
	ScanOpenThree
	ScanOpenFour
	ScanCapture
	ScanUnderCapture
	ScanDoubleOpenThree
	ScanWin
)

var scanNames = map[string]ScanKind{
	"open-two":          ScanOpenTwo,
	"open-three":        ScanOpenThree,
	"open-four":         ScanOpenFour,
	"capture":           ScanCapture,
	"under-capture":     ScanUnderCapture,
	"double-open-three": ScanDoubleOpenThree,
	"win":               ScanWin,
}

func ParseScanKind(s string) (ScanKind, error) {
	if kind, ok := scanNames[strings.ToLower(s)]; ok {
		return kind, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScanKind, s)
}

func (k ScanKind) String() string {
	for name, kind := range scanNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// Scan lists the cells matching kind for color, row-major. Empty cells are
// reported for every kind except ScanWin, which reports the stones that
// belong to a five.
func (b *Board) Scan(kind ScanKind, color Cell) []Point {
	if color != CellBlack && color != CellWhite {
		return nil
	}
	out := []Point{}
	var buf [6]Cell
	for y := 0; y < b.size; y++ {
		for x := 0; x < b.size; x++ {
			if kind == ScanWin {
				if b.LocalFiveMatch(color, x, y) {
					out = append(out, Point{X: x, Y: y})
				}
				continue
			}
			if b.At(x, y) != CellEmpty {
				continue
			}
			if b.scanCell(kind, x, y, color, buf[:]) {
				out = append(out, Point{X: x, Y: y})
			}
		}
	}
	return out
}

func (b *Board) scanCell(kind ScanKind, x, y int, color Cell, buf []Cell) bool {
	openThrees := 0
	for _, d := range Directions {
		switch kind {
		case ScanOpenTwo:
			if IsOpenTwo(b.extractInto(x, y, d, buf[:4]), color) {
				return true
			}
		case ScanOpenThree:
			if IsOpenThree(b.extractInto(x, y, d, buf[:5]), color) {
				return true
			}
		case ScanOpenFour:
			if IsOpenFour(b.extractInto(x, y, d, buf[:6]), color) {
				return true
			}
		case ScanCapture:
			if IsCaptureSetup(b.extractInto(x, y, d, buf[:4]), color) {
				return true
			}
		case ScanUnderCapture:
			if IsUnderCapture(b.extractInto(x-d.DX, y-d.DY, d, buf[:4]), color) {
				return true
			}
		case ScanDoubleOpenThree:
			if IsOpenThree(b.extractInto(x, y, d, buf[:5]), color) {
				openThrees++
				if openThrees >= 2 {
					return true
				}
			}
		}
	}
	return false
}

func (g *Game) Scan(kind ScanKind, color Cell) []Point {
	return g.board.Scan(kind, color)
}
