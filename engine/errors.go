package engine

import "errors"

var (
	ErrInvalidCoordinate = errors.New("coordinate outside the board")
	ErrInvalidColor      = errors.New("invalid stone color")
	ErrUnknownColorCode  = errors.New("unknown color code")
	ErrGameOver          = errors.New("game already decided")
	ErrInvalidBoardSize  = errors.New("board size must be odd and at least 5")
	ErrMalformedRows     = errors.New("rows do not match the board size")
	ErrOutOfTurn         = errors.New("not this color's turn")
	ErrUnknownMode       = errors.New("unknown play mode")
	ErrUnknownScanKind   = errors.New("unknown scan kind")
	ErrInvalidCaptures   = errors.New("capture counters must be even and non-negative")
)
