package engine

import "time"

// Move is an engine answer. Valid is false when no move could be produced.
type Move struct {
	Valid   bool          `json:"valid"`
	X       int           `json:"x"`
	Y       int           `json:"y"`
	Color   Cell          `json:"color"`
	Score   int           `json:"score"`
	Depth   int           `json:"depth,omitempty"`
	Elapsed time.Duration `json:"elapsed"`
}

func (m Move) Point() Point {
	return Point{X: m.X, Y: m.Y}
}

func (p Point) Equals(other Point) bool {
	return p.X == other.X && p.Y == other.Y
}
