package engine

import "time"

// Settings configures a Game and its searches.
type Settings struct {
	BoardSize        int           `json:"board_size"`
	CaptureWinStones int           `json:"capture_win_stones"`
	Depth            int           `json:"depth"`
	Radius           int           `json:"radius"`
	RootBranching    int           `json:"root_branching"`
	Branching        int           `json:"branching"`
	TimeBudget       time.Duration `json:"time_budget"`
	HumanColor       Cell          `json:"human_color"`
	Heuristics       Heuristics    `json:"heuristics"`
}

func DefaultSettings() Settings {
	return Settings{
		BoardSize:        DefaultBoardSize,
		CaptureWinStones: DefaultCaptureWinStones,
		Depth:            4,
		Radius:           2,
		RootBranching:    16,
		Branching:        10,
		HumanColor:       CellBlack,
		Heuristics:       DefaultHeuristics(),
	}
}

// SearchOptions extracts the search limits.
func (s Settings) SearchOptions() SearchOptions {
	return SearchOptions{
		Depth:         s.Depth,
		Radius:        s.Radius,
		RootBranching: s.RootBranching,
		Branching:     s.Branching,
		TimeBudget:    s.TimeBudget,
		Heuristics:    s.Heuristics,
	}.withDefaults()
}
