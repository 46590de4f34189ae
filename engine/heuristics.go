package engine

import "math"

const fnv64Offset = 1469598103934665603
const fnv64Prime = 1099511628211

// Heuristics holds the weights shared by the MoveMap and the leaf evaluator.
type Heuristics struct {
	Five         int `json:"five" mapstructure:"five"`
	Open4        int `json:"open_4" mapstructure:"open_4"`
	Closed4      int `json:"closed_4" mapstructure:"closed_4"`
	Broken4      int `json:"broken_4" mapstructure:"broken_4"`
	Open3        int `json:"open_3" mapstructure:"open_3"`
	Broken3      int `json:"broken_3" mapstructure:"broken_3"`
	Closed3      int `json:"closed_3" mapstructure:"closed_3"`
	Open2        int `json:"open_2" mapstructure:"open_2"`
	Broken2      int `json:"broken_2" mapstructure:"broken_2"`
	Closed2      int `json:"closed_2" mapstructure:"closed_2"`
	Single       int `json:"single" mapstructure:"single"`
	ForkOpen3    int `json:"fork_open_3" mapstructure:"fork_open_3"`
	ForkFourPlus int `json:"fork_four_plus" mapstructure:"fork_four_plus"`

	CaptureNow     int `json:"capture_now" mapstructure:"capture_now"`
	CaptureNearWin int `json:"capture_near_win" mapstructure:"capture_near_win"`
	CaptureStone   int `json:"capture_stone" mapstructure:"capture_stone"`
	UnderCapture   int `json:"under_capture" mapstructure:"under_capture"`

	// DefensePercent scales opponent patterns in the MoveMap.
	DefensePercent int `json:"defense_percent" mapstructure:"defense_percent"`
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		Five:           1000000,
		Open4:          100000,
		Closed4:        15000,
		Broken4:        12000,
		Open3:          2500,
		Broken3:        1200,
		Closed3:        400,
		Open2:          200,
		Broken2:        120,
		Closed2:        40,
		Single:         4,
		ForkOpen3:      6000,
		ForkFourPlus:   20000,
		CaptureNow:     3000,
		CaptureNearWin: 30000,
		CaptureStone:   900,
		UnderCapture:   1500,
		DefensePercent: 90,
	}
}

// Resolved returns the defaults for an unset weight set. Any other set is
// kept as is, so a weight of zero switches that term off.
func (h Heuristics) Resolved() Heuristics {
	if h == (Heuristics{}) {
		return DefaultHeuristics()
	}
	return h
}

// Hash ties transposition entries to one weight set.
func (h Heuristics) Hash() uint64 {
	hash := uint64(fnv64Offset)
	mix := func(value int) {
		bits := uint64(int64(value))
		for i := 0; i < 8; i++ {
			hash ^= uint64(byte(bits >> (8 * i)))
			hash *= fnv64Prime
		}
	}
	for _, v := range []int{
		h.Five, h.Open4, h.Closed4, h.Broken4, h.Open3, h.Broken3, h.Closed3,
		h.Open2, h.Broken2, h.Closed2, h.Single, h.ForkOpen3, h.ForkFourPlus,
		h.CaptureNow, h.CaptureNearWin, h.CaptureStone, h.UnderCapture,
		h.DefensePercent,
	} {
		mix(v)
	}
	return hash
}

// lineValue maps a run through a cell to its weight.
func (h *Heuristics) lineValue(length, openEnds int) int {
	switch {
	case length >= 5:
		return h.Five
	case length == 4 && openEnds == 2:
		return h.Open4
	case length == 4 && openEnds == 1:
		return h.Closed4
	case length == 3 && openEnds == 2:
		return h.Open3
	case length == 3 && openEnds == 1:
		return h.Closed3
	case length == 2 && openEnds == 2:
		return h.Open2
	case length == 2 && openEnds == 1:
		return h.Closed2
	case length == 1:
		return h.Single * openEnds
	}
	return 0
}

// captureValue grows as the capturer approaches the capture win.
func (h *Heuristics) captureValue(stonesSoFar, winStones int) int {
	switch {
	case stonesSoFar+2 >= winStones:
		return h.Five
	case stonesSoFar+4 >= winStones:
		return h.CaptureNearWin
	}
	return h.CaptureNow + h.CaptureNow*stonesSoFar/int(math.Max(1, float64(winStones)))
}

func (h *Heuristics) defense(v int) int {
	return v * h.DefensePercent / 100
}
