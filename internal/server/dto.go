package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/AloySobek/ft-gomoku/engine"
)

type statusResponse struct {
	ID               string            `json:"id"`
	Mode             string            `json:"mode"`
	BoardSize        int               `json:"board_size"`
	Board            [][]int           `json:"board"`
	NextPlayer       int               `json:"next_player"`
	Winner           int               `json:"winner"`
	Status           string            `json:"status"`
	BlackCaptures    int               `json:"black_captures"`
	WhiteCaptures    int               `json:"white_captures"`
	CaptureWinStones int               `json:"capture_win_stones"`
	HumanPlayer      int               `json:"human_player"`
	AiThinking       bool              `json:"ai_thinking"`
	History          []historyEntryDTO `json:"history"`
	Hash             string            `json:"hash"`
	TTSize           int               `json:"tt_size"`
}

type historyEntryDTO struct {
	X                 int            `json:"x"`
	Y                 int            `json:"y"`
	Player            int            `json:"player"`
	ElapsedMs         float64        `json:"elapsed_ms"`
	IsAi              bool           `json:"is_ai"`
	CapturedCount     int            `json:"captured_count"`
	CapturedPositions []engine.Point `json:"captured_positions"`
	Depth             int            `json:"depth"`
}

type createGameRequest struct {
	Mode         string `json:"mode"`
	HumanColor   string `json:"human_color"`
	BoardSize    int    `json:"board_size"`
	Depth        int    `json:"depth"`
	TimeBudgetMs int    `json:"time_budget_ms"`
}

type moveRequest struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

type moveResponse struct {
	Applied bool           `json:"applied"`
	Status  statusResponse `json:"status"`
}

type helpResponse struct {
	Move  moveDTO  `json:"move"`
	Stats statsDTO `json:"stats"`
}

type moveDTO struct {
	Valid     bool    `json:"valid"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Player    int     `json:"player"`
	Score     int     `json:"score"`
	Depth     int     `json:"depth"`
	ElapsedMs float64 `json:"elapsed_ms"`
}

type statsDTO struct {
	Nodes            int64     `json:"nodes"`
	Pruned           int64     `json:"pruned"`
	CacheHits        int64     `json:"cache_hits"`
	Stores           int64     `json:"stores"`
	Depth            int       `json:"depth"`
	DepthDurationsMs []float64 `json:"depth_durations_ms"`
	ElapsedMs        float64   `json:"elapsed_ms"`
	TTSize           int       `json:"tt_size"`
}

type searchPayload struct {
	Depth     int          `json:"depth"`
	Best      engine.Point `json:"best"`
	Score     int          `json:"score"`
	Nodes     int64        `json:"nodes"`
	ElapsedMs float64      `json:"elapsed_ms"`
}

type rowsRequest struct {
	Rows          [][]int `json:"rows"`
	BlackCaptures int     `json:"black_captures"`
	WhiteCaptures int     `json:"white_captures"`
	ToMove        int     `json:"to_move"`
}

type scanResponse struct {
	Kind   string         `json:"kind"`
	Player int            `json:"player"`
	Cells  []engine.Point `json:"cells"`
}

type moveMapResponse struct {
	Size   int            `json:"size"`
	Player int            `json:"player"`
	Scores []int          `json:"scores"`
	Ranked []engine.Point `json:"ranked"`
}

type ttStatusResponse struct {
	Count      int    `json:"count"`
	Hits       uint64 `json:"hits"`
	Inserts    uint64 `json:"inserts"`
	Generation uint32 `json:"generation"`
}

type ttEntryDTO struct {
	Hash     string       `json:"hash"`
	Hits     uint32       `json:"hits"`
	Depth    int          `json:"depth"`
	Score    int32        `json:"score"`
	Flag     string       `json:"flag"`
	BestMove engine.Point `json:"best_move"`
	HasBest  bool         `json:"has_best"`
}

type ttEntriesResponse struct {
	Items  []ttEntryDTO `json:"items"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
	Total  int          `json:"total"`
}

type settingsDTO struct {
	BoardSize        int               `json:"board_size"`
	CaptureWinStones int               `json:"capture_win_stones"`
	Depth            int               `json:"depth"`
	Radius           int               `json:"radius"`
	RootBranching    int               `json:"root_branching"`
	Branching        int               `json:"branching"`
	TimeBudgetMs     int64             `json:"time_budget_ms"`
	HumanPlayer      int               `json:"human_player"`
	Heuristics       engine.Heuristics `json:"heuristics"`
}

func settingsToDTO(s engine.Settings) settingsDTO {
	return settingsDTO{
		BoardSize:        s.BoardSize,
		CaptureWinStones: s.CaptureWinStones,
		Depth:            s.Depth,
		Radius:           s.Radius,
		RootBranching:    s.RootBranching,
		Branching:        s.Branching,
		TimeBudgetMs:     s.TimeBudget.Milliseconds(),
		HumanPlayer:      engine.IntFromTokenColor(s.HumanColor),
		Heuristics:       s.Heuristics,
	}
}

func settingsFromDTO(dto settingsDTO) (engine.Settings, error) {
	human, err := engine.TokenColorFromInt(dto.HumanPlayer)
	if err != nil {
		return engine.Settings{}, err
	}
	if human == engine.CellEmpty {
		return engine.Settings{}, fmt.Errorf("%w: human player must be 1 or 2", engine.ErrInvalidColor)
	}
	if dto.BoardSize < 5 || dto.BoardSize%2 == 0 {
		return engine.Settings{}, engine.ErrInvalidBoardSize
	}
	return engine.Settings{
		BoardSize:        dto.BoardSize,
		CaptureWinStones: dto.CaptureWinStones,
		Depth:            dto.Depth,
		Radius:           dto.Radius,
		RootBranching:    dto.RootBranching,
		Branching:        dto.Branching,
		TimeBudget:       time.Duration(dto.TimeBudgetMs) * time.Millisecond,
		HumanColor:       human,
		Heuristics:       dto.Heuristics.Resolved(),
	}, nil
}

func historyToDTO(h engine.MoveHistory) []historyEntryDTO {
	entries := h.All()
	out := make([]historyEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = historyEntryDTO{
			X:                 e.Move.X,
			Y:                 e.Move.Y,
			Player:            engine.IntFromTokenColor(e.Color),
			ElapsedMs:         durationMs(e.Elapsed),
			IsAi:              e.IsEngine,
			CapturedCount:     len(e.Captured),
			CapturedPositions: append([]engine.Point{}, e.Captured...),
			Depth:             e.Depth,
		}
	}
	return out
}

func moveToDTO(m engine.Move) moveDTO {
	return moveDTO{
		Valid:     m.Valid,
		X:         m.X,
		Y:         m.Y,
		Player:    engine.IntFromTokenColor(m.Color),
		Score:     m.Score,
		Depth:     m.Depth,
		ElapsedMs: durationMs(m.Elapsed),
	}
}

func statsToDTO(stats engine.SearchStats, ttSize int) statsDTO {
	depths := make([]float64, len(stats.DepthDurations))
	for i, d := range stats.DepthDurations {
		depths[i] = durationMs(d)
	}
	return statsDTO{
		Nodes:            stats.Nodes,
		Pruned:           stats.Pruned,
		CacheHits:        stats.CacheHits,
		Stores:           stats.Stores,
		Depth:            stats.Depth,
		DepthDurationsMs: depths,
		ElapsedMs:        durationMs(stats.Elapsed),
		TTSize:           ttSize,
	}
}

func searchToPayload(r engine.DepthReport) searchPayload {
	return searchPayload{
		Depth:     r.Depth,
		Best:      r.Best,
		Score:     r.Score,
		Nodes:     r.Nodes,
		ElapsedMs: durationMs(r.Elapsed),
	}
}

func ttEntryToDTO(e engine.TTEntry) ttEntryDTO {
	return ttEntryDTO{
		Hash:     formatTTKey(e.Key),
		Hits:     e.Hits,
		Depth:    e.Depth,
		Score:    e.Score,
		Flag:     ttFlagString(e.Flag),
		BestMove: e.BestMove,
		HasBest:  e.HasBest,
	}
}

func ttFlagString(flag engine.TTFlag) string {
	switch flag {
	case engine.TTLower:
		return "lower"
	case engine.TTUpper:
		return "upper"
	default:
		return "exact"
	}
}

func formatTTKey(key uint64) string {
	return fmt.Sprintf("0x%016x", key)
}

func parseTTKey(raw string) (uint64, error) {
	return strconv.ParseUint(raw, 0, 64)
}

func winnerFromResult(r engine.Result) int {
	switch r {
	case engine.ResultBlackWin:
		return engine.CodeBlack
	case engine.ResultWhiteWin:
		return engine.CodeWhite
	default:
		return engine.CodeEmpty
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
