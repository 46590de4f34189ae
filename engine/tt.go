package engine

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLower
	TTUpper
)

const ttVeryOldGenerations = 8

type TTEntry struct {
	Key           uint64 `json:"key"`
	HeuristicHash uint64 `json:"heuristic_hash"`
	Depth         int    `json:"depth"`
	Score         int32  `json:"score"`
	Flag          TTFlag `json:"flag"`
	BestMove      Point  `json:"best_move"`
	HasBest       bool   `json:"has_best"`
	Hits          uint32 `json:"hits"`
	GenWritten    uint32 `json:"-"`
	GenLastUsed   uint32 `json:"-"`
}

// TranspositionTable is an unbounded map of searched positions. All methods
// are safe for concurrent use.
type TranspositionTable struct {
	mu      sync.RWMutex
	entries map[uint64]TTEntry
	hits    atomic.Uint64
	inserts atomic.Uint64
	gen     atomic.Uint32
}

func NewTranspositionTable() *TranspositionTable {
	tt := &TranspositionTable{entries: make(map[uint64]TTEntry)}
	tt.gen.Store(1)
	return tt
}

// NextGeneration marks the start of a new search so stale entries age out.
func (tt *TranspositionTable) NextGeneration() {
	gen := tt.gen.Add(1)
	if gen == 0 {
		tt.gen.CompareAndSwap(0, 1)
	}
}

func (tt *TranspositionTable) Generation() uint32 {
	return tt.currentGeneration()
}

func (tt *TranspositionTable) Clear() {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.entries = make(map[uint64]TTEntry)
	tt.hits.Store(0)
	tt.inserts.Store(0)
	tt.gen.Store(1)
}

func (tt *TranspositionTable) Probe(key uint64, heuristicHash uint64) (TTEntry, bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	entry, ok := tt.entries[key]
	if !ok || entry.HeuristicHash != heuristicHash {
		return TTEntry{}, false
	}
	entry.Hits++
	entry.GenLastUsed = tt.currentGeneration()
	tt.entries[key] = entry
	tt.hits.Add(1)
	return entry, true
}

// Store inserts or overwrites the entry for key. An existing entry for the
// same weights is only replaced by a deeper search, an exact score at equal
// depth, or when it has gone unused for several generations.
func (tt *TranspositionTable) Store(key uint64, heuristicHash uint64, depth int, value int, flag TTFlag, best Point, hasBest bool) (stored bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	gen := tt.currentGeneration()
	if entry, ok := tt.entries[key]; ok && entry.HeuristicHash == heuristicHash {
		if replacementClass(entry, depth, flag, gen) == 0 {
			return false
		}
	}
	tt.entries[key] = TTEntry{
		Key:           key,
		HeuristicHash: heuristicHash,
		Depth:         depth,
		Score:         clampScoreInt32(value),
		Flag:          flag,
		BestMove:      best,
		HasBest:       hasBest,
		GenWritten:    gen,
		GenLastUsed:   gen,
	}
	tt.inserts.Add(1)
	return true
}

func (tt *TranspositionTable) DeleteByKey(key uint64) bool {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	_, ok := tt.entries[key]
	delete(tt.entries, key)
	return ok
}

func (tt *TranspositionTable) Len() int {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return len(tt.entries)
}

// Hits and Inserts are cumulative since the last Clear.
func (tt *TranspositionTable) Hits() uint64 {
	return tt.hits.Load()
}

func (tt *TranspositionTable) Inserts() uint64 {
	return tt.inserts.Load()
}

func (tt *TranspositionTable) TopEntriesByHits(offset int, limit int) ([]TTEntry, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	tt.mu.RLock()
	valid := make([]TTEntry, 0, len(tt.entries))
	for _, entry := range tt.entries {
		valid = append(valid, entry)
	}
	tt.mu.RUnlock()
	sort.Slice(valid, func(i, j int) bool {
		if valid[i].Hits != valid[j].Hits {
			return valid[i].Hits > valid[j].Hits
		}
		if valid[i].Depth != valid[j].Depth {
			return valid[i].Depth > valid[j].Depth
		}
		if valid[i].GenLastUsed != valid[j].GenLastUsed {
			return valid[i].GenLastUsed > valid[j].GenLastUsed
		}
		return valid[i].Key < valid[j].Key
	})
	total := len(valid)
	if offset >= total {
		return []TTEntry{}, total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return valid[offset:end], total
}

func (tt *TranspositionTable) currentGeneration() uint32 {
	if gen := tt.gen.Load(); gen != 0 {
		return gen
	}
	return 1
}

func replacementClass(entry TTEntry, depth int, flag TTFlag, gen uint32) int {
	if depth > entry.Depth {
		return 1
	}
	if depth == entry.Depth && flag == TTExact && entry.Flag != TTExact {
		return 2
	}
	if depth == entry.Depth && flag == entry.Flag && entryAge(gen, entry) >= ttVeryOldGenerations {
		return 3
	}
	return 0
}

func entryAge(gen uint32, entry TTEntry) uint32 {
	last := entry.GenLastUsed
	if last == 0 {
		last = entry.GenWritten
	}
	return gen - last
}

func clampScoreInt32(value int) int32 {
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	if value < math.MinInt32 {
		return math.MinInt32
	}
	return int32(value)
}
