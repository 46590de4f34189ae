package engine

import (
	"sync"
	"testing"
)

func TestTTConcurrentProbeStore(t *testing.T) {
	tt := NewTranspositionTable()
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			for i := 0; i < 4000; i++ {
				key := mixKey(seed ^ uint64(i))
				depth := (i % 8) + 1
				move := Point{X: i % 19, Y: (i / 19) % 19}
				tt.Store(key, 1, depth, i, TTExact, move, true)
				tt.Probe(key, 1)
				tt.Probe(key^0x9e3779b97f4a7c15, 1)
			}
		}(uint64(g + 1))
	}

	wg.Wait()
	if tt.Len() == 0 {
		t.Fatalf("expected TT to contain entries after concurrent traffic")
	}
}

func TestTTGenerationWrapStaysNonZero(t *testing.T) {
	tt := NewTranspositionTable()
	tt.gen.Store(^uint32(0))
	tt.NextGeneration()
	if got := tt.Generation(); got == 0 {
		t.Fatalf("generation must never be zero")
	}
	tt.gen.Store(0)
	if got := tt.Generation(); got != 1 {
		t.Fatalf("a zero generation reads as 1, got %d", got)
	}
}

func TestTTProbeCountsHitsAndChecksHeuristics(t *testing.T) {
	tt := NewTranspositionTable()
	tt.Store(10, 99, 3, 42, TTExact, Point{1, 2}, true)
	if _, ok := tt.Probe(10, 98); ok {
		t.Fatalf("entry from another weight set must miss")
	}
	entry, ok := tt.Probe(10, 99)
	if !ok || entry.Score != 42 || !entry.BestMove.Equals(Point{1, 2}) {
		t.Fatalf("unexpected entry %+v ok=%v", entry, ok)
	}
	entry, _ = tt.Probe(10, 99)
	if entry.Hits != 2 || tt.Hits() != 2 {
		t.Fatalf("expected two hits, got entry=%d table=%d", entry.Hits, tt.Hits())
	}
}

func TestTTReplacementPrefersDepthThenExact(t *testing.T) {
	tt := NewTranspositionTable()
	tt.Store(1, 0, 4, 10, TTLower, Point{}, false)
	if tt.Store(1, 0, 3, 20, TTExact, Point{}, false) {
		t.Fatalf("shallower entry must not replace a deeper one")
	}
	if !tt.Store(1, 0, 4, 30, TTExact, Point{}, false) {
		t.Fatalf("exact entry should replace a bound at equal depth")
	}
	if !tt.Store(1, 0, 5, 40, TTUpper, Point{}, false) {
		t.Fatalf("deeper entry should replace")
	}
	entry, _ := tt.Probe(1, 0)
	if entry.Depth != 5 || entry.Score != 40 || entry.Flag != TTUpper {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestTTTopEntriesAndClear(t *testing.T) {
	tt := NewTranspositionTable()
	for key := uint64(1); key <= 5; key++ {
		tt.Store(key, 0, 1, 0, TTExact, Point{}, false)
	}
	for i := 0; i < 3; i++ {
		tt.Probe(4, 0)
	}
	tt.Probe(2, 0)
	top, total := tt.TopEntriesByHits(0, 2)
	if total != 5 || len(top) != 2 || top[0].Key != 4 || top[1].Key != 2 {
		t.Fatalf("unexpected top entries %+v total=%d", top, total)
	}
	if rest, _ := tt.TopEntriesByHits(10, 2); len(rest) != 0 {
		t.Fatalf("expected empty page past the end")
	}
	tt.Clear()
	if tt.Len() != 0 || tt.Hits() != 0 {
		t.Fatalf("expected empty table after clear")
	}
}
