package engine

import "sync"

type ZobristTable struct {
	size  int
	cells []uint64
	side  uint64
}

type zobristStore struct {
	mu     sync.Mutex
	tables map[int]*ZobristTable
}

var zobristTables = &zobristStore{tables: make(map[int]*ZobristTable)}

// GetZobrist returns the table for a board size. Unsalted tables are shared
// per size; a salted table belongs to the caller and is freed with it.
func GetZobrist(size int, salt uint64) *ZobristTable {
	if salt != 0 {
		return newZobristTable(size, salt)
	}
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	if table, ok := zobristTables.tables[size]; ok {
		return table
	}
	table := newZobristTable(size, 0)
	zobristTables.tables[size] = table
	return table
}

func newZobristTable(size int, salt uint64) *ZobristTable {
	rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(size) ^ mixKey(salt)}
	table := &ZobristTable{size: size, cells: make([]uint64, size*size*2)}
	for i := range table.cells {
		table.cells[i] = rng.next()
	}
	table.side = rng.next()
	return table
}

func cachedZobristTables() int {
	zobristTables.mu.Lock()
	defer zobristTables.mu.Unlock()
	return len(zobristTables.tables)
}

func (z *ZobristTable) stone(idx int, color Cell) uint64 {
	i := idx * 2
	if color == CellWhite {
		i++
	}
	return z.cells[i]
}

// ComputeHash rebuilds the position hash from scratch.
func ComputeHash(b *Board) uint64 {
	var hash uint64
	for idx, cell := range b.cells {
		if cell == CellEmpty {
			continue
		}
		hash ^= b.zobrist.stone(idx, cell)
	}
	if b.toMove == CellWhite {
		hash ^= b.zobrist.side
	}
	return hash
}

func captureHash(color Cell, count int) uint64 {
	seed := uint64(count)<<1 | uint64(color&1)
	rng := splitmix64{state: seed + 0x9e3779b97f4a7c15}
	return rng.next()
}

// ttKeyFor folds capture counters into the position hash: two positions with
// the same stones but different capture counts evaluate differently.
func ttKeyFor(b *Board) uint64 {
	return b.hash ^ captureHash(CellBlack, b.blackCaptures) ^ captureHash(CellWhite, b.whiteCaptures)
}

func mixKey(v uint64) uint64 {
	v ^= v >> 33
	v *= 0xff51afd7ed558ccd
	v ^= v >> 33
	v *= 0xc4ceb9fe1a85ec53
	v ^= v >> 33
	return v
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
