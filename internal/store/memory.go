package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBoardStore keeps snapshots for the lifetime of the process.
type MemoryBoardStore struct {
	mu    sync.RWMutex
	items map[string]Snapshot
}

func NewMemoryBoardStore() *MemoryBoardStore {
	return &MemoryBoardStore{items: make(map[string]Snapshot)}
}

func (s *MemoryBoardStore) Save(_ context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[snap.ID] = snap
	return nil
}

func (s *MemoryBoardStore) Load(_ context.Context, id string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.items[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	return snap, nil
}

func (s *MemoryBoardStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *MemoryBoardStore) Close() error {
	return nil
}
