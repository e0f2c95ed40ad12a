package storage

import (
	"context"
	"sync"

	"sbtalks/internal/master"
)

// MemoryStore keeps the snapshot in memory. Used by tests and dry runs.
type MemoryStore struct {
	mu   sync.Mutex
	snap master.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: master.NewSnapshot()}
}

func (s *MemoryStore) Load(_ context.Context) (master.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, snap master.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
