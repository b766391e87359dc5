package memory

import (
	"context"
	"sync"

	"github.com/juanalonso3/webwatch/internal/probe"
	"github.com/juanalonso3/webwatch/internal/repo"
)

// Store keeps the latest snapshot in process memory.
type Store struct {
	mu   sync.RWMutex
	snap *repo.Snapshot
}

func New() *Store {
	return &Store{}
}

func (m *Store) Save(ctx context.Context, s *repo.Snapshot) error {
	cp := copySnapshot(s)
	m.mu.Lock()
	m.snap = cp
	m.mu.Unlock()
	return nil
}

func (m *Store) Latest(ctx context.Context) (*repo.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, nil
	}
	return copySnapshot(m.snap), nil
}

// copySnapshot detaches the results slice so callers and the store never
// share mutable state.
func copySnapshot(s *repo.Snapshot) *repo.Snapshot {
	cp := *s
	cp.Results = append([]probe.Result(nil), s.Results...)
	return &cp
}
